// Package ports defines the interfaces that form the contract between the
// domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the engine testable.
package ports

import "time"

// Tokenizer splits free-form text into comparable word tokens.
// The engine never branches on the availability of an NLP library;
// callers inject whichever implementation they want and the built-in
// regex tokenizer is the default. Implementations must be deterministic
// and safe for concurrent use.
type Tokenizer interface {
	// Tokenize returns the case-folded word tokens of text, in order of
	// appearance. Empty input yields an empty slice, never an error.
	Tokenize(text string) []string
}

// Selector chooses one entry from a list of candidate strings.
// Template selection (e.g. simulated employer responses) goes through a
// Selector so the scoring pipeline itself stays deterministic: production
// callers may inject a seeded random selector, tests a fixed one.
// Pick must tolerate an empty slice by returning the empty string.
type Selector interface {
	Pick(options []string) string
}

// SelectorFunc adapts a plain function to the Selector interface.
type SelectorFunc func(options []string) string

// Pick implements Selector.
func (f SelectorFunc) Pick(options []string) string { return f(options) }

// FirstSelector returns a deterministic Selector that always picks the
// first option. It is the engine default.
func FirstSelector() Selector {
	return SelectorFunc(func(options []string) string {
		if len(options) == 0 {
			return ""
		}
		return options[0]
	})
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability platforms
// like Prometheus or custom monitoring solutions. A nil collector is
// treated as a no-op by the engine.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// Useful for tracking events like scoring calls and fallbacks.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as the
	// distribution of composite scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
