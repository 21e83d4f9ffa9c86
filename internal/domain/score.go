// Package domain contains pure, dependency-free domain models and types
// for the scoring engine.
package domain

import (
	"fmt"
	"math"
	"sort"
)

// ScoreMin and ScoreMax bound every sub-score and composite score the
// engine produces. All scoring paths clamp into this range.
const (
	ScoreMin = 0.0
	ScoreMax = 100.0
)

// ClampScore bounds a raw score to the [ScoreMin, ScoreMax] range.
// NaN is treated as the minimum so that arithmetic mistakes degrade to a
// low score instead of propagating through aggregation.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return ScoreMin
	}
	return math.Min(math.Max(v, ScoreMin), ScoreMax)
}

// SubScore is a bounded score for one scoring dimension together with the
// signal names that contributed to it. Evidence lets explanation rules
// cite why a dimension scored the way it did.
type SubScore struct {
	// Dimension names the scoring dimension (e.g. "formatting",
	// "confidence").
	Dimension string `json:"dimension"`

	// Value is the dimension score, always within [0,100].
	Value float64 `json:"value"`

	// Evidence lists the signal names that contributed to the value.
	Evidence []string `json:"evidence,omitempty"`
}

// CompositeScore is the immutable result of combining sub-scores with a
// weight configuration.
type CompositeScore struct {
	// Overall is the weighted combination of the components, in [0,100].
	Overall float64 `json:"overall"`

	// Components maps each dimension name to its sub-score value.
	Components map[string]float64 `json:"components"`
}

// WeightConfig maps dimension names to relative weights for aggregation.
// Weights must be non-negative and must not all be zero; callers are not
// required to pre-normalize.
type WeightConfig map[string]float64

// Normalize returns a copy of the config whose weights sum to 1.0.
// It returns ErrInvalidConfiguration if any weight is negative or the
// weights sum to zero, so misconfiguration is caught at table-load time
// rather than during scoring.
func (w WeightConfig) Normalize() (WeightConfig, error) {
	if len(w) == 0 {
		return nil, fmt.Errorf("%w: empty weight config", ErrInvalidConfiguration)
	}

	var sum float64
	for dim, weight := range w {
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return nil, fmt.Errorf("%w: weight for %q is %f", ErrInvalidConfiguration, dim, weight)
		}
		sum += weight
	}
	if sum == 0 {
		return nil, fmt.Errorf("%w: weights sum to zero", ErrInvalidConfiguration)
	}

	normalized := make(WeightConfig, len(w))
	for dim, weight := range w {
		normalized[dim] = weight / sum
	}
	return normalized, nil
}

// Aggregate combines named sub-scores into a CompositeScore using the
// weight configuration. The weights are normalized before combining, and
// the overall score is clamped to [0,100]. A sub-score for a dimension
// absent from the weight config contributes nothing; a weighted dimension
// with no sub-score contributes zero.
func Aggregate(subs []SubScore, weights WeightConfig) (CompositeScore, error) {
	normalized, err := weights.Normalize()
	if err != nil {
		return CompositeScore{}, err
	}

	components := make(map[string]float64, len(subs))
	var overall float64
	for _, sub := range subs {
		value := ClampScore(sub.Value)
		components[sub.Dimension] = value
		overall += value * normalized[sub.Dimension]
	}

	return CompositeScore{
		Overall:    ClampScore(overall),
		Components: components,
	}, nil
}

// Dimensions returns the weighted dimension names in lexical order.
// The fixed order keeps derived output (reasons, explanations) stable
// across runs regardless of map iteration order.
func (w WeightConfig) Dimensions() []string {
	dims := make([]string, 0, len(w))
	for dim := range w {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	return dims
}
