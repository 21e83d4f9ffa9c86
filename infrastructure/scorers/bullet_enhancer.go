package scorers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// BulletEnhancement is the result of rewriting one achievement bullet.
type BulletEnhancement struct {
	Original     string   `json:"original"`
	Enhanced     string   `json:"enhanced"`
	Improvements []string `json:"improvements"`
	Suggestions  []string `json:"suggestions,omitempty"`

	OriginalScore float64 `json:"original_score"`
	EnhancedScore float64 `json:"enhanced_score"`

	// ImprovementScore is enhanced minus original. A rewrite that
	// tripped a penalty can make it negative.
	ImprovementScore float64 `json:"improvement_score"`
}

// BulletWeights is a bullet quality scoring preset. Two stock presets
// exist with deliberately different constants; both are preserved
// because callers depend on their respective scales.
type BulletWeights struct {
	Name string `yaml:"name" validate:"required"`

	ActionBonus float64  `yaml:"action_bonus" validate:"min=0,max=100"`
	ActionWords []string `yaml:"action_words" validate:"required,min=1"`

	QuantBonus float64 `yaml:"quant_bonus" validate:"min=0,max=100"`

	// IdealLengthBonus applies between 50 and 150 characters.
	// LongLengthBonus applies above 150 and may be zero.
	IdealLengthBonus float64 `yaml:"ideal_length_bonus" validate:"min=0,max=100"`
	LongLengthBonus  float64 `yaml:"long_length_bonus" validate:"min=0,max=100"`

	OutcomeBonus float64  `yaml:"outcome_bonus" validate:"min=0,max=100"`
	OutcomeVerbs []string `yaml:"outcome_verbs" validate:"required,min=1"`

	WeakPenalty float64  `yaml:"weak_penalty" validate:"min=0,max=100"`
	WeakPhrases []string `yaml:"weak_phrases" validate:"required,min=1"`
}

// ATSBulletWeights is the document-screening preset: strong verbs only,
// the full weak-phrase list, and no bonus for overlong bullets.
func ATSBulletWeights(lex *Lexicon) BulletWeights {
	return BulletWeights{
		Name:             "ats",
		ActionBonus:      30,
		ActionWords:      lex.StrongActionWords,
		QuantBonus:       25,
		IdealLengthBonus: 20,
		LongLengthBonus:  0,
		OutcomeBonus:     15,
		OutcomeVerbs:     lex.OutcomeVerbs,
		WeakPenalty:      15,
		WeakPhrases:      lex.WeakPhrases,
	}
}

// ResumeAIBulletWeights is the writing-assistant preset: the full
// action-word union, a heavier quantification bonus, a small bonus for
// overlong bullets, and a heavier penalty on a shorter weak-phrase list.
func ResumeAIBulletWeights(lex *Lexicon) BulletWeights {
	return BulletWeights{
		Name:             "resume_ai",
		ActionBonus:      25,
		ActionWords:      lex.AllActionWords(),
		QuantBonus:       30,
		IdealLengthBonus: 20,
		LongLengthBonus:  10,
		OutcomeBonus:     15,
		OutcomeVerbs:     lex.OutcomeVerbs,
		WeakPenalty:      20,
		WeakPhrases:      []string{"responsible for", "worked on", "helped with", "assisted"},
	}
}

// bulletQuantRE detects numeric evidence for scoring.
// bulletQuantHintRE is the wider form used only to decide whether to
// suggest adding metrics; it accepts a few extra unit words.
var (
	bulletQuantRE     = regexp.MustCompile(`\d+[%$]?|\d+\s*(?:percent|dollars|users|customers)`)
	bulletQuantHintRE = regexp.MustCompile(`\d+[%$]?|\d+\s*(?:percent|dollars|users|customers|hours|days|months)`)
	anyDigitRE        = regexp.MustCompile(`\d`)
)

// bulletRewrites replace weak start phrases with strong verbs. Rules
// are start-anchored so mid-sentence mentions survive.
var bulletRewrites = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)^(responsible for|worked on|helped with)`), "Led"},
	{regexp.MustCompile(`(?i)^(assisted|supported)`), "Collaborated on"},
	{regexp.MustCompile(`(?i)^(participated in|involved in)`), "Contributed to"},
	{regexp.MustCompile(`(?i)^(handled|dealt with)`), "Managed"},
}

// BulletEnhancer rewrites resume bullets and scores their quality under
// a configured weight preset. Immutable after construction and safe for
// concurrent use.
type BulletEnhancer struct {
	weights BulletWeights
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewBulletEnhancer creates a bullet enhancer using the given scoring
// preset. A nil metrics collector disables metrics.
func NewBulletEnhancer(weights BulletWeights, metrics ports.MetricsCollector) (*BulletEnhancer, error) {
	if err := validate.Struct(weights); err != nil {
		return nil, fmt.Errorf("%w: bullet weights %q: %v", domain.ErrInvalidConfiguration, weights.Name, err)
	}
	return &BulletEnhancer{
		weights: weights,
		metrics: metrics,
		tracer:  otel.Tracer("bullet-enhancer"),
	}, nil
}

// EnhanceBullet rewrites one bullet and scores the before and after
// text. The rewrite never invents content; it only replaces weak lead
// phrases and records what changed.
func (e *BulletEnhancer) EnhanceBullet(ctx context.Context, text string) (BulletEnhancement, error) {
	_, span := e.tracer.Start(ctx, "BulletEnhancer.EnhanceBullet")
	defer span.End()
	start := time.Now()

	if len(text) > MaxTextLength {
		err := fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTextTooLong, len(text), MaxTextLength)
		span.RecordError(err)
		return BulletEnhancement{}, err
	}

	original := strings.TrimSpace(text)
	if original == "" {
		return BulletEnhancement{}, fmt.Errorf("%w: bullet text", domain.ErrEmptyValue)
	}

	enhanced := original
	var improvements []string
	for _, rule := range bulletRewrites {
		if !rule.re.MatchString(enhanced) {
			continue
		}
		enhanced = rule.re.ReplaceAllString(enhanced, rule.replacement)
		improvements = append(improvements, fmt.Sprintf("Replaced weak verb with %q", rule.replacement))
	}
	if !bulletQuantHintRE.MatchString(enhanced) {
		improvements = append(improvements, "Consider adding specific metrics or numbers")
	}

	result := BulletEnhancement{
		Original:      original,
		Enhanced:      enhanced,
		Improvements:  improvements,
		Suggestions:   bulletSuggestions(enhanced),
		OriginalScore: e.ScoreBullet(original),
		EnhancedScore: e.ScoreBullet(enhanced),
	}
	result.ImprovementScore = result.EnhancedScore - result.OriginalScore

	span.SetAttributes(
		attribute.Float64("eval.score", result.EnhancedScore),
		attribute.Float64("eval.improvement", result.ImprovementScore),
	)
	if e.metrics != nil {
		labels := map[string]string{"scorer": "bullet_enhancer", "preset": e.weights.Name}
		e.metrics.RecordLatency("enhance_bullet", time.Since(start), labels)
		e.metrics.RecordCounter("scoring_operations_total", 1, labels)
	}
	return result, nil
}

// EnhanceBullets enhances a batch. Blank items are reported as partial
// failures keyed by position; the batch itself never aborts on them.
func (e *BulletEnhancer) EnhanceBullets(ctx context.Context, bullets []string) ([]BulletEnhancement, []domain.PartialFailure, error) {
	if len(bullets) > MaxBatchSize {
		return nil, nil, fmt.Errorf("%w: %d bullets exceeds limit of %d", ErrBatchTooLarge, len(bullets), MaxBatchSize)
	}

	results := make([]BulletEnhancement, 0, len(bullets))
	var failures []domain.PartialFailure
	for i, bullet := range bullets {
		enhanced, err := e.EnhanceBullet(ctx, bullet)
		if err != nil {
			failures = append(failures, domain.PartialFailure{
				ItemID: fmt.Sprintf("bullet_%d", i),
				Reason: err.Error(),
			})
			continue
		}
		results = append(results, enhanced)
	}
	return results, failures, nil
}

// ScoreBullet scores one bullet against the configured preset, clamped
// to the score range. Bonuses are flat per criterion, not per match.
func (e *BulletEnhancer) ScoreBullet(text string) float64 {
	folded := fold(text)
	var score float64

	if containsAny(folded, e.weights.ActionWords) {
		score += e.weights.ActionBonus
	}
	if bulletQuantRE.MatchString(text) {
		score += e.weights.QuantBonus
	}
	switch n := len(text); {
	case n >= 50 && n <= 150:
		score += e.weights.IdealLengthBonus
	case n > 150:
		score += e.weights.LongLengthBonus
	}
	if containsAny(folded, e.weights.OutcomeVerbs) {
		score += e.weights.OutcomeBonus
	}
	if containsAny(folded, e.weights.WeakPhrases) {
		score -= e.weights.WeakPenalty
	}
	return domain.ClampScore(score)
}

// bulletSuggestions returns targeted writing advice for a bullet.
func bulletSuggestions(text string) []string {
	var out []string
	if !anyDigitRE.MatchString(text) {
		out = append(out, "Add specific numbers or percentages")
	}
	switch n := len(text); {
	case n < 50:
		out = append(out, "Expand with more specific details")
	case n > 150:
		out = append(out, "Make more concise while keeping key details")
	}
	if !containsAny(fold(text), []string{"achieved", "improved", "increased", "delivered"}) {
		out = append(out, "Start with a strong action verb")
	}
	return out
}
