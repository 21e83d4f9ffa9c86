package scorers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// Scoring dimensions produced by the document scorer.
const (
	DimFormatting       = "formatting"
	DimContentRelevance = "content_relevance"
	DimKeywordMatch     = "keyword_match"
)

// Signal names emitted by the default document pattern table.
const (
	signalMarkup         = "markup"
	signalHeadings       = "headings"
	signalParagraphBreak = "paragraph_break"
	signalQuantification = "quantification"
)

// quantificationExpr matches numeric achievement tokens: bare numbers,
// percentages, currency, and numbers with a common unit word.
const quantificationExpr = `\d+[%$]?|\d+\s*(?:percent|dollars|users|customers)`

// DefaultDocumentPatterns returns the signal table the document scorer
// uses unless configuration overrides it.
func DefaultDocumentPatterns() []Pattern {
	return []Pattern{
		{Name: signalMarkup, Expr: `<table|<img|<canvas`},
		{Name: signalHeadings, Expr: `experience|education|skills`},
		{Name: signalParagraphBreak, Expr: `\n\s*\n`},
		{Name: signalQuantification, Expr: quantificationExpr},
	}
}

// ATSConfig controls the document scorer. All fields are validated at
// construction; zero values are filled from defaults.
type ATSConfig struct {
	// Weights combines the three document dimensions. They do not need
	// to be pre-normalized, but must be non-negative and not all zero.
	Weights domain.WeightConfig `yaml:"weights" validate:"required"`

	// DefaultKeywordScore is the keyword_match value used when no job
	// text is supplied or the job text yields no keywords. The stock
	// value of 70 is part of the engine's behavioral contract.
	DefaultKeywordScore float64 `yaml:"default_keyword_score" validate:"min=0,max=100"`

	// Patterns overrides the default document signal table when set.
	Patterns []Pattern `yaml:"patterns,omitempty"`
}

// DefaultATSConfig returns the stock document scoring configuration:
// formatting 40%, content relevance 30%, keyword match 30%, keyword
// default 70.
func DefaultATSConfig() ATSConfig {
	return ATSConfig{
		Weights: domain.WeightConfig{
			DimFormatting:       0.4,
			DimContentRelevance: 0.3,
			DimKeywordMatch:     0.3,
		},
		DefaultKeywordScore: 70,
	}
}

// DocumentEvaluation is a document score together with its explanation.
type DocumentEvaluation struct {
	Score       domain.CompositeScore `json:"score"`
	Strengths   []string              `json:"strengths,omitempty"`
	Weaknesses  []string              `json:"weaknesses,omitempty"`
	Suggestions []string              `json:"suggestions,omitempty"`
}

// ATSScorer scores resume/cover-letter text against formatting, content
// quality, and keyword match criteria. It is immutable after
// construction and safe for concurrent use.
type ATSScorer struct {
	weights    domain.WeightConfig
	defKeyword float64
	patterns   *PatternTable
	lexicon    *Lexicon
	tokenizer  ports.Tokenizer
	analyzer   *JobAnalyzer
	metrics    ports.MetricsCollector
	tracer     trace.Tracer
}

// NewATSScorer creates a document scorer from the given configuration,
// lexicon, and tokenizer. The analyzer supplies job-side keyword
// extraction for the keyword match dimension. A nil metrics collector
// disables metrics.
func NewATSScorer(
	config ATSConfig,
	lexicon *Lexicon,
	tokenizer ports.Tokenizer,
	analyzer *JobAnalyzer,
	metrics ports.MetricsCollector,
) (*ATSScorer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("%w: document scorer: %v", domain.ErrInvalidConfiguration, err)
	}
	if lexicon == nil || tokenizer == nil || analyzer == nil {
		return nil, fmt.Errorf("%w: document scorer requires lexicon, tokenizer, and job analyzer", domain.ErrInvalidConfiguration)
	}

	weights, err := config.Weights.Normalize()
	if err != nil {
		return nil, fmt.Errorf("document scorer weights: %w", err)
	}

	patterns := config.Patterns
	if len(patterns) == 0 {
		patterns = DefaultDocumentPatterns()
	}
	table, err := NewPatternTable("document", patterns)
	if err != nil {
		return nil, err
	}

	return &ATSScorer{
		weights:    weights,
		defKeyword: config.DefaultKeywordScore,
		patterns:   table,
		lexicon:    lexicon,
		tokenizer:  tokenizer,
		analyzer:   analyzer,
		metrics:    metrics,
		tracer:     otel.Tracer("document-scorer"),
	}, nil
}

// ScoreDocument computes the composite document score for resumeText.
// jobText is optional; when empty the keyword match dimension takes the
// configured default of 70. Messy text never fails: missing sections and
// odd punctuation degrade toward lower sub-scores.
func (s *ATSScorer) ScoreDocument(ctx context.Context, resumeText, jobText string) (domain.CompositeScore, error) {
	_, span := s.tracer.Start(ctx, "ATSScorer.ScoreDocument",
		trace.WithAttributes(
			attribute.Int("document.length", len(resumeText)),
			attribute.Bool("document.job_provided", jobText != ""),
		),
	)
	defer span.End()
	start := time.Now()

	if len(resumeText) > MaxTextLength || len(jobText) > MaxTextLength {
		err := fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTextTooLong, max(len(resumeText), len(jobText)), MaxTextLength)
		span.RecordError(err)
		return domain.CompositeScore{}, err
	}

	signals := s.patterns.Extract(resumeText)
	subs := []domain.SubScore{
		s.formattingScore(resumeText, signals),
		s.contentRelevanceScore(resumeText, signals),
		s.keywordMatchScore(resumeText, jobText),
	}

	composite, err := domain.Aggregate(subs, s.weights)
	if err != nil {
		span.RecordError(err)
		return domain.CompositeScore{}, err
	}

	span.SetAttributes(
		attribute.Float64("eval.score", composite.Overall),
		attribute.Int64("eval.latency_ms", time.Since(start).Milliseconds()),
	)
	if s.metrics != nil {
		labels := map[string]string{"scorer": "document"}
		s.metrics.RecordLatency("score_document", time.Since(start), labels)
		s.metrics.RecordCounter("scoring_operations_total", 1, labels)
		s.metrics.RecordHistogram("composite_score", composite.Overall, labels)
	}
	return composite, nil
}

// EvaluateDocument scores the document and derives its explanation from
// the explanation rule table.
func (s *ATSScorer) EvaluateDocument(ctx context.Context, resumeText, jobText string) (DocumentEvaluation, error) {
	composite, err := s.ScoreDocument(ctx, resumeText, jobText)
	if err != nil {
		return DocumentEvaluation{}, err
	}

	facts := s.gatherFacts(resumeText, jobText, composite)
	eval := DocumentEvaluation{Score: composite}
	for _, rule := range documentExplanationRules {
		if !rule.when(facts) {
			continue
		}
		switch rule.kind {
		case explainStrength:
			eval.Strengths = append(eval.Strengths, rule.message)
		case explainWeakness:
			eval.Weaknesses = append(eval.Weaknesses, rule.message)
		case explainSuggestion:
			eval.Suggestions = append(eval.Suggestions, rule.message)
		}
	}
	return eval, nil
}

// formattingScore starts at 100 and applies penalties for parser-hostile
// structure: raw markup, missing standard headings, and too few
// paragraph breaks. Floor at 0.
func (s *ATSScorer) formattingScore(text string, signals domain.SignalSet) domain.SubScore {
	score := 100.0
	var evidence []string

	if signals.Fired(signalMarkup) {
		score -= 20
		evidence = append(evidence, signalMarkup)
	}
	if !signals.Fired(signalHeadings) {
		score -= 15
		evidence = append(evidence, "missing_headings")
	}
	if signals.Count(signalParagraphBreak) < 3 {
		score -= 10
		evidence = append(evidence, "sparse_paragraph_breaks")
	}

	return domain.SubScore{
		Dimension: DimFormatting,
		Value:     domain.ClampScore(score),
		Evidence:  evidence,
	}
}

// professionalSections are the headings the content dimension rewards.
var professionalSections = []string{"experience", "education", "skills", "summary"}

// contentRelevanceScore accumulates points for action verbs,
// quantification, professional sections, and length, capped at 100.
func (s *ATSScorer) contentRelevanceScore(text string, signals domain.SignalSet) domain.SubScore {
	folded := fold(text)
	var score float64
	var evidence []string

	if n := countContained(folded, s.lexicon.StrongActionWords); n > 0 {
		score += min(float64(n)*5, 30)
		evidence = append(evidence, "action_words")
	}
	if n := signals.Count(signalQuantification); n > 0 {
		score += min(float64(n)*3, 25)
		evidence = append(evidence, signalQuantification)
	}
	if n := countContained(folded, professionalSections); n > 0 {
		score += float64(n) * 10
		evidence = append(evidence, "sections")
	}

	wordCount := len(strings.Fields(text))
	switch {
	case wordCount >= 300 && wordCount <= 800:
		score += 15
		evidence = append(evidence, "length_ideal")
	case wordCount > 100:
		score += 10
		evidence = append(evidence, "length_ok")
	}

	return domain.SubScore{
		Dimension: DimContentRelevance,
		Value:     domain.ClampScore(score),
		Evidence:  evidence,
	}
}

// keywordMatchScore extracts the job's top keywords and measures how
// many appear in the resume. Without job text, or when the job text
// yields no keywords, the configured default applies.
func (s *ATSScorer) keywordMatchScore(resumeText, jobText string) domain.SubScore {
	if jobText == "" {
		return domain.SubScore{
			Dimension: DimKeywordMatch,
			Value:     s.defKeyword,
			Evidence:  []string{"no_job_text"},
		}
	}

	keywords := s.analyzer.extractKeywords(jobText)
	if len(keywords) == 0 {
		return domain.SubScore{
			Dimension: DimKeywordMatch,
			Value:     s.defKeyword,
			Evidence:  []string{"no_job_keywords"},
		}
	}

	resumeTokens := tokenSet(s.tokenizer.Tokenize(resumeText))
	matched := 0
	for _, kw := range keywords {
		if _, ok := resumeTokens[kw]; ok {
			matched++
		}
	}

	value := float64(matched) / float64(len(keywords)) * 100
	return domain.SubScore{
		Dimension: DimKeywordMatch,
		Value:     domain.ClampScore(value),
		Evidence:  []string{fmt.Sprintf("matched_%d_of_%d", matched, len(keywords))},
	}
}

// docFacts is the condition input for the document explanation rules.
type docFacts struct {
	markup       bool
	headings     bool
	breaks       int
	actionWords  int
	quantCount   int
	wordCount    int
	jobProvided  bool
	keywordScore float64
	formatting   float64
}

func (s *ATSScorer) gatherFacts(resumeText, jobText string, composite domain.CompositeScore) docFacts {
	signals := s.patterns.Extract(resumeText)
	folded := fold(resumeText)
	return docFacts{
		markup:       signals.Fired(signalMarkup),
		headings:     signals.Fired(signalHeadings),
		breaks:       signals.Count(signalParagraphBreak),
		actionWords:  countContained(folded, s.lexicon.StrongActionWords),
		quantCount:   signals.Count(signalQuantification),
		wordCount:    len(strings.Fields(resumeText)),
		jobProvided:  jobText != "",
		keywordScore: composite.Components[DimKeywordMatch],
		formatting:   composite.Components[DimFormatting],
	}
}

type explanationKind int

const (
	explainStrength explanationKind = iota
	explainWeakness
	explainSuggestion
)

type documentRule struct {
	when    func(docFacts) bool
	kind    explanationKind
	message string
}

// documentExplanationRules derives strengths, weaknesses, and
// suggestions from document facts. Rules run in order, so output
// ordering is fixed.
var documentExplanationRules = []documentRule{
	{func(f docFacts) bool { return f.formatting >= 90 }, explainStrength,
		"Clean, parser-friendly formatting"},
	{func(f docFacts) bool { return f.actionWords >= 4 }, explainStrength,
		"Strong action verbs describe your work"},
	{func(f docFacts) bool { return f.quantCount >= 3 }, explainStrength,
		"Achievements are backed by specific numbers"},
	{func(f docFacts) bool { return f.jobProvided && f.keywordScore >= 80 }, explainStrength,
		"Excellent keyword coverage for this job"},

	{func(f docFacts) bool { return f.markup }, explainWeakness,
		"Tables or images may confuse applicant tracking systems"},
	{func(f docFacts) bool { return !f.headings }, explainWeakness,
		"Standard section headings (experience, education, skills) are missing"},
	{func(f docFacts) bool { return f.breaks < 3 }, explainWeakness,
		"Dense layout with few paragraph breaks"},
	{func(f docFacts) bool { return f.jobProvided && f.keywordScore < 50 }, explainWeakness,
		"Resume misses many keywords from the job description"},

	{func(f docFacts) bool { return f.markup }, explainSuggestion,
		"Replace tables and images with plain text"},
	{func(f docFacts) bool { return !f.headings }, explainSuggestion,
		"Add clear section headings for experience, education, and skills"},
	{func(f docFacts) bool { return f.quantCount == 0 }, explainSuggestion,
		"Add specific numbers or percentages to your achievements"},
	{func(f docFacts) bool { return f.wordCount < 300 }, explainSuggestion,
		"Expand your experience descriptions; the resume reads short"},
	{func(f docFacts) bool { return f.jobProvided && f.keywordScore < 50 }, explainSuggestion,
		"Mirror the job description's key terms where they honestly apply"},
}
