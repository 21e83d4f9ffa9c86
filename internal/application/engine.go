package application

import (
	"context"
	"fmt"

	"github.com/hireo/scoring-engine/infrastructure/scorers"
	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// Option adjusts how an Engine is assembled.
type Option func(*engineOptions)

type engineOptions struct {
	lexicon   *scorers.Lexicon
	tokenizer ports.Tokenizer
	selector  ports.Selector
	metrics   ports.MetricsCollector
}

// WithLexicon overrides the built-in word lists.
func WithLexicon(lexicon *scorers.Lexicon) Option {
	return func(o *engineOptions) { o.lexicon = lexicon }
}

// WithTokenizer overrides the default regex tokenizer.
func WithTokenizer(tokenizer ports.Tokenizer) Option {
	return func(o *engineOptions) { o.tokenizer = tokenizer }
}

// WithSelector overrides the deterministic first-option template
// selector used for simulated employer responses.
func WithSelector(selector ports.Selector) Option {
	return func(o *engineOptions) { o.selector = selector }
}

// WithMetrics attaches a metrics collector to every component.
func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(o *engineOptions) { o.metrics = metrics }
}

// Engine is the assembled scoring engine: document scoring, job
// analysis, bullet enhancement, negotiation coaching, and candidate
// matching behind one facade. Build one with NewEngine or through a
// RulesetLoader; it is immutable afterwards and safe for concurrent
// use.
type Engine struct {
	name string

	ats         *scorers.ATSScorer
	jobs        *scorers.JobAnalyzer
	bullets     *scorers.BulletEnhancer
	negotiation *scorers.NegotiationAnalyzer
	scenarios   *scorers.NegotiationEngine
	matcher     *scorers.MatchEngine
}

// NewEngine assembles an engine from a ruleset. Omitted ruleset
// sections take the stock configuration of their component.
func NewEngine(config RulesetConfig, opts ...Option) (*Engine, error) {
	options := engineOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.lexicon == nil {
		options.lexicon = scorers.DefaultLexicon()
	}
	if options.tokenizer == nil {
		options.tokenizer = scorers.NewRegexTokenizer()
	}
	if options.selector == nil {
		options.selector = ports.FirstSelector()
	}

	jobs, err := scorers.NewJobAnalyzer(config.jobAnalyzerConfig(), options.lexicon, options.tokenizer, options.metrics)
	if err != nil {
		return nil, err
	}
	ats, err := scorers.NewATSScorer(config.documentConfig(), options.lexicon, options.tokenizer, jobs, options.metrics)
	if err != nil {
		return nil, err
	}

	var weights scorers.BulletWeights
	switch preset := config.bulletPreset(); preset {
	case BulletPresetATS:
		weights = scorers.ATSBulletWeights(options.lexicon)
	case BulletPresetResumeAI:
		weights = scorers.ResumeAIBulletWeights(options.lexicon)
	default:
		return nil, fmt.Errorf("%w: unknown bullet preset %q", domain.ErrInvalidConfiguration, preset)
	}
	bullets, err := scorers.NewBulletEnhancer(weights, options.metrics)
	if err != nil {
		return nil, err
	}

	negotiation, err := scorers.NewNegotiationAnalyzer(options.lexicon, options.metrics)
	if err != nil {
		return nil, err
	}
	scenarios, err := scorers.NewNegotiationEngine(negotiation, options.selector, options.metrics)
	if err != nil {
		return nil, err
	}
	matcher, err := scorers.NewMatchEngine(config.matchConfig(), options.metrics)
	if err != nil {
		return nil, err
	}

	return &Engine{
		name:        config.Name,
		ats:         ats,
		jobs:        jobs,
		bullets:     bullets,
		negotiation: negotiation,
		scenarios:   scenarios,
		matcher:     matcher,
	}, nil
}

// Name returns the ruleset name the engine was built from, or "" for
// the default engine.
func (e *Engine) Name() string { return e.name }

// ScoreDocument scores resume text, optionally against a job
// description.
func (e *Engine) ScoreDocument(ctx context.Context, resumeText, jobText string) (domain.CompositeScore, error) {
	return e.ats.ScoreDocument(ctx, resumeText, jobText)
}

// EvaluateDocument scores resume text and explains the result.
func (e *Engine) EvaluateDocument(ctx context.Context, resumeText, jobText string) (scorers.DocumentEvaluation, error) {
	return e.ats.EvaluateDocument(ctx, resumeText, jobText)
}

// AnalyzeJobDescription extracts keywords, skills, and requirement
// structure from a job posting.
func (e *Engine) AnalyzeJobDescription(ctx context.Context, jobText string) (scorers.JobAnalysis, error) {
	return e.jobs.AnalyzeJobDescription(ctx, jobText)
}

// AnalyzeKeywordGaps measures how a resume covers a keyword list.
func (e *Engine) AnalyzeKeywordGaps(ctx context.Context, resumeText string, keywords []string) (scorers.KeywordGap, error) {
	return e.jobs.AnalyzeKeywordGaps(ctx, resumeText, keywords)
}

// AnalyzeJobKeywordGaps measures how a resume covers the keywords
// extracted from a job posting.
func (e *Engine) AnalyzeJobKeywordGaps(ctx context.Context, resumeText, jobText string) (scorers.KeywordGap, error) {
	return e.jobs.AnalyzeJobKeywordGaps(ctx, resumeText, jobText)
}

// EnhanceBullet rewrites and scores one resume bullet.
func (e *Engine) EnhanceBullet(ctx context.Context, text string) (scorers.BulletEnhancement, error) {
	return e.bullets.EnhanceBullet(ctx, text)
}

// EnhanceBullets rewrites a batch of bullets with partial-failure
// reporting.
func (e *Engine) EnhanceBullets(ctx context.Context, bullets []string) ([]scorers.BulletEnhancement, []domain.PartialFailure, error) {
	return e.bullets.EnhanceBullets(ctx, bullets)
}

// ScoreBullet scores one bullet under the engine's configured preset.
func (e *Engine) ScoreBullet(text string) float64 {
	return e.bullets.ScoreBullet(text)
}

// AnalyzeNegotiationResponse runs the context-free negotiation
// analysis.
func (e *Engine) AnalyzeNegotiationResponse(ctx context.Context, response string) (domain.NegotiationAnalysis, error) {
	return e.negotiation.AnalyzeResponse(ctx, response)
}

// EvaluateScenarioResponse analyzes a response within a practice
// scenario and assembles coaching feedback.
func (e *Engine) EvaluateScenarioResponse(ctx context.Context, scenarioID string, stage int, response string) (scorers.ScenarioFeedback, error) {
	return e.scenarios.EvaluateScenarioResponse(ctx, scenarioID, stage, response)
}

// Scenario returns a practice scenario by id.
func (e *Engine) Scenario(id string) (scorers.ScenarioContext, error) {
	return e.scenarios.Scenario(id)
}

// ScenarioHints returns preparation hints for a scenario.
func (e *Engine) ScenarioHints(scenarioID string) ([]string, error) {
	return e.scenarios.ScenarioHints(scenarioID)
}

// ScoreCandidate scores one candidate against a job requirement.
func (e *Engine) ScoreCandidate(ctx context.Context, candidate domain.CandidateProfile, job domain.JobRequirement) (domain.MatchResult, error) {
	return e.matcher.Score(ctx, candidate, job)
}

// MatchCandidates ranks a candidate batch against a job requirement.
func (e *Engine) MatchCandidates(ctx context.Context, candidates []domain.CandidateProfile, job domain.JobRequirement) (domain.MatchReport, error) {
	return e.matcher.Match(ctx, candidates, job)
}
