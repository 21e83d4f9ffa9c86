package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// captureMetrics records every metrics call for assertions.
type captureMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{counters: make(map[string]float64)}
}

func (c *captureMetrics) RecordLatency(string, time.Duration, map[string]string) {}

func (c *captureMetrics) RecordCounter(metric string, value float64, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[metric] += value
}

func (c *captureMetrics) RecordHistogram(string, float64, map[string]string) {}

func newDefaultEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultRulesetConfig(), opts...)
	require.NoError(t, err)
	return engine
}

func TestNewEngineUnknownPreset(t *testing.T) {
	config := DefaultRulesetConfig()
	config.Bullets = &BulletConfig{Preset: "shouty"}

	_, err := NewEngine(config)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestEngineScoreDocument(t *testing.T) {
	engine := newDefaultEngine(t)

	score, err := engine.ScoreDocument(context.Background(),
		"Experience\n\nLed a team of 8 engineers. Increased uptime by 20%.", "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 100.0)
	assert.Len(t, score.Components, 3)
}

func TestEngineJobAnalysis(t *testing.T) {
	engine := newDefaultEngine(t)

	analysis, err := engine.AnalyzeJobDescription(context.Background(),
		"Required skills: Python, Django\n\n3+ years of experience needed.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Django"}, analysis.RequiredSkills)
	assert.Equal(t, "3 years", analysis.ExperienceLevel)

	gap, err := engine.AnalyzeKeywordGaps(context.Background(),
		"python developer", []string{"python", "kubernetes"})
	require.NoError(t, err)
	assert.Contains(t, gap.Matched, "python")
	assert.Equal(t, 50.0, gap.MatchPercent)

	jobGap, err := engine.AnalyzeJobKeywordGaps(context.Background(),
		"python developer", "python and kubernetes experience")
	require.NoError(t, err)
	assert.Contains(t, jobGap.Matched, "python")
}

func TestEngineBulletPresetFollowsRuleset(t *testing.T) {
	// Overlong bullets only earn a length bonus under the resume_ai
	// preset.
	long := "Maintained the internal billing reconciliation pipeline which kept " +
		"every invoice, refund, and dispute in sync between two providers of record at all times"

	defaultEngine := newDefaultEngine(t)
	assert.Zero(t, defaultEngine.ScoreBullet(long))

	config := DefaultRulesetConfig()
	config.Bullets = &BulletConfig{Preset: BulletPresetResumeAI}
	resumeEngine, err := NewEngine(config)
	require.NoError(t, err)
	assert.InDelta(t, 10, resumeEngine.ScoreBullet(long), 0.01)
}

func TestEngineEnhanceBullets(t *testing.T) {
	engine := newDefaultEngine(t)

	results, failures, err := engine.EnhanceBullets(context.Background(),
		[]string{"Responsible for deployments", ""})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Led deployments", results[0].Enhanced)
	require.Len(t, failures, 1)
	assert.Equal(t, "bullet_1", failures[0].ItemID)
}

func TestEngineNegotiation(t *testing.T) {
	engine := newDefaultEngine(t)

	analysis, err := engine.AnalyzeNegotiationResponse(context.Background(),
		"Thank you. According to my research, NPR 100,000 is the market rate for this role.")
	require.NoError(t, err)
	assert.Contains(t, analysis.Strategies, domain.StrategyMarketResearch)

	feedback, err := engine.EvaluateScenarioResponse(context.Background(),
		"tech-startup", 1, "Thank you. According to my research, NPR 100,000 is fair.")
	require.NoError(t, err)
	assert.NotEmpty(t, feedback.EmployerResponse)

	hints, err := engine.ScenarioHints("corporate-offer")
	require.NoError(t, err)
	assert.Len(t, hints, 6)

	_, err = engine.Scenario("bogus")
	assert.ErrorIs(t, err, domain.ErrUnknownScenario)
}

func TestEngineMatch(t *testing.T) {
	engine := newDefaultEngine(t)

	job := domain.JobRequirement{RequiredSkills: []string{"go", "sql"}, ExperienceLevel: "mid"}
	candidate := domain.CandidateProfile{
		ID:              "c1",
		Skills:          []string{"go", "sql"},
		ExperienceLevel: "mid",
	}

	result, err := engine.ScoreCandidate(context.Background(), candidate, job)
	require.NoError(t, err)
	assert.InDelta(t, 70, result.Score, 0.01)

	report, err := engine.MatchCandidates(context.Background(),
		[]domain.CandidateProfile{candidate}, job)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "c1", report.Results[0].CandidateID)
}

func TestEngineWithSelector(t *testing.T) {
	last := ports.SelectorFunc(func(options []string) string {
		if len(options) == 0 {
			return ""
		}
		return options[len(options)-1]
	})
	engine := newDefaultEngine(t, WithSelector(last))

	feedback, err := engine.EvaluateScenarioResponse(context.Background(),
		"low-offer", 1, "Sounds reasonable to me overall")
	require.NoError(t, err)
	// Neutral default replies; the injected selector picks the last one.
	assert.Equal(t,
		"That's helpful feedback. We'll consider this as we finalize our offer.",
		feedback.EmployerResponse)
}

func TestEngineWithMetrics(t *testing.T) {
	metrics := newCaptureMetrics()
	engine := newDefaultEngine(t, WithMetrics(metrics))

	_, err := engine.ScoreDocument(context.Background(), "Led a team of 8 engineers.", "")
	require.NoError(t, err)
	_, err = engine.ScoreCandidate(context.Background(),
		domain.CandidateProfile{ID: "c1"}, domain.JobRequirement{})
	require.NoError(t, err)
	_, err = engine.MatchCandidates(context.Background(),
		[]domain.CandidateProfile{{ID: "c1"}}, domain.JobRequirement{})
	require.NoError(t, err)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Positive(t, metrics.counters["scoring_operations_total"])
}
