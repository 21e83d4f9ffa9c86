package scorers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireo/scoring-engine/internal/domain"
)

func newTestATSScorer(t *testing.T) *ATSScorer {
	t.Helper()
	lex := DefaultLexicon()
	tokenizer := NewRegexTokenizer()
	analyzer, err := NewJobAnalyzer(DefaultJobAnalyzerConfig(), lex, tokenizer, nil)
	require.NoError(t, err)
	scorer, err := NewATSScorer(DefaultATSConfig(), lex, tokenizer, analyzer, nil)
	require.NoError(t, err)
	return scorer
}

func TestNewATSScorer(t *testing.T) {
	lex := DefaultLexicon()
	tokenizer := NewRegexTokenizer()
	analyzer, err := NewJobAnalyzer(DefaultJobAnalyzerConfig(), lex, tokenizer, nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		config    ATSConfig
		wantError bool
	}{
		{"default config", DefaultATSConfig(), false},
		{
			"zero-sum weights",
			ATSConfig{Weights: domain.WeightConfig{DimFormatting: 0}, DefaultKeywordScore: 70},
			true,
		},
		{
			"keyword default out of range",
			ATSConfig{Weights: domain.WeightConfig{DimFormatting: 1}, DefaultKeywordScore: 120},
			true,
		},
		{
			"broken pattern override",
			ATSConfig{
				Weights:             domain.WeightConfig{DimFormatting: 1},
				DefaultKeywordScore: 70,
				Patterns:            []Pattern{{Name: "bad", Expr: `[`}},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer, err := NewATSScorer(tt.config, lex, tokenizer, analyzer, nil)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, scorer)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, scorer)
		})
	}
}

func TestScoreDocumentKeywordDefault(t *testing.T) {
	scorer := newTestATSScorer(t)

	// Without job text the keyword dimension takes the documented
	// default of 70.
	composite, err := scorer.ScoreDocument(context.Background(), "Led a team. Increased sales by 20%.", "")
	require.NoError(t, err)
	assert.Equal(t, 70.0, composite.Components[DimKeywordMatch])
}

func TestScoreDocumentFormattingPenalties(t *testing.T) {
	scorer := newTestATSScorer(t)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "all penalties",
			text: "foo <table> bar",
			want: 55, // -20 markup, -15 headings, -10 breaks
		},
		{
			name: "clean document",
			text: "Experience\n\nBuilt things.\n\nEducation\n\nSkills\n\nGo, SQL.",
			want: 100,
		},
		{
			name: "only sparse breaks",
			text: "Experience and education and skills on one line",
			want: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composite, err := scorer.ScoreDocument(context.Background(), tt.text, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, composite.Components[DimFormatting])
		})
	}
}

func TestScoreDocumentQuantificationMonotonic(t *testing.T) {
	scorer := newTestATSScorer(t)

	base := "plain filler text without anything measurable"
	quantified := base + " raised 10% and 20% and 30 users"

	plain, err := scorer.ScoreDocument(context.Background(), base, "")
	require.NoError(t, err)
	quant, err := scorer.ScoreDocument(context.Background(), quantified, "")
	require.NoError(t, err)

	assert.Greater(t,
		quant.Components[DimContentRelevance],
		plain.Components[DimContentRelevance],
		"adding quantified achievements must not lower content relevance")
}

func TestScoreDocumentKeywordMatch(t *testing.T) {
	scorer := newTestATSScorer(t)
	job := "Looking for python django kubernetes python django kubernetes"

	full, err := scorer.ScoreDocument(context.Background(),
		"Shipped python services with django on kubernetes looking", job)
	require.NoError(t, err)
	assert.Equal(t, 100.0, full.Components[DimKeywordMatch])

	none, err := scorer.ScoreDocument(context.Background(),
		"Completely unrelated text about gardening", job)
	require.NoError(t, err)
	assert.Equal(t, 0.0, none.Components[DimKeywordMatch])

	// A keyword ending a sentence still counts as matched.
	trailing, err := scorer.ScoreDocument(context.Background(),
		"Shipped services using kubernetes.", job)
	require.NoError(t, err)
	assert.Equal(t, 25.0, trailing.Components[DimKeywordMatch])
}

func TestScoreDocumentBounded(t *testing.T) {
	scorer := newTestATSScorer(t)

	inputs := []string{
		"",
		"<table><img><canvas>",
		strings.Repeat("increased 100% delivered launched managed ", 200),
		"!!! ??? ###",
	}
	for _, text := range inputs {
		composite, err := scorer.ScoreDocument(context.Background(), text, "")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, composite.Overall, 0.0)
		assert.LessOrEqual(t, composite.Overall, 100.0)
		for dim, v := range composite.Components {
			assert.GreaterOrEqual(t, v, 0.0, dim)
			assert.LessOrEqual(t, v, 100.0, dim)
		}
	}
}

func TestScoreDocumentDeterministic(t *testing.T) {
	scorer := newTestATSScorer(t)
	text := "Experience\n\nLed migrations, increased uptime 15%.\n\nSkills\n\nGo, SQL."
	job := "We need experience with migrations and uptime guarantees"

	first, err := scorer.ScoreDocument(context.Background(), text, job)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := scorer.ScoreDocument(context.Background(), text, job)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScoreDocumentTooLong(t *testing.T) {
	scorer := newTestATSScorer(t)
	huge := strings.Repeat("a", MaxTextLength+1)

	_, err := scorer.ScoreDocument(context.Background(), huge, "")
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestEvaluateDocument(t *testing.T) {
	scorer := newTestATSScorer(t)

	eval, err := scorer.EvaluateDocument(context.Background(), "foo <table> bar", "")
	require.NoError(t, err)

	assert.Contains(t, eval.Weaknesses, "Tables or images may confuse applicant tracking systems")
	assert.Contains(t, eval.Suggestions, "Replace tables and images with plain text")
	assert.Contains(t, eval.Suggestions, "Add specific numbers or percentages to your achievements")
}

func TestEvaluateDocumentStrengths(t *testing.T) {
	scorer := newTestATSScorer(t)

	text := "Experience\n\nLed and delivered and launched and managed programs, " +
		"increased revenue 40%, reduced costs 15%, improved NPS 10%.\n\n" +
		"Education\n\nSkills\n\nGo."
	eval, err := scorer.EvaluateDocument(context.Background(), text, "")
	require.NoError(t, err)

	assert.Contains(t, eval.Strengths, "Clean, parser-friendly formatting")
	assert.Contains(t, eval.Strengths, "Strong action verbs describe your work")
	assert.Contains(t, eval.Strengths, "Achievements are backed by specific numbers")
}
