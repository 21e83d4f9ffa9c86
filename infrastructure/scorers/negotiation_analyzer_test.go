package scorers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireo/scoring-engine/internal/domain"
)

func newTestNegotiationAnalyzer(t *testing.T) *NegotiationAnalyzer {
	t.Helper()
	analyzer, err := NewNegotiationAnalyzer(DefaultLexicon(), nil)
	require.NoError(t, err)
	return analyzer
}

func TestNewNegotiationAnalyzer(t *testing.T) {
	_, err := NewNegotiationAnalyzer(nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	analyzer, err := NewNegotiationAnalyzer(DefaultLexicon(), nil)
	require.NoError(t, err)
	assert.NotNil(t, analyzer)
}

func TestAnalyzeResponseEmpty(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	_, err := analyzer.AnalyzeResponse(context.Background(), "   \n\t")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestDetectStrategies(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	response := "According to my research and salary surveys, comparable positions " +
		"pay more. My experience in distributed systems is directly relevant. " +
		"Let's work together to find a solution. I also have a competing offer."

	got := analyzer.detectStrategies(response)
	assert.Equal(t, []domain.Strategy{
		domain.StrategyMarketResearch,
		domain.StrategyValueProposition,
		domain.StrategyCollaborative,
		domain.StrategyCompetitive,
	}, got)
}

func TestDetectStrategiesAnchoring(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	got := analyzer.detectStrategies("I am expecting NPR 120,000 for this role")
	assert.Contains(t, got, domain.StrategyAnchoring)
}

func TestAnalyzeResponseResearchBackedAsk(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	analysis, err := analyzer.AnalyzeResponse(context.Background(),
		"Based on my research, market rate for this role is NPR 120,000. "+
			"I'd love to work together to find a solution.")
	require.NoError(t, err)

	assert.Equal(t, []domain.Strategy{
		domain.StrategyAnchoring,
		domain.StrategyCollaborative,
	}, analysis.Strategies)
	assert.Equal(t, domain.ToneCollaborative, analysis.Tone)
	assert.Contains(t, analysis.KeyPhrases, "NPR 120,000")
}

func TestDetectTone(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	tests := []struct {
		name     string
		response string
		want     domain.Tone
	}{
		{
			name:     "courteous phrasing reads professional",
			response: "Thank you, I appreciate the offer and understand.",
			want:     domain.ToneProfessional,
		},
		{
			name:     "demands read assertive",
			response: "I expect a higher base and I require relocation support.",
			want:     domain.ToneAssertive,
		},
		{
			name:     "self-assured phrasing reads confident",
			response: "I'm confident in my worth and I know the market, clearly.",
			want:     domain.ToneConfident,
		},
		{
			name:     "ties resolve to the earlier declared tone",
			response: "Perhaps thank you",
			want:     domain.ToneProfessional,
		},
		{
			name:     "no indicators defaults to professional",
			response: "Hello there",
			want:     domain.ToneProfessional,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzer.detectTone(tt.response))
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	// Ten neutral words: baseline 60 plus the length bonus only.
	neutral := "We can discuss the salary details over a call tomorrow"
	assert.InDelta(t, 62, analyzer.confidenceScore(neutral), 0.01)

	// Two confident indicators on five words.
	confident := "I'm confident and definitely ready"
	assert.InDelta(t, 81, analyzer.confidenceScore(confident), 0.01)

	// Two hedges on seven words.
	hedged := "Maybe we could revisit this, I think"
	assert.InDelta(t, 45.4, analyzer.confidenceScore(hedged), 0.01)
}

func TestProfessionalismScore(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	// Two courteous indicators, capitalized, punctuated.
	polite := "Thank you for the offer. I appreciate it."
	assert.InDelta(t, 96, analyzer.professionalismScore(polite), 0.01)

	// Two hostile indicators, no capitalization or punctuation.
	hostile := "this offer is ridiculous and unfair"
	assert.InDelta(t, 40, analyzer.professionalismScore(hostile), 0.01)
}

func TestPersuasivenessScore(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	assert.InDelta(t, 50, analyzer.persuasivenessScore("plain text", nil), 0.01)

	// One high-value strategy plus a number and explicit reasoning.
	score := analyzer.persuasivenessScore("because of 40",
		[]domain.Strategy{domain.StrategyMarketResearch})
	assert.InDelta(t, 91, score, 0.01)
}

func TestEmotionalIntelligenceScore(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	assert.InDelta(t, 60, analyzer.emotionalIntelligenceScore("Plain response."), 0.01)

	// Two emotional indicators and one empathy indicator.
	warm := "I'm excited and hopeful, and I understand your position."
	assert.InDelta(t, 90, analyzer.emotionalIntelligenceScore(warm), 0.01)
}

func TestExtractKeyPhrases(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	response := "I am expecting NPR 120,000 based on market research and a 10% increase."
	assert.Equal(t,
		[]string{"NPR 120,000", "10%", "market research"},
		analyzer.extractKeyPhrases(response))
}

func TestExtractKeyPhrasesCap(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	response := "$1 $2 $3 $4 $5 $6 $7 $8 $9 $10 $11 $12"
	assert.Len(t, analyzer.extractKeyPhrases(response), 10)
}

func TestAnalyzeResponseStrengths(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	response := "Thank you for the offer. According to my research and salary surveys, " +
		"comparable positions pay NPR 120,000. My experience in backend systems is " +
		"directly relevant here. Let's work together to find a solution."

	analysis, err := analyzer.AnalyzeResponse(context.Background(), response)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Used market research to support position",
		"Clearly articulated personal value proposition",
		"Demonstrated collaborative approach",
		"Maintained professional tone throughout",
		"Included specific numbers and data",
		"Expressed gratitude and appreciation",
	}, analysis.Strengths)
	assert.Equal(t, domain.ToneProfessional, analysis.Tone)
}

func TestAnalyzeResponseWeaknessesAndSuggestions(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	analysis, err := analyzer.AnalyzeResponse(context.Background(), "This is fine")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"No clear negotiation strategies detected",
		"Could benefit from market research data",
		"Missing specific salary figures or percentages",
		"Could ask more clarifying questions",
		"Response could be more detailed",
		"Could better highlight personal value and achievements",
	}, analysis.Weaknesses)

	// Seven suggestions trigger but the list is capped at six, so the
	// final call-to-action entry is trimmed.
	assert.Equal(t, []string{
		"Try incorporating market research or value proposition strategies",
		"Include specific salary ranges based on market research",
		"Ask questions about benefits, growth opportunities, or timeline",
		"Provide more context about your experience and qualifications",
		"Consider discussing benefits, equity, or professional development",
		"Practice active listening and acknowledge the employer's constraints",
	}, analysis.Suggestions)
}

func TestAnalyzeResponseScores(t *testing.T) {
	analyzer := newTestNegotiationAnalyzer(t)

	analysis, err := analyzer.AnalyzeResponse(context.Background(), "This is fine")
	require.NoError(t, err)

	assert.InDelta(t, 60.6, analysis.SubScores[DimConfidence], 0.01)
	assert.InDelta(t, 75, analysis.SubScores[DimProfessionalism], 0.01)
	assert.InDelta(t, 50, analysis.SubScores[DimPersuasiveness], 0.01)
	assert.InDelta(t, 60, analysis.SubScores[DimEmotionalIntelligence], 0.01)
	assert.InDelta(t, 61.4, analysis.Overall, 0.01)
}

func TestStrategyExplanation(t *testing.T) {
	assert.Equal(t,
		"Using industry data and salary surveys to support your position",
		StrategyExplanation(domain.StrategyMarketResearch))
	assert.Equal(t, "Unknown strategy", StrategyExplanation(domain.Strategy("bogus")))
}
