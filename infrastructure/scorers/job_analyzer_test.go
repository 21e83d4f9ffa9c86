package scorers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJobAnalyzer(t *testing.T) *JobAnalyzer {
	t.Helper()
	analyzer, err := NewJobAnalyzer(DefaultJobAnalyzerConfig(), DefaultLexicon(), NewRegexTokenizer(), nil)
	require.NoError(t, err)
	return analyzer
}

func TestNewJobAnalyzer(t *testing.T) {
	tests := []struct {
		name      string
		config    JobAnalyzerConfig
		wantError bool
	}{
		{"default config", DefaultJobAnalyzerConfig(), false},
		{"zero max keywords", JobAnalyzerConfig{MaxKeywords: 0, MinKeywordLength: 4, NearMissThreshold: 0.8}, true},
		{"threshold above one", JobAnalyzerConfig{MaxKeywords: 20, MinKeywordLength: 4, NearMissThreshold: 1.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer, err := NewJobAnalyzer(tt.config, DefaultLexicon(), NewRegexTokenizer(), nil)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, analyzer)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, analyzer)
		})
	}
}

func TestAnalyzeJobDescriptionEmpty(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)

	analysis, err := analyzer.AnalyzeJobDescription(context.Background(), "   \n ")
	require.NoError(t, err)
	assert.Empty(t, analysis.Keywords)
	assert.Zero(t, analysis.Quality)
	assert.Empty(t, analysis.RequiredSkills)
}

func TestAnalyzeJobDescription(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)

	jobText := "Backend Engineer\n\n" +
		"We build payment infrastructure. Responsibilities include owning services end to end.\n\n" +
		"Required skills: Python, Django, PostgreSQL\n\n" +
		"Preferred: Kubernetes, Terraform\n\n" +
		"3+ years of experience with distributed systems. Bachelor's degree required."

	analysis, err := analyzer.AnalyzeJobDescription(context.Background(), jobText)
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "Django", "PostgreSQL"}, analysis.RequiredSkills)
	assert.Equal(t, []string{"Kubernetes", "Terraform"}, analysis.PreferredSkills)
	assert.Equal(t, "3 years", analysis.ExperienceLevel)
	assert.Equal(t, []string{"Bachelor's degree"}, analysis.Education)
	assert.NotEmpty(t, analysis.Keywords)
	assert.Greater(t, analysis.Quality, 0.0)
	assert.LessOrEqual(t, analysis.Quality, 100.0)
}

func TestAnalyzeJobDescriptionAdjacentHeadings(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)

	// A heading on the very next line ends the section even without a
	// blank line between them.
	analysis, err := analyzer.AnalyzeJobDescription(context.Background(),
		"Required skills: Python, Django\nPreferred: Kubernetes")
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "Django"}, analysis.RequiredSkills)
	assert.Equal(t, []string{"Kubernetes"}, analysis.PreferredSkills)
}

func TestExtractExperienceLevel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"explicit years", "3+ years of experience with Python, SQL, AWS", "3 years"},
		{"years without plus", "requires 5 years experience", "5 years"},
		{"senior marker", "we want a senior engineer", "senior level"},
		{"entry marker", "great entry opportunity", "entry level"},
		{"nothing", "a job doing things", "not specified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractExperienceLevel(tt.text))
		})
	}
}

func TestExtractEducation(t *testing.T) {
	got := extractEducation("Bachelor's or Master's degree; PhD a plus; associate degree accepted")
	// Capped at three, in pattern order.
	assert.Equal(t, []string{"Bachelor's degree", "Master's degree", "Doctorate"}, got)

	assert.Empty(t, extractEducation("no credentials mentioned"))
}

func TestAnalysisQuality(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 0},
		{"short with skills", "skills needed", 25},
		{"qualifications and duties headings count", "Qualifications: a degree. Duties: ship software.", 50},
		{
			"fully structured",
			"Requirements: many. Responsibilities: many. Skills: many. " +
				"Lots of experience expected across a long description of the role " +
				"that keeps going well past the five hundred character threshold so the " +
				"length bonus applies. The team owns critical systems and the posting " +
				"describes the stack, the on-call rotation, the growth path, the " +
				"interview process, and the compensation philosophy in enough detail " +
				"that a candidate can self-select before applying. More detail follows " +
				"about collaboration, reviews, and delivery cadence across quarters.",
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analysisQuality(tt.text))
		})
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)
	text := "python python django kubernetes terraform terraform terraform"

	got := analyzer.extractKeywords(text)
	// Frequency descending, ties alphabetical.
	assert.Equal(t, []string{"terraform", "python", "django", "kubernetes"}, got)

	for i := 0; i < 5; i++ {
		assert.Equal(t, got, analyzer.extractKeywords(text))
	}
}

func TestExtractKeywordsFiltersShortAndStopWords(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)

	got := analyzer.extractKeywords("the and with sql api golang golang")
	assert.Equal(t, []string{"golang"}, got)
}

func TestAnalyzeKeywordGaps(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)
	keywords := []string{"Kubernetes", "python", "terraform"}
	resume := "I deploy with kubernets and write python daily"

	gap, err := analyzer.AnalyzeKeywordGaps(context.Background(), resume, keywords)
	require.NoError(t, err)

	assert.Equal(t, []string{"python"}, gap.Matched)
	assert.Equal(t, []string{"kubernetes", "terraform"}, gap.Missing)
	assert.InDelta(t, 100.0/3.0, gap.MatchPercent, 1e-9)

	// 8 resume tokens, "python" appears once.
	assert.InDelta(t, 12.5, gap.Densities["python"], 1e-9)
	assert.Zero(t, gap.Densities["kubernetes"])
	assert.Zero(t, gap.Densities["terraform"])

	require.Len(t, gap.NearMisses, 1)
	assert.Equal(t, "kubernetes", gap.NearMisses[0].Keyword)
	assert.Equal(t, "kubernets", gap.NearMisses[0].Candidate)
	assert.InDelta(t, 0.9, gap.NearMisses[0].Similarity, 1e-9)
}

func TestAnalyzeKeywordGapsDensityCountsRepeats(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)

	gap, err := analyzer.AnalyzeKeywordGaps(context.Background(),
		"python python go rust", []string{"python", "go"})
	require.NoError(t, err)

	assert.Equal(t, 100.0, gap.MatchPercent)
	assert.InDelta(t, 50.0, gap.Densities["python"], 1e-9)
	assert.InDelta(t, 25.0, gap.Densities["go"], 1e-9)
}

func TestAnalyzeKeywordGapsNoKeywords(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)

	gap, err := analyzer.AnalyzeKeywordGaps(context.Background(), "resume text", nil)
	require.NoError(t, err)
	assert.Empty(t, gap.Matched)
	assert.Empty(t, gap.Missing)
	assert.Zero(t, gap.MatchPercent)
}

func TestAnalyzeJobKeywordGaps(t *testing.T) {
	analyzer := newTestJobAnalyzer(t)
	job := "kubernetes kubernetes python python terraform"

	gap, err := analyzer.AnalyzeJobKeywordGaps(context.Background(),
		"I run kubernetes and python in production", job)
	require.NoError(t, err)

	assert.Equal(t, []string{"kubernetes", "python"}, gap.Matched)
	assert.Equal(t, []string{"terraform"}, gap.Missing)
	assert.InDelta(t, 200.0/3.0, gap.MatchPercent, 1e-9)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("python", "python"))
	assert.InDelta(t, 0.9, similarity("kubernetes", "kubernets"), 1e-9)
	assert.Less(t, similarity("python", "haskell"), 0.5)
}
