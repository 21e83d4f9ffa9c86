package scorers

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// JobAnalysis is the structured view of a job description.
type JobAnalysis struct {
	Keywords        []string `json:"keywords"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	ExperienceLevel string   `json:"experience_level"`
	Education       []string `json:"education"`
	Requirements    []string `json:"requirements"`

	// Quality estimates how analyzable the posting itself is, 0 to 100.
	Quality float64 `json:"quality"`
}

// NearMiss pairs a missing job keyword with the closest resume token
// that almost matches it.
type NearMiss struct {
	Keyword    string  `json:"keyword"`
	Candidate  string  `json:"candidate"`
	Similarity float64 `json:"similarity"`
}

// KeywordGap reports how a resume covers a job's keyword set.
type KeywordGap struct {
	Matched    []string   `json:"matched"`
	Missing    []string   `json:"missing"`
	NearMisses []NearMiss `json:"near_misses,omitempty"`

	// MatchPercent is matched keywords over total keywords, 0 to 100.
	MatchPercent float64 `json:"match_percent"`

	// Densities maps each keyword to its occurrence rate in the resume,
	// occurrences over total word count times 100.
	Densities map[string]float64 `json:"densities"`
}

// JobAnalyzerConfig controls keyword extraction and gap analysis.
type JobAnalyzerConfig struct {
	// MaxKeywords caps the extracted keyword list.
	MaxKeywords int `yaml:"max_keywords" validate:"min=1,max=200"`

	// MinKeywordLength drops short tokens before counting.
	MinKeywordLength int `yaml:"min_keyword_length" validate:"min=1"`

	// NearMissThreshold is the minimum similarity for reporting a
	// missing keyword as a near miss rather than a plain miss.
	NearMissThreshold float64 `yaml:"near_miss_threshold" validate:"min=0,max=1"`
}

// DefaultJobAnalyzerConfig returns the stock analyzer configuration:
// top 20 keywords, tokens of at least 4 characters, 0.8 near-miss
// similarity.
func DefaultJobAnalyzerConfig() JobAnalyzerConfig {
	return JobAnalyzerConfig{
		MaxKeywords:       20,
		MinKeywordLength:  4,
		NearMissThreshold: 0.8,
	}
}

var (
	requiredSectionRE  = regexp.MustCompile(`(?i)required skills?|must have|qualifications?`)
	preferredSectionRE = regexp.MustCompile(`(?i)preferred|nice to have|bonus`)
	skillSplitRE       = regexp.MustCompile(`[,\n\-•]`)
	yearsExperienceRE  = regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(?:of\s*)?experience`)
)

// experienceLevelWords map level markers in a posting to a canonical
// label, checked in order.
var experienceLevelWords = []struct{ word, label string }{
	{"entry", "entry level"},
	{"junior", "entry level"},
	{"senior", "senior level"},
	{"lead", "lead level"},
	{"principal", "principal level"},
}

// educationPatterns map degree mentions to canonical labels, checked in
// order; at most three are reported.
var educationPatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)bachelor`), "Bachelor's degree"},
	{regexp.MustCompile(`(?i)master`), "Master's degree"},
	{regexp.MustCompile(`(?i)phd|doctorate`), "Doctorate"},
	{regexp.MustCompile(`(?i)high school|diploma`), "High school diploma"},
	{regexp.MustCompile(`(?i)associate`), "Associate degree"},
}

// JobAnalyzer extracts keywords, skills, and requirement structure from
// job descriptions, and measures keyword gaps against resumes. Immutable
// after construction and safe for concurrent use.
type JobAnalyzer struct {
	cfg       JobAnalyzerConfig
	lexicon   *Lexicon
	tokenizer ports.Tokenizer
	metrics   ports.MetricsCollector
	tracer    trace.Tracer
}

// NewJobAnalyzer creates a job description analyzer. A nil metrics
// collector disables metrics.
func NewJobAnalyzer(
	config JobAnalyzerConfig,
	lexicon *Lexicon,
	tokenizer ports.Tokenizer,
	metrics ports.MetricsCollector,
) (*JobAnalyzer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("%w: job analyzer: %v", domain.ErrInvalidConfiguration, err)
	}
	if lexicon == nil || tokenizer == nil {
		return nil, fmt.Errorf("%w: job analyzer requires lexicon and tokenizer", domain.ErrInvalidConfiguration)
	}
	return &JobAnalyzer{
		cfg:       config,
		lexicon:   lexicon,
		tokenizer: tokenizer,
		metrics:   metrics,
		tracer:    otel.Tracer("job-analyzer"),
	}, nil
}

// AnalyzeJobDescription extracts the structured analysis of jobText.
// Empty text yields an empty analysis with quality 0, never an error.
func (a *JobAnalyzer) AnalyzeJobDescription(ctx context.Context, jobText string) (JobAnalysis, error) {
	_, span := a.tracer.Start(ctx, "JobAnalyzer.AnalyzeJobDescription",
		trace.WithAttributes(attribute.Int("job.length", len(jobText))),
	)
	defer span.End()
	start := time.Now()

	if len(jobText) > MaxTextLength {
		err := fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTextTooLong, len(jobText), MaxTextLength)
		span.RecordError(err)
		return JobAnalysis{}, err
	}
	if strings.TrimSpace(jobText) == "" {
		return JobAnalysis{Keywords: []string{}}, nil
	}

	required, requirements := a.extractSkills(jobText, requiredSectionRE, 5, 10)
	preferred, _ := a.extractSkills(jobText, preferredSectionRE, 3, 5)

	analysis := JobAnalysis{
		Keywords:        a.extractKeywords(jobText),
		RequiredSkills:  required,
		PreferredSkills: preferred,
		ExperienceLevel: extractExperienceLevel(jobText),
		Education:       extractEducation(jobText),
		Requirements:    requirements,
		Quality:         analysisQuality(jobText),
	}

	span.SetAttributes(
		attribute.Int("job.keywords", len(analysis.Keywords)),
		attribute.Float64("eval.score", analysis.Quality),
	)
	if a.metrics != nil {
		labels := map[string]string{"scorer": "job_analyzer"}
		a.metrics.RecordLatency("analyze_job", time.Since(start), labels)
		a.metrics.RecordCounter("scoring_operations_total", 1, labels)
	}
	return analysis, nil
}

// AnalyzeKeywordGaps measures how resumeText covers the given keyword
// list with case-insensitive exact token matching. Missing keywords
// within the near-miss similarity threshold of some resume token are
// additionally reported as near misses.
func (a *JobAnalyzer) AnalyzeKeywordGaps(ctx context.Context, resumeText string, keywords []string) (KeywordGap, error) {
	_, span := a.tracer.Start(ctx, "JobAnalyzer.AnalyzeKeywordGaps")
	defer span.End()

	if len(resumeText) > MaxTextLength {
		err := fmt.Errorf("%w: input exceeds limit of %d", ErrTextTooLong, MaxTextLength)
		span.RecordError(err)
		return KeywordGap{}, err
	}

	gap := KeywordGap{
		Matched:   []string{},
		Missing:   []string{},
		Densities: make(map[string]float64, len(keywords)),
	}
	if len(keywords) == 0 {
		return gap, nil
	}

	resumeTokens := a.tokenizer.Tokenize(resumeText)
	counts := make(map[string]int, len(resumeTokens))
	for _, tok := range resumeTokens {
		counts[tok]++
	}
	tokens := tokenSet(resumeTokens)

	total := 0
	for _, kw := range keywords {
		folded := fold(strings.TrimSpace(kw))
		if folded == "" {
			continue
		}
		if _, dup := gap.Densities[folded]; dup {
			continue
		}
		total++
		if len(resumeTokens) > 0 {
			gap.Densities[folded] = float64(counts[folded]) / float64(len(resumeTokens)) * 100
		} else {
			gap.Densities[folded] = 0
		}
		if counts[folded] > 0 {
			gap.Matched = append(gap.Matched, folded)
			continue
		}
		gap.Missing = append(gap.Missing, folded)
		if nm, ok := a.nearestToken(folded, tokens); ok {
			gap.NearMisses = append(gap.NearMisses, nm)
		}
	}
	if total > 0 {
		gap.MatchPercent = float64(len(gap.Matched)) / float64(total) * 100
	}

	span.SetAttributes(
		attribute.Int("gap.matched", len(gap.Matched)),
		attribute.Int("gap.missing", len(gap.Missing)),
	)
	return gap, nil
}

// AnalyzeJobKeywordGaps extracts jobText's keywords and measures how
// resumeText covers them.
func (a *JobAnalyzer) AnalyzeJobKeywordGaps(ctx context.Context, resumeText, jobText string) (KeywordGap, error) {
	if len(jobText) > MaxTextLength {
		return KeywordGap{}, fmt.Errorf("%w: input exceeds limit of %d", ErrTextTooLong, MaxTextLength)
	}
	return a.AnalyzeKeywordGaps(ctx, resumeText, a.extractKeywords(jobText))
}

// extractKeywords returns the most frequent content tokens of text,
// stop-word filtered, ordered by descending frequency with alphabetical
// tie-break for determinism.
func (a *JobAnalyzer) extractKeywords(text string) []string {
	counts := make(map[string]int)
	for _, tok := range a.tokenizer.Tokenize(text) {
		if len(tok) < a.cfg.MinKeywordLength || a.lexicon.IsStopWord(tok) {
			continue
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > a.cfg.MaxKeywords {
		keywords = keywords[:a.cfg.MaxKeywords]
	}
	return keywords
}

// extractSkills finds sections whose heading matches sectionRE, splits
// the section body on commas, newlines, dashes, and bullets, and
// collects up to perSection entries per section and limit entries total.
// The raw cleaned entries are also returned as requirement lines.
func (a *JobAnalyzer) extractSkills(text string, sectionRE *regexp.Regexp, perSection, limit int) (skills, lines []string) {
	seen := make(map[string]struct{})
	for _, body := range sectionBodies(text, sectionRE) {
		taken := 0
		for _, part := range skillSplitRE.Split(body, -1) {
			entry := strings.TrimSpace(strings.Trim(part, ":*"))
			if entry == "" || len(entry) < 2 || len(entry) > 50 {
				continue
			}
			if taken >= perSection || len(skills) >= limit {
				break
			}
			folded := fold(entry)
			if _, dup := seen[folded]; dup {
				continue
			}
			seen[folded] = struct{}{}
			skills = append(skills, entry)
			if len(lines) < 10 {
				lines = append(lines, entry)
			}
			taken++
		}
		if len(skills) >= limit {
			break
		}
	}
	return skills, lines
}

// sectionEndRE terminates a section body at a blank line or at the next
// heading, recognized as a newline followed by an uppercase letter.
var sectionEndRE = regexp.MustCompile(`\n\n|\n[A-Z]`)

// sectionBodies returns the text between each heading matched by
// sectionRE and the end of its section.
func sectionBodies(text string, sectionRE *regexp.Regexp) []string {
	var bodies []string
	for _, loc := range sectionRE.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if end := sectionEndRE.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		bodies = append(bodies, rest)
	}
	return bodies
}

// extractExperienceLevel prefers an explicit years-of-experience figure,
// then level markers, then "not specified".
func extractExperienceLevel(text string) string {
	if m := yearsExperienceRE.FindStringSubmatch(text); m != nil {
		return m[1] + " years"
	}
	folded := fold(text)
	for _, lv := range experienceLevelWords {
		if strings.Contains(folded, lv.word) {
			return lv.label
		}
	}
	return "not specified"
}

// extractEducation reports up to three canonical degree requirements.
func extractEducation(text string) []string {
	var out []string
	for _, p := range educationPatterns {
		if p.re.MatchString(text) {
			out = append(out, p.label)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}

var (
	requirementsWordRE     = regexp.MustCompile(`(?i)requirements?|qualifications?`)
	responsibilitiesWordRE = regexp.MustCompile(`(?i)responsibilities?|duties`)
	skillsWordRE           = regexp.MustCompile(`(?i)skills|experience`)
)

// analysisQuality estimates how much structure the posting offers:
// length plus the presence of requirements, responsibilities, and
// skills sections, capped at 100.
func analysisQuality(text string) float64 {
	var score float64
	switch {
	case len(text) > 500:
		score += 25
	case len(text) > 200:
		score += 15
	}
	if requirementsWordRE.MatchString(text) {
		score += 25
	}
	if responsibilitiesWordRE.MatchString(text) {
		score += 25
	}
	if skillsWordRE.MatchString(text) {
		score += 25
	}
	return domain.ClampScore(score)
}

// nearestToken finds the resume token most similar to kw, if any token
// clears the configured threshold. Similarity is one minus the
// normalized Levenshtein distance over the longer rune length.
func (a *JobAnalyzer) nearestToken(kw string, tokens map[string]struct{}) (NearMiss, bool) {
	best := NearMiss{Keyword: kw}
	ordered := make([]string, 0, len(tokens))
	for tok := range tokens {
		ordered = append(ordered, tok)
	}
	sort.Strings(ordered)

	for _, tok := range ordered {
		sim := similarity(kw, tok)
		if sim > best.Similarity {
			best.Candidate = tok
			best.Similarity = sim
		}
	}
	if best.Similarity >= a.cfg.NearMissThreshold && best.Candidate != "" {
		return best, true
	}
	return NearMiss{}, false
}

// similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) in runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
