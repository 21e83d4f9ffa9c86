package scorers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// MatchConfig controls candidate-job matching.
type MatchConfig struct {
	// MinScore filters the ranking; candidates scoring below it are
	// dropped from the results (they still appear in failure records
	// when they took the fallback).
	MinScore float64 `yaml:"min_score" validate:"min=0,max=100"`

	// Concurrency bounds the number of candidates scored in parallel.
	Concurrency int `yaml:"concurrency" validate:"min=1,max=256"`
}

// DefaultMatchConfig returns the stock matching configuration: minimum
// score 70, eight concurrent scorers.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{MinScore: 70, Concurrency: 8}
}

// MatchEngine ranks candidates against a job requirement. Scoring is
// additive over four criteria: skills 40, experience 30, education 20,
// location 10. Immutable after construction and safe for concurrent
// use.
type MatchEngine struct {
	cfg     MatchConfig
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewMatchEngine creates a match engine. A nil metrics collector
// disables metrics.
func NewMatchEngine(config MatchConfig, metrics ports.MetricsCollector) (*MatchEngine, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("%w: match engine: %v", domain.ErrInvalidConfiguration, err)
	}
	return &MatchEngine{
		cfg:     config,
		metrics: metrics,
		tracer:  otel.Tracer("match-engine"),
	}, nil
}

// Score computes one candidate's compatibility with a job. Missing
// fields on either side contribute zero, never a penalty. A candidate
// without an id cannot be ranked and is an error.
func (m *MatchEngine) Score(ctx context.Context, candidate domain.CandidateProfile, job domain.JobRequirement) (domain.MatchResult, error) {
	if candidate.ID == "" {
		return domain.MatchResult{}, fmt.Errorf("%w: candidate id is required", domain.ErrInvalidInput)
	}

	var score float64
	score += skillScore(candidate, job)
	score += experienceScore(candidate, job)
	score += educationScore(candidate, job)
	score += locationScore(candidate, job)

	return domain.MatchResult{
		CandidateID: candidate.ID,
		Score:       domain.ClampScore(score),
		Reasons:     matchReasons(candidate, job),
	}, nil
}

// Match scores a batch of candidates against a job and returns the
// filtered, sorted ranking. A candidate that cannot be scored receives
// the neutral fallback score and a failure record; the batch itself
// never aborts on individual candidates.
func (m *MatchEngine) Match(ctx context.Context, candidates []domain.CandidateProfile, job domain.JobRequirement) (domain.MatchReport, error) {
	ctx, span := m.tracer.Start(ctx, "MatchEngine.Match",
		trace.WithAttributes(attribute.Int("match.candidates", len(candidates))),
	)
	defer span.End()
	start := time.Now()

	if len(candidates) > MaxBatchSize {
		err := fmt.Errorf("%w: %d candidates exceeds limit of %d", ErrBatchTooLarge, len(candidates), MaxBatchSize)
		span.RecordError(err)
		return domain.MatchReport{}, err
	}

	results := make([]domain.MatchResult, len(candidates))
	failures := make([]domain.PartialFailure, len(candidates))
	failed := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Concurrency)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := m.Score(gctx, candidate, job)
			if err != nil {
				itemID := candidate.ID
				if itemID == "" {
					itemID = fmt.Sprintf("candidate_%d", i)
				}
				results[i] = domain.MatchResult{
					CandidateID: itemID,
					Score:       neutralFallbackScore,
					Fallback:    true,
				}
				failures[i] = domain.PartialFailure{ItemID: itemID, Reason: err.Error()}
				failed[i] = true
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return domain.MatchReport{}, err
	}

	report := domain.MatchReport{ID: uuid.NewString()}
	for i, result := range results {
		if failed[i] {
			report.Failures = append(report.Failures, failures[i])
		}
		if result.Score >= m.cfg.MinScore {
			report.Results = append(report.Results, result)
		}
	}
	sort.SliceStable(report.Results, func(i, j int) bool {
		if report.Results[i].Score != report.Results[j].Score {
			return report.Results[i].Score > report.Results[j].Score
		}
		return report.Results[i].CandidateID < report.Results[j].CandidateID
	})

	span.SetAttributes(
		attribute.String("match.report_id", report.ID),
		attribute.Int("match.ranked", len(report.Results)),
		attribute.Int("match.fallbacks", len(report.Failures)),
	)
	if m.metrics != nil {
		labels := map[string]string{"scorer": "match_engine"}
		m.metrics.RecordLatency("match_batch", time.Since(start), labels)
		m.metrics.RecordCounter("scoring_operations_total", 1, labels)
		if n := len(report.Failures); n > 0 {
			m.metrics.RecordCounter("match_fallbacks_total", float64(n), labels)
		}
	}
	return report, nil
}

// skillScore awards up to 40 points for the share of required skills
// the candidate has, compared case-insensitively.
func skillScore(candidate domain.CandidateProfile, job domain.JobRequirement) float64 {
	jobSkills := foldSkillSet(job.RequiredSkills)
	if len(jobSkills) == 0 {
		return 0
	}
	matched := matchedSkills(candidate.Skills, jobSkills)
	return min(float64(len(matched))/float64(len(jobSkills))*40, 40)
}

// experienceScore awards up to 30 points when the candidate meets or
// exceeds the required level, shrinking by five per level of overshoot.
// Falling short of the requirement earns nothing.
func experienceScore(candidate domain.CandidateProfile, job domain.JobRequirement) float64 {
	cand := domain.ExperienceOrdinal(fold(candidate.ExperienceLevel))
	want := domain.ExperienceOrdinal(fold(job.ExperienceLevel))
	if cand == 0 || want == 0 || cand < want {
		return 0
	}
	return max(30-float64(cand-want)*5, 0)
}

// educationScore awards 20 points for meeting the requirement and 15
// for being exactly one level short.
func educationScore(candidate domain.CandidateProfile, job domain.JobRequirement) float64 {
	cand := domain.EducationOrdinal(fold(candidate.EducationLevel))
	want := domain.EducationOrdinal(fold(job.EducationRequired))
	switch {
	case cand == 0 || want == 0:
		return 0
	case cand >= want:
		return 20
	case cand == want-1:
		return 15
	}
	return 0
}

// locationScore awards 10 points for a city preference match and 5 for
// a region match. Either side missing its location earns nothing.
func locationScore(candidate domain.CandidateProfile, job domain.JobRequirement) float64 {
	pref := fold(strings.TrimSpace(candidate.PreferredLocation))
	if pref == "" {
		return 0
	}
	if city := fold(job.Location.City); city != "" && strings.Contains(city, pref) {
		return 10
	}
	if region := fold(job.Location.Region); region != "" && strings.Contains(region, pref) {
		return 5
	}
	return 0
}

// matchReasons explains a match in the fixed skills, experience,
// education, location order, capped at three.
func matchReasons(candidate domain.CandidateProfile, job domain.JobRequirement) []string {
	var reasons []string

	jobSkills := foldSkillSet(job.RequiredSkills)
	if matched := matchedSkills(candidate.Skills, jobSkills); len(matched) > 0 {
		sample := matched
		if len(sample) > 3 {
			sample = sample[:3]
		}
		reasons = append(reasons, fmt.Sprintf("Matches %d required skills: %s",
			len(matched), strings.Join(sample, ", ")))
	}

	if candidate.ExperienceLevel != "" && job.ExperienceLevel != "" &&
		fold(candidate.ExperienceLevel) == fold(job.ExperienceLevel) {
		reasons = append(reasons, fmt.Sprintf("Perfect experience level match: %s", candidate.ExperienceLevel))
	}

	if candidate.EducationLevel != "" && job.EducationRequired != "" &&
		fold(candidate.EducationLevel) == fold(job.EducationRequired) {
		reasons = append(reasons, fmt.Sprintf("Education requirement met: %s", candidate.EducationLevel))
	}

	pref := fold(strings.TrimSpace(candidate.PreferredLocation))
	if pref != "" && job.Location.City != "" && strings.Contains(fold(job.Location.City), pref) {
		reasons = append(reasons, fmt.Sprintf("Location preference matches: %s", job.Location.City))
	}

	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return reasons
}

// foldSkillSet folds, trims, and dedupes a skill list.
func foldSkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = fold(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// matchedSkills returns the sorted folded skills present in both lists.
func matchedSkills(candidateSkills []string, jobSkills map[string]struct{}) []string {
	var matched []string
	for s := range foldSkillSet(candidateSkills) {
		if _, ok := jobSkills[s]; ok {
			matched = append(matched, s)
		}
	}
	sort.Strings(matched)
	return matched
}
