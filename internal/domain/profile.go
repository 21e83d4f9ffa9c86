package domain

// Experience levels recognized by the match engine, ordered from most
// junior to most senior. The ordinal values drive experience matching.
var experienceOrdinals = map[string]int{
	"entry":     1,
	"junior":    2,
	"mid":       3,
	"senior":    4,
	"lead":      5,
	"executive": 6,
}

// Education levels recognized by the match engine, ordered from least to
// most advanced.
var educationOrdinals = map[string]int{
	"high_school": 1,
	"associate":   2,
	"bachelor":    3,
	"master":      4,
	"phd":         5,
}

// ExperienceOrdinal maps an experience-level label to its ordinal rank.
// Unknown or empty labels return 0, which the match engine treats as
// missing data (zero contribution, never a penalty).
func ExperienceOrdinal(level string) int { return experienceOrdinals[level] }

// EducationOrdinal maps an education-level label to its ordinal rank.
// Unknown or empty labels return 0.
func EducationOrdinal(level string) int { return educationOrdinals[level] }

// CandidateProfile is the structured candidate record scored by the
// match engine. Fields left empty contribute nothing to the score.
type CandidateProfile struct {
	// ID uniquely identifies the candidate within a match run. It also
	// serves as the deterministic tie-breaker when scores are equal.
	ID string `json:"id"`

	// Skills lists the candidate's skills. Comparison against job
	// requirements is case-insensitive.
	Skills []string `json:"skills,omitempty"`

	// ExperienceLevel is one of entry, junior, mid, senior, lead,
	// executive. Empty means unknown.
	ExperienceLevel string `json:"experience_level,omitempty"`

	// EducationLevel is one of high_school, associate, bachelor, master,
	// phd. Empty means unknown.
	EducationLevel string `json:"education_level,omitempty"`

	// PreferredLocation is the candidate's preferred work location, or
	// empty when no preference is recorded.
	PreferredLocation string `json:"preferred_location,omitempty"`
}

// JobLocation describes where a job is based.
type JobLocation struct {
	City   string `json:"city,omitempty"`
	Region string `json:"region,omitempty"`
}

// JobRequirement is the structured requirement set candidates are scored
// against.
type JobRequirement struct {
	// RequiredSkills lists the skills the job calls for.
	RequiredSkills []string `json:"required_skills,omitempty"`

	// ExperienceLevel is the minimum experience level the job expects.
	ExperienceLevel string `json:"experience_level,omitempty"`

	// EducationRequired is the minimum education level the job expects.
	EducationRequired string `json:"education_required,omitempty"`

	// Location is where the job is based. Zero value means unspecified.
	Location JobLocation `json:"location,omitempty"`
}

// MatchResult is the outcome of scoring one candidate against a job.
// A batch of MatchResults sorted descending by score (ties broken by
// ascending candidate id) forms a ranking.
type MatchResult struct {
	// CandidateID identifies the scored candidate.
	CandidateID string `json:"candidate_id"`

	// Score is the weighted compatibility score, in [0,100].
	Score float64 `json:"score"`

	// Reasons holds up to three human-readable justifications, in the
	// fixed skills, experience, education, location order.
	Reasons []string `json:"reasons,omitempty"`

	// Fallback marks a result whose score is the documented neutral
	// fallback rather than a computed value, so callers can distinguish
	// it from a genuine score of the same magnitude.
	Fallback bool `json:"fallback,omitempty"`
}

// MatchReport is the result of ranking a candidate batch against a job.
type MatchReport struct {
	// ID uniquely identifies this match run.
	ID string `json:"id"`

	// Results holds the ranked candidates that cleared the minimum score
	// filter, sorted descending by score with ascending-id tie-breaks.
	Results []MatchResult `json:"results"`

	// Failures records candidates that received the neutral fallback
	// score, so partial failures are visible in the batch metadata.
	Failures []PartialFailure `json:"failures,omitempty"`
}
