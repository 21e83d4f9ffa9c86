package scorers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// Scenario archetypes. The archetype decides which coaching branches
// and employer flourishes apply.
const (
	ScenarioTypeStartup     = "startup"
	ScenarioTypeCorporate   = "corporate"
	ScenarioTypeRemote      = "remote"
	ScenarioTypeChallenging = "challenging"
	ScenarioTypeConstraint  = "constraint_based"
	ScenarioTypeCompetitive = "competitive"
)

// ScenarioContext describes one practice negotiation scenario.
type ScenarioContext struct {
	ID         string `json:"id" validate:"required"`
	Type       string `json:"type" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced expert"`
	Stage      int    `json:"stage" validate:"min=1"`

	EmployerConstraints []string           `json:"employer_constraints"`
	MarketContext       map[string]string  `json:"market_context"`
	SalaryRange         domain.SalaryRange `json:"salary_range"`
}

// ScenarioProgress tracks movement through a scenario's stages.
type ScenarioProgress struct {
	CurrentStage      int     `json:"current_stage"`
	TotalStages       int     `json:"total_stages"`
	ProgressPercent   float64 `json:"progress_percent"`
	ReadinessScore    float64 `json:"readiness_score"`
	StrategiesUsed    int     `json:"strategies_used"`
	Difficulty        string  `json:"difficulty"`
	NextStageUnlocked bool    `json:"next_stage_unlocked"`
}

// ScenarioFeedback is the full coaching result for one response within
// a scenario.
type ScenarioFeedback struct {
	Analysis           domain.NegotiationAnalysis `json:"analysis"`
	ContextualFeedback string                     `json:"contextual_feedback"`
	EmployerResponse   string                     `json:"employer_response"`
	NextStageAvailable bool                       `json:"next_stage_available"`
	ImprovementTips    []string                   `json:"improvement_tips"`
	Progress           ScenarioProgress           `json:"progress"`
}

const scenarioTotalStages = 3

// DefaultScenarios returns the six built-in practice scenarios.
func DefaultScenarios() map[string]ScenarioContext {
	return map[string]ScenarioContext{
		"tech-startup": {
			ID:                  "tech-startup",
			Type:                ScenarioTypeStartup,
			Difficulty:          "intermediate",
			Stage:               1,
			EmployerConstraints: []string{"budget_limited", "equity_heavy", "growth_focused"},
			MarketContext: map[string]string{
				"industry":     "technology",
				"location":     "kathmandu",
				"company_size": "startup",
				"growth_stage": "series_a",
			},
			SalaryRange: domain.SalaryRange{Min: 80000, Max: 120000, Currency: "NPR"},
		},
		"corporate-offer": {
			ID:                  "corporate-offer",
			Type:                ScenarioTypeCorporate,
			Difficulty:          "beginner",
			Stage:               1,
			EmployerConstraints: []string{"structured_bands", "benefits_rich", "process_oriented"},
			MarketContext: map[string]string{
				"industry":     "corporate",
				"location":     "kathmandu",
				"company_size": "large",
				"stability":    "high",
			},
			SalaryRange: domain.SalaryRange{Min: 100000, Max: 150000, Currency: "NPR"},
		},
		"remote-international": {
			ID:                  "remote-international",
			Type:                ScenarioTypeRemote,
			Difficulty:          "advanced",
			Stage:               1,
			EmployerConstraints: []string{"cost_arbitrage", "performance_based", "timezone_overlap"},
			MarketContext: map[string]string{
				"industry":     "technology",
				"location":     "remote",
				"company_size": "medium",
				"market":       "international",
			},
			SalaryRange: domain.SalaryRange{Min: 2500, Max: 4000, Currency: "USD"},
		},
		"low-offer": {
			ID:                  "low-offer",
			Type:                ScenarioTypeChallenging,
			Difficulty:          "advanced",
			Stage:               1,
			EmployerConstraints: []string{"tight_budget", "learning_focused", "growth_potential"},
			MarketContext: map[string]string{
				"industry":           "general",
				"location":           "kathmandu",
				"company_size":       "small",
				"budget_constraints": "high",
			},
			SalaryRange: domain.SalaryRange{Min: 60000, Max: 90000, Currency: "NPR"},
		},
		"budget-constraints": {
			ID:                  "budget-constraints",
			Type:                ScenarioTypeConstraint,
			Difficulty:          "intermediate",
			Stage:               1,
			EmployerConstraints: []string{"budget_tight", "creative_compensation", "future_reviews"},
			MarketContext: map[string]string{
				"industry":     "general",
				"location":     "kathmandu",
				"company_size": "medium",
				"flexibility":  "moderate",
			},
			SalaryRange: domain.SalaryRange{Min: 90000, Max: 130000, Currency: "NPR"},
		},
		"multiple-offers": {
			ID:                  "multiple-offers",
			Type:                ScenarioTypeCompetitive,
			Difficulty:          "expert",
			Stage:               1,
			EmployerConstraints: []string{"competitive_market", "retention_focused", "value_based"},
			MarketContext: map[string]string{
				"industry":     "technology",
				"location":     "kathmandu",
				"company_size": "large",
				"competition":  "high",
			},
			SalaryRange: domain.SalaryRange{Min: 120000, Max: 180000, Currency: "NPR"},
		},
	}
}

// Employer response categories and types.
const (
	responsePositive    = "positive"
	responseNeutral     = "neutral"
	responseChallenging = "challenging"

	responseTypeMarketResearch   = "market_research"
	responseTypeValueProposition = "value_proposition"
	responseTypeCollaborative    = "collaborative"
	responseTypeAggressive       = "aggressive_approach"
	responseTypeUnrealistic      = "unrealistic_expectations"
	responseTypeDefault          = "default"
)

// employerTemplates maps response category and type to candidate
// replies. Categories without a matching type fall back to the neutral
// defaults.
var employerTemplates = map[string]map[string][]string{
	responsePositive: {
		responseTypeMarketResearch: {
			"I appreciate that you've done your research. Let me see what flexibility we have within our budget constraints.",
			"Your market research is thorough. We value candidates who come prepared with data.",
			"Those numbers align with what we've seen in the market. Let's discuss how we can work within that range.",
		},
		responseTypeValueProposition: {
			"Your experience and skills are exactly what we're looking for. Let me discuss this with the team.",
			"I can see the value you'd bring to our organization. We should be able to find a way to make this work.",
			"Your track record speaks for itself. We're definitely interested in moving forward.",
		},
		responseTypeCollaborative: {
			"I appreciate your collaborative approach. Let's work together to find a solution that works for both parties.",
			"That's exactly the kind of partnership mindset we value. Let's explore our options.",
			"Your willingness to work with us is refreshing. We should be able to find common ground.",
		},
	},
	responseNeutral: {
		responseTypeDefault: {
			"Thank you for sharing your thoughts. Let me take this back to the team and see what we can do.",
			"I understand your position. We'll need to review our options and get back to you.",
			"That's helpful feedback. We'll consider this as we finalize our offer.",
		},
		"budget_constraints": {
			"While we have budget constraints, we're committed to finding the right person for this role.",
			"Our budget is limited, but we're open to creative compensation structures.",
			"We may not be able to meet that exact figure, but let's discuss other ways to bridge the gap.",
		},
	},
	responseChallenging: {
		responseTypeAggressive: {
			"I understand you have strong feelings about this, but we need to work within our established parameters.",
			"We value your enthusiasm, but we also need to be realistic about our constraints.",
			"Let's take a step back and focus on finding a mutually beneficial solution.",
		},
		responseTypeUnrealistic: {
			"That's significantly above our budget range. Let's discuss what's realistic for this position.",
			"We need to align expectations with market realities and our company's compensation structure.",
			"While we appreciate your ambition, we need to find a number that works for both parties.",
		},
	},
}

var (
	nprAmountRE = regexp.MustCompile(`(?i)NPR\s*[\d,]+`)
	usdAmountRE = regexp.MustCompile(`(?i)(?:\$|USD)\s*[\d,]+`)
	nonDigitRE  = regexp.MustCompile(`[^\d]`)
)

// NegotiationEngine runs practice scenarios: it analyzes candidate
// responses in context, simulates employer replies, and tracks stage
// progression. Immutable after construction and safe for concurrent
// use.
type NegotiationEngine struct {
	analyzer  *NegotiationAnalyzer
	scenarios map[string]ScenarioContext
	selector  ports.Selector
	metrics   ports.MetricsCollector
	tracer    trace.Tracer
}

// NewNegotiationEngine creates a scenario engine around an analyzer.
// A nil selector defaults to the deterministic first-option selector; a
// nil metrics collector disables metrics.
func NewNegotiationEngine(
	analyzer *NegotiationAnalyzer,
	selector ports.Selector,
	metrics ports.MetricsCollector,
) (*NegotiationEngine, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("%w: negotiation engine requires an analyzer", domain.ErrInvalidConfiguration)
	}
	if selector == nil {
		selector = ports.FirstSelector()
	}
	return &NegotiationEngine{
		analyzer:  analyzer,
		scenarios: DefaultScenarios(),
		selector:  selector,
		metrics:   metrics,
		tracer:    otel.Tracer("negotiation-engine"),
	}, nil
}

// Scenario returns the scenario with the given id.
func (e *NegotiationEngine) Scenario(id string) (ScenarioContext, error) {
	sc, ok := e.scenarios[id]
	if !ok {
		return ScenarioContext{}, fmt.Errorf("%w: %q", domain.ErrUnknownScenario, id)
	}
	return sc, nil
}

// EvaluateScenarioResponse analyzes one candidate response inside a
// scenario and assembles the full coaching feedback.
func (e *NegotiationEngine) EvaluateScenarioResponse(
	ctx context.Context,
	scenarioID string,
	stage int,
	response string,
) (ScenarioFeedback, error) {
	_, span := e.tracer.Start(ctx, "NegotiationEngine.EvaluateScenarioResponse",
		trace.WithAttributes(
			attribute.String("scenario.id", scenarioID),
			attribute.Int("scenario.stage", stage),
		),
	)
	defer span.End()
	start := time.Now()

	scenario, err := e.Scenario(scenarioID)
	if err != nil {
		span.RecordError(err)
		return ScenarioFeedback{}, err
	}
	if stage < 1 {
		stage = 1
	}

	analysis, err := e.analyzer.AnalyzeResponse(ctx, response)
	if err != nil {
		span.RecordError(err)
		return ScenarioFeedback{}, err
	}

	feedback := ScenarioFeedback{
		Analysis:           analysis,
		ContextualFeedback: e.contextualFeedback(analysis, scenario, response),
		EmployerResponse:   e.employerResponse(analysis, scenario, response),
		NextStageAvailable: shouldAdvanceStage(analysis),
		ImprovementTips:    e.improvementTips(analysis, scenario, response),
		Progress:           scenarioProgress(analysis, scenario, stage),
	}

	span.SetAttributes(
		attribute.Float64("eval.score", analysis.Overall),
		attribute.Bool("eval.stage_advance", feedback.NextStageAvailable),
	)
	if e.metrics != nil {
		labels := map[string]string{"scorer": "negotiation_engine", "scenario": scenarioID}
		e.metrics.RecordLatency("evaluate_scenario", time.Since(start), labels)
		e.metrics.RecordCounter("scoring_operations_total", 1, labels)
	}
	return feedback, nil
}

// contextualFeedback tailors coaching to the scenario archetype, its
// difficulty, and any salary figure the candidate named.
func (e *NegotiationEngine) contextualFeedback(
	analysis domain.NegotiationAnalysis,
	scenario ScenarioContext,
	response string,
) string {
	var parts []string

	switch scenario.Type {
	case ScenarioTypeStartup:
		if analysis.HasStrategy(domain.StrategyMarketResearch) {
			parts = append(parts, "Great use of market research; startups respect data-driven candidates.")
		}
		if analysis.HasStrategy(domain.StrategyAlternativeCompensation) {
			parts = append(parts, "Excellent focus on equity and benefits, a good fit for startup negotiations.")
		} else {
			parts = append(parts, "Consider discussing equity options; startups often compensate with ownership.")
		}
	case ScenarioTypeCorporate:
		if analysis.SubScores[DimProfessionalism] > 80 {
			parts = append(parts, "Professional tone is perfect for corporate environments.")
		}
		if analysis.HasStrategy(domain.StrategyValueProposition) {
			parts = append(parts, "Strong value proposition; corporations value proven results.")
		}
	case ScenarioTypeRemote:
		folded := fold(response)
		if strings.Contains(folded, "timezone") || strings.Contains(folded, "communication") {
			parts = append(parts, "Addressing remote work considerations shows professionalism.")
		} else {
			parts = append(parts, "Consider mentioning timezone flexibility and communication skills.")
		}
	}

	if scenario.Difficulty == "expert" && len(analysis.Strategies) < 3 {
		parts = append(parts, "Expert scenarios require multiple negotiation strategies.")
	}

	if salary, ok := extractSalary(response); ok {
		parts = append(parts, salaryPositioning(salary, scenario.SalaryRange))
	}

	if len(parts) == 0 {
		return "Keep practicing to improve your negotiation skills!"
	}
	return strings.Join(parts, " ")
}

// employerResponse picks a simulated reply. The category follows the
// analysis scores; the type follows an ordered strategy lookup; the
// concrete line goes through the injected selector.
func (e *NegotiationEngine) employerResponse(
	analysis domain.NegotiationAnalysis,
	scenario ScenarioContext,
	response string,
) string {
	category := responseNeutral
	switch {
	case analysis.Overall >= 80 && analysis.SubScores[DimProfessionalism] >= 75:
		category = responsePositive
	case analysis.Overall < 50 || analysis.SubScores[DimProfessionalism] < 60:
		category = responseChallenging
	}

	responseType := responseTypeDefault
	switch {
	case analysis.HasStrategy(domain.StrategyMarketResearch):
		responseType = responseTypeMarketResearch
	case analysis.HasStrategy(domain.StrategyValueProposition):
		responseType = responseTypeValueProposition
	case analysis.HasStrategy(domain.StrategyCollaborative):
		responseType = responseTypeCollaborative
	case analysis.Tone == domain.ToneAggressive:
		responseType = responseTypeAggressive
	case e.salaryUnrealistic(response, scenario):
		responseType = responseTypeUnrealistic
	}

	options := employerTemplates[category][responseType]
	if len(options) == 0 {
		options = employerTemplates[responseNeutral][responseTypeDefault]
	}
	selected := e.selector.Pick(options)

	// Scenario flavor riding on keywords in the chosen line.
	switch {
	case scenario.Type == ScenarioTypeStartup && strings.Contains(selected, "budget"):
		selected += " As a startup, we're also excited to offer equity participation in our growth."
	case scenario.Type == ScenarioTypeCorporate && strings.Contains(selected, "team"):
		selected += " We have established processes for salary reviews and career advancement."
	}
	return selected
}

// shouldAdvanceStage requires a passing overall score, at least one
// detected strategy, and a professional floor.
func shouldAdvanceStage(analysis domain.NegotiationAnalysis) bool {
	return analysis.Overall >= 60 &&
		len(analysis.Strategies) >= 1 &&
		analysis.SubScores[DimProfessionalism] >= 70
}

// improvementTips returns up to five targeted tips ordered from
// strategy gaps to tactics.
func (e *NegotiationEngine) improvementTips(
	analysis domain.NegotiationAnalysis,
	scenario ScenarioContext,
	response string,
) []string {
	var tips []string

	if !analysis.HasStrategy(domain.StrategyMarketResearch) {
		industry := scenario.MarketContext["industry"]
		if industry == "" {
			industry = "your industry"
		}
		location := scenario.MarketContext["location"]
		if location == "" {
			location = "your area"
		}
		tips = append(tips, fmt.Sprintf("Research salary ranges for %s positions in %s", industry, location))
	}
	if !analysis.HasStrategy(domain.StrategyValueProposition) {
		tips = append(tips, "Highlight specific achievements and skills that justify your salary request")
	}

	switch scenario.Type {
	case ScenarioTypeStartup:
		if !analysis.HasStrategy(domain.StrategyAlternativeCompensation) {
			tips = append(tips, "Discuss equity options and growth opportunities in startup negotiations")
		}
	case ScenarioTypeRemote:
		if !strings.Contains(fold(response), "timezone") {
			tips = append(tips, "Mention your timezone flexibility and communication skills for remote positions")
		}
	}

	if analysis.SubScores[DimConfidence] < 70 {
		tips = append(tips, "Use more confident language and avoid uncertain phrases like 'maybe' or 'I think'")
	}
	if analysis.SubScores[DimProfessionalism] < 75 {
		tips = append(tips, "Maintain a more professional tone with phrases like 'I appreciate' and 'thank you'")
	}
	if !questionRE.MatchString(response) {
		tips = append(tips, "Ask clarifying questions about benefits, growth opportunities, or timeline")
	}

	if len(tips) > 5 {
		tips = tips[:5]
	}
	return tips
}

// scenarioProgress blends the analysis into a stage-readiness view.
// Readiness weighs overall 40%, professionalism 30%, and strategy
// count 30% (ten points per strategy, capped).
func scenarioProgress(analysis domain.NegotiationAnalysis, scenario ScenarioContext, stage int) ScenarioProgress {
	strategyScore := min(float64(len(analysis.Strategies))*10, 100)
	readiness := analysis.Overall*0.4 +
		analysis.SubScores[DimProfessionalism]*0.3 +
		strategyScore*0.3

	return ScenarioProgress{
		CurrentStage:      stage,
		TotalStages:       scenarioTotalStages,
		ProgressPercent:   min(float64(stage)/scenarioTotalStages*100, 100),
		ReadinessScore:    min(readiness, 100),
		StrategiesUsed:    len(analysis.Strategies),
		Difficulty:        scenario.Difficulty,
		NextStageUnlocked: readiness >= 70,
	}
}

// extractSalary finds the first salary figure in a response, NPR before
// USD. The dollar sign implies USD.
func extractSalary(response string) (domain.SalaryAmount, bool) {
	if m := nprAmountRE.FindString(response); m != "" {
		return parseSalary(m, "NPR")
	}
	if m := usdAmountRE.FindString(response); m != "" {
		return parseSalary(m, "USD")
	}
	return domain.SalaryAmount{}, false
}

func parseSalary(match, currency string) (domain.SalaryAmount, bool) {
	digits := nonDigitRE.ReplaceAllString(match, "")
	amount, err := strconv.Atoi(digits)
	if err != nil {
		return domain.SalaryAmount{}, false
	}
	return domain.SalaryAmount{Amount: amount, Currency: currency}, true
}

// salaryPositioning compares a named figure to the scenario's expected
// band.
func salaryPositioning(salary domain.SalaryAmount, expected domain.SalaryRange) string {
	if salary.Currency != expected.Currency {
		return "Consider using the same currency as the job posting for clarity."
	}

	amount := float64(salary.Amount)
	band := fmt.Sprintf("%s-%s", formatAmount(expected.Min), formatAmount(expected.Max))
	switch {
	case amount < expected.Min:
		return fmt.Sprintf("Your request (%s) is below the expected range (%s). Consider aiming higher.",
			formatAmount(amount), band)
	case amount > expected.Max*1.2:
		return fmt.Sprintf("Your request (%s) is significantly above the expected range (%s). Consider market realities.",
			formatAmount(amount), band)
	case amount > expected.Max:
		return fmt.Sprintf("Your request (%s) is above the range (%s) but could be justified with strong value proposition.",
			formatAmount(amount), band)
	default:
		return fmt.Sprintf("Your request (%s) is within the expected range (%s).", formatAmount(amount), band)
	}
}

// salaryUnrealistic reports a figure more than 50% above the scenario
// maximum, in the scenario's own currency.
func (e *NegotiationEngine) salaryUnrealistic(response string, scenario ScenarioContext) bool {
	salary, ok := extractSalary(response)
	if !ok || salary.Currency != scenario.SalaryRange.Currency {
		return false
	}
	return float64(salary.Amount) > scenario.SalaryRange.Max*1.5
}

// baseScenarioHints apply to every scenario.
var baseScenarioHints = []string{
	"Research market salary ranges for your position and location",
	"Prepare specific examples of your achievements and value",
	"Practice active listening and acknowledge employer constraints",
	"Ask questions about benefits, growth opportunities, and timeline",
}

// scenarioTypeHints extend the base hints per archetype.
var scenarioTypeHints = map[string][]string{
	ScenarioTypeStartup: {
		"Discuss equity participation and growth potential",
		"Show enthusiasm for the company's mission and vision",
		"Be flexible with base salary in exchange for equity",
	},
	ScenarioTypeCorporate: {
		"Emphasize your professional experience and stability",
		"Ask about career advancement and development programs",
		"Focus on total compensation package including benefits",
	},
	ScenarioTypeRemote: {
		"Highlight your remote work experience and self-management skills",
		"Discuss timezone flexibility and communication preferences",
		"Emphasize your value despite geographic arbitrage",
	},
}

// ScenarioHints returns up to six preparation hints for a scenario.
func (e *NegotiationEngine) ScenarioHints(scenarioID string) ([]string, error) {
	scenario, err := e.Scenario(scenarioID)
	if err != nil {
		return nil, err
	}

	hints := make([]string, 0, 7)
	hints = append(hints, baseScenarioHints...)
	hints = append(hints, scenarioTypeHints[scenario.Type]...)
	if len(hints) > 6 {
		hints = hints[:6]
	}
	return hints, nil
}

// ExportedAnalysis is the flattened, frontend-friendly analysis view.
type ExportedAnalysis struct {
	Strategies           []string           `json:"strategies"`
	StrategyExplanations map[string]string  `json:"strategy_explanations"`
	Tone                 string             `json:"tone"`
	Scores               map[string]float64 `json:"scores"`
	Strengths            []string           `json:"strengths"`
	Weaknesses           []string           `json:"weaknesses"`
	Suggestions          []string           `json:"suggestions"`
	KeyPhrases           []string           `json:"key_phrases"`
}

// ExportAnalysis flattens an analysis for serialization, with scores
// rounded to one decimal place.
func ExportAnalysis(analysis domain.NegotiationAnalysis) ExportedAnalysis {
	strategies := make([]string, len(analysis.Strategies))
	explanations := make(map[string]string, len(analysis.Strategies))
	for i, s := range analysis.Strategies {
		strategies[i] = string(s)
		explanations[string(s)] = StrategyExplanation(s)
	}

	scores := make(map[string]float64, len(analysis.SubScores)+1)
	for dim, v := range analysis.SubScores {
		scores[dim] = round1(v)
	}
	scores["overall"] = round1(analysis.Overall)

	return ExportedAnalysis{
		Strategies:           strategies,
		StrategyExplanations: explanations,
		Tone:                 string(analysis.Tone),
		Scores:               scores,
		Strengths:            analysis.Strengths,
		Weaknesses:           analysis.Weaknesses,
		Suggestions:          analysis.Suggestions,
		KeyPhrases:           analysis.KeyPhrases,
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// formatAmount renders a salary figure with thousands separators.
func formatAmount(v float64) string {
	s := strconv.FormatInt(int64(v), 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
