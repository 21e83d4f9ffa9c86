package scorers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireo/scoring-engine/internal/domain"
	"github.com/hireo/scoring-engine/internal/ports"
)

// Dimensions of a negotiation analysis.
const (
	DimConfidence            = "confidence"
	DimProfessionalism       = "professionalism"
	DimPersuasiveness        = "persuasiveness"
	DimEmotionalIntelligence = "emotional_intelligence"
)

// strategyPatterns are the detection rules per strategy. A strategy is
// detected when any one of its patterns matches.
var strategyPatterns = map[domain.Strategy][]string{
	domain.StrategyAnchoring: {
		`based on my research.*(\$|NPR|USD)\s*[\d,]+`,
		`market rate.*(\$|NPR|USD)\s*[\d,]+`,
		`industry standard.*(\$|NPR|USD)\s*[\d,]+`,
		`expecting.*(\$|NPR|USD)\s*[\d,]+`,
	},
	domain.StrategyMarketResearch: {
		`according to.*research`,
		`market data shows`,
		`industry reports`,
		`salary surveys`,
		`glassdoor|payscale|salary\.com`,
		`comparable positions`,
	},
	domain.StrategyValueProposition: {
		`my experience in`,
		`i bring.*value`,
		`my skills in`,
		`proven track record`,
		`i have.*years of experience`,
		`expertise in`,
		`accomplished.*results`,
	},
	domain.StrategyCollaborative: {
		`let's work together`,
		`mutually beneficial`,
		`win-win`,
		`how can we`,
		`what would work for both`,
		`find a solution`,
	},
	domain.StrategyCompetitive: {
		`other offers`,
		`competing offer`,
		`another company`,
		`better offer elsewhere`,
		`market competition`,
	},
	domain.StrategyEmotionalAppeal: {
		`excited about`,
		`passionate about`,
		`dream job`,
		`perfect fit`,
		`love to work here`,
	},
	domain.StrategyLogicalReasoning: {
		`because.*therefore`,
		`given that.*it follows`,
		`the reason is`,
		`logically speaking`,
		`it makes sense`,
	},
	domain.StrategyAlternativeCompensation: {
		`equity|stock options`,
		`benefits package`,
		`professional development`,
		`flexible.*work`,
		`additional.*vacation`,
		`performance bonus`,
		`signing bonus`,
	},
	domain.StrategyTimelinePressure: {
		`need to decide by`,
		`other offer expires`,
		`timeline for decision`,
		`deadline approaching`,
	},
	domain.StrategyRelationshipBuilding: {
		`appreciate.*opportunity`,
		`thank you for`,
		`understand your position`,
		`respect.*constraints`,
		`value.*relationship`,
	},
}

// toneIndicators drive dominant-tone detection. Aggressive and passive
// are recognized tones without stock indicators; they surface only
// through custom configuration.
var toneIndicators = map[domain.Tone][]string{
	domain.ToneProfessional: {
		`thank you`, `appreciate`, `understand`, `respect`,
		`would like to discuss`, `i believe`, `in my opinion`,
	},
	domain.ToneAssertive: {
		`i expect`, `i require`, `i need`, `must have`,
		`non-negotiable`, `firm on`,
	},
	domain.ToneCollaborative: {
		`together`, `partnership`, `mutual`, `both parties`,
		`work with you`, `find a way`,
	},
	domain.ToneDefensive: {
		`but i`, `however`, `you don't understand`,
		`that's not fair`, `i deserve`,
	},
	domain.ToneConfident: {
		`i'm confident`, `i know`, `i'm certain`,
		`without a doubt`, `clearly`,
	},
	domain.ToneUncertain: {
		`i think maybe`, `perhaps`, `i'm not sure`,
		`might be`, `possibly`,
	},
}

var (
	confidenceExprs = []string{
		`i'm confident`, `i believe`, `i know`, `clearly`,
		`definitely`, `certainly`, `without doubt`,
	}
	uncertaintyExprs = []string{
		`maybe`, `perhaps`, `i think`, `possibly`,
		`might be`, `not sure`, `i guess`,
	}
	professionalExprs = []string{
		`thank you`, `appreciate`, `understand`, `respect`,
		`please`, `would like`, `could we`, `i believe`,
	}
	unprofessionalExprs = []string{
		`demand`, `insist`, `ridiculous`, `unfair`,
		`stupid`, `crazy`, `outrageous`,
	}
	empathyExprs = []string{
		`understand.*position`, `appreciate.*constraints`,
		`respect.*decision`, `see your point`,
	}
	relationshipExprs = []string{
		`work together`, `partnership`, `mutual`,
		`both.*benefit`, `team`,
	}
	emotionalExprs = []string{
		`excited`, `passionate`, `enthusiastic`,
		`concerned`, `worried`, `hopeful`,
	}
)

var (
	salaryPhraseRE = regexp.MustCompile(`(?i)(?:NPR|USD|\$)\s*[\d,]+`)
	percentageRE   = regexp.MustCompile(`\d+%`)
	anyNumberRE    = regexp.MustCompile(`\d+`)
	questionRE     = regexp.MustCompile(`\?`)
	exampleRE      = regexp.MustCompile(`(?i)for example|such as|including`)
	reasoningRE    = regexp.MustCompile(`(?i)because|since|therefore|as a result`)
	gratitudeRE    = regexp.MustCompile(`(?i)thank|appreciate`)
)

// strategyExplanations describe each strategy for coaching output.
var strategyExplanations = map[domain.Strategy]string{
	domain.StrategyAnchoring:               "Setting a reference point with specific numbers or ranges",
	domain.StrategyMarketResearch:          "Using industry data and salary surveys to support your position",
	domain.StrategyValueProposition:        "Highlighting your unique skills, experience, and contributions",
	domain.StrategyCollaborative:           "Working together to find mutually beneficial solutions",
	domain.StrategyCompetitive:             "Leveraging other offers or market competition",
	domain.StrategyEmotionalAppeal:         "Expressing enthusiasm and passion for the role",
	domain.StrategyLogicalReasoning:        "Using clear reasoning and cause-effect relationships",
	domain.StrategyAlternativeCompensation: "Discussing non-salary benefits and perks",
	domain.StrategyTimelinePressure:        "Creating urgency with deadlines or competing offers",
	domain.StrategyRelationshipBuilding:    "Focusing on long-term partnership and mutual respect",
}

// StrategyExplanation describes what a strategy means in plain language.
func StrategyExplanation(s domain.Strategy) string {
	if text, ok := strategyExplanations[s]; ok {
		return text
	}
	return "Unknown strategy"
}

// NegotiationAnalyzer detects strategies and tone in negotiation
// responses and scores them on four dimensions. Immutable after
// construction and safe for concurrent use.
type NegotiationAnalyzer struct {
	strategies map[domain.Strategy][]*regexp.Regexp
	tones      map[domain.Tone][]*regexp.Regexp

	confidence     []*regexp.Regexp
	uncertainty    []*regexp.Regexp
	professional   []*regexp.Regexp
	unprofessional []*regexp.Regexp
	empathy        []*regexp.Regexp
	relationship   []*regexp.Regexp
	emotional      []*regexp.Regexp

	lexicon *Lexicon
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewNegotiationAnalyzer creates a negotiation analyzer with the stock
// strategy and tone pattern tables. A nil metrics collector disables
// metrics.
func NewNegotiationAnalyzer(lexicon *Lexicon, metrics ports.MetricsCollector) (*NegotiationAnalyzer, error) {
	if lexicon == nil {
		return nil, fmt.Errorf("%w: negotiation analyzer requires a lexicon", domain.ErrInvalidConfiguration)
	}

	a := &NegotiationAnalyzer{
		strategies: make(map[domain.Strategy][]*regexp.Regexp, len(strategyPatterns)),
		tones:      make(map[domain.Tone][]*regexp.Regexp, len(toneIndicators)),
		lexicon:    lexicon,
		metrics:    metrics,
		tracer:     otel.Tracer("negotiation-analyzer"),
	}

	for strategy, exprs := range strategyPatterns {
		compiled, err := compilePatternList("strategy:"+string(strategy), exprs)
		if err != nil {
			return nil, err
		}
		a.strategies[strategy] = compiled
	}
	for tone, exprs := range toneIndicators {
		compiled, err := compilePatternList("tone:"+string(tone), exprs)
		if err != nil {
			return nil, err
		}
		a.tones[tone] = compiled
	}

	for _, set := range []struct {
		name  string
		exprs []string
		dst   *[]*regexp.Regexp
	}{
		{"confidence", confidenceExprs, &a.confidence},
		{"uncertainty", uncertaintyExprs, &a.uncertainty},
		{"professional", professionalExprs, &a.professional},
		{"unprofessional", unprofessionalExprs, &a.unprofessional},
		{"empathy", empathyExprs, &a.empathy},
		{"relationship", relationshipExprs, &a.relationship},
		{"emotional", emotionalExprs, &a.emotional},
	} {
		compiled, err := compilePatternList(set.name, set.exprs)
		if err != nil {
			return nil, err
		}
		*set.dst = compiled
	}
	return a, nil
}

// AnalyzeResponse runs the full negotiation analysis over one response.
// Blank input is an error; everything else degrades gracefully.
func (a *NegotiationAnalyzer) AnalyzeResponse(ctx context.Context, response string) (domain.NegotiationAnalysis, error) {
	_, span := a.tracer.Start(ctx, "NegotiationAnalyzer.AnalyzeResponse",
		trace.WithAttributes(attribute.Int("response.length", len(response))),
	)
	defer span.End()
	start := time.Now()

	if len(response) > MaxTextLength {
		err := fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTextTooLong, len(response), MaxTextLength)
		span.RecordError(err)
		return domain.NegotiationAnalysis{}, err
	}
	if strings.TrimSpace(response) == "" {
		span.RecordError(ErrEmptyResponse)
		return domain.NegotiationAnalysis{}, ErrEmptyResponse
	}

	strategies := a.detectStrategies(response)
	tone := a.detectTone(response)

	subs := map[string]float64{
		DimConfidence:            a.confidenceScore(response),
		DimProfessionalism:       a.professionalismScore(response),
		DimPersuasiveness:        a.persuasivenessScore(response, strategies),
		DimEmotionalIntelligence: a.emotionalIntelligenceScore(response),
	}
	overall := (subs[DimConfidence] + subs[DimProfessionalism] +
		subs[DimPersuasiveness] + subs[DimEmotionalIntelligence]) / 4

	analysis := domain.NegotiationAnalysis{
		Strategies: strategies,
		Tone:       tone,
		SubScores:  subs,
		Overall:    overall,
		KeyPhrases: a.extractKeyPhrases(response),
	}
	analysis.Strengths = a.identifyStrengths(analysis, response)
	analysis.Weaknesses = a.identifyWeaknesses(analysis, response)
	analysis.Suggestions = a.generateSuggestions(analysis)

	span.SetAttributes(
		attribute.Float64("eval.score", overall),
		attribute.String("eval.tone", string(tone)),
		attribute.Int("eval.strategies", len(strategies)),
	)
	if a.metrics != nil {
		labels := map[string]string{"scorer": "negotiation"}
		a.metrics.RecordLatency("analyze_response", time.Since(start), labels)
		a.metrics.RecordCounter("scoring_operations_total", 1, labels)
		a.metrics.RecordHistogram("composite_score", overall, labels)
	}
	return analysis, nil
}

// detectStrategies returns detected strategies in declaration order so
// results are stable across runs.
func (a *NegotiationAnalyzer) detectStrategies(response string) []domain.Strategy {
	var detected []domain.Strategy
	for _, strategy := range domain.StrategyOrder {
		if anyMatching(a.strategies[strategy], response) {
			detected = append(detected, strategy)
		}
	}
	return detected
}

// detectTone picks the tone with the most matching indicators. Ties go
// to the earlier tone in ToneOrder; no indicators means professional.
func (a *NegotiationAnalyzer) detectTone(response string) domain.Tone {
	best := domain.ToneProfessional
	bestScore := 0
	for _, tone := range domain.ToneOrder {
		score := countMatching(a.tones[tone], response)
		if score > bestScore {
			best = tone
			bestScore = score
		}
	}
	return best
}

// confidenceScore starts at 60, rewards confident language, penalizes
// hedging, and grants up to 20 points for response length.
func (a *NegotiationAnalyzer) confidenceScore(response string) float64 {
	score := 60.0
	score += float64(countMatching(a.confidence, response)) * 10
	score -= float64(countMatching(a.uncertainty, response)) * 8

	words := len(strings.Fields(response))
	score += min(float64(words)/5, 20)

	return domain.ClampScore(score)
}

// professionalismScore starts at 70, rewards courteous phrasing,
// penalizes hostile wording, and grants small bonuses for sentence
// capitalization and terminal punctuation.
func (a *NegotiationAnalyzer) professionalismScore(response string) float64 {
	score := 70.0
	score += float64(countMatching(a.professional, response)) * 8
	score -= float64(countMatching(a.unprofessional, response)) * 15

	for _, r := range response {
		if unicode.IsUpper(r) {
			score += 5
		}
		break
	}
	if strings.ContainsAny(response, ".!?") {
		score += 5
	}
	return domain.ClampScore(score)
}

// highValueStrategies earn an extra persuasiveness bonus each.
var highValueStrategies = []domain.Strategy{
	domain.StrategyMarketResearch,
	domain.StrategyValueProposition,
	domain.StrategyCollaborative,
}

// persuasivenessScore starts at 50 and rewards strategy diversity,
// high-value strategies, evidence, and explicit reasoning.
func (a *NegotiationAnalyzer) persuasivenessScore(response string, strategies []domain.Strategy) float64 {
	score := 50.0
	score += float64(len(strategies)) * 8

	for _, s := range strategies {
		for _, hv := range highValueStrategies {
			if s == hv {
				score += 15
				break
			}
		}
	}

	if anyNumberRE.MatchString(response) {
		score += 10
	}
	if exampleRE.MatchString(response) {
		score += 10
	}
	if reasoningRE.MatchString(response) {
		score += 8
	}
	return domain.ClampScore(score)
}

// emotionalIntelligenceScore starts at 60 and adds 10 per matching
// empathy, relationship, or emotional-awareness indicator.
func (a *NegotiationAnalyzer) emotionalIntelligenceScore(response string) float64 {
	matches := countMatching(a.empathy, response) +
		countMatching(a.relationship, response) +
		countMatching(a.emotional, response)
	return domain.ClampScore(60 + float64(matches)*10)
}

// extractKeyPhrases pulls salary amounts, percentages, and known
// positive phrases, capped at ten.
func (a *NegotiationAnalyzer) extractKeyPhrases(response string) []string {
	var phrases []string
	phrases = append(phrases, salaryPhraseRE.FindAllString(response, -1)...)
	phrases = append(phrases, percentageRE.FindAllString(response, -1)...)

	folded := fold(response)
	for _, phrase := range a.lexicon.PositivePhrases {
		if containsFold(folded, phrase) {
			phrases = append(phrases, phrase)
		}
	}

	if len(phrases) > 10 {
		phrases = phrases[:10]
	}
	return phrases
}

func (a *NegotiationAnalyzer) identifyStrengths(analysis domain.NegotiationAnalysis, response string) []string {
	var strengths []string
	if analysis.HasStrategy(domain.StrategyMarketResearch) {
		strengths = append(strengths, "Used market research to support position")
	}
	if analysis.HasStrategy(domain.StrategyValueProposition) {
		strengths = append(strengths, "Clearly articulated personal value proposition")
	}
	if analysis.HasStrategy(domain.StrategyCollaborative) {
		strengths = append(strengths, "Demonstrated collaborative approach")
	}
	if analysis.Tone == domain.ToneProfessional {
		strengths = append(strengths, "Maintained professional tone throughout")
	}
	if analysis.Tone == domain.ToneConfident {
		strengths = append(strengths, "Showed confidence in communication")
	}
	if anyNumberRE.MatchString(response) {
		strengths = append(strengths, "Included specific numbers and data")
	}
	if gratitudeRE.MatchString(response) {
		strengths = append(strengths, "Expressed gratitude and appreciation")
	}
	if len(strings.Fields(response)) > 50 {
		strengths = append(strengths, "Provided detailed and thoughtful response")
	}
	return strengths
}

// Weakness messages double as suggestion triggers.
const (
	weaknessNoStrategies = "No clear negotiation strategies detected"
	weaknessNoFigures    = "Missing specific salary figures or percentages"
	weaknessNoQuestions  = "Could ask more clarifying questions"
	weaknessTooShort     = "Response could be more detailed"
	weaknessNegativeTone = "Tone could be more positive and collaborative"
	weaknessNoResearch   = "Could benefit from market research data"
	weaknessNoValue      = "Could better highlight personal value and achievements"
)

func (a *NegotiationAnalyzer) identifyWeaknesses(analysis domain.NegotiationAnalysis, response string) []string {
	var weaknesses []string
	if len(analysis.Strategies) == 0 {
		weaknesses = append(weaknesses, weaknessNoStrategies)
	}
	if !analysis.HasStrategy(domain.StrategyMarketResearch) {
		weaknesses = append(weaknesses, weaknessNoResearch)
	}
	if !anyNumberRE.MatchString(response) {
		weaknesses = append(weaknesses, weaknessNoFigures)
	}
	if !questionRE.MatchString(response) {
		weaknesses = append(weaknesses, weaknessNoQuestions)
	}
	if len(strings.Fields(response)) < 30 {
		weaknesses = append(weaknesses, weaknessTooShort)
	}
	if containsAny(fold(response), a.lexicon.NegativeIndicators) {
		weaknesses = append(weaknesses, weaknessNegativeTone)
	}
	if !analysis.HasStrategy(domain.StrategyValueProposition) {
		weaknesses = append(weaknesses, weaknessNoValue)
	}
	return weaknesses
}

func (a *NegotiationAnalyzer) generateSuggestions(analysis domain.NegotiationAnalysis) []string {
	has := func(w string) bool {
		for _, weakness := range analysis.Weaknesses {
			if weakness == w {
				return true
			}
		}
		return false
	}

	var suggestions []string
	if has(weaknessNoStrategies) {
		suggestions = append(suggestions, "Try incorporating market research or value proposition strategies")
	}
	if has(weaknessNoFigures) {
		suggestions = append(suggestions, "Include specific salary ranges based on market research")
	}
	if has(weaknessNoQuestions) {
		suggestions = append(suggestions, "Ask questions about benefits, growth opportunities, or timeline")
	}
	if has(weaknessTooShort) {
		suggestions = append(suggestions, "Provide more context about your experience and qualifications")
	}
	if analysis.Tone == domain.ToneAggressive {
		suggestions = append(suggestions, "Consider a more collaborative and professional tone")
	}
	if !analysis.HasStrategy(domain.StrategyAlternativeCompensation) {
		suggestions = append(suggestions, "Consider discussing benefits, equity, or professional development")
	}
	suggestions = append(suggestions,
		"Practice active listening and acknowledge the employer's constraints",
		"End with a clear next step or call to action",
	)

	if len(suggestions) > 6 {
		suggestions = suggestions[:6]
	}
	return suggestions
}
