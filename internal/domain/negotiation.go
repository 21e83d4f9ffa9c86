package domain

// Strategy is a closed enumeration of negotiation approaches the
// analyzer can detect in a response.
type Strategy string

// The ten recognized negotiation strategies.
const (
	StrategyAnchoring               Strategy = "anchoring"
	StrategyMarketResearch          Strategy = "market_research"
	StrategyValueProposition        Strategy = "value_proposition"
	StrategyCollaborative           Strategy = "collaborative"
	StrategyCompetitive             Strategy = "competitive"
	StrategyEmotionalAppeal         Strategy = "emotional_appeal"
	StrategyLogicalReasoning        Strategy = "logical_reasoning"
	StrategyAlternativeCompensation Strategy = "alternative_compensation"
	StrategyTimelinePressure        Strategy = "timeline_pressure"
	StrategyRelationshipBuilding    Strategy = "relationship_building"
)

// StrategyOrder fixes the declaration order of strategies. Detection and
// reporting iterate in this order so output is deterministic.
var StrategyOrder = []Strategy{
	StrategyAnchoring,
	StrategyMarketResearch,
	StrategyValueProposition,
	StrategyCollaborative,
	StrategyCompetitive,
	StrategyEmotionalAppeal,
	StrategyLogicalReasoning,
	StrategyAlternativeCompensation,
	StrategyTimelinePressure,
	StrategyRelationshipBuilding,
}

// Tone is a closed enumeration of communication styles.
type Tone string

// The eight recognized communication tones.
const (
	ToneProfessional  Tone = "professional"
	ToneAssertive     Tone = "assertive"
	ToneCollaborative Tone = "collaborative"
	ToneDefensive     Tone = "defensive"
	ToneAggressive    Tone = "aggressive"
	TonePassive       Tone = "passive"
	ToneConfident     Tone = "confident"
	ToneUncertain     Tone = "uncertain"
)

// ToneOrder fixes the declaration order of tones. When multiple tones tie
// on indicator count, the first-declared tone in this slice wins; the
// ordering is part of the engine's contract, not an accident of map
// iteration.
var ToneOrder = []Tone{
	ToneProfessional,
	ToneAssertive,
	ToneCollaborative,
	ToneDefensive,
	ToneAggressive,
	TonePassive,
	ToneConfident,
	ToneUncertain,
}

// NegotiationAnalysis is the full result of analyzing one negotiation
// response.
type NegotiationAnalysis struct {
	// Strategies lists the detected strategies in StrategyOrder.
	Strategies []Strategy `json:"strategies"`

	// Tone is the dominant communication tone; defaults to professional
	// when no indicators fire.
	Tone Tone `json:"tone"`

	// SubScores holds the four dimension scores: confidence,
	// professionalism, persuasiveness, emotional_intelligence.
	SubScores map[string]float64 `json:"sub_scores"`

	// Overall is the unweighted mean of the four sub-scores.
	Overall float64 `json:"overall"`

	// KeyPhrases holds salary amounts, percentages, and configured
	// positive phrases found in the text, capped to ten.
	KeyPhrases []string `json:"key_phrases,omitempty"`

	Strengths   []string `json:"strengths,omitempty"`
	Weaknesses  []string `json:"weaknesses,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// HasStrategy reports whether the analysis detected the given strategy.
func (a NegotiationAnalysis) HasStrategy(s Strategy) bool {
	for _, detected := range a.Strategies {
		if detected == s {
			return true
		}
	}
	return false
}

// SalaryAmount is a currency amount extracted from a negotiation
// response.
type SalaryAmount struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

// SalaryRange is the expected compensation band for a scenario.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}
