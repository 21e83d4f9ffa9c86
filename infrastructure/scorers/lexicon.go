package scorers

// Lexicon bundles the static word and phrase tables shared across the
// scorer families. A Lexicon is immutable after construction and safe to
// share between concurrent scoring calls; alternative tables can be
// loaded from configuration to tune scoring without code changes.
type Lexicon struct {
	// StrongActionWords are the verbs the document scorer rewards.
	StrongActionWords []string `yaml:"strong_action_words"`

	// WeakPhrases are the hedging phrases penalized in bullets.
	WeakPhrases []string `yaml:"weak_phrases"`

	// ActionWordCategories group action verbs by theme; the bullet
	// scorer's resume profile rewards any verb from the category union.
	ActionWordCategories map[string][]string `yaml:"action_word_categories"`

	// IndustryKeywords map an industry label to its signature terms.
	IndustryKeywords map[string][]string `yaml:"industry_keywords"`

	// StopWords are excluded from keyword extraction.
	StopWords []string `yaml:"stop_words"`

	// OutcomeVerbs mark concrete, specific achievements in bullets.
	OutcomeVerbs []string `yaml:"outcome_verbs"`

	// PositivePhrases are negotiation phrases reported as key phrases
	// when literally present in a response.
	PositivePhrases []string `yaml:"positive_phrases"`

	// NegativeIndicators are words that flag an adversarial tone.
	NegativeIndicators []string `yaml:"negative_indicators"`

	stopSet map[string]struct{}
}

// DefaultLexicon returns the built-in tables.
func DefaultLexicon() *Lexicon {
	lex := &Lexicon{
		StrongActionWords: []string{
			"achieved", "administered", "analyzed", "built", "collaborated", "created",
			"delivered", "designed", "developed", "directed", "enhanced", "established",
			"executed", "generated", "implemented", "improved", "increased", "initiated",
			"launched", "led", "managed", "optimized", "organized", "produced",
			"reduced", "resolved", "streamlined", "supervised", "transformed",
		},
		WeakPhrases: []string{
			"responsible for", "worked on", "helped with", "assisted", "participated",
			"involved in", "contributed to", "supported", "handled",
		},
		ActionWordCategories: map[string][]string{
			"leadership":    {"led", "directed", "managed", "supervised", "coordinated", "guided", "mentored"},
			"achievement":   {"achieved", "accomplished", "delivered", "exceeded", "surpassed", "attained"},
			"creation":      {"created", "developed", "designed", "built", "established", "launched", "initiated"},
			"improvement":   {"improved", "enhanced", "optimized", "streamlined", "upgraded", "refined"},
			"analysis":      {"analyzed", "evaluated", "assessed", "researched", "investigated", "examined"},
			"collaboration": {"collaborated", "partnered", "coordinated", "facilitated", "negotiated"},
			"technical":     {"implemented", "configured", "programmed", "automated", "integrated", "deployed"},
		},
		IndustryKeywords: map[string][]string{
			"technology": {"python", "java", "javascript", "react", "angular", "node.js", "sql", "aws", "docker"},
			"marketing":  {"seo", "sem", "social media", "analytics", "campaign", "conversion", "roi"},
			"finance":    {"financial analysis", "budgeting", "forecasting", "excel", "modeling", "compliance"},
			"healthcare": {"patient care", "medical records", "hipaa", "clinical", "treatment", "diagnosis"},
			"sales":      {"revenue", "quota", "pipeline", "crm", "negotiation", "closing", "prospecting"},
		},
		StopWords: []string{
			"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
			"from", "up", "about", "into", "through", "during", "before", "after", "above",
			"below", "between", "among", "this", "that", "these", "those", "will", "would",
			"should", "could", "can", "may", "might", "must", "shall", "have", "has", "had",
			"been", "being", "are", "was", "were", "you", "your", "our", "their",
		},
		OutcomeVerbs: []string{
			"increased", "decreased", "improved", "reduced", "achieved", "delivered",
		},
		PositivePhrases: []string{
			"market research", "value proposition", "mutual benefit",
			"professional development", "long-term growth", "team contribution",
			"industry standards", "competitive offer", "skill set",
			"track record", "proven results", "expertise",
		},
		NegativeIndicators: []string{
			"demand", "insist", "refuse", "unacceptable",
			"ridiculous", "unfair", "disappointed", "frustrated",
		},
	}
	lex.buildStopSet()
	return lex
}

// buildStopSet materializes the stop-word membership set. Called once at
// construction; loaders that deserialize a Lexicon from YAML must call
// it before use.
func (l *Lexicon) buildStopSet() {
	l.stopSet = make(map[string]struct{}, len(l.StopWords))
	for _, w := range l.StopWords {
		l.stopSet[fold(w)] = struct{}{}
	}
}

// IsStopWord reports whether the folded token is in the stop-word set.
func (l *Lexicon) IsStopWord(token string) bool {
	_, ok := l.stopSet[token]
	return ok
}

// AllActionWords returns the union of every action-word category.
// Order follows the category listing in actionCategoryOrder so repeated
// calls produce identical slices.
func (l *Lexicon) AllActionWords() []string {
	var union []string
	seen := make(map[string]struct{})
	for _, category := range actionCategoryOrder {
		for _, word := range l.ActionWordCategories[category] {
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			union = append(union, word)
		}
	}
	return union
}

// actionCategoryOrder fixes the iteration order over action-word
// categories.
var actionCategoryOrder = []string{
	"leadership", "achievement", "creation", "improvement",
	"analysis", "collaboration", "technical",
}

// containsAny reports whether the folded text contains any of the given
// words or phrases as substrings. This is deliberately substring rather
// than token matching: multi-word phrases like "responsible for" must
// match across token boundaries.
func containsAny(foldedText string, words []string) bool {
	for _, w := range words {
		if w != "" && containsFold(foldedText, w) {
			return true
		}
	}
	return false
}

// countContained counts how many of the given words appear in the folded
// text as substrings. Each word counts at most once.
func countContained(foldedText string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" && containsFold(foldedText, w) {
			n++
		}
	}
	return n
}

// containedWords returns the subset of words present in the folded text,
// preserving list order.
func containedWords(foldedText string, words []string) []string {
	var present []string
	for _, w := range words {
		if w != "" && containsFold(foldedText, w) {
			present = append(present, w)
		}
	}
	return present
}
