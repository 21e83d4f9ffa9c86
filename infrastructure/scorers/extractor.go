package scorers

import (
	"fmt"
	"regexp"

	"github.com/hireo/scoring-engine/internal/domain"
)

// Pattern is a single named regular expression in a pattern table.
// Patterns are data, not code: tables are assembled from configuration so
// scoring rules can be tuned without code changes.
type Pattern struct {
	// Name identifies the signal this pattern produces.
	Name string `yaml:"name" validate:"required,min=1,max=100"`

	// Expr is the regular expression source. Go's RE2 engine guarantees
	// linear-time matching, so a pattern that compiles cannot backtrack
	// catastrophically.
	Expr string `yaml:"expr" validate:"required,regexp"`

	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool `yaml:"case_sensitive"`
}

type compiledPattern struct {
	name string
	re   *regexp.Regexp
}

// PatternTable is an immutable set of compiled patterns grouped by
// domain (quantification signals, strategy markers, tone indicators).
// Tables are compiled once at load time; compilation failure is a
// configuration error and prevents the engine from starting. A compiled
// table is read-only and safe for unlocked concurrent use.
type PatternTable struct {
	name     string
	patterns []compiledPattern
}

// NewPatternTable compiles the given patterns into a table. Each pattern
// is compiled with case-insensitive and multiline flags unless it opts
// out. Duplicate names are rejected so signal sets stay unambiguous.
func NewPatternTable(name string, patterns []Pattern) (*PatternTable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: pattern table name cannot be empty", domain.ErrInvalidConfiguration)
	}

	seen := make(map[string]struct{}, len(patterns))
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: table %s: %v", domain.ErrInvalidConfiguration, name, err)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("%w: table %s: duplicate pattern %q", domain.ErrInvalidConfiguration, name, p.Name)
		}
		seen[p.Name] = struct{}{}

		re, err := compileExpr(p.Expr, p.CaseSensitive)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s: pattern %q: %v", domain.ErrInvalidConfiguration, name, p.Name, err)
		}
		compiled = append(compiled, compiledPattern{name: p.Name, re: re})
	}

	return &PatternTable{name: name, patterns: compiled}, nil
}

// compileExpr compiles a pattern expression with the table defaults:
// case-insensitive, multiline-aware, with "." spanning newlines so
// section-extraction patterns behave like their configuration reads.
func compileExpr(expr string, caseSensitive bool) (*regexp.Regexp, error) {
	flags := "(?ims)"
	if caseSensitive {
		flags = "(?ms)"
	}
	return regexp.Compile(flags + expr)
}

// Name returns the table's identifier, used in errors and telemetry.
func (t *PatternTable) Name() string { return t.name }

// Len returns the number of patterns in the table.
func (t *PatternTable) Len() int { return len(t.patterns) }

// Extract runs every pattern in the table against text and returns a
// fresh SignalSet recording all non-overlapping matches with their
// capture groups. Empty text yields an empty set; Extract never fails
// and never panics on malformed input, since malformed patterns were
// rejected at table construction. Running time is linear in
// len(text) x len(table) under RE2.
func (t *PatternTable) Extract(text string) domain.SignalSet {
	signals := make(domain.SignalSet, len(t.patterns))
	if text == "" {
		return signals
	}

	for _, p := range t.patterns {
		raw := p.re.FindAllStringSubmatch(text, -1)
		if len(raw) == 0 {
			continue
		}
		matches := make([]domain.Match, len(raw))
		for i, groups := range raw {
			m := domain.Match{Value: groups[0]}
			if len(groups) > 1 {
				m.Groups = groups[1:]
			}
			matches[i] = m
		}
		signals[p.name] = matches
	}
	return signals
}

// compilePatternList compiles a plain list of expressions with the table
// defaults. Indicator groups (tone markers, confidence cues) are stored
// as ordered lists rather than named tables because only their match
// counts matter.
func compilePatternList(owner string, exprs []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		re, err := compileExpr(expr, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: pattern %q: %v", domain.ErrInvalidConfiguration, owner, expr, err)
		}
		compiled[i] = re
	}
	return compiled, nil
}

// countMatching returns how many of the compiled patterns match text at
// least once. Each pattern counts at most once, mirroring indicator
// semantics: a repeated cue does not stack.
func countMatching(patterns []*regexp.Regexp, text string) int {
	count := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			count++
		}
	}
	return count
}

// anyMatching reports whether at least one compiled pattern matches,
// stopping at the first hit.
func anyMatching(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
