// Package application assembles the scoring components into a single
// engine and loads engine configurations (rulesets) from YAML.
package application

import (
	"github.com/hireo/scoring-engine/infrastructure/scorers"
)

// Bullet scoring preset names accepted in rulesets.
const (
	BulletPresetATS      = "ats"
	BulletPresetResumeAI = "resume_ai"
)

// BulletConfig selects the bullet scoring preset for a ruleset.
type BulletConfig struct {
	// Preset is "ats" or "resume_ai". Empty picks the ats preset.
	Preset string `yaml:"preset" validate:"omitempty,oneof=ats resume_ai"`
}

// RulesetConfig is the YAML-loadable configuration of a scoring engine.
// Every section is optional; a nil section falls back to the stock
// configuration of that component, so an empty ruleset describes the
// default engine.
type RulesetConfig struct {
	// Version identifies the ruleset schema. Only "1" is accepted.
	Version string `yaml:"version" validate:"required,eq=1"`

	// Name labels the ruleset in logs and metrics. Optional.
	Name string `yaml:"name,omitempty" validate:"omitempty,max=100"`

	Document    *scorers.ATSConfig         `yaml:"document,omitempty"`
	JobAnalyzer *scorers.JobAnalyzerConfig `yaml:"job_analyzer,omitempty"`
	Bullets     *BulletConfig              `yaml:"bullets,omitempty"`
	Match       *scorers.MatchConfig       `yaml:"match,omitempty"`
}

// DefaultRulesetConfig returns the ruleset describing the stock engine.
func DefaultRulesetConfig() RulesetConfig {
	return RulesetConfig{Version: "1"}
}

// documentConfig resolves the effective document section.
func (c RulesetConfig) documentConfig() scorers.ATSConfig {
	if c.Document != nil {
		return *c.Document
	}
	return scorers.DefaultATSConfig()
}

// jobAnalyzerConfig resolves the effective job analyzer section.
func (c RulesetConfig) jobAnalyzerConfig() scorers.JobAnalyzerConfig {
	if c.JobAnalyzer != nil {
		return *c.JobAnalyzer
	}
	return scorers.DefaultJobAnalyzerConfig()
}

// bulletPreset resolves the effective bullet preset name.
func (c RulesetConfig) bulletPreset() string {
	if c.Bullets != nil && c.Bullets.Preset != "" {
		return c.Bullets.Preset
	}
	return BulletPresetATS
}

// matchConfig resolves the effective match section.
func (c RulesetConfig) matchConfig() scorers.MatchConfig {
	if c.Match != nil {
		return *c.Match
	}
	return scorers.DefaultMatchConfig()
}
