package application

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/hireo/scoring-engine/infrastructure/scorers"
	"github.com/hireo/scoring-engine/internal/domain"
)

// registerCustomValidators installs validation rules that go beyond
// struct tags. Currently just "regexp", which checks that a string field
// compiles as a regular expression.
func registerCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
}

// Document weight keys a ruleset may reference.
var knownDocumentDimensions = map[string]struct{}{
	scorers.DimFormatting:       {},
	scorers.DimContentRelevance: {},
	scorers.DimKeywordMatch:     {},
}

// validateSemantics applies the cross-field rules struct tags cannot
// express: document weights must name known dimensions, and override
// patterns must carry unique names and compilable expressions. The
// component constructors enforce these too; checking here surfaces every
// configuration mistake at once, with ruleset-level context, before
// anything is built.
func validateSemantics(config *RulesetConfig) error {
	if config.Document == nil {
		return nil
	}
	verr := domain.NewValidationError("document")

	for dimension := range config.Document.Weights {
		if _, ok := knownDocumentDimensions[dimension]; !ok {
			verr.AddError(fmt.Sprintf("weights reference unknown dimension %q", dimension))
		}
	}

	seen := make(map[string]struct{}, len(config.Document.Patterns))
	for _, pattern := range config.Document.Patterns {
		if pattern.Name == "" {
			verr.AddError(fmt.Sprintf("pattern with expression %q has no name", pattern.Expr))
			continue
		}
		if _, dup := seen[pattern.Name]; dup {
			verr.AddError(fmt.Sprintf("duplicate document pattern name %q", pattern.Name))
			continue
		}
		seen[pattern.Name] = struct{}{}

		if _, err := regexp.Compile(pattern.Expr); err != nil {
			verr.AddError(fmt.Sprintf("pattern %q does not compile: %v", pattern.Name, err))
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
