// Package scorers provides the concrete scoring components of the engine:
// the signal extractor, lexicon tables, and the four scorer families
// (document, bullet, negotiation, match). Every component is a pure
// function of its inputs and immutable configuration, stateless after
// construction, and safe for concurrent use.
package scorers

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Input size limits. Scoring is linear in input length, but resumes and
// negotiation messages arrive from untrusted users; oversized inputs are
// rejected rather than scored.
const (
	// MaxTextLength bounds any single text input, in bytes.
	MaxTextLength = 1 << 20 // 1 MiB

	// MaxBatchSize bounds the number of items in one batch operation
	// (candidates in a match run, bullets in an enhancement pass).
	MaxBatchSize = 10_000
)

// Common errors returned by scorer constructors and batch operations.
var (
	// ErrTextTooLong is returned when an input exceeds MaxTextLength.
	ErrTextTooLong = errors.New("input text exceeds maximum length")

	// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrEmptyResponse is returned when an operation that requires a
	// non-empty message (scenario analysis) receives blank text.
	ErrEmptyResponse = errors.New("response text cannot be empty")
)

// neutralFallbackScore is the documented score assigned to a batch item
// that could not be scored fully. It is always paired with a
// PartialFailure record so it is never mistaken for a computed 50.
const neutralFallbackScore = 50.0

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation,
// extended with a "regexp" rule for fields that must compile as
// regular expressions.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, compileErr := regexp.Compile(fl.Field().String())
		return compileErr == nil
	})
	if err != nil {
		panic(err)
	}
	return v
}
