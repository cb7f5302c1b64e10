package linecsv

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator is the capability interface a decoded column type may
// implement to restrict which decoded values are accepted, the Go
// equivalent of supplying an is_valid operation.
type Validator interface {
	Validate() error
}

// packageValidate is shared across all Parsers: go-playground/validator
// instances are safe for concurrent use once constructed and are meant
// to be reused, per its own documentation.
var packageValidate = validator.New()

// validateValue runs, in order: (1) the Validator interface if v
// implements it, then (2) a go-playground/validator "Var" check if
// Options.ColumnTags supplies a tag for this column index. Either stage
// failing is reported as ErrValidationFailed.
func validateValue[T any](p *Parser, col int, v T) error {
	if validatable, ok := any(v).(Validator); ok {
		if err := validatable.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
	}

	if tag, ok := p.opts.ColumnTags[col]; ok && tag != "" {
		if err := packageValidate.Var(v, tag); err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
	}

	return nil
}

// validateStruct runs go-playground/validator's struct-tag validation
// over dst, used by GetObject/ToObjectNamed after field assignment.
func validateStruct(dst any) error {
	if err := packageValidate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}
