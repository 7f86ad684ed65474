// Package validation checks a form's inputs before anything is sent to the
// backend. Validators report one issue per invalid input; the controller turns
// issues into user-facing messages.
package validation

import (
	"context"

	"github.com/goliatone/go-formsync/pkg/field"
)

// Issue is a validation failure attached to an input.
type Issue struct {
	// Field is the input name.
	Field string `json:"field"`
	// ID is the id of the first input carrying Field, when known.
	ID      string `json:"id,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of a validation run.
type Result struct {
	Valid  bool    `json:"valid"`
	Errors []Issue `json:"errors,omitempty"`
}

// Validator validates the current state of a form.
type Validator interface {
	Validate(ctx context.Context, inputs []field.Input) Result
}

// Func adapts a function to Validator.
type Func func(ctx context.Context, inputs []field.Input) Result

// Validate implements Validator.
func (f Func) Validate(ctx context.Context, inputs []field.Input) Result {
	return f(ctx, inputs)
}

// Valid is a validator that accepts everything.
var Valid Validator = Func(func(context.Context, []field.Input) Result {
	return Result{Valid: true}
})
