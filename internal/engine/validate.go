package engine

import "fmt"

// ValidationResult is the outcome of a structural check. Variable paths and
// helper names are not checked: there is no context at validation time.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate reports every structural error in src. It never panics; an
// internal failure is returned as an invalid result.
func (e *Engine) Validate(src string) (res ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ValidationResult{Errors: []string{fmt.Sprintf("internal validation error: %v", r)}}
		}
	}()

	p := newParser(src, e.limits)
	p.run()
	if len(p.errs) == 0 {
		return ValidationResult{Valid: true}
	}
	return ValidationResult{Errors: p.errs.Messages()}
}
