package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrResourceLimit is matched by every *LimitError.
var ErrResourceLimit = errors.New("template too complex to render")

// ParseError is a structural problem found while parsing a template.
type ParseError struct {
	Directive string `json:"directive,omitempty"`
	Message   string `json:"message"`
	Offset    int    `json:"offset"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// ParseErrors is every structural error found in one template, in source order.
type ParseErrors []*ParseError

func (pe ParseErrors) Error() string {
	switch len(pe) {
	case 0:
		return "no parse errors"
	case 1:
		return pe[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", pe[0].Error(), len(pe)-1)
	}
}

// Messages returns the human-readable form of each error.
func (pe ParseErrors) Messages() []string {
	out := make([]string, 0, len(pe))
	for _, e := range pe {
		out = append(out, e.Error())
	}
	return out
}

// LimitError reports a template that exceeded one of the configured Limits.
type LimitError struct {
	Limit string
	Max   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %s exceeds %d", ErrResourceLimit.Error(), e.Limit, e.Max)
}

func (e *LimitError) Unwrap() error { return ErrResourceLimit }

// position converts a byte offset into a 1-based line and rune column.
func position(src string, offset int) (line, column int) {
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	column = utf8.RuneCountInString(before[lineStart:]) + 1
	return line, column
}
