package chit

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindValidation marks malformed input.
	KindValidation Kind = iota + 1
	// KindConfiguration marks an inconsistent chit parameter set. It is a
	// specialization of KindValidation.
	KindConfiguration
	// KindCalculation marks a numerical failure: non-positive prize,
	// degenerate cashflows or a non-convergent IRR.
	KindCalculation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindConfiguration:
		return "configuration error"
	case KindCalculation:
		return "calculation error"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error is the single error type returned by the engine.
type Error struct {
	Kind    Kind
	Op      string
	Msg     string
	Details map[string]string
	Err     error
}

// Sentinels for errors.Is. A configuration error also matches ErrValidation.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrCalculation   = &Error{Kind: KindCalculation}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + e.Details[k]
		}
		b.WriteString(" (Details: ")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Msg != "" || t.Err != nil {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return t.Kind == KindValidation && e.Kind == KindConfiguration
}

func configurationError(op string, violations []string) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Msg: strings.Join(violations, "; ")}
}

func calculationError(op, msg string, err error, details map[string]string) *Error {
	return &Error{Kind: KindCalculation, Op: op, Msg: msg, Details: details, Err: err}
}
