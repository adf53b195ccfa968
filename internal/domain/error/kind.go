// Package error defines domain-specific errors for the ledger service.
package error

import (
	"errors"
	"strings"
)

// Kind classifies a domain error for callers that need to react to its class
// rather than its exact cause (HTTP status mapping, retry decisions, metrics).
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindConsistency
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindConsistency:
		return "consistency"
	default:
		return "internal"
	}
}

// Coded is implemented by every domain error that carries an error code.
// Codes have the form PFX-CCNNNN where CC selects the Kind.
type Coded interface {
	error
	ErrorCode() string
}

var categoryKinds = map[string]Kind{
	"01": KindValidation,
	"02": KindNotFound,
	"03": KindForbidden,
	"04": KindConflict,
	"05": KindConsistency,
}

// KindOf returns the Kind of the first coded error in err's chain.
// Errors without a code are internal.
func KindOf(err error) Kind {
	if code := CodeOf(err); code != "" {
		return kindFromCode(code)
	}
	return KindInternal
}

// CodeOf returns the code of the first coded error in err's chain, or "".
func CodeOf(err error) string {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

func kindFromCode(code string) Kind {
	dash := strings.IndexByte(code, '-')
	if dash < 0 || len(code) < dash+3 {
		return KindInternal
	}
	if kind, ok := categoryKinds[code[dash+1:dash+3]]; ok {
		return kind
	}
	return KindInternal
}
