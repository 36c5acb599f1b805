// Package clienterr defines the error kinds surfaced by the launcher pipeline.
package clienterr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the caller can decide how to report it.
type Kind int

const (
	KindUnknown Kind = iota
	KindParse
	KindMissingField
	KindNetwork
	KindHTTPStatus
	KindIO
	KindDecompress
	KindChecksum
	KindLaunch
)

// String returns the human-readable name of an error kind.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindMissingField:
		return "missing field"
	case KindNetwork:
		return "network error"
	case KindHTTPStatus:
		return "http status error"
	case KindIO:
		return "io error"
	case KindDecompress:
		return "decompress error"
	case KindChecksum:
		return "checksum mismatch"
	case KindLaunch:
		return "launch error"
	default:
		return "unknown error"
	}
}

// Error is a classified pipeline failure. Target is the URL, path or
// config key the operation was working on.
type Error struct {
	Kind       Kind
	Op         string
	Target     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Kind == KindHTTPStatus && e.StatusCode != 0 {
		msg += fmt.Sprintf(": bad status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind.
func New(kind Kind, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}

// Status builds a KindHTTPStatus error for a non-success response.
func Status(op, url string, code int) *Error {
	return &Error{Kind: KindHTTPStatus, Op: op, Target: url, StatusCode: code}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind. A missing field is
// also a parse error.
func Is(err error, kind Kind) bool {
	got := KindOf(err)
	if got == kind {
		return true
	}
	return kind == KindParse && got == KindMissingField
}
