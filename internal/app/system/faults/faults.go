// Package faults defines the error taxonomy shared by the store
// adapters and the operation layer.
//
// NotFound and Conflict are validation-shaped: they carry a reason the
// caller may show and are never retried. Upstream covers transient
// backend failures. Inconsistent marks a data-integrity violation (one
// half of a symmetric write pair landed and the other did not) and must
// be logged distinctly because it requires repair, not retry.
package faults

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindUpstream
	KindInconsistent
)

// Fault is a typed error with a caller-visible reason.
type Fault struct {
	Kind   Kind
	Reason string // safe to surface for NotFound/Conflict; generic otherwise
	Err    error  // wrapped cause, may be nil
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Reason, f.Err)
	}
	return f.Reason
}

func (f *Fault) Unwrap() error { return f.Err }

// NotFound builds a validation-shaped absence fault.
func NotFound(reason string) error {
	return &Fault{Kind: KindNotFound, Reason: reason}
}

// Conflict builds a uniqueness/ownership fault.
func Conflict(reason string) error {
	return &Fault{Kind: KindConflict, Reason: reason}
}

// Upstream wraps a transient backend failure.
func Upstream(reason string, err error) error {
	return &Fault{Kind: KindUpstream, Reason: reason, Err: err}
}

// Inconsistent wraps a failure that left stored data in a detectably
// inconsistent state.
func Inconsistent(reason string, err error) error {
	return &Fault{Kind: KindInconsistent, Reason: reason, Err: err}
}

// KindOf returns the fault kind of err, or KindUnknown when err is not
// a Fault.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a Fault of the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// PublicReason returns the reason string callers may surface. Only
// NotFound and Conflict expose their reason; everything else collapses
// to a generic message so internal detail never leaks.
func PublicReason(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		switch f.Kind {
		case KindNotFound, KindConflict:
			return f.Reason
		}
	}
	return "internal error"
}
