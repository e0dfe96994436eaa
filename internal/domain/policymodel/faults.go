package policymodel

import (
	"context"
	"errors"
	"fmt"
)

type FaultKind string

const (
	FaultParse        FaultKind = "parse"
	FaultEmbed        FaultKind = "embed"
	FaultGeneration   FaultKind = "generation"
	FaultStoreWrite   FaultKind = "store_write"
	FaultStoreRead    FaultKind = "store_read"
	FaultInvalidQuery FaultKind = "invalid_query"
)

// Fault tags an error with its pipeline taxonomy kind. Transient faults are
// worth retrying within the step's bounded attempt budget; the rest surface
// immediately.
type Fault struct {
	Kind      FaultKind
	Transient bool
	Err       error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func NewFault(kind FaultKind, transient bool, err error) *Fault {
	return &Fault{Kind: kind, Transient: transient, Err: err}
}

func Faultf(kind FaultKind, format string, args ...any) *Fault {
	transient := kind == FaultEmbed || kind == FaultGeneration || kind == FaultStoreRead
	return &Fault{Kind: kind, Transient: transient, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the taxonomy kind of err, or "" when it carries none.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// IsTransient decides whether another attempt can help. Context errors never
// get retried; unclassified errors do, bounded by the caller's attempt budget.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Transient
	}
	return true
}
