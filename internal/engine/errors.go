package engine

import (
	"context"
	"errors"
)

// Sentinel errors for the synthesis failure taxonomy.
var (
	// ErrUnavailable means the engine or a hard dependency is absent.
	ErrUnavailable = errors.New("engine is not available")
	// ErrCapabilityMismatch means the request needs a capability the engine
	// did not declare and no downgrade applies.
	ErrCapabilityMismatch = errors.New("request exceeds engine capabilities")
	// ErrSynthesisTimeout means a synthesis attempt hit its deadline.
	ErrSynthesisTimeout = errors.New("synthesis timed out")
	// ErrResourceExhausted means the engine ran out of memory or similar.
	ErrResourceExhausted = errors.New("engine resources exhausted")
	// ErrSynthesisFailed is a generic recoverable synthesis failure.
	ErrSynthesisFailed = errors.New("synthesis failed")
)

// Transient reports whether a synthesis error may succeed on retry.
// Timeouts, resource exhaustion and generic synthesis failures qualify;
// missing engines and capability mismatches never do.
func Transient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrCapabilityMismatch):
		return false
	case errors.Is(err, ErrSynthesisTimeout),
		errors.Is(err, ErrResourceExhausted),
		errors.Is(err, ErrSynthesisFailed),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
