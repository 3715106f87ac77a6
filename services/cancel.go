// Package services implements the backend-agnostic editor services (spec
// component 4.7): document highlight, find-references, document/workspace
// symbols, folding ranges, hover, and the signature-help/go-to-type/
// go-to-implementation abstractions. None of this existed in the teacher
// (tunaq has no editor integration of its own), so every file here is new
// code written in the teacher's idiom: small interfaces, explicit error
// returns, no external service framework. The container/back-link shape
// `ast.Node` already carries (spec 4.6) is what every service walks rather
// than re-deriving a node hierarchy of its own.
package services

import (
	"context"
	"errors"
)

// ErrCancelled is returned by any service call a CancelToken stopped midway
// through, per spec 5's "fail with a dedicated Cancelled outcome" policy.
var ErrCancelled = errors.New("services: operation cancelled")

// CancelToken wraps the standard cancellation mechanism the corpus itself
// uses throughout (context.Context), rather than a bespoke token type, since
// spec 5's "triggered at any suspension point" contract is exactly what
// ctx.Done() already provides.
type CancelToken struct {
	ctx context.Context
}

// NewCancelToken wraps ctx for use as a service CancelToken.
func NewCancelToken(ctx context.Context) CancelToken {
	if ctx == nil {
		ctx = context.Background()
	}
	return CancelToken{ctx: ctx}
}

// Cancelled reports whether the token has already fired.
func (t CancelToken) Cancelled() bool {
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Yield checks the token every checkEvery calls (counter is the caller's
// running work-unit count, incremented once per call site) and returns
// ErrCancelled the first time it observes cancellation, implementing spec
// 5's "yield at bounded intervals" requirement without polling more often
// than necessary in a tight loop.
func Yield(t CancelToken, counter int, checkEvery int) error {
	if checkEvery <= 0 {
		checkEvery = 1
	}
	if counter%checkEvery != 0 {
		return nil
	}
	select {
	case <-t.ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}
