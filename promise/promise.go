// Package promise implements a completion notification that may be resolved exactly once.
package promise

import (
	"context"
	"sync"
)

// Promise is resolved once, either successfully or with an error.
// The zero value is not usable; construct promises with New.
type Promise struct {
	done chan struct{}
	once sync.Once
	err  error
}

func New() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Succeed resolves the promise successfully.
// It returns false if the promise had already been resolved.
func (p *Promise) Succeed() bool {
	return p.resolve(nil)
}

// Fail resolves the promise with the given error.
// It returns false if the promise had already been resolved.
func (p *Promise) Fail(err error) bool {
	if err == nil {
		panic("failing a promise with a nil error")
	}

	return p.resolve(err)
}

// Done returns a channel that is closed once the promise is resolved.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Err returns the error the promise was failed with.
// It must only be called after Done is closed.
func (p *Promise) Err() error {
	return p.err
}

// IsResolved reports whether the promise has been resolved.
func (p *Promise) IsResolved() bool {
	select {
	case <-p.done:
		return true

	default:
		return false
	}
}

// Wait blocks until the promise is resolved or the context is cancelled.
func (p *Promise) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Promise) resolve(err error) bool {
	var resolved bool

	p.once.Do(func() {
		p.err = err
		resolved = true

		close(p.done)
	})

	return resolved
}

// FailAll fails every given promise with the given error, skipping nil entries.
func FailAll(promises []*Promise, err error) {
	for _, p := range promises {
		if p != nil {
			p.Fail(err)
		}
	}
}
