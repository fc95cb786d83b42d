// Package flow defines the 3-way provider flow outcome and the one-shot
// completion every adapter funnels its vendor callbacks into. An adapter
// instance owns exactly one Completion per flow and is discarded after it
// resolves; the Completion enforces at most one terminal emission no matter
// how many callbacks the vendor fires.
package flow

import (
	"context"
	"sync"

	"github.com/paysafehub/paysafe-go/pserrors"
)

// Result is the normalized outcome of one provider authorization ritual.
type Result int

const (
	// Authorized means the user completed the vendor flow successfully.
	Authorized Result = iota
	// Failed means the vendor flow ended in an error.
	Failed
	// Cancelled means the user abandoned the vendor flow. Cancellation is a
	// first-class outcome, not an error condition.
	Cancelled
)

func (r Result) String() string {
	switch r {
	case Authorized:
		return "authorized"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome pairs a Result with the material it produced: a vendor payload on
// success (wallet token, processor nonce) or the failure detail otherwise.
type Outcome struct {
	Result  Result
	Payload string
	Err     *pserrors.Error
}

// Completion is a one-shot promise. The first Resolve wins; later calls are
// dropped. Await blocks until resolution or context cancellation.
type Completion struct {
	once sync.Once
	ch   chan Outcome
}

// NewCompletion builds an unresolved completion.
func NewCompletion() *Completion {
	return &Completion{ch: make(chan Outcome, 1)}
}

// Resolve delivers the terminal outcome. It reports whether this call was
// the one that resolved the completion.
func (c *Completion) Resolve(out Outcome) bool {
	won := false
	c.once.Do(func() {
		c.ch <- out
		won = true
	})
	return won
}

// Await returns the terminal outcome, or the context error if the caller
// gives up first.
func (c *Completion) Await(ctx context.Context) (Outcome, error) {
	select {
	case out := <-c.ch:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
