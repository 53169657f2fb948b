// Package ownercheck gives a Tree an optional, debug-only way to assert that
// it is only ever touched from the goroutine that created it. A Tree is not
// safe for concurrent use, and its item handles carry no synchronization of
// their own (spec.md §5); this package turns a violation of that contract
// from silent corruption into an immediate panic, for callers willing to pay
// the (small) per-call cost of a goroutine-local lookup.
package ownercheck

import (
	"fmt"

	"github.com/timandy/routine"
)

// Checker records the goroutine that created it and can assert that every
// later call happens from that same goroutine. Grounded on
// flier-goutil/internal/debug/debug.go's use of routine.Goid() to stamp
// goroutine identity into log lines; repurposed here from a logging detail
// into a live ownership assertion.
type Checker struct {
	owner int64
}

// New returns a Checker bound to the calling goroutine.
func New() *Checker {
	return &Checker{owner: routine.Goid()}
}

// Assert panics if the calling goroutine is not the one that created c. A
// nil Checker never panics, so call sites can hold a possibly-nil *Checker
// and call Assert unconditionally rather than guarding every call.
func (c *Checker) Assert() {
	if c == nil {
		return
	}
	if got := routine.Goid(); got != c.owner {
		panic(fmt.Sprintf("xlist: accessed from goroutine %d, owned by goroutine %d", got, c.owner))
	}
}
