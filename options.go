package xlist

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/npillmayer/xlist/metrics"
	"github.com/npillmayer/xlist/ownercheck"
)

// defaultMaxFanout matches the original's default LeafRef::FANOUT.
const defaultMaxFanout = 8

// minFanoutFor computes min_fanout from max_fanout. Despite spec language
// suggesting a ceiling, the grounding source computes this with truncating
// integer division ((max+1)/2), which is what the worked example in
// spec.md §8 (fanout 4 => min 2, not 3) actually requires; see DESIGN.md.
func minFanoutFor(maxFanout int) int {
	return (maxFanout + 1) / 2
}

// Option configures a Tree at construction time, mirroring this module's own
// functional-options idiom (persistent btree's `Option func(Tree) Tree`,
// adapted here to mutate a pointer since this tree is mutable, not
// copy-on-write).
type Option[L Leaf[L], S any, K any] func(*Tree[L, S, K])

// Fanout sets the maximum number of children an internal node may own. The
// lower bound is clamped to 3, per spec.md §6.
func Fanout[L Leaf[L], S any, K any](n int) Option[L, S, K] {
	return func(t *Tree[L, S, K]) {
		if n < 3 {
			n = 3
		}
		t.maxFanout = n
		t.minFanout = minFanoutFor(n)
	}
}

// WithAllocator replaces the default pool allocator with a caller-supplied
// one, e.g. one instrumented for testing (see tree_test.go's
// countingAllocator).
func WithAllocator[L Leaf[L], S any, K any](a Allocator[L, S, K]) Option[L, S, K] {
	return func(t *Tree[L, S, K]) {
		t.alloc = newAllocGuard[L, S, K](a, nil)
	}
}

// WithMetrics registers a set of Prometheus counters on reg and has the Tree
// report every node allocation, free, split, merge, redistribute, and root
// collapse to them. See metrics.NewRecorder.
func WithMetrics[L Leaf[L], S any, K any](reg prometheus.Registerer) Option[L, S, K] {
	return func(t *Tree[L, S, K]) {
		t.metrics = metrics.NewRecorder(reg)
	}
}

// DebugOwnershipChecks makes every mutating Tree method panic if called from
// any goroutine other than the one that constructed it. Off by default: the
// goroutine-local lookup has a real (small) cost that a correctly
// single-threaded user shouldn't pay. Grounded on flier-goutil's debug-tag
// gated instrumentation, adapted from a build tag into a runtime Option so a
// caller can flip it on in tests without a separate build.
func DebugOwnershipChecks[L Leaf[L], S any, K any]() Option[L, S, K] {
	return func(t *Tree[L, S, K]) {
		t.owner = ownercheck.New()
	}
}

// OnAllocatorRelease registers a callback run once the tree's allocator is
// released (see destroy.go), letting a caller-supplied allocator tear down
// its own resources only after every node has been returned to it.
func OnAllocatorRelease[L Leaf[L], S any, K any](f func()) Option[L, S, K] {
	return func(t *Tree[L, S, K]) {
		t.alloc.onRelease = f
	}
}
