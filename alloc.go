package xlist

import "sync"

// Allocator supplies and reclaims internal-node storage for a Tree. Grounded
// on _examples/original_source/src/list/alloc.rs's Allocator contract:
// allocation is infallible from the caller's perspective (a failure is
// fatal, reported via panic, never as a recoverable error); deallocation is
// infallible and requires the node to have come from this allocator.
type Allocator[L Leaf[L], S any, K any] interface {
	Allocate() *internalNode[L, S, K]
	Deallocate(*internalNode[L, S, K])
}

// poolAllocator is the default Allocator, backed by sync.Pool — the
// idiomatic Go analogue of a free-list allocator. Go has no manual
// allocate/deallocate primitive to wrap the way a systems allocator does, so
// this is the closest stdlib fit: allocation never fails (the runtime
// allocator panics on OOM on its own), and Put is infallible.
type poolAllocator[L Leaf[L], S any, K any] struct {
	pool *sync.Pool
}

func newPoolAllocator[L Leaf[L], S any, K any]() *poolAllocator[L, S, K] {
	return &poolAllocator[L, S, K]{
		pool: &sync.Pool{
			New: func() interface{} {
				return &internalNode[L, S, K]{}
			},
		},
	}
}

func (a *poolAllocator[L, S, K]) Allocate() *internalNode[L, S, K] {
	n := a.pool.Get().(*internalNode[L, S, K])
	*n = internalNode[L, S, K]{}
	return n
}

func (a *poolAllocator[L, S, K]) Deallocate(n *internalNode[L, S, K]) {
	*n = internalNode[L, S, K]{}
	a.pool.Put(n)
}

// allocGuard delays an allocator's own release until every node it handed
// out has been returned. Grounded on alloc.rs's PersistentAlloc: destruction
// order is "drain tree, then release allocator." Go has no implicit
// destructors, so the release step is explicit (Tree.Destroy calls it) in
// place of PersistentAlloc's unsafe Drop-ordering contract.
type allocGuard[L Leaf[L], S any, K any] struct {
	inner     Allocator[L, S, K]
	released  bool
	onRelease func()
}

func newAllocGuard[L Leaf[L], S any, K any](inner Allocator[L, S, K], onRelease func()) *allocGuard[L, S, K] {
	return &allocGuard[L, S, K]{inner: inner, onRelease: onRelease}
}

func (g *allocGuard[L, S, K]) Allocate() *internalNode[L, S, K] {
	assertThat(!g.released, "allocate called after allocator was released")
	return g.inner.Allocate()
}

func (g *allocGuard[L, S, K]) Deallocate(n *internalNode[L, S, K]) {
	assertThat(!g.released, "deallocate called after allocator was released")
	g.inner.Deallocate(n)
}

// release runs the delayed-destruction step. Safe to call at most once,
// after every node the inner allocator produced has already been
// deallocated.
func (g *allocGuard[L, S, K]) release() {
	if g.released {
		return
	}
	g.released = true
	if g.onRelease != nil {
		g.onRelease()
	}
}

// allocateNode and deallocateNode are the only call sites that touch
// t.alloc directly; routing every allocation through them gives the
// optional metrics.Recorder (see options.go's WithMetrics) a single place
// to observe node churn.
func (t *Tree[L, S, K]) allocateNode() *internalNode[L, S, K] {
	t.metrics.Allocation()
	return t.alloc.Allocate()
}

func (t *Tree[L, S, K]) deallocateNode(n *internalNode[L, S, K]) {
	t.metrics.Free()
	t.alloc.Deallocate(n)
}
