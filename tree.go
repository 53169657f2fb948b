package xlist

import (
	"github.com/npillmayer/xlist/metrics"
	"github.com/npillmayer/xlist/ownercheck"
)

// Tree is an intrusive, worst-case logarithmic-time ordered sequence built on
// a mutable B+-tree whose leaves are caller-owned items of type L. Internal
// nodes are privately owned by the tree and never exposed to callers.
//
// S is the additive size monoid used for weighted indexing (GetByIndex,
// IndexOf); K is the ordering key used by Find and Insert. Both are optional
// capabilities, supplied or withheld by passing a SizeOps/KeyOps table (or
// not) at construction, mirroring this module's own Ext/aggregator/
// comparator function-table idiom rather than constraining L itself.
//
// A Tree is not safe for concurrent use without external synchronization.
// Grounded on _examples/original_source/src/list/mod.rs's SkipList.
type Tree[L Leaf[L], S any, K any] struct {
	alloc     *allocGuard[L, S, K]
	sizeOps   SizeOps[L, S]
	keyOps    *KeyOps[L, K]
	maxFanout int
	minFanout int
	root      down[L, S, K]
	hasRoot   bool
	destroyed bool
	poisoned  bool
	metrics   *metrics.Recorder
	owner     *ownercheck.Checker
}

func newTree[L Leaf[L], S any, K any](sizeOps SizeOps[L, S], keyOps *KeyOps[L, K], opts []Option[L, S, K]) *Tree[L, S, K] {
	t := &Tree[L, S, K]{
		sizeOps:   sizeOps,
		keyOps:    keyOps,
		maxFanout: defaultMaxFanout,
		minFanout: minFanoutFor(defaultMaxFanout),
		alloc:     newAllocGuard[L, S, K](newPoolAllocator[L, S, K](), nil),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// New creates an empty Tree with no weighted indexing and no ordering.
func New[L Leaf[L]](opts ...Option[L, struct{}, struct{}]) *Tree[L, struct{}, struct{}] {
	return newTree[L, struct{}, struct{}](UnitSizeOps[L](), nil, opts)
}

// NewWithSize creates an empty Tree whose GetByIndex/IndexOf are driven by
// sizeOps.
func NewWithSize[L Leaf[L], S any](sizeOps SizeOps[L, S], opts ...Option[L, S, struct{}]) *Tree[L, S, struct{}] {
	return newTree[L, S, struct{}](sizeOps, nil, opts)
}

// NewWithKeys creates an empty Tree with ordered operations (Find, Insert)
// driven by keyOps, and no weighted indexing.
func NewWithKeys[L Leaf[L], K any](keyOps KeyOps[L, K], opts ...Option[L, struct{}, K]) *Tree[L, struct{}, K] {
	return newTree[L, struct{}, K](UnitSizeOps[L](), &keyOps, opts)
}

// NewWithSizeAndKeys creates an empty Tree with both weighted indexing and
// ordered operations.
func NewWithSizeAndKeys[L Leaf[L], S any, K any](sizeOps SizeOps[L, S], keyOps KeyOps[L, K], opts ...Option[L, S, K]) *Tree[L, S, K] {
	return newTree[L, S, K](sizeOps, &keyOps, opts)
}

// rootsMatch reports whether a and b are the same root for the purpose of
// validating that an item a caller passed to InsertAfter/Remove/etc. really
// belongs to this tree. Deliberately permissive: grounded on mod.rs's
// roots_match, which only ever compares internal-node identity and treats
// any two leaf roots as equal regardless of which leaf — a single-item tree
// has no internal node to check identity against, so the check degrades to
// a near no-op in that case, same as the original.
func rootsMatch[L Leaf[L], S any, K any](a, b down[L, S, K]) bool {
	if a.isLeaf || b.isLeaf {
		return a.isLeaf && b.isLeaf
	}
	return a.internal == b.internal
}

// Size returns the aggregate size of every item in the tree, per SizeOps.
func (t *Tree[L, S, K]) Size() S {
	if !t.hasRoot {
		return t.sizeOps.Zero()
	}
	return t.sizeOf(t.root)
}

// IsEmpty reports whether the tree holds no items.
func (t *Tree[L, S, K]) IsEmpty() bool {
	return !t.hasRoot
}

// First returns the leftmost item, or ok=false if the tree is empty.
func (t *Tree[L, S, K]) First() (item L, ok bool) {
	if !t.hasRoot {
		return item, false
	}
	return t.descendLeftmost(t.root)
}

// Last returns the rightmost item, or ok=false if the tree is empty.
func (t *Tree[L, S, K]) Last() (item L, ok bool) {
	if !t.hasRoot {
		return item, false
	}
	return t.descendRightmost(t.root)
}

// Next returns the item following item in iteration order.
func (t *Tree[L, S, K]) Next(item L) (L, bool) {
	return t.nextLeaf(item)
}

// Previous returns the item preceding item in iteration order.
func (t *Tree[L, S, K]) Previous(item L) (L, bool) {
	return t.previousLeaf(item)
}

// GetByIndex returns the item whose cumulative size range contains pos: the
// item i such that sum of sizes before i is <= pos < sum of sizes through i,
// except when pos equals the tree's total size, in which case the last item
// is returned if (and only if) it has zero size. Grounded on mod.rs's
// get_with_cmp.
func (t *Tree[L, S, K]) GetByIndex(pos S) (item L, ok bool) {
	total := t.Size()
	cmp := t.sizeOps.Compare(pos, total)
	switch {
	case cmp > 0:
		return item, false
	case cmp == 0:
		last, has := t.Last()
		if !has {
			return item, false
		}
		if t.sizeOps.Equal(t.sizeOps.Of(last), t.sizeOps.Zero()) {
			return last, true
		}
		return item, false
	}

	if !t.hasRoot {
		return item, false
	}
	return t.descendByLocalOffset(t.root, pos)
}

// descendByLocalOffset finds the item at cumulative offset `offset` measured
// from the start of d's own subtree (offset must be strictly less than
// d's total size, except for the degenerate all-zero-size tail the caller is
// responsible for special-casing, as GetByIndex does at the top level).
// Shared by GetByIndex (d = root) and GetAfter (d = some subtree reached by
// ascending partway from a known position), so a lookup that starts near a
// known item doesn't have to redo the descent from the root. Grounded on
// mod.rs's get_with_cmp, generalized to take an arbitrary starting subtree.
func (t *Tree[L, S, K]) descendByLocalOffset(d down[L, S, K], offset S) (item L, ok bool) {
	node := d
	size := t.sizeOps.Zero()
	for {
		if node.isLeaf {
			cur := node.leaf
			for {
				size = t.sizeOps.Add(size, t.sizeOps.Of(cur))
				if t.sizeOps.Compare(offset, size) < 0 {
					return cur, true
				}
				kind, nxt, _ := t.nextOf(leafDown[L, S, K](cur))
				assertThat(kind == kindSibling, "descend: ran off the end of the sibling chain")
				cur = nxt.leaf
			}
		}
		cur := node.internal
		for {
			next := t.sizeOps.Add(size, cur.size)
			if t.sizeOps.Compare(offset, next) < 0 {
				node = cur.down
				break
			}
			size = next
			nxt := cur.nextSibling()
			assertThat(nxt != nil, "descend: ran off the end of the sibling chain")
			cur = nxt
		}
	}
}

// GetAfter returns the item offset positions after start in iteration order,
// without requiring start's absolute index or a traversal from the root: it
// ascends from start accumulating sibling sizes until the target offset
// falls within a subtree reachable from the current ancestor, then descends
// into just that subtree. Cost is O(log n) relative to start's depth, not
// the whole tree. Grounded on mod.rs's get_after / find_after family, which
// exist precisely to avoid re-entering at the root for a nearby lookup.
func (t *Tree[L, S, K]) GetAfter(start L, offset S) (item L, ok bool) {
	if t.sizeOps.Compare(offset, t.sizeOps.Zero()) == 0 {
		return start, true
	}
	startSize := t.sizeOps.Of(start)
	if t.sizeOps.Compare(offset, startSize) < 0 {
		return start, true
	}
	remaining := t.sizeOps.Sub(offset, startSize)
	node := t.asDown(start)
	for {
		kind, nxt, parent := t.nextOf(node)
		switch kind {
		case kindNone:
			return item, false
		case kindSibling:
			sz := t.sizeOf(nxt)
			if t.sizeOps.Compare(remaining, sz) < 0 {
				return t.descendByLocalOffset(nxt, remaining)
			}
			remaining = t.sizeOps.Sub(remaining, sz)
			node = nxt
		default:
			node = internalDown[L, S, K](parent)
		}
	}
}

// IndexOf returns the cumulative size of every item preceding item. Grounded
// on mod.rs's position.
func (t *Tree[L, S, K]) IndexOf(item L) S {
	pos := t.sizeOps.Of(item)
	d := t.asDown(item)
	for {
		parent, ok := t.addSiblingSizes(d, &pos)
		if !ok {
			return t.sizeOps.Sub(t.Size(), pos)
		}
		d = internalDown[L, S, K](parent)
	}
}

// addSiblingSizes accumulates the sizes of every sibling following node,
// stopping at a parent link (returned) or a none link (returns ok=false).
func (t *Tree[L, S, K]) addSiblingSizes(node down[L, S, K], pos *S) (*internalNode[L, S, K], bool) {
	cur := node
	for {
		kind, nxt, parent := t.nextOf(cur)
		switch kind {
		case kindParent:
			return parent, true
		case kindSibling:
			*pos = t.sizeOps.Add(*pos, t.sizeOf(nxt))
			cur = nxt
		default:
			return nil, false
		}
	}
}

// InsertAfter inserts items, in order, immediately after pos.
func (t *Tree[L, S, K]) InsertAfter(pos L, items ...L) {
	defer t.guardDestroySafety()
	t.owner.Assert()
	assertThat(t.hasRoot, "`pos` is not from this tree")
	finished := t.insertAfterRaw(pos, items)
	assertThat(rootsMatch(t.root, finished.oldRoot), "`pos` is not from this tree")
	t.root = finished.newRoot
	t.hasRoot = true
}

// InsertAfterOpt inserts items after *pos, or at the front if pos is nil.
func (t *Tree[L, S, K]) InsertAfterOpt(pos *L, items ...L) {
	if pos != nil {
		t.InsertAfter(*pos, items...)
		return
	}
	t.PushFront(items...)
}

// InsertBefore inserts items, in order, immediately before pos.
func (t *Tree[L, S, K]) InsertBefore(pos L, items ...L) {
	prev, ok := t.previousLeaf(pos)
	if ok {
		t.InsertAfter(prev, items...)
		return
	}
	t.PushFront(items...)
}

// InsertBeforeOpt inserts items before *pos, or at the back if pos is nil.
func (t *Tree[L, S, K]) InsertBeforeOpt(pos *L, items ...L) {
	if pos != nil {
		t.InsertBefore(*pos, items...)
		return
	}
	t.PushBack(items...)
}

// PushFront inserts items, in order, at the front of the tree. Grounded on
// mod.rs's push_front_from, which descends the leftmost spine bumping every
// ancestor's cached size and key before splicing the new first item in.
func (t *Tree[L, S, K]) PushFront(items ...L) {
	defer t.guardDestroySafety()
	t.owner.Assert()
	if len(items) == 0 {
		return
	}
	first := items[0]
	rest := items[1:]
	assertThat(first.Next().IsNone(), "item is already in a list")

	size := t.sizeOps.Of(first)
	var parent *internalNode[L, S, K]
	var next L
	hasNext := false
	if t.hasRoot {
		d := t.root
		for {
			if d.isLeaf {
				next = d.leaf
				hasNext = true
				break
			}
			node := d.internal
			node.size = t.sizeOps.Add(node.size, size)
			if t.keyOps != nil {
				node.key = t.keyOps.Of(first)
				node.hasKey = true
			}
			parent = node
			d = node.down
		}
	}

	switch {
	case parent != nil:
		tracer().Debugf("pushFront: splicing new first leaf under existing parent")
		parent.setDown(t.asDown(first))
		parent.length++
		first.SetNext(SiblingNext(next))
		t.InsertAfter(first, rest...)
	case hasNext:
		t.root = t.asDown(first)
		t.hasRoot = true
		combined := make([]L, 0, len(rest)+1)
		combined = append(combined, rest...)
		combined = append(combined, next)
		t.InsertAfter(first, combined...)
	default:
		t.root = t.asDown(first)
		t.hasRoot = true
		t.InsertAfter(first, rest...)
	}
}

// PushBack inserts items, in order, at the back of the tree. Grounded on
// mod.rs's push_back_from, which simply inserts after the current last item
// (or falls back to PushFront on an empty tree).
func (t *Tree[L, S, K]) PushBack(items ...L) {
	last, ok := t.Last()
	if ok {
		t.InsertAfter(last, items...)
		return
	}
	t.PushFront(items...)
}

// Remove detaches item from the tree. item must belong to this tree.
func (t *Tree[L, S, K]) Remove(item L) {
	defer t.guardDestroySafety()
	t.owner.Assert()
	assertThat(t.hasRoot, "`item` is not from this tree")
	result := t.removeRaw(item)
	assertThat(rootsMatch(t.root, result.oldRoot), "`item` is not from this tree")
	for _, n := range result.removed {
		t.deallocateNode(n)
	}
	if result.hasNewRoot {
		t.root = result.newRoot
		t.hasRoot = true
	} else {
		t.root = down[L, S, K]{}
		t.hasRoot = false
	}
}

// Replace detaches old and splices new into its exact place, preserving
// old's links. old and new must not be equal, and new must not already
// belong to a list. Grounded on mod.rs's replace.
func (t *Tree[L, S, K]) Replace(old, new L) {
	defer t.guardDestroySafety()
	t.owner.Assert()
	assertThat(new.Next().IsNone(), "new item is already in a list")
	oldSize := t.sizeOps.Of(old)
	_, position, prev := t.getPreviousInfo(t.asDown(old))

	kind, nxt, nxtParent := t.nextOf(t.asDown(old))
	t.propagateNext(t.asDown(new), kind, nxt, nxtParent)
	old.SetNext(NoNext[L]())

	if prev == nil {
		t.root = t.asDown(new)
		return
	}
	parent := prev.parent
	if prev.isParent {
		parent.setDown(t.asDown(new))
	} else {
		t.setNextSiblingOf(prev.sibling, t.asDown(new))
	}

	var keyUpdate *K
	if position == 0 && t.keyOps != nil {
		k := t.keyOps.Of(new)
		parent.key, parent.hasKey = k, true
		keyUpdate = &k
	}
	t.propagateUpdateDiff(internalDown[L, S, K](parent), keyUpdate, oldSize, t.sizeOps.Of(new))
}

// Update runs fn (which must only mutate item's size-relevant state) and
// propagates the resulting size change up the tree. Grounded on mod.rs's
// update.
func (t *Tree[L, S, K]) Update(item L, fn func()) {
	defer t.guardDestroySafety()
	t.owner.Assert()
	oldSize := t.sizeOps.Of(item)
	fn()
	newSize := t.sizeOps.Of(item)
	t.propagateUpdateDiff(t.asDown(item), nil, oldSize, newSize)
}

// propagateUpdateDiff walks ancestors of node upward, applying a size delta
// (if any_diff) and a key update (only at a position-0 ancestor, since a key
// only changes for a node whose leftmost descendant changed), stopping as
// soon as an ancestor needs neither. Grounded on mod.rs's
// propagate_update_diff.
func (t *Tree[L, S, K]) propagateUpdateDiff(node down[L, S, K], key *K, oldSize, newSize S) {
	anyDiff := !t.sizeOps.Equal(oldSize, newSize)
	parent, _, position := t.parentInfo(node)
	for parent != nil {
		if position != 0 {
			key = nil
		}
		anyUpdate := false
		if anyDiff {
			parent.size = t.sizeOps.Add(t.sizeOps.Sub(parent.size, oldSize), newSize)
			anyUpdate = true
		}
		if key != nil {
			parent.key, parent.hasKey = *key, true
			anyUpdate = true
		}
		if !anyUpdate {
			break
		}
		parent, _, position = t.parentInfo(internalDown[L, S, K](parent))
	}
}

// Clear detaches and deallocates every internal node, leaving the tree empty
// and usable. Unlike Destroy, the tree's allocator is not released.
func (t *Tree[L, S, K]) Clear() {
	t.owner.Assert()
	if !t.hasRoot {
		return
	}
	head := t.deconstruct(t.root)
	for head != nil {
		next := head.nextSibling()
		t.deallocateNode(head)
		head = next
	}
	t.root = down[L, S, K]{}
	t.hasRoot = false
}

// Drain removes and returns every item in order, leaving the tree empty.
func (t *Tree[L, S, K]) Drain() []L {
	var items []L
	for {
		first, ok := t.First()
		if !ok {
			break
		}
		items = append(items, first)
		t.Remove(first)
	}
	return items
}

// Iterator walks a Tree front to back. It is invalidated by any mutation to
// the tree performed while it is in use.
type Iterator[L Leaf[L], S any, K any] struct {
	tree *Tree[L, S, K]
	cur  L
	has  bool
}

// Iter returns an Iterator starting at the first item.
func (t *Tree[L, S, K]) Iter() *Iterator[L, S, K] {
	first, ok := t.First()
	return &Iterator[L, S, K]{tree: t, cur: first, has: ok}
}

// IterAt returns an Iterator starting at item, which must belong to this
// tree.
func (t *Tree[L, S, K]) IterAt(item L) *Iterator[L, S, K] {
	return &Iterator[L, S, K]{tree: t, cur: item, has: true}
}

// Next returns the iterator's current item and advances it, or returns
// ok=false once iteration is exhausted.
func (it *Iterator[L, S, K]) Next() (item L, ok bool) {
	if !it.has {
		return item, false
	}
	cur := it.cur
	next, ok2 := it.tree.nextLeaf(cur)
	it.cur, it.has = next, ok2
	return cur, true
}
