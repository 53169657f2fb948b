package xlist

import (
	"fmt"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// numItem is the Leaf[L] implementation used throughout this package's own
// tests: an int value, an independently settable weight (sz), and the
// next-slot every item must carry. Grounded on persistent/btree's own
// test-only xitem/xnode helpers (btree_test.go's createTreeForTest), adapted
// from an immutable key/value pair to a mutable intrusive leaf.
type numItem struct {
	value int
	sz    int
	next  Next[*numItem]
}

func (n *numItem) Next() Next[*numItem]        { return n.next }
func (n *numItem) SetNext(next Next[*numItem]) { n.next = next }
func (n *numItem) Clone() *numItem             { return n }
func (n *numItem) String() string              { return fmt.Sprintf("%d", n.value) }

func newItems(lo, hi int) []*numItem {
	items := make([]*numItem, 0, hi-lo)
	for v := lo; v < hi; v++ {
		items = append(items, &numItem{value: v, sz: 1})
	}
	return items
}

func rangeInts(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for v := lo; v < hi; v++ {
		out = append(out, v)
	}
	return out
}

func unitTestTree(fanout int) *Tree[*numItem, int, int] {
	sizeOps := IntSizeOps[*numItem](func(n *numItem) int { return n.sz })
	keyOps := KeyOps[*numItem, int]{
		Of:      func(n *numItem) int { return n.value },
		Compare: func(a, b int) int { return a - b },
	}
	return NewWithSizeAndKeys[*numItem, int, int](sizeOps, keyOps, Fanout[*numItem, int, int](fanout))
}

func iterValues(tr *Tree[*numItem, int, int]) []int {
	var out []int
	it := tr.Iter()
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, item.value)
	}
	return out
}

func assertIntSlicesEqual(t *testing.T, got, want []int, msg string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length mismatch: got %d want %d\n got=%v\nwant=%v", msg, len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s: mismatch at %d: got %d want %d\n got=%v\nwant=%v", msg, i, got[i], want[i], got, want)
		}
	}
}

// checkInvariants walks the whole tree validating spec.md §8 invariants 1-5:
// depth uniformity, fanout bounds, cached len/size aggregates, the leftmost-
// key cache, and that every sibling chain terminates in exactly one parent
// link. Grounded on the teacher's own printTree/ppt debug walk
// (btree_test.go), generalized from rendering into assertion.
func checkInvariants(t *testing.T, tr *Tree[*numItem, int, int]) {
	t.Helper()
	if !tr.hasRoot {
		return
	}
	depth := -1
	var walk func(d down[*numItem, int, int], lvl int, isRoot bool)
	walk = func(d down[*numItem, int, int], lvl int, isRoot bool) {
		if d.isLeaf {
			if depth == -1 {
				depth = lvl
			} else if depth != lvl {
				t.Fatalf("depth uniformity violated: leaf at level %d, expected %d", lvl, depth)
			}
			return
		}
		n := d.internal
		if n == nil {
			t.Fatalf("nil internal node encountered mid-tree")
		}
		if isRoot {
			if n.length < 2 {
				t.Fatalf("root internal node has length %d, want >= 2", n.length)
			}
		} else if n.length < tr.minFanout || n.length > tr.maxFanout {
			t.Fatalf("node length %d out of bounds [%d,%d]", n.length, tr.minFanout, tr.maxFanout)
		}
		cur := n.down
		count, sum := 0, 0
		for {
			walk(cur, lvl+1, false)
			count++
			sum += tr.sizeOf(cur)
			kind, nxt, parent := tr.nextOf(cur)
			if kind == kindParent {
				if parent != n {
					t.Fatalf("sibling chain's parent link does not point back at the owning node")
				}
				break
			}
			if kind != kindSibling {
				t.Fatalf("sibling chain ended in none before reaching a parent link")
			}
			cur = nxt
			if count > tr.maxFanout+2 {
				t.Fatalf("sibling chain exceeded max fanout without terminating (likely a cycle)")
			}
		}
		if count != n.length {
			t.Fatalf("len cache mismatch: cached %d, actual child count %d", n.length, count)
		}
		if sum != n.size {
			t.Fatalf("size cache mismatch: cached %d, actual sum %d", n.size, sum)
		}
		if leftKey, ok := tr.keyOf(n.down); ok {
			if !n.hasKey || n.key != leftKey {
				t.Fatalf("key cache mismatch: cached %v, leftmost descendant key %v", n.key, leftKey)
			}
		}
	}
	walk(tr.root, 0, true)
}

func TestEmptyTree(t *testing.T) {
	tr := unitTestTree(4)
	if tr.Size() != 0 {
		t.Error("empty tree should have size 0")
	}
	if !tr.IsEmpty() {
		t.Error("expected IsEmpty() on a fresh tree")
	}
	if _, ok := tr.First(); ok {
		t.Error("First() on an empty tree should report not-found")
	}
	if _, ok := tr.Last(); ok {
		t.Error("Last() on an empty tree should report not-found")
	}
	if _, ok := tr.GetByIndex(0); ok {
		t.Error("GetByIndex(0) on an empty tree should report not-found")
	}
	if vals := iterValues(tr); len(vals) != 0 {
		t.Errorf("iter() on an empty tree should yield nothing, got %v", vals)
	}
}

func TestSingleLeaf(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushFront(&numItem{value: 42, sz: 1})
	if !tr.hasRoot || !tr.root.isLeaf {
		t.Fatal("a one-item tree's root should be the leaf itself, with no internal node")
	}
	checkInvariants(t, tr)

	tr.PushBack(&numItem{value: 43, sz: 1})
	checkInvariants(t, tr)
	if tr.root.isLeaf {
		t.Error("a second insert should have created the tree's first internal node")
	}
}

// TestBulkPushFront is spec.md §8 scenario 1.
func TestBulkPushFront(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushFront(newItems(0, 250)...)
	checkInvariants(t, tr)

	if got := tr.Size(); got != 250 {
		t.Fatalf("Size() = %d, want 250", got)
	}
	assertIntSlicesEqual(t, iterValues(tr), rangeInts(0, 250), "iter()")

	for i := 0; i < 250; i++ {
		item, ok := tr.GetByIndex(i)
		if !ok || item.value != i {
			t.Fatalf("GetByIndex(%d) = (%v, %v), want (%d, true)", i, item, ok, i)
		}
		if idx := tr.IndexOf(item); idx != i {
			t.Fatalf("IndexOf(item@%d) = %d, want %d", i, idx, i)
		}
	}
	if _, ok := tr.GetByIndex(250); ok {
		t.Error("GetByIndex(250) should report not-found, tree only has 250 items")
	}
}

// TestRepeatedPushBack is spec.md §8 scenario 2.
func TestRepeatedPushBack(t *testing.T) {
	tr := unitTestTree(4)
	for _, item := range newItems(0, 150) {
		tr.PushBack(item)
	}
	checkInvariants(t, tr)
	assertIntSlicesEqual(t, iterValues(tr), rangeInts(0, 150), "iter()")
}

func spliceSlice(s []int, pos int, vals []int) []int {
	out := make([]int, 0, len(s)+len(vals))
	out = append(out, s[:pos]...)
	out = append(out, vals...)
	out = append(out, s[pos:]...)
	return out
}

// TestMixedInserts is spec.md §8 scenario 3: a scripted sequence of
// insert-before and insert-after-opt splices by position, checked against a
// plain Go slice splicing the same ranges in lockstep. insert_before(@p) and
// insert_after(@p-1) place new content at the identical resulting position
// p, so the reference splice is mode-independent; only which Tree entry
// point gets exercised differs.
func TestMixedInserts(t *testing.T) {
	tr := unitTestTree(4)
	pool := make(map[int]*numItem, 250)
	for _, it := range newItems(0, 250) {
		pool[it.value] = it
	}

	type spliceOp struct {
		pos, lo, hi int
		mode        string
	}
	ops := []spliceOp{
		{0, 0, 50, "after"},
		{25, 50, 60, "after"},
		{5, 60, 80, "after"},
		{78, 80, 81, "before"},
		{40, 81, 82, "after"},
		{15, 82, 126, "before"},
		{100, 126, 146, "before"},
		{90, 146, 186, "after"},
		{186, 186, 226, "after"},
		{0, 226, 250, "after"},
	}

	var ref []int
	for _, op := range ops {
		vals := rangeInts(op.lo, op.hi)
		items := make([]*numItem, len(vals))
		for i, v := range vals {
			items[i] = pool[v]
		}
		ref = spliceSlice(ref, op.pos, vals)

		switch op.mode {
		case "after":
			if op.pos == 0 {
				tr.InsertAfterOpt(nil, items...)
			} else {
				anchor, ok := tr.GetByIndex(op.pos - 1)
				if !ok {
					t.Fatalf("setup: no item at index %d before op %+v", op.pos-1, op)
				}
				tr.InsertAfter(anchor, items...)
			}
		case "before":
			if op.pos >= tr.Size() {
				tr.InsertBeforeOpt(nil, items...)
			} else {
				anchor, ok := tr.GetByIndex(op.pos)
				if !ok {
					t.Fatalf("setup: no item at index %d before op %+v", op.pos, op)
				}
				tr.InsertBefore(anchor, items...)
			}
		default:
			t.Fatalf("bad mode %q", op.mode)
		}
		checkInvariants(t, tr)
		assertIntSlicesEqual(t, iterValues(tr), ref, fmt.Sprintf("after splice %+v", op))
	}
}

// TestRemovals is spec.md §8 scenario 4.
func TestRemovals(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushBack(newItems(0, 250)...)
	ref := rangeInts(0, 250)

	type removeOp struct{ pos, count int }
	ops := []removeOp{
		{20, 10}, {0, 10}, {100, 1}, {120, 1}, {50, 30},
		{83, 1}, {101, 1}, {25, 1}, {3, 1}, {16, 1}, {80, 20},
	}
	for _, op := range ops {
		for i := 0; i < op.count; i++ {
			item, ok := tr.GetByIndex(op.pos)
			if !ok {
				t.Fatalf("setup: no item at index %d (op=%+v, iteration=%d)", op.pos, op, i)
			}
			tr.Remove(item)
			ref = append(ref[:op.pos], ref[op.pos+1:]...)
		}
		checkInvariants(t, tr)
	}
	assertIntSlicesEqual(t, iterValues(tr), ref, "final state after removals")
}

// TestGetAfter is spec.md §8 scenario 5.
func TestGetAfter(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushBack(newItems(0, 250)...)
	checkInvariants(t, tr)

	item100, ok := tr.GetByIndex(100)
	if !ok || item100.value != 100 {
		t.Fatalf("setup: GetByIndex(100) = (%v, %v)", item100, ok)
	}

	cases := []struct {
		offset int
		want   int
		wantOk bool
	}{
		{0, 100, true},
		{50, 150, true},
		{149, 249, true},
		{150, 0, false},
	}
	for _, c := range cases {
		got, ok := tr.GetAfter(item100, c.offset)
		if ok != c.wantOk {
			t.Fatalf("GetAfter(item@100, %d): ok=%v, want %v", c.offset, ok, c.wantOk)
		}
		if ok && got.value != c.want {
			t.Fatalf("GetAfter(item@100, %d) = %d, want %d", c.offset, got.value, c.want)
		}
	}

	last, ok := tr.Last()
	if !ok {
		t.Fatal("setup: Last() should exist")
	}
	if got, ok := tr.GetAfter(last, 0); !ok || got != last {
		t.Fatalf("GetAfter(last, 0) = (%v, %v), want (last, true)", got, ok)
	}
	if _, ok := tr.GetAfter(last, 1); ok {
		t.Error("GetAfter(last, 1) should report not-found")
	}
}

// TestZeroSizeItems is spec.md §8 scenario 6.
func TestZeroSizeItems(t *testing.T) {
	tr := unitTestTree(4)
	items := make([]*numItem, 0, 101)
	for v := 0; v < 101; v++ {
		items = append(items, &numItem{value: v, sz: v % 2})
	}
	tr.PushBack(items...)
	checkInvariants(t, tr)

	if got := tr.Size(); got != 50 {
		t.Fatalf("Size() = %d, want 50", got)
	}
	cases := []struct{ pos, want int }{
		{0, 1}, {1, 3}, {25, 51}, {50, 100},
	}
	for _, c := range cases {
		item, ok := tr.GetByIndex(c.pos)
		if !ok {
			t.Fatalf("GetByIndex(%d) not found", c.pos)
		}
		if item.value != c.want {
			t.Fatalf("GetByIndex(%d) = %d, want %d", c.pos, item.value, c.want)
		}
	}
}

// TestInsertRemoveIdempotence is spec.md §8 invariant 8: InsertAfter
// immediately followed by Remove of the same item restores the prior shape.
func TestInsertRemoveIdempotence(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushBack(newItems(0, 60)...)
	checkInvariants(t, tr)
	before := tr.WriteTree()

	anchor, ok := tr.GetByIndex(30)
	if !ok {
		t.Fatal("setup: GetByIndex(30) not found")
	}
	extra := &numItem{value: 1000, sz: 1}
	tr.InsertAfter(anchor, extra)
	checkInvariants(t, tr)
	tr.Remove(extra)
	checkInvariants(t, tr)

	if after := tr.WriteTree(); before != after {
		t.Fatalf("tree shape changed after insert+remove of the same item:\nbefore=%s\nafter=%s", before, after)
	}
}

func TestOrderedFindAndInsert(t *testing.T) {
	tr := unitTestTree(4)
	vals := []int{50, 10, 30, 90, 20, 70, 5, 60, 40, 80}
	for _, v := range vals {
		if !tr.Insert(&numItem{value: v, sz: 1}) {
			t.Fatalf("Insert(%d) unexpectedly reported a duplicate key", v)
		}
	}
	checkInvariants(t, tr)

	sorted := append([]int{}, vals...)
	sort.Ints(sorted)
	assertIntSlicesEqual(t, iterValues(tr), sorted, "sorted Insert")

	if tr.Insert(&numItem{value: 30, sz: 1}) {
		t.Error("Insert of a key already present should report false")
	}

	found, ok := tr.Find(70)
	if !ok || found.value != 70 {
		t.Fatalf("Find(70) = (%v, %v), want (70, true)", found, ok)
	}
	if _, ok := tr.Find(999); ok {
		t.Error("Find(999) should report not-found")
	}
}

func TestFindAfter(t *testing.T) {
	tr := unitTestTree(4)
	for _, v := range rangeInts(0, 200) {
		tr.Insert(&numItem{value: v * 2, sz: 1}) // even keys 0, 2, 4 ... 398
	}
	checkInvariants(t, tr)

	start, ok := tr.Find(40)
	if !ok {
		t.Fatal("setup: expected to find key 40")
	}
	if got, ok := tr.FindAfter(start, 100); !ok || got.value != 100 {
		t.Fatalf("FindAfter(40, 100) = (%v, %v), want (100, true)", got, ok)
	}
	if _, ok := tr.FindAfter(start, 41); ok {
		t.Error("FindAfter(40, 41) should not find an odd key")
	}
}

func TestLocate(t *testing.T) {
	tr := unitTestTree(4)
	for _, v := range []int{10, 20, 30, 40, 50} {
		tr.Insert(&numItem{value: v, sz: 1})
	}

	if r := tr.Locate(30); !r.IsFound() {
		t.Error("Locate(30) should report IsFound()")
	} else {
		var v *numItem
		switch m := r.Match(); m {
		case m.Found(&v):
			if v.value != 30 {
				t.Errorf("Locate(30) matched Found(%d), want 30", v.value)
			}
		default:
			t.Error("Locate(30): Match() did not select the Found arm")
		}
	}

	r := tr.Locate(25)
	if r.IsFound() {
		t.Error("Locate(25) should not report IsFound()")
	}
	var v *numItem
	switch m := r.Match(); m {
	case m.Predecessor(&v):
		if v.value != 20 {
			t.Errorf("Locate(25) matched Predecessor(%d), want 20", v.value)
		}
	default:
		t.Error("Locate(25): Match() did not select the Predecessor arm")
	}

	switch m := tr.Locate(5).Match(); m {
	case m.None():
	default:
		t.Error("Locate(5): Match() did not select the None arm for a key before everything")
	}
}

func TestReplaceAndUpdate(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushBack(newItems(0, 30)...)
	checkInvariants(t, tr)

	old, ok := tr.GetByIndex(10)
	if !ok {
		t.Fatal("setup: GetByIndex(10) not found")
	}
	repl := &numItem{value: 1010, sz: 1}
	tr.Replace(old, repl)
	checkInvariants(t, tr)
	if got, _ := tr.GetByIndex(10); got.value != 1010 {
		t.Fatalf("after Replace, GetByIndex(10) = %d, want 1010", got.value)
	}

	item, ok := tr.GetByIndex(5)
	if !ok {
		t.Fatal("setup: GetByIndex(5) not found")
	}
	before := tr.Size()
	tr.Update(item, func() { item.sz = 3 })
	checkInvariants(t, tr)
	if got := tr.Size(); got != before+2 {
		t.Fatalf("after Update growing item size by 2, Size() = %d, want %d", got, before+2)
	}
}

func TestDrain(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushBack(newItems(0, 40)...)
	drained := tr.Drain()
	if len(drained) != 40 {
		t.Fatalf("Drain() returned %d items, want 40", len(drained))
	}
	for i, item := range drained {
		if item.value != i {
			t.Fatalf("Drain()[%d].value = %d, want %d", i, item.value, i)
		}
	}
	if !tr.IsEmpty() {
		t.Error("expected tree to be empty after Drain()")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushBack(newItems(0, 40)...)
	tr.Destroy()
	tr.Destroy() // must not panic a second time
}

func TestDebugOwnershipChecks(t *testing.T) {
	sizeOps := IntSizeOps[*numItem](func(n *numItem) int { return n.sz })
	tr := NewWithSize[*numItem, int](sizeOps, DebugOwnershipChecks[*numItem, int, struct{}]())
	tr.PushBack(&numItem{value: 1, sz: 1})
	if tr.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", tr.Size())
	}

	done := make(chan bool, 1)
	go func() {
		defer func() { done <- recover() != nil }()
		tr.PushBack(&numItem{value: 2, sz: 1})
	}()
	if !<-done {
		t.Error("expected a mutation from a different goroutine to panic")
	}
}

// countingAllocator wraps the default pool allocator to prove out
// WithAllocator/OnAllocatorRelease with a plain heap-backed Allocator — every
// node it hands out stays ordinary Go-heap memory, so the GC can trace
// through it like any other pointer, unlike a raw arena.
type countingAllocator struct {
	inner       *poolAllocator[*numItem, int, int]
	allocated   int
	deallocated int
}

func (c *countingAllocator) Allocate() *internalNode[*numItem, int, int] {
	c.allocated++
	return c.inner.Allocate()
}

func (c *countingAllocator) Deallocate(n *internalNode[*numItem, int, int]) {
	c.deallocated++
	c.inner.Deallocate(n)
}

func TestCustomAllocator(t *testing.T) {
	alloc := &countingAllocator{inner: newPoolAllocator[*numItem, int, int]()}
	released := false

	sizeOps := IntSizeOps[*numItem](func(n *numItem) int { return n.sz })
	keyOps := KeyOps[*numItem, int]{
		Of:      func(n *numItem) int { return n.value },
		Compare: func(a, b int) int { return a - b },
	}
	tr := NewWithSizeAndKeys[*numItem, int, int](sizeOps, keyOps,
		Fanout[*numItem, int, int](4),
		WithAllocator[*numItem, int, int](alloc),
		OnAllocatorRelease[*numItem, int, int](func() { released = true }),
	)

	tr.PushBack(newItems(0, 300)...)
	checkInvariants(t, tr)
	assertIntSlicesEqual(t, iterValues(tr), rangeInts(0, 300), "iter() with a custom allocator")
	if alloc.allocated == 0 {
		t.Error("expected the custom allocator to have allocated at least one node")
	}

	tr.Destroy()
	if !released {
		t.Error("expected OnAllocatorRelease's callback to run during Destroy")
	}
	if alloc.deallocated == 0 {
		t.Error("expected the custom allocator to have deallocated at least one node")
	}
}

func TestMetricsRecordsStructuralOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	sizeOps := IntSizeOps[*numItem](func(n *numItem) int { return n.sz })
	keyOps := KeyOps[*numItem, int]{
		Of:      func(n *numItem) int { return n.value },
		Compare: func(a, b int) int { return a - b },
	}
	tr := NewWithSizeAndKeys[*numItem, int, int](sizeOps, keyOps,
		Fanout[*numItem, int, int](4),
		WithMetrics[*numItem, int, int](reg),
	)

	tr.PushBack(newItems(0, 60)...)
	checkInvariants(t, tr)
	for _, v := range rangeInts(0, 58) {
		item, ok := tr.Find(v)
		if !ok {
			t.Fatalf("Find(%d) failed before removal", v)
		}
		tr.Remove(item)
	}
	checkInvariants(t, tr)

	for _, name := range []string{
		"xlist_node_splits_total",
		"xlist_node_merges_total",
		"xlist_node_redistributes_total",
		"xlist_root_collapses_total",
		"xlist_node_allocations_total",
		"xlist_node_frees_total",
	} {
		if got := counterValue(t, reg, name); got == 0 {
			t.Errorf("%s = 0, want > 0", name)
		}
	}
}

// counterValue sums every Counter sample of the named metric family
// registered on reg, for asserting on WithMetrics' effect from outside the
// metrics package (whose Recorder fields are unexported).
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.Metric {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func TestClear(t *testing.T) {
	tr := unitTestTree(4)
	tr.PushBack(newItems(0, 80)...)
	tr.Clear()
	if !tr.IsEmpty() {
		t.Error("expected tree to be empty after Clear()")
	}
	tr.PushBack(newItems(0, 5)...)
	checkInvariants(t, tr)
	assertIntSlicesEqual(t, iterValues(tr), rangeInts(0, 5), "iter() after Clear+reuse")
}
