package xlist

// parentInfo follows the sibling chain rightward from node until a parent
// link is hit, counting hops. Grounded on
// _examples/original_source/src/list/traverse.rs's get_parent_info.
//
// Returns the parent (nil if node is the root), the last sibling visited
// before the parent link, and node's 0-based position among its siblings.
func (t *Tree[L, S, K]) parentInfo(node down[L, S, K]) (parent *internalNode[L, S, K], last down[L, S, K], position int) {
	kind, nxt, parentNode := t.nextOf(node)
	if kind == kindNone {
		tracer().Debugf("parentInfo: node has no next-slot, it is the root")
		return nil, node, 0
	}
	last = node
	count := 0
	for {
		count++
		switch kind {
		case kindParent:
			return parentNode, last, parentNode.length - count
		case kindSibling:
			last = nxt
			kind, nxt, parentNode = t.nextOf(nxt)
		default:
			assertThat(false, "sibling chain ended without reaching a parent")
			return nil, down[L, S, K]{}, 0
		}
	}
}

// getNthSibling walks n sibling links from node.
func (t *Tree[L, S, K]) getNthSibling(node down[L, S, K], n int) (down[L, S, K], bool) {
	cur := node
	for i := 0; i < n; i++ {
		kind, nxt, _ := t.nextOf(cur)
		if kind != kindSibling {
			return down[L, S, K]{}, false
		}
		cur = nxt
	}
	return cur, true
}

// getLastSibling returns the rightmost entity in node's sibling chain.
func (t *Tree[L, S, K]) getLastSibling(node down[L, S, K]) down[L, S, K] {
	_, last, _ := t.parentInfo(node)
	return last
}

// previousLink describes the entity whose next-pointer currently targets
// node: either the preceding sibling, or (when node is leftmost) the parent
// itself, whose down-slot points at node.
type previousLink[L Leaf[L], S any, K any] struct {
	isParent bool
	sibling  down[L, S, K]
	parent   *internalNode[L, S, K]
}

// getPreviousInfo locates the link pointing at node, grounded on
// traverse.rs's get_previous_info.
func (t *Tree[L, S, K]) getPreviousInfo(node down[L, S, K]) (last down[L, S, K], position int, prev *previousLink[L, S, K]) {
	parent, last, position := t.parentInfo(node)
	if parent == nil {
		return last, position, nil
	}
	if position == 0 {
		return last, position, &previousLink[L, S, K]{isParent: true, parent: parent}
	}
	cur := parent.down
	for i := 1; i < position; i++ {
		_, nxt, _ := t.nextOf(cur)
		cur = nxt
	}
	return last, position, &previousLink[L, S, K]{sibling: cur, parent: parent}
}

// getPrevious returns the entity immediately preceding node in iteration
// order, and whether that entity sits at node's own level (isSibling) or one
// level up (meaning the caller must keep ascending to find the true
// predecessor). ok is false only when node is the root (it has no parent).
func (t *Tree[L, S, K]) getPrevious(node down[L, S, K]) (result down[L, S, K], isSibling bool, ok bool) {
	_, _, prev := t.getPreviousInfo(node)
	if prev == nil {
		return down[L, S, K]{}, false, false
	}
	if prev.isParent {
		return internalDown[L, S, K](prev.parent), false, true
	}
	return prev.sibling, true, true
}

// descendLeftmost walks down.down repeatedly (leftmost child at each level)
// until a leaf is reached.
func (t *Tree[L, S, K]) descendLeftmost(d down[L, S, K]) (L, bool) {
	for {
		if d.isLeaf {
			return d.leaf, true
		}
		if d.internal == nil {
			var zero L
			return zero, false
		}
		d = d.internal.down
	}
}

// descendRightmost repeatedly takes the last sibling of down's child chain
// until a leaf is reached.
func (t *Tree[L, S, K]) descendRightmost(d down[L, S, K]) (L, bool) {
	for {
		if d.isLeaf {
			return d.leaf, true
		}
		if d.internal == nil {
			var zero L
			return zero, false
		}
		d = t.getLastSibling(d.internal.down)
	}
}

// nextLeaf steps from leaf to its successor in iteration order: sibling if
// one exists, otherwise ascend parents on the rightmost edge until a sibling
// presents itself, then descend leftmost. Grounded on mod.rs's `next`.
func (t *Tree[L, S, K]) nextLeaf(item L) (L, bool) {
	cur := t.asDown(item)
	for {
		kind, nxt, parentNode := t.nextOf(cur)
		switch kind {
		case kindNone:
			var zero L
			return zero, false
		case kindSibling:
			return t.descendLeftmost(nxt)
		default:
			cur = internalDown[L, S, K](parentNode)
		}
	}
}

// previousLeaf is the symmetric operation to nextLeaf: ascend while leftmost,
// then descend rightmost. Grounded on mod.rs's `previous`.
func (t *Tree[L, S, K]) previousLeaf(item L) (L, bool) {
	cur := t.asDown(item)
	var found down[L, S, K]
	for {
		nxt, isSibling, ok := t.getPrevious(cur)
		if !ok {
			var zero L
			return zero, false
		}
		if isSibling {
			found = nxt
			break
		}
		cur = nxt
	}
	return t.descendRightmost(found)
}
