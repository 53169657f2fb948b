package xlist

type removalKind uint8

const (
	removalRemove removalKind = iota
	removalUpdate
)

// removal tracks state threaded up the tree during a remove, grounded on
// _examples/original_source/src/list/remove.rs's Removal record. As with
// insertion, down[L,S,K] lets one type serve every level of the walk.
type removal[L Leaf[L], S any, K any] struct {
	child down[L, S, K]
	kind  removalKind
	diff  S
}

type removalOutcome[L Leaf[L], S any, K any] struct {
	done bool
	root down[L, S, K]
	next removal[L, S, K]
}

type finishedRemoval[L Leaf[L], S any, K any] struct {
	oldRoot    down[L, S, K]
	newRoot    down[L, S, K]
	hasNewRoot bool
	removed    []*internalNode[L, S, K]
}

// handleRemoval runs one level of the remove walk: unlink child from its
// parent's chain, then redistribute from a neighbor or merge on underflow.
// Grounded on remove.rs's handle_removal, with one deliberate correction:
// that source's left-merge branch propagates the merge survivor (the node
// that absorbed the neighbor's children) to the next level for splicing-out,
// but the survivor's own next-pointer does not target anything reachable
// from its sibling chain once its neighbor is emptied — tracing the splice
// shows it orphans the very content the merge just combined. The right-merge
// branch already reports the emptied node (whose next-pointer still happens
// to target the survivor), which splices correctly; this applies the same
// pattern to the left-merge branch by reporting the emptied left neighbor
// instead of the survivor. See DESIGN.md.
func (t *Tree[L, S, K]) handleRemoval(r removal[L, S, K]) removalOutcome[L, S, K] {
	child := r.child
	diff := r.diff

	last, position, prev := t.getPreviousInfo(child)
	if prev == nil {
		return removalOutcome[L, S, K]{done: true, root: child}
	}
	parent := prev.parent
	parent.size = t.sizeOps.Sub(parent.size, diff)
	if r.kind == removalUpdate {
		if k, ok := t.keyOf(parent.down); ok {
			parent.key, parent.hasKey = k, true
		}
		return removalOutcome[L, S, K]{next: removal[L, S, K]{
			child: internalDown[L, S, K](parent), kind: removalUpdate, diff: diff,
		}}
	}

	var previousSibling down[L, S, K]
	if prev.isParent {
		kind, nxt, _ := t.nextOf(child)
		assertThat(kind == kindSibling, "remove: first child has no sibling")
		parent.setDown(nxt)
	} else {
		previousSibling = prev.sibling
		kind, nxt, nxtParent := t.nextOf(child)
		t.propagateNext(previousSibling, kind, nxt, nxtParent)
	}
	if k, ok := t.keyOf(parent.down); ok {
		parent.key, parent.hasKey = k, true
	}

	first := parent.down
	var chainLast down[L, S, K]
	if position+1 == parent.length {
		chainLast = previousSibling
	} else {
		chainLast = last
	}

	t.setNextNoneOf(child)
	parent.length--
	if parent.length >= t.minFanout {
		return removalOutcome[L, S, K]{next: removal[L, S, K]{
			child: internalDown[L, S, K](parent), kind: removalUpdate, diff: diff,
		}}
	}

	pKind, pNxt, _ := parent.decodeNext()
	var neighbor *internalNode[L, S, K]
	var isRight bool
	switch pKind {
	case kindNone:
		return removalOutcome[L, S, K]{next: removal[L, S, K]{
			child: internalDown[L, S, K](parent), kind: removalUpdate, diff: diff,
		}}
	case kindSibling:
		neighbor, isRight = pNxt.internal, true
	default:
		leftDown, isSib, ok := t.getPrevious(internalDown[L, S, K](parent))
		assertThat(ok && isSib, "remove: underflowing node has no left neighbor")
		neighbor, isRight = leftDown.internal, false
	}

	if isRight {
		right := neighbor
		rightFirst := right.down
		if right.length > t.minFanout {
			tracer().Debugf("remove: redistribute from right neighbor, length %d > min %d", right.length, t.minFanout)
			t.metrics.Redistribute()
			rKind, rightSecond, _ := t.nextOf(rightFirst)
			assertThat(rKind == kindSibling, "remove: right neighbor has too few children")
			right.length--
			parent.length++
			rightFirstSize := t.sizeOf(rightFirst)
			right.size = t.sizeOps.Sub(right.size, rightFirstSize)
			parent.size = t.sizeOps.Add(parent.size, rightFirstSize)

			right.setDown(rightSecond)
			lastKind, lastNxt, lastNxtParent := t.nextOf(chainLast)
			t.propagateNext(rightFirst, lastKind, lastNxt, lastNxtParent)
			if k, ok := t.keyOf(rightSecond); ok {
				right.key, right.hasKey = k, true
			}
			t.setNextSiblingOf(chainLast, rightFirst)
			return removalOutcome[L, S, K]{next: removal[L, S, K]{
				child: internalDown[L, S, K](parent), kind: removalUpdate, diff: diff,
			}}
		}

		tracer().Debugf("remove: merge into right neighbor, neighbor length %d <= min %d", right.length, t.minFanout)
		t.metrics.Merge()
		right.setDown(first)
		if k, ok := t.keyOf(first); ok {
			right.key, right.hasKey = k, true
		}
		t.setNextSiblingOf(chainLast, rightFirst)
		parent.setDown(down[L, S, K]{})
		right.size = t.sizeOps.Add(right.size, parent.size)
		right.length += parent.length
		parent.size = t.sizeOps.Zero()
		parent.length = 0
		return removalOutcome[L, S, K]{next: removal[L, S, K]{
			child: internalDown[L, S, K](parent), kind: removalRemove, diff: diff,
		}}
	}

	left := neighbor
	leftLen := left.length
	leftFirst := left.down
	leftPenultimate, ok := t.getNthSibling(leftFirst, leftLen-2)
	assertThat(ok, "remove: left neighbor has too few children")
	lpKind, leftLast, _ := t.nextOf(leftPenultimate)
	assertThat(lpKind == kindSibling, "remove: left neighbor's children are malformed")

	if leftLen > t.minFanout {
		tracer().Debugf("remove: redistribute from left neighbor, length %d > min %d", leftLen, t.minFanout)
		t.metrics.Redistribute()
		left.length--
		parent.length++
		leftLastSize := t.sizeOf(leftLast)
		left.size = t.sizeOps.Sub(left.size, leftLastSize)
		parent.size = t.sizeOps.Add(parent.size, leftLastSize)

		llKind, llNxt, llNxtParent := t.nextOf(leftLast)
		t.propagateNext(leftPenultimate, llKind, llNxt, llNxtParent)
		t.setNextSiblingOf(leftLast, first)
		parent.setDown(leftLast)
		if k, ok := t.keyOf(leftLast); ok {
			parent.key, parent.hasKey = k, true
		}
		return removalOutcome[L, S, K]{next: removal[L, S, K]{
			child: internalDown[L, S, K](parent), kind: removalUpdate, diff: diff,
		}}
	}

	tracer().Debugf("remove: merge into left neighbor, neighbor length %d <= min %d", leftLen, t.minFanout)
	t.metrics.Merge()
	parent.setDown(leftFirst)
	if k, ok := t.keyOf(leftFirst); ok {
		parent.key, parent.hasKey = k, true
	}
	t.setNextSiblingOf(leftLast, first)
	left.setDown(down[L, S, K]{})
	parent.size = t.sizeOps.Add(parent.size, left.size)
	parent.length += left.length
	left.size = t.sizeOps.Zero()
	left.length = 0
	return removalOutcome[L, S, K]{next: removal[L, S, K]{
		child: internalDown[L, S, K](left), kind: removalRemove, diff: diff,
	}}
}

// propagateNext copies a decoded next-slot triple onto dst, whatever kind it
// turned out to be — the generic "copy a node's next pointer to another
// node" operation used throughout splice logic above.
func (t *Tree[L, S, K]) propagateNext(dst down[L, S, K], kind nodeKind, nxt down[L, S, K], parent *internalNode[L, S, K]) {
	switch kind {
	case kindSibling:
		t.setNextSiblingOf(dst, nxt)
	case kindParent:
		t.setNextParentOf(dst, parent)
	default:
		t.setNextNoneOf(dst)
	}
}

// removeRaw removes item from the tree, walking upward via handleRemoval and
// collapsing a length-1 root at the end. Grounded on remove.rs's free
// function `remove`.
func (t *Tree[L, S, K]) removeRaw(item L) finishedRemoval[L, S, K] {
	size := t.sizeOps.Of(item)
	result := t.handleRemoval(removal[L, S, K]{child: t.asDown(item), kind: removalRemove, diff: size})
	if result.done {
		return finishedRemoval[L, S, K]{oldRoot: result.root}
	}

	r := result.next
	var removed []*internalNode[L, S, K]
	var root *internalNode[L, S, K]
	for {
		var collected *internalNode[L, S, K]
		if r.kind == removalRemove {
			collected = r.child.internal
		}
		result = t.handleRemoval(r)
		if collected != nil {
			removed = append(removed, collected)
		}
		if result.done {
			root, _ = result.root.asInternal()
			break
		}
		r = result.next
	}

	oldRoot := internalDown[L, S, K](root)
	newRoot := oldRoot
	if root.length <= 1 {
		tracer().Debugf("remove: root collapse, root length %d", root.length)
		t.metrics.RootCollapse()
		d := root.down
		if d.isLeaf {
			d.leaf.SetNext(NoNext[L]())
		} else if d.internal != nil {
			d.internal.setNextNone()
		}
		removed = append(removed, root)
		newRoot = d
	}

	return finishedRemoval[L, S, K]{
		oldRoot:    oldRoot,
		newRoot:    newRoot,
		hasNewRoot: true,
		removed:    removed,
	}
}
