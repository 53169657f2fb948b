package xlist

// insertion tracks state threaded up the tree during an insert, grounded on
// _examples/original_source/src/list/insert.rs's Insertion record. Unlike
// the original, this is not reinstantiated per tree level with a different
// type parameter: since down[L,S,K] already unifies "leaf or internal node",
// the same insertion type carries the walk from leaf level all the way to
// the root.
type insertion[L Leaf[L], S any, K any] struct {
	count   int
	first   down[L, S, K]
	last    down[L, S, K]
	diff    S
	root    down[L, S, K]
	hasRoot bool
}

type finishedInsertion[L Leaf[L], S any, K any] struct {
	oldRoot down[L, S, K]
	newRoot down[L, S, K]
}

type insertionOutcome[L Leaf[L], S any, K any] struct {
	done     bool
	finished finishedInsertion[L, S, K]
	next     insertion[L, S, K]
}

// handleInsertion runs one level of the insert walk: locate the parent of
// the newly-touched range, then either fast-path a length/size bump or
// restructure via the split planner. Grounded on insert.rs's
// handle_insertion.
func (t *Tree[L, S, K]) handleInsertion(ins insertion[L, S, K]) insertionOutcome[L, S, K] {
	last := ins.last
	first := ins.first

	p, _, _ := t.parentInfo(last)
	if p == nil {
		root := ins.root
		hasRoot := ins.hasRoot
		if !hasRoot {
			root = first
			hasRoot = true
		}
		kind, _, _ := t.nextOf(first)
		if kind != kindSibling {
			return insertionOutcome[L, S, K]{
				done:     true,
				finished: finishedInsertion[L, S, K]{oldRoot: root, newRoot: first},
			}
		}
		newRoot := t.allocateNode()
		newRoot.setDown(first)
		newRoot.length = 1
		p = newRoot
		ins.root = root
		ins.hasRoot = true
	}

	firstParent := p
	newLen := p.length + ins.count
	useFastPath := newLen <= t.maxFanout && !ins.hasRoot

	var count int
	var tail *internalNode[L, S, K]
	if useFastPath {
		tracer().Debugf("insert: fast path, node length %d -> %d", p.length, newLen)
		p.size = t.sizeOps.Add(p.size, ins.diff)
		p.length = newLen
		tail = p
	} else {
		tracer().Debugf("insert: split path, node length %d would exceed fanout %d", newLen, t.maxFanout)
		t.metrics.Split()
		firstChild := p.down
		planner := t.newSplitPlanner(firstChild, newLen)
		endKind, endDown, endParent := p.decodeNext()
		chunk1, _ := planner.next()
		t.applyChunkTo(chunk1, p)
		cur := p
		for {
			chunk, ok := planner.next()
			if !ok {
				break
			}
			node := t.allocChunk(chunk)
			cur.setNextSibling(node)
			cur = node
			count++
		}
		switch endKind {
		case kindSibling:
			cur.setNextSibling(endDown.internal)
		case kindParent:
			cur.setNextParent(endParent)
		default:
			cur.setNextNone()
		}
		tail = cur
	}

	return insertionOutcome[L, S, K]{
		next: insertion[L, S, K]{
			count:   count,
			first:   internalDown[L, S, K](firstParent),
			last:    internalDown[L, S, K](tail),
			diff:    ins.diff,
			root:    ins.root,
			hasRoot: ins.hasRoot,
		},
	}
}

// insertAfterRaw links items into the sibling chain immediately after pos
// and walks the tree upward via handleInsertion until a new root is
// determined. Grounded on insert.rs's insert_after.
func (t *Tree[L, S, K]) insertAfterRaw(pos L, items []L) finishedInsertion[L, S, K] {
	endKind, endDown, endParent := t.nextOf(t.asDown(pos))

	diff := t.sizeOps.Zero()
	cur := pos
	count := 0
	for _, item := range items {
		assertThat(item.Next().IsNone(), "item is already in a list")
		diff = t.sizeOps.Add(diff, t.sizeOps.Of(item))
		cur.SetNext(SiblingNext(item))
		cur = item
		count++
	}
	switch endKind {
	case kindSibling:
		cur.SetNext(SiblingNext(endDown.leaf))
	case kindParent:
		cur.SetNext(ParentNext[L](makeParentRef[L, S, K](endParent)))
	default:
		cur.SetNext(NoNext[L]())
	}

	ins := insertion[L, S, K]{
		count: count,
		first: t.asDown(pos),
		last:  t.asDown(cur),
		diff:  diff,
	}
	for {
		outcome := t.handleInsertion(ins)
		if outcome.done {
			return outcome.finished
		}
		ins = outcome.next
	}
}
