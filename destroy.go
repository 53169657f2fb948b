package xlist

// deconstruct flattens root's subtree into a singly-linked list of internal
// nodes, threaded through their own sibling-next field, detaching every
// leaf's next-pointer along the way. Grounded on
// _examples/original_source/src/list/destroy.rs's deconstruct.
func (t *Tree[L, S, K]) deconstruct(root down[L, S, K]) *internalNode[L, S, K] {
	return t.deconstructInto(root, nil)
}

func (t *Tree[L, S, K]) deconstructInto(root down[L, S, K], head *internalNode[L, S, K]) *internalNode[L, S, K] {
	if root.isZero() {
		return head
	}
	if root.isLeaf {
		node := root.leaf
		for {
			kind, nxt, _ := t.nextOf(leafDown[L, S, K](node))
			node.SetNext(NoNext[L]())
			if kind != kindSibling {
				break
			}
			node = nxt.leaf
		}
		return head
	}
	node := root.internal
	for {
		if !node.down.isZero() {
			head = t.deconstructInto(node.down, head)
		}
		next := node.nextSibling()
		if head != nil {
			node.setNextSibling(head)
		} else {
			node.setNextNone()
		}
		head = node
		if next == nil {
			break
		}
		node = next
	}
	return head
}

// guardDestroySafety is deferred by the restructuring public Tree methods
// (InsertAfter, PushFront, Remove, Replace, Update; Clear and Destroy do not
// defer it). If the method panics (an invariant assertion firing mid-mutation), the tree's
// internal links may be left partially rewritten; walking that structure
// further in Destroy could follow a dangling or cyclic pointer. Poisoning
// the tree makes Destroy leak its remaining nodes instead of risking that.
// Grounded on destroy_safety.rs's SetUnsafeOnDrop, a thread-local latch in
// the original set by an RAII guard's Drop impl during an unwind; reimagined
// here as a per-Tree field and an ordinary deferred recover, since Go has no
// implicit destructors for an RAII guard to hook into.
func (t *Tree[L, S, K]) guardDestroySafety() {
	if r := recover(); r != nil {
		t.poisoned = true
		panic(r)
	}
}

// Destroy returns every internal node owned by the tree to its allocator and
// detaches every item's next-pointer, then releases the allocator itself
// (see alloc.go's allocGuard). The tree must not be used after Destroy
// returns. If a prior mutation panicked and poisoned the tree, Destroy is a
// deliberate no-op: the remaining nodes leak rather than risk corrupting
// memory a caller may still be holding references into.
func (t *Tree[L, S, K]) Destroy() {
	t.owner.Assert()
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.poisoned {
		return
	}
	if t.hasRoot {
		head := t.deconstruct(t.root)
		for head != nil {
			next := head.nextSibling()
			t.deallocateNode(head)
			head = next
		}
	}
	t.hasRoot = false
	t.alloc.release()
}
