package xlist

import "github.com/npillmayer/xlist/maybe"

// findInsertionPoint descends the tree comparing key against each node's
// cached leftmost-descendant key (internal nodes) or the item's own key
// (leaves). It returns the matching item directly on an exact hit, or the
// predecessor item short of where key would sort, with hasPred reporting
// whether any predecessor exists at all (false only when key sorts before
// everything, or the tree is empty). Grounded on mod.rs's find_with_cmp,
// adapted to return a predecessor item rather than a Result so Insert can
// reuse it directly; node.key caches a K value here rather than the
// original's cached leaf reference, so an exact match at an internal node
// requires one extra descend to recover the actual leaf.
func (t *Tree[L, S, K]) findInsertionPoint(key K) (pred L, hasPred bool, exists bool) {
	assertThat(t.keyOps != nil, "ordered operations require a Tree constructed with key ops")
	if !t.hasRoot {
		return pred, false, false
	}
	rootKey, _ := t.keyOf(t.root)
	if t.keyOps.Compare(key, rootKey) < 0 {
		return pred, false, false
	}
	return t.searchFrom(t.root, key)
}

// searchFrom descends from node looking for key, under the precondition
// that key is not less than node's own leftmost-descendant key (the caller
// has already established node is a valid entry point for this search).
// Factored out of findInsertionPoint so FindAfter can reuse the same descent
// starting from an arbitrary ancestor instead of always the root.
func (t *Tree[L, S, K]) searchFrom(node down[L, S, K], key K) (pred L, hasPred bool, exists bool) {
	for {
		if node.isLeaf {
			cur := node.leaf
			for {
				c := t.keyOps.Compare(key, t.keyOps.Of(cur))
				if c == 0 {
					return cur, true, true
				}
				kind, nxt, _ := t.nextOf(leafDown[L, S, K](cur))
				if kind != kindSibling {
					return cur, true, false
				}
				if t.keyOps.Compare(key, t.keyOps.Of(nxt.leaf)) < 0 {
					return cur, true, false
				}
				cur = nxt.leaf
			}
		}
		cur := node.internal
		for {
			k, _ := t.keyOf(internalDown[L, S, K](cur))
			if t.keyOps.Compare(key, k) == 0 {
				leaf, ok := t.descendLeftmost(internalDown[L, S, K](cur))
				assertThat(ok, "find: internal node has no key-bearing leaf")
				return leaf, true, true
			}
			if nxt := cur.nextSibling(); nxt != nil {
				if nk, _ := t.keyOf(internalDown[L, S, K](nxt)); t.keyOps.Compare(key, nk) >= 0 {
					cur = nxt
					continue
				}
			}
			node = cur.down
			break
		}
	}
}

// FindAfter returns the item whose key compares equal to key, searching
// from start forward rather than from the root. key must not sort before
// start's own key. Ascends from start only as far as needed — while the
// next sibling's (or ancestor's) leftmost key is still <= key — then
// descends via searchFrom, so a lookup near a known position stays local
// instead of re-entering at the root. Grounded on mod.rs's find_after.
func (t *Tree[L, S, K]) FindAfter(start L, key K) (L, bool) {
	assertThat(t.keyOps != nil, "ordered operations require a Tree constructed with key ops")
	assertThat(t.keyOps.Compare(key, t.keyOps.Of(start)) >= 0, "FindAfter: key sorts before start")
	node := t.asDown(start)
	for {
		kind, nxt, parent := t.nextOf(node)
		switch kind {
		case kindNone:
			item, _, exists := t.searchFrom(node, key)
			return item, exists
		case kindSibling:
			k, _ := t.keyOf(nxt)
			if t.keyOps.Compare(key, k) < 0 {
				item, _, exists := t.searchFrom(node, key)
				return item, exists
			}
			node = nxt
		default:
			node = internalDown[L, S, K](parent)
		}
	}
}

// Find returns the item whose key compares equal to key.
func (t *Tree[L, S, K]) Find(key K) (L, bool) {
	item, _, exists := t.findInsertionPoint(key)
	return item, exists
}

// Locate reports where key sits relative to the tree's contents: an exact
// match, a predecessor short of where key would sort, or neither. Built for
// callers that want to report all three outcomes (e.g. xlistctl's locate
// command printing `found "K"` vs. `not found; nearest predecessor is "X"`
// vs. "not found; list is empty or key sorts before everything in it")
// without juggling findInsertionPoint's two separate bools themselves.
func (t *Tree[L, S, K]) Locate(key K) maybe.Result[L] {
	pred, hasPred, exists := t.findInsertionPoint(key)
	switch {
	case exists:
		return maybe.Found(pred)
	case hasPred:
		return maybe.Predecessor(pred)
	default:
		return maybe.None[L]()
	}
}

// Insert inserts item in key order. It reports false, leaving the tree
// unmodified, if an item with an equal key already exists. Grounded on
// mod.rs's insert.
func (t *Tree[L, S, K]) Insert(item L) bool {
	key := t.keyOps.Of(item)
	pred, hasPred, exists := t.findInsertionPoint(key)
	if exists {
		tracer().Debugf("insert: key %v already present, rejecting", key)
		return false
	}
	if hasPred {
		tracer().Debugf("insert: key %v sorts after predecessor %v", key, t.keyOps.Of(pred))
		t.InsertAfter(pred, item)
	} else {
		tracer().Debugf("insert: key %v sorts before everything, pushing to front", key)
		t.PushFront(item)
	}
	return true
}
