package xlist

import (
	"fmt"
	"unsafe"
)

// internalNode is owned by the tree, never by the caller. Grounded on
// _examples/original_source/src/list/node/internal.rs's InternalNode, minus
// the bit-tagged pointer machinery — ordinary fields plus nextIsParent do the
// same job, since Go pointers are already a nilable sum type.
type internalNode[L Leaf[L], S any, K any] struct {
	next         *internalNode[L, S, K]
	nextIsParent bool
	down         down[L, S, K]
	size         S
	length       int
	key          K
	hasKey       bool
}

// down is the value held by an internal node's down slot, or passed around
// during traversal as a stand-in for "either a leaf or an internal node" —
// the role Rust's Down<L> enum and NodeRef trait play in the original.
type down[L Leaf[L], S any, K any] struct {
	leaf     L
	internal *internalNode[L, S, K]
	isLeaf   bool
}

func leafDown[L Leaf[L], S any, K any](l L) down[L, S, K] {
	return down[L, S, K]{leaf: l, isLeaf: true}
}

func internalDown[L Leaf[L], S any, K any](n *internalNode[L, S, K]) down[L, S, K] {
	return down[L, S, K]{internal: n}
}

func (d down[L, S, K]) isZero() bool {
	return !d.isLeaf && d.internal == nil
}

func (d down[L, S, K]) asInternal() (*internalNode[L, S, K], bool) {
	if d.isLeaf {
		return nil, false
	}
	return d.internal, d.internal != nil
}

// ParentRef is an opaque, type-erased pointer from an item's next-slot up to
// its owning internal node. It erases S and K because an item's type L
// carries neither; see item.go's doc comment for why.
type ParentRef struct {
	ptr unsafe.Pointer
}

func makeParentRef[L Leaf[L], S any, K any](n *internalNode[L, S, K]) ParentRef {
	return ParentRef{ptr: unsafe.Pointer(n)}
}

func parentRefNode[L Leaf[L], S any, K any](p ParentRef) *internalNode[L, S, K] {
	return (*internalNode[L, S, K])(p.ptr)
}

// --- internal node next/down accessors --------------------------------------

type nodeKind uint8

const (
	kindNone nodeKind = iota
	kindSibling
	kindParent
)

// decodeNext decodes the node's next-slot into {none, sibling(down), parent(node)}.
func (n *internalNode[L, S, K]) decodeNext() (nodeKind, down[L, S, K], *internalNode[L, S, K]) {
	if n.next == nil {
		return kindNone, down[L, S, K]{}, nil
	}
	if n.nextIsParent {
		return kindParent, down[L, S, K]{}, n.next
	}
	return kindSibling, internalDown[L, S, K](n.next), nil
}

func (n *internalNode[L, S, K]) setNextSibling(sib *internalNode[L, S, K]) {
	n.next = sib
	n.nextIsParent = false
}

func (n *internalNode[L, S, K]) setNextParent(parent *internalNode[L, S, K]) {
	n.next = parent
	n.nextIsParent = true
}

func (n *internalNode[L, S, K]) setNextNone() {
	n.next = nil
	n.nextIsParent = false
}

// nextSibling returns the next internal node at the same level, or nil if
// next is none or a parent link.
func (n *internalNode[L, S, K]) nextSibling() *internalNode[L, S, K] {
	if n.next == nil || n.nextIsParent {
		return nil
	}
	return n.next
}

func (n *internalNode[L, S, K]) setDown(d down[L, S, K]) {
	n.down = d
}

func (n *internalNode[L, S, K]) String() string {
	return fmt.Sprintf("node{len=%d size=%v}", n.length, n.size)
}

func assertThat(that bool, msg string, args ...interface{}) {
	if !that {
		m := fmt.Sprintf("xlist: "+msg, args...)
		tracer().Errorf(m)
		panic(m)
	}
}

// --- the generic node-or-leaf currency used by traversal --------------------

// nextOf decodes d's next-slot via the tree's down-dispatch: if d is a leaf,
// it defers to the leaf's own Next(); if d is an internal node, it defers to
// internalNode.next.
func (t *Tree[L, S, K]) nextOf(d down[L, S, K]) (nodeKind, down[L, S, K], *internalNode[L, S, K]) {
	if d.isLeaf {
		n := d.leaf.Next()
		switch n.tag {
		case nextNone:
			return kindNone, down[L, S, K]{}, nil
		case nextSibling:
			sib, _ := n.AsSibling()
			return kindSibling, leafDown[L, S, K](sib), nil
		default:
			p, _ := n.AsParent()
			return kindParent, down[L, S, K]{}, parentRefNode[L, S, K](p)
		}
	}
	return d.internal.decodeNext()
}

// setNextSiblingOf stores a sibling next-slot value (or none, if sib is the
// zero down) on whichever of leaf/internal d holds.
func (t *Tree[L, S, K]) setNextSiblingOf(d, sib down[L, S, K]) {
	if d.isLeaf {
		if sib.isZero() {
			d.leaf.SetNext(NoNext[L]())
			return
		}
		d.leaf.SetNext(SiblingNext(sib.leaf))
		return
	}
	if sib.isZero() {
		d.internal.setNextNone()
		return
	}
	d.internal.setNextSibling(sib.internal)
}

func (t *Tree[L, S, K]) setNextParentOf(d down[L, S, K], parent *internalNode[L, S, K]) {
	if d.isLeaf {
		d.leaf.SetNext(ParentNext[L](makeParentRef[L, S, K](parent)))
		return
	}
	d.internal.setNextParent(parent)
}

func (t *Tree[L, S, K]) setNextNoneOf(d down[L, S, K]) {
	if d.isLeaf {
		d.leaf.SetNext(NoNext[L]())
		return
	}
	d.internal.setNextNone()
}

// sizeOf returns d's size, consulting the tree's SizeOps for a leaf or the
// cached aggregate for an internal node.
func (t *Tree[L, S, K]) sizeOf(d down[L, S, K]) S {
	if d.isLeaf {
		return t.sizeOps.Of(d.leaf)
	}
	return d.internal.size
}

// keyOf returns d's leftmost-descendant key, if keys are enabled.
func (t *Tree[L, S, K]) keyOf(d down[L, S, K]) (K, bool) {
	if t.keyOps == nil {
		var zero K
		return zero, false
	}
	if d.isLeaf {
		return t.keyOps.Of(d.leaf), true
	}
	return d.internal.key, d.internal.hasKey
}

func (t *Tree[L, S, K]) asDown(l L) down[L, S, K] {
	return leafDown[L, S, K](l)
}
