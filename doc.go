/*
Package xlist implements an intrusive, worst-case logarithmic-time ordered
sequence container on top of a mutable B+-tree.

Items are user-owned: the package never allocates or frees item memory, only
the internal nodes above them. Every item carries a single next-slot that
doubles as "next sibling leaf" and "pointer to parent internal node" — the
tree threads itself through the items it indexes rather than wrapping them in
owned node boxes.

The tree is generic over three type parameters: L, the leaf (item) type; S,
the additive size type used for weighted indexing; and K, an optional
ordering key type enabling sorted search. Size and key extraction are
supplied as operation tables (SizeOps, KeyOps) rather than demanded as
methods of L, since Go generics have no way to let L determine S and K the
way associated types would.
*/
package xlist

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'xlist'.
func tracer() tracing.Trace {
	return tracing.Select("xlist")
}
