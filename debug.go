package xlist

import (
	"fmt"
	"strings"

	tp "github.com/xlab/treeprint"
)

// WriteTree renders the tree's internal-node structure and leaf chains as a
// diagram, for debugging and the xlistctl graph command. Grounded on
// persistent/btree/tree_test.go's ppt/printTree helpers (the teacher's own
// treeprint usage), promoted from test scaffolding into supported API
// surface since a debug graph dump is part of this container's contract.
func (t *Tree[L, S, K]) WriteTree() string {
	if !t.hasRoot {
		return "Tree(empty)\n"
	}
	header := fmt.Sprintf("Tree(size=%v)\n", t.Size())
	p := tp.New()
	t.writeDown(p, t.root)
	return header + p.String()
}

func (t *Tree[L, S, K]) writeDown(p tp.Tree, d down[L, S, K]) {
	if d.isLeaf {
		p.AddNode(t.describeLeafChain(d.leaf))
		return
	}
	for node := d.internal; node != nil; node = node.nextSibling() {
		label := node.String()
		if k, ok := t.keyOf(internalDown[L, S, K](node)); ok {
			label = fmt.Sprintf("%s key=%v", label, k)
		}
		branch := p.AddBranch(label)
		t.writeDown(branch, node.down)
	}
}

// describeLeafChain renders a run of sibling leaves as a single line; a leaf
// has no children of its own, so one treeprint node per leaf would just
// produce a long vertical run with nothing to branch on.
func (t *Tree[L, S, K]) describeLeafChain(first L) string {
	var parts []string
	cur := first
	for {
		parts = append(parts, fmt.Sprintf("%v", cur))
		kind, nxt, _ := t.nextOf(leafDown[L, S, K](cur))
		if kind != kindSibling {
			break
		}
		cur = nxt.leaf
	}
	return strings.Join(parts, ", ")
}
