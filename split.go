package xlist

// splitChunk is one contiguous run of children produced by the split
// planner: enough to initialize a fresh internal node, or overwrite an
// existing one, in place.
type splitChunk[L Leaf[L], S any, K any] struct {
	start  down[L, S, K]
	end    down[L, S, K]
	length int
	size   S
}

// splitPlanner partitions a sibling chain of length `total` into consecutive
// chunks whose lengths lie in [minFanout, maxFanout]. Grounded on
// _examples/original_source/src/list/split.rs's `split`/`Split`; minFanout
// itself is derived by options.go's minFanoutFor (truncating division, see
// DESIGN.md).
type splitPlanner[L Leaf[L], S any, K any] struct {
	tree     *Tree[L, S, K]
	node     down[L, S, K]
	hasNode  bool
	chunkLen int
	extra    int
}

// newSplitPlanner plans a split of a chain of `total` children starting at
// `node`. numChunks is (total-1)/minFanout with truncating division, raised
// to ceil(total/maxFanout) where that is larger: for odd fanouts the
// truncating formula alone can yield a single chunk longer than maxFanout
// (4 children at fanout 3).
func (t *Tree[L, S, K]) newSplitPlanner(node down[L, S, K], total int) *splitPlanner[L, S, K] {
	numChunks := 1
	if v := (total - 1) / t.minFanout; v > numChunks {
		numChunks = v
	}
	if v := (total + t.maxFanout - 1) / t.maxFanout; v > numChunks {
		numChunks = v
	}
	p := &splitPlanner[L, S, K]{
		tree:     t,
		node:     node,
		hasNode:  true,
		chunkLen: total / numChunks,
		extra:    total % numChunks,
	}
	tracer().Debugf("split: planning %d chunk(s) of length %d (+%d extra) from %d children",
		numChunks, p.chunkLen, p.extra, total)
	return p
}

// next produces the next chunk, or ok=false once the chain is exhausted.
func (p *splitPlanner[L, S, K]) next() (chunk splitChunk[L, S, K], ok bool) {
	if !p.hasNode {
		return splitChunk[L, S, K]{}, false
	}
	start := p.node
	length := p.chunkLen
	if p.extra > 0 {
		length++
		p.extra--
	}
	node := p.node
	size := p.tree.sizeOf(node)
	for i := 1; i < length; i++ {
		kind, nxt, _ := p.tree.nextOf(node)
		assertThat(kind == kindSibling, "split: sibling chain shorter than the planned chunk")
		node = nxt
		size = p.tree.sizeOps.Add(size, p.tree.sizeOf(node))
	}
	kind, nxt, _ := p.tree.nextOf(node)
	if kind == kindSibling {
		p.node = nxt
		p.hasNode = true
	} else {
		p.hasNode = false
	}
	return splitChunk[L, S, K]{start: start, end: node, length: length, size: size}, true
}

// applyChunkTo writes chunk's span into node (fresh or reused), linking node as
// the new parent of chunk's end.
func (t *Tree[L, S, K]) applyChunkTo(c splitChunk[L, S, K], node *internalNode[L, S, K]) {
	node.length = c.length
	node.size = c.size
	node.setDown(c.start)
	if k, ok := t.keyOf(c.start); ok {
		node.key = k
		node.hasKey = true
	} else {
		var zero K
		node.key = zero
		node.hasKey = false
	}
	t.setNextParentOf(c.end, node)
}

// allocChunk allocates a fresh internal node and applies chunk to it.
func (t *Tree[L, S, K]) allocChunk(c splitChunk[L, S, K]) *internalNode[L, S, K] {
	node := t.allocateNode()
	t.applyChunkTo(c, node)
	return node
}
