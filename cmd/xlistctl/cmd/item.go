package cmd

import "github.com/npillmayer/xlist"

// stringItem is the Leaf[*stringItem] xlistctl builds its demonstration
// trees out of: a single string key plus the next-slot every item stored in
// an xlist.Tree must carry.
type stringItem struct {
	key  string
	next xlist.Next[*stringItem]
}

func (i *stringItem) Next() xlist.Next[*stringItem]        { return i.next }
func (i *stringItem) SetNext(next xlist.Next[*stringItem]) { i.next = next }
func (i *stringItem) Clone() *stringItem                   { return i }
func (i *stringItem) String() string                       { return i.key }
