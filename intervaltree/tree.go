package intervaltree

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// nodeID indexes Tree.nodes.  Slot 0 is never handed out, so nilID doubles as
// the null link.
type nodeID int32

const nilID nodeID = 0

type node[V any] struct {
	start, end int
	// maxEnd is the largest end in the subtree rooted here.
	maxEnd int
	// size is the number of nodes in the subtree rooted here.  It is zero for
	// a node that has been unlinked from the tree.
	size                int
	parent, left, right nodeID
	black               bool
	// gen is bumped every time the slot is released.
	gen   uint32
	value V
}

// backwards comparison: compares (start, end) to the node.
func (nd *node[V]) compare(start, end int) int {
	switch {
	case start > nd.start:
		return 1
	case start < nd.start:
		return -1
	case end > nd.end:
		return 1
	case end < nd.end:
		return -1
	}
	return 0
}

// Entry is a snapshot of one key/value pair in a Tree.
type Entry[V any] struct {
	Start, End int
	Value      V
}

// Length returns End - Start.
func (e Entry[V]) Length() int { return e.End - e.Start }

// Relationship bits returned by Entry.Relationship.
const (
	HasLesserPart      = 1
	HasOverlappingPart = 2
	HasGreaterPart     = 4

	IsAdjacentAndEmpty          = 0
	IsStrictlyLess              = HasLesserPart
	IsSubset                    = HasOverlappingPart
	IsLeftOverhangingOverlapper = HasLesserPart | HasOverlappingPart
	IsStrictlyGreater           = HasGreaterPart
	// IsRightOverhangingOverlapper means e starts inside [start, end) and
	// extends past it.
	IsRightOverhangingOverlapper = HasGreaterPart | HasOverlappingPart
	IsSuperset                   = HasLesserPart | HasOverlappingPart | HasGreaterPart
)

// Relationship describes how e lies relative to [start, end): which parts of
// e fall before, inside and after it.
func (e Entry[V]) Relationship(start, end int) int {
	result := 0
	if e.Start < start {
		result = HasLesserPart
	}
	if e.End > end {
		result |= HasGreaterPart
	}
	if e.Start < end && start < e.End {
		result |= HasOverlappingPart
	}
	return result
}

// IsAdjacent reports whether e touches [start, end) end-to-end.
func (e Entry[V]) IsAdjacent(start, end int) bool {
	return e.Start == end || e.End == start
}

// Tree is a map from (start, end) keys to values of type V, with rank and
// overlap queries.  Use New to create one.
type Tree[V any] struct {
	nodes []node[V]
	free  []nodeID
	root  nodeID
	// sentinel is returned by Put and Remove when there was no previous value.
	sentinel V
}

// New creates an empty tree.  Its sentinel is the zero V.
func New[V any]() *Tree[V] {
	return &Tree[V]{nodes: make([]node[V], 1)}
}

// Len returns the number of entries in the tree.
func (t *Tree[V]) Len() int {
	if t.root == nilID {
		return 0
	}
	return t.nodes[t.root].size
}

// Clear removes all entries.  Outstanding iterators see their entries as
// removed.
func (t *Tree[V]) Clear() {
	t.free = t.free[:0]
	var zero V
	for i := len(t.nodes) - 1; i > 0; i-- {
		nd := &t.nodes[i]
		if nd.size != 0 {
			nd.gen++
		}
		nd.size = 0
		nd.parent, nd.left, nd.right = nilID, nilID, nilID
		nd.value = zero
		t.free = append(t.free, nodeID(i))
	}
	t.root = nilID
}

// Sentinel returns the value Put and Remove return when a key was absent.
func (t *Tree[V]) Sentinel() V { return t.sentinel }

// SetSentinel sets the sentinel value, returning the old one.
func (t *Tree[V]) SetSentinel(v V) V {
	old := t.sentinel
	t.sentinel = v
	return old
}

func (t *Tree[V]) entry(id nodeID) Entry[V] {
	nd := &t.nodes[id]
	return Entry[V]{Start: nd.start, End: nd.end, Value: nd.value}
}

func (t *Tree[V]) entryOK(id nodeID) (Entry[V], bool) {
	if id == nilID {
		return Entry[V]{}, false
	}
	return t.entry(id), true
}

func (t *Tree[V]) isBlack(id nodeID) bool {
	return id == nilID || t.nodes[id].black
}

func (t *Tree[V]) alloc(parent nodeID, start, end int, value V) nodeID {
	var id nodeID
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.nodes = append(t.nodes, node[V]{})
		id = nodeID(len(t.nodes) - 1)
	}
	nd := &t.nodes[id]
	*nd = node[V]{
		start:  start,
		end:    end,
		maxEnd: end,
		size:   1,
		parent: parent,
		gen:    nd.gen,
		value:  value,
	}
	return id
}

func (t *Tree[V]) release(id nodeID) {
	nd := &t.nodes[id]
	var zero V
	nd.value = zero
	nd.size = 0
	nd.parent, nd.left, nd.right = nilID, nilID, nilID
	nd.gen++
	t.free = append(t.free, id)
}

// Put associates value with [start, end).  It returns the previous value, or
// the sentinel if the key was absent.  start > end is an errors.Invalid error.
func (t *Tree[V]) Put(start, end int, value V) (V, error) {
	if start > end {
		return t.sentinel, errors.E(errors.Invalid, fmt.Sprintf("intervaltree.Put: start %d exceeds end %d", start, end))
	}
	if t.root == nilID {
		t.root = t.alloc(nilID, start, end, value)
		t.nodes[t.root].black = true
			return t.sentinel, nil
	}
	parent := nilID
	id := t.root
	cmp := 0
	for id != nilID {
		parent = id
		cmp = t.nodes[id].compare(start, end)
		if cmp == 0 {
			break
		}
		if cmp < 0 {
			id = t.nodes[id].left
		} else {
			id = t.nodes[id].right
		}
	}
	if cmp == 0 {
		nd := &t.nodes[parent]
		old := nd.value
		nd.value = value
		return old, nil
	}
	child := t.alloc(parent, start, end, value)
	if cmp < 0 {
		t.nodes[parent].left = child
	} else {
		t.nodes[parent].right = child
	}
	t.insertFixup(child)
	return t.sentinel, nil
}

// Remove deletes [start, end) and returns its value, or the sentinel if the
// key was absent.
func (t *Tree[V]) Remove(start, end int) V {
	id := t.find(start, end)
	if id == nilID {
		return t.sentinel
	}
	v := t.nodes[id].value
	if err := t.remove(id); err != nil {
		panic(err) // find only returns live nodes
	}
	return v
}

func (t *Tree[V]) remove(id nodeID) error {
	if t.nodes[id].size == 0 {
		return errors.E(errors.Precondition, "intervaltree: entry was already removed")
	}
	t.unlink(id)
	t.release(id)
	return nil
}

func (t *Tree[V]) find(start, end int) nodeID {
	id := t.root
	for id != nilID {
		cmp := t.nodes[id].compare(start, end)
		if cmp == 0 {
			break
		}
		if cmp < 0 {
			id = t.nodes[id].left
		} else {
			id = t.nodes[id].right
		}
	}
	return id
}

// Find looks up the entry with exactly the key [start, end).
func (t *Tree[V]) Find(start, end int) (Entry[V], bool) {
	return t.entryOK(t.find(start, end))
}

// FindByIndex returns the idx'th entry (0-based) in key order.
func (t *Tree[V]) FindByIndex(idx int) (Entry[V], bool) {
	return t.entryOK(t.findByRank(idx + 1))
}

// Index returns the 0-based rank of [start, end), or -1 if it is absent.
func (t *Tree[V]) Index(start, end int) int {
	return t.rankOf(start, end) - 1
}

// Min returns the entry with the smallest key.
func (t *Tree[V]) Min() (Entry[V], bool) {
	return t.entryOK(t.min())
}

// Max returns the entry with the largest key.
func (t *Tree[V]) Max() (Entry[V], bool) {
	return t.entryOK(t.max())
}

// MinAtLeast returns the entry with the smallest key >= (start, end).
func (t *Tree[V]) MinAtLeast(start, end int) (Entry[V], bool) {
	return t.entryOK(t.minAtLeast(start, end))
}

// MaxAtMost returns the entry with the largest key <= (start, end).
func (t *Tree[V]) MaxAtMost(start, end int) (Entry[V], bool) {
	return t.entryOK(t.maxAtMost(start, end))
}

// MinOverlapper returns the smallest-keyed entry overlapping [start, end).
func (t *Tree[V]) MinOverlapper(start, end int) (Entry[V], bool) {
	return t.entryOK(t.minOverlapper(start, end))
}

func (t *Tree[V]) min() nodeID {
	result := nilID
	for id := t.root; id != nilID; id = t.nodes[id].left {
		result = id
	}
	return result
}

func (t *Tree[V]) max() nodeID {
	result := nilID
	for id := t.root; id != nilID; id = t.nodes[id].right {
		result = id
	}
	return result
}

func (t *Tree[V]) minAtLeast(start, end int) nodeID {
	result := nilID
	cmp := 0
	for id := t.root; id != nilID; {
		result = id
		cmp = t.nodes[id].compare(start, end)
		if cmp == 0 {
			break
		}
		if cmp < 0 {
			id = t.nodes[id].left
		} else {
			id = t.nodes[id].right
		}
	}
	if cmp > 0 {
		result = t.successor(result)
	}
	return result
}

func (t *Tree[V]) maxAtMost(start, end int) nodeID {
	result := nilID
	cmp := 0
	for id := t.root; id != nilID; {
		result = id
		cmp = t.nodes[id].compare(start, end)
		if cmp == 0 {
			break
		}
		if cmp < 0 {
			id = t.nodes[id].left
		} else {
			id = t.nodes[id].right
		}
	}
	if cmp < 0 {
		result = t.predecessor(result)
	}
	return result
}

func (t *Tree[V]) overlaps(id nodeID, start, end int) bool {
	nd := &t.nodes[id]
	return nd.start < end && start < nd.end
}

func (t *Tree[V]) minOverlapper(start, end int) nodeID {
	result := nilID
	id := t.root
	if id == nilID || t.nodes[id].maxEnd <= start {
		return nilID
	}
	for {
		nd := &t.nodes[id]
		if t.overlaps(id, start, end) {
			// There might be a lesser overlapper down the left subtree.  The
			// right subtree cannot hold a smaller one.
			result = id
			id = nd.left
			if id == nilID || t.nodes[id].maxEnd <= start {
				break
			}
			continue
		}
		if left := nd.left; left != nilID && t.nodes[left].maxEnd > start {
			id = left
			continue
		}
		if nd.start >= end {
			break // everything to the right starts past the query
		}
		id = nd.right
		if id == nilID || t.nodes[id].maxEnd <= start {
			break
		}
	}
	return result
}

// nextOverlapper returns the in-order successor of id that overlaps
// [start, end), skipping subtrees whose maxEnd rules them out.
func (t *Tree[V]) nextOverlapper(id nodeID, start, end int) nodeID {
	for {
		next := t.nodes[id].right
		if next != nilID && t.nodes[next].maxEnd > start {
			id = next
			for {
				next = t.nodes[id].left
				if next == nilID || t.nodes[next].maxEnd <= start {
					break
				}
				id = next
			}
		} else {
			next = id
			for {
				id = t.nodes[next].parent
				if id == nilID || t.nodes[id].right != next {
					break
				}
				next = id
			}
		}
		if id != nilID && t.nodes[id].start >= end {
			id = nilID
		}
		if id == nilID || t.overlaps(id, start, end) {
			return id
		}
	}
}

func (t *Tree[V]) successor(id nodeID) nodeID {
	nd := &t.nodes[id]
	if nd.right != nilID {
		result := nd.right
		for t.nodes[result].left != nilID {
			result = t.nodes[result].left
		}
		return result
	}
	result := nd.parent
	for result != nilID && id == t.nodes[result].right {
		id = result
		result = t.nodes[result].parent
	}
	return result
}

func (t *Tree[V]) predecessor(id nodeID) nodeID {
	nd := &t.nodes[id]
	if nd.left != nilID {
		result := nd.left
		for t.nodes[result].right != nilID {
			result = t.nodes[result].right
		}
		return result
	}
	result := nd.parent
	for result != nilID && id == t.nodes[result].left {
		id = result
		result = t.nodes[result].parent
	}
	return result
}

// localRank is the rank of id within its own subtree.
func (t *Tree[V]) localRank(id nodeID) int {
	if left := t.nodes[id].left; left != nilID {
		return t.nodes[left].size + 1
	}
	return 1
}

func (t *Tree[V]) findByRank(rank int) nodeID {
	id := t.root
	for id != nilID {
		r := t.localRank(id)
		if rank == r {
			break
		}
		if rank < r {
			id = t.nodes[id].left
		} else {
			id = t.nodes[id].right
			rank -= r
		}
	}
	return id
}

// rankOf returns the 1-based rank of the key, or 0 if it is absent.
func (t *Tree[V]) rankOf(start, end int) int {
	rank := 0
	id := t.root
	for id != nilID {
		cmp := t.nodes[id].compare(start, end)
		if cmp < 0 {
			id = t.nodes[id].left
			continue
		}
		rank += t.localRank(id)
		if cmp == 0 {
			return rank
		}
		id = t.nodes[id].right
	}
	return 0
}

func (t *Tree[V]) setMaxEnd(id nodeID) {
	nd := &t.nodes[id]
	nd.maxEnd = nd.end
	if nd.left != nilID && t.nodes[nd.left].maxEnd > nd.maxEnd {
		nd.maxEnd = t.nodes[nd.left].maxEnd
	}
	if nd.right != nilID && t.nodes[nd.right].maxEnd > nd.maxEnd {
		nd.maxEnd = t.nodes[nd.right].maxEnd
	}
}

// fixup recomputes size and maxEnd from id up to the root.
func (t *Tree[V]) fixup(id nodeID) {
	for ; id != nilID; id = t.nodes[id].parent {
		nd := &t.nodes[id]
		nd.size = 1
		if nd.left != nilID {
			nd.size += t.nodes[nd.left].size
		}
		if nd.right != nilID {
			nd.size += t.nodes[nd.right].size
		}
		t.setMaxEnd(id)
	}
}

// replaceChild points parent's link that currently holds old at repl, or
// makes repl the root when parent is nil.
func (t *Tree[V]) replaceChild(parent, old, repl nodeID) {
	switch {
	case parent == nilID:
		t.root = repl
	case t.nodes[parent].left == old:
		t.nodes[parent].left = repl
	default:
		t.nodes[parent].right = repl
	}
}

func (t *Tree[V]) rotateLeft(id nodeID) {
	nd := &t.nodes[id]
	child := nd.right
	c := &t.nodes[child]
	childSize := c.size
	c.size = nd.size
	nd.size -= childSize
	nd.right = c.left
	if nd.right != nilID {
		t.nodes[nd.right].parent = id
		nd.size += t.nodes[nd.right].size
	}
	c.parent = nd.parent
	t.replaceChild(nd.parent, id, child)
	c.left = id
	nd.parent = child
	t.setMaxEnd(id)
	t.setMaxEnd(child)
}

func (t *Tree[V]) rotateRight(id nodeID) {
	nd := &t.nodes[id]
	child := nd.left
	c := &t.nodes[child]
	childSize := c.size
	c.size = nd.size
	nd.size -= childSize
	nd.left = c.right
	if nd.left != nilID {
		t.nodes[nd.left].parent = id
		nd.size += t.nodes[nd.left].size
	}
	c.parent = nd.parent
	t.replaceChild(nd.parent, id, child)
	c.right = id
	nd.parent = child
	t.setMaxEnd(id)
	t.setMaxEnd(child)
}

func (t *Tree[V]) insertFixup(daughter nodeID) {
	mom := t.nodes[daughter].parent
	t.fixup(mom)
	for mom != nilID && !t.nodes[mom].black {
		gramma := t.nodes[mom].parent
		if t.nodes[gramma].left == mom {
			auntie := t.nodes[gramma].right
			if !t.isBlack(auntie) {
				t.nodes[mom].black = true
				t.nodes[auntie].black = true
				t.nodes[gramma].black = false
				daughter = gramma
			} else {
				if daughter == t.nodes[mom].right {
					t.rotateLeft(mom)
					mom = daughter
				}
				t.nodes[mom].black = true
				t.nodes[gramma].black = false
				t.rotateRight(gramma)
				break
			}
		} else {
			auntie := t.nodes[gramma].left
			if !t.isBlack(auntie) {
				t.nodes[mom].black = true
				t.nodes[auntie].black = true
				t.nodes[gramma].black = false
				daughter = gramma
			} else {
				if daughter == t.nodes[mom].left {
					t.rotateRight(mom)
					mom = daughter
				}
				t.nodes[mom].black = true
				t.nodes[gramma].black = false
				t.rotateLeft(gramma)
				break
			}
		}
		mom = t.nodes[daughter].parent
	}
	t.nodes[t.root].black = true
}

// unlink detaches id from the tree and rebalances.  The slot is not released.
func (t *Tree[V]) unlink(id nodeID) {
	nd := &t.nodes[id]
	switch {
	case nd.left == nilID && nd.right == nilID:
		parent := nd.parent
		if parent == nilID {
			t.root = nilID
			break
		}
		t.replaceChild(parent, id, nilID)
		t.fixup(parent)
		if nd.black {
			t.removeFixup(parent, nilID)
		}
	case nd.left == nilID:
		t.spliceOut(id, nd.right)
	case nd.right == nilID:
		t.spliceOut(id, nd.left)
	default:
		// Put the successor in this node's place.
		next := t.successor(id)
		t.unlink(next)
		nd = &t.nodes[id]
		nx := &t.nodes[next]
		nx.parent = nd.parent
		t.replaceChild(nd.parent, id, next)
		nx.left = nd.left
		if nx.left != nilID {
			t.nodes[nx.left].parent = next
		}
		nx.right = nd.right
		if nx.right != nilID {
			t.nodes[nx.right].parent = next
		}
		nx.black = nd.black
		nx.size = nd.size
		t.fixup(next)
	}
	t.nodes[id].size = 0
}

func (t *Tree[V]) spliceOut(id, child nodeID) {
	nd := &t.nodes[id]
	c := &t.nodes[child]
	c.parent = nd.parent
	if nd.parent == nilID {
		t.root = child
		c.black = true
		return
	}
	t.replaceChild(nd.parent, id, child)
	t.fixup(nd.parent)
	if nd.black {
		if c.black {
			t.removeFixup(nd.parent, child)
		} else {
			c.black = true
		}
	}
}

// removeFixup restores the black-height after a black node was removed from
// below parent; x (possibly nil) is the subtree that is one black short.
func (t *Tree[V]) removeFixup(parent, x nodeID) {
	for {
		p := &t.nodes[parent]
		if x == p.left {
			sister := p.right
			if !t.isBlack(sister) {
				t.nodes[sister].black = true
				p.black = false
				t.rotateLeft(parent)
				sister = t.nodes[parent].right
			}
			s := &t.nodes[sister]
			if t.isBlack(s.left) && t.isBlack(s.right) {
				s.black = false
				x = parent
			} else {
				if t.isBlack(s.right) {
					t.nodes[s.left].black = true
					s.black = false
					t.rotateRight(sister)
					sister = t.nodes[parent].right
					s = &t.nodes[sister]
				}
				s.black = t.nodes[parent].black
				t.nodes[parent].black = true
				t.nodes[s.right].black = true
				t.rotateLeft(parent)
				x = t.root
			}
		} else {
			sister := p.left
			if !t.isBlack(sister) {
				t.nodes[sister].black = true
				p.black = false
				t.rotateRight(parent)
				sister = t.nodes[parent].left
			}
			s := &t.nodes[sister]
			if t.isBlack(s.left) && t.isBlack(s.right) {
				s.black = false
				x = parent
			} else {
				if t.isBlack(s.left) {
					t.nodes[s.right].black = true
					s.black = false
					t.rotateLeft(sister)
					sister = t.nodes[parent].left
					s = &t.nodes[sister]
				}
				s.black = t.nodes[parent].black
				t.nodes[parent].black = true
				t.nodes[s.left].black = true
				t.rotateRight(parent)
				x = t.root
			}
		}
		parent = t.nodes[x].parent
		if parent == nilID || !t.nodes[x].black {
			break
		}
	}
	t.nodes[x].black = true
}
