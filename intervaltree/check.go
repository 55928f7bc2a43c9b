package intervaltree

import (
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
)

// CheckMaxEnds verifies that every node's cached maxEnd matches its subtree.
// A mismatch is an errors.Integrity error.
func (t *Tree[V]) CheckMaxEnds() error {
	var walk func(id nodeID) error
	walk = func(id nodeID) error {
		if id == nilID {
			return nil
		}
		nd := &t.nodes[id]
		want := nd.end
		if nd.left != nilID && t.nodes[nd.left].maxEnd > want {
			want = t.nodes[nd.left].maxEnd
		}
		if nd.right != nilID && t.nodes[nd.right].maxEnd > want {
			want = t.nodes[nd.right].maxEnd
		}
		if nd.maxEnd != want {
			return errors.E(errors.Integrity,
				fmt.Sprintf("intervaltree: max end mismatch %d vs %d at [%d,%d)", nd.maxEnd, want, nd.start, nd.end))
		}
		if err := walk(nd.left); err != nil {
			return err
		}
		return walk(nd.right)
	}
	return walk(t.root)
}

// CheckInvariants verifies key order, parent links, subtree sizes, maxEnd and
// the red-black rules (black root, no red node with a red child, equal black
// height along every path).  Violations are errors.Integrity errors.
func (t *Tree[V]) CheckInvariants() error {
	if t.root == nilID {
		return nil
	}
	if !t.nodes[t.root].black {
		return errors.E(errors.Integrity, "intervaltree: red root")
	}
	if t.nodes[t.root].parent != nilID {
		return errors.E(errors.Integrity, "intervaltree: root has a parent")
	}
	var walk func(id nodeID) (blackHeight int, err error)
	walk = func(id nodeID) (int, error) {
		if id == nilID {
			return 1, nil
		}
		nd := &t.nodes[id]
		fail := func(format string, args ...interface{}) (int, error) {
			msg := fmt.Sprintf(format, args...)
			return 0, errors.E(errors.Integrity, fmt.Sprintf("intervaltree: [%d,%d): %s", nd.start, nd.end, msg))
		}
		size := 1
		for _, child := range []nodeID{nd.left, nd.right} {
			if child == nilID {
				continue
			}
			c := &t.nodes[child]
			if c.parent != id {
				return fail("broken parent link")
			}
			if !nd.black && !c.black {
				return fail("red node has a red child")
			}
			size += c.size
		}
		if nd.left != nilID && t.nodes[nd.left].compare(nd.start, nd.end) <= 0 {
			return fail("left child does not sort before its parent")
		}
		if nd.right != nilID && t.nodes[nd.right].compare(nd.start, nd.end) >= 0 {
			return fail("right child does not sort after its parent")
		}
		if size != nd.size {
			return fail("size %d, want %d", nd.size, size)
		}
		lh, err := walk(nd.left)
		if err != nil {
			return 0, err
		}
		rh, err := walk(nd.right)
		if err != nil {
			return 0, err
		}
		if lh != rh {
			return fail("black height %d on the left, %d on the right", lh, rh)
		}
		if nd.black {
			lh++
		}
		return lh, nil
	}
	if _, err := walk(t.root); err != nil {
		return err
	}
	return t.CheckMaxEnds()
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree[V]) Height() int {
	var height func(id nodeID) int
	height = func(id nodeID) int {
		if id == nilID {
			return 0
		}
		l, r := height(t.nodes[id].left), height(t.nodes[id].right)
		if r > l {
			l = r
		}
		return l + 1
	}
	return height(t.root)
}

// Dump writes an indented picture of the tree to w, one node per line.
func (t *Tree[V]) Dump(w io.Writer) error {
	var dump func(id nodeID, depth int, tag string) error
	dump = func(id nodeID, depth int, tag string) error {
		if id == nilID {
			return nil
		}
		nd := &t.nodes[id]
		color := "red"
		if nd.black {
			color = "black"
		}
		if _, err := fmt.Fprintf(w, "%s%s [%d,%d) %v size=%d maxEnd=%d %s\n",
			strings.Repeat("  ", depth), tag, nd.start, nd.end, nd.value, nd.size, nd.maxEnd, color); err != nil {
			return err
		}
		if err := dump(nd.left, depth+1, "left:"); err != nil {
			return err
		}
		return dump(nd.right, depth+1, "right:")
	}
	return dump(t.root, 0, "root:")
}
