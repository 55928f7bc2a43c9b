package intervaltree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestCheckDetectsCorruption(t *testing.T) {
	tree := New[int]()
	for i := 0; i < 20; i++ {
		_, err := tree.Put(i, i+3, i)
		assert.NoError(t, err)
	}
	assert.NoError(t, tree.CheckInvariants())

	leaf := tree.max()
	tree.nodes[leaf].maxEnd++
	expect.True(t, errors.Is(errors.Integrity, tree.CheckMaxEnds()))
	tree.nodes[leaf].maxEnd--
	assert.NoError(t, tree.CheckMaxEnds())

	tree.nodes[tree.root].black = false
	expect.True(t, errors.Is(errors.Integrity, tree.CheckInvariants()))
	tree.nodes[tree.root].black = true

	tree.nodes[tree.root].size++
	expect.True(t, errors.Is(errors.Integrity, tree.CheckInvariants()))
	tree.nodes[tree.root].size--
	assert.NoError(t, tree.CheckInvariants())
}

func TestRemoveTwiceFails(t *testing.T) {
	tree := New[int]()
	for i := 0; i < 5; i++ {
		_, err := tree.Put(i, i+1, i)
		assert.NoError(t, err)
	}
	id := tree.find(2, 3)
	assert.NoError(t, tree.remove(id))
	expect.True(t, errors.Is(errors.Precondition, tree.remove(id)))
	expect.EQ(t, tree.Len(), 4)
}

func TestSlotsAreRecycled(t *testing.T) {
	tree := New[int]()
	for i := 0; i < 10; i++ {
		_, err := tree.Put(i, i+1, i)
		assert.NoError(t, err)
	}
	for i := 0; i < 10; i++ {
		tree.Remove(i, i+1)
	}
	n := len(tree.nodes)
	for i := 0; i < 10; i++ {
		_, err := tree.Put(i, i+1, i)
		assert.NoError(t, err)
	}
	expect.EQ(t, len(tree.nodes), n)
	assert.NoError(t, tree.CheckInvariants())
}

func TestDump(t *testing.T) {
	tree := New[string]()
	_, err := tree.Put(1, 4, "x")
	assert.NoError(t, err)
	_, err = tree.Put(0, 2, "y")
	assert.NoError(t, err)
	var buf bytes.Buffer
	assert.NoError(t, tree.Dump(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	expect.EQ(t, len(lines), 2)
	expect.EQ(t, lines[0], "root: [1,4) x size=2 maxEnd=4 black")
	expect.EQ(t, lines[1], "  left: [0,2) y size=1 maxEnd=2 red")
}
