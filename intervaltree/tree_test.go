package intervaltree_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/biointerval/intervaltree"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

type span struct{ start, end int }

func less(a, b span) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	return a.end < b.end
}

// randomTree inserts n random spans (start in [0, maxPos), length up to
// maxLen) and returns the tree plus the distinct spans inserted, sorted.
func randomTree(r *rand.Rand, n, maxPos, maxLen int) (*intervaltree.Tree[int], []span) {
	tree := intervaltree.New[int]()
	seen := map[span]bool{}
	for i := 0; i < n; i++ {
		s := r.Intn(maxPos)
		sp := span{s, s + r.Intn(maxLen+1)}
		if _, err := tree.Put(sp.start, sp.end, i); err != nil {
			panic(err)
		}
		seen[sp] = true
	}
	spans := make([]span, 0, len(seen))
	for sp := range seen {
		spans = append(spans, sp)
	}
	sort.Slice(spans, func(i, j int) bool { return less(spans[i], spans[j]) })
	return tree, spans
}

func TestPutFindRemove(t *testing.T) {
	tree := intervaltree.New[string]()
	expect.EQ(t, tree.Len(), 0)
	old, err := tree.Put(10, 20, "a")
	assert.NoError(t, err)
	expect.EQ(t, old, "")
	_, err = tree.Put(5, 8, "b")
	assert.NoError(t, err)
	_, err = tree.Put(10, 15, "c")
	assert.NoError(t, err)
	expect.EQ(t, tree.Len(), 3)

	old, err = tree.Put(10, 20, "A")
	assert.NoError(t, err)
	expect.EQ(t, old, "a")
	expect.EQ(t, tree.Len(), 3)

	e, ok := tree.Find(10, 20)
	expect.True(t, ok)
	expect.EQ(t, e, intervaltree.Entry[string]{Start: 10, End: 20, Value: "A"})
	_, ok = tree.Find(10, 21)
	expect.False(t, ok)

	expect.EQ(t, tree.Remove(5, 8), "b")
	expect.EQ(t, tree.Remove(5, 8), "")
	expect.EQ(t, tree.Len(), 2)
	assert.NoError(t, tree.CheckInvariants())

	tree.Clear()
	expect.EQ(t, tree.Len(), 0)
	_, ok = tree.Min()
	expect.False(t, ok)
}

func TestSentinel(t *testing.T) {
	tree := intervaltree.New[int]()
	expect.EQ(t, tree.SetSentinel(-1), 0)
	expect.EQ(t, tree.Sentinel(), -1)
	old, err := tree.Put(1, 2, 0)
	assert.NoError(t, err)
	expect.EQ(t, old, -1)
	// A stored zero is distinguishable from absence.
	old, err = tree.Put(1, 2, 7)
	assert.NoError(t, err)
	expect.EQ(t, old, 0)
	expect.EQ(t, tree.Remove(3, 4), -1)
}

func TestPutRejectsInvertedRange(t *testing.T) {
	tree := intervaltree.New[int]()
	_, err := tree.Put(5, 4, 1)
	expect.True(t, errors.Is(errors.Invalid, err))
	expect.EQ(t, tree.Len(), 0)
	// Empty ranges are allowed.
	_, err = tree.Put(5, 5, 1)
	assert.NoError(t, err)
}

func TestOrderStatistics(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 50; iter++ {
		tree, spans := randomTree(r, r.Intn(300)+1, 200, 30)
		expect.EQ(t, tree.Len(), len(spans))
		for i, sp := range spans {
			e, ok := tree.FindByIndex(i)
			assert.True(t, ok)
			expect.EQ(t, span{e.Start, e.End}, sp)
			expect.EQ(t, tree.Index(sp.start, sp.end), i)
		}
		_, ok := tree.FindByIndex(len(spans))
		expect.False(t, ok)
		_, ok = tree.FindByIndex(-1)
		expect.False(t, ok)
		expect.EQ(t, tree.Index(-5, -5), -1)

		min, _ := tree.Min()
		max, _ := tree.Max()
		expect.EQ(t, span{min.Start, min.End}, spans[0])
		expect.EQ(t, span{max.Start, max.End}, spans[len(spans)-1])
	}
}

func TestMinAtLeastMaxAtMost(t *testing.T) {
	tree := intervaltree.New[int]()
	for _, sp := range []span{{10, 20}, {10, 30}, {40, 41}} {
		_, err := tree.Put(sp.start, sp.end, 0)
		assert.NoError(t, err)
	}
	e, ok := tree.MinAtLeast(10, 25)
	expect.True(t, ok)
	expect.EQ(t, span{e.Start, e.End}, span{10, 30})
	e, ok = tree.MinAtLeast(10, 20)
	expect.True(t, ok)
	expect.EQ(t, span{e.Start, e.End}, span{10, 20})
	_, ok = tree.MinAtLeast(40, 42)
	expect.False(t, ok)

	e, ok = tree.MaxAtMost(10, 25)
	expect.True(t, ok)
	expect.EQ(t, span{e.Start, e.End}, span{10, 20})
	e, ok = tree.MaxAtMost(100, 0)
	expect.True(t, ok)
	expect.EQ(t, span{e.Start, e.End}, span{40, 41})
	_, ok = tree.MaxAtMost(9, 100)
	expect.False(t, ok)
}

func bruteForceOverlaps(spans []span, q span) []span {
	var result []span
	for _, sp := range spans {
		if sp.start < q.end && q.start < sp.end {
			result = append(result, sp)
		}
	}
	return result
}

func collectOverlaps(tree *intervaltree.Tree[int], q span) []span {
	var result []span
	it := tree.Overlappers(q.start, q.end)
	for it.Next() {
		result = append(result, span{it.Entry().Start, it.Entry().End})
	}
	if it.Err() != nil {
		panic(it.Err())
	}
	return result
}

func TestOverlappersMatchBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for iter := 0; iter < 40; iter++ {
		tree, spans := randomTree(r, r.Intn(400), 1000, 50)
		// Remove a random subset to exercise deletion paths too.
		var kept []span
		for _, sp := range spans {
			if r.Intn(3) == 0 {
				tree.Remove(sp.start, sp.end)
			} else {
				kept = append(kept, sp)
			}
		}
		for q := 0; q < 100; q++ {
			s := r.Intn(1100) - 50
			query := span{s, s + r.Intn(80)}
			want := bruteForceOverlaps(kept, query)
			got := collectOverlaps(tree, query)
			expect.EQ(t, len(got), len(want), "query %v", query)
			for i := range want {
				expect.EQ(t, got[i], want[i])
			}
			e, ok := tree.MinOverlapper(query.start, query.end)
			expect.EQ(t, ok, len(want) > 0)
			if ok {
				expect.EQ(t, span{e.Start, e.End}, want[0])
			}
		}
	}
}

func TestBalanceInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	tree := intervaltree.New[int]()
	live := map[span]bool{}
	for op := 0; op < 20000; op++ {
		s := r.Intn(5000)
		sp := span{s, s + r.Intn(100)}
		if r.Intn(3) == 0 && len(live) > 0 {
			// Remove something that is present.
			for k := range live {
				sp = k
				break
			}
			tree.Remove(sp.start, sp.end)
			delete(live, sp)
		} else {
			_, err := tree.Put(sp.start, sp.end, op)
			assert.NoError(t, err)
			live[sp] = true
		}
		if op%1000 == 0 {
			assert.NoError(t, tree.CheckInvariants())
		}
	}
	assert.NoError(t, tree.CheckMaxEnds())
	assert.NoError(t, tree.CheckInvariants())
	n := tree.Len()
	expect.EQ(t, n, len(live))
	expect.LE(t, float64(tree.Height()), 2*math.Log2(float64(n+1)))

	// Drain completely.
	for sp := range live {
		tree.Remove(sp.start, sp.end)
	}
	expect.EQ(t, tree.Len(), 0)
	assert.NoError(t, tree.CheckInvariants())
}

func TestIterators(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	tree, spans := randomTree(r, 200, 500, 20)

	var fwd []span
	for it := tree.Iterator(); it.Next(); {
		fwd = append(fwd, span{it.Entry().Start, it.Entry().End})
	}
	expect.EQ(t, fwd, spans)

	var rev []span
	for it := tree.ReverseIterator(); it.Next(); {
		rev = append(rev, span{it.Entry().Start, it.Entry().End})
	}
	expect.EQ(t, len(rev), len(spans))
	for i := range rev {
		expect.EQ(t, rev[i], spans[len(spans)-1-i])
	}

	mid := spans[len(spans)/2]
	it := tree.IteratorFrom(mid.start, mid.end)
	assert.True(t, it.Next())
	expect.EQ(t, span{it.Entry().Start, it.Entry().End}, mid)
	rit := tree.ReverseIteratorFrom(mid.start, mid.end)
	assert.True(t, rit.Next())
	expect.EQ(t, span{rit.Entry().Start, rit.Entry().End}, mid)

	n := 0
	for vi := tree.Values(); vi.Next(); {
		n++
	}
	expect.EQ(t, n, len(spans))
}

func TestIteratorRemove(t *testing.T) {
	tree := intervaltree.New[int]()
	for i := 0; i < 100; i++ {
		_, err := tree.Put(i, i+5, i)
		assert.NoError(t, err)
	}
	it := tree.Iterator()
	assert.True(t, errors.Is(errors.Invalid, it.Remove()))
	i := 0
	for it.Next() {
		if i%2 == 0 {
			assert.NoError(t, it.Remove())
			err := it.Remove()
			expect.True(t, errors.Is(errors.Precondition, err))
		}
		i++
	}
	expect.EQ(t, i, 100)
	expect.EQ(t, tree.Len(), 50)
	assert.NoError(t, tree.CheckInvariants())
	for vi := tree.Values(); vi.Next(); {
		expect.EQ(t, vi.Value()%2, 1)
	}
}

func TestForwardIteratorSurvivesRemovalOfNext(t *testing.T) {
	tree := intervaltree.New[int]()
	for i := 0; i < 10; i++ {
		_, err := tree.Put(i*10, i*10+1, i)
		assert.NoError(t, err)
	}
	it := tree.Iterator()
	assert.True(t, it.Next())
	expect.EQ(t, it.Entry().Value, 0)
	// Remove the upcoming entry behind the iterator's back.
	tree.Remove(10, 11)
	assert.True(t, it.Next())
	expect.EQ(t, it.Entry().Value, 2)
}

func TestOverlapIteratorFailsWhenNextRemoved(t *testing.T) {
	tree := intervaltree.New[int]()
	for i := 0; i < 10; i++ {
		_, err := tree.Put(i, i+100, i)
		assert.NoError(t, err)
	}
	it := tree.Overlappers(50, 51)
	assert.True(t, it.Next())
	tree.Remove(1, 101)
	expect.False(t, it.Next())
	expect.True(t, errors.Is(errors.Precondition, it.Err()))
}

func TestRelationship(t *testing.T) {
	e := intervaltree.Entry[int]{Start: 10, End: 20}
	expect.EQ(t, e.Relationship(10, 20), intervaltree.IsSubset)
	expect.EQ(t, e.Relationship(0, 5), intervaltree.IsStrictlyGreater)
	expect.EQ(t, e.Relationship(25, 30), intervaltree.IsStrictlyLess)
	expect.EQ(t, e.Relationship(15, 30), intervaltree.IsLeftOverhangingOverlapper)
	expect.EQ(t, e.Relationship(5, 15), intervaltree.IsRightOverhangingOverlapper)
	expect.EQ(t, e.Relationship(12, 14), intervaltree.IsSuperset)
	expect.True(t, e.IsAdjacent(20, 30))
	expect.True(t, e.IsAdjacent(0, 10))
	expect.False(t, e.IsAdjacent(0, 11))
	expect.EQ(t, e.Length(), 10)
}
