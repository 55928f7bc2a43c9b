package interval_test

import (
	"math/rand"
	"testing"

	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/testutil/expect"
)

func TestUnionQueries(t *testing.T) {
	h := newHeader(t, seqLen{"chr1", 100}, seqLen{"chr2", 100}, seqLen{"chr3", 100})
	l := newList(t, h,
		iv("chr1", 6, 15, ""),
		iv("chr1", 8, 17, ""),
		iv("chr1", 21, 25, ""),
		iv("chr3", 50, 50, ""))
	u := interval.NewUnion(l)
	expect.EQ(t, u.Endpoints(0), []interval.PosType{5, 17, 20, 25})
	expect.EQ(t, len(u.Endpoints(1)), 0)
	expect.EQ(t, len(u.Endpoints(7)), 0)

	var covered []interval.PosType
	for pos := interval.PosType(0); pos < 30; pos++ {
		if u.ContainsByID(0, pos) {
			covered = append(covered, pos)
		}
	}
	expect.EQ(t, covered, []interval.PosType{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 20, 21, 22, 23, 24})
	// Out of order and by-name queries.
	expect.True(t, u.ContainsByName("chr1", 24))
	expect.False(t, u.ContainsByName("chr1", 4))
	expect.True(t, u.ContainsByName("chr1", 5))
	expect.False(t, u.ContainsByName("chr2", 5))
	expect.True(t, u.ContainsByName("chr3", 49))
	expect.True(t, u.ContainsByID(2, 49))
	expect.False(t, u.ContainsByID(2, 50))
	expect.True(t, u.ContainsByID(0, 10))

	next, ok := u.NextByID(0, 0)
	expect.True(t, ok)
	expect.EQ(t, next, interval.PosType(5))
	next, ok = u.NextByID(0, 12)
	expect.True(t, ok)
	expect.EQ(t, next, interval.PosType(12))
	next, ok = u.NextByID(0, 17)
	expect.True(t, ok)
	expect.EQ(t, next, interval.PosType(20))
	_, ok = u.NextByID(0, 25)
	expect.False(t, ok)
	_, ok = u.NextByID(1, 0)
	expect.False(t, ok)

	expect.True(t, u.Intersects(0, 0, 0, 6))
	expect.False(t, u.Intersects(0, 0, 0, 5))
	expect.False(t, u.Intersects(0, 17, 0, 20))
	expect.True(t, u.Intersects(0, 17, 0, 21))
	expect.False(t, u.Intersects(0, 25, 2, 49))
	expect.True(t, u.Intersects(0, 25, 2, 50))
	expect.True(t, u.Intersects(0, 24, 1, 0))
}

func TestUnionMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 20; trial++ {
		l := randomList(t, r, r.Intn(25))
		cov := coverage(l)
		u := interval.NewUnion(l)
		clone := u.Clone()
		for id, ref := range l.Header().Refs() {
			for pos := 0; pos < ref.Len(); pos++ {
				want := cov[ref.Name()][pos+1]
				expect.EQ(t, u.ContainsByID(id, interval.PosType(pos)), want)
				expect.EQ(t, clone.ContainsByName(ref.Name(), interval.PosType(pos)), want)
			}
			// Random-order queries.
			for i := 0; i < 100; i++ {
				pos := r.Intn(ref.Len())
				expect.EQ(t, u.ContainsByID(id, interval.PosType(pos)), cov[ref.Name()][pos+1])
				next, ok := u.NextByID(id, interval.PosType(pos))
				wantNext := -1
				for p := pos; p < ref.Len(); p++ {
					if cov[ref.Name()][p+1] {
						wantNext = p
						break
					}
				}
				expect.EQ(t, ok, wantNext >= 0)
				if ok {
					expect.EQ(t, int(next), wantNext)
				}
			}
		}
	}
}
