package interval

import (
	"github.com/grailbio/base/log"
)

// Union is a read-only position index over the merged intervals of a List.
// Positions are 0-based.  Sequences are looked up by name, or by index in
// the list's sequence dictionary (which is the sam.Reference ID of records
// sharing that header).
//
// A Union caches the position of the last query, so ascending queries on one
// sequence are cheap.  Because of that cache, a Union must not be shared
// between goroutines; use Clone.
type Union struct {
	// nameMap is a sequence-keyed map with endpoint-array values.  Sequences
	// without intervals are absent.
	nameMap map[string][]PosType
	// idMap holds the same endpoint arrays, indexed by dictionary position.
	idMap [][]PosType

	// lastChrIntervals points to the endpoints of the most recently queried
	// sequence.
	lastChrIntervals []PosType
	// lastChrName is the name of the last queried-by-name sequence.  If it's
	// nonempty, it must be in sync with lastChrIntervals.
	lastChrName string
	// lastChrID is the ID of the last queried-by-ID sequence.  If it's
	// nonnegative, it must be in sync with lastChrIntervals.
	lastChrID int
	// lastPosPlus1 is 1 plus the last spot-queried position.
	lastPosPlus1 PosType
	// lastIdx is SearchPosTypes(lastChrIntervals, lastPosPlus1).
	lastIdx EndpointIndex
	// isSequential is true if all queries since the last sequence change have
	// been in order of nondecreasing position.
	isSequential bool
}

// NewUnion builds the index for l.  Overlapping and abutting intervals are
// merged; intervals on sequences missing from l's dictionary are ignored.
func NewUnion(l *List) *Union {
	u := &Union{
		nameMap:   map[string][]PosType{},
		lastChrID: -1,
	}
	refs := l.header.Refs()
	ids := sequenceIndex(l.header)
	u.idMap = make([][]PosType, len(refs))
	var totBases int64
	for _, iv := range l.UniqueIntervals(FirstName) {
		id, ok := ids[iv.seq]
		if !ok {
			continue
		}
		if iv.end >= PosTypeMax {
			log.Panicf("interval.NewUnion: %v does not fit in a PosType", iv)
		}
		endpoints := append(u.nameMap[iv.seq], PosType(iv.start-1), PosType(iv.end))
		u.nameMap[iv.seq] = endpoints
		u.idMap[id] = endpoints
		totBases += int64(iv.Length())
	}
	log.Debug.Printf("interval.NewUnion: %d base(s) covered", totBases)
	return u
}

// Clone returns a new Union which shares the interval set, but has its own
// search state.
func (u *Union) Clone() *Union {
	return &Union{
		nameMap:   u.nameMap,
		idMap:     u.idMap,
		lastChrID: -1,
	}
}

// Endpoints returns the sorted endpoints of the merged intervals on the
// sequence with dictionary index refID, or nil if there are none.  The
// caller must not modify the result.
func (u *Union) Endpoints(refID int) []PosType {
	if refID < 0 || refID >= len(u.idMap) {
		return nil
	}
	return u.idMap[refID]
}

// contains answers a point query against u.lastChrIntervals, which the
// caller has made current.
func (u *Union) contains(pos PosType, changed bool) bool {
	posPlus1 := pos + 1
	if changed {
		if u.lastChrIntervals == nil {
			return false
		}
		u.lastIdx = SearchPosTypes(u.lastChrIntervals, posPlus1)
		u.lastPosPlus1 = posPlus1
		u.isSequential = true
		return u.lastIdx.Contained()
	}
	if u.lastChrIntervals == nil {
		return false
	}
	if u.isSequential {
		if posPlus1 >= u.lastPosPlus1 {
			u.lastIdx.Update(pos, u.lastChrIntervals)
			u.lastPosPlus1 = posPlus1
			return u.lastIdx.Contained()
		}
		u.isSequential = false
	}
	return SearchPosTypes(u.lastChrIntervals, posPlus1).Contained()
}

// ContainsByID checks whether the 0-based position pos is covered, where the
// sequence is specified by dictionary index.
func (u *Union) ContainsByID(refID int, pos PosType) bool {
	changed := refID != u.lastChrID
	if changed {
		u.lastChrID = refID
		u.lastChrName = ""
		u.lastChrIntervals = u.Endpoints(refID)
	}
	return u.contains(pos, changed)
}

// ContainsByName checks whether the 0-based position pos is covered, where
// the sequence is specified by name.
func (u *Union) ContainsByName(name string, pos PosType) bool {
	changed := name != u.lastChrName || name == ""
	if changed {
		u.lastChrName = name
		u.lastChrID = -1
		u.lastChrIntervals = u.nameMap[name]
	}
	return u.contains(pos, changed)
}

// NextByID returns the smallest covered 0-based position >= pos on the
// sequence with dictionary index refID.  ok is false if there is none.
func (u *Union) NextByID(refID int, pos PosType) (next PosType, ok bool) {
	endpoints := u.Endpoints(refID)
	ei := NewEndpointIndex(pos, endpoints)
	if ei.Contained() {
		return pos, true
	}
	if ei.Finished(endpoints) {
		return 0, false
	}
	return endpoints[ei], true
}

// Intersects checks whether the region running from startRefID:startPos
// (inclusive) to limitRefID:limitPos (exclusive), possibly spanning several
// sequences, touches a covered position.  It panics if limitRefID:limitPos
// isn't after startRefID:startPos.
func (u *Union) Intersects(startRefID int, startPos PosType, limitRefID int, limitPos PosType) bool {
	if startRefID > limitRefID {
		log.Panicf("interval.Union.Intersects: startRefID %d > limitRefID %d", startRefID, limitRefID)
	}
	if startChrIntervals := u.Endpoints(startRefID); startChrIntervals != nil {
		idxStart := SearchPosTypes(startChrIntervals, startPos+1)
		if startRefID < limitRefID {
			if !idxStart.Finished(startChrIntervals) {
				return true
			}
		} else {
			if limitPos <= startPos {
				log.Panicf("interval.Union.Intersects: empty region %d:%d-%d", startRefID, startPos, limitPos)
			}
			if idxStart.Contained() {
				return true
			}
			return !idxStart.Finished(startChrIntervals) && limitPos > startChrIntervals[idxStart]
		}
	}
	if startRefID == limitRefID {
		return false
	}
	for refID := startRefID + 1; refID < limitRefID; refID++ {
		if u.Endpoints(refID) != nil {
			return true
		}
	}
	if limitChrIntervals := u.Endpoints(limitRefID); limitChrIntervals != nil {
		return limitChrIntervals[0] < limitPos
	}
	return false
}
