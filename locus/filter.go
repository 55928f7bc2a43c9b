package locus

import (
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/hts/sam"
)

// RecordFilter reports whether a record should be dropped before it reaches
// the walker.
type RecordFilter func(r *sam.Record) bool

// NotPrimaryAlignment drops secondary alignments.
func NotPrimaryAlignment(r *sam.Record) bool { return r.Flags&sam.Secondary != 0 }

// DuplicateRead drops reads flagged as duplicates.
func DuplicateRead(r *sam.Record) bool { return r.Flags&sam.Duplicate != 0 }

// DefaultFilters is the filter set used by DefaultOpts.
var DefaultFilters = []RecordFilter{NotPrimaryAlignment, DuplicateRead}

// IntervalFilter drops mapped reads whose aligned span touches none of the
// positions covered by u.  Unmapped reads pass.  The returned filter shares
// u's search state.
func IntervalFilter(u *interval.Union) RecordFilter {
	return func(r *sam.Record) bool {
		refID := r.Ref.ID()
		if refID < 0 || r.Flags&sam.Unmapped != 0 {
			return false
		}
		end := r.End()
		if end <= r.Pos {
			end = r.Pos + 1
		}
		return !u.Intersects(refID, interval.PosType(r.Pos), refID, interval.PosType(end))
	}
}
