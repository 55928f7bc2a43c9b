package bamprovider

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// RefByName finds a sam.Reference with the given name. It returns nil if a
// reference is not found.
func RefByName(h *sam.Header, refName string) *sam.Reference {
	for _, ref := range h.Refs() {
		if ref.Name() == refName {
			return ref
		}
	}
	return nil
}

type refIterator struct {
	Iterator
	refID        int
	start, limit int
	done         bool
}

func (i *refIterator) Scan() bool {
	for !i.done && i.Iterator.Scan() {
		r := i.Iterator.Record()
		id := r.Ref.ID()
		if id < 0 || id > i.refID || (id == i.refID && r.Pos >= i.limit) {
			// Records are coordinate sorted; nothing further is in range.
			i.done = true
			break
		}
		if id == i.refID && r.Pos >= i.start {
			return true
		}
	}
	return false
}

// NewRefIterator creates an iterator for half-open range [refName:start,
// refName:limit). Start and limit are both base zero.  The iterator will yield
// reads whose start positions are in the given range.  The file must be
// coordinate sorted.
func NewRefIterator(p Provider, refName string, start, limit int) Iterator {
	h, err := p.GetHeader()
	if err != nil {
		return NewErrorIterator(err)
	}
	ref := RefByName(h, refName)
	if ref == nil {
		return NewErrorIterator(fmt.Errorf("bamprovider.NewRefIterator: reference '%s' not found", refName))
	}
	return &refIterator{Iterator: p.NewIterator(), refID: ref.ID(), start: start, limit: limit}
}
