package suballoc

import (
	"fmt"
	"io"
	"slices"

	"github.com/cockroachdb/errors"
)

// Stats is a point-in-time summary of a SegregatedSlab.
type Stats struct {
	Slabs      int `json:"slabs"`      // total slabs
	Unassigned int `json:"unassigned"` // slabs never bound to a class
	Empty      int `json:"empty"`      // slabs with no live slot, including unassigned ones
	Partial    int `json:"partial"`    // slabs with live and free slots
	Full       int `json:"full"`       // slabs with every slot live

	Classes []ClassStats `json:"classes"` // one entry per configured class, ascending

	Allocations int `json:"allocations"` // live ranges
	Requested   int `json:"requested"`   // sum of live range sizes, in units
	Reserved    int `json:"reserved"`    // sum of the classes backing live ranges, in units
}

// ClassStats describes the slabs currently bound to one class.
type ClassStats struct {
	Class     int `json:"class"`
	Slabs     int `json:"slabs"` // slabs bound to the class, empty ones included
	Slots     int `json:"slots"` // slots across those slabs
	UsedSlots int `json:"used_slots"`
}

// Fragmentation returns the units reserved by live slots but not requested.
func (s Stats) Fragmentation() int {
	return s.Reserved - s.Requested
}

// FragmentationRatio returns Fragmentation as a fraction of Reserved, 0 when nothing is live.
func (s Stats) FragmentationRatio() float64 {
	if s.Reserved == 0 {
		return 0
	}
	return float64(s.Fragmentation()) / float64(s.Reserved)
}

// Stats computes occupancy and fragmentation by walking every slab.
func (s *SegregatedSlab[U]) Stats() Stats {
	st := Stats{
		Slabs:   len(s.slabs),
		Classes: make([]ClassStats, len(s.classes)),
	}
	for c, class := range s.classes {
		st.Classes[c].Class = class
	}

	for i := range s.slabs {
		sl := &s.slabs[i]
		switch sl.occupancy() {
		case occupancyEmpty:
			st.Empty++
		case occupancyPartial:
			st.Partial++
		case occupancyFull:
			st.Full++
		}
		if !sl.assigned() {
			st.Unassigned++
			continue
		}

		c := s.mustClassIndex(i)
		used := sl.usedCount()
		st.Classes[c].Slabs++
		st.Classes[c].Slots += sl.slotCount()
		st.Classes[c].UsedSlots += used

		st.Allocations += used
		st.Reserved += used * sl.class
		for slot, ok := sl.used.NextSet(0); ok; slot, ok = sl.used.NextSet(slot + 1) {
			st.Requested += sl.sizes[slot]
		}
	}
	return st
}

// Validate recomputes the index pools from slab occupancy and checks every
// live slot. It returns a descriptive error for the first inconsistency found.
func (s *SegregatedSlab[U]) Validate() error {
	seen := make([]bool, len(s.slabs))
	for _, i := range s.emptySlabs {
		if i < 0 || i >= len(s.slabs) {
			return errors.Newf("empty pool holds slab %d of %d", i, len(s.slabs))
		}
		if seen[i] {
			return errors.Newf("slab %d listed twice in the index pools", i)
		}
		seen[i] = true
		if occ := s.slabs[i].occupancy(); occ != occupancyEmpty {
			return errors.Newf("slab %d in empty pool is %s", i, occ)
		}
	}

	for c, partial := range s.partialSlabs {
		for _, i := range partial {
			if i < 0 || i >= len(s.slabs) {
				return errors.Newf("class %d partial pool holds slab %d of %d", s.classes[c], i, len(s.slabs))
			}
			if seen[i] {
				return errors.Newf("slab %d listed twice in the index pools", i)
			}
			seen[i] = true
			sl := &s.slabs[i]
			if occ := sl.occupancy(); occ != occupancyPartial {
				return errors.Newf("slab %d in class %d partial pool is %s", i, s.classes[c], occ)
			}
			if sl.class != s.classes[c] {
				return errors.Newf("slab %d bound to class %d sits in class %d partial pool", i, sl.class, s.classes[c])
			}
		}
	}

	for i := range s.slabs {
		sl := &s.slabs[i]
		occ := sl.occupancy()
		if !seen[i] && occ != occupancyFull {
			return errors.Newf("%s slab %d missing from the index pools", occ, i)
		}
		if seen[i] && occ == occupancyFull {
			return errors.Newf("full slab %d listed in an index pool", i)
		}
		if !sl.assigned() {
			continue
		}
		if _, found := slices.BinarySearch(s.classes, sl.class); !found {
			return errors.Newf("slab %d bound to unknown class %d", i, sl.class)
		}
		if sl.slotCount()*sl.class != sl.rng.Size {
			return errors.Newf("slab %d: %d slots of class %d do not tile %s", i, sl.slotCount(), sl.class, sl.rng)
		}
		for slot, ok := sl.used.NextSet(0); ok; slot, ok = sl.used.NextSet(slot + 1) {
			if size := sl.sizes[slot]; size <= 0 || size > sl.class {
				return errors.Newf("slab %d slot %d: size %d outside (0, %d]", i, slot, size, sl.class)
			}
		}
	}
	return nil
}

// Dump writes one line per slab.
func (s *SegregatedSlab[U]) Dump(w io.Writer) error {
	for i := range s.slabs {
		if _, err := fmt.Fprintf(w, "%4d  %s\n", i, &s.slabs[i]); err != nil {
			return err
		}
	}
	return nil
}
