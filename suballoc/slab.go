package suballoc

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/joshuapare/slabkit/mem"
)

// occupancy is derived from a slab's slot table.
type occupancy uint8

const (
	occupancyEmpty   occupancy = iota // no slot used, or slab unassigned
	occupancyPartial                  // some slots used, some free
	occupancyFull                     // every slot used
)

func (o occupancy) String() string {
	switch o {
	case occupancyEmpty:
		return "empty"
	case occupancyPartial:
		return "partial"
	case occupancyFull:
		return "full"
	default:
		return fmt.Sprintf("occupancy(%d)", uint8(o))
	}
}

// slab is one equal-size partition of the region.
//
// An unassigned slab has class 0 and no slot table. An assigned slab holds
// rng.Size/class slots; slot i covers [rng.Offset+i*class, +class).
type slab[U any] struct {
	rng   mem.RangeOf[U] // immutable
	class int            // 0 <=> unassigned

	used  *bitset.BitSet // bit i set <=> slot i allocated
	sizes []int          // allocated size of slot i, valid while bit i is set
}

func newSlab[U any](rng mem.RangeOf[U]) slab[U] {
	return slab[U]{rng: rng}
}

// assign binds the slab to class, discarding any previous slot table.
func (s *slab[U]) assign(class int) {
	slots := s.rng.Size / class
	s.class = class
	s.used = bitset.New(uint(slots))
	s.sizes = make([]int, slots)
}

func (s *slab[U]) assigned() bool {
	return s.class != 0
}

func (s *slab[U]) slotCount() int {
	return len(s.sizes)
}

func (s *slab[U]) usedCount() int {
	if s.used == nil {
		return 0
	}
	return int(s.used.Count())
}

func (s *slab[U]) occupancy() occupancy {
	used := s.usedCount()
	switch {
	case used == 0:
		return occupancyEmpty
	case used == s.slotCount():
		return occupancyFull
	default:
		return occupancyPartial
	}
}

// slotRange returns the full range of slot i.
func (s *slab[U]) slotRange(i int) mem.RangeOf[U] {
	return mem.NewRange[U](s.rng.Offset+i*s.class, s.class)
}

// slotAt returns the slot starting exactly at offset.
func (s *slab[U]) slotAt(offset int) (int, bool) {
	if !s.assigned() {
		return 0, false
	}
	inner := offset - s.rng.Offset
	if inner < 0 || inner >= s.rng.Size || inner%s.class != 0 {
		return 0, false
	}
	return inner / s.class, true
}

// isAllocated reports whether r is a live slot with exactly r.Size recorded.
func (s *slab[U]) isAllocated(r mem.RangeOf[U]) bool {
	i, ok := s.slotAt(r.Offset)
	if !ok {
		return false
	}
	return s.used.Test(uint(i)) && s.sizes[i] == r.Size
}

// allocate takes the first free slot. The slab must be assigned, not full,
// and size must not exceed its class.
func (s *slab[U]) allocate(size int) mem.RangeOf[U] {
	free, ok := s.used.NextClear(0)
	if !ok {
		panic(fmt.Sprintf("suballoc: allocate on full %s", s))
	}
	s.used.Set(free)
	s.sizes[free] = size
	return mem.NewRange[U](s.slotRange(int(free)).Offset, size)
}

// deallocate frees the slot holding r. r must be allocated in this slab.
func (s *slab[U]) deallocate(r mem.RangeOf[U]) {
	i, _ := s.slotAt(r.Offset)
	s.used.Clear(uint(i))
	s.sizes[i] = 0
}

// resize overwrites the recorded size of the slot holding r.
// r must be allocated in this slab and size must not exceed its class.
func (s *slab[U]) resize(r mem.RangeOf[U], size int) mem.RangeOf[U] {
	i, _ := s.slotAt(r.Offset)
	s.sizes[i] = size
	return mem.NewRange[U](r.Offset, size)
}

// allocations appends the live ranges of the slab to dst.
func (s *slab[U]) allocations(dst []mem.RangeOf[U]) []mem.RangeOf[U] {
	if s.used == nil {
		return dst
	}
	for i, ok := s.used.NextSet(0); ok; i, ok = s.used.NextSet(i + 1) {
		dst = append(dst, mem.NewRange[U](s.slotRange(int(i)).Offset, s.sizes[i]))
	}
	return dst
}

func (s *slab[U]) String() string {
	if !s.assigned() {
		return fmt.Sprintf("free slab %s", s.rng)
	}
	return fmt.Sprintf("slab %s class %d, free slots %d/%d",
		s.rng, s.class, s.slotCount()-s.usedCount(), s.slotCount())
}
