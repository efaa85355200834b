package suballoc

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/mem"
)

// SegregatedSlab suballocates variable-size ranges using the segregated slab algorithm.
//
// The region is cut into equal slabs. A slab is bound to one class on first use
// and cut into equal slots of that class. Requests are rounded up to the smallest
// class that holds them and served from a partially used slab of that class, or
// else from an empty slab.
//
// Invariants (after every public call):
//   - slab index in emptySlabs <=> slab occupancy is empty
//   - slab index in partialSlabs[c] <=> slab occupancy is partial and slab class is classes[c]
//   - every live range starts at a slot of its slab and its size is at most the slab class
//
// SegregatedSlab is not safe for concurrent use.
type SegregatedSlab[U any] struct {
	region mem.RangeOf[U] // immutable

	slabSize int   // immutable
	classes  []int // immutable, ascending

	slabs []slab[U]

	// LIFO index pools
	emptySlabs   []int
	partialSlabs [][]int // parallel to classes
}

// NewSegregatedSlab builds an allocator over cfg.Region() with every slab empty.
func NewSegregatedSlab[U any](cfg SegregatedSlabConfig[U]) (*SegregatedSlab[U], error) {
	if cfg.slabSize <= 0 || len(cfg.classes) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "configuration was not built by Pot or NewSegregatedSlabConfig")
	}

	count := cfg.SlabCount()
	slabs := make([]slab[U], count)
	for i := 0; i < count; i++ {
		rng, err := cfg.region.Subrange(i*cfg.slabSize, cfg.slabSize)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "slab %d: %v", i, err)
		}
		slabs[i] = newSlab(rng)
	}

	// Reverse order so slab 0 is handed out first.
	emptySlabs := make([]int, count)
	for i := 0; i < count; i++ {
		emptySlabs[i] = count - 1 - i
	}

	return &SegregatedSlab[U]{
		region:       cfg.region,
		slabSize:     cfg.slabSize,
		classes:      slices.Clone(cfg.classes),
		slabs:        slabs,
		emptySlabs:   emptySlabs,
		partialSlabs: make([][]int, len(cfg.classes)),
	}, nil
}

// Region returns the managed region.
func (s *SegregatedSlab[U]) Region() mem.RangeOf[U] { return s.region }

// SlabSize returns the number of units per slab.
func (s *SegregatedSlab[U]) SlabSize() int { return s.slabSize }

// SlabCount returns the number of slabs.
func (s *SegregatedSlab[U]) SlabCount() int { return len(s.slabs) }

// Classes returns a copy of the ascending class list.
func (s *SegregatedSlab[U]) Classes() []int { return slices.Clone(s.classes) }

// ClassOf returns the smallest class that holds size.
//
// Fails with ErrInvalidSize for size <= 0 and ErrSizeTooBig when size
// exceeds the largest class.
func (s *SegregatedSlab[U]) ClassOf(size int) (int, error) {
	c, err := s.classIndex(size)
	if err != nil {
		return 0, err
	}
	return s.classes[c], nil
}

func (s *SegregatedSlab[U]) classIndex(size int) (int, error) {
	if size <= 0 {
		return 0, errors.Wrapf(ErrInvalidSize, "size %d", size)
	}
	c, _ := slices.BinarySearch(s.classes, size)
	if c == len(s.classes) {
		return 0, errors.Wrapf(ErrSizeTooBig, "size %d > class %d", size, s.classes[len(s.classes)-1])
	}
	return c, nil
}

// slabIndexOf resolves the slab r starts in. r must lie inside the region.
func (s *SegregatedSlab[U]) slabIndexOf(r mem.RangeOf[U]) (int, error) {
	if r.Offset < 0 || r.Size < 0 || !r.IsSubrangeOf(s.region) {
		return 0, also(
			errors.Wrapf(ErrOutOfBounds, "range %s outside region %s", r, s.region),
			ErrNotAllocated,
		)
	}
	i := (r.Offset - s.region.Offset) / s.slabSize
	if i >= len(s.slabs) {
		return 0, also(
			errors.Wrapf(ErrOutOfBounds, "range %s past last slab", r),
			ErrNotAllocated,
		)
	}
	return i, nil
}

// liveSlab returns the slab holding r when r is a live allocation.
func (s *SegregatedSlab[U]) liveSlab(r mem.RangeOf[U]) (int, error) {
	i, err := s.slabIndexOf(r)
	if err != nil {
		return 0, err
	}
	if !s.slabs[i].isAllocated(r) {
		return 0, errors.Wrapf(ErrNotAllocated, "range %s", r)
	}
	return i, nil
}

// mustClassIndex returns the position of the class a live slab is bound to.
func (s *SegregatedSlab[U]) mustClassIndex(slabIdx int) int {
	class := s.slabs[slabIdx].class
	c, found := slices.BinarySearch(s.classes, class)
	if !found {
		panic(errors.AssertionFailedf("slab %d bound to unknown class %d", slabIdx, class))
	}
	return c
}

//------------// query //------------//

// CanAllocate reports whether Allocate(size) would currently succeed.
func (s *SegregatedSlab[U]) CanAllocate(size int) bool {
	c, err := s.classIndex(size)
	if err != nil {
		return false
	}
	return len(s.partialSlabs[c]) > 0 || len(s.emptySlabs) > 0
}

// IsAllocated reports whether r is exactly a live allocation: same offset and same size.
func (s *SegregatedSlab[U]) IsAllocated(r mem.RangeOf[U]) bool {
	_, err := s.liveSlab(r)
	return err == nil
}

// CanReallocate reports whether Reallocate(r, size) would currently succeed:
// r is live, size resolves to a class, and the new size either fits the
// current slot or can be freshly allocated.
func (s *SegregatedSlab[U]) CanReallocate(r mem.RangeOf[U], size int) bool {
	return s.checkReallocate(r, size) == nil
}

func (s *SegregatedSlab[U]) checkReallocate(r mem.RangeOf[U], size int) error {
	i, err := s.liveSlab(r)
	if err != nil {
		return err
	}
	if _, err := s.classIndex(size); err != nil {
		return err
	}
	if size <= s.slabs[i].class {
		return nil
	}
	if !s.CanAllocate(size) {
		return errors.Wrapf(ErrInsufficientSpace, "grow %s to %d", r, size)
	}
	return nil
}

//------------// suballocate //------------//

// Allocate reserves size units.
//
// The returned range starts at a slot of the smallest class holding size and is
// exactly size units long; the rest of the slot stays unused.
func (s *SegregatedSlab[U]) Allocate(size int) (mem.RangeOf[U], error) {
	c, err := s.classIndex(size)
	if err != nil {
		return mem.RangeOf[U]{}, err
	}
	class := s.classes[c]

	// Partial slab of the class, most recent first.
	if partial := s.partialSlabs[c]; len(partial) > 0 {
		i := partial[len(partial)-1]
		sl := &s.slabs[i]

		r := sl.allocate(size)
		if sl.occupancy() == occupancyFull {
			s.partialSlabs[c] = partial[:len(partial)-1]
		}
		return r, nil
	}

	// Empty slab, bound to the class.
	if len(s.emptySlabs) == 0 {
		logger.L.Debug("suballoc: no space",
			"size", size, "class", class, "slabs", len(s.slabs))
		return mem.RangeOf[U]{}, errors.Wrapf(ErrInsufficientSpace,
			"size %d (class %d): no partial or empty slab", size, class)
	}
	i := s.emptySlabs[len(s.emptySlabs)-1]
	s.emptySlabs = s.emptySlabs[:len(s.emptySlabs)-1]

	sl := &s.slabs[i]
	if logger.Debug() {
		logger.L.Debug("suballoc: slab assigned",
			"slab", i, "range", sl.rng.String(), "previous_class", sl.class, "class", class)
	}
	sl.assign(class)

	r := sl.allocate(size)
	if sl.occupancy() == occupancyPartial {
		s.partialSlabs[c] = append(s.partialSlabs[c], i)
	}
	return r, nil
}

// Deallocate releases a live range. The backing memory is left untouched.
//
// Fails with ErrNotAllocated when r is not live; ranges outside the region
// also match ErrOutOfBounds.
func (s *SegregatedSlab[U]) Deallocate(r mem.RangeOf[U]) error {
	i, err := s.liveSlab(r)
	if err != nil {
		return err
	}
	c := s.mustClassIndex(i)
	sl := &s.slabs[i]

	before := sl.occupancy()
	sl.deallocate(r)
	after := sl.occupancy()

	switch {
	case before == occupancyFull && after == occupancyPartial:
		s.partialSlabs[c] = append(s.partialSlabs[c], i)

	case before == occupancyFull && after == occupancyEmpty:
		// single-slot class
		s.releaseSlab(i)

	case before == occupancyPartial && after == occupancyPartial:

	case before == occupancyPartial && after == occupancyEmpty:
		partial := s.partialSlabs[c]
		pos := slices.Index(partial, i)
		if pos < 0 {
			panic(errors.AssertionFailedf("partial slab %d missing from class %d pool", i, s.classes[c]))
		}
		partial[pos] = partial[len(partial)-1]
		s.partialSlabs[c] = partial[:len(partial)-1]
		s.releaseSlab(i)

	default:
		panic(errors.AssertionFailedf("slab %d: occupancy %s -> %s on deallocate", i, before, after))
	}
	return nil
}

func (s *SegregatedSlab[U]) releaseSlab(i int) {
	if logger.Debug() {
		logger.L.Debug("suballoc: slab empty", "slab", i, "class", s.slabs[i].class)
	}
	s.emptySlabs = append(s.emptySlabs, i)
}

// Reallocate resizes a live range to size units.
//
//   - same class: the slot is kept, only the recorded size changes
//   - smaller class: moves to a slot of the smaller class when one can be
//     allocated, otherwise resizes in place
//   - larger class: moves to a slot of the larger class or fails
//
// Reallocate never copies memory. When the returned offset differs from
// r.Offset the caller relocates the payload, for example with mem.CopyWithin.
//
// Every failure matches ErrInsufficientSpace; the cause (ErrNotAllocated,
// ErrInvalidSize, ErrSizeTooBig) matches as well.
func (s *SegregatedSlab[U]) Reallocate(r mem.RangeOf[U], size int) (mem.RangeOf[U], error) {
	if err := s.checkReallocate(r, size); err != nil {
		return mem.RangeOf[U]{}, also(err, ErrInsufficientSpace)
	}

	i, _ := s.slabIndexOf(r)
	oldClass := s.slabs[i].class
	newClass, _ := s.ClassOf(size)

	switch {
	case newClass == oldClass:
		return s.slabs[i].resize(r, size), nil

	case newClass < oldClass:
		moved, err := s.Allocate(size)
		if err != nil {
			return s.slabs[i].resize(r, size), nil
		}
		s.mustDeallocate(r)
		return moved, nil

	default:
		moved, err := s.Allocate(size)
		if err != nil {
			return mem.RangeOf[U]{}, err
		}
		s.mustDeallocate(r)
		return moved, nil
	}
}

func (s *SegregatedSlab[U]) mustDeallocate(r mem.RangeOf[U]) {
	if err := s.Deallocate(r); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "deallocate %s after move", r))
	}
}

//------------// debug //------------//

// Allocations lists every live range, ordered by slab then slot.
func (s *SegregatedSlab[U]) Allocations() []mem.RangeOf[U] {
	var out []mem.RangeOf[U]
	for i := range s.slabs {
		out = s.slabs[i].allocations(out)
	}
	return out
}
