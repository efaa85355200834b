package suballoc

import "github.com/joshuapare/slabkit/mem"

// RangeAllocator hands out variable-size ranges of U from a fixed region.
//
// Implementations:
//   - SegregatedSlab: slabs bound to power-of-two (or explicit) size classes
//
// Returned ranges are coordinates only. The allocator never reads or writes
// the backing memory.
type RangeAllocator[U any] interface {
	// CanAllocate reports whether Allocate(size) would currently succeed.
	CanAllocate(size int) bool

	// IsAllocated reports whether r is exactly a live allocation.
	IsAllocated(r mem.RangeOf[U]) bool

	// CanReallocate reports whether Reallocate(r, size) would currently succeed.
	CanReallocate(r mem.RangeOf[U], size int) bool

	// Allocate reserves size units and returns their range.
	Allocate(size int) (mem.RangeOf[U], error)

	// Deallocate releases a live range.
	Deallocate(r mem.RangeOf[U]) error

	// Reallocate resizes a live range, in place or by moving it.
	// When the returned offset differs from r.Offset the caller relocates the payload.
	Reallocate(r mem.RangeOf[U], size int) (mem.RangeOf[U], error)

	// Allocations lists every live range.
	Allocations() []mem.RangeOf[U]
}

// UnitAllocator hands out single units of U from a fixed region.
//
// Implementations:
//   - Table: one slot per unit, O(1) allocation from a stack of free positions
type UnitAllocator[U any] interface {
	// CanAllocate reports whether Allocate would currently succeed.
	CanAllocate() bool

	// IsAllocated reports whether i is a live allocation.
	IsAllocated(i mem.IndexOf[U]) bool

	// Allocate reserves one unit and returns its index.
	Allocate() (mem.IndexOf[U], error)

	// Deallocate releases a live index.
	Deallocate(i mem.IndexOf[U]) error

	// Allocations lists every live index.
	Allocations() []mem.IndexOf[U]
}

var (
	_ RangeAllocator[byte] = (*SegregatedSlab[byte])(nil)
	_ UnitAllocator[byte]  = (*Table[byte])(nil)
)
