// Package suballoc carves fixed regions into typed sub-ranges without ever
// going back to whoever provided the region.
//
// # Overview
//
// A caller obtains one large block once (a GPU arena, an mmap'ed file, a plain
// slice) and describes it as a mem.RangeOf[U]. The allocators in this package
// only compute coordinates inside that range: they never read, write, zero or
// copy the backing memory.
//
// # Allocators
//
// SegregatedSlab implements RangeAllocator:
//
//   - Allocate(size), Deallocate(r), Reallocate(r, size)
//   - CanAllocate, IsAllocated, CanReallocate, Allocations
//
// Table implements UnitAllocator: one unit per allocation, O(1) allocate.
//
// # Usage Example
//
//	cfg, err := suballoc.Pot(mem.NewRange[vertex](0, 1<<16), 256, 16)
//	if err != nil {
//	    return err
//	}
//	sa, err := suballoc.NewSegregatedSlab(cfg)
//	if err != nil {
//	    return err
//	}
//
//	r, err := sa.Allocate(100) // 100 vertices, slot of class 128
//	if err != nil {
//	    return err
//	}
//	copy(vertices[r.Offset:r.End()], mesh)
//
//	moved, err := sa.Reallocate(r, 200)
//	if err == nil && moved.Offset != r.Offset {
//	    mem.CopyWithin(vertices, r, moved)
//	}
//
// # Slabs and Classes
//
// The region is cut into equal slabs. Pot(region, 16, 4) over 64 units gives:
//
//	slab 0  [0;16[    slab 1  [16;32[    slab 2  [32;48[    slab 3  [48;64[
//	classes 4, 8, 16
//
// A slab is bound to a class the first time it serves that class and is cut
// into slabSize/class slots:
//
//	slab 0 class 4    | 4 | 4 | 4 | 4 |
//	slab 1 class 16   |      16       |
//	slab 2 class 8    |   8   |   8   |
//
// A request is rounded up to the smallest class holding it and lands at the
// start of a slot; the tail of the slot is internal fragmentation. A slab
// whose last live slot is freed goes back to the empty pool and may later be
// rebound to another class. Adjacent free slots are never merged and nothing
// is compacted across slabs.
//
// # Reuse Order
//
// Empty slabs and per-class partial slabs are kept in LIFO stacks, and a slab
// serves its lowest free slot. The order is deterministic for a given call
// sequence but is not part of the contract.
//
// # Errors
//
// Operations return one of the package sentinels wrapped with context; test
// with errors.Is. Reallocate failures always match ErrInsufficientSpace.
// Passing a range obtained from another allocator is undefined and may panic.
//
// # Thread Safety
//
// Allocators are not thread-safe. Callers must synchronize access externally.
//
// # Debugging
//
// Set SLABKIT_LOG_ALLOC to any non-empty value to log slab assignment, slab
// release and allocation failures at debug level.
package suballoc
