package suballoc

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/mem"
)

// Table suballocates single units of a region, one slot per unit.
//
// Allocation pops a slot position off a stack of never-used positions.
// Deallocate only clears the slot's allocated flag: the position is NOT pushed
// back onto the stack, so a freed unit is never handed out again by the same
// Table. Once every position has been allocated once, Allocate keeps failing
// with ErrInsufficientSpace regardless of how many units were freed.
//
// Table is not safe for concurrent use.
type Table[U any] struct {
	region mem.RangeOf[U] // immutable

	allocated *bitset.BitSet // bit i set <=> region.Index(i) allocated
	pool      []int          // LIFO of slot positions, never refilled
}

// NewTable builds a table over region with every unit free.
func NewTable[U any](region mem.RangeOf[U]) (*Table[U], error) {
	if region.Offset < 0 || region.Size <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "region %s is empty or negative", region)
	}

	pool := make([]int, region.Size)
	for i := range pool {
		pool[i] = region.Size - 1 - i
	}

	return &Table[U]{
		region:    region,
		allocated: bitset.New(uint(region.Size)),
		pool:      pool,
	}, nil
}

// Region returns the managed region.
func (t *Table[U]) Region() mem.RangeOf[U] { return t.region }

// Len returns the number of units in the region.
func (t *Table[U]) Len() int { return t.region.Size }

// Free returns how many more Allocate calls can succeed.
func (t *Table[U]) Free() int { return len(t.pool) }

// CanAllocate reports whether Allocate would currently succeed.
func (t *Table[U]) CanAllocate() bool {
	return len(t.pool) > 0
}

func (t *Table[U]) slotOf(i mem.IndexOf[U]) (int, bool) {
	if !t.region.Contains(i) {
		return 0, false
	}
	return i.Index - t.region.Offset, true
}

// IsAllocated reports whether i lies in the region and is currently allocated.
func (t *Table[U]) IsAllocated(i mem.IndexOf[U]) bool {
	slot, ok := t.slotOf(i)
	return ok && t.allocated.Test(uint(slot))
}

// Allocate reserves one unit.
func (t *Table[U]) Allocate() (mem.IndexOf[U], error) {
	if len(t.pool) == 0 {
		logger.L.Debug("suballoc: table exhausted", "region", t.region.String())
		return mem.IndexOf[U]{}, errors.Wrapf(ErrInsufficientSpace, "table %s has no unused slot", t.region)
	}
	slot := t.pool[len(t.pool)-1]
	t.pool = t.pool[:len(t.pool)-1]

	if t.allocated.Test(uint(slot)) {
		panic(errors.AssertionFailedf("table slot %d in pool while allocated", slot))
	}
	t.allocated.Set(uint(slot))
	return mem.NewIndex[U](t.region.Offset + slot), nil
}

// Deallocate marks a live unit free. The unit does not become allocatable again.
//
// Fails with ErrNotAllocated when i is not live; indices outside the region
// also match ErrOutOfBounds.
func (t *Table[U]) Deallocate(i mem.IndexOf[U]) error {
	slot, ok := t.slotOf(i)
	if !ok {
		return also(
			errors.Wrapf(ErrOutOfBounds, "index %s outside region %s", i, t.region),
			ErrNotAllocated,
		)
	}
	if !t.allocated.Test(uint(slot)) {
		return errors.Wrapf(ErrNotAllocated, "index %s", i)
	}
	t.allocated.Clear(uint(slot))
	return nil
}

// Allocations lists every live index in ascending order.
func (t *Table[U]) Allocations() []mem.IndexOf[U] {
	out := make([]mem.IndexOf[U], 0, t.allocated.Count())
	for slot, ok := t.allocated.NextSet(0); ok; slot, ok = t.allocated.NextSet(slot + 1) {
		out = append(out, mem.NewIndex[U](t.region.Offset+int(slot)))
	}
	return out
}
