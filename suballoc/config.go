package suballoc

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/internal/checked"
	"github.com/joshuapare/slabkit/mem"
)

// SegregatedSlabConfig describes how a region is cut into slabs and which
// allocation sizes (classes) a slab can be bound to.
//
// Build one with Pot or NewSegregatedSlabConfig; both validate the layout.
type SegregatedSlabConfig[U any] struct {
	region   mem.RangeOf[U]
	slabSize int
	classes  []int // ascending
}

// Pot returns the power-of-two configuration:
//   - slab size is maxSize
//   - classes are every power of two from minSize to maxSize inclusive
//
// region.Size, maxSize and minSize must all be powers of two with
// minSize <= maxSize <= region.Size.
func Pot[U any](region mem.RangeOf[U], maxSize, minSize int) (SegregatedSlabConfig[U], error) {
	if !checked.IsPowerOfTwo(region.Size) {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
			"region size %d is not a power of two", region.Size)
	}
	if !checked.IsPowerOfTwo(maxSize) {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
			"max size %d is not a power of two", maxSize)
	}
	if !checked.IsPowerOfTwo(minSize) {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
			"min size %d is not a power of two", minSize)
	}

	if maxSize > region.Size {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
			"max size %d > region size %d", maxSize, region.Size)
	}
	if minSize > maxSize {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
			"min size %d > max size %d", minSize, maxSize)
	}

	var classes []int
	for class := minSize; ; class *= 2 {
		classes = append(classes, class)
		if class == maxSize {
			break
		}
	}

	return NewSegregatedSlabConfig(region, maxSize, classes)
}

// NewSegregatedSlabConfig returns a configuration with an explicit class set.
//
// Requirements:
//   - region lies at a non-negative offset and is not empty
//   - slabSize divides region.Size
//   - classes are positive, strictly ascending, and each divides slabSize
//
// Using the largest class as slab size is recommended but not required.
func NewSegregatedSlabConfig[U any](
	region mem.RangeOf[U],
	slabSize int,
	classes []int,
) (SegregatedSlabConfig[U], error) {
	if region.Offset < 0 || region.Size <= 0 {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig, "region %s is empty or negative", region)
	}
	if _, ok := checked.End(region.Offset, region.Size); !ok {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig, "region %s overflows", region)
	}
	if slabSize <= 0 || region.Size%slabSize != 0 {
		return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
			"slab size %d does not divide region size %d", slabSize, region.Size)
	}
	if len(classes) == 0 {
		return SegregatedSlabConfig[U]{}, errors.Wrap(ErrInvalidConfig, "no classes")
	}

	for i, class := range classes {
		if class <= 0 {
			return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig, "class %d is not positive", class)
		}
		if i > 0 && class <= classes[i-1] {
			return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
				"classes not strictly ascending at %d (%d after %d)", i, class, classes[i-1])
		}
		if class > slabSize || slabSize%class != 0 {
			return SegregatedSlabConfig[U]{}, errors.Wrapf(ErrInvalidConfig,
				"class %d does not divide slab size %d", class, slabSize)
		}
	}

	return SegregatedSlabConfig[U]{
		region:   region,
		slabSize: slabSize,
		classes:  slices.Clone(classes),
	}, nil
}

// Region returns the configured region.
func (c SegregatedSlabConfig[U]) Region() mem.RangeOf[U] { return c.region }

// SlabSize returns the number of units per slab.
func (c SegregatedSlabConfig[U]) SlabSize() int { return c.slabSize }

// Classes returns a copy of the ascending class list.
func (c SegregatedSlabConfig[U]) Classes() []int { return slices.Clone(c.classes) }

// SlabCount returns the number of slabs the region is cut into.
func (c SegregatedSlabConfig[U]) SlabCount() int {
	if c.slabSize == 0 {
		return 0
	}
	return c.region.Size / c.slabSize
}

// SlotsPerSlab returns how many slots a slab bound to class holds.
func (c SegregatedSlabConfig[U]) SlotsPerSlab(class int) int {
	if class <= 0 {
		return 0
	}
	return c.slabSize / class
}
