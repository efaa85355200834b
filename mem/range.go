package mem

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/internal/checked"
)

// RangeOf is a span of Size units of U starting at Offset. End is exclusive.
type RangeOf[U any] struct {
	Offset int
	Size   int
}

// NewRange returns the range [offset, offset+size).
func NewRange[U any](offset, size int) RangeOf[U] {
	return RangeOf[U]{Offset: offset, Size: size}
}

// End returns the first unit past the range.
func (r RangeOf[U]) End() int {
	return r.Offset + r.Size
}

// IsEmpty reports whether the range covers no unit.
func (r RangeOf[U]) IsEmpty() bool {
	return r.Size == 0
}

// Subrange returns the range of size units starting innerOffset units into r.
//
// Fails with ErrOutOfBounds if the result would extend past r.
func (r RangeOf[U]) Subrange(innerOffset, size int) (RangeOf[U], error) {
	if !checked.Within(innerOffset, size, r.Size) {
		return RangeOf[U]{}, errors.Wrapf(ErrOutOfBounds,
			"subrange (%d, %d) of %s", innerOffset, size, r)
	}
	return RangeOf[U]{Offset: r.Offset + innerOffset, Size: size}, nil
}

// IsSubrangeOf reports whether r lies entirely inside other.
// A range whose end does not fit in an int lies inside nothing.
func (r RangeOf[U]) IsSubrangeOf(other RangeOf[U]) bool {
	end, ok := checked.End(r.Offset, r.Size)
	if !ok {
		return false
	}
	otherEnd, ok := checked.End(other.Offset, other.Size)
	return ok && r.Offset >= other.Offset && end <= otherEnd
}

// Contains reports whether the indexed unit lies inside r.
func (r RangeOf[U]) Contains(i IndexOf[U]) bool {
	return r.Offset <= i.Index && i.Index < r.End()
}

// Overlaps reports whether r and other share at least one unit.
// Empty ranges overlap nothing.
func (r RangeOf[U]) Overlaps(other RangeOf[U]) bool {
	return r.Size > 0 && other.Size > 0 &&
		r.Offset < other.End() && other.Offset < r.End()
}

// Index returns the i-th unit of r.
//
// Fails with ErrOutOfBounds if i is not inside r.
func (r RangeOf[U]) Index(i int) (IndexOf[U], error) {
	if i < 0 || i >= r.Size {
		return IndexOf[U]{}, errors.Wrapf(ErrOutOfBounds, "index %d of %s", i, r)
	}
	return IndexOf[U]{Index: r.Offset + i}, nil
}

// ByteOffset returns the byte position of the first unit.
func (r RangeOf[U]) ByteOffset() int {
	return r.Offset * UnitSize[U]()
}

// ByteSize returns the number of bytes covered by the range.
func (r RangeOf[U]) ByteSize() int {
	return r.Size * UnitSize[U]()
}

// Bytes returns the same span of memory expressed in bytes.
func (r RangeOf[U]) Bytes() RangeOf[byte] {
	return RangeOf[byte]{Offset: r.ByteOffset(), Size: r.ByteSize()}
}

// String formats the range as "[offset;end[ (size n)".
func (r RangeOf[U]) String() string {
	return fmt.Sprintf("[%d;%d[ (size %d)", r.Offset, r.End(), r.Size)
}
