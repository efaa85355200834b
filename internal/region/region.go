// Package region provides backing memory blocks for suballocators.
//
// A Region is an anonymous, private, read-write memory mapping owned by the
// caller. Allocators never touch it; callers slice into it with the
// coordinates an allocator returns.
package region

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/mem"
)

// ErrClosed is returned when using a Region after Close.
var ErrClosed = errors.New("region: closed")

// Region is a fixed-size block of mapped memory.
//
// Region is not safe for concurrent writes.
type Region struct {
	data  []byte
	unmap func() error
}

// New maps size bytes of zeroed anonymous memory.
func New(size int) (*Region, error) {
	if size <= 0 {
		return nil, errors.Newf("region: size %d must be positive", size)
	}
	data, unmap, err := mapAnon(size)
	if err != nil {
		return nil, errors.Wrapf(err, "region: map %d bytes", size)
	}
	return &Region{data: data, unmap: unmap}, nil
}

// Len returns the size of the region in bytes, 0 after Close.
func (r *Region) Len() int {
	return len(r.data)
}

// Bytes returns the mapped memory. The slice is invalid after Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Range returns the whole region as a range of U.
func Range[U any](r *Region) mem.RangeOf[U] {
	return mem.NewRange[U](0, len(r.data)/mem.UnitSize[U]())
}

// Slice returns the bytes covered by rng. rng is expressed in any unit and
// converted to bytes.
func Slice[U any](r *Region, rng mem.RangeOf[U]) ([]byte, error) {
	if r.data == nil {
		return nil, ErrClosed
	}
	b := rng.Bytes()
	if _, err := mem.NewRange[byte](0, len(r.data)).Subrange(b.Offset, b.Size); err != nil {
		return nil, errors.Wrapf(err, "region: %s of %d bytes", b, len(r.data))
	}
	return r.data[b.Offset:b.End():b.End()], nil
}

// View reinterprets the region as a slice of U.
//
// U must not contain pointers; the garbage collector does not scan mapped
// memory. The region length must be a multiple of the size of U.
func View[U any](r *Region) ([]U, error) {
	if r.data == nil {
		return nil, ErrClosed
	}
	unit := mem.UnitSize[U]()
	if unit == 0 {
		return nil, errors.New("region: zero-size unit")
	}
	if len(r.data)%unit != 0 {
		return nil, errors.Newf("region: %d bytes is not a multiple of unit size %d", len(r.data), unit)
	}
	return unsafe.Slice((*U)(unsafe.Pointer(unsafe.SliceData(r.data))), len(r.data)/unit), nil
}

// Close unmaps the region. Calling Close more than once is a no-op.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	err := r.unmap()
	r.data, r.unmap = nil, nil
	return err
}
