package suballoc

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/slabkit/mem"
)

var (
	// ErrInvalidSize indicates a requested allocation or reallocation size of zero.
	ErrInvalidSize = errors.New("suballoc: size must be positive")

	// ErrSizeTooBig indicates that no configured class can hold the requested size.
	ErrSizeTooBig = errors.New("suballoc: size exceeds largest class")

	// ErrOutOfBounds indicates a range or index outside the managed region.
	// It is the same value as mem.ErrOutOfBounds.
	ErrOutOfBounds = mem.ErrOutOfBounds

	// ErrNotAllocated indicates a range or index that is not currently live.
	ErrNotAllocated = errors.New("suballoc: not allocated")

	// ErrInsufficientSpace indicates that current occupancy cannot satisfy the request.
	ErrInsufficientSpace = errors.New("suballoc: insufficient space")

	// ErrInvalidConfig indicates a rejected allocator configuration.
	ErrInvalidConfig = errors.New("suballoc: invalid configuration")
)

// alsoError makes err match one more sentinel without changing its message.
// Both the standard library and cockroachdb errors.Is consult the Is method.
type alsoError struct {
	err  error
	mark error
}

func (e *alsoError) Error() string        { return e.err.Error() }
func (e *alsoError) Unwrap() error        { return e.err }
func (e *alsoError) Is(target error) bool { return target == e.mark }

// also returns err extended to match mark as well.
func also(err, mark error) error {
	if errors.Is(err, mark) {
		return err
	}
	return &alsoError{err: err, mark: mark}
}
