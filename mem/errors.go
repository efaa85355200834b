package mem

import "github.com/cockroachdb/errors"

// ErrOutOfBounds indicates a sub-range or index that does not fit inside its parent range.
var ErrOutOfBounds = errors.New("mem: out of bounds")
