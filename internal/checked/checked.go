// Package checked contains overflow-aware arithmetic for offset and size math.
//
// Offsets and sizes in slabkit are non-negative ints counted in some unit.
// Every helper here reports ok = false instead of wrapping around, so callers
// can turn an impossible span into a bounds error.
package checked

import "math"

// Add returns a + b, with ok = false when the sum would overflow int.
func Add(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Mul returns a * b for non-negative operands, with ok = false on overflow
// or when either operand is negative.
func Mul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// End returns offset + size when both are non-negative and the sum fits.
func End(offset, size int) (int, bool) {
	if offset < 0 || size < 0 {
		return 0, false
	}
	return Add(offset, size)
}

// Within reports whether [offset, offset+size) lies inside [0, limit).
func Within(offset, size, limit int) bool {
	end, ok := End(offset, size)
	return ok && end <= limit
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
