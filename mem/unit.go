package mem

import "unsafe"

// Byte is the default unit. RangeOf[Byte] and RangeOf[byte] are the same type.
type Byte = byte

// UnitSize returns the size in bytes of one U.
func UnitSize[U any]() int {
	var u U
	return int(unsafe.Sizeof(u))
}
