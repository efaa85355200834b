package mem

import "strconv"

// IndexOf is a position counted in units of U.
type IndexOf[U any] struct {
	Index int
}

// NewIndex returns the index of the i-th U.
func NewIndex[U any](i int) IndexOf[U] {
	return IndexOf[U]{Index: i}
}

// ByteOffset returns the byte position of the indexed unit.
func (i IndexOf[U]) ByteOffset() int {
	return i.Index * UnitSize[U]()
}

// ByteSize returns the size in bytes of the indexed unit.
func (i IndexOf[U]) ByteSize() int {
	return UnitSize[U]()
}

// Bytes returns the byte range covered by the indexed unit.
func (i IndexOf[U]) Bytes() RangeOf[byte] {
	return RangeOf[byte]{Offset: i.ByteOffset(), Size: i.ByteSize()}
}

// Range returns the one-unit range starting at i.
func (i IndexOf[U]) Range() RangeOf[U] {
	return RangeOf[U]{Offset: i.Index, Size: 1}
}

func (i IndexOf[U]) String() string {
	return strconv.Itoa(i.Index)
}
