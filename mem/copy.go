package mem

// CopyWithin copies min(src.Size, dst.Size) units of memory from src to dst and
// returns the number of units copied.
//
// src and dst must not overlap and must lie inside memory. Out-of-range input
// panics through the slice bounds check.
func CopyWithin[U any](memory []U, src, dst RangeOf[U]) int {
	n := min(src.Size, dst.Size)
	return copy(memory[dst.Offset:dst.Offset+n], memory[src.Offset:src.Offset+n])
}

// CopyWithinBytes is CopyWithin over the byte image of typed ranges. It returns
// the number of bytes copied.
func CopyWithinBytes[U any](memory []byte, src, dst RangeOf[U]) int {
	return CopyWithin(memory, src.Bytes(), dst.Bytes())
}
