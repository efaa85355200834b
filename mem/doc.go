// Package mem provides unit-aware offsets and ranges over a contiguous block of memory.
//
// # Overview
//
// A backing block (a mapped GPU buffer, a staging area, a plain slice) is addressed
// through two value types parameterised by a phantom unit:
//
//   - IndexOf[U]: the i-th U in the block
//   - RangeOf[U]: Size consecutive U starting at the Offset-th U
//
// The unit carries no storage. It exists so that the compiler rejects mixing
// coordinates of different units:
//
//	type Vertex struct{ X, Y, Z float32 }
//	type Triangle [3]uint32
//
//	verts := mem.NewRange[Vertex](0, 128)
//	tris := mem.NewRange[Triangle](0, 64)
//	_ = verts.IsSubrangeOf(tris) // does not compile
//
// Byte positions are derived by multiplying by the size of U:
//
//	verts.ByteOffset() // Offset * 12
//	verts.Bytes()      // RangeOf[byte] covering the same memory
//
// Values compare with ==; only Offset and Size take part.
//
// # Copying
//
// CopyWithin moves min(src.Size, dst.Size) units between two non-overlapping ranges
// of one block. It keeps no bookkeeping: callers use it to relocate a payload after
// a suballocator handed out a new range for it.
package mem
