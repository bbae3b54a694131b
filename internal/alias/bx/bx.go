// stand for bytes helper
package bx

import "encoding/binary"

var (
	LE = binary.LittleEndian
	BE = binary.BigEndian
)

// Order returns the byte order of a binary PLY body.
func Order(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return BE
	}
	return LE
}

// --- width-generic read: len(b) must be 1, 2, 4 or 8 ---
func Uint(order binary.ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	panic("bx: unsupported width")
}

// Int is Uint sign-extended from the width of b.
func Int(order binary.ByteOrder, b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(order.Uint16(b)))
	case 4:
		return int64(int32(order.Uint32(b)))
	case 8:
		return int64(order.Uint64(b))
	}
	panic("bx: unsupported width")
}

// --- width-generic write: the low len(b) bytes of v are stored ---
func PutUint(order binary.ByteOrder, b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	default:
		panic("bx: unsupported width")
	}
}
