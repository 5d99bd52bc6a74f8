// Package bit32 provides unsigned 32-bit integer semantics on top of Go's
// wider signed integers: wraparound reduction and a zero-filling right shift.
//
// Values flowing through the signer are kept in int64 so that intermediate
// sums and left shifts may exceed 32 bits before being folded back.
package bit32

// modulus is 2^32.
const modulus = int64(1) << 32

// Mask reduces x modulo 2^32 into [0, 2^32). Negative values wrap the way a
// two's-complement 32-bit register would.
func Mask(x int64) uint32 {
	r := x % modulus
	if r < 0 {
		r += modulus
	}
	return uint32(r)
}

// ShiftRight treats x as a 32-bit pattern and shifts it right by bits,
// filling with zeros. Non-positive shifts return the masked value unchanged
// and shifts of 32 or more return 0.
func ShiftRight(x int64, bits int) uint32 {
	switch {
	case bits <= 0:
		return Mask(x)
	case bits >= 32:
		return 0
	}
	return Mask(x) >> uint(bits)
}
