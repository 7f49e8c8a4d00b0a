// Package codec converts ring elements to and from their fixed-width byte
// encodings: lossless 12-bit packing for keys, and lossy compression with
// d-bit packing for ciphertexts and messages.
package codec

import (
	"fmt"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/ring"
)

const (
	q = mlkem.Q

	barrettMultiplier = 5039 // ⌊2²⁴ / q⌋
	barrettShift      = 24
)

// EncodingSize returns the size of a ring element packed at d bits per
// coefficient.
func EncodingSize(d int) int {
	return mlkem.N * d / 8
}

// Compress maps x to ⌈(2ᵈ/q)·x⌋ mod 2ᵈ with ties rounded up, in constant
// time.
func Compress(x ring.Element, d uint8) uint16 {
	// Barrett reduction yields a quotient and a remainder in [0, 2q) with
	// dividend = quotient·q + remainder.
	dividend := uint32(x) << d
	quotient := uint32(uint64(dividend) * barrettMultiplier >> barrettShift)
	remainder := dividend - quotient*q

	// Round on the remainder, split into three spans:
	//
	//     [ 0,       q/2     ) -> +0
	//     [ q/2,     q + q/2 ) -> +1
	//     [ q + q/2, 2q      ) -> +2
	//
	// If remainder > x then x - remainder underflows and sets the top bit.
	quotient += (q/2 - remainder) >> 31 & 1
	quotient += (q + q/2 - remainder) >> 31 & 1

	var mask uint32 = (1 << d) - 1
	return uint16(quotient & mask)
}

// Decompress maps y to ⌈(q/2ᵈ)·y⌋ with ties rounded up.
func Decompress(y uint16, d uint8) ring.Element {
	dividend := uint32(y) * q
	quotient := dividend >> d
	// The top bit of the remainder selects the values that round up.
	quotient += dividend >> (d - 1) & 1
	return ring.Element(quotient)
}

// EncodePoly12 appends the 12-bit packing of f to b (FIPS 203 ByteEncode₁₂).
func EncodePoly12(b []byte, f *ring.NTTPoly) []byte {
	out, dst := sliceForAppend(b, mlkem.EncodingSize12)
	for i := 0; i < mlkem.N; i += 2 {
		x := uint32(f[i]) | uint32(f[i+1])<<12
		dst[0] = uint8(x)
		dst[1] = uint8(x >> 8)
		dst[2] = uint8(x >> 16)
		dst = dst[3:]
	}
	return out
}

// DecodePoly12 parses a 12-bit packed element (FIPS 203 ByteDecode₁₂),
// rejecting coefficients that are not reduced modulo q.
func DecodePoly12(b []byte) (ring.NTTPoly, error) {
	if len(b) != mlkem.EncodingSize12 {
		return ring.NTTPoly{}, fmt.Errorf("%w: packed element must be %d bytes, got %d", mlkem.ErrFormat, mlkem.EncodingSize12, len(b))
	}
	var f ring.NTTPoly
	for i := 0; i < mlkem.N; i += 2 {
		d := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		var err error
		if f[i], err = ring.CheckReduced(uint16(d & 0x0fff)); err != nil {
			return ring.NTTPoly{}, err
		}
		if f[i+1], err = ring.CheckReduced(uint16(d >> 12)); err != nil {
			return ring.NTTPoly{}, err
		}
		b = b[3:]
	}
	return f, nil
}

// CompressAndEncode appends ByteEncode_d(Compress_d(f)) to b.
func CompressAndEncode(b []byte, f *ring.Poly, d uint8) []byte {
	out, dst := sliceForAppend(b, EncodingSize(int(d)))
	var acc uint32
	var accBits uint8
	idx := 0
	for i := range f {
		acc |= uint32(Compress(f[i], d)) << accBits
		accBits += d
		for accBits >= 8 {
			dst[idx] = byte(acc)
			idx++
			acc >>= 8
			accBits -= 8
		}
	}
	return out
}

// DecodeAndDecompress parses ByteDecode_d(b) and decompresses every
// coefficient. Every d-bit pattern is a valid input, so only the length is
// checked.
func DecodeAndDecompress(b []byte, d uint8) (ring.Poly, error) {
	if len(b) != EncodingSize(int(d)) {
		return ring.Poly{}, fmt.Errorf("%w: %d-bit packed element must be %d bytes, got %d", mlkem.ErrFormat, d, EncodingSize(int(d)), len(b))
	}
	var f ring.Poly
	var acc uint32
	var accBits uint8
	idx := 0
	mask := uint32(1)<<d - 1
	for i := range f {
		for accBits < d {
			acc |= uint32(b[idx]) << accBits
			idx++
			accBits += 8
		}
		f[i] = Decompress(uint16(acc&mask), d)
		acc >>= d
		accBits -= d
	}
	return f, nil
}

// EncodeMessage returns ByteEncode₁(Compress₁(f)), the 32-byte message
// carried by f.
func EncodeMessage(f *ring.Poly) []byte {
	return CompressAndEncode(make([]byte, 0, mlkem.MessageSize), f, 1)
}

// DecodeMessage returns Decompress₁(ByteDecode₁(m)): each message bit
// becomes 0 or ⌈q/2⌋.
func DecodeMessage(m []byte) (ring.Poly, error) {
	return DecodeAndDecompress(m, 1)
}

// sliceForAppend takes a slice and a requested number of bytes. It returns a
// slice with the contents of the given slice followed by that many bytes and a
// second slice that aliases into it and contains only the extra bytes. If the
// original slice has sufficient capacity then no allocation is performed.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	clear(tail)
	return
}
