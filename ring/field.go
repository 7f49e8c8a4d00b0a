// Package ring implements arithmetic in Z_q and in the polynomial ring
// R_q = Z_q[X]/(X^256 + 1), including the number-theoretic transform.
//
// Every function in this package runs in time independent of the values of
// its operands: reductions are branch-free and no table is indexed by a
// coefficient.
package ring

import (
	"fmt"

	mlkem "github.com/BackendStack21/mlkem-go"
)

// Element is an integer modulo q, always kept in the canonical range [0, q).
type Element uint16

const (
	q = mlkem.Q

	// barrettMultiplier is ⌊2²⁴ / q⌋.
	barrettMultiplier = 5039
	barrettShift      = 24
)

// CheckReduced returns a as an Element, or an error wrapping mlkem.ErrFormat
// if a is not in [0, q). It is used when decoding canonical encodings.
func CheckReduced(a uint16) (Element, error) {
	if a >= q {
		return 0, fmt.Errorf("%w: unreduced field element %d", mlkem.ErrFormat, a)
	}
	return Element(a), nil
}

// reduceOnce maps a value in [0, 2q) to [0, q).
func reduceOnce(a uint16) Element {
	x := a - q
	// If x underflowed, then x >= 2¹⁶ - q > 2¹⁵, so the top bit is set.
	x += (x >> 15) * q
	return Element(x)
}

// Add returns a + b mod q.
func Add(a, b Element) Element {
	return reduceOnce(uint16(a + b))
}

// Sub returns a - b mod q.
func Sub(a, b Element) Element {
	return reduceOnce(uint16(a - b + q))
}

// reduce maps a value in [0, 2q²) to [0, q) with Barrett reduction.
func reduce(a uint32) Element {
	quotient := uint32((uint64(a) * barrettMultiplier) >> barrettShift)
	return reduceOnce(uint16(a - quotient*q))
}

// Mul returns a * b mod q.
func Mul(a, b Element) Element {
	return reduce(uint32(a) * uint32(b))
}

// mulSub returns a * (b - c) mod q.
func mulSub(a, b, c Element) Element {
	return reduce(uint32(a) * uint32(b-c+q))
}

// addMul returns a * b + c * d mod q.
func addMul(a, b, c, d Element) Element {
	x := uint32(a) * uint32(b)
	x += uint32(c) * uint32(d)
	return reduce(x)
}

// Pow returns base^exp mod q. It is only used on public constants.
func Pow(base Element, exp uint) Element {
	result := Element(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = Mul(result, base)
		}
		base = Mul(base, base)
		exp >>= 1
	}
	return result
}
