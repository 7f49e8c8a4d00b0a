package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
	"runtime"
)

// RandReader is the entropy source used when callers pass a nil reader.
var RandReader io.Reader = rand.Reader

// ReadRandom fills a fresh n-byte buffer from r, falling back to RandReader
// when r is nil. Short reads are errors.
func ReadRandom(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = RandReader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		Zeroize(buf)
		return nil, err
	}
	return buf, nil
}

// ConstantTimeEqual compares two byte slices in constant time.
// It returns true if the slices are equal, false otherwise.
// This function leaks only the length of the slices.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ConstantTimeSelect returns a if condition is 1, b if condition is 0.
// condition must be 0 or 1.
// a and b must have the same length.
func ConstantTimeSelect(condition int, a, b []byte) []byte {
	if len(a) != len(b) {
		panic("arrays must have same length")
	}
	result := make([]byte, len(a))
	copy(result, b)
	subtle.ConstantTimeCopy(condition, result, a)
	return result
}

// Zeroize overwrites a byte slice with zeros.
// Uses runtime.KeepAlive to prevent compiler optimization from eliminating the stores.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
