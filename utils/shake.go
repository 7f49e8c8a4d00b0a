// Package utils provides hashing, randomness, constant-time and memory
// hygiene helpers shared by the ML-KEM layers.
package utils

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake256()
	},
}

// Shake256 computes the SHAKE256 extendable output function (XOF) over the
// concatenation of inputs and returns outputLen bytes.
func Shake256(outputLen int, inputs ...[]byte) []byte {
	output := make([]byte, outputLen)
	Shake256Into(output, inputs...)
	return output
}

// Shake256Into computes SHAKE256 over the concatenation of inputs and fills
// output.
func Shake256Into(output []byte, inputs ...[]byte) {
	h := shake256Pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		shake256Pool.Put(h)
	}()

	for _, in := range inputs {
		h.Write(in)
	}
	_, _ = h.Read(output)
}

// NewShake128 returns a SHAKE128 stream absorbing the concatenation of inputs.
// It is the XOF used for matrix expansion.
func NewShake128(inputs ...[]byte) sha3.ShakeHash {
	h := sha3.NewShake128()
	for _, in := range inputs {
		h.Write(in)
	}
	return h
}

// SHA3256 computes the SHA3-256 hash of the concatenation of inputs.
// This is H in FIPS 203.
func SHA3256(inputs ...[]byte) [32]byte {
	h := sha3.New256()
	for _, in := range inputs {
		h.Write(in)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// SHA3512 computes the SHA3-512 hash of the concatenation of inputs.
// This is G in FIPS 203.
func SHA3512(inputs ...[]byte) [64]byte {
	h := sha3.New512()
	for _, in := range inputs {
		h.Write(in)
	}
	var out [64]byte
	h.Sum(out[:0])
	return out
}
