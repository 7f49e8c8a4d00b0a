// Package sampling derives ring elements deterministically from seeds, using
// SHAKE128 for uniform matrix entries and SHAKE256 as the PRF feeding the
// centered binomial distribution.
package sampling

import (
	"encoding/binary"
	"fmt"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/ring"
	"github.com/BackendStack21/mlkem-go/utils"
)

// shake128Rate is the SHAKE128 block size in bytes.
const shake128Rate = 168

// MaxXOFBlocks caps the number of SHAKE128 blocks UniformNTT may consume.
// About three blocks are needed on average; hitting the cap requires a
// seed whose stream rejects more than 90% of 12-bit candidates.
var MaxXOFBlocks = 64

// UniformNTT samples a uniformly random NTT-domain element from the SHAKE128
// stream of rho || i || j by rejection sampling 12-bit values (FIPS 203,
// Algorithm 7, SampleNTT). The matrix entry Â[i][j] is UniformNTT(ρ, j, i).
func UniformNTT(rho []byte, i, j byte) (ring.NTTPoly, error) {
	xof := utils.NewShake128(rho, []byte{i, j})

	var a ring.NTTPoly
	var buf [shake128Rate]byte
	count := 0
	for blocks := 0; blocks < MaxXOFBlocks; blocks++ {
		_, _ = xof.Read(buf[:])
		for off := 0; off+3 <= len(buf); off += 3 {
			d1 := binary.LittleEndian.Uint16(buf[off:]) & 0x0fff
			d2 := binary.LittleEndian.Uint16(buf[off+1:]) >> 4
			if d1 < mlkem.Q {
				a[count] = ring.Element(d1)
				count++
			}
			if count == len(a) {
				return a, nil
			}
			if d2 < mlkem.Q {
				a[count] = ring.Element(d2)
				count++
			}
			if count == len(a) {
				return a, nil
			}
		}
	}
	return ring.NTTPoly{}, fmt.Errorf("%w: matrix sampling exceeded %d XOF blocks", mlkem.ErrInternal, MaxXOFBlocks)
}

// Matrix expands rho into the k×k matrix Â, row-major, with
// Â[i][j] = UniformNTT(ρ, j, i). If transpose is set the result holds Âᵀ.
func Matrix(rho []byte, k int, transpose bool) ([]ring.NTTPoly, error) {
	a := make([]ring.NTTPoly, k*k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			entry, err := UniformNTT(rho, byte(j), byte(i))
			if err != nil {
				return nil, err
			}
			if transpose {
				a[j*k+i] = entry
			} else {
				a[i*k+j] = entry
			}
		}
	}
	return a, nil
}

// PRF returns SHAKE256(seed || nonce) truncated to 64·eta bytes.
func PRF(seed []byte, nonce byte, eta int) []byte {
	return utils.Shake256(64*eta, seed, []byte{nonce})
}

// CBD samples a standard-domain element from the centered binomial
// distribution of width eta, keyed by PRF(seed, nonce) (FIPS 203,
// Algorithm 8, SamplePolyCBD). Each coefficient is the difference of the
// popcounts of two consecutive eta-bit groups.
func CBD(seed []byte, nonce byte, eta int) ring.Poly {
	b := PRF(seed, nonce, eta)
	defer utils.Zeroize(b)

	var f ring.Poly
	bit := func(pos int) ring.Element {
		return ring.Element(b[pos>>3] >> (pos & 7) & 1)
	}
	pos := 0
	for i := range f {
		var x, y ring.Element
		for j := 0; j < eta; j++ {
			x += bit(pos)
			pos++
		}
		for j := 0; j < eta; j++ {
			y += bit(pos)
			pos++
		}
		f[i] = ring.Sub(x, y)
	}
	return f
}

// CBDVec samples len vector elements with consecutive nonces starting at
// nonce, returning the vector and the next unused nonce.
func CBDVec(seed []byte, nonce byte, eta, length int) (ring.Vec, byte) {
	v := make(ring.Vec, length)
	for i := range v {
		v[i] = CBD(seed, nonce, eta)
		nonce++
	}
	return v, nonce
}
