// Package kpke implements K-PKE, the IND-CPA secure public-key encryption
// scheme underlying ML-KEM (FIPS 203, Section 5). It is not secure against
// chosen-ciphertext attacks on its own and is only used by package kem.
package kpke

import (
	"fmt"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/codec"
	"github.com/BackendStack21/mlkem-go/ring"
	"github.com/BackendStack21/mlkem-go/sampling"
	"github.com/BackendStack21/mlkem-go/utils"
)

// EncryptionKey is a parsed K-PKE encryption key (t̂, ρ) together with the
// expanded matrix Âᵀ.
type EncryptionKey struct {
	params mlkem.Params
	t      ring.NTTVec
	rho    [32]byte
	aT     []ring.NTTPoly // Âᵀ, row-major
}

// DecryptionKey is a K-PKE decryption key ŝ.
type DecryptionKey struct {
	params mlkem.Params
	s      ring.NTTVec
}

// KeyGen derives a key pair from the 32-byte seed d (FIPS 203, Algorithm 13).
// The module rank is appended to d before hashing for domain separation.
func KeyGen(p mlkem.Params, d []byte) (*EncryptionKey, *DecryptionKey, error) {
	if err := utils.CheckLength(d, 32, "K-PKE seed"); err != nil {
		return nil, nil, err
	}
	g := utils.SHA3512(d, []byte{byte(p.K)})
	defer utils.Zeroize(g[:])
	rho, sigma := g[:32], g[32:]

	a, err := sampling.Matrix(rho, p.K, false)
	if err != nil {
		return nil, nil, err
	}

	s, nonce := sampling.CBDVec(sigma, 0, p.Eta1, p.K)
	e, _ := sampling.CBDVec(sigma, nonce, p.Eta1, p.K)
	sHat, eHat := ring.NTTAll(s), ring.NTTAll(e)
	s.Zeroize()
	e.Zeroize()
	defer eHat.Zeroize()

	// t̂ = Â ∘ ŝ + ê
	t := make(ring.NTTVec, p.K)
	for i := range t {
		row := ring.NTTVec(a[i*p.K : (i+1)*p.K])
		acc := ring.DotNTT(row, sHat)
		t[i] = acc.Add(&eHat[i])
	}

	ek := &EncryptionKey{params: p, t: t, aT: transpose(a, p.K)}
	copy(ek.rho[:], rho)
	dk := &DecryptionKey{params: p, s: sHat}
	return ek, dk, nil
}

func transpose(a []ring.NTTPoly, k int) []ring.NTTPoly {
	out := make([]ring.NTTPoly, len(a))
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			out[j*k+i] = a[i*k+j]
		}
	}
	return out
}

// ParseEncryptionKey parses ByteEncode₁₂(t̂) || ρ. A wrong length is a format
// error; coefficients that are not reduced modulo q make the key invalid
// (FIPS 203, Section 7.2 modulus check).
func ParseEncryptionKey(p mlkem.Params, b []byte) (*EncryptionKey, error) {
	if err := utils.CheckLength(b, p.EncryptionKeySize(), "encryption key"); err != nil {
		return nil, err
	}
	ek := &EncryptionKey{params: p, t: make(ring.NTTVec, p.K)}
	for i := range ek.t {
		f, err := codec.DecodePoly12(b[i*mlkem.EncodingSize12 : (i+1)*mlkem.EncodingSize12])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mlkem.ErrInvalidKey, err)
		}
		ek.t[i] = f
	}
	copy(ek.rho[:], b[p.K*mlkem.EncodingSize12:])

	aT, err := sampling.Matrix(ek.rho[:], p.K, true)
	if err != nil {
		return nil, err
	}
	ek.aT = aT
	return ek, nil
}

// Bytes returns ByteEncode₁₂(t̂) || ρ.
func (ek *EncryptionKey) Bytes() []byte {
	b := make([]byte, 0, ek.params.EncryptionKeySize())
	for i := range ek.t {
		b = codec.EncodePoly12(b, &ek.t[i])
	}
	return append(b, ek.rho[:]...)
}

// Params returns the parameter set of the key.
func (ek *EncryptionKey) Params() mlkem.Params {
	return ek.params
}

// Encrypt encrypts the 32-byte message m with the 32-byte randomness r
// (FIPS 203, Algorithm 14) and appends the ciphertext to dst.
func (ek *EncryptionKey) Encrypt(dst, m, r []byte) ([]byte, error) {
	if err := utils.CheckLength(m, mlkem.MessageSize, "message"); err != nil {
		return nil, err
	}
	if err := utils.CheckLength(r, 32, "encryption randomness"); err != nil {
		return nil, err
	}
	p := ek.params
	k := p.K

	rv, nonce := sampling.CBDVec(r, 0, p.Eta1, k)
	e1, nonce := sampling.CBDVec(r, nonce, p.Eta2, k)
	e2 := sampling.CBD(r, nonce, p.Eta2)
	rHat := ring.NTTAll(rv)
	defer func() {
		rv.Zeroize()
		e1.Zeroize()
		e2.Zeroize()
		rHat.Zeroize()
	}()

	// u = NTT⁻¹(Âᵀ ∘ r̂) + e₁
	u := make(ring.Vec, k)
	for i := range u {
		row := ring.NTTVec(ek.aT[i*k : (i+1)*k])
		acc := ring.DotNTT(row, rHat)
		prod := ring.InverseNTT(&acc)
		u[i] = prod.Add(&e1[i])
	}

	// v = NTT⁻¹(t̂ᵀ ∘ r̂) + e₂ + Decompress₁(m)
	mu, err := codec.DecodeMessage(m)
	if err != nil {
		return nil, err
	}
	defer mu.Zeroize()
	acc := ring.DotNTT(ek.t, rHat)
	v := ring.InverseNTT(&acc)
	v = v.Add(&e2)
	v = v.Add(&mu)
	defer v.Zeroize()

	out, ct := sliceForAppend(dst, p.CiphertextSize())
	ct = ct[:0]
	for i := range u {
		ct = codec.CompressAndEncode(ct, &u[i], uint8(p.DU))
	}
	codec.CompressAndEncode(ct, &v, uint8(p.DV))
	return out, nil
}

// ParseDecryptionKey parses ByteEncode₁₂(ŝ).
func ParseDecryptionKey(p mlkem.Params, b []byte) (*DecryptionKey, error) {
	if err := utils.CheckLength(b, p.DecryptionKeySize(), "decryption key"); err != nil {
		return nil, err
	}
	dk := &DecryptionKey{params: p, s: make(ring.NTTVec, p.K)}
	for i := range dk.s {
		f, err := codec.DecodePoly12(b[i*mlkem.EncodingSize12 : (i+1)*mlkem.EncodingSize12])
		if err != nil {
			dk.Zeroize()
			return nil, fmt.Errorf("%w: %v", mlkem.ErrInvalidKey, err)
		}
		dk.s[i] = f
	}
	return dk, nil
}

// Bytes returns ByteEncode₁₂(ŝ). The caller owns the secret copy.
func (dk *DecryptionKey) Bytes() []byte {
	b := make([]byte, 0, dk.params.DecryptionKeySize())
	for i := range dk.s {
		b = codec.EncodePoly12(b, &dk.s[i])
	}
	return b
}

// Decrypt recovers the 32-byte message from ct (FIPS 203, Algorithm 15).
// Any ciphertext of the right length decrypts to some message.
func (dk *DecryptionKey) Decrypt(ct []byte) ([]byte, error) {
	p := dk.params
	if err := utils.CheckLength(ct, p.CiphertextSize(), "ciphertext"); err != nil {
		return nil, err
	}
	uSize := codec.EncodingSize(p.DU)
	u := make(ring.Vec, p.K)
	for i := range u {
		f, err := codec.DecodeAndDecompress(ct[i*uSize:(i+1)*uSize], uint8(p.DU))
		if err != nil {
			return nil, err
		}
		u[i] = f
	}
	v, err := codec.DecodeAndDecompress(ct[p.K*uSize:], uint8(p.DV))
	if err != nil {
		return nil, err
	}

	// w = v - NTT⁻¹(ŝᵀ ∘ NTT(u))
	acc := ring.DotNTT(dk.s, ring.NTTAll(u))
	su := ring.InverseNTT(&acc)
	w := v.Sub(&su)
	m := codec.EncodeMessage(&w)
	acc.Zeroize()
	su.Zeroize()
	w.Zeroize()
	return m, nil
}

// Zeroize clears the secret vector.
func (dk *DecryptionKey) Zeroize() {
	dk.s.Zeroize()
}

func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
