// Package kem implements the ML-KEM key-encapsulation mechanism: key
// generation, encapsulation and decapsulation with implicit rejection
// (FIPS 203, Section 6).
//
// Keys are immutable after construction and may be used concurrently.
package kem

import (
	"crypto/subtle"
	"fmt"
	"io"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/core"
	"github.com/BackendStack21/mlkem-go/kpke"
	"github.com/BackendStack21/mlkem-go/utils"
)

// EncapsulationKey is the public key used to produce ciphertexts.
type EncapsulationKey struct {
	params mlkem.Params
	pke    *kpke.EncryptionKey
	raw    []byte
	h      [32]byte // H(ek)
}

// DecapsulationKey is the secret key used to recover shared secrets. It is
// only ever produced together with its EncapsulationKey, either by key
// generation or by parsing the expanded encoding written by key generation.
type DecapsulationKey struct {
	params mlkem.Params
	pke    *kpke.DecryptionKey
	ek     *EncapsulationKey
	z      [32]byte

	d       [32]byte
	hasSeed bool
}

// GenerateKey generates a new key pair, drawing the 64-byte seed from rand
// (crypto/rand when nil).
func GenerateKey(params mlkem.Params, rand io.Reader) (*DecapsulationKey, error) {
	seed, err := utils.ReadRandom(rand, mlkem.SeedSize)
	if err != nil {
		return nil, err
	}
	dk, err := NewKeyFromSeed(params, seed)
	utils.Zeroize(seed)
	return dk, err
}

// NewKeyFromSeed deterministically derives a key pair from a 64-byte seed in
// the d || z form (FIPS 203, Algorithm 16). The same seed always yields
// byte-identical keys.
func NewKeyFromSeed(params mlkem.Params, seed []byte) (*DecapsulationKey, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := utils.CheckLength(seed, mlkem.SeedSize, "seed"); err != nil {
		return nil, err
	}

	ekPKE, dkPKE, err := kpke.KeyGen(params, seed[:32])
	if err != nil {
		return nil, err
	}
	raw := ekPKE.Bytes()
	ek := &EncapsulationKey{params: params, pke: ekPKE, raw: raw, h: utils.SHA3256(raw)}

	dk := &DecapsulationKey{
		params:  params,
		pke:     dkPKE,
		ek:      ek,
		hasSeed: true,
	}
	copy(dk.d[:], seed[:32])
	copy(dk.z[:], seed[32:])
	return dk, nil
}

// NewEncapsulationKey parses a serialized encapsulation key. A wrong length
// returns an error wrapping mlkem.ErrFormat; a key failing the modulus check
// returns an error wrapping mlkem.ErrInvalidKey.
func NewEncapsulationKey(params mlkem.Params, b []byte) (*EncapsulationKey, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := utils.CheckLength(b, params.EncapsulationKeySize(), "encapsulation key"); err != nil {
		return nil, err
	}
	pke, err := kpke.ParseEncryptionKey(params, b)
	if err != nil {
		return nil, err
	}
	raw := append([]byte(nil), b...)
	return &EncapsulationKey{params: params, pke: pke, raw: raw, h: utils.SHA3256(raw)}, nil
}

// NewDecapsulationKey parses the expanded decapsulation key encoding
// dkPKE || ek || H(ek) || z. The embedded hash must match the embedded
// encapsulation key (FIPS 203, Section 7.3).
func NewDecapsulationKey(params mlkem.Params, b []byte) (*DecapsulationKey, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := utils.CheckLength(b, params.DecapsulationKeySize(), "decapsulation key"); err != nil {
		return nil, err
	}

	dkSize, ekSize := params.DecryptionKeySize(), params.EncryptionKeySize()
	ek, err := NewEncapsulationKey(params, b[dkSize:dkSize+ekSize])
	if err != nil {
		return nil, err
	}
	h := b[dkSize+ekSize : dkSize+ekSize+32]
	if subtle.ConstantTimeCompare(h, ek.h[:]) != 1 {
		return nil, fmt.Errorf("%w: encapsulation key hash mismatch", mlkem.ErrInvalidKey)
	}

	pke, err := kpke.ParseDecryptionKey(params, b[:dkSize])
	if err != nil {
		return nil, err
	}
	dk := &DecapsulationKey{params: params, pke: pke, ek: ek}
	copy(dk.z[:], b[dkSize+ekSize+32:])
	return dk, nil
}

// Params returns the parameter set of the key.
func (ek *EncapsulationKey) Params() mlkem.Params {
	return ek.params
}

// Bytes returns the serialized encapsulation key.
func (ek *EncapsulationKey) Bytes() []byte {
	return append([]byte(nil), ek.raw...)
}

// Hash returns H(ek) = SHA3-256(ek).
func (ek *EncapsulationKey) Hash() [32]byte {
	return ek.h
}

// Equal reports whether two encapsulation keys are identical.
func (ek *EncapsulationKey) Equal(other *EncapsulationKey) bool {
	return ek.params == other.params && utils.ConstantTimeEqual(ek.raw, other.raw)
}

// Encapsulate generates a shared secret and a ciphertext for ek, drawing the
// 32-byte randomness from rand (crypto/rand when nil).
func (ek *EncapsulationKey) Encapsulate(rand io.Reader) (*mlkem.EncapsulationResult, error) {
	m, err := utils.ReadRandom(rand, mlkem.MessageSize)
	if err != nil {
		return nil, err
	}
	result, err := ek.EncapsulateDeterministic(m)
	utils.Zeroize(m)
	return result, err
}

// EncapsulateDeterministic performs encapsulation with caller supplied
// randomness m (FIPS 203, Algorithm 17). It is meant for reproducible tests;
// in production m must be fresh uniform randomness.
func (ek *EncapsulationKey) EncapsulateDeterministic(m []byte) (*mlkem.EncapsulationResult, error) {
	if err := utils.CheckLength(m, mlkem.MessageSize, "encapsulation randomness"); err != nil {
		return nil, err
	}

	// (K, r) = G(m || H(ek))
	g := utils.SHA3512(m, ek.h[:])
	defer utils.Zeroize(g[:])

	ct, err := ek.pke.Encrypt(nil, m, g[32:])
	if err != nil {
		return nil, err
	}
	return &mlkem.EncapsulationResult{
		SharedSecret: append([]byte(nil), g[:32]...),
		Ciphertext:   ct,
	}, nil
}

// Params returns the parameter set of the key.
func (dk *DecapsulationKey) Params() mlkem.Params {
	return dk.params
}

// EncapsulationKey returns the public key paired with dk.
func (dk *DecapsulationKey) EncapsulationKey() *EncapsulationKey {
	return dk.ek
}

// Bytes returns the expanded encoding dkPKE || ek || H(ek) || z. The caller
// owns the returned secret copy and should zeroize it after use.
func (dk *DecapsulationKey) Bytes() []byte {
	b := make([]byte, 0, dk.params.DecapsulationKeySize())
	b = append(b, dk.pke.Bytes()...)
	b = append(b, dk.ek.raw...)
	b = append(b, dk.ek.h[:]...)
	return append(b, dk.z[:]...)
}

// Seed returns the 64-byte d || z seed the key was generated from. It
// returns false if the key was parsed from its expanded encoding.
func (dk *DecapsulationKey) Seed() ([]byte, bool) {
	if !dk.hasSeed {
		return nil, false
	}
	seed := make([]byte, 0, mlkem.SeedSize)
	seed = append(seed, dk.d[:]...)
	return append(seed, dk.z[:]...), true
}

// Zeroize clears all secret material held by dk. The key must not be used
// afterwards.
func (dk *DecapsulationKey) Zeroize() {
	dk.pke.Zeroize()
	utils.Zeroize(dk.z[:])
	utils.Zeroize(dk.d[:])
	dk.hasSeed = false
}

// Decapsulate recovers the shared secret from ct (FIPS 203, Algorithm 18).
//
// Only a ciphertext of the wrong length is an error. Any other ciphertext
// not produced by encapsulating to the paired key yields a pseudorandom
// secret derived from z and ct. The re-encryption check and the choice
// between the two secrets run in constant time.
func (dk *DecapsulationKey) Decapsulate(ct []byte) ([]byte, error) {
	if err := utils.CheckLength(ct, dk.params.CiphertextSize(), "ciphertext"); err != nil {
		return nil, err
	}

	m, err := dk.pke.Decrypt(ct)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(m)

	g := utils.SHA3512(m, dk.ek.h[:])
	defer utils.Zeroize(g[:])
	kPrime, r := g[:32], g[32:]

	kBar := implicitReject(dk, ct)
	defer utils.Zeroize(kBar)

	reEncrypted, err := dk.ek.pke.Encrypt(make([]byte, 0, len(ct)), m, r)
	if err != nil {
		return nil, err
	}
	equal := subtle.ConstantTimeCompare(ct, reEncrypted)
	return utils.ConstantTimeSelect(equal, kPrime, kBar), nil
}

// implicitReject returns J(z || c) = SHAKE256(z || c, 32).
func implicitReject(dk *DecapsulationKey, ct []byte) []byte {
	return utils.Shake256(mlkem.SharedKeySize, dk.z[:], ct)
}
