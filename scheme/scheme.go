// Package scheme exposes the ML-KEM parameter sets through the hpqc KEM
// interfaces so they plug into code written against
// github.com/katzenpost/hpqc/kem, including its PEM helpers.
package scheme

import (
	"crypto/hmac"
	"fmt"
	"strings"

	"github.com/katzenpost/hpqc/kem"
	"github.com/katzenpost/hpqc/kem/pem"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/core"
	mlkemkem "github.com/BackendStack21/mlkem-go/kem"
)

// tell the type checker that we obey these interfaces
var _ kem.Scheme = (*Scheme)(nil)
var _ kem.PublicKey = (*PublicKey)(nil)
var _ kem.PrivateKey = (*PrivateKey)(nil)

var (
	mlkem512  = &Scheme{params: core.MLKEM512Params}
	mlkem768  = &Scheme{params: core.MLKEM768Params}
	mlkem1024 = &Scheme{params: core.MLKEM1024Params}
)

// MLKEM512 returns the ML-KEM-512 scheme.
func MLKEM512() *Scheme { return mlkem512 }

// MLKEM768 returns the ML-KEM-768 scheme.
func MLKEM768() *Scheme { return mlkem768 }

// MLKEM1024 returns the ML-KEM-1024 scheme.
func MLKEM1024() *Scheme { return mlkem1024 }

// All returns every scheme in increasing strength.
func All() []*Scheme {
	return []*Scheme{mlkem512, mlkem768, mlkem1024}
}

// ByLevel returns the scheme for a security level.
func ByLevel(level mlkem.SecurityLevel) (*Scheme, error) {
	for _, s := range All() {
		if s.params.Level == level {
			return s, nil
		}
	}
	return nil, fmt.Errorf("scheme: unknown security level %q", level)
}

// ByName resolves any spelling accepted by core.ParseLevel, as well as the
// scheme names themselves, case-insensitively.
func ByName(name string) (*Scheme, error) {
	for _, s := range All() {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
	}
	level, err := core.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return ByLevel(level)
}

// Scheme is one ML-KEM parameter set.
type Scheme struct {
	params mlkem.Params
}

// Params returns the parameter set.
func (s *Scheme) Params() mlkem.Params {
	return s.params
}

func (s *Scheme) Name() string {
	return string(s.params.Level)
}

func (s *Scheme) GenerateKeyPair() (kem.PublicKey, kem.PrivateKey, error) {
	dk, err := mlkemkem.GenerateKey(s.params, nil)
	if err != nil {
		return nil, nil, err
	}
	sk := &PrivateKey{scheme: s, dk: dk}
	return sk.Public(), sk, nil
}

func (s *Scheme) Encapsulate(pk kem.PublicKey) (ct, ss []byte, err error) {
	pub, ok := pk.(*PublicKey)
	if !ok || pub.scheme != s {
		return nil, nil, kem.ErrTypeMismatch
	}
	res, err := pub.ek.Encapsulate(nil)
	if err != nil {
		return nil, nil, err
	}
	return res.Ciphertext, res.SharedSecret, nil
}

func (s *Scheme) Decapsulate(sk kem.PrivateKey, ct []byte) ([]byte, error) {
	priv, ok := sk.(*PrivateKey)
	if !ok || priv.scheme != s {
		return nil, kem.ErrTypeMismatch
	}
	if len(ct) != s.CiphertextSize() {
		return nil, fmt.Errorf("%w: %w", kem.ErrCiphertextSize, mlkem.ErrFormat)
	}
	return priv.dk.Decapsulate(ct)
}

func (s *Scheme) UnmarshalBinaryPublicKey(b []byte) (kem.PublicKey, error) {
	if len(b) != s.PublicKeySize() {
		return nil, fmt.Errorf("%w: %w", kem.ErrPubKeySize, mlkem.ErrFormat)
	}
	ek, err := mlkemkem.NewEncapsulationKey(s.params, b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{scheme: s, ek: ek}, nil
}

func (s *Scheme) UnmarshalBinaryPrivateKey(b []byte) (kem.PrivateKey, error) {
	if len(b) != s.PrivateKeySize() {
		return nil, fmt.Errorf("%w: %w", kem.ErrPrivKeySize, mlkem.ErrFormat)
	}
	dk, err := mlkemkem.NewDecapsulationKey(s.params, b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{scheme: s, dk: dk}, nil
}

func (s *Scheme) UnmarshalTextPublicKey(text []byte) (kem.PublicKey, error) {
	return pem.FromPublicPEMBytes(text, s)
}

func (s *Scheme) UnmarshalTextPrivateKey(text []byte) (kem.PrivateKey, error) {
	return pem.FromPrivatePEMBytes(text, s)
}

func (s *Scheme) CiphertextSize() int {
	return s.params.CiphertextSize()
}

func (s *Scheme) SharedKeySize() int {
	return mlkem.SharedKeySize
}

func (s *Scheme) PrivateKeySize() int {
	return s.params.DecapsulationKeySize()
}

func (s *Scheme) PublicKeySize() int {
	return s.params.EncapsulationKeySize()
}

// DeriveKeyPair derives a key pair from a 64-byte d || z seed. It panics with
// kem.ErrSeedSize on a seed of the wrong size.
func (s *Scheme) DeriveKeyPair(seed []byte) (kem.PublicKey, kem.PrivateKey) {
	if len(seed) != s.SeedSize() {
		panic(kem.ErrSeedSize)
	}
	dk, err := mlkemkem.NewKeyFromSeed(s.params, seed)
	if err != nil {
		panic(err)
	}
	sk := &PrivateKey{scheme: s, dk: dk}
	return sk.Public(), sk
}

func (s *Scheme) SeedSize() int {
	return mlkem.SeedSize
}

// PublicKey wraps an encapsulation key.
type PublicKey struct {
	scheme *Scheme
	ek     *mlkemkem.EncapsulationKey
}

// EncapsulationKey returns the wrapped key.
func (p *PublicKey) EncapsulationKey() *mlkemkem.EncapsulationKey {
	return p.ek
}

func (p *PublicKey) Scheme() kem.Scheme {
	return p.scheme
}

func (p *PublicKey) MarshalText() (text []byte, err error) {
	return pem.ToPublicPEMBytes(p), nil
}

func (p *PublicKey) MarshalBinary() ([]byte, error) {
	return p.ek.Bytes(), nil
}

func (p *PublicKey) Equal(pubkey kem.PublicKey) bool {
	other, ok := pubkey.(*PublicKey)
	if !ok || other.scheme != p.scheme {
		return false
	}
	return p.ek.Equal(other.ek)
}

// PrivateKey wraps a decapsulation key.
type PrivateKey struct {
	scheme *Scheme
	dk     *mlkemkem.DecapsulationKey
}

// DecapsulationKey returns the wrapped key.
func (p *PrivateKey) DecapsulationKey() *mlkemkem.DecapsulationKey {
	return p.dk
}

func (p *PrivateKey) Scheme() kem.Scheme {
	return p.scheme
}

// MarshalBinary returns the expanded decapsulation key encoding.
func (p *PrivateKey) MarshalBinary() ([]byte, error) {
	return p.dk.Bytes(), nil
}

func (p *PrivateKey) Equal(privkey kem.PrivateKey) bool {
	other, ok := privkey.(*PrivateKey)
	if !ok || other.scheme != p.scheme {
		return false
	}
	return hmac.Equal(p.dk.Bytes(), other.dk.Bytes())
}

func (p *PrivateKey) Public() kem.PublicKey {
	return &PublicKey{scheme: p.scheme, ek: p.dk.EncapsulationKey()}
}
