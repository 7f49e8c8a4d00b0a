// Package envelope implements a one-shot sealed message to an ML-KEM
// encapsulation key: the KEM ciphertext, the AEAD nonce and the sealed
// payload travel together in one CBOR structure.
package envelope

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/core"
	"github.com/BackendStack21/mlkem-go/kem"
	"github.com/BackendStack21/mlkem-go/session"
	"github.com/BackendStack21/mlkem-go/utils"
)

// Version is the envelope format version written by Seal.
const Version = 1

var (
	// Create reusable EncMode interface with immutable options, safe for concurrent use.
	ccbor cbor.EncMode
	dcbor cbor.DecMode
)

// Envelope is a sealed message.
type Envelope struct {
	Version       uint8
	Level         mlkem.SecurityLevel
	Suite         session.Suite
	KEMCiphertext []byte
	Nonce         []byte
	Sealed        []byte
}

// header is authenticated as additional data, binding the KEM ciphertext and
// the algorithm choices to the payload.
type header struct {
	Version       uint8
	Level         mlkem.SecurityLevel
	Suite         session.Suite
	KEMCiphertext []byte
}

func (e *Envelope) additionalData() ([]byte, error) {
	return ccbor.Marshal(&header{
		Version:       e.Version,
		Level:         e.Level,
		Suite:         e.Suite,
		KEMCiphertext: e.KEMCiphertext,
	})
}

// Seal encapsulates to ek, derives a session key from the shared secret and
// seals plaintext under suite. rand supplies both the encapsulation
// randomness and the nonce (crypto/rand when nil).
func Seal(ek *kem.EncapsulationKey, suite session.Suite, plaintext []byte, rand io.Reader) (*Envelope, error) {
	res, err := ek.Encapsulate(rand)
	if err != nil {
		return nil, err
	}
	key := session.DeriveKey(res.SharedSecret)
	utils.Zeroize(res.SharedSecret)
	defer utils.Zeroize(key)

	c, err := session.New(suite, key)
	if err != nil {
		return nil, err
	}
	defer c.Zeroize()

	nonce, err := session.NewNonce(rand, suite)
	if err != nil {
		return nil, err
	}

	e := &Envelope{
		Version:       Version,
		Level:         ek.Params().Level,
		Suite:         suite,
		KEMCiphertext: res.Ciphertext,
		Nonce:         nonce,
	}
	ad, err := e.additionalData()
	if err != nil {
		return nil, err
	}
	if e.Sealed, err = c.Seal(nonce, plaintext, ad); err != nil {
		return nil, err
	}
	return e, nil
}

// Open decapsulates the envelope with dk and returns the plaintext. An
// envelope for another key fails with mlkem.ErrAuthentication, since implicit
// rejection yields an unrelated session key.
func Open(dk *kem.DecapsulationKey, e *Envelope) ([]byte, error) {
	if e.Version != Version {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", mlkem.ErrFormat, e.Version)
	}
	if e.Level != dk.Params().Level {
		return nil, fmt.Errorf("%w: envelope is for %s, key is %s", mlkem.ErrFormat, e.Level, dk.Params().Level)
	}

	ss, err := dk.Decapsulate(e.KEMCiphertext)
	if err != nil {
		return nil, err
	}
	key := session.DeriveKey(ss)
	utils.Zeroize(ss)
	defer utils.Zeroize(key)

	c, err := session.New(e.Suite, key)
	if err != nil {
		return nil, err
	}
	defer c.Zeroize()

	ad, err := e.additionalData()
	if err != nil {
		return nil, err
	}
	return c.Open(e.Nonce, e.Sealed, ad)
}

// Marshal returns the deterministic CBOR encoding of e.
func (e *Envelope) Marshal() ([]byte, error) {
	return ccbor.Marshal(e)
}

// Unmarshal decodes an envelope and checks its fixed-size fields. Decoding
// failures wrap mlkem.ErrFormat.
func Unmarshal(b []byte) (*Envelope, error) {
	if err := utils.CheckMaxLength(b, utils.MaxMessageSize+4096, "envelope"); err != nil {
		return nil, err
	}
	e := new(Envelope)
	if err := dcbor.Unmarshal(b, e); err != nil {
		return nil, fmt.Errorf("%w: %v", mlkem.ErrFormat, err)
	}
	p, err := core.GetParams(e.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mlkem.ErrFormat, err)
	}
	if err := utils.CheckLength(e.KEMCiphertext, p.CiphertextSize(), "KEM ciphertext"); err != nil {
		return nil, err
	}
	if n := e.Suite.NonceSize(); n == 0 {
		return nil, fmt.Errorf("%w: unknown suite %q", mlkem.ErrFormat, e.Suite)
	}
	if err := utils.CheckLength(e.Nonce, e.Suite.NonceSize(), "nonce"); err != nil {
		return nil, err
	}
	return e, nil
}

func init() {
	var err error
	opts := cbor.CanonicalEncOptions()
	ccbor, err = opts.EncMode()
	if err != nil {
		panic(err)
	}
	dcbor, err = cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		panic(err)
	}
}
