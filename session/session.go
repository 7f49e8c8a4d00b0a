// Package session turns an ML-KEM shared secret into a symmetric key and
// protects application data with an AEAD under that key.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"strings"

	katchacha "github.com/katzenpost/chacha20poly1305"
	"golang.org/x/crypto/chacha20poly1305"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/utils"
)

// KeySize is the size of the derived symmetric key for every suite.
const KeySize = 32

// Suite identifies an AEAD construction.
type Suite string

const (
	// AES256GCM is AES-256 in Galois/Counter Mode with a 96-bit nonce.
	AES256GCM Suite = "aes256gcm"
	// ChaCha20Poly1305 is the RFC 8439 AEAD with a 96-bit nonce.
	ChaCha20Poly1305 Suite = "chacha20poly1305"
	// XChaCha20Poly1305 is the extended-nonce variant with a 192-bit nonce,
	// safe for random nonces at high message volume.
	XChaCha20Poly1305 Suite = "xchacha20poly1305"
)

// DefaultSuite is used when no suite is configured.
const DefaultSuite = AES256GCM

// Suites lists the supported suites.
var Suites = []Suite{AES256GCM, ChaCha20Poly1305, XChaCha20Poly1305}

// ParseSuite maps a case-insensitive suite name to a Suite. The empty string
// selects DefaultSuite.
func ParseSuite(s string) (Suite, error) {
	if s == "" {
		return DefaultSuite, nil
	}
	name := strings.ReplaceAll(strings.ToLower(s), "-", "")
	for _, suite := range Suites {
		if string(suite) == name {
			return suite, nil
		}
	}
	return "", fmt.Errorf("session: unknown suite %q", s)
}

// NonceSize returns the nonce size of the suite, or 0 if it is unknown.
func (s Suite) NonceSize() int {
	switch s {
	case AES256GCM, ChaCha20Poly1305:
		return 12
	case XChaCha20Poly1305:
		return chacha20poly1305.NonceSizeX
	default:
		return 0
	}
}

// Overhead is the tag size appended to every sealed message.
func (s Suite) Overhead() int {
	return 16
}

// DeriveKey derives the symmetric key as SHAKE256(sharedSecret) truncated
// to KeySize bytes.
func DeriveKey(sharedSecret []byte) []byte {
	return utils.Shake256(KeySize, sharedSecret)
}

// NewNonce reads a fresh nonce for suite from rand (crypto/rand when nil).
func NewNonce(rand io.Reader, suite Suite) ([]byte, error) {
	n := suite.NonceSize()
	if n == 0 {
		return nil, fmt.Errorf("session: unknown suite %q", suite)
	}
	return utils.ReadRandom(rand, n)
}

// Cipher seals and opens messages under one derived key.
type Cipher struct {
	suite Suite
	key   []byte
	aead  cipher.AEAD
}

// New returns a Cipher for suite keyed with key, which must be KeySize
// bytes. The Cipher keeps its own copy of key.
func New(suite Suite, key []byte) (*Cipher, error) {
	if err := utils.CheckLength(key, KeySize, "session key"); err != nil {
		return nil, err
	}
	c := &Cipher{suite: suite, key: append([]byte(nil), key...)}

	var err error
	switch suite {
	case AES256GCM:
		var block cipher.Block
		if block, err = aes.NewCipher(c.key); err == nil {
			c.aead, err = cipher.NewGCM(block)
		}
	case ChaCha20Poly1305:
		c.aead, err = katchacha.New(c.key)
	case XChaCha20Poly1305:
		c.aead, err = chacha20poly1305.NewX(c.key)
	default:
		err = fmt.Errorf("session: unknown suite %q", suite)
	}
	if err != nil {
		utils.Zeroize(c.key)
		return nil, err
	}
	return c, nil
}

// Suite returns the AEAD suite of c.
func (c *Cipher) Suite() Suite {
	return c.suite
}

// Seal encrypts and authenticates plaintext together with the additional
// data ad, returning ciphertext || tag. A nonce must never be reused with
// the same key.
func (c *Cipher) Seal(nonce, plaintext, ad []byte) ([]byte, error) {
	if err := utils.CheckLength(nonce, c.aead.NonceSize(), "nonce"); err != nil {
		return nil, err
	}
	if err := utils.CheckMaxLength(plaintext, utils.MaxMessageSize, "plaintext"); err != nil {
		return nil, err
	}
	return c.aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open authenticates and decrypts sealed. Any modification of nonce,
// sealed or ad yields an error wrapping mlkem.ErrAuthentication and no
// plaintext.
func (c *Cipher) Open(nonce, sealed, ad []byte) ([]byte, error) {
	if err := utils.CheckLength(nonce, c.aead.NonceSize(), "nonce"); err != nil {
		return nil, err
	}
	if len(sealed) < c.aead.Overhead() {
		return nil, fmt.Errorf("%w: sealed message shorter than tag", mlkem.ErrFormat)
	}
	plaintext, err := c.aead.Open(nil, nonce, sealed, ad)
	if err != nil {
		return nil, mlkem.ErrAuthentication
	}
	return plaintext, nil
}

// Zeroize clears the key copy held by c. The AEAD keeps its own expanded
// state, so c must not be used afterwards.
func (c *Cipher) Zeroize() {
	utils.Zeroize(c.key)
	if r, ok := c.aead.(interface{ Reset() }); ok {
		r.Reset()
	}
}
