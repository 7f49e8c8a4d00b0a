package session

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/sha3"

	mlkem "github.com/BackendStack21/mlkem-go"
)

func fixedSharedSecret() []byte {
	ss := make([]byte, mlkem.SharedKeySize)
	for i := range ss {
		ss[i] = byte(i)
	}
	return ss
}

func TestDeriveKey(t *testing.T) {
	ss := fixedSharedSecret()
	want := make([]byte, KeySize)
	sha3.ShakeSum256(want, ss)
	require.Equal(t, want, DeriveKey(ss))
	require.NotEqual(t, DeriveKey(ss), DeriveKey(ss[1:]))
}

func TestParseSuite(t *testing.T) {
	cases := map[string]Suite{
		"":                  AES256GCM,
		"aes256gcm":         AES256GCM,
		"AES256GCM":         AES256GCM,
		"ChaCha20-Poly1305": ChaCha20Poly1305,
		"xchacha20poly1305": XChaCha20Poly1305,
	}
	for in, want := range cases {
		got, err := ParseSuite(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseSuite("rot13")
	require.Error(t, err)
}

// TestHelloWorldGolden checks the AES-256-GCM output for a fixed shared
// secret and nonce against an independent computation.
func TestHelloWorldGolden(t *testing.T) {
	key := DeriveKey(fixedSharedSecret())
	nonce := make([]byte, 12)
	plaintext := []byte("Hello, world!")

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	want := gcm.Seal(nil, nonce, plaintext, nil)

	c, err := New(AES256GCM, key)
	require.NoError(t, err)
	sealed, err := c.Seal(nonce, plaintext, nil)
	require.NoError(t, err)
	require.Equal(t, want, sealed)
	require.Len(t, sealed, len(plaintext)+AES256GCM.Overhead())

	opened, err := c.Open(nonce, sealed, nil)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)

	for i := range sealed {
		corrupt := append([]byte(nil), sealed...)
		corrupt[i] ^= 0x80
		_, err := c.Open(nonce, corrupt, nil)
		require.ErrorIs(t, err, mlkem.ErrAuthentication, "byte %d", i)
	}
}

func TestChaCha20Poly1305MatchesXCrypto(t *testing.T) {
	key := DeriveKey(fixedSharedSecret())
	nonce := bytes.Repeat([]byte{3}, 12)
	plaintext := []byte("Hello, world!")
	ad := []byte("header")

	ref, err := chacha20poly1305.New(key)
	require.NoError(t, err)

	c, err := New(ChaCha20Poly1305, key)
	require.NoError(t, err)
	sealed, err := c.Seal(nonce, plaintext, ad)
	require.NoError(t, err)
	require.Equal(t, ref.Seal(nil, nonce, plaintext, ad), sealed)
}

func TestRoundTripAllSuites(t *testing.T) {
	key := DeriveKey(fixedSharedSecret())
	msg := bytes.Repeat([]byte("lattice"), 100)
	ad := []byte("associated")

	for _, suite := range Suites {
		t.Run(string(suite), func(t *testing.T) {
			c, err := New(suite, key)
			require.NoError(t, err)
			require.Equal(t, suite, c.Suite())

			nonce, err := NewNonce(nil, suite)
			require.NoError(t, err)
			require.Len(t, nonce, suite.NonceSize())

			sealed, err := c.Seal(nonce, msg, ad)
			require.NoError(t, err)
			opened, err := c.Open(nonce, sealed, ad)
			require.NoError(t, err)
			require.Equal(t, msg, opened)

			_, err = c.Open(nonce, sealed, []byte("other"))
			require.ErrorIs(t, err, mlkem.ErrAuthentication)

			_, err = c.Seal(nonce[1:], msg, ad)
			require.ErrorIs(t, err, mlkem.ErrFormat)
			_, err = c.Open(nonce, sealed[:10], ad)
			require.ErrorIs(t, err, mlkem.ErrFormat)

			other, err := New(suite, DeriveKey([]byte("different")))
			require.NoError(t, err)
			_, err = other.Open(nonce, sealed, ad)
			require.ErrorIs(t, err, mlkem.ErrAuthentication)
		})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(AES256GCM, make([]byte, 16))
	require.ErrorIs(t, err, mlkem.ErrFormat)

	_, err = New(Suite("des"), make([]byte, KeySize))
	require.Error(t, err)

	_, err = NewNonce(nil, Suite("des"))
	require.Error(t, err)
}

func TestZeroize(t *testing.T) {
	key := DeriveKey(fixedSharedSecret())
	c, err := New(ChaCha20Poly1305, key)
	require.NoError(t, err)
	c.Zeroize()
	require.Equal(t, make([]byte, KeySize), c.key)
	// The caller's key is untouched.
	require.NotEqual(t, make([]byte, KeySize), key)
}
