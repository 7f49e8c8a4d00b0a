package utils

import (
	"bytes"
	"crypto/sha3"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	mlkem "github.com/BackendStack21/mlkem-go"
)

func TestShake256(t *testing.T) {
	want := sha3.SumSHAKE256([]byte("abcdef"), 64)
	require.Equal(t, want, Shake256(64, []byte("abc"), []byte("def")))

	// Outputs of different lengths share a prefix.
	require.Equal(t, want[:32], Shake256(32, []byte("abcdef")))

	out := make([]byte, 16)
	Shake256Into(out, []byte("abc"), nil, []byte("def"))
	require.Equal(t, want[:16], out)
}

func TestNewShake128(t *testing.T) {
	h := NewShake128([]byte("rho"), []byte{1, 2})
	got := make([]byte, 168*2)
	_, err := h.Read(got)
	require.NoError(t, err)
	require.Equal(t, sha3.SumSHAKE128([]byte("rho\x01\x02"), len(got)), got)
}

func TestSHA3(t *testing.T) {
	require.Equal(t, sha3.Sum256([]byte("hello world")), SHA3256([]byte("hello "), []byte("world")))
	require.Equal(t, sha3.Sum512([]byte("hello world")), SHA3512([]byte("hello"), []byte(" world")))
}

func TestReadRandom(t *testing.T) {
	b, err := ReadRandom(bytes.NewReader([]byte{1, 2, 3, 4}), 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)

	_, err = ReadRandom(bytes.NewReader([]byte{1}), 3)
	require.Error(t, err)

	b1, err := ReadRandom(nil, 32)
	require.NoError(t, err)
	b2, err := ReadRandom(nil, 32)
	require.NoError(t, err)
	require.NotEqual(t, b1, b2)

	saved := RandReader
	defer func() { RandReader = saved }()
	RandReader = bytes.NewReader(bytes.Repeat([]byte{7}, 8))
	b, err = ReadRandom(nil, 8)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{7}, 8), b)
}

func TestConstantTime(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 4}
	require.True(t, ConstantTimeEqual(a, []byte{1, 2, 3}))
	require.False(t, ConstantTimeEqual(a, b))
	require.False(t, ConstantTimeEqual(a, a[:2]))
	require.True(t, ConstantTimeEqual(nil, []byte{}))

	require.Equal(t, a, ConstantTimeSelect(1, a, b))
	require.Equal(t, b, ConstantTimeSelect(0, a, b))

	// The result never aliases the inputs.
	sel := ConstantTimeSelect(1, a, b)
	sel[0] = 9
	require.Equal(t, byte(1), a[0])

	require.Panics(t, func() { ConstantTimeSelect(1, a, b[:2]) })
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3}
	Zeroize(b)
	require.Equal(t, []byte{0, 0, 0}, b)
}

func TestCheckLength(t *testing.T) {
	require.NoError(t, CheckLength(make([]byte, 4), 4, "field"))

	err := CheckLength(make([]byte, 3), 4, "field")
	require.True(t, errors.Is(err, mlkem.ErrFormat))
	require.Contains(t, err.Error(), "field must be 4 bytes, got 3")

	require.NoError(t, CheckMaxLength(make([]byte, 4), 4, "field"))
	require.ErrorIs(t, CheckMaxLength(make([]byte, 5), 4, "field"), mlkem.ErrFormat)
}
