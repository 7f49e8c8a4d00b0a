package kpke

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/core"
)

func TestEncryptDecrypt(t *testing.T) {
	for _, level := range core.Levels {
		t.Run(string(level), func(t *testing.T) {
			p, err := core.GetParams(level)
			require.NoError(t, err)

			ek, dk, err := KeyGen(p, bytes.Repeat([]byte{1}, 32))
			require.NoError(t, err)

			m := bytes.Repeat([]byte{0x5a}, mlkem.MessageSize)
			r := bytes.Repeat([]byte{0x33}, 32)
			ct, err := ek.Encrypt(nil, m, r)
			require.NoError(t, err)
			require.Len(t, ct, p.CiphertextSize())

			got, err := dk.Decrypt(ct)
			require.NoError(t, err)
			require.Equal(t, m, got)

			// Encryption is a deterministic function of (ek, m, r).
			ct2, err := ek.Encrypt([]byte{9}, m, r)
			require.NoError(t, err)
			require.Equal(t, ct, ct2[1:])
		})
	}
}

func TestKeyBytesRoundTrip(t *testing.T) {
	p := core.MLKEM768Params
	ek, dk, err := KeyGen(p, make([]byte, 32))
	require.NoError(t, err)

	ekBytes := ek.Bytes()
	require.Len(t, ekBytes, p.EncryptionKeySize())
	ek2, err := ParseEncryptionKey(p, ekBytes)
	require.NoError(t, err)
	require.Equal(t, ekBytes, ek2.Bytes())
	require.Equal(t, ek.aT, ek2.aT)

	dkBytes := dk.Bytes()
	dk2, err := ParseDecryptionKey(p, dkBytes)
	require.NoError(t, err)
	require.Equal(t, dkBytes, dk2.Bytes())

	dk2.Zeroize()
	require.Equal(t, make([]byte, len(dkBytes)), dk2.Bytes())
}

func TestKeyGen_SeedLength(t *testing.T) {
	_, _, err := KeyGen(core.MLKEM512Params, make([]byte, 31))
	require.True(t, errors.Is(err, mlkem.ErrFormat))
}

func TestParseEncryptionKey_Errors(t *testing.T) {
	p := core.MLKEM512Params
	_, err := ParseEncryptionKey(p, make([]byte, p.EncryptionKeySize()-1))
	require.True(t, errors.Is(err, mlkem.ErrFormat))

	bad := make([]byte, p.EncryptionKeySize())
	bad[0], bad[1] = 0xff, 0xff
	_, err = ParseEncryptionKey(p, bad)
	require.True(t, errors.Is(err, mlkem.ErrInvalidKey))
}

func TestEncrypt_InputLengths(t *testing.T) {
	p := core.MLKEM512Params
	ek, dk, err := KeyGen(p, make([]byte, 32))
	require.NoError(t, err)

	_, err = ek.Encrypt(nil, make([]byte, 31), make([]byte, 32))
	require.True(t, errors.Is(err, mlkem.ErrFormat))
	_, err = ek.Encrypt(nil, make([]byte, 32), make([]byte, 33))
	require.True(t, errors.Is(err, mlkem.ErrFormat))
	_, err = dk.Decrypt(make([]byte, p.CiphertextSize()+1))
	require.True(t, errors.Is(err, mlkem.ErrFormat))
}
