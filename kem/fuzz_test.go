package kem

import (
	"testing"

	"github.com/stretchr/testify/require"

	mlkemgo "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/core"
)

// FuzzDecapsulate feeds arbitrary ciphertexts to a fixed key. Well-sized
// inputs always yield a secret; anything else is a format error.
func FuzzDecapsulate(f *testing.F) {
	p := core.MLKEM512Params
	dk, err := NewKeyFromSeed(p, make([]byte, mlkemgo.SeedSize))
	require.NoError(f, err)
	res, err := dk.EncapsulationKey().EncapsulateDeterministic(make([]byte, 32))
	require.NoError(f, err)
	f.Add(res.Ciphertext)
	f.Add(make([]byte, p.CiphertextSize()))

	f.Fuzz(func(t *testing.T, ct []byte) {
		ss, err := dk.Decapsulate(ct)
		if len(ct) != p.CiphertextSize() {
			require.ErrorIs(t, err, mlkemgo.ErrFormat)
			return
		}
		require.NoError(t, err)
		require.Len(t, ss, mlkemgo.SharedKeySize)
	})
}
