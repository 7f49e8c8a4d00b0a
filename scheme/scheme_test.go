package scheme

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/katzenpost/hpqc/kem"
	"github.com/katzenpost/hpqc/kem/pem"
	"github.com/stretchr/testify/require"

	mlkem "github.com/BackendStack21/mlkem-go"
)

func TestByName(t *testing.T) {
	cases := map[string]*Scheme{
		"ML-KEM-512": MLKEM512(),
		"ml-kem-768": MLKEM768(),
		"1024":       MLKEM1024(),
		"mlkem768":   MLKEM768(),
	}
	for name, want := range cases {
		got, err := ByName(name)
		require.NoError(t, err, name)
		require.Same(t, want, got, name)
	}
	_, err := ByName("kyber")
	require.Error(t, err)
}

func TestSchemeSizes(t *testing.T) {
	sizes := []struct {
		s          *Scheme
		pk, sk, ct int
	}{
		{MLKEM512(), 800, 1632, 768},
		{MLKEM768(), 1184, 2400, 1088},
		{MLKEM1024(), 1568, 3168, 1568},
	}
	for _, tc := range sizes {
		require.Equal(t, tc.pk, tc.s.PublicKeySize(), tc.s.Name())
		require.Equal(t, tc.sk, tc.s.PrivateKeySize(), tc.s.Name())
		require.Equal(t, tc.ct, tc.s.CiphertextSize(), tc.s.Name())
		require.Equal(t, 32, tc.s.SharedKeySize())
		require.Equal(t, 64, tc.s.SeedSize())
	}
}

func TestGenericRoundTrip(t *testing.T) {
	for _, s := range All() {
		var sch kem.Scheme = s
		t.Run(sch.Name(), func(t *testing.T) {
			pk, sk, err := sch.GenerateKeyPair()
			require.NoError(t, err)
			require.True(t, pk.Equal(sk.Public()))

			ct, ss, err := sch.Encapsulate(pk)
			require.NoError(t, err)
			require.Len(t, ct, sch.CiphertextSize())

			ss2, err := sch.Decapsulate(sk, ct)
			require.NoError(t, err)
			require.Equal(t, ss, ss2)

			pkBlob, err := pk.MarshalBinary()
			require.NoError(t, err)
			pk2, err := sch.UnmarshalBinaryPublicKey(pkBlob)
			require.NoError(t, err)
			require.True(t, pk.Equal(pk2))

			skBlob, err := sk.MarshalBinary()
			require.NoError(t, err)
			sk2, err := sch.UnmarshalBinaryPrivateKey(skBlob)
			require.NoError(t, err)
			require.True(t, sk.Equal(sk2))
		})
	}
}

func TestDeriveKeyPair(t *testing.T) {
	s := MLKEM768()
	seed := make([]byte, s.SeedSize())
	pk1, sk1 := s.DeriveKeyPair(seed)
	pk2, sk2 := s.DeriveKeyPair(seed)
	require.True(t, pk1.Equal(pk2))
	require.True(t, sk1.Equal(sk2))

	require.PanicsWithValue(t, kem.ErrSeedSize, func() {
		s.DeriveKeyPair(seed[:32])
	})
}

func TestPEM(t *testing.T) {
	s := MLKEM512()
	pk, sk, err := s.GenerateKeyPair()
	require.NoError(t, err)

	text, err := pk.MarshalText()
	require.NoError(t, err)
	require.Contains(t, string(text), "ML-KEM-512 PUBLIC KEY")

	pk2, err := s.UnmarshalTextPublicKey(text)
	require.NoError(t, err)
	require.True(t, pk.Equal(pk2))

	sk2, err := s.UnmarshalTextPrivateKey(pem.ToPrivatePEMBytes(sk))
	require.NoError(t, err)
	require.True(t, sk.Equal(sk2))

	// A key of another parameter set is refused by type.
	_, err = MLKEM768().UnmarshalTextPublicKey(text)
	require.Error(t, err)

	dir := t.TempDir()
	pubFile := filepath.Join(dir, "alice.kem_public.pem")
	privFile := filepath.Join(dir, "alice.kem_private.pem")
	require.NoError(t, pem.PublicKeyToFile(pubFile, pk))
	require.NoError(t, pem.PrivateKeyToFile(privFile, sk))

	pk3, err := pem.FromPublicPEMFile(pubFile, s)
	require.NoError(t, err)
	require.True(t, pk.Equal(pk3))
	sk3, err := pem.FromPrivatePEMFile(privFile, s)
	require.NoError(t, err)
	require.True(t, sk.Equal(sk3))
}

func TestErrors(t *testing.T) {
	s := MLKEM768()
	_, err := s.UnmarshalBinaryPublicKey(make([]byte, 10))
	require.True(t, errors.Is(err, mlkem.ErrFormat))
	require.True(t, errors.Is(err, kem.ErrPubKeySize))

	_, err = s.UnmarshalBinaryPrivateKey(make([]byte, 10))
	require.ErrorIs(t, err, mlkem.ErrFormat)

	pk, sk, err := MLKEM512().GenerateKeyPair()
	require.NoError(t, err)
	_, _, err = s.Encapsulate(pk)
	require.ErrorIs(t, err, kem.ErrTypeMismatch)
	_, err = s.Decapsulate(sk, make([]byte, s.CiphertextSize()))
	require.ErrorIs(t, err, kem.ErrTypeMismatch)

	_, sk768, err := s.GenerateKeyPair()
	require.NoError(t, err)
	_, err = s.Decapsulate(sk768, make([]byte, 5))
	require.ErrorIs(t, err, mlkem.ErrFormat)

	require.False(t, pk.Equal(sk768.Public()))
}
