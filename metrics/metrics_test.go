package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/BackendStack21/mlkem-go/scheme"
)

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := Instrument(scheme.MLKEM512(), reg)
	require.NoError(t, err)
	require.Equal(t, "ML-KEM-512", s.Name())

	pk, sk, err := s.GenerateKeyPair()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		ct, ss, err := s.Encapsulate(pk)
		require.NoError(t, err)
		got, err := s.Decapsulate(sk, ct)
		require.NoError(t, err)
		require.Equal(t, ss, got)
	}
	_, err = s.Decapsulate(sk, []byte{1, 2, 3})
	require.Error(t, err)

	m, err := New(reg)
	require.NoError(t, err)

	name := s.Name()
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(name, OpKeyGen)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.operations.WithLabelValues(name, OpEncapsulate)))
	require.Equal(t, 4.0, testutil.ToFloat64(m.operations.WithLabelValues(name, OpDecapsulate)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(name, OpDecapsulate)))
	require.Equal(t, 0.0, testutil.ToFloat64(m.failures.WithLabelValues(name, OpEncapsulate)))
}

func TestDecapsulateRejectionIsNotAFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	s := m.Instrument(scheme.MLKEM768())

	pk, sk, err := s.GenerateKeyPair()
	require.NoError(t, err)
	ct, _, err := s.Encapsulate(pk)
	require.NoError(t, err)
	ct[0] ^= 0xff

	_, err = s.Decapsulate(sk, ct)
	require.NoError(t, err)
	require.Equal(t, 0.0, testutil.ToFloat64(m.failures.WithLabelValues(s.Name(), OpDecapsulate)))
}

func TestDeriveKeyPairCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	s := m.Instrument(scheme.MLKEM1024())

	s.DeriveKeyPair(make([]byte, s.SeedSize()))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(s.Name(), OpKeyGen)))

	n, err := testutil.GatherAndCount(reg, "mlkem_kem_operation_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
