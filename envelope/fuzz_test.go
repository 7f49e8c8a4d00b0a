package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/core"
	"github.com/BackendStack21/mlkem-go/kem"
	"github.com/BackendStack21/mlkem-go/session"
)

func FuzzUnmarshal(f *testing.F) {
	dk, err := kem.NewKeyFromSeed(core.MLKEM512Params, make([]byte, mlkem.SeedSize))
	require.NoError(f, err)
	e, err := Seal(dk.EncapsulationKey(), session.AES256GCM, []byte("seed corpus"), nil)
	require.NoError(f, err)
	blob, err := e.Marshal()
	require.NoError(f, err)
	f.Add(blob)
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, b []byte) {
		env, err := Unmarshal(b)
		if err != nil {
			return
		}
		// Whatever decodes must be safe to open.
		_, _ = Open(dk, env)
	})
}
