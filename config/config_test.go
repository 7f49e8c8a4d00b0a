package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/session"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "NOTICE", cfg.Logging.Level)
	require.False(t, cfg.Logging.Disable)
	require.Equal(t, string(mlkem.MLKEM768), cfg.Defaults.Level)
	require.Equal(t, string(session.AES256GCM), cfg.Defaults.Suite)
	require.Equal(t, FormatHex, cfg.Defaults.Format)
	require.Equal(t, 100, cfg.Bench.Iterations)

	p, err := cfg.Params()
	require.NoError(t, err)
	require.Equal(t, 3, p.K)
}

func TestLoad(t *testing.T) {
	const body = `
[Logging]
  Level = "debug"
  File = "/tmp/mlkem.log"

[Defaults]
  Level = "512"
  Suite = "ChaCha20-Poly1305"
  Format = "BASE64"

[Bench]
  Iterations = 7
`
	cfg, err := Load([]byte(body))
	require.NoError(t, err)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, "/tmp/mlkem.log", cfg.Logging.File)
	require.Equal(t, string(mlkem.MLKEM512), cfg.Defaults.Level)
	require.Equal(t, string(session.ChaCha20Poly1305), cfg.Defaults.Suite)
	require.Equal(t, FormatBase64, cfg.Defaults.Format)
	require.Equal(t, 7, cfg.Bench.Iterations)
}

func TestLoad_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":    `[Logging`,
		"undecoded": "[Logging]\nColor = true\n",
		"log level": "[Logging]\nLevel = \"loud\"\n",
		"kem level": "[Defaults]\nLevel = \"2048\"\n",
		"suite":     "[Defaults]\nSuite = \"rc4\"\n",
		"format":    "[Defaults]\nFormat = \"pem\"\n",
		"bench":     "[Bench]\nIterations = -1\n",
	} {
		_, err := Load([]byte(body))
		require.Error(t, err, name)
	}
	_, err := Load(nil)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlkem.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Defaults]\nLevel = \"ML-KEM-1024\"\n"), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(mlkem.MLKEM1024), cfg.Defaults.Level)
	require.Equal(t, "NOTICE", cfg.Logging.Level)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
