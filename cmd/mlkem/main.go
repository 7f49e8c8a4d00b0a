// Command mlkem generates ML-KEM keys, encapsulates and decapsulates shared
// secrets, and seals messages to encapsulation keys.
package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"gopkg.in/op/go-logging.v1"

	"github.com/BackendStack21/mlkem-go/config"
	"github.com/BackendStack21/mlkem-go/internal/log"
	"github.com/BackendStack21/mlkem-go/scheme"
	"github.com/BackendStack21/mlkem-go/session"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(versioninfo.Short()),
	); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands.
type app struct {
	configFile string
	logLevel   string
	logFile    string
	format     string

	cfg     *config.Config
	backend *log.Backend
	log     *logging.Logger
}

func newRootCommand() *cobra.Command {
	a := new(app)

	cmd := &cobra.Command{
		Use:   "mlkem",
		Short: "ML-KEM (FIPS 203) key encapsulation tool",
		Long: `A tool for the ML-KEM post-quantum key-encapsulation mechanism.

Keys are stored as PEM files named <name>.kem_public.pem and
<name>.kem_private.pem. Ciphertexts and shared secrets are printed as hex
or base64. Sealed messages are CBOR envelopes carrying the KEM ciphertext
and an AEAD-protected payload.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.backend != nil {
				return a.backend.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "logging level (DEBUG, INFO, NOTICE, WARNING, ERROR)")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "log to this file instead of stderr")
	cmd.PersistentFlags().StringVarP(&a.format, "format", "f", "", "output encoding (hex, base64)")

	cmd.AddCommand(newKeygenCommand(a))
	cmd.AddCommand(newEncapsCommand(a))
	cmd.AddCommand(newDecapsCommand(a))
	cmd.AddCommand(newSealCommand(a))
	cmd.AddCommand(newOpenCommand(a))
	cmd.AddCommand(newDemoCommand(a))
	cmd.AddCommand(newBenchCommand(a))

	return cmd
}

// setup loads the configuration, applies command line overrides and starts
// logging.
func (a *app) setup() error {
	var err error
	if a.configFile != "" {
		if a.cfg, err = config.LoadFile(a.configFile); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		a.cfg = config.Default()
	}

	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.logFile != "" {
		a.cfg.Logging.File = a.logFile
	}
	if a.format != "" {
		a.cfg.Defaults.Format = a.format
	}
	if err := a.cfg.FixupAndValidate(); err != nil {
		return err
	}

	a.backend, err = log.New(a.cfg.Logging.File, a.cfg.Logging.Level, a.cfg.Logging.Disable)
	if err != nil {
		return err
	}
	a.log = a.backend.GetLogger("mlkem")
	a.log.Debugf("configuration: level=%s suite=%s format=%s",
		a.cfg.Defaults.Level, a.cfg.Defaults.Suite, a.cfg.Defaults.Format)
	return nil
}

// scheme resolves the --level flag, falling back to the configured default.
func (a *app) scheme(level string) (*scheme.Scheme, error) {
	if level == "" {
		p, err := a.cfg.Params()
		if err != nil {
			return nil, err
		}
		return scheme.ByLevel(p.Level)
	}
	return scheme.ByName(level)
}

// suite resolves the --suite flag, falling back to the configured default.
func (a *app) suite(name string) (session.Suite, error) {
	if name == "" {
		name = a.cfg.Defaults.Suite
	}
	return session.ParseSuite(name)
}

func (a *app) encode(data []byte) string {
	if a.cfg.Defaults.Format == config.FormatBase64 {
		return base64.StdEncoding.EncodeToString(data)
	}
	return hex.EncodeToString(data)
}

// decodeString accepts hex or base64.
func decodeString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("invalid argument: %q is neither hex nor base64", s)
}
