// Package config provides the mlkem command line tool's configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/core"
	"github.com/BackendStack21/mlkem-go/session"
)

const (
	defaultLogLevel   = "NOTICE"
	defaultLevel      = mlkem.MLKEM768
	defaultFormat     = FormatHex
	defaultIterations = 100
)

// Output encodings for binary values printed by the tool.
const (
	FormatHex    = "hex"
	FormatBase64 = "base64"
)

var defaultLogging = Logging{
	Disable: false,
	File:    "",
	Level:   defaultLogLevel,
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stderr will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToUpper(lCfg.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
	}
	lCfg.Level = lvl // Force uppercase.
	return nil
}

// Defaults are the values used when a command line flag is not given.
type Defaults struct {
	// Level is the ML-KEM parameter set, e.g. "ML-KEM-768" or "512".
	Level string

	// Suite is the AEAD used by seal, open and demo.
	Suite string

	// Format is the encoding of printed ciphertexts and secrets, "hex" or
	// "base64".
	Format string
}

func (dCfg *Defaults) applyDefaults() {
	if dCfg.Level == "" {
		dCfg.Level = string(defaultLevel)
	}
	if dCfg.Suite == "" {
		dCfg.Suite = string(session.DefaultSuite)
	}
	if dCfg.Format == "" {
		dCfg.Format = defaultFormat
	}
}

func (dCfg *Defaults) validate() error {
	level, err := core.ParseLevel(dCfg.Level)
	if err != nil {
		return fmt.Errorf("config: Defaults: %v", err)
	}
	dCfg.Level = string(level)

	suite, err := session.ParseSuite(dCfg.Suite)
	if err != nil {
		return fmt.Errorf("config: Defaults: %v", err)
	}
	dCfg.Suite = string(suite)

	switch dCfg.Format = strings.ToLower(dCfg.Format); dCfg.Format {
	case FormatHex, FormatBase64:
	default:
		return fmt.Errorf("config: Defaults: Format '%v' is invalid", dCfg.Format)
	}
	return nil
}

// Bench is the benchmark configuration.
type Bench struct {
	// Iterations is the number of encapsulate/decapsulate rounds.
	Iterations int
}

func (bCfg *Bench) applyDefaults() {
	if bCfg.Iterations == 0 {
		bCfg.Iterations = defaultIterations
	}
}

func (bCfg *Bench) validate() error {
	if bCfg.Iterations < 0 {
		return errors.New("config: Bench: Iterations must not be negative")
	}
	return nil
}

// Config is the top level configuration.
type Config struct {
	Logging  *Logging
	Defaults *Defaults
	Bench    *Bench
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration.
func (cfg *Config) FixupAndValidate() error {
	if cfg.Logging == nil {
		l := defaultLogging
		cfg.Logging = &l
	}
	if cfg.Defaults == nil {
		cfg.Defaults = &Defaults{}
	}
	if cfg.Bench == nil {
		cfg.Bench = &Bench{}
	}
	cfg.Defaults.applyDefaults()
	cfg.Bench.applyDefaults()

	if err := cfg.Logging.validate(); err != nil {
		return err
	}
	if err := cfg.Defaults.validate(); err != nil {
		return err
	}
	return cfg.Bench.validate()
}

// Params returns the parameter set named by Defaults.Level.
func (cfg *Config) Params() (mlkem.Params, error) {
	return core.GetParams(mlkem.SecurityLevel(cfg.Defaults.Level))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		panic(err)
	}
	return cfg
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	if b == nil {
		return nil, errors.New("config: no nil buffer as config file")
	}

	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
