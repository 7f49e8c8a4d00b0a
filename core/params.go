// Package core provides parameter sets and validation for ML-KEM.
package core

import (
	"errors"
	"fmt"
	"strings"

	mlkem "github.com/BackendStack21/mlkem-go"
)

// MLKEM512Params is the parameter set for NIST security category 1.
var MLKEM512Params = mlkem.Params{
	Level: mlkem.MLKEM512,
	K:     2,
	Eta1:  3,
	Eta2:  2,
	DU:    10,
	DV:    4,
}

// MLKEM768Params is the parameter set for NIST security category 3.
var MLKEM768Params = mlkem.Params{
	Level: mlkem.MLKEM768,
	K:     3,
	Eta1:  2,
	Eta2:  2,
	DU:    10,
	DV:    4,
}

// MLKEM1024Params is the parameter set for NIST security category 5.
var MLKEM1024Params = mlkem.Params{
	Level: mlkem.MLKEM1024,
	K:     4,
	Eta1:  2,
	Eta2:  2,
	DU:    11,
	DV:    5,
}

// Levels lists the supported security levels in increasing strength.
var Levels = []mlkem.SecurityLevel{mlkem.MLKEM512, mlkem.MLKEM768, mlkem.MLKEM1024}

// GetParams returns the parameter set for the given security level.
func GetParams(level mlkem.SecurityLevel) (mlkem.Params, error) {
	switch level {
	case mlkem.MLKEM512:
		return MLKEM512Params, nil
	case mlkem.MLKEM768:
		return MLKEM768Params, nil
	case mlkem.MLKEM1024:
		return MLKEM1024Params, nil
	default:
		return mlkem.Params{}, fmt.Errorf("unknown security level: %s", level)
	}
}

// ParseLevel maps the spellings accepted on the command line and in config
// files ("512", "ML-KEM-768", "mlkem1024", ...) to a security level.
func ParseLevel(s string) (mlkem.SecurityLevel, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "").Replace(norm)
	norm = strings.TrimPrefix(norm, "mlkem")
	switch norm {
	case "512":
		return mlkem.MLKEM512, nil
	case "768":
		return mlkem.MLKEM768, nil
	case "1024":
		return mlkem.MLKEM1024, nil
	default:
		return "", fmt.Errorf("unknown security level: %q", s)
	}
}

// ValidateParams validates the parameter set for security and consistency.
// The set must name a known level and equal that level's parameters exactly.
func ValidateParams(params mlkem.Params) error {
	if params.K < 2 || params.K > 4 {
		return errors.New("module rank must be 2, 3 or 4")
	}
	if params.Eta1 != 2 && params.Eta1 != 3 {
		return errors.New("eta1 must be 2 or 3")
	}
	if params.Eta2 != 2 {
		return errors.New("eta2 must be 2")
	}
	if params.DU != 10 && params.DU != 11 {
		return errors.New("du must be 10 or 11")
	}
	if params.DV != 4 && params.DV != 5 {
		return errors.New("dv must be 4 or 5")
	}
	known, err := GetParams(params.Level)
	if err != nil {
		return err
	}
	if known != params {
		return fmt.Errorf("parameters do not match the %s parameter set", params.Level)
	}
	return nil
}
