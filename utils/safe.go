// This file contains length checks for serialized inputs, so that malformed
// sizes are rejected before any parsing or allocation happens.

package utils

import (
	"fmt"

	mlkem "github.com/BackendStack21/mlkem-go"
)

// MaxMessageSize is the maximum plaintext accepted by the session layer.
const MaxMessageSize = 1 << 26 // 64MB

// CheckLength returns an error wrapping mlkem.ErrFormat unless len(data)
// equals want.
func CheckLength(data []byte, want int, what string) error {
	if len(data) != want {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", mlkem.ErrFormat, what, want, len(data))
	}
	return nil
}

// CheckMaxLength returns an error wrapping mlkem.ErrFormat if len(data)
// exceeds maxAllowed.
func CheckMaxLength(data []byte, maxAllowed int, what string) error {
	if len(data) > maxAllowed {
		return fmt.Errorf("%w: %s exceeds %d bytes", mlkem.ErrFormat, what, maxAllowed)
	}
	return nil
}
