package mlkem

import "errors"

var (
	// ErrFormat indicates a serialized input of the wrong length, or a
	// non-canonical encoding. The caller must reject the input.
	ErrFormat = errors.New("mlkem: malformed input")

	// ErrInvalidKey indicates structurally invalid key material.
	ErrInvalidKey = errors.New("mlkem: invalid key")

	// ErrAuthentication indicates that an AEAD tag did not verify. No
	// plaintext is released.
	ErrAuthentication = errors.New("mlkem: message authentication failed")

	// ErrInternal indicates an exhausted sampling budget. Reaching it
	// with honestly generated seeds is cryptographically negligible.
	ErrInternal = errors.New("mlkem: internal error")
)
