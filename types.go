package mlkem

// SecurityLevel names an ML-KEM parameter set.
type SecurityLevel string

const (
	// MLKEM512 is the NIST category 1 parameter set.
	MLKEM512 SecurityLevel = "ML-KEM-512"
	// MLKEM768 is the NIST category 3 parameter set.
	MLKEM768 SecurityLevel = "ML-KEM-768"
	// MLKEM1024 is the NIST category 5 parameter set.
	MLKEM1024 SecurityLevel = "ML-KEM-1024"
)

// Fixed ring and protocol constants shared by every parameter set.
const (
	// N is the degree of the ring Z_q[X]/(X^N + 1).
	N = 256
	// Q is the prime modulus.
	Q = 3329

	// SharedKeySize is the size of the shared secret.
	SharedKeySize = 32
	// SeedSize is the size of the key generation seed d || z.
	SeedSize = 64
	// MessageSize is the size of the encapsulation randomness m.
	MessageSize = 32

	// EncodingSize12 is the size of a 12-bit packed ring element.
	EncodingSize12 = N * 12 / 8
)

// =============================================================================
// Parameter Types
// =============================================================================

// Params is a complete ML-KEM parameter set. Parameters never change within a
// session, so every operation takes them as an explicit construction-time value.
type Params struct {
	Level SecurityLevel `json:"level" toml:"level"`
	K     int           `json:"k" toml:"k"`       // Module rank
	Eta1  int           `json:"eta1" toml:"eta1"` // CBD width for s, e and r
	Eta2  int           `json:"eta2" toml:"eta2"` // CBD width for e1 and e2
	DU    int           `json:"du" toml:"du"`     // Compression width of u
	DV    int           `json:"dv" toml:"dv"`     // Compression width of v
}

// EncryptionKeySize returns the size of the inner K-PKE encryption key.
func (p Params) EncryptionKeySize() int {
	return p.K*EncodingSize12 + 32
}

// DecryptionKeySize returns the size of the inner K-PKE decryption key.
func (p Params) DecryptionKeySize() int {
	return p.K * EncodingSize12
}

// EncapsulationKeySize returns the size of a serialized encapsulation key.
func (p Params) EncapsulationKeySize() int {
	return p.EncryptionKeySize()
}

// DecapsulationKeySize returns the size of a serialized decapsulation key:
// dkPKE || ek || H(ek) || z.
func (p Params) DecapsulationKeySize() int {
	return p.DecryptionKeySize() + p.EncryptionKeySize() + 32 + 32
}

// CompressedUSize returns the size of the u component of a ciphertext.
func (p Params) CompressedUSize() int {
	return p.K * N * p.DU / 8
}

// CompressedVSize returns the size of the v component of a ciphertext.
func (p Params) CompressedVSize() int {
	return N * p.DV / 8
}

// CiphertextSize returns the size of a ciphertext.
func (p Params) CiphertextSize() int {
	return p.CompressedUSize() + p.CompressedVSize()
}

// =============================================================================
// KEM Types
// =============================================================================

// EncapsulationResult contains the result of KEM encapsulation.
type EncapsulationResult struct {
	SharedSecret []byte
	Ciphertext   []byte
}
