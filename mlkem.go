// Package mlkem implements the ML-KEM module-lattice key-encapsulation
// mechanism (NIST FIPS 203) together with the session-key derivation and
// authenticated-encryption step that consumes its shared secret.
//
// This package holds the types shared by every layer of the engine. The
// algorithm itself lives in the sub-packages.
package mlkem

// Version of the mlkem-go implementation.
const Version = "0.3.0"

// API summary:
//
// Key Encapsulation (KEM):
//   - kem.GenerateKey(params, rand) - Generate a decapsulation key (and its encapsulation key)
//   - kem.NewKeyFromSeed(params, seed) - Deterministic key generation from a 64-byte d||z seed
//   - ek.Encapsulate(rand) - Generate shared secret and ciphertext
//   - ek.EncapsulateDeterministic(m) - Encapsulate with caller supplied randomness
//   - dk.Decapsulate(ct) - Recover shared secret (implicit rejection on tampering)
//
// Session layer:
//   - session.DeriveKey(ss) - SHAKE256 key derivation
//   - session.New(suite, key) - AES-256-GCM or ChaCha20-Poly1305 AEAD
//   - envelope.Seal(ek, suite, plaintext, rand) / envelope.Open(dk, env)
//
// Parameters:
//   - core.GetParams(level) - Get parameters for a security level
//   - MLKEM512, MLKEM768, MLKEM1024
