// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token provides the cryptographic primitives for magic links:
// high-entropy token generation, SHA-256 hashing and constant-time
// verification. Only hashes are ever persisted.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// DefaultLength is the number of random bytes in a generated token.
const DefaultLength = 32

// Pair holds a plaintext token and its hash. The plaintext goes into the
// outbound email, the hash into the database.
type Pair struct {
	Token string
	Hash  string
}

// Generate returns a URL-safe token with byteLength bytes of entropy.
// The unpadded base64url alphabet needs no percent-encoding, so the token
// can be embedded verbatim in a URL path segment.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultLength
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash computes the hex-encoded SHA-256 digest of a token.
func Hash(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the hash of tok and compares it to storedHash in
// constant time. It fails closed: empty or malformed input returns false,
// never an error.
func Verify(tok, storedHash string) bool {
	if tok == "" || storedHash == "" {
		return false
	}
	stored, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	computed := sha256.Sum256([]byte(tok))
	if len(stored) != len(computed) {
		return false
	}
	return subtle.ConstantTimeCompare(computed[:], stored) == 1
}

// GeneratePair mints a new token and its hash for issuance.
func GeneratePair() (Pair, error) {
	tok, err := Generate(DefaultLength)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Token: tok, Hash: Hash(tok)}, nil
}
