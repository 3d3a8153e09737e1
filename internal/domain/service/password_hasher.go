// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within
// a single entity.
package service

// PasswordHasher defines the interface for one-way hashing and verification.
// The same function family covers both passwords and numeric OTP codes, so
// stored digests are only ever compared through Check, never by equality.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext secret.
	Hash(plaintext string) (string, error)

	// Check compares a plaintext secret with a hash to see if they match.
	Check(plaintext, hash string) bool
}
