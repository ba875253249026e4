// Package crypto provides the cryptographic primitives adapter used by the
// EAP-WSC Enrollee state machine: SHA-256, HMAC-SHA-256, AES-CBC-128, the
// DH-5 (RFC 3526 Group 5) key agreement, and the WSC 2.0.5 key derivation
// function. The state machine in pkg/enrollee calls only this package and
// imports no crypto/* package directly.
package crypto

import (
	"crypto/sha256"
	"hash"
)

// SHA-256 output size, per WSC 2.0.5 Section 12 ("Cryptographic Functions").
const (
	// SHA256LenBits is the SHA-256 digest length in bits.
	SHA256LenBits = 256

	// SHA256LenBytes is the SHA-256 digest length in bytes.
	SHA256LenBytes = 32
)

// SHA256 computes the SHA-256 digest of message.
func SHA256(message []byte) [SHA256LenBytes]byte {
	return sha256.Sum256(message)
}

// SHA256Slice computes the SHA-256 digest and returns it as a slice.
func SHA256Slice(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// NewSHA256 returns a new hash.Hash for computing SHA-256 digests
// incrementally, e.g. over data supplied as several non-contiguous buffers.
func NewSHA256() hash.Hash {
	return sha256.New()
}
