package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HMACSHA256 computes HMAC-SHA256(key, message) and returns the full 32-byte
// MAC. The Enrollee uses this both as a generic primitive and, truncated to
// 8 bytes, as the Authenticator and KeyWrapAuthenticator (WSC 2.0.5 Section
// 12).
func HMACSHA256(key, message []byte) [SHA256LenBytes]byte {
	h := hmac.New(sha256.New, key)
	h.Write(message)
	var result [SHA256LenBytes]byte
	copy(result[:], h.Sum(nil))
	return result
}

// HMACSHA256Multi computes HMAC-SHA256 over the concatenation of parts
// without copying them into one buffer first. WSC authenticates messages as
// prev||cur and hashes E-S/PSK/PKE/PKR tuples; building those with repeated
// Write calls avoids an intermediate allocation.
func HMACSHA256Multi(key []byte, parts ...[]byte) [SHA256LenBytes]byte {
	h := hmac.New(sha256.New, key)
	for _, p := range parts {
		h.Write(p)
	}
	var result [SHA256LenBytes]byte
	copy(result[:], h.Sum(nil))
	return result
}

// HMACEqual compares two MACs in constant time. Use this instead of
// bytes.Equal for Authenticator, KeyWrapAuthenticator, and R-Hash
// comparisons: WSC 2.0.5 Section 7.1 treats verification failure as a
// security boundary, not just a parse error.
func HMACEqual(mac1, mac2 []byte) bool {
	return hmac.Equal(mac1, mac2)
}
