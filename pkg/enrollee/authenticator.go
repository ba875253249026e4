package enrollee

import (
	"github.com/eap-wsc/enrollee/pkg/crypto"
	"github.com/eap-wsc/enrollee/pkg/wsctlv"
)

// AuthenticatorSize is the width of the trailing Authenticator attribute
// value carried by every WSC message after M1.
const AuthenticatorSize = 8

// KeyWrapAuthenticatorSize is the width of the trailing
// KeyWrapAuthenticator inside an Encrypted Settings plaintext.
const KeyWrapAuthenticatorSize = 12

// computeAuthenticator returns HMAC(AuthKey, prev || curWithoutLast8)[0:8],
// WSC 2.0.5 Section 12's running-HMAC chain: every message after M1 is
// authenticated over itself plus the immediately preceding message on the
// wire (sent by the other party).
func computeAuthenticator(authKey, prev, curWithoutLast8 []byte) [AuthenticatorSize]byte {
	full := crypto.HMACSHA256Multi(authKey, prev, curWithoutLast8)
	var mac [AuthenticatorSize]byte
	copy(mac[:], full[:AuthenticatorSize])
	return mac
}

// verifyAuthenticator checks that cur's trailing 8 bytes equal
// HMAC(AuthKey, prev || cur_without_last_8)[0:8]. cur must be at least
// AuthenticatorSize bytes long.
func verifyAuthenticator(authKey, prev, cur []byte) bool {
	if len(cur) < AuthenticatorSize {
		return false
	}
	body := cur[:len(cur)-AuthenticatorSize]
	want := cur[len(cur)-AuthenticatorSize:]
	got := computeAuthenticator(authKey, prev, body)
	return crypto.HMACEqual(got[:], want)
}

// appendAuthenticator builds and appends the trailing Authenticator
// attribute for an Enrollee-built M3/M5/M7: the MAC covers prev plus body
// with the Authenticator attribute's own 4-byte type/length header already
// in place, matching how verifyAuthenticator strips only the 8-byte value
// off an inbound message (the header itself is always covered, only the
// MAC value at the very end is excluded).
func appendAuthenticator(authKey, prev, body []byte) []byte {
	withHeader := wsctlv.AppendAuthenticator(body, [AuthenticatorSize]byte{})
	withHeader = withHeader[:len(withHeader)-AuthenticatorSize]
	mac := computeAuthenticator(authKey, prev, withHeader)
	return append(withHeader, mac[:]...)
}

// computeKeyWrapAuthenticator returns HMAC(AuthKey, body)[0:8], the
// integrity tag carried inside every Encrypted Settings plaintext as the
// trailing KeyWrapAuthenticator attribute, distinct from the outer
// Authenticator chain. body is the plaintext with the 12-byte
// KeyWrapAuthenticator attribute itself (4-byte header + 8-byte value)
// excluded.
func computeKeyWrapAuthenticator(authKey, body []byte) [AuthenticatorSize]byte {
	full := crypto.HMACSHA256Multi(authKey, body)
	var mac [AuthenticatorSize]byte
	copy(mac[:], full[:AuthenticatorSize])
	return mac
}

// verifyKeyWrapAuthenticator checks plaintext's trailing
// KeyWrapAuthenticator attribute: a 4-byte type/length header followed by
// an 8-byte MAC value, 12 bytes in all. The MAC covers everything in
// plaintext before that attribute.
func verifyKeyWrapAuthenticator(authKey, plaintext []byte) bool {
	if len(plaintext) < KeyWrapAuthenticatorSize {
		return false
	}
	body := plaintext[:len(plaintext)-KeyWrapAuthenticatorSize]
	want := plaintext[len(plaintext)-AuthenticatorSize:]
	got := computeKeyWrapAuthenticator(authKey, body)
	return crypto.HMACEqual(got[:], want)
}
