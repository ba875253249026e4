package crypto

import (
	"encoding/binary"
)

// Key sizes of the WSC keyblock, WSC 2.0.5 Section 12.
const (
	// AuthKeySize is the length of AuthKey, the HMAC key that authenticates
	// every WSC message from M2 onward.
	AuthKeySize = 32

	// KeyWrapKeySize is the length of KeyWrapKey, the AES-128 key used to
	// encrypt Encrypted Settings attributes.
	KeyWrapKeySize = 16

	// EMSKSize is the length of the Extended Master Session Key exported
	// to the outer EAP layer.
	EMSKSize = 32

	// keyBlockSize is AuthKey || KeyWrapKey || EMSK, the total output of
	// the WSC key derivation step following M2.
	keyBlockSize = AuthKeySize + KeyWrapKeySize + EMSKSize

	// MSKSize is the length of the EAP Master Session Key exported once
	// the handshake completes.
	MSKSize = 64
)

// kdfLabel is the personalization string mixed into every KDF block, WSC
// 2.0.5 Section 12 ("Key Derivation Function").
const kdfLabel = "Wi-Fi Easy and Secure Key Derivation"

// mskLabel distinguishes the EAP MSK export from the M2 keyblock expansion;
// both use the same counter-mode construction over a different key and
// output length, so the label must differ to avoid producing identical
// keystreams from accidentally identical inputs.
const mskLabel = "Wi-Fi Easy and Secure Key Derivation MSK"

// kdf is the WSC 2.0.5 key derivation function: iterated HMAC-SHA256 in
// counter mode. Each block is HMAC(key, i_BE32 || label || outputBits_BE32),
// with i starting at 1; blocks are concatenated and the result truncated to
// outputLen bytes.
func kdf(key []byte, label string, outputLen int) []byte {
	labelBytes := []byte(label)
	var outputBits [4]byte
	binary.BigEndian.PutUint32(outputBits[:], uint32(outputLen)*8)

	out := make([]byte, 0, outputLen+SHA256LenBytes)
	for i := uint32(1); len(out) < outputLen; i++ {
		var counter [4]byte
		binary.BigEndian.PutUint32(counter[:], i)
		block := HMACSHA256Multi(key, counter[:], labelBytes, outputBits[:])
		out = append(out, block[:]...)
	}
	return out[:outputLen]
}

// WSCKeys holds the three keys expanded from KDK by DeriveWSCKeys.
type WSCKeys struct {
	AuthKey    [AuthKeySize]byte
	KeyWrapKey [KeyWrapKeySize]byte
	EMSK       [EMSKSize]byte
}

// DeriveWSCKeys expands KDK into AuthKey || KeyWrapKey || EMSK via the WSC
// KDF, WSC 2.0.5 Section 7.4. KDK itself is
// HMAC-SHA256(DHKey, EnrolleeNonce || EnrolleeMAC || RegistrarNonce),
// computed by the caller (pkg/enrollee) since it needs the nonces and MAC
// from M1/M2.
func DeriveWSCKeys(kdk []byte) WSCKeys {
	block := kdf(kdk, kdfLabel, keyBlockSize)

	var keys WSCKeys
	copy(keys.AuthKey[:], block[:AuthKeySize])
	copy(keys.KeyWrapKey[:], block[AuthKeySize:AuthKeySize+KeyWrapKeySize])
	copy(keys.EMSK[:], block[AuthKeySize+KeyWrapKeySize:])

	for i := range block {
		block[i] = 0
	}

	return keys
}

// DeriveMSK derives the 64-byte EAP Master Session Key from EMSK, exported
// to the outer EAP layer once M8 is processed successfully (WSC 2.0.5
// Section 7.8, "exports_msk").
func DeriveMSK(emsk []byte) [MSKSize]byte {
	block := kdf(emsk, mskLabel, MSKSize)
	var msk [MSKSize]byte
	copy(msk[:], block)
	for i := range block {
		block[i] = 0
	}
	return msk
}
