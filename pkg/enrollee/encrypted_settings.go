package enrollee

import (
	"github.com/eap-wsc/enrollee/pkg/crypto"
	"github.com/eap-wsc/enrollee/pkg/wsctlv"
)

// sealEncryptedSettings builds the Encrypted Settings attribute value for an
// outgoing M3/M5/M7: it appends a KeyWrapAuthenticator attribute to inner
// (the caller-built plaintext TLV body), pads, and CBC-encrypts under
// KeyWrapKey with iv, prepending iv to the result per WSC 2.0.5 Section
// 12's Encrypted Settings format.
func sealEncryptedSettings(authKey, keyWrapKey, iv, inner []byte) ([]byte, error) {
	mac := computeKeyWrapAuthenticator(authKey, inner)

	w := wsctlv.NewWriter()
	w.PutBytes(wsctlv.TypeKeyWrapAuthenticator, mac[:])

	plaintext := make([]byte, 0, len(inner)+len(w.Bytes()))
	plaintext = append(plaintext, inner...)
	plaintext = append(plaintext, w.Bytes()...)

	padded := padBlock(plaintext)

	ciphertext, err := crypto.AESCBCEncrypt(keyWrapKey, iv, padded)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(iv)+len(ciphertext))
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// openEncryptedSettings reverses sealEncryptedSettings for an inbound
// M4/M6/M8: it splits the prepended IV, decrypts, validates padding,
// verifies the trailing KeyWrapAuthenticator, and returns the inner
// plaintext TLV body with that attribute stripped off.
//
// A non-nil wsctlv.ConfigError return value identifies which NACK code the
// caller should emit; it is only meaningful when err is also non-nil.
func openEncryptedSettings(authKey, keyWrapKey, encSettings []byte) ([]byte, wsctlv.ConfigError, error) {
	if len(encSettings) < crypto.AESBlockSize*2 || (len(encSettings)-crypto.AESBlockSize)%crypto.AESBlockSize != 0 {
		return nil, wsctlv.ConfigErrorDecryptionCRCFailure, errEncryptedSettingsInvalid
	}

	iv := encSettings[:crypto.AESBlockSize]
	ciphertext := encSettings[crypto.AESBlockSize:]

	padded, err := crypto.AESCBCDecrypt(keyWrapKey, iv, ciphertext)
	if err != nil {
		return nil, wsctlv.ConfigErrorDecryptionCRCFailure, err
	}

	plaintext, ok := unpadBlock(padded)
	if !ok {
		return nil, wsctlv.ConfigErrorDecryptionCRCFailure, errEncryptedSettingsInvalid
	}

	if !verifyKeyWrapAuthenticator(authKey, plaintext) {
		return nil, wsctlv.ConfigErrorDecryptionCRCFailure, errEncryptedSettingsInvalid
	}

	inner := plaintext[:len(plaintext)-KeyWrapAuthenticatorSize]
	return inner, 0, nil
}

// padBlock appends pad bytes so len(data)+padLen is a multiple of the AES
// block size, with padLen in [1, blockSize] and every pad byte equal to
// padLen itself (WSC 2.0.5's variant of PKCS padding: pad length is always
// present, even when data is already block-aligned).
func padBlock(data []byte) []byte {
	padLen := crypto.AESBlockSize - (len(data) % crypto.AESBlockSize)
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// unpadBlock validates and strips padBlock's padding. ok is false if the
// trailing pad byte is out of range or the pad bytes are not uniform.
func unpadBlock(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > crypto.AESBlockSize || padLen > len(data) {
		return nil, false
	}
	for i := len(data) - padLen; i < len(data); i++ {
		if data[i] != byte(padLen) {
			return nil, false
		}
	}
	return data[:len(data)-padLen], true
}
