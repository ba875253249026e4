package crypto

import (
	"crypto/aes"
	"crypto/cipher"
)

// AESBlockSize is the AES block size in bytes, and therefore also the
// required width of CBC initialization vectors.
const AESBlockSize = aes.BlockSize

// AESCBCEncrypt encrypts plaintext under key using AES-128 in CBC mode with
// the given IV. plaintext must already be padded to a multiple of
// AESBlockSize; the WSC-specific padding scheme for Encrypted Settings
// attributes lives in pkg/enrollee, not here, since this package deals only
// in raw block-cipher primitives.
func AESCBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != KeyWrapKeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != AESBlockSize {
		return nil, ErrInvalidIVSize
	}
	if len(plaintext)%AESBlockSize != 0 {
		return nil, ErrCiphertextNotBlockAligned
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	return ciphertext, nil
}

// AESCBCDecrypt decrypts ciphertext under key using AES-128 in CBC mode with
// the given IV. The caller is responsible for stripping and validating any
// padding in the result.
func AESCBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != KeyWrapKeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != AESBlockSize {
		return nil, ErrInvalidIVSize
	}
	if len(ciphertext)%AESBlockSize != 0 {
		return nil, ErrCiphertextNotBlockAligned
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return plaintext, nil
}
