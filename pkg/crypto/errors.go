package crypto

import "errors"

// ErrInvalidKeySize is returned by AES-CBC-128 functions when a key is not
// exactly 16 bytes (AES-128).
var ErrInvalidKeySize = errors.New("crypto: invalid AES key size, must be 16 bytes")

// ErrInvalidIVSize is returned when an IV is not exactly the AES block size.
var ErrInvalidIVSize = errors.New("crypto: invalid IV size, must be 16 bytes")

// ErrCiphertextNotBlockAligned is returned when CBC ciphertext is not a
// whole multiple of the AES block size.
var ErrCiphertextNotBlockAligned = errors.New("crypto: ciphertext is not a multiple of the block size")
