package enrollee

import "errors"

var (
	// ErrPeerNacked is returned by HandleRequest when the Registrar sends
	// NACK in any non-terminal state. The session transitions to Aborted;
	// the caller is expected to fail the outer EAP method.
	ErrPeerNacked = errors.New("enrollee: peer sent NACK, session aborted")

	// ErrTruncatedFrame is returned when an inbound frame is shorter than
	// the 2-byte op/flags header.
	ErrTruncatedFrame = errors.New("enrollee: frame shorter than op/flags header")

	// errEncryptedSettingsInvalid marks a decryption-layer failure inside
	// openEncryptedSettings: bad block alignment, bad padding, or a
	// KeyWrapAuthenticator mismatch. It is never returned to callers of
	// HandleRequest directly; handlers.go maps it to a diagnostic-code
	// NACK via the accompanying wsctlv.ConfigError.
	errEncryptedSettingsInvalid = errors.New("enrollee: encrypted settings invalid")
)
