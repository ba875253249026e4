package enrolleeconfig

import "errors"

// Sentinel errors returned by Load when a configuration document fails
// validation. A configuration rejection prevents Session construction
// entirely (spec §7, class 3).
var (
	ErrMissingEnrolleeMAC  = errors.New("enrolleeconfig: EnrolleeMAC is required")
	ErrInvalidMAC          = errors.New("enrolleeconfig: EnrolleeMAC is not a valid colon-separated MAC address")
	ErrMissingRFBand       = errors.New("enrolleeconfig: RFBand is required")
	ErrInvalidRFBand       = errors.New("enrolleeconfig: RFBand must be one of 2.4GHz, 5GHz, 60GHz")
	ErrInvalidHexField     = errors.New("enrolleeconfig: field is not valid hex")
	ErrInvalidFieldLength  = errors.New("enrolleeconfig: hex field decoded to the wrong length")
	ErrDevicePasswordShort = errors.New("enrolleeconfig: DevicePassword must be at least 8 hex characters")
	ErrDevicePasswordHex   = errors.New("enrolleeconfig: DevicePassword must contain only hex digits")
	ErrInvalidDeviceType   = errors.New("enrolleeconfig: PrimaryDeviceType must match category-OUI-subcategory format")
	ErrPrivateKeyGenerate  = errors.New("enrolleeconfig: failed to generate DH-5 private key")
)
