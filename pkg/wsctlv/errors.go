package wsctlv

import "errors"

var (
	// ErrTruncated is returned when an attribute stream ends mid-header or
	// mid-value.
	ErrTruncated = errors.New("wsctlv: truncated attribute stream")

	// ErrAttributeMissing is returned when a required attribute is absent.
	ErrAttributeMissing = errors.New("wsctlv: required attribute missing")

	// ErrAttributeLength is returned when an attribute's value is not the
	// length its accessor expects.
	ErrAttributeLength = errors.New("wsctlv: attribute has unexpected length")
)
