// Package wsctlv implements the WSC 2.0.5 attribute wire format: a flat
// sequence of (2-byte big-endian type, 2-byte big-endian length, value)
// records, plus the M1..M8/NACK/DONE message layouts built from them. It
// plays the same role for the Enrollee state machine in pkg/enrollee that
// pkg/tlv plays for Matter messages, but WSC attributes never nest control
// bytes or tags the way Matter's TLV does — the format is a plain
// type-length-value stream.
package wsctlv

import (
	"encoding/binary"
)

// Type identifies a WSC attribute. Values are from the WSC 2.0.5 attribute
// registry; only the subset the Enrollee role touches is defined here.
type Type uint16

const (
	TypeAPChannel            Type = 0x1001
	TypeAssocState           Type = 0x1002
	TypeAuthType             Type = 0x1003
	TypeAuthTypeFlags        Type = 0x1004
	TypeAuthenticator        Type = 0x1005
	TypeConfigMethods        Type = 0x1008
	TypeConfigError          Type = 0x1009
	TypeConnType             Type = 0x100C
	TypeConnTypeFlags        Type = 0x100D
	TypeCredential           Type = 0x100E
	TypeEncrType             Type = 0x100F
	TypeEncrTypeFlags        Type = 0x1010
	TypeDeviceName           Type = 0x1011
	TypeDevicePasswordID     Type = 0x1012
	TypeEHash1               Type = 0x1014
	TypeEHash2               Type = 0x1015
	TypeESNonce1             Type = 0x1016
	TypeESNonce2             Type = 0x1017
	TypeEncryptedSettings    Type = 0x1018
	TypeEnrolleeNonce        Type = 0x101A
	TypeKeyWrapAuthenticator Type = 0x101E
	TypeMACAddress           Type = 0x1020
	TypeManufacturer         Type = 0x1021
	TypeMsgType              Type = 0x1022
	TypeModelName            Type = 0x1023
	TypeModelNumber          Type = 0x1024
	TypeNetworkIndex         Type = 0x1026
	TypeNetworkKey           Type = 0x1027
	TypeOSVersion            Type = 0x102D
	TypePublicKey            Type = 0x1032
	TypeRegistrarNonce       Type = 0x1039
	TypeRFBands              Type = 0x103C
	TypeRHash1               Type = 0x103D
	TypeRHash2               Type = 0x103E
	TypeRSNonce1             Type = 0x103F
	TypeRSNonce2             Type = 0x1040
	TypeSerialNumber         Type = 0x1042
	TypeWPSState             Type = 0x1044
	TypeSSID                 Type = 0x1045
	TypeUUIDE                Type = 0x1047
	TypeUUIDR                Type = 0x1048
	TypeVendorExtension      Type = 0x1049
	TypeVersion              Type = 0x104A
	TypePrimaryDeviceType    Type = 0x1054
)

// MsgType is the value of the MsgType attribute (0x1022), identifying which
// WSC message a PDU carries.
type MsgType uint8

const (
	MsgTypeM1   MsgType = 0x04
	MsgTypeM2   MsgType = 0x05
	MsgTypeM2D  MsgType = 0x06
	MsgTypeM3   MsgType = 0x07
	MsgTypeM4   MsgType = 0x08
	MsgTypeM5   MsgType = 0x09
	MsgTypeM6   MsgType = 0x0A
	MsgTypeM7   MsgType = 0x0B
	MsgTypeM8   MsgType = 0x0C
	MsgTypeACK  MsgType = 0x0D
	MsgTypeNACK MsgType = 0x0E
	MsgTypeDone MsgType = 0x0F
)

// ConfigError is the value of the ConfigError attribute (0x1009).
type ConfigError uint16

const (
	ConfigErrorNoError                   ConfigError = 0x00
	ConfigErrorDecryptionCRCFailure      ConfigError = 0x11
	ConfigErrorDevicePasswordAuthFailure ConfigError = 0x12
)

// Version is the fixed WSC protocol version byte carried in every message.
const Version byte = 0x10

// attrHeaderSize is the width of a WSC attribute header: 2-byte type +
// 2-byte length, both big-endian.
const attrHeaderSize = 4

// Writer builds a sequence of WSC attributes into an in-memory buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty attribute Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// PutBytes appends an attribute carrying v verbatim.
func (w *Writer) PutBytes(t Type, v []byte) {
	var hdr [attrHeaderSize]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(t))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(v)))
	w.buf = append(w.buf, hdr[:]...)
	w.buf = append(w.buf, v...)
}

// PutUint8 appends a 1-byte attribute.
func (w *Writer) PutUint8(t Type, v uint8) {
	w.PutBytes(t, []byte{v})
}

// PutUint16 appends a 2-byte big-endian attribute.
func (w *Writer) PutUint16(t Type, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.PutBytes(t, b[:])
}

// PutUint32 appends a 4-byte big-endian attribute.
func (w *Writer) PutUint32(t Type, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.PutBytes(t, b[:])
}

// wfaVendorID is the Wi-Fi Alliance vendor ID that prefixes every WSC
// VendorExtension attribute value.
var wfaVendorID = [3]byte{0x00, 0x37, 0x2A}

// version2SubID and version2Value are the VendorExtension subelement that
// flags a message as WSC 2.0+: subelement 0x00, one byte, value 0x20.
const (
	version2SubID uint8 = 0x00
	version2Value uint8 = 0x20
)

// PutVersion2 appends the WSC 2.0 VendorExtension attribute every
// Enrollee-sent message carries: WFA vendor ID followed by the version2
// subelement.
func (w *Writer) PutVersion2() {
	v := append(append([]byte{}, wfaVendorID[:]...), version2SubID, 1, version2Value)
	w.PutBytes(TypeVendorExtension, v)
}

// Bytes returns the encoded attribute stream.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// attr is one decoded attribute record.
type attr struct {
	typ   Type
	value []byte
}

// Reader parses a flat WSC attribute stream. Unlike pkg/tlv's Reader, there
// is no container nesting to track: Parse reads the whole stream up front
// into an ordered slice, since WSC messages are small (well under a
// kilobyte) and callers need random attribute-type lookup, not streaming.
type Reader struct {
	attrs []attr
}

// Parse decodes buf into a Reader. It returns ErrTruncated if any attribute
// header or value runs past the end of buf.
func Parse(buf []byte) (*Reader, error) {
	r := &Reader{}
	for len(buf) > 0 {
		if len(buf) < attrHeaderSize {
			return nil, ErrTruncated
		}
		t := Type(binary.BigEndian.Uint16(buf[0:2]))
		l := binary.BigEndian.Uint16(buf[2:4])
		buf = buf[attrHeaderSize:]
		if int(l) > len(buf) {
			return nil, ErrTruncated
		}
		r.attrs = append(r.attrs, attr{typ: t, value: buf[:l]})
		buf = buf[l:]
	}
	return r, nil
}

// Get returns the value of the first attribute of type t, or
// (nil, ErrAttributeMissing) if none is present.
func (r *Reader) Get(t Type) ([]byte, error) {
	for _, a := range r.attrs {
		if a.typ == t {
			return a.value, nil
		}
	}
	return nil, ErrAttributeMissing
}

// GetAll returns the values of every attribute of type t, in wire order.
// WSC messages may carry more than one Credential attribute in M8.
func (r *Reader) GetAll(t Type) [][]byte {
	var out [][]byte
	for _, a := range r.attrs {
		if a.typ == t {
			out = append(out, a.value)
		}
	}
	return out
}

// Has reports whether an attribute of type t is present.
func (r *Reader) Has(t Type) bool {
	for _, a := range r.attrs {
		if a.typ == t {
			return true
		}
	}
	return false
}

// GetUint8 returns a 1-byte attribute's value.
func (r *Reader) GetUint8(t Type) (uint8, error) {
	v, err := r.Get(t)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, ErrAttributeLength
	}
	return v[0], nil
}

// GetUint16 returns a 2-byte big-endian attribute's value.
func (r *Reader) GetUint16(t Type) (uint16, error) {
	v, err := r.Get(t)
	if err != nil {
		return 0, err
	}
	if len(v) != 2 {
		return 0, ErrAttributeLength
	}
	return binary.BigEndian.Uint16(v), nil
}

// GetUint32 returns a 4-byte big-endian attribute's value.
func (r *Reader) GetUint32(t Type) (uint32, error) {
	v, err := r.Get(t)
	if err != nil {
		return 0, err
	}
	if len(v) != 4 {
		return 0, ErrAttributeLength
	}
	return binary.BigEndian.Uint32(v), nil
}

// GetFixed copies an attribute's value into a fixed-size slice, returning
// ErrAttributeLength if the attribute is not exactly len(dst) bytes.
func (r *Reader) GetFixed(t Type, dst []byte) error {
	v, err := r.Get(t)
	if err != nil {
		return err
	}
	if len(v) != len(dst) {
		return ErrAttributeLength
	}
	copy(dst, v)
	return nil
}
