// Package enrolleeconfig loads and validates the Enrollee identity and
// test-vector configuration spec.md §6 describes under the WSC-namespaced
// configuration keys, replacing iwd's INI-style [WSC] keyfile section with
// a structured YAML document.
package enrolleeconfig

import (
	"crypto/rand"

	"github.com/google/uuid"

	"github.com/eap-wsc/enrollee/pkg/crypto"
)

// RFBand identifies the radio band the Enrollee is configured for.
type RFBand uint8

const (
	RFBand24GHz RFBand = 0x01
	RFBand5GHz  RFBand = 0x02
	RFBand60GHz RFBand = 0x04
)

// ConfigMethodVirtualDisplayPIN is the default ConfigurationMethods value:
// a virtual (software-rendered) PIN display, WSC 2.0.5's recommended
// default for headless Enrollees.
const ConfigMethodVirtualDisplayPIN uint16 = 0x2008

// defaultDevicePassword is used when DevicePassword is omitted from
// configuration.
const defaultDevicePassword = "00000000"

// Maximum lengths of the M1 string attributes, per WSC 2.0.5's attribute
// table. Values longer than this are truncated before being stored.
const (
	maxManufacturerLen = 64
	maxModelNameLen    = 32
	maxModelNumberLen  = 32
	maxSerialNumberLen = 32
	maxDeviceNameLen   = 32
)

// Config is the validated, ready-to-use Enrollee identity and key material
// produced by Load. Every field here has already passed the checks
// spec.md §6's table requires; Session never re-validates them.
type Config struct {
	EnrolleeMAC       [6]byte
	UUIDE             [16]byte
	EnrolleeNonce     [16]byte
	PrivateKey        [crypto.DH5KeySize]byte
	ConfigMethods     uint16
	Manufacturer      string
	ModelName         string
	ModelNumber       string
	SerialNumber      string
	DeviceName        string
	PrimaryDeviceType [8]byte
	RFBand            RFBand
	OSVersion         uint32
	DevicePassword    string
	ESNonce1          [16]byte
	ESNonce2          [16]byte
	IV1               [16]byte
	IV2               [16]byte
}

// deriveUUIDE computes UUID-E from the Enrollee MAC address. WSC 2.0.5
// leaves the exact hash unspecified to implementers registering a fixed
// namespace; this uses RFC 4122 version-3 (namespace+MD5) UUID generation
// over the OID namespace, a deterministic and collision-resistant choice
// consistent with how UUID-E is used elsewhere in the protocol (as an
// opaque, stable identifier for the Enrollee, never recomputed by the
// Registrar).
func deriveUUIDE(mac [6]byte) [16]byte {
	u := uuid.NewMD5(uuid.NameSpaceOID, mac[:])
	var out [16]byte
	copy(out[:], u[:])
	return out
}

// defaultPrimaryDeviceType returns the WFA-standard "Computer: PC"
// PrimaryDeviceType: category=1 (Computer), OUI=00:50:F2:04 (the WFA
// vendor OUI with WSC's OUI-type byte), subcategory=1 (PC).
func defaultPrimaryDeviceType() [8]byte {
	return [8]byte{0x00, 0x01, 0x00, 0x50, 0xF2, 0x04, 0x00, 0x01}
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
