package wsctlv

// Fixed-width field sizes used throughout the WSC attribute set.
const (
	UUIDSize              = 16
	MACSize               = 6
	NonceSize             = 16
	PublicKeySize         = 192
	HashSize              = 32
	AuthenticatorSize     = 8
	PrimaryDeviceTypeSize = 8
)

// M1 is the Enrollee's opening message, built once at configuration load
// time and sent in response to START.
type M1 struct {
	UUIDE             [UUIDSize]byte
	MACAddress        [MACSize]byte
	EnrolleeNonce     [NonceSize]byte
	PublicKey         [PublicKeySize]byte
	AuthTypeFlags     uint16
	EncrTypeFlags     uint16
	ConnTypeFlags     uint8
	ConfigMethods     uint16
	WPSState          uint8
	Manufacturer      string
	ModelName         string
	ModelNumber       string
	SerialNumber      string
	PrimaryDeviceType [PrimaryDeviceTypeSize]byte
	DeviceName        string
	RFBands           uint8
	AssocState        uint16
	DevicePasswordID  uint16
	ConfigError       uint16
	OSVersion         uint32

	// Version2 controls whether the WSC 2.0 VendorExtension attribute is
	// written. Every Enrollee-sent message sets this true; it exists as a
	// field rather than being unconditional so M2D/test fixtures can omit
	// it.
	Version2 bool
}

// Encode builds the M1 attribute body, without the outer Version/MsgType
// framing (added by Session when the body is sent).
func (m *M1) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeUUIDE, m.UUIDE[:])
	w.PutBytes(TypeMACAddress, m.MACAddress[:])
	w.PutBytes(TypeEnrolleeNonce, m.EnrolleeNonce[:])
	w.PutBytes(TypePublicKey, m.PublicKey[:])
	w.PutUint16(TypeAuthTypeFlags, m.AuthTypeFlags)
	w.PutUint16(TypeEncrTypeFlags, m.EncrTypeFlags)
	w.PutUint8(TypeConnTypeFlags, m.ConnTypeFlags)
	w.PutUint16(TypeConfigMethods, m.ConfigMethods)
	w.PutUint8(TypeWPSState, m.WPSState)
	w.PutBytes(TypeManufacturer, []byte(m.Manufacturer))
	w.PutBytes(TypeModelName, []byte(m.ModelName))
	w.PutBytes(TypeModelNumber, []byte(m.ModelNumber))
	w.PutBytes(TypeSerialNumber, []byte(m.SerialNumber))
	w.PutBytes(TypePrimaryDeviceType, m.PrimaryDeviceType[:])
	w.PutBytes(TypeDeviceName, []byte(m.DeviceName))
	w.PutUint8(TypeRFBands, m.RFBands)
	w.PutUint16(TypeAssocState, m.AssocState)
	w.PutUint16(TypeDevicePasswordID, m.DevicePasswordID)
	w.PutUint16(TypeConfigError, m.ConfigError)
	w.PutUint32(TypeOSVersion, m.OSVersion)
	if m.Version2 {
		w.PutVersion2()
	}
	return w.Bytes()
}

// M2 is the Registrar's response to M1, parsed on receipt. HasAuthenticator
// distinguishes a genuine M2 from the unauthenticated discovery variant M2D,
// which omits the Authenticator attribute (the Registrar has not yet derived
// AuthKey for this Enrollee). HasConfigError and HasVendorExtension record
// whether those attributes were present; they do not affect the M2/M2D
// decision.
type M2 struct {
	EnrolleeNonce     [NonceSize]byte
	RegistrarNonce    [NonceSize]byte
	UUIDR             [UUIDSize]byte
	PublicKey         [PublicKeySize]byte
	AuthTypeFlags     uint16
	EncrTypeFlags     uint16
	ConnTypeFlags     uint8
	ConfigMethods     uint16
	Manufacturer      string
	ModelName         string
	ModelNumber       string
	SerialNumber      string
	PrimaryDeviceType [PrimaryDeviceTypeSize]byte
	DeviceName        string
	RFBands           uint8
	AssocState        uint16
	ConfigError       uint16
	DevicePasswordID  uint16
	OSVersion         uint32
	Authenticator     [AuthenticatorSize]byte

	HasAuthenticator   bool
	HasConfigError     bool
	HasVendorExtension bool
}

// ParseM2 decodes an M2 attribute body. It does not reject a missing
// Authenticator attribute — that is the M2D signal the caller checks via
// HasAuthenticator. It requires the two nonces, UUID-R, the public key, the
// AuthType/EncrType/ConnType flags, ConfigMethods, RFBands and AssocState,
// since a genuine M2 missing one of them is simply malformed; Manufacturer,
// ModelName, ModelNumber, SerialNumber, PrimaryDeviceType, DeviceName,
// ConfigError, DevicePasswordID and OSVersion are optional.
func ParseM2(body []byte) (*M2, error) {
	r, err := Parse(body)
	if err != nil {
		return nil, err
	}

	m := &M2{}
	if err := r.GetFixed(TypeEnrolleeNonce, m.EnrolleeNonce[:]); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeRegistrarNonce, m.RegistrarNonce[:]); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeUUIDR, m.UUIDR[:]); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypePublicKey, m.PublicKey[:]); err != nil {
		return nil, err
	}
	if m.AuthTypeFlags, err = r.GetUint16(TypeAuthTypeFlags); err != nil {
		return nil, err
	}
	if m.EncrTypeFlags, err = r.GetUint16(TypeEncrTypeFlags); err != nil {
		return nil, err
	}
	if m.ConnTypeFlags, err = r.GetUint8(TypeConnTypeFlags); err != nil {
		return nil, err
	}
	if m.ConfigMethods, err = r.GetUint16(TypeConfigMethods); err != nil {
		return nil, err
	}
	if v, err := r.Get(TypeManufacturer); err == nil {
		m.Manufacturer = string(v)
	}
	if v, err := r.Get(TypeModelName); err == nil {
		m.ModelName = string(v)
	}
	if v, err := r.Get(TypeModelNumber); err == nil {
		m.ModelNumber = string(v)
	}
	if v, err := r.Get(TypeSerialNumber); err == nil {
		m.SerialNumber = string(v)
	}
	r.GetFixed(TypePrimaryDeviceType, m.PrimaryDeviceType[:])
	if v, err := r.Get(TypeDeviceName); err == nil {
		m.DeviceName = string(v)
	}
	if m.RFBands, err = r.GetUint8(TypeRFBands); err != nil {
		return nil, err
	}
	if m.AssocState, err = r.GetUint16(TypeAssocState); err != nil {
		return nil, err
	}
	if v, err := r.GetUint16(TypeConfigError); err == nil {
		m.ConfigError = v
		m.HasConfigError = true
	}
	if v, err := r.GetUint16(TypeDevicePasswordID); err == nil {
		m.DevicePasswordID = v
	}
	if v, err := r.GetUint32(TypeOSVersion); err == nil {
		m.OSVersion = v
	}
	if err := r.GetFixed(TypeAuthenticator, m.Authenticator[:]); err == nil {
		m.HasAuthenticator = true
	}
	m.HasVendorExtension = r.Has(TypeVendorExtension)

	return m, nil
}

// M3 is the Enrollee's password-commitment message, sent after M2 is
// accepted.
type M3 struct {
	RegistrarNonce [NonceSize]byte
	EHash1         [HashSize]byte
	EHash2         [HashSize]byte
	Version2       bool
}

// Encode builds the M3 body without a trailing Authenticator attribute; the
// caller appends one via AppendAuthenticator once the MAC over
// prev||this-without-last-8 is computed.
func (m *M3) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeRegistrarNonce, m.RegistrarNonce[:])
	w.PutBytes(TypeEHash1, m.EHash1[:])
	w.PutBytes(TypeEHash2, m.EHash2[:])
	if m.Version2 {
		w.PutVersion2()
	}
	return w.Bytes()
}

// M4 is the Registrar's response to M3, carrying its own hash commitments
// and the first half of its Encrypted Settings disclosure.
type M4 struct {
	EnrolleeNonce     [NonceSize]byte
	RHash1            [HashSize]byte
	RHash2            [HashSize]byte
	EncryptedSettings []byte
	Authenticator     [AuthenticatorSize]byte
}

// ParseM4 decodes an M4 attribute body.
func ParseM4(body []byte) (*M4, error) {
	r, err := Parse(body)
	if err != nil {
		return nil, err
	}
	m := &M4{}
	if err := r.GetFixed(TypeEnrolleeNonce, m.EnrolleeNonce[:]); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeRHash1, m.RHash1[:]); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeRHash2, m.RHash2[:]); err != nil {
		return nil, err
	}
	if m.EncryptedSettings, err = r.Get(TypeEncryptedSettings); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeAuthenticator, m.Authenticator[:]); err != nil {
		return nil, err
	}
	return m, nil
}

// M5 carries the Enrollee's first secret nonce disclosure, encrypted.
type M5 struct {
	RegistrarNonce    [NonceSize]byte
	EncryptedSettings []byte
	Version2          bool
}

// Encode builds the M5 body without a trailing Authenticator attribute.
func (m *M5) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeRegistrarNonce, m.RegistrarNonce[:])
	w.PutBytes(TypeEncryptedSettings, m.EncryptedSettings)
	if m.Version2 {
		w.PutVersion2()
	}
	return w.Bytes()
}

// M6 carries the Registrar's second secret nonce disclosure, encrypted.
type M6 struct {
	EnrolleeNonce     [NonceSize]byte
	EncryptedSettings []byte
	Authenticator     [AuthenticatorSize]byte
}

// ParseM6 decodes an M6 attribute body.
func ParseM6(body []byte) (*M6, error) {
	r, err := Parse(body)
	if err != nil {
		return nil, err
	}
	m := &M6{}
	if err := r.GetFixed(TypeEnrolleeNonce, m.EnrolleeNonce[:]); err != nil {
		return nil, err
	}
	if m.EncryptedSettings, err = r.Get(TypeEncryptedSettings); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeAuthenticator, m.Authenticator[:]); err != nil {
		return nil, err
	}
	return m, nil
}

// M7 carries the Enrollee's second secret nonce disclosure, encrypted.
type M7 struct {
	RegistrarNonce    [NonceSize]byte
	EncryptedSettings []byte
	Version2          bool
}

// Encode builds the M7 body without a trailing Authenticator attribute.
func (m *M7) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeRegistrarNonce, m.RegistrarNonce[:])
	w.PutBytes(TypeEncryptedSettings, m.EncryptedSettings)
	if m.Version2 {
		w.PutVersion2()
	}
	return w.Bytes()
}

// M8 carries the network credentials, encrypted.
type M8 struct {
	EnrolleeNonce     [NonceSize]byte
	EncryptedSettings []byte
	Authenticator     [AuthenticatorSize]byte
}

// ParseM8 decodes an M8 attribute body.
func ParseM8(body []byte) (*M8, error) {
	r, err := Parse(body)
	if err != nil {
		return nil, err
	}
	m := &M8{}
	if err := r.GetFixed(TypeEnrolleeNonce, m.EnrolleeNonce[:]); err != nil {
		return nil, err
	}
	if m.EncryptedSettings, err = r.Get(TypeEncryptedSettings); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeAuthenticator, m.Authenticator[:]); err != nil {
		return nil, err
	}
	return m, nil
}

// Nack is the centrally-issued error message; Session suppresses sending it
// when ConfigError is ConfigErrorNoError, per the NACK policy.
type Nack struct {
	EnrolleeNonce  [NonceSize]byte
	RegistrarNonce [NonceSize]byte
	ConfigError    ConfigError
	Version2       bool
}

// Encode builds the NACK body (NACK carries no Authenticator attribute).
func (n *Nack) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeEnrolleeNonce, n.EnrolleeNonce[:])
	w.PutBytes(TypeRegistrarNonce, n.RegistrarNonce[:])
	w.PutUint16(TypeConfigError, uint16(n.ConfigError))
	if n.Version2 {
		w.PutVersion2()
	}
	return w.Bytes()
}

// Done is sent after M8 is successfully processed.
type Done struct {
	EnrolleeNonce  [NonceSize]byte
	RegistrarNonce [NonceSize]byte
	Version2       bool
}

// Encode builds the DONE body.
func (d *Done) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeEnrolleeNonce, d.EnrolleeNonce[:])
	w.PutBytes(TypeRegistrarNonce, d.RegistrarNonce[:])
	if d.Version2 {
		w.PutVersion2()
	}
	return w.Bytes()
}

// AppendAuthenticator appends an Authenticator attribute carrying mac to
// body, as the final attribute of an Enrollee-built M3/M5/M7 message.
func AppendAuthenticator(body []byte, mac [AuthenticatorSize]byte) []byte {
	w := NewWriter()
	w.buf = append(w.buf, body...)
	w.PutBytes(TypeAuthenticator, mac[:])
	return w.Bytes()
}

// M4Settings is the plaintext carried inside M4's Encrypted Settings,
// before the trailing KeyWrapAuthenticator.
type M4Settings struct {
	RSNonce1 [NonceSize]byte
}

// ParseM4Settings decodes the plaintext of M4's Encrypted Settings, minus
// the KeyWrapAuthenticator trailer (stripped by the caller beforehand).
func ParseM4Settings(plaintext []byte) (*M4Settings, error) {
	r, err := Parse(plaintext)
	if err != nil {
		return nil, err
	}
	s := &M4Settings{}
	if err := r.GetFixed(TypeRSNonce1, s.RSNonce1[:]); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode builds the M4Settings plaintext without the KeyWrapAuthenticator
// trailer.
func (s *M4Settings) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeRSNonce1, s.RSNonce1[:])
	return w.Bytes()
}

// M5Settings is the plaintext carried inside M5's Encrypted Settings.
type M5Settings struct {
	ESNonce1 [NonceSize]byte
}

// Encode builds the M5Settings plaintext without the KeyWrapAuthenticator
// trailer.
func (s *M5Settings) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeESNonce1, s.ESNonce1[:])
	return w.Bytes()
}

// M6Settings is the plaintext carried inside M6's Encrypted Settings.
type M6Settings struct {
	RSNonce2 [NonceSize]byte
}

// ParseM6Settings decodes the plaintext of M6's Encrypted Settings, minus
// the KeyWrapAuthenticator trailer.
func ParseM6Settings(plaintext []byte) (*M6Settings, error) {
	r, err := Parse(plaintext)
	if err != nil {
		return nil, err
	}
	s := &M6Settings{}
	if err := r.GetFixed(TypeRSNonce2, s.RSNonce2[:]); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode builds the M6Settings plaintext without the KeyWrapAuthenticator
// trailer.
func (s *M6Settings) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeRSNonce2, s.RSNonce2[:])
	return w.Bytes()
}

// M7Settings is the plaintext carried inside M7's Encrypted Settings.
type M7Settings struct {
	ESNonce2 [NonceSize]byte
}

// Encode builds the M7Settings plaintext without the KeyWrapAuthenticator
// trailer.
func (s *M7Settings) Encode() []byte {
	w := NewWriter()
	w.PutBytes(TypeESNonce2, s.ESNonce2[:])
	return w.Bytes()
}

// M8Settings is the plaintext carried inside M8's Encrypted Settings: one
// or more network credentials.
type M8Settings struct {
	Credentials []Credential
}

// ParseM8Settings decodes the plaintext of M8's Encrypted Settings, minus
// the KeyWrapAuthenticator trailer. At least one Credential attribute is
// required.
func ParseM8Settings(plaintext []byte) (*M8Settings, error) {
	r, err := Parse(plaintext)
	if err != nil {
		return nil, err
	}
	raw := r.GetAll(TypeCredential)
	if len(raw) == 0 {
		return nil, ErrAttributeMissing
	}
	s := &M8Settings{}
	for _, rc := range raw {
		cred, err := ParseCredential(rc)
		if err != nil {
			return nil, err
		}
		s.Credentials = append(s.Credentials, *cred)
	}
	return s, nil
}

// Credential is a single network credential delivered in M8, itself a
// nested sequence of attributes inside the outer Credential attribute's
// value.
type Credential struct {
	NetworkIndex uint8
	SSID         []byte
	AuthType     uint16
	EncrType     uint16
	NetworkKey   []byte
	MACAddress   [MACSize]byte
}

// ParseCredential decodes a single Credential attribute's value.
func ParseCredential(raw []byte) (*Credential, error) {
	r, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	c := &Credential{}
	if v, err := r.GetUint8(TypeNetworkIndex); err == nil {
		c.NetworkIndex = v
	}
	if c.SSID, err = r.Get(TypeSSID); err != nil {
		return nil, err
	}
	if c.AuthType, err = r.GetUint16(TypeAuthType); err != nil {
		return nil, err
	}
	if c.EncrType, err = r.GetUint16(TypeEncrType); err != nil {
		return nil, err
	}
	if c.NetworkKey, err = r.Get(TypeNetworkKey); err != nil {
		return nil, err
	}
	if err := r.GetFixed(TypeMACAddress, c.MACAddress[:]); err != nil {
		return nil, err
	}
	return c, nil
}
