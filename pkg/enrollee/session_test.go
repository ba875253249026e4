package enrollee

import (
	"bytes"
	"testing"

	"github.com/eap-wsc/enrollee/pkg/crypto"
	"github.com/eap-wsc/enrollee/pkg/enrolleeconfig"
	"github.com/eap-wsc/enrollee/pkg/wsctlv"
)

// registrar is a minimal test double that plays the Registrar role well
// enough to drive the Enrollee through a full handshake: it knows the
// shared device password and reuses the same KDF to produce keys matching
// whatever M1/M2 the Enrollee sent.
type registrar struct {
	t *testing.T

	privateKey [crypto.DH5KeySize]byte
	publicKey  [crypto.DH5KeySize]byte
	nonce      [wsctlv.NonceSize]byte
	uuid       [wsctlv.UUIDSize]byte

	devicePassword []byte

	authKey    []byte
	keyWrapKey []byte

	rsnonce1 [wsctlv.NonceSize]byte
	rsnonce2 [wsctlv.NonceSize]byte

	enrolleeMAC    [wsctlv.MACSize]byte
	enrolleeNonce  [wsctlv.NonceSize]byte
	enrolleePubKey [wsctlv.PublicKeySize]byte

	psk1 [16]byte
	psk2 [16]byte

	eHash1 [wsctlv.HashSize]byte
	eHash2 [wsctlv.HashSize]byte
}

func newRegistrar(t *testing.T, devicePassword string) *registrar {
	var priv [crypto.DH5KeySize]byte
	fillSeq(priv[:], 0x80)
	pub, err := crypto.DH5PublicKey(priv[:])
	if err != nil {
		t.Fatalf("registrar DH5PublicKey: %v", err)
	}
	r := &registrar{
		t:              t,
		privateKey:     priv,
		publicKey:      pub,
		devicePassword: []byte(devicePassword),
	}
	fillSeq(r.nonce[:], 0x90)
	fillSeq(r.uuid[:], 0xA0)
	fillSeq(r.rsnonce1[:], 0xB0)
	fillSeq(r.rsnonce2[:], 0xC0)
	return r
}

func fillSeq(b []byte, start byte) {
	for i := range b {
		b[i] = start + byte(i)
	}
}

// observeM1 lets the registrar extract the Enrollee's MAC/nonce/public key
// from the M1 body, the way a real Registrar parses M1 off the wire. The
// test builds this directly from the wsctlv.M1 struct for simplicity since
// wsctlv deliberately has no M1 decoder.
func (r *registrar) observeM1(m1 *wsctlv.M1) {
	r.enrolleeMAC = m1.MACAddress
	r.enrolleeNonce = m1.EnrolleeNonce
	r.enrolleePubKey = m1.PublicKey
}

// buildM2 computes the WSC key schedule exactly as the Enrollee will, then
// builds and authenticates an M2 body against m1Body.
func (r *registrar) buildM2(m1Body []byte) []byte {
	z, err := crypto.DH5SharedSecret(r.privateKey[:], r.enrolleePubKey[:])
	if err != nil {
		r.t.Fatalf("registrar DH5SharedSecret: %v", err)
	}
	dhkey := crypto.SHA256(z)
	kdk := crypto.HMACSHA256Multi(dhkey[:], r.enrolleeNonce[:], r.enrolleeMAC[:], r.nonce[:])
	keys := crypto.DeriveWSCKeys(kdk[:])
	r.authKey = keys.AuthKey[:]
	r.keyWrapKey = keys.KeyWrapKey[:]

	firstLen := (len(r.devicePassword) + 1) / 2
	first, second := r.devicePassword[:firstLen], r.devicePassword[firstLen:]
	full1 := crypto.HMACSHA256(r.authKey, first)
	full2 := crypto.HMACSHA256(r.authKey, second)
	copy(r.psk1[:], full1[:16])
	copy(r.psk2[:], full2[:16])

	w := wsctlv.NewWriter()
	w.PutUint8(wsctlv.TypeMsgType, uint8(wsctlv.MsgTypeM2))
	w.PutBytes(wsctlv.TypeEnrolleeNonce, r.enrolleeNonce[:])
	w.PutBytes(wsctlv.TypeRegistrarNonce, r.nonce[:])
	w.PutBytes(wsctlv.TypeUUIDR, r.uuid[:])
	w.PutBytes(wsctlv.TypePublicKey, r.publicKey[:])
	w.PutUint16(wsctlv.TypeAuthTypeFlags, 0x0020)
	w.PutUint16(wsctlv.TypeEncrTypeFlags, 0x0008)
	w.PutUint8(wsctlv.TypeConnTypeFlags, 0x01)
	w.PutUint16(wsctlv.TypeConfigMethods, 0x0080)
	w.PutBytes(wsctlv.TypeManufacturer, []byte("TestCo"))
	w.PutBytes(wsctlv.TypeModelName, []byte("TestAP"))
	w.PutBytes(wsctlv.TypeModelNumber, []byte("1"))
	w.PutBytes(wsctlv.TypeSerialNumber, []byte("SN1"))
	var pdt [wsctlv.PrimaryDeviceTypeSize]byte
	w.PutBytes(wsctlv.TypePrimaryDeviceType, pdt[:])
	w.PutBytes(wsctlv.TypeDeviceName, []byte("Registrar"))
	w.PutUint8(wsctlv.TypeRFBands, 0x01)
	w.PutUint16(wsctlv.TypeAssocState, 0)
	w.PutUint16(wsctlv.TypeDevicePasswordID, 0)
	w.PutUint32(wsctlv.TypeOSVersion, 0)
	body := w.Bytes()

	return appendAuthenticator(r.authKey, m1Body, body)
}

// buildM4 verifies the inbound M3 (capturing E-Hash1/2) and builds M4,
// disclosing R-SNonce1 and committing to R-Hash1 via PSK1.
func (r *registrar) buildM4(m3Body []byte) []byte {
	m3, err := parseM3ForTest(m3Body)
	if err != nil {
		r.t.Fatalf("registrar parse M3: %v", err)
	}
	r.eHash1 = m3.EHash1
	r.eHash2 = m3.EHash2

	rHash1 := crypto.HMACSHA256Multi(r.authKey, r.rsnonce1[:], r.psk1[:], r.enrolleePubKey[:], r.publicKey[:])
	rHash2 := crypto.HMACSHA256Multi(r.authKey, r.rsnonce2[:], r.psk2[:], r.enrolleePubKey[:], r.publicKey[:])

	inner := (&wsctlv.M4Settings{RSNonce1: r.rsnonce1}).Encode()
	sealed := r.seal(inner)

	w := wsctlv.NewWriter()
	w.PutUint8(wsctlv.TypeMsgType, uint8(wsctlv.MsgTypeM4))
	w.PutBytes(wsctlv.TypeEnrolleeNonce, r.enrolleeNonce[:])
	w.PutBytes(wsctlv.TypeRHash1, rHash1[:])
	w.PutBytes(wsctlv.TypeRHash2, rHash2[:])
	w.PutBytes(wsctlv.TypeEncryptedSettings, sealed)
	body := w.Bytes()
	return appendAuthenticator(r.authKey, m3Body, body)
}

// buildM6 builds M6 disclosing R-SNonce2.
func (r *registrar) buildM6(m5Body []byte) []byte {
	inner := (&wsctlv.M6Settings{RSNonce2: r.rsnonce2}).Encode()
	sealed := r.seal(inner)

	w := wsctlv.NewWriter()
	w.PutUint8(wsctlv.TypeMsgType, uint8(wsctlv.MsgTypeM6))
	w.PutBytes(wsctlv.TypeEnrolleeNonce, r.enrolleeNonce[:])
	w.PutBytes(wsctlv.TypeEncryptedSettings, sealed)
	body := w.Bytes()
	return appendAuthenticator(r.authKey, m5Body, body)
}

// buildM8 delivers one credential.
func (r *registrar) buildM8(m7Body []byte, ssid string) []byte {
	credW := wsctlv.NewWriter()
	credW.PutUint8(wsctlv.TypeNetworkIndex, 1)
	credW.PutBytes(wsctlv.TypeSSID, []byte(ssid))
	credW.PutUint16(wsctlv.TypeAuthType, 0x0020)
	credW.PutUint16(wsctlv.TypeEncrType, 0x0008)
	credW.PutBytes(wsctlv.TypeNetworkKey, []byte("supersecretpassphrase"))
	var mac [wsctlv.MACSize]byte
	fillSeq(mac[:], 0xE0)
	credW.PutBytes(wsctlv.TypeMACAddress, mac[:])

	inner := wsctlv.NewWriter()
	inner.PutBytes(wsctlv.TypeCredential, credW.Bytes())
	sealed := r.seal(inner.Bytes())

	w := wsctlv.NewWriter()
	w.PutUint8(wsctlv.TypeMsgType, uint8(wsctlv.MsgTypeM8))
	w.PutBytes(wsctlv.TypeEnrolleeNonce, r.enrolleeNonce[:])
	w.PutBytes(wsctlv.TypeEncryptedSettings, sealed)
	body := w.Bytes()
	return appendAuthenticator(r.authKey, m7Body, body)
}

// seal mirrors sealEncryptedSettings from the Enrollee side, using a fixed
// IV since the registrar test double doesn't need secrecy, only a valid
// wire format.
func (r *registrar) seal(inner []byte) []byte {
	var iv [16]byte
	fillSeq(iv[:], 0xD0)
	out, err := sealEncryptedSettings(r.authKey, r.keyWrapKey, iv[:], inner)
	if err != nil {
		r.t.Fatalf("registrar seal: %v", err)
	}
	return out
}

// parseM3ForTest decodes an M3 body for the registrar test double; M3 has
// no public decoder in wsctlv since only the Enrollee builds it.
func parseM3ForTest(body []byte) (*struct {
	EHash1 [wsctlv.HashSize]byte
	EHash2 [wsctlv.HashSize]byte
}, error) {
	r, err := wsctlv.Parse(body)
	if err != nil {
		return nil, err
	}
	out := &struct {
		EHash1 [wsctlv.HashSize]byte
		EHash2 [wsctlv.HashSize]byte
	}{}
	if err := r.GetFixed(wsctlv.TypeEHash1, out.EHash1[:]); err != nil {
		return nil, err
	}
	if err := r.GetFixed(wsctlv.TypeEHash2, out.EHash2[:]); err != nil {
		return nil, err
	}
	return out, nil
}

func testConfig(t *testing.T, devicePassword string) *enrolleeconfig.Config {
	cfg, err := enrolleeconfig.Load(bytes.NewReader([]byte(`
EnrolleeMAC: "02:00:00:00:00:01"
RFBand: "2.4GHz"
DevicePassword: "` + devicePassword + `"
PrivateKey: "` + hexRepeat("ab", crypto.DH5KeySize) + `"
EnrolleeNonce: "` + hexRepeat("11", 16) + `"
E-SNonce1: "` + hexRepeat("22", 16) + `"
E-SNonce2: "` + hexRepeat("33", 16) + `"
IV1: "` + hexRepeat("44", 16) + `"
IV2: "` + hexRepeat("55", 16) + `"
`)))
	if err != nil {
		t.Fatalf("testConfig Load: %v", err)
	}
	return cfg
}

func hexRepeat(pair string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += pair
	}
	return out
}

func newTestSession(t *testing.T, devicePassword string) *Session {
	cfg := testConfig(t, devicePassword)
	s, err := NewSession(cfg, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func parseM1Body(t *testing.T, body []byte) *wsctlv.M1 {
	r, err := wsctlv.Parse(body)
	if err != nil {
		t.Fatalf("parse M1: %v", err)
	}
	m1 := &wsctlv.M1{}
	if err := r.GetFixed(wsctlv.TypeMACAddress, m1.MACAddress[:]); err != nil {
		t.Fatalf("GetFixed MACAddress: %v", err)
	}
	if err := r.GetFixed(wsctlv.TypeEnrolleeNonce, m1.EnrolleeNonce[:]); err != nil {
		t.Fatalf("GetFixed EnrolleeNonce: %v", err)
	}
	if err := r.GetFixed(wsctlv.TypePublicKey, m1.PublicKey[:]); err != nil {
		t.Fatalf("GetFixed PublicKey: %v", err)
	}
	return m1
}

func TestHappyPath_FullHandshake(t *testing.T) {
	const pw = "12345670"
	s := newTestSession(t, pw)
	r := newRegistrar(t, pw)

	out, err := s.HandleRequest(frame(OpStart, nil))
	if err != nil {
		t.Fatalf("START: %v", err)
	}
	if s.State() != StateExpectM2 {
		t.Fatalf("state after START = %v, want ExpectM2", s.State())
	}
	m1 := parseM1Body(t, out.Frame[2:])
	r.observeM1(m1)

	m2Body := r.buildM2(out.Frame[2:])
	out, err = s.HandleRequest(frame(OpMsg, m2Body))
	if err != nil {
		t.Fatalf("M2: %v", err)
	}
	if s.State() != StateExpectM4 {
		t.Fatalf("state after M2 = %v, want ExpectM4", s.State())
	}
	m3Body := out.Frame[2:]

	m4Body := r.buildM4(m3Body)
	out, err = s.HandleRequest(frame(OpMsg, m4Body))
	if err != nil {
		t.Fatalf("M4: %v", err)
	}
	if s.State() != StateExpectM6 {
		t.Fatalf("state after M4 = %v, want ExpectM6", s.State())
	}
	m5Body := out.Frame[2:]

	m6Body := r.buildM6(m5Body)
	out, err = s.HandleRequest(frame(OpMsg, m6Body))
	if err != nil {
		t.Fatalf("M6: %v", err)
	}
	if s.State() != StateExpectM8 {
		t.Fatalf("state after M6 = %v, want ExpectM8", s.State())
	}
	m7Body := out.Frame[2:]

	m8Body := r.buildM8(m7Body, "my-network")
	out, err = s.HandleRequest(frame(OpMsg, m8Body))
	if err != nil {
		t.Fatalf("M8: %v", err)
	}
	if !out.Done {
		t.Fatal("expected Done after M8")
	}
	if s.State() != StateFinished {
		t.Fatalf("state after M8 = %v, want Finished", s.State())
	}
	if out.Frame[0] != byte(OpDone) {
		t.Fatalf("op after M8 = %x, want OpDone", out.Frame[0])
	}
	if len(out.Credentials) != 1 || string(out.Credentials[0].SSID) != "my-network" {
		t.Fatalf("unexpected credentials: %+v", out.Credentials)
	}
	var zeroMSK [crypto.MSKSize]byte
	if out.MSK == zeroMSK {
		t.Fatal("MSK was not derived")
	}
}

func TestWrongDevicePassword_NacksAtM4(t *testing.T) {
	s := newTestSession(t, "12345670")
	r := newRegistrar(t, "00000000") // registrar computes R-Hash1 from a different password

	out, _ := s.HandleRequest(frame(OpStart, nil))
	m1 := parseM1Body(t, out.Frame[2:])
	r.observeM1(m1)

	m2Body := r.buildM2(out.Frame[2:])
	out, _ = s.HandleRequest(frame(OpMsg, m2Body))
	m3Body := out.Frame[2:]

	m4Body := r.buildM4(m3Body)
	out, err := s.HandleRequest(frame(OpMsg, m4Body))
	if err != nil {
		t.Fatalf("M4: %v", err)
	}
	if out.Frame == nil || out.Frame[0] != byte(OpNack) {
		t.Fatalf("expected NACK frame, got %v", out.Frame)
	}
	rd, err := wsctlv.Parse(out.Frame[2:])
	if err != nil {
		t.Fatalf("parse NACK: %v", err)
	}
	code, err := rd.GetUint16(wsctlv.TypeConfigError)
	if err != nil || wsctlv.ConfigError(code) != wsctlv.ConfigErrorDevicePasswordAuthFailure {
		t.Errorf("ConfigError = %v, %v; want DevicePasswordAuthFailure", code, err)
	}
	if s.State() != StateExpectM4 {
		t.Errorf("state = %v, want still ExpectM4 (no advance)", s.State())
	}
}

func TestTamperedM2Authenticator_SilentlyDropped(t *testing.T) {
	const pw = "12345670"
	s := newTestSession(t, pw)
	r := newRegistrar(t, pw)

	out, _ := s.HandleRequest(frame(OpStart, nil))
	m1 := parseM1Body(t, out.Frame[2:])
	r.observeM1(m1)

	m2Body := r.buildM2(out.Frame[2:])
	m2Body[len(m2Body)-1] ^= 0x01 // flip a bit in the trailing Authenticator

	out2, err := s.HandleRequest(frame(OpMsg, m2Body))
	if err != nil {
		t.Fatalf("M2: %v", err)
	}
	if out2.Frame != nil {
		t.Errorf("expected no outgoing frame, got %x", out2.Frame)
	}
	if s.State() != StateExpectM2 {
		t.Errorf("state = %v, want still ExpectM2", s.State())
	}
}

func TestBadPaddingInM4_NacksDecryptionCRCFailure(t *testing.T) {
	const pw = "12345670"
	s := newTestSession(t, pw)
	r := newRegistrar(t, pw)

	out, _ := s.HandleRequest(frame(OpStart, nil))
	m1 := parseM1Body(t, out.Frame[2:])
	r.observeM1(m1)

	m2Body := r.buildM2(out.Frame[2:])
	out, _ = s.HandleRequest(frame(OpMsg, m2Body))
	m3Body := out.Frame[2:]

	m4Body := r.buildM4(m3Body)
	// Parse the well-formed M4 back out, then rebuild it with the last
	// ciphertext byte of EncryptedSettings corrupted so CBC decryption
	// yields invalid padding, re-authenticating the corrupted body so the
	// outer Authenticator still checks out and the failure is isolated to
	// decryption.
	m4, err := wsctlv.ParseM4(m4Body)
	if err != nil {
		t.Fatalf("parse m4: %v", err)
	}
	corrupted := append([]byte{}, m4.EncryptedSettings...)
	corrupted[len(corrupted)-1] ^= 0xFF

	w := wsctlv.NewWriter()
	w.PutUint8(wsctlv.TypeMsgType, uint8(wsctlv.MsgTypeM4))
	w.PutBytes(wsctlv.TypeEnrolleeNonce, m4.EnrolleeNonce[:])
	w.PutBytes(wsctlv.TypeRHash1, m4.RHash1[:])
	w.PutBytes(wsctlv.TypeRHash2, m4.RHash2[:])
	w.PutBytes(wsctlv.TypeEncryptedSettings, corrupted)
	newBody := w.Bytes()
	finalM4 := appendAuthenticator(r.authKey, m3Body, newBody)

	out, err = s.HandleRequest(frame(OpMsg, finalM4))
	if err != nil {
		t.Fatalf("M4: %v", err)
	}
	if out.Frame == nil || out.Frame[0] != byte(OpNack) {
		t.Fatalf("expected a NACK frame (padding corruption usually breaks unpad), got %v", out.Frame)
	}
	rd, err := wsctlv.Parse(out.Frame[2:])
	if err != nil {
		t.Fatalf("parse NACK: %v", err)
	}
	code, err := rd.GetUint16(wsctlv.TypeConfigError)
	if err != nil || wsctlv.ConfigError(code) != wsctlv.ConfigErrorDecryptionCRCFailure {
		t.Errorf("ConfigError = %v, %v; want DecryptionCRCFailure", code, err)
	}
}

func TestOutOfOrderAfterFinished_NoOutput(t *testing.T) {
	const pw = "12345670"
	s := newTestSession(t, pw)
	r := newRegistrar(t, pw)

	out, _ := s.HandleRequest(frame(OpStart, nil))
	m1 := parseM1Body(t, out.Frame[2:])
	r.observeM1(m1)
	m2Body := r.buildM2(out.Frame[2:])
	out, _ = s.HandleRequest(frame(OpMsg, m2Body))
	m3Body := out.Frame[2:]
	m4Body := r.buildM4(m3Body)
	out, _ = s.HandleRequest(frame(OpMsg, m4Body))
	m5Body := out.Frame[2:]
	m6Body := r.buildM6(m5Body)
	out, _ = s.HandleRequest(frame(OpMsg, m6Body))
	m7Body := out.Frame[2:]
	m8Body := r.buildM8(m7Body, "net")
	out, _ = s.HandleRequest(frame(OpMsg, m8Body))
	if !out.Done {
		t.Fatal("expected handshake to finish")
	}

	out2, err := s.HandleRequest(frame(OpMsg, m2Body))
	if err != nil {
		t.Fatalf("post-Finished M2: %v", err)
	}
	if out2.Frame != nil {
		t.Errorf("expected no output after Finished, got %x", out2.Frame)
	}
}

func TestInboundNack_AbortsSession(t *testing.T) {
	s := newTestSession(t, "12345670")
	s.HandleRequest(frame(OpStart, nil))

	_, err := s.HandleRequest(frame(OpNack, (&wsctlv.Nack{ConfigError: wsctlv.ConfigErrorDevicePasswordAuthFailure}).Encode()))
	if err != ErrPeerNacked {
		t.Errorf("got %v, want ErrPeerNacked", err)
	}
	if s.State() != StateAborted {
		t.Errorf("state = %v, want Aborted", s.State())
	}
}

func TestRemove_ZeroizesKeyMaterial(t *testing.T) {
	const pw = "12345670"
	s := newTestSession(t, pw)
	r := newRegistrar(t, pw)

	out, _ := s.HandleRequest(frame(OpStart, nil))
	m1 := parseM1Body(t, out.Frame[2:])
	r.observeM1(m1)
	m2Body := r.buildM2(out.Frame[2:])
	s.HandleRequest(frame(OpMsg, m2Body))

	authKeyBytes := s.authKey.Bytes()
	if len(authKeyBytes) == 0 {
		t.Fatal("AuthKey was never installed")
	}

	s.Remove()

	if s.authKey.Bytes() != nil {
		t.Error("AuthKey not zeroized on Remove")
	}
	if s.devicePassword.Bytes() != nil {
		t.Error("device password not zeroized on Remove")
	}
	if s.privateKey.Bytes() != nil {
		t.Error("private key not zeroized on Remove")
	}
}

func TestFragmentReassembly(t *testing.T) {
	const pw = "12345670"
	s := newTestSession(t, pw)
	r := newRegistrar(t, pw)

	out, _ := s.HandleRequest(frame(OpStart, nil))
	m1 := parseM1Body(t, out.Frame[2:])
	r.observeM1(m1)
	m2Body := r.buildM2(out.Frame[2:])

	half := len(m2Body) / 2
	firstFrag := append([]byte{byte(OpMsg), fragFlag}, m2Body[:half]...)
	secondFrag := append([]byte{byte(OpMsg), 0}, m2Body[half:]...)

	out1, err := s.HandleRequest(firstFrag)
	if err != nil {
		t.Fatalf("first fragment: %v", err)
	}
	if out1.Frame == nil || out1.Frame[0] != byte(OpFragAck) {
		t.Fatalf("expected FRAG_ACK, got %v", out1.Frame)
	}
	if s.State() != StateExpectM2 {
		t.Fatalf("state advanced on partial fragment: %v", s.State())
	}

	out2, err := s.HandleRequest(secondFrag)
	if err != nil {
		t.Fatalf("second fragment: %v", err)
	}
	if s.State() != StateExpectM4 {
		t.Fatalf("state after reassembled M2 = %v, want ExpectM4", s.State())
	}
	if out2.Frame == nil || out2.Frame[0] != byte(OpMsg) {
		t.Fatalf("expected M3 after reassembly, got %v", out2.Frame)
	}
}

func TestM2D_DoesNotAdvanceState(t *testing.T) {
	s := newTestSession(t, "12345670")
	out, _ := s.HandleRequest(frame(OpStart, nil))
	_ = out

	w := wsctlv.NewWriter()
	var en, rn, uuidR [16]byte
	var pub [192]byte
	w.PutUint8(wsctlv.TypeMsgType, uint8(wsctlv.MsgTypeM2D))
	w.PutBytes(wsctlv.TypeEnrolleeNonce, en[:])
	w.PutBytes(wsctlv.TypeRegistrarNonce, rn[:])
	w.PutBytes(wsctlv.TypeUUIDR, uuidR[:])
	w.PutBytes(wsctlv.TypePublicKey, pub[:])
	w.PutUint16(wsctlv.TypeAuthTypeFlags, 0)
	w.PutUint16(wsctlv.TypeEncrTypeFlags, 0)
	w.PutUint8(wsctlv.TypeConnTypeFlags, 0)
	w.PutUint16(wsctlv.TypeConfigMethods, 0)
	var pdt [8]byte
	w.PutBytes(wsctlv.TypePrimaryDeviceType, pdt[:])
	w.PutUint8(wsctlv.TypeRFBands, 1)
	w.PutUint16(wsctlv.TypeAssocState, 0)
	w.PutUint16(wsctlv.TypeConfigError, 0)
	// No Authenticator attribute: M2D.

	got, err := s.HandleRequest(frame(OpMsg, w.Bytes()))
	if err != nil {
		t.Fatalf("M2D: %v", err)
	}
	if got.Frame != nil {
		t.Errorf("expected no output for M2D, got %x", got.Frame)
	}
	if s.State() != StateExpectM2 {
		t.Errorf("state = %v, want still ExpectM2 after M2D", s.State())
	}
}
