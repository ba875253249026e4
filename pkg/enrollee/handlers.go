package enrollee

import (
	"github.com/eap-wsc/enrollee/pkg/crypto"
	"github.com/eap-wsc/enrollee/pkg/wsctlv"
)

// handleM2 processes the Registrar's response to M1: derives the WSC key
// schedule from the DH-5 shared secret, verifies M2's Authenticator under
// the freshly derived AuthKey, and on success builds and sends M3 (spec
// §4.2, §4.3).
func (s *Session) handleM2(body []byte) Outcome {
	m2, err := wsctlv.ParseM2(body)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorNoError)
	}

	if !m2.HasAuthenticator {
		// M2D: the Registrar has not derived AuthKey for this Enrollee
		// yet (discovery variant). Handled without advancing state and
		// without mutating any key material.
		s.log.Trace("received M2D, remaining in ExpectM2")
		return Outcome{}
	}

	z, err := crypto.DH5SharedSecret(s.privateKey.Bytes(), m2.PublicKey[:])
	if err != nil {
		return Outcome{}
	}
	dhkey := crypto.SHA256(z)
	zeroBytes(z)

	kdk := crypto.HMACSHA256Multi(dhkey[:], s.enrolleeNonce[:], s.enrolleeMAC[:], m2.RegistrarNonce[:])
	dhkey = [crypto.SHA256LenBytes]byte{}

	keys := crypto.DeriveWSCKeys(kdk[:])
	kdk = [crypto.SHA256LenBytes]byte{}

	if !verifyAuthenticator(keys.AuthKey[:], s.sentPDU, body) {
		zeroWSCKeys(&keys)
		s.log.Debug("M2 Authenticator verification failed, dropping")
		return Outcome{}
	}

	s.authKey = crypto.NewSecret(append([]byte{}, keys.AuthKey[:]...))
	s.keyWrapKey = crypto.NewSecret(append([]byte{}, keys.KeyWrapKey[:]...))
	s.emsk = crypto.NewSecret(append([]byte{}, keys.EMSK[:]...))
	zeroWSCKeys(&keys)

	s.registrarNonce = m2.RegistrarNonce
	s.peerPublicKey = m2.PublicKey

	s.derivePSKs()

	eHash1 := crypto.HMACSHA256Multi(s.authKey.Bytes(), s.esnonce1[:], s.psk1[:], s.publicKey[:], s.peerPublicKey[:])
	eHash2 := crypto.HMACSHA256Multi(s.authKey.Bytes(), s.esnonce2[:], s.psk2[:], s.publicKey[:], s.peerPublicKey[:])

	m3 := &wsctlv.M3{
		RegistrarNonce: s.registrarNonce,
		EHash1:         eHash1,
		EHash2:         eHash2,
		Version2:       true,
	}
	m3Body := m3.Encode()
	final := appendAuthenticator(s.authKey.Bytes(), body, m3Body)

	s.sentPDU = final
	s.state = StateExpectM4
	return Outcome{Frame: frame(OpMsg, final)}
}

// derivePSKs splits the device password into its HMAC-derived halves, WSC
// 2.0.5's scheme for binding the exchange to a password without
// transmitting it: first_half gets the extra byte when the password length
// is odd.
func (s *Session) derivePSKs() {
	pw := s.devicePassword.Bytes()
	firstLen := (len(pw) + 1) / 2
	first, second := pw[:firstLen], pw[firstLen:]

	full1 := crypto.HMACSHA256(s.authKey.Bytes(), first)
	full2 := crypto.HMACSHA256(s.authKey.Bytes(), second)
	copy(s.psk1[:], full1[:16])
	copy(s.psk2[:], full2[:16])
}

// handleM4 verifies M4, decrypts its Encrypted Settings, checks R-Hash1
// against the device password commitment, and builds M5 (spec §4.4, §4.5).
func (s *Session) handleM4(body []byte) Outcome {
	m4, err := wsctlv.ParseM4(body)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorNoError)
	}
	if !verifyAuthenticator(s.authKey.Bytes(), s.sentPDU, body) {
		return Outcome{}
	}

	inner, code, err := openEncryptedSettings(s.authKey.Bytes(), s.keyWrapKey.Bytes(), m4.EncryptedSettings)
	if err != nil {
		return s.nack(code)
	}
	settings, err := wsctlv.ParseM4Settings(inner)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorDecryptionCRCFailure)
	}

	expected := crypto.HMACSHA256Multi(s.authKey.Bytes(), settings.RSNonce1[:], s.psk1[:], s.publicKey[:], s.peerPublicKey[:])
	if !crypto.HMACEqual(expected[:], m4.RHash1[:]) {
		return s.nack(wsctlv.ConfigErrorDevicePasswordAuthFailure)
	}
	s.rHash2 = m4.RHash2

	inner5 := (&wsctlv.M5Settings{ESNonce1: s.esnonce1}).Encode()
	sealed, err := sealEncryptedSettings(s.authKey.Bytes(), s.keyWrapKey.Bytes(), s.iv1[:], inner5)
	if err != nil {
		return Outcome{}
	}

	m5 := &wsctlv.M5{RegistrarNonce: s.registrarNonce, EncryptedSettings: sealed, Version2: true}
	m5Body := m5.Encode()
	final := appendAuthenticator(s.authKey.Bytes(), body, m5Body)

	s.sentPDU = final
	s.state = StateExpectM6
	return Outcome{Frame: frame(OpMsg, final)}
}

// handleM6 mirrors handleM4 for the Registrar's second secret-nonce
// disclosure, checking the R-Hash2 commitment captured from M4 and
// building M7 (spec §4.4, §4.5).
func (s *Session) handleM6(body []byte) Outcome {
	m6, err := wsctlv.ParseM6(body)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorNoError)
	}
	if !verifyAuthenticator(s.authKey.Bytes(), s.sentPDU, body) {
		return Outcome{}
	}

	inner, code, err := openEncryptedSettings(s.authKey.Bytes(), s.keyWrapKey.Bytes(), m6.EncryptedSettings)
	if err != nil {
		return s.nack(code)
	}
	settings, err := wsctlv.ParseM6Settings(inner)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorDecryptionCRCFailure)
	}

	expected := crypto.HMACSHA256Multi(s.authKey.Bytes(), settings.RSNonce2[:], s.psk2[:], s.publicKey[:], s.peerPublicKey[:])
	if !crypto.HMACEqual(expected[:], s.rHash2[:]) {
		return s.nack(wsctlv.ConfigErrorDevicePasswordAuthFailure)
	}

	inner7 := (&wsctlv.M7Settings{ESNonce2: s.esnonce2}).Encode()
	sealed, err := sealEncryptedSettings(s.authKey.Bytes(), s.keyWrapKey.Bytes(), s.iv2[:], inner7)
	if err != nil {
		return Outcome{}
	}

	m7 := &wsctlv.M7{RegistrarNonce: s.registrarNonce, EncryptedSettings: sealed, Version2: true}
	m7Body := m7.Encode()
	final := appendAuthenticator(s.authKey.Bytes(), body, m7Body)

	s.sentPDU = final
	s.state = StateExpectM8
	return Outcome{Frame: frame(OpMsg, final)}
}

// handleM8 verifies and decrypts M8, extracts the delivered credentials,
// sends DONE, and enters Finished, exporting EMSK-derived MSK to the
// caller (spec §4.6).
func (s *Session) handleM8(body []byte) Outcome {
	m8, err := wsctlv.ParseM8(body)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorNoError)
	}
	if !verifyAuthenticator(s.authKey.Bytes(), s.sentPDU, body) {
		return Outcome{}
	}

	inner, code, err := openEncryptedSettings(s.authKey.Bytes(), s.keyWrapKey.Bytes(), m8.EncryptedSettings)
	if err != nil {
		return s.nack(code)
	}
	settings, err := wsctlv.ParseM8Settings(inner)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorDecryptionCRCFailure)
	}

	done := &wsctlv.Done{EnrolleeNonce: s.enrolleeNonce, RegistrarNonce: s.registrarNonce, Version2: true}
	doneBody := done.Encode()

	msk := crypto.DeriveMSK(s.emsk.Bytes())

	s.state = StateFinished
	s.credentials = settings.Credentials
	s.msk = msk

	return Outcome{
		Frame:       frame(OpDone, doneBody),
		Done:        true,
		Credentials: settings.Credentials,
		MSK:         msk,
	}
}

func zeroWSCKeys(k *crypto.WSCKeys) {
	zeroBytes(k.AuthKey[:])
	zeroBytes(k.KeyWrapKey[:])
	zeroBytes(k.EMSK[:])
}
