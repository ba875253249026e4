// Package enrollee implements the Enrollee role of EAP-WSC: the
// message-driven state machine that runs M1 through M8 against a
// Registrar, derives the WSC key schedule from a DH-5 exchange, and
// extracts network credentials and an EAP MSK from a successful exchange.
package enrollee

import (
	"sync"

	"github.com/pion/logging"

	"github.com/eap-wsc/enrollee/pkg/crypto"
	"github.com/eap-wsc/enrollee/pkg/enrolleeconfig"
	"github.com/eap-wsc/enrollee/pkg/wsctlv"
)

// State is a position in the Enrollee state machine. States only advance
// along ExpectStart -> ExpectM2 -> ExpectM4 -> ExpectM6 -> ExpectM8 ->
// Finished; Aborted is reachable from any non-terminal state on an inbound
// NACK.
type State int

const (
	StateExpectStart State = iota
	StateExpectM2
	StateExpectM4
	StateExpectM6
	StateExpectM8
	StateFinished
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateExpectStart:
		return "ExpectStart"
	case StateExpectM2:
		return "ExpectM2"
	case StateExpectM4:
		return "ExpectM4"
	case StateExpectM6:
		return "ExpectM6"
	case StateExpectM8:
		return "ExpectM8"
	case StateFinished:
		return "Finished"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Opcode is the first byte of a WSC-framed EAP payload, identifying the
// kind of frame independent of any MSG subtype carried inside.
type Opcode uint8

const (
	OpStart   Opcode = 0x01
	OpAck     Opcode = 0x02
	OpNack    Opcode = 0x03
	OpMsg     Opcode = 0x04
	OpDone    Opcode = 0x05
	OpFragAck Opcode = 0x06
)

// fragFlag marks an inbound or outbound frame as carrying a fragment that
// is not the last one for its message.
const fragFlag = 0x01

// Outcome is the result of handling one inbound frame: at most one
// outbound frame to send, and, once the handshake finishes, the extracted
// credentials and exported MSK.
type Outcome struct {
	// Frame is the outbound WSC-framed payload (op/flags header plus
	// body) to hand to the outer EAP layer, or nil if nothing should be
	// sent for this event.
	Frame []byte

	// Done is true once the handshake has completed successfully; the
	// outer EAP layer should export MSK and stop calling HandleRequest.
	Done bool

	// Credentials holds the network credentials extracted from M8. Only
	// populated when Done is true.
	Credentials []wsctlv.Credential

	// MSK is the 64-byte EAP Master Session Key exported once the
	// handshake completes. Only meaningful when Done is true.
	MSK [crypto.MSKSize]byte
}

// Session is one Enrollee run of the WSC handshake against a single
// Registrar. A Session is not reused across handshakes; a new one is
// created per EAP method probe.
type Session struct {
	mu sync.Mutex

	log logging.LeveledLogger

	state State

	enrolleeNonce  [wsctlv.NonceSize]byte
	enrolleeMAC    [wsctlv.MACSize]byte
	registrarNonce [wsctlv.NonceSize]byte
	publicKey      [wsctlv.PublicKeySize]byte
	peerPublicKey  [wsctlv.PublicKeySize]byte

	esnonce1 [wsctlv.NonceSize]byte
	esnonce2 [wsctlv.NonceSize]byte
	iv1      [wsctlv.NonceSize]byte
	iv2      [wsctlv.NonceSize]byte

	psk1 [16]byte
	psk2 [16]byte

	rHash2 [wsctlv.HashSize]byte

	m1Body []byte

	// sentPDU is the body (without op/flags header) of the Enrollee's
	// most recently transmitted WSC message; it is the prev_message
	// input the next inbound Authenticator check is verified against.
	sentPDU []byte

	privateKey     *crypto.Secret
	devicePassword *crypto.Secret
	authKey        *crypto.Secret
	keyWrapKey     *crypto.Secret
	emsk           *crypto.Secret

	// fragBufs reassembles fragmented inbound messages, keyed by the
	// state they arrived in: a fragment only makes sense in the context
	// of the message state's handler is currently waiting for.
	fragBufs map[State][]byte

	credentials []wsctlv.Credential
	msk         [crypto.MSKSize]byte
}

// NewSession probes a new Enrollee session from validated configuration.
// It computes the session's DH-5 public key and builds M1 once, up front,
// since m1 never changes for the life of the session.
func NewSession(cfg *enrolleeconfig.Config, loggerFactory logging.LoggerFactory) (*Session, error) {
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	pub, err := crypto.DH5PublicKey(cfg.PrivateKey[:])
	if err != nil {
		return nil, err
	}

	s := &Session{
		log:            loggerFactory.NewLogger("enrollee"),
		state:          StateExpectStart,
		enrolleeNonce:  cfg.EnrolleeNonce,
		enrolleeMAC:    cfg.EnrolleeMAC,
		publicKey:      pub,
		esnonce1:       cfg.ESNonce1,
		esnonce2:       cfg.ESNonce2,
		iv1:            cfg.IV1,
		iv2:            cfg.IV2,
		privateKey:     crypto.NewSecret(append([]byte{}, cfg.PrivateKey[:]...)),
		devicePassword: crypto.NewSecret([]byte(cfg.DevicePassword)),
		fragBufs:       make(map[State][]byte),
	}

	m1 := &wsctlv.M1{
		UUIDE:             cfg.UUIDE,
		MACAddress:        cfg.EnrolleeMAC,
		EnrolleeNonce:     cfg.EnrolleeNonce,
		PublicKey:         pub,
		AuthTypeFlags:     0x0020, // WPA2-PSK
		EncrTypeFlags:     0x0008, // AES
		ConnTypeFlags:     0x01,   // ESS
		ConfigMethods:     cfg.ConfigMethods,
		WPSState:          0x01, // WPS_STATE_NOT_CONFIGURED: the Enrollee has no credentials yet
		Manufacturer:      cfg.Manufacturer,
		ModelName:         cfg.ModelName,
		ModelNumber:       cfg.ModelNumber,
		SerialNumber:      cfg.SerialNumber,
		PrimaryDeviceType: cfg.PrimaryDeviceType,
		DeviceName:        cfg.DeviceName,
		RFBands:           uint8(cfg.RFBand),
		OSVersion:         cfg.OSVersion,
		Version2:          true,
	}
	s.m1Body = m1.Encode()

	return s, nil
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Credentials returns the credentials extracted from M8, or nil before the
// handshake completes.
func (s *Session) Credentials() []wsctlv.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credentials
}

// Remove tears the session down, zeroing all key material and the device
// password buffer. Safe to call from any state, including mid-handshake.
func (s *Session) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.privateKey.Zeroize()
	s.devicePassword.Zeroize()
	if s.authKey != nil {
		s.authKey.Zeroize()
	}
	if s.keyWrapKey != nil {
		s.keyWrapKey.Zeroize()
	}
	if s.emsk != nil {
		s.emsk.Zeroize()
	}
	s.state = StateAborted
}

// frame prepends the 2-byte op/flags header WSC 2.0.5 uses for every
// Enrollee-sent body (spec §4.7); flags is always 0 here since the
// Enrollee never fragments its own outbound messages.
func frame(op Opcode, body []byte) []byte {
	out := make([]byte, 2+len(body))
	out[0] = byte(op)
	copy(out[2:], body)
	return out
}

// HandleRequest processes one inbound WSC-framed payload (op byte, flags
// byte, body) and returns at most one outbound frame to send. It never
// blocks and never retains pkt past this call.
func (s *Session) HandleRequest(pkt []byte) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(pkt) < 2 {
		return Outcome{}, ErrTruncatedFrame
	}
	op := Opcode(pkt[0])
	flags := pkt[1]
	body := pkt[2:]

	if s.state == StateFinished || s.state == StateAborted {
		return Outcome{}, nil
	}

	switch op {
	case OpNack:
		s.state = StateAborted
		return Outcome{}, ErrPeerNacked
	case OpAck, OpDone, OpFragAck:
		return Outcome{}, nil
	case OpStart:
		if s.state != StateExpectStart {
			return Outcome{}, nil
		}
		return s.handleStart(), nil
	case OpMsg:
		full, pending := s.reassemble(flags, body)
		if pending {
			return Outcome{Frame: frame(OpFragAck, nil)}, nil
		}
		return s.handleMsg(full), nil
	default:
		return Outcome{}, nil
	}
}

// reassemble implements the fragment-buffer-keyed-by-state scheme: a
// fragment (flags&fragFlag set) is appended to this state's buffer and
// pending is true, so the caller answers with FRAG_ACK and waits for the
// rest. The final fragment (flags clear) is appended too, and the whole
// buffered message is returned for handling.
func (s *Session) reassemble(flags byte, body []byte) (full []byte, pending bool) {
	if flags&fragFlag != 0 {
		s.fragBufs[s.state] = append(s.fragBufs[s.state], body...)
		return nil, true
	}
	if buf, ok := s.fragBufs[s.state]; ok && len(buf) > 0 {
		full := append(buf, body...)
		delete(s.fragBufs, s.state)
		return full, false
	}
	return body, false
}

func (s *Session) handleStart() Outcome {
	s.sentPDU = s.m1Body
	s.state = StateExpectM2
	return Outcome{Frame: frame(OpMsg, s.m1Body)}
}

// handleMsg routes a MSG body by the session's current state and the
// MsgType attribute it carries. A malformed body or a MsgType that does
// not belong in the current state resolves to a suppressed NACK(0): no
// frame is sent and the state does not change.
func (s *Session) handleMsg(body []byte) Outcome {
	r, err := wsctlv.Parse(body)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorNoError)
	}
	msgType, err := r.GetUint8(wsctlv.TypeMsgType)
	if err != nil {
		return s.nack(wsctlv.ConfigErrorNoError)
	}

	switch s.state {
	case StateExpectM2:
		if wsctlv.MsgType(msgType) != wsctlv.MsgTypeM2 && wsctlv.MsgType(msgType) != wsctlv.MsgTypeM2D {
			return s.nack(wsctlv.ConfigErrorNoError)
		}
		return s.handleM2(body)
	case StateExpectM4:
		if wsctlv.MsgType(msgType) != wsctlv.MsgTypeM4 {
			return s.nack(wsctlv.ConfigErrorNoError)
		}
		return s.handleM4(body)
	case StateExpectM6:
		if wsctlv.MsgType(msgType) != wsctlv.MsgTypeM6 {
			return s.nack(wsctlv.ConfigErrorNoError)
		}
		return s.handleM6(body)
	case StateExpectM8:
		if wsctlv.MsgType(msgType) != wsctlv.MsgTypeM8 {
			return s.nack(wsctlv.ConfigErrorNoError)
		}
		return s.handleM8(body)
	default:
		return s.nack(wsctlv.ConfigErrorNoError)
	}
}

// nack builds the centrally-issued NACK outcome. A ConfigErrorNoError code
// is suppressed and becomes a silent drop: WSC 2.0.5 reserves code 0 for
// External Registrar use and is self-contradictory about what an Enrollee
// should do with a genuinely out-of-order message, so every mis-sequencing
// and parse-failure path in this package routes through here with code 0
// rather than deciding independently.
func (s *Session) nack(code wsctlv.ConfigError) Outcome {
	if code == wsctlv.ConfigErrorNoError {
		return Outcome{}
	}
	n := &wsctlv.Nack{
		EnrolleeNonce:  s.enrolleeNonce,
		RegistrarNonce: s.registrarNonce,
		ConfigError:    code,
		Version2:       true,
	}
	return Outcome{Frame: frame(OpNack, n.Encode())}
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
