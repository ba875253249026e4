// Package eapmethod defines the collaborator surface an outer EAP engine
// uses to drive the Enrollee: a Method value bundling the probe/remove/
// handle-request/load-settings hooks an EAP core dispatches against, plus
// the method's registration constants. Nothing in this package runs the
// state machine itself; pkg/enrollee owns that.
package eapmethod

import (
	"io"

	"github.com/pion/logging"

	"github.com/eap-wsc/enrollee/pkg/enrollee"
	"github.com/eap-wsc/enrollee/pkg/enrolleeconfig"
)

// VendorID and VendorType identify WSC as an IANA Expanded EAP type, the
// same vendor SMI network management private enterprise number and vendor
// type the protocol reserves.
var VendorID = [3]byte{0x00, 0x37, 0x2a}

const VendorType uint32 = 0x00000001

// RequestType is the outer EAP request type WSC rides inside: Expanded,
// since WSC is not one of EAP's IANA-assigned base method types.
const RequestType uint8 = 254

// Name is the method name an outer EAP core would log or report.
const Name = "WSC"

// ExportsMSK is true: a completed handshake yields a usable EAP MSK, so an
// outer EAP core should treat this method as key-generating.
const ExportsMSK = true

// Method bundles the four hooks an outer EAP core calls against, mirroring
// the field names of the C struct this package replaces: Probe, Remove,
// HandleRequest, LoadSettings. The outer core is expected to call
// LoadSettings once per peer to obtain a Config, Probe once per
// authentication attempt to obtain a Session, HandleRequest for every
// inbound WSC-framed payload, and Remove when the attempt ends for any
// reason.
type Method struct {
	LoggerFactory logging.LoggerFactory
}

// LoadSettings parses and validates an Enrollee configuration document.
// Failure here is configuration rejection: the outer core must not call
// Probe with a Config that failed to load.
func (m *Method) LoadSettings(r io.Reader) (*enrolleeconfig.Config, error) {
	return enrolleeconfig.Load(r)
}

// Probe starts a new Enrollee session for one authentication attempt. A
// Method may Probe multiple concurrent Sessions, one per peer; a Session
// is never reused across attempts.
func (m *Method) Probe(cfg *enrolleeconfig.Config) (*enrollee.Session, error) {
	return enrollee.NewSession(cfg, m.LoggerFactory)
}

// Remove tears a Session down, zeroizing its key material. Safe to call
// whether or not the handshake completed.
func (m *Method) Remove(s *enrollee.Session) {
	s.Remove()
}

// HandleRequest feeds one inbound WSC-framed payload to the session and
// returns the Outcome to act on: bytes to send back, and, once Done is
// true, the extracted credentials and exported MSK.
func (m *Method) HandleRequest(s *enrollee.Session, pkt []byte) (enrollee.Outcome, error) {
	return s.HandleRequest(pkt)
}
