// eap-wsc-enrolleed drives one EAP-WSC Enrollee handshake using
// pkg/eapmethod, reading inbound WSC-framed payloads and writing outbound
// ones as hex-encoded lines.
//
// This binary is a reference harness, not a deployable EAP peer: the
// outer EAP framing engine, network transport, and D-Bus command surface
// spec.md lists as external collaborators are out of scope for this
// module, so this entrypoint substitutes a line-oriented stdin/stdout
// transport for them.
//
// Usage:
//
//	eap-wsc-enrolleed [options]
//
// Options:
//
//	-config    Path to the YAML configuration document (default: enrollee.yaml)
//	-v         Verbose (debug-level) logging
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pion/logging"

	"github.com/eap-wsc/enrollee/pkg/eapmethod"
	"github.com/eap-wsc/enrollee/pkg/enrollee"
)

// Run loads configuration, probes a session, and drives the handshake
// against the frames it reads from in: one hex-encoded WSC-framed payload
// per line, with output frames hex-encoded one per line to out. This
// stands in for the outer EAP framing engine / transport spec.md §1 lists
// as an external collaborator — a real deployment wires pkg/eapmethod.Method
// into whatever EAP core and network transport it already has, rather
// than this line-oriented harness.
func Run(opts Options, in io.Reader, out io.Writer) error {
	loggerFactory := logging.NewDefaultLoggerFactory()
	if opts.Verbose {
		loggerFactory.DefaultLogLevel = logging.LogLevelDebug
	} else {
		loggerFactory.DefaultLogLevel = logging.LogLevelWarn
	}
	logger := loggerFactory.NewLogger("eap-wsc-enrolleed")

	cfgFile, err := os.Open(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer cfgFile.Close()

	m := &eapmethod.Method{LoggerFactory: loggerFactory}

	cfg, err := m.LoadSettings(cfgFile)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	session, err := m.Probe(cfg)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer m.Remove(session)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lines := make(chan string)
	scanErrs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErrs <- scanner.Err()
		close(lines)
	}()

	logger.Info("starting Enrollee handshake")
	startOutcome, err := m.HandleRequest(session, []byte{byte(enrollee.OpStart), 0x00})
	if err != nil {
		return fmt.Errorf("handle start: %w", err)
	}
	if err := writeFrame(out, startOutcome.Frame); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted, aborting session")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErrs; err != nil {
					return fmt.Errorf("read frame: %w", err)
				}
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			pkt, err := hex.DecodeString(strings.TrimSpace(line))
			if err != nil {
				logger.Warnf("dropping malformed hex line: %v", err)
				continue
			}

			outcome, err := m.HandleRequest(session, pkt)
			if err != nil {
				return fmt.Errorf("handle request: %w", err)
			}
			if err := writeFrame(out, outcome.Frame); err != nil {
				return err
			}
			if outcome.Done {
				printResult(logger, outcome)
				return nil
			}
		}
	}
}

func writeFrame(out io.Writer, frame []byte) error {
	if len(frame) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(out, hex.EncodeToString(frame))
	return err
}

// printResult logs the credentials and MSK a completed handshake produced.
// The MSK is logged at debug level only: it is key material, not a value
// that belongs in default-level output.
func printResult(logger logging.LeveledLogger, outcome enrollee.Outcome) {
	logger.Infof("handshake complete, %d credential(s) received", len(outcome.Credentials))
	for _, c := range outcome.Credentials {
		logger.Infof("  network %d: ssid=%q authType=%#04x encrType=%#04x", c.NetworkIndex, c.SSID, c.AuthType, c.EncrType)
	}
	logger.Debugf("MSK: %x", outcome.MSK)
}

func main() {
	opts := ParseFlags()
	if err := Run(opts, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("eap-wsc-enrolleed: %v", err)
	}
}
