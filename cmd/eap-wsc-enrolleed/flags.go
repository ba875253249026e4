package main

import (
	"flag"
	"fmt"
	"os"
)

// Options holds the CLI flags for the eap-wsc-enrolleed entrypoint.
type Options struct {
	// ConfigPath is the YAML configuration document path (see
	// pkg/enrolleeconfig for the key table).
	ConfigPath string

	// Verbose enables debug-level logging of the handshake's state
	// transitions.
	Verbose bool
}

// DefaultOptions returns Options with the same defaults ParseFlags falls
// back to when a flag is omitted.
func DefaultOptions() Options {
	return Options{
		ConfigPath: "enrollee.yaml",
	}
}

// ParseFlags parses the standard CLI flags and returns Options.
//
//	-config    Path to the YAML configuration document (default: enrollee.yaml)
//	-v         Verbose (debug-level) logging
func ParseFlags() Options {
	defaults := DefaultOptions()
	o := Options{}

	flag.StringVar(&o.ConfigPath, "config", defaults.ConfigPath, "Path to the YAML configuration document")
	flag.BoolVar(&o.Verbose, "v", false, "Verbose (debug-level) logging")
	flag.Parse()

	return o
}

// PrintUsage prints usage information to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}
