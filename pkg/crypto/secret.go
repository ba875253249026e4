package crypto

import "sync"

// Secret holds a byte slice that must be wiped once no longer needed:
// DH private keys, Z, DHKey, KDK, and the derived AuthKey/KeyWrapKey/EMSK.
// It mirrors the zeroize-on-teardown discipline of SecureContext in the
// session layer this package supports, generalized to a reusable wrapper
// instead of a single struct's bespoke method.
type Secret struct {
	mu   sync.Mutex
	b    []byte
	zero bool
}

// NewSecret wraps b. Ownership of b transfers to the Secret; callers must
// not retain or mutate it afterward.
func NewSecret(b []byte) *Secret {
	return &Secret{b: b}
}

// Bytes returns the wrapped value, or nil if Zeroize has already run.
func (s *Secret) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zero {
		return nil
	}
	return s.b
}

// Zeroize overwrites the wrapped bytes with zeros and marks the Secret
// empty. Safe to call more than once and from concurrent goroutines.
func (s *Secret) Zeroize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zero {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
	s.zero = true
}
