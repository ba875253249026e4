package crypto

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"sync"
)

// DH5KeySize is the width, in bytes, of DH-5 private keys, public keys, and
// (at most) the shared secret: ceil(1536/8).
const DH5KeySize = 192

// ErrDH5InvalidKeySize is returned when a DH-5 key does not decode to the
// expected 192-byte width.
var ErrDH5InvalidKeySize = errors.New("crypto: invalid DH-5 key size, must be 192 bytes")

// dh5Prime and dh5Generator are the 1536-bit MODP Group 5 parameters from
// RFC 3526 Section 4. They are process-wide, immutable, and computed once:
// spec.md's Design Notes call for module-scoped constants here instead of
// the mutable global key handles the original used.
var (
	dh5Prime     = sync.OnceValue(computeDH5Prime)
	dh5Generator = sync.OnceValue(computeDH5Generator)
)

func computeDH5Prime() *big.Int {
	p, ok := new(big.Int).SetString(
		"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD"+
			"129024E088A67CC74020BBEA63B139B22514A08798E3404DD"+
			"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245"+
			"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED"+
			"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D"+
			"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F"+
			"83655D23DCA3AD961C62F356208552BB9ED529077096966D"+
			"670C354E4ABC9804F1746C08CA237327FFFFFFFFFFFFFFFF", 16)
	if !ok {
		panic("crypto: invalid embedded DH-5 prime")
	}
	return p
}

func computeDH5Generator() *big.Int {
	return big.NewInt(2)
}

// DH5Prime returns the 1536-bit MODP Group 5 prime.
func DH5Prime() *big.Int { return dh5Prime() }

// DH5Generator returns the MODP Group 5 generator (2).
func DH5Generator() *big.Int { return dh5Generator() }

// DH5GeneratePrivateKey draws a random 192-byte private exponent from r.
// The Enrollee uses this as its DH-5 private key unless a deterministic
// value is supplied via configuration (for reproducible test vectors).
func DH5GeneratePrivateKey(r io.Reader) ([DH5KeySize]byte, error) {
	var priv [DH5KeySize]byte
	if r == nil {
		r = rand.Reader
	}
	if _, err := io.ReadFull(r, priv[:]); err != nil {
		return priv, err
	}
	return priv, nil
}

// DH5PublicKey computes generator^private mod prime, encoded as a
// left-zero-padded 192-byte big-endian integer.
func DH5PublicKey(private []byte) ([DH5KeySize]byte, error) {
	var pub [DH5KeySize]byte
	if len(private) != DH5KeySize {
		return pub, ErrDH5InvalidKeySize
	}

	x := new(big.Int).SetBytes(private)
	y := new(big.Int).Exp(dh5Generator(), x, dh5Prime())

	putPadded(pub[:], y)
	return pub, nil
}

// DH5SharedSecret computes peerPublic^private mod prime. WSC 2.0.5 Section
// 7.4 calls this Z and allows it to be shorter than 192 bytes once leading
// zero bytes are stripped ("a shared secret of up to 192 octets"); the
// returned slice reflects that, matching the original's variable-length
// l_key_compute_dh_secret output.
func DH5SharedSecret(private, peerPublic []byte) ([]byte, error) {
	if len(private) != DH5KeySize {
		return nil, ErrDH5InvalidKeySize
	}
	if len(peerPublic) != DH5KeySize {
		return nil, ErrDH5InvalidKeySize
	}

	x := new(big.Int).SetBytes(private)
	peer := new(big.Int).SetBytes(peerPublic)
	z := new(big.Int).Exp(peer, x, dh5Prime())

	return z.Bytes(), nil
}

// putPadded writes v into buf, left-padded with zero bytes, returning the
// full width of buf regardless of v's minimal encoding length.
func putPadded(buf []byte, v *big.Int) {
	b := v.Bytes()
	copy(buf[len(buf)-len(b):], b)
}
