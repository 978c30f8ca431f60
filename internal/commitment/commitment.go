// Package commitment derives one-way identifiers from key material so the
// ledger can compare identities without ever learning a key.
package commitment

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Commitments share the content-hash primitive (BLAKE2b-256) but are
// domain-separated by this prefix, so a commitment can never collide with a
// raw content hash even for adversarial inputs.
const domainPrefix = "docseal/commitment/v1|"

// Size is the commitment length in bytes.
const Size = blake2b.Size256

var (
	ErrInvalidKeyLength = errors.New("commitment input must be exactly 32 bytes")
	ErrInvalidEncoding  = errors.New("hex value does not decode to a commitment")
)

// Commit returns the deterministic commitment for a secret or public key.
func Commit(key []byte) ([]byte, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKeyLength
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write([]byte(domainPrefix))
	h.Write(key)
	return h.Sum(nil), nil
}

// ToHex renders a commitment as 64 lowercase hex characters.
func ToHex(c []byte) string {
	return hex.EncodeToString(c)
}

// FromHex decodes a 64-character hex commitment.
func FromHex(value string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil || len(decoded) != Size {
		return nil, ErrInvalidEncoding
	}
	return decoded, nil
}
