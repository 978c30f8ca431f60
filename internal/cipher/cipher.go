// Package cipher implements the per-document symmetric encryption layer:
// key generation, authenticated encryption of document bytes, the packed
// wire format for encrypted blobs, and the repo-wide content hash.
package cipher

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the document key length in bytes.
	KeySize = chacha20poly1305.KeySize
	// NonceSize is the per-encryption nonce length in bytes.
	NonceSize = chacha20poly1305.NonceSize
	// TagSize is the authentication tag length in bytes.
	TagSize = chacha20poly1305.Overhead
	// PackedFloor is the minimum valid packed payload length (empty plaintext).
	PackedFloor = NonceSize + TagSize
)

var (
	ErrInvalidKeyLength     = errors.New("document key must be exactly 32 bytes")
	ErrAuthenticationFailed = errors.New("payload authentication failed")
	ErrMalformedPayload     = errors.New("packed payload is malformed")
)

// Payload is an encrypted document body. Nonce uniqueness per key is
// guaranteed by drawing all 96 bits from crypto/rand on every Encrypt.
type Payload struct {
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

// GenerateKey returns a fresh 32-byte document key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals plaintext under key with ChaCha20-Poly1305 and a fresh
// random nonce. No associated data is bound to the payload.
func Encrypt(plaintext, key []byte) (Payload, error) {
	if len(key) != KeySize {
		return Payload{}, ErrInvalidKeyLength
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return Payload{}, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Payload{}, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - TagSize
	return Payload{
		Nonce:      nonce,
		Tag:        sealed[split:],
		Ciphertext: sealed[:split],
	}, nil
}

// Decrypt opens a payload. A tag mismatch covers both corruption and a
// wrong key; the two are indistinguishable on purpose.
func Decrypt(p Payload, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	if len(p.Nonce) != NonceSize || len(p.Tag) != TagSize {
		return nil, ErrMalformedPayload
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(p.Ciphertext)+TagSize)
	sealed = append(sealed, p.Ciphertext...)
	sealed = append(sealed, p.Tag...)
	plaintext, err := aead.Open(nil, p.Nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Pack serializes a payload as nonce(12) || tag(16) || ciphertext.
func Pack(p Payload) []byte {
	out := make([]byte, 0, len(p.Nonce)+len(p.Tag)+len(p.Ciphertext))
	out = append(out, p.Nonce...)
	out = append(out, p.Tag...)
	out = append(out, p.Ciphertext...)
	return out
}

// Unpack slices a packed payload at the fixed offsets. Inputs below the
// 28-byte floor indicate truncated or corrupted storage.
func Unpack(packed []byte) (Payload, error) {
	if len(packed) < PackedFloor {
		return Payload{}, ErrMalformedPayload
	}
	return Payload{
		Nonce:      append([]byte(nil), packed[:NonceSize]...),
		Tag:        append([]byte(nil), packed[NonceSize:PackedFloor]...),
		Ciphertext: append([]byte(nil), packed[PackedFloor:]...),
	}, nil
}

// Hash returns the BLAKE2b-256 content hash of data. It is computed over
// plaintext and recorded independently of encryption.
func Hash(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}
