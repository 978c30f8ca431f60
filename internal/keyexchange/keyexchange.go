// Package keyexchange implements long-lived X25519 identity key pairs and
// the authenticated wrapping of document keys for individual recipients.
package keyexchange

import (
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the length of public keys, secret keys and seeds.
	KeySize = curve25519.ScalarSize
	// WrapNonceSize is the XChaCha20-Poly1305 nonce length used for wrapping.
	WrapNonceSize = chacha20poly1305.NonceSizeX
	// WrappedKeySize is the sealed document key length (32-byte key + 16-byte tag).
	WrappedKeySize = KeySize + chacha20poly1305.Overhead

	wrapInfo = "docseal/wrap/v1"
)

var (
	ErrInvalidKeyLength  = errors.New("key must be exactly 32 bytes")
	ErrInvalidSeedLength = errors.New("seed must be exactly 32 bytes")
	ErrInvalidEncoding   = errors.New("hex value does not decode to 32 bytes")
	ErrUnwrapFailed      = errors.New("wrapped key could not be opened")
)

// KeyPair is a long-lived X25519 identity. The secret key never leaves the
// holder's device unwrapped; the public key is freely shareable.
type KeyPair struct {
	PublicKey []byte
	SecretKey []byte
}

// WrappedKey is a document key sealed for one recipient. The sender's static
// public key is embedded so the recipient can recompute the shared secret.
// Reusing the static sender key across shares trades forward secrecy for
// simple provenance checks.
type WrappedKey struct {
	EncryptedKey    []byte
	Nonce           []byte
	SenderPublicKey []byte
}

// GenerateKeyPair returns a fresh identity key pair.
func GenerateKeyPair() (KeyPair, error) {
	seed := make([]byte, KeySize)
	if _, err := rand.Read(seed); err != nil {
		return KeyPair{}, err
	}
	return FromSeed(seed)
}

// FromSeed derives the key pair for a stored 32-byte seed. The same seed
// always yields the same identity.
func FromSeed(seed []byte) (KeyPair, error) {
	if len(seed) != KeySize {
		return KeyPair{}, ErrInvalidSeedLength
	}
	secret := append([]byte(nil), seed...)
	public, err := curve25519.X25519(secret, curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PublicKey: public, SecretKey: secret}, nil
}

// Wrap seals a 32-byte document key for the recipient using the sender's
// static secret key, a fresh random 24-byte nonce and XChaCha20-Poly1305
// over the X25519 shared secret.
func Wrap(documentKey, recipientPublicKey []byte, sender KeyPair) (WrappedKey, error) {
	if len(documentKey) != KeySize {
		return WrappedKey{}, ErrInvalidKeyLength
	}
	if len(recipientPublicKey) != KeySize || len(sender.SecretKey) != KeySize {
		return WrappedKey{}, ErrInvalidKeyLength
	}
	aead, err := sharedAEAD(sender.SecretKey, recipientPublicKey)
	if err != nil {
		return WrappedKey{}, err
	}
	nonce := make([]byte, WrapNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return WrappedKey{}, err
	}
	return WrappedKey{
		EncryptedKey:    aead.Seal(nil, nonce, documentKey, nil),
		Nonce:           nonce,
		SenderPublicKey: append([]byte(nil), sender.PublicKey...),
	}, nil
}

// Unwrap recovers the document key using the embedded sender public key and
// the caller's secret key. ErrUnwrapFailed is the only signal; callers must
// treat it as access denied, not as a transient error.
func Unwrap(wrapped WrappedKey, recipientSecretKey []byte) ([]byte, error) {
	if len(recipientSecretKey) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	if len(wrapped.SenderPublicKey) != KeySize || len(wrapped.Nonce) != WrapNonceSize {
		return nil, ErrUnwrapFailed
	}
	aead, err := sharedAEAD(recipientSecretKey, wrapped.SenderPublicKey)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	documentKey, err := aead.Open(nil, wrapped.Nonce, wrapped.EncryptedKey, nil)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	if len(documentKey) != KeySize {
		return nil, ErrUnwrapFailed
	}
	return documentKey, nil
}

// PublicKeyToHex renders a public key as 64 lowercase hex characters.
func PublicKeyToHex(publicKey []byte) string {
	return hex.EncodeToString(publicKey)
}

// KeyFromHex decodes a 64-character hex string into a 32-byte key.
func KeyFromHex(value string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil || len(decoded) != KeySize {
		return nil, ErrInvalidEncoding
	}
	return decoded, nil
}

// KeyPairFromHex rebuilds a key pair from its hex-encoded halves.
func KeyPairFromHex(publicHex, secretHex string) (KeyPair, error) {
	public, err := KeyFromHex(publicHex)
	if err != nil {
		return KeyPair{}, err
	}
	secret, err := KeyFromHex(secretHex)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PublicKey: public, SecretKey: secret}, nil
}

// Zero overwrites key material in place once its scope ends.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func sharedAEAD(secretKey, publicKey []byte) (stdcipher.AEAD, error) {
	shared, err := curve25519.X25519(secretKey, publicKey)
	if err != nil {
		return nil, err
	}
	defer Zero(shared)
	return chacha20poly1305.NewX(kdf32(shared, wrapInfo))
}

func kdf32(input []byte, info string) []byte {
	reader := hkdf.New(sha256.New, input, nil, []byte(info))
	out := make([]byte, 32)
	_, _ = io.ReadFull(reader, out)
	return out
}
