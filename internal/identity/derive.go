package identity

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"docseal/go-backend/internal/keyexchange"
)

const hkdfInfoEncryption = "docseal/identity/encryption/v1"

// DeriveEncryptionSeed reduces a bip39 seed to the 32-byte X25519 seed.
func DeriveEncryptionSeed(seedBytes []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, seedBytes, nil, []byte(hkdfInfoEncryption))
	out := make([]byte, keyexchange.KeySize)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}

// KeyPairFromSeedBytes derives the identity key pair for a bip39 seed.
// Deterministic: the same seed always regenerates the same identity.
func KeyPairFromSeedBytes(seedBytes []byte) (keyexchange.KeyPair, error) {
	encSeed, err := DeriveEncryptionSeed(seedBytes)
	if err != nil {
		return keyexchange.KeyPair{}, err
	}
	defer keyexchange.Zero(encSeed)
	return keyexchange.FromSeed(encSeed)
}
