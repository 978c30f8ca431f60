// Package identity manages the user's long-lived encryption identity: the
// bip39 mnemonic it is derived from, the passphrase-protected seed envelope,
// and the persisted key-pair file.
package identity

import (
	"errors"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"

	"docseal/go-backend/internal/keyexchange"
)

const idPrefix = "ds1"

var ErrInvalidPublicKey = errors.New("invalid public key size")

// BuildIdentityID derives the public, shareable identity id from an X25519
// public key.
func BuildIdentityID(publicKey []byte) (string, error) {
	if len(publicKey) != keyexchange.KeySize {
		return "", ErrInvalidPublicKey
	}
	h := blake2b.Sum256(publicKey)
	return idPrefix + base58.Encode(h[:]), nil
}

// VerifyIdentityID reports whether an identity id matches a public key.
func VerifyIdentityID(identityID string, publicKey []byte) (bool, error) {
	expected, err := BuildIdentityID(publicKey)
	if err != nil {
		return false, err
	}
	return identityID == expected, nil
}
