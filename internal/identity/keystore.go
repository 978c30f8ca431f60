package identity

import (
	"encoding/json"
	"errors"
	"os"

	"docseal/go-backend/internal/keyexchange"
	"docseal/go-backend/internal/securestore"
	"docseal/go-backend/pkg/models"
)

var ErrKeyPairFileInvalid = errors.New("key-pair file is invalid")

// SaveKeyPairFile persists a key pair as {publicKey: hex, secretKey: hex}.
// With a non-empty passphrase the file is a securestore envelope; either way
// it is written atomically with 0600 perms.
func SaveKeyPairFile(path, passphrase string, pair keyexchange.KeyPair) error {
	record := models.KeyPairFile{
		PublicKey: keyexchange.PublicKeyToHex(pair.PublicKey),
		SecretKey: keyexchange.PublicKeyToHex(pair.SecretKey),
	}
	if passphrase != "" {
		return securestore.WriteEncryptedJSON(path, passphrase, record)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return securestore.WriteFileAtomic(path, payload, 0o600)
}

// LoadKeyPairFile reads a persisted key pair back.
func LoadKeyPairFile(path, passphrase string) (keyexchange.KeyPair, error) {
	var record models.KeyPairFile
	if passphrase != "" {
		if err := securestore.ReadDecryptedJSON(path, passphrase, &record); err != nil {
			return keyexchange.KeyPair{}, err
		}
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return keyexchange.KeyPair{}, err
		}
		if err := json.Unmarshal(raw, &record); err != nil {
			return keyexchange.KeyPair{}, ErrKeyPairFileInvalid
		}
	}
	pair, err := keyexchange.KeyPairFromHex(record.PublicKey, record.SecretKey)
	if err != nil {
		return keyexchange.KeyPair{}, ErrKeyPairFileInvalid
	}
	return pair, nil
}
