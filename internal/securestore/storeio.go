package securestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsConfigured reports whether encrypted persistence is configured.
func IsConfigured(path, passphrase string) bool {
	return strings.TrimSpace(path) != "" && strings.TrimSpace(passphrase) != ""
}

// ReadDecryptedFile reads and decrypts file content with the passphrase.
func ReadDecryptedFile(path, passphrase string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decrypt(passphrase, raw)
}

// ReadDecryptedJSON reads, decrypts and unmarshals an encrypted JSON file.
func ReadDecryptedJSON(path, passphrase string, v any) error {
	plaintext, err := ReadDecryptedFile(path, passphrase)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

// WriteEncryptedJSON marshals, encrypts and writes a JSON payload through
// WriteFileAtomic.
func WriteEncryptedJSON(path, passphrase string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	encrypted, err := Encrypt(passphrase, payload)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, encrypted, 0o600)
}

// WriteFileAtomic writes via an exclusively-created temp file in the target
// directory and renames it into place, so readers never observe a partial
// file and the temp handle is released on every exit path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
