// Package vault composes the cipher, key exchange and commitment layers
// into the document lifecycle operations: upload, share, open and verify.
// Every operation is a pure function of its inputs plus crypto/rand; the
// package keeps no state and performs no I/O or logging.
package vault

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"docseal/go-backend/internal/cipher"
	"docseal/go-backend/internal/commitment"
	"docseal/go-backend/internal/keyexchange"
)

var ErrInvalidRecord = errors.New("document record is invalid")

// DocumentRecord is the in-memory result of an upload. Storage fields
// (StorageCID, GatewayURL) are filled by the storage collaborator after the
// packed ciphertext is handed over.
type DocumentRecord struct {
	DocumentID      string
	FileName        string
	FileType        string
	ContentHash     []byte
	StorageCID      string
	GatewayURL      string
	OwnerCommitment []byte
	WrappedKey      keyexchange.WrappedKey
	UploadedAt      time.Time
	Active          bool
}

// Grant is a wrapped key issued for one recipient of one document.
type Grant struct {
	DocumentID          string
	RecipientCommitment []byte
	WrappedKey          keyexchange.WrappedKey
	GrantedAt           time.Time
}

// UploadResult pairs the metadata record with the packed ciphertext destined
// for the external storage collaborator.
type UploadResult struct {
	Record DocumentRecord
	Packed []byte
}

// Upload encrypts plaintext under a fresh document key, wraps that key for
// the owner and emits the document record. The document id mixes the content
// hash with fresh randomness, so uploading identical content twice yields
// distinct ids; dedup across uploads would leak content equality.
func Upload(plaintext []byte, fileName string, owner keyexchange.KeyPair, now time.Time) (UploadResult, error) {
	contentHash := cipher.Hash(plaintext)

	documentKey, err := cipher.GenerateKey()
	if err != nil {
		return UploadResult{}, err
	}
	defer keyexchange.Zero(documentKey)

	payload, err := cipher.Encrypt(plaintext, documentKey)
	if err != nil {
		return UploadResult{}, err
	}

	documentID, err := newDocumentID(contentHash)
	if err != nil {
		return UploadResult{}, err
	}
	ownerCommitment, err := commitment.Commit(owner.SecretKey)
	if err != nil {
		return UploadResult{}, err
	}
	wrapped, err := keyexchange.Wrap(documentKey, owner.PublicKey, owner)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		Record: DocumentRecord{
			DocumentID:      documentID,
			FileName:        fileName,
			FileType:        fileTypeOf(fileName),
			ContentHash:     contentHash,
			OwnerCommitment: ownerCommitment,
			WrappedKey:      wrapped,
			UploadedAt:      now.UTC(),
			Active:          true,
		},
		Packed: cipher.Pack(payload),
	}, nil
}

// Share recovers the document key through the owner's own wrapped key and
// re-wraps it for the recipient. A caller without the owner secret fails
// closed at the unwrap step.
func Share(record DocumentRecord, owner keyexchange.KeyPair, recipientPublicKey []byte, now time.Time) (Grant, error) {
	if record.DocumentID == "" {
		return Grant{}, ErrInvalidRecord
	}
	documentKey, err := keyexchange.Unwrap(record.WrappedKey, owner.SecretKey)
	if err != nil {
		return Grant{}, err
	}
	defer keyexchange.Zero(documentKey)

	recipientCommitment, err := commitment.Commit(recipientPublicKey)
	if err != nil {
		return Grant{}, err
	}
	wrapped, err := keyexchange.Wrap(documentKey, recipientPublicKey, owner)
	if err != nil {
		return Grant{}, err
	}
	return Grant{
		DocumentID:          record.DocumentID,
		RecipientCommitment: recipientCommitment,
		WrappedKey:          wrapped,
		GrantedAt:           now.UTC(),
	}, nil
}

// Open unwraps the document key and decrypts a packed ciphertext. This is
// the download path for owners and recipients alike.
func Open(packed []byte, wrapped keyexchange.WrappedKey, recipientSecretKey []byte) ([]byte, error) {
	documentKey, err := keyexchange.Unwrap(wrapped, recipientSecretKey)
	if err != nil {
		return nil, err
	}
	defer keyexchange.Zero(documentKey)

	payload, err := cipher.Unpack(packed)
	if err != nil {
		return nil, err
	}
	return cipher.Decrypt(payload, documentKey)
}

// Verify recomputes the content hash of a candidate plaintext and compares
// it byte-for-byte against the hash recorded at upload.
func Verify(candidate []byte, record DocumentRecord) bool {
	if len(record.ContentHash) != blake2b.Size256 {
		return false
	}
	return bytes.Equal(cipher.Hash(candidate), record.ContentHash)
}

func newDocumentID(contentHash []byte) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write(contentHash)
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func fileTypeOf(fileName string) string {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	return strings.ToLower(ext)
}
