package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"

	"docseal/go-backend/internal/securestore"
)

var (
	ErrBlobNotFound   = errors.New("blob not found")
	ErrInvalidBlobCID = errors.New("invalid blob cid")
)

// BlobStore is the local content-addressed cache of packed ciphertexts. It
// stands in for the external storage network: blobs are keyed by the same
// CID the gateway would assign, base58 over the BLAKE2b-256 of the packed
// bytes. Blobs are already encrypted, so files are stored as-is.
type BlobStore struct {
	dir string
}

// NewBlobStore creates the blob directory if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &BlobStore{dir: dir}, nil
}

// CID computes the content id for a packed ciphertext.
func CID(packed []byte) string {
	sum := blake2b.Sum256(packed)
	return base58.Encode(sum[:])
}

// Put stores a packed ciphertext and returns its CID. Re-putting identical
// bytes is a no-op with the same CID.
func (s *BlobStore) Put(packed []byte) (string, error) {
	cid := CID(packed)
	path, err := s.blobPath(cid)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return cid, nil
	}
	if err := securestore.WriteFileAtomic(path, packed, 0o600); err != nil {
		return "", err
	}
	return cid, nil
}

// Get returns the packed ciphertext for a CID.
func (s *BlobStore) Get(cid string) ([]byte, error) {
	path, err := s.blobPath(cid)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Has reports whether a blob is cached locally.
func (s *BlobStore) Has(cid string) bool {
	path, err := s.blobPath(cid)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

// Writable probes that the blob directory accepts writes.
func (s *BlobStore) Writable() bool {
	probe := filepath.Join(s.dir, ".probe")
	if err := os.WriteFile(probe, []byte{}, 0o600); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}

func (s *BlobStore) blobPath(cid string) (string, error) {
	cid = strings.TrimSpace(cid)
	if cid == "" || strings.ContainsAny(cid, "/\\.") {
		return "", ErrInvalidBlobCID
	}
	if _, err := base58.Decode(cid); err != nil {
		return "", ErrInvalidBlobCID
	}
	return filepath.Join(s.dir, cid), nil
}
