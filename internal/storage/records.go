// Package storage persists document metadata, access grants and the local
// content-addressed ciphertext cache. Indexes are JSON files, optionally
// sealed with a securestore passphrase; blobs are plain files keyed by CID.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"sync"

	"docseal/go-backend/internal/securestore"
	"docseal/go-backend/pkg/models"
)

var (
	ErrRecordNotFound    = errors.New("document record not found")
	ErrRecordExists      = errors.New("document record already exists")
	ErrUnsupportedSchema = errors.New("unsupported storage schema version")
)

const recordIndexSchemaVersion = 1

type recordIndexFile struct {
	Schema  int                         `json:"schema"`
	Records []models.DocumentMetaRecord `json:"records"`
}

// RecordStore keeps document metadata records. Records are deactivated in
// place, never deleted, so ledger anchors stay resolvable.
type RecordStore struct {
	mu         sync.RWMutex
	path       string
	passphrase string
	records    map[string]models.DocumentMetaRecord
	persist    bool
}

// NewRecordStore loads (or initializes) the record index at path. An empty
// path keeps the store memory-only; an empty passphrase stores plain JSON.
func NewRecordStore(path, passphrase string) (*RecordStore, error) {
	s := &RecordStore{
		path:       path,
		passphrase: passphrase,
		records:    make(map[string]models.DocumentMetaRecord),
		persist:    path != "",
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Put inserts a new record. DocumentIDs are unique by construction; a
// duplicate indicates a caller bug.
func (s *RecordStore) Put(rec models.DocumentMetaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.DocumentID]; ok {
		return ErrRecordExists
	}
	s.records[rec.DocumentID] = rec
	return s.save()
}

// Get returns the record for a document id.
func (s *RecordStore) Get(documentID string) (models.DocumentMetaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[documentID]
	if !ok {
		return models.DocumentMetaRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

// List returns all records ordered by upload time, newest first.
func (s *RecordStore) List() []models.DocumentMetaRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentMetaRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// Deactivate marks a record inactive.
func (s *RecordStore) Deactivate(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[documentID]
	if !ok {
		return ErrRecordNotFound
	}
	rec.Active = false
	s.records[documentID] = rec
	return s.save()
}

// Count returns the number of records.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *RecordStore) load() error {
	if !s.persist {
		return nil
	}
	raw, err := s.readIndex()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var file recordIndexFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return err
	}
	if file.Schema != recordIndexSchemaVersion {
		return ErrUnsupportedSchema
	}
	for _, rec := range file.Records {
		s.records[rec.DocumentID] = rec
	}
	return nil
}

func (s *RecordStore) save() error {
	if !s.persist {
		return nil
	}
	file := recordIndexFile{Schema: recordIndexSchemaVersion}
	for _, rec := range s.records {
		file.Records = append(file.Records, rec)
	}
	sort.Slice(file.Records, func(i, j int) bool {
		return file.Records[i].DocumentID < file.Records[j].DocumentID
	})
	if s.passphrase != "" {
		return securestore.WriteEncryptedJSON(s.path, s.passphrase, file)
	}
	payload, err := json.Marshal(file)
	if err != nil {
		return err
	}
	return securestore.WriteFileAtomic(s.path, payload, 0o600)
}

func (s *RecordStore) readIndex() ([]byte, error) {
	if s.passphrase != "" {
		return securestore.ReadDecryptedFile(s.path, s.passphrase)
	}
	return os.ReadFile(s.path)
}
