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

var ErrGrantNotFound = errors.New("access grant not found")

const accessIndexSchemaVersion = 1

type accessIndexFile struct {
	Schema int                  `json:"schema"`
	Grants []models.GrantRecord `json:"grants"`
}

// AccessStore is the access-control record: one wrapped key per
// (document, recipient commitment) pair. Revoke removes the association
// only; a recipient who already unwrapped the document key keeps plaintext
// access, which is why hardened deployments rotate the document key and
// re-upload on revocation.
type AccessStore struct {
	mu         sync.RWMutex
	path       string
	passphrase string
	grants     map[string]map[string]models.GrantRecord
	persist    bool
}

// NewAccessStore loads (or initializes) the access index at path.
func NewAccessStore(path, passphrase string) (*AccessStore, error) {
	s := &AccessStore{
		path:       path,
		passphrase: passphrase,
		grants:     make(map[string]map[string]models.GrantRecord),
		persist:    path != "",
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Grant records a wrapped key for a recipient. Re-granting overwrites the
// previous wrapped key for the same pair.
func (s *AccessStore) Grant(g models.GrantRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byRecipient, ok := s.grants[g.DocumentID]
	if !ok {
		byRecipient = make(map[string]models.GrantRecord)
		s.grants[g.DocumentID] = byRecipient
	}
	byRecipient[g.RecipientCommitment] = g
	return s.save()
}

// Revoke removes the (document, recipient) association.
func (s *AccessStore) Revoke(documentID, recipientCommitment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byRecipient, ok := s.grants[documentID]
	if !ok {
		return ErrGrantNotFound
	}
	if _, ok := byRecipient[recipientCommitment]; !ok {
		return ErrGrantNotFound
	}
	delete(byRecipient, recipientCommitment)
	if len(byRecipient) == 0 {
		delete(s.grants, documentID)
	}
	return s.save()
}

// Get returns the grant for a (document, recipient) pair.
func (s *AccessStore) Get(documentID, recipientCommitment string) (models.GrantRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byRecipient, ok := s.grants[documentID]
	if !ok {
		return models.GrantRecord{}, ErrGrantNotFound
	}
	g, ok := byRecipient[recipientCommitment]
	if !ok {
		return models.GrantRecord{}, ErrGrantNotFound
	}
	return g, nil
}

// ListRecipients returns the recipient commitments granted for a document,
// sorted for stable output.
func (s *AccessStore) ListRecipients(documentID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byRecipient := s.grants[documentID]
	out := make([]string, 0, len(byRecipient))
	for commitment := range byRecipient {
		out = append(out, commitment)
	}
	sort.Strings(out)
	return out
}

// Count returns the total number of grants.
func (s *AccessStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byRecipient := range s.grants {
		n += len(byRecipient)
	}
	return n
}

func (s *AccessStore) load() error {
	if !s.persist {
		return nil
	}
	var raw []byte
	var err error
	if s.passphrase != "" {
		raw, err = securestore.ReadDecryptedFile(s.path, s.passphrase)
	} else {
		raw, err = os.ReadFile(s.path)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var file accessIndexFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return err
	}
	if file.Schema != accessIndexSchemaVersion {
		return ErrUnsupportedSchema
	}
	for _, g := range file.Grants {
		byRecipient, ok := s.grants[g.DocumentID]
		if !ok {
			byRecipient = make(map[string]models.GrantRecord)
			s.grants[g.DocumentID] = byRecipient
		}
		byRecipient[g.RecipientCommitment] = g
	}
	return nil
}

func (s *AccessStore) save() error {
	if !s.persist {
		return nil
	}
	file := accessIndexFile{Schema: accessIndexSchemaVersion}
	for _, byRecipient := range s.grants {
		for _, g := range byRecipient {
			file.Grants = append(file.Grants, g)
		}
	}
	sort.Slice(file.Grants, func(i, j int) bool {
		if file.Grants[i].DocumentID != file.Grants[j].DocumentID {
			return file.Grants[i].DocumentID < file.Grants[j].DocumentID
		}
		return file.Grants[i].RecipientCommitment < file.Grants[j].RecipientCommitment
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
