// Package service composes the pure vault core with the local stores,
// gateway configuration, logging, metrics and attempt limiting. All error
// translation for the API surface happens here; the core stays silent.
package service

import (
	"errors"
	"log/slog"
	"time"

	"docseal/go-backend/internal/commitment"
	"docseal/go-backend/internal/gateway"
	"docseal/go-backend/internal/identity"
	"docseal/go-backend/internal/keyexchange"
	"docseal/go-backend/internal/observability"
	"docseal/go-backend/internal/platform/privacylog"
	"docseal/go-backend/internal/platform/ratelimiter"
	"docseal/go-backend/internal/storage"
	"docseal/go-backend/internal/vault"
	"docseal/go-backend/pkg/models"
)

var (
	ErrRateLimited     = errors.New("operation rate limited")
	ErrDocumentRevoked = errors.New("document is deactivated")
)

type Service struct {
	cfg     gateway.Config
	log     *slog.Logger
	owner   keyexchange.KeyPair
	ownerID string

	records *storage.RecordStore
	access  *storage.AccessStore
	blobs   *storage.BlobStore
	limiter *ratelimiter.KeyLimiter
	metrics *observability.Metrics

	startedAt time.Time
	now       func() time.Time
}

type Options struct {
	Config  gateway.Config
	Owner   keyexchange.KeyPair
	Logger  *slog.Logger
	Records *storage.RecordStore
	Access  *storage.AccessStore
	Blobs   *storage.BlobStore
	Metrics *observability.Metrics
	// ShareRPS limits share/open attempts per identity; zero disables.
	ShareRPS   float64
	ShareBurst int
}

func New(opts Options) (*Service, error) {
	ownerID, err := identity.BuildIdentityID(opts.Owner.PublicKey)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Service{
		cfg:       opts.Config,
		log:       log,
		owner:     opts.Owner,
		ownerID:   ownerID,
		records:   opts.Records,
		access:    opts.Access,
		blobs:     opts.Blobs,
		limiter:   ratelimiter.New(opts.ShareRPS, opts.ShareBurst, 10*time.Minute),
		metrics:   metrics,
		startedAt: time.Now().UTC(),
		now:       time.Now,
	}, nil
}

// Upload encrypts a document, caches the packed ciphertext in the
// content-addressed store and persists the metadata record.
func (s *Service) Upload(fileName string, plaintext []byte) (models.DocumentMetaRecord, error) {
	result, err := vault.Upload(plaintext, fileName, s.owner, s.now())
	if err != nil {
		return models.DocumentMetaRecord{}, err
	}

	cid, err := s.blobs.Put(result.Packed)
	if err != nil {
		return models.DocumentMetaRecord{}, err
	}
	result.Record.StorageCID = cid
	result.Record.GatewayURL = gateway.RetrievalURL(s.cfg, cid)

	rec := vault.EncodeRecord(result.Record)
	if err := s.records.Put(rec); err != nil {
		return models.DocumentMetaRecord{}, err
	}

	s.metrics.Uploads.Inc()
	s.metrics.PayloadBytes.Observe(float64(len(plaintext)))
	s.log.Info("document uploaded",
		"document_id", rec.DocumentID,
		"storage_cid", rec.StorageCID,
		"size", len(plaintext),
	)
	return rec, nil
}

// Share unwraps the owner's key for a document and re-wraps it for the
// recipient public key (hex), recording the grant in the access store.
func (s *Service) Share(documentID, recipientPublicHex string) (models.GrantRecord, error) {
	if !s.allow() {
		return models.GrantRecord{}, ErrRateLimited
	}
	recipientPub, err := keyexchange.KeyFromHex(recipientPublicHex)
	if err != nil {
		return models.GrantRecord{}, err
	}
	record, err := s.activeRecord(documentID)
	if err != nil {
		return models.GrantRecord{}, err
	}

	grant, err := vault.Share(record, s.owner, recipientPub, s.now())
	if err != nil {
		if errors.Is(err, keyexchange.ErrUnwrapFailed) {
			s.metrics.UnwrapFailures.Inc()
		}
		return models.GrantRecord{}, err
	}

	grantRec := vault.EncodeGrant(grant)
	if err := s.access.Grant(grantRec); err != nil {
		return models.GrantRecord{}, err
	}

	s.metrics.Shares.Inc()
	s.log.Info("document shared",
		"document_id", documentID,
		"recipient", grantRec.RecipientCommitment,
	)
	return grantRec, nil
}

// Revoke removes a recipient's access-list entry. The recipient may have
// cached the document key already; rotation is the hardened answer, not
// this call.
func (s *Service) Revoke(documentID, recipientCommitmentHex string) error {
	if _, err := commitment.FromHex(recipientCommitmentHex); err != nil {
		return err
	}
	if err := s.access.Revoke(documentID, recipientCommitmentHex); err != nil {
		return err
	}
	s.metrics.Revocations.Inc()
	s.log.Info("access revoked",
		"document_id", documentID,
		"recipient", recipientCommitmentHex,
	)
	return nil
}

// OpenOwned fetches and decrypts a document with the owner's own wrapped key.
func (s *Service) OpenOwned(documentID string) ([]byte, error) {
	if !s.allow() {
		return nil, ErrRateLimited
	}
	rec, err := s.records.Get(documentID)
	if err != nil {
		return nil, err
	}
	record, err := vault.DecodeRecord(rec)
	if err != nil {
		return nil, err
	}
	packed, err := s.blobs.Get(record.StorageCID)
	if err != nil {
		return nil, err
	}
	plaintext, err := vault.Open(packed, record.WrappedKey, s.owner.SecretKey)
	if err != nil {
		if errors.Is(err, keyexchange.ErrUnwrapFailed) {
			s.metrics.UnwrapFailures.Inc()
		}
		return nil, err
	}
	s.metrics.Opens.Inc()
	return plaintext, nil
}

// Verify recomputes the content hash of candidate bytes against the record.
func (s *Service) Verify(documentID string, candidate []byte) (bool, error) {
	rec, err := s.records.Get(documentID)
	if err != nil {
		return false, err
	}
	record, err := vault.DecodeRecord(rec)
	if err != nil {
		return false, err
	}
	return vault.Verify(candidate, record), nil
}

// Deactivate marks a document inactive; records are never deleted.
func (s *Service) Deactivate(documentID string) error {
	return s.records.Deactivate(documentID)
}

// Documents lists all metadata records.
func (s *Service) Documents() []models.DocumentMetaRecord {
	return s.records.List()
}

// Grants lists recipient commitments for a document.
func (s *Service) Grants(documentID string) []string {
	return s.access.ListRecipients(documentID)
}

// Status reports the daemon's read-only state.
func (s *Service) Status() models.DaemonStatus {
	return models.DaemonStatus{
		IdentityID:      s.ownerID,
		OwnerPublicKey:  keyexchange.PublicKeyToHex(s.owner.PublicKey),
		DocumentCount:   s.records.Count(),
		GrantCount:      s.access.Count(),
		GatewayNodes:    len(s.cfg.Gateway.Nodes),
		StartedAt:       s.startedAt,
		StorageWritable: s.blobs.Writable(),
	}
}

// Metrics exposes the Prometheus registry for the HTTP layer.
func (s *Service) Metrics() *observability.Metrics {
	return s.metrics
}

func (s *Service) allow() bool {
	if s.limiter.Allow(privacylog.Fingerprint(s.ownerID), s.now()) {
		return true
	}
	s.metrics.RateLimited.Inc()
	return false
}

func (s *Service) activeRecord(documentID string) (vault.DocumentRecord, error) {
	rec, err := s.records.Get(documentID)
	if err != nil {
		return vault.DocumentRecord{}, err
	}
	record, err := vault.DecodeRecord(rec)
	if err != nil {
		return vault.DocumentRecord{}, err
	}
	if !record.Active {
		return vault.DocumentRecord{}, ErrDocumentRevoked
	}
	return record, nil
}
