package vault

import (
	"encoding/hex"

	"docseal/go-backend/internal/commitment"
	"docseal/go-backend/internal/keyexchange"
	"docseal/go-backend/pkg/models"
)

// EncodeWrappedKey renders a wrapped key in its hex transport form.
func EncodeWrappedKey(w keyexchange.WrappedKey) models.WrappedKeyRecord {
	return models.WrappedKeyRecord{
		EncryptedKey:    hex.EncodeToString(w.EncryptedKey),
		Nonce:           hex.EncodeToString(w.Nonce),
		SenderPublicKey: hex.EncodeToString(w.SenderPublicKey),
	}
}

// DecodeWrappedKey parses a transport record back into a wrapped key.
// Field lengths are validated (48/24/32 bytes respectively).
func DecodeWrappedKey(rec models.WrappedKeyRecord) (keyexchange.WrappedKey, error) {
	encrypted, err := hex.DecodeString(rec.EncryptedKey)
	if err != nil || len(encrypted) != keyexchange.WrappedKeySize {
		return keyexchange.WrappedKey{}, keyexchange.ErrInvalidEncoding
	}
	nonce, err := hex.DecodeString(rec.Nonce)
	if err != nil || len(nonce) != keyexchange.WrapNonceSize {
		return keyexchange.WrappedKey{}, keyexchange.ErrInvalidEncoding
	}
	sender, err := keyexchange.KeyFromHex(rec.SenderPublicKey)
	if err != nil {
		return keyexchange.WrappedKey{}, err
	}
	return keyexchange.WrappedKey{
		EncryptedKey:    encrypted,
		Nonce:           nonce,
		SenderPublicKey: sender,
	}, nil
}

// EncodeRecord renders a document record in its persistence form.
func EncodeRecord(r DocumentRecord) models.DocumentMetaRecord {
	return models.DocumentMetaRecord{
		DocumentID:      r.DocumentID,
		FileName:        r.FileName,
		FileType:        r.FileType,
		ContentHash:     hex.EncodeToString(r.ContentHash),
		StorageCID:      r.StorageCID,
		GatewayURL:      r.GatewayURL,
		OwnerCommitment: commitment.ToHex(r.OwnerCommitment),
		WrappedKey:      EncodeWrappedKey(r.WrappedKey),
		UploadedAt:      r.UploadedAt,
		Active:          r.Active,
	}
}

// DecodeRecord parses a persisted metadata record.
func DecodeRecord(rec models.DocumentMetaRecord) (DocumentRecord, error) {
	if rec.DocumentID == "" {
		return DocumentRecord{}, ErrInvalidRecord
	}
	contentHash, err := hex.DecodeString(rec.ContentHash)
	if err != nil || len(contentHash) != 32 {
		return DocumentRecord{}, ErrInvalidRecord
	}
	ownerCommitment, err := commitment.FromHex(rec.OwnerCommitment)
	if err != nil {
		return DocumentRecord{}, ErrInvalidRecord
	}
	wrapped, err := DecodeWrappedKey(rec.WrappedKey)
	if err != nil {
		return DocumentRecord{}, err
	}
	return DocumentRecord{
		DocumentID:      rec.DocumentID,
		FileName:        rec.FileName,
		FileType:        rec.FileType,
		ContentHash:     contentHash,
		StorageCID:      rec.StorageCID,
		GatewayURL:      rec.GatewayURL,
		OwnerCommitment: ownerCommitment,
		WrappedKey:      wrapped,
		UploadedAt:      rec.UploadedAt,
		Active:          rec.Active,
	}, nil
}

// EncodeGrant renders a grant in its persistence form.
func EncodeGrant(g Grant) models.GrantRecord {
	return models.GrantRecord{
		DocumentID:          g.DocumentID,
		RecipientCommitment: commitment.ToHex(g.RecipientCommitment),
		WrappedKey:          EncodeWrappedKey(g.WrappedKey),
		GrantedAt:           g.GrantedAt,
	}
}
