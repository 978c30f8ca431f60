// Package models holds the persistence and transport record shapes shared
// between the daemon, its stores and external collaborators. All key and
// hash fields are lowercase hex; timestamps are RFC 3339 UTC.
package models

import "time"

// WrappedKeyRecord is the transport form of a wrapped document key.
// EncryptedKey decodes to 48 bytes, Nonce to 24, SenderPublicKey to 32.
type WrappedKeyRecord struct {
	EncryptedKey    string `json:"encryptedKey"`
	Nonce           string `json:"nonce"`
	SenderPublicKey string `json:"senderPublicKey"`
}

// KeyPairFile is the on-disk identity key pair layout.
type KeyPairFile struct {
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
}

// DocumentMetaRecord is the document metadata emitted at upload time and
// referenced, never mutated, by subsequent shares. ContentHash covers the
// plaintext, not the ciphertext.
type DocumentMetaRecord struct {
	DocumentID      string           `json:"documentId"`
	FileName        string           `json:"fileName"`
	FileType        string           `json:"fileType,omitempty"`
	ContentHash     string           `json:"contentHash"`
	StorageCID      string           `json:"storageCid"`
	GatewayURL      string           `json:"gatewayUrl"`
	OwnerCommitment string           `json:"ownerCommitment"`
	WrappedKey      WrappedKeyRecord `json:"wrappedKey"`
	UploadedAt      time.Time        `json:"uploadedAt"`
	Active          bool             `json:"active"`
}

// GrantRecord associates a recipient commitment with its wrapped key for
// one document. Revocation removes the association; it is an access-list
// operation, not cryptographic erasure.
type GrantRecord struct {
	DocumentID          string           `json:"documentId"`
	RecipientCommitment string           `json:"recipientCommitment"`
	WrappedKey          WrappedKeyRecord `json:"wrappedKey"`
	GrantedAt           time.Time        `json:"grantedAt"`
}

// GatewayNode describes one storage gateway endpoint from the daemon config.
type GatewayNode struct {
	Multiaddr string `json:"multiaddr"`
	Label     string `json:"label,omitempty"`
}

// DaemonStatus is the read-only status surface of the daemon.
type DaemonStatus struct {
	IdentityID      string    `json:"identityId"`
	OwnerPublicKey  string    `json:"ownerPublicKey"`
	DocumentCount   int       `json:"documentCount"`
	GrantCount      int       `json:"grantCount"`
	GatewayNodes    int       `json:"gatewayNodes"`
	StartedAt       time.Time `json:"startedAt"`
	StorageWritable bool      `json:"storageWritable"`
}
