package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// All records in this package present camelCase field names on the wire.
func TestRecordJSONKeysAreCamelCase(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	values := []any{
		WrappedKeyRecord{EncryptedKey: "aa", Nonce: "bb", SenderPublicKey: "cc"},
		KeyPairFile{PublicKey: "aa", SecretKey: "bb"},
		DocumentMetaRecord{DocumentID: "d1", FileName: "a.txt", ContentHash: "aa", UploadedAt: now, Active: true},
		GrantRecord{DocumentID: "d1", RecipientCommitment: "cc", GrantedAt: now},
		DaemonStatus{IdentityID: "ds1x", OwnerPublicKey: "aa", StartedAt: now},
	}
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %T failed: %v", v, err)
		}
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keys); err != nil {
			t.Fatalf("unmarshal %T failed: %v", v, err)
		}
		for key := range keys {
			if strings.Contains(key, "_") {
				t.Fatalf("%T exposes snake_case JSON key %q", v, key)
			}
		}
	}
}
