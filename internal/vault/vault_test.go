package vault

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"docseal/go-backend/internal/commitment"
	"docseal/go-backend/internal/keyexchange"
)

var testNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func testPair(t *testing.T) keyexchange.KeyPair {
	t.Helper()
	pair, err := keyexchange.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair failed: %v", err)
	}
	return pair
}

func TestUploadOpenRoundTrip(t *testing.T) {
	owner := testPair(t)
	plaintext := []byte("quarterly report, confidential")

	result, err := Upload(plaintext, "report.pdf", owner, testNow)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	rec := result.Record
	if rec.DocumentID == "" || len(rec.DocumentID) != 64 {
		t.Fatalf("unexpected document id: %q", rec.DocumentID)
	}
	if rec.FileType != "pdf" {
		t.Fatalf("unexpected file type: %q", rec.FileType)
	}
	if !rec.Active {
		t.Fatal("fresh record should be active")
	}
	if len(result.Packed) != len(plaintext)+28 {
		t.Fatalf("unexpected packed length: %d", len(result.Packed))
	}

	got, err := Open(result.Packed, rec.WrappedKey, owner.SecretKey)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("opened plaintext mismatch")
	}
}

func TestUploadContentHashCoversPlaintext(t *testing.T) {
	owner := testPair(t)
	plaintext := []byte("content to verify")
	result, err := Upload(plaintext, "note.txt", owner, testNow)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !Verify(plaintext, result.Record) {
		t.Fatal("verify should accept the original plaintext")
	}
	if Verify([]byte("content to verify!"), result.Record) {
		t.Fatal("verify should reject modified plaintext")
	}
	if bytes.Contains(result.Packed, plaintext) {
		t.Fatal("packed ciphertext leaks plaintext")
	}
}

func TestUploadIdenticalContentYieldsDistinctIDs(t *testing.T) {
	owner := testPair(t)
	content := []byte("same bytes twice")
	r1, err := Upload(content, "a.txt", owner, testNow)
	if err != nil {
		t.Fatalf("upload 1 failed: %v", err)
	}
	r2, err := Upload(content, "a.txt", owner, testNow)
	if err != nil {
		t.Fatalf("upload 2 failed: %v", err)
	}
	if r1.Record.DocumentID == r2.Record.DocumentID {
		t.Fatal("identical content must still produce distinct document ids")
	}
	if !bytes.Equal(r1.Record.ContentHash, r2.Record.ContentHash) {
		t.Fatal("content hashes should match for identical content")
	}
}

func TestShareGrantsRecipientAccess(t *testing.T) {
	owner := testPair(t)
	recipient := testPair(t)
	plaintext := []byte("shared document body")

	result, err := Upload(plaintext, "shared.txt", owner, testNow)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	grant, err := Share(result.Record, owner, recipient.PublicKey, testNow)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	wantCommitment, err := commitment.Commit(recipient.PublicKey)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if !bytes.Equal(grant.RecipientCommitment, wantCommitment) {
		t.Fatal("grant keyed by wrong commitment")
	}

	got, err := Open(result.Packed, grant.WrappedKey, recipient.SecretKey)
	if err != nil {
		t.Fatalf("recipient open failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("recipient recovered wrong plaintext")
	}
}

func TestShareFailsClosedForNonOwner(t *testing.T) {
	owner := testPair(t)
	intruder := testPair(t)
	recipient := testPair(t)

	result, err := Upload([]byte("owner only"), "x.txt", owner, testNow)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if _, err := Share(result.Record, intruder, recipient.PublicKey, testNow); !errors.Is(err, keyexchange.ErrUnwrapFailed) {
		t.Fatalf("expected ErrUnwrapFailed for non-owner share, got %v", err)
	}
}

func TestOpenDeniesNonRecipient(t *testing.T) {
	owner := testPair(t)
	outsider := testPair(t)
	result, err := Upload([]byte("private"), "p.txt", owner, testNow)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if _, err := Open(result.Packed, result.Record.WrappedKey, outsider.SecretKey); !errors.Is(err, keyexchange.ErrUnwrapFailed) {
		t.Fatalf("expected ErrUnwrapFailed for outsider, got %v", err)
	}
}

func TestRecordCodecRoundTrip(t *testing.T) {
	owner := testPair(t)
	result, err := Upload([]byte("codec test"), "c.bin", owner, testNow)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	record := result.Record
	record.StorageCID = "zTestCID"
	record.GatewayURL = "https://gateway.docseal.local/ipfs/zTestCID"

	encoded := EncodeRecord(record)
	if len(encoded.ContentHash) != 64 {
		t.Fatalf("content hash not 64 hex chars: %q", encoded.ContentHash)
	}
	decoded, err := DecodeRecord(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.DocumentID != record.DocumentID ||
		!bytes.Equal(decoded.ContentHash, record.ContentHash) ||
		!bytes.Equal(decoded.OwnerCommitment, record.OwnerCommitment) ||
		decoded.StorageCID != record.StorageCID {
		t.Fatal("record codec round trip mismatch")
	}
	if !bytes.Equal(decoded.WrappedKey.EncryptedKey, record.WrappedKey.EncryptedKey) {
		t.Fatal("wrapped key did not survive the codec")
	}

	// Opening through the decoded record still works.
	got, err := Open(result.Packed, decoded.WrappedKey, owner.SecretKey)
	if err != nil {
		t.Fatalf("open via decoded record failed: %v", err)
	}
	if string(got) != "codec test" {
		t.Fatal("decoded record produced wrong plaintext")
	}
}

func TestDecodeWrappedKeyRejectsBadLengths(t *testing.T) {
	owner := testPair(t)
	result, err := Upload([]byte("x"), "x", owner, testNow)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	rec := EncodeWrappedKey(result.Record.WrappedKey)

	bad := rec
	bad.EncryptedKey = rec.EncryptedKey[:62]
	if _, err := DecodeWrappedKey(bad); !errors.Is(err, keyexchange.ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding for short encrypted key, got %v", err)
	}

	bad = rec
	bad.Nonce = "00"
	if _, err := DecodeWrappedKey(bad); !errors.Is(err, keyexchange.ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding for short nonce, got %v", err)
	}

	bad = rec
	bad.SenderPublicKey = "not-hex"
	if _, err := DecodeWrappedKey(bad); !errors.Is(err, keyexchange.ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding for bad sender key, got %v", err)
	}
}
