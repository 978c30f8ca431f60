package commitment

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"docseal/go-backend/internal/cipher"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand failed: %v", err)
	}
	return key
}

func TestCommitDeterministic(t *testing.T) {
	key := randomKey(t)
	c1, err := Commit(key)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	c2, err := Commit(key)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if !bytes.Equal(c1, c2) {
		t.Fatal("commitment should be deterministic")
	}
	if len(c1) != Size {
		t.Fatalf("unexpected commitment length: %d", len(c1))
	}
}

func TestCommitDistinctAcrossKeys(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		c, err := Commit(randomKey(t))
		if err != nil {
			t.Fatalf("commit %d failed: %v", i, err)
		}
		if _, dup := seen[string(c)]; dup {
			t.Fatalf("commitment collision at iteration %d", i)
		}
		seen[string(c)] = struct{}{}
	}
}

func TestCommitRejectsBadLength(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := Commit(make([]byte, size)); !errors.Is(err, ErrInvalidKeyLength) {
			t.Fatalf("expected ErrInvalidKeyLength for size %d, got %v", size, err)
		}
	}
}

func TestCommitDomainSeparatedFromContentHash(t *testing.T) {
	key := randomKey(t)
	c, err := Commit(key)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	// A commitment of a key must never equal the content hash of the same
	// bytes; they live in separate domains.
	if bytes.Equal(c, cipher.Hash(key)) {
		t.Fatal("commitment collided with content hash domain")
	}
}

func TestHexRoundTrip(t *testing.T) {
	c, err := Commit(randomKey(t))
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	encoded := ToHex(c)
	if len(encoded) != 64 || encoded != strings.ToLower(encoded) {
		t.Fatalf("commitment hex not 64 lowercase chars: %q", encoded)
	}
	decoded, err := FromHex(encoded)
	if err != nil {
		t.Fatalf("from hex failed: %v", err)
	}
	if !bytes.Equal(decoded, c) {
		t.Fatal("hex round trip mismatch")
	}

	if _, err := FromHex("abc"); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}
