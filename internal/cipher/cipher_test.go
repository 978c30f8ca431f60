package cipher

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	if len(key) != KeySize {
		t.Fatalf("unexpected key length: %d", len(key))
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)
	for _, size := range []int{0, 1, 11, 1024, 1 << 16} {
		plaintext := make([]byte, size)
		if _, err := rand.Read(plaintext); err != nil {
			t.Fatalf("rand failed: %v", err)
		}
		payload, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("encrypt failed for size %d: %v", size, err)
		}
		got, err := Decrypt(payload, key)
		if err != nil {
			t.Fatalf("decrypt failed for size %d: %v", size, err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round trip mismatch for size %d", size)
		}
	}
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := Encrypt([]byte("data"), make([]byte, size)); !errors.Is(err, ErrInvalidKeyLength) {
			t.Fatalf("expected ErrInvalidKeyLength for key size %d, got %v", size, err)
		}
		if _, err := Decrypt(Payload{}, make([]byte, size)); !errors.Is(err, ErrInvalidKeyLength) {
			t.Fatalf("expected ErrInvalidKeyLength on decrypt for key size %d, got %v", size, err)
		}
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	payload, err := Encrypt([]byte("confidential"), testKey(t))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if _, err := Decrypt(payload, testKey(t)); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed with wrong key, got %v", err)
	}
}

func TestTamperDetectionEveryBit(t *testing.T) {
	key := testKey(t)
	payload, err := Encrypt([]byte("hello world"), key)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	packed := Pack(payload)

	for i := range packed {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), packed...)
			mutated[i] ^= 1 << bit
			p, err := Unpack(mutated)
			if err != nil {
				t.Fatalf("unpack of mutated payload failed structurally: %v", err)
			}
			if _, err := Decrypt(p, key); !errors.Is(err, ErrAuthenticationFailed) {
				t.Fatalf("bit flip at byte %d bit %d not detected: %v", i, bit, err)
			}
		}
	}
}

func TestPackUnpackBoundary(t *testing.T) {
	if _, err := Unpack(make([]byte, PackedFloor-1)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for 27 bytes, got %v", err)
	}

	payload, err := Unpack(make([]byte, PackedFloor))
	if err != nil {
		t.Fatalf("28-byte unpack failed: %v", err)
	}
	if len(payload.Ciphertext) != 0 {
		t.Fatalf("expected empty ciphertext, got %d bytes", len(payload.Ciphertext))
	}
	if len(payload.Nonce) != NonceSize || len(payload.Tag) != TagSize {
		t.Fatalf("unexpected field lengths: nonce=%d tag=%d", len(payload.Nonce), len(payload.Tag))
	}
}

func TestPackUnpackOffsets(t *testing.T) {
	payload := Payload{
		Nonce:      bytes.Repeat([]byte{0xA1}, NonceSize),
		Tag:        bytes.Repeat([]byte{0xB2}, TagSize),
		Ciphertext: []byte{1, 2, 3},
	}
	packed := Pack(payload)
	if len(packed) != PackedFloor+3 {
		t.Fatalf("unexpected packed length: %d", len(packed))
	}
	got, err := Unpack(packed)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if !bytes.Equal(got.Nonce, payload.Nonce) || !bytes.Equal(got.Tag, payload.Tag) || !bytes.Equal(got.Ciphertext, payload.Ciphertext) {
		t.Fatal("unpacked fields mismatch")
	}
}

func TestHelloWorldScenario(t *testing.T) {
	key := testKey(t)
	payload, err := Encrypt([]byte("hello world"), key)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	unpacked, err := Unpack(Pack(payload))
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	got, err := Decrypt(unpacked, key)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("unexpected plaintext: %q", string(got))
	}
}

func TestNonceUniquenessAcrossEncryptions(t *testing.T) {
	key := testKey(t)
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		payload, err := Encrypt(nil, key)
		if err != nil {
			t.Fatalf("encrypt %d failed: %v", i, err)
		}
		nonce := string(payload.Nonce)
		if _, dup := seen[nonce]; dup {
			t.Fatalf("nonce repeated at iteration %d", i)
		}
		seen[nonce] = struct{}{}
	}
}

func TestHashIsDeterministicAndContentBound(t *testing.T) {
	a := Hash([]byte("document body"))
	b := Hash([]byte("document body"))
	c := Hash([]byte("document bodY"))
	if !bytes.Equal(a, b) {
		t.Fatal("hash should be deterministic")
	}
	if bytes.Equal(a, c) {
		t.Fatal("distinct inputs should not collide")
	}
	if len(a) != 32 {
		t.Fatalf("unexpected hash length: %d", len(a))
	}
}
