package privacylog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLog(t *testing.T, log func(logger *slog.Logger)) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewTextHandler(&buf, nil)))
	log(logger)
	return buf.String()
}

func TestSensitiveKeysAreRedacted(t *testing.T) {
	out := captureLog(t, func(logger *slog.Logger) {
		logger.Info("unlocking store",
			slog.String("passphrase", "hunter2"),
			slog.String("secret_key", "deadbeef"),
			slog.String("mnemonic", "legal winner thank"),
			slog.String("wrapped_key", "cafebabe"),
		)
	})
	for _, leaked := range []string{"hunter2", "deadbeef", "legal winner", "cafebabe"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("sensitive value leaked into log output: %q in %q", leaked, out)
		}
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker in output: %q", out)
	}
}

func TestIdentifiersAreFingerprinted(t *testing.T) {
	out := captureLog(t, func(logger *slog.Logger) {
		logger.Info("document uploaded",
			slog.String("document_id", "abc123def456"),
			slog.String("identity_id", "ds1FakeIdentity"),
		)
	})
	if strings.Contains(out, "abc123def456") || strings.Contains(out, "ds1FakeIdentity") {
		t.Fatalf("raw identifier leaked into log output: %q", out)
	}
	if !strings.Contains(out, "document_id_fp=fp_") || !strings.Contains(out, "identity_id_fp=fp_") {
		t.Fatalf("expected fingerprinted attrs in output: %q", out)
	}
}

func TestWithAttrsIsSanitized(t *testing.T) {
	out := captureLog(t, func(logger *slog.Logger) {
		logger.With(slog.String("seed_password", "swordfish")).Info("daemon ready")
	})
	if strings.Contains(out, "swordfish") {
		t.Fatalf("With-attached secret leaked: %q", out)
	}
}

func TestNonSensitiveAttrsPassThrough(t *testing.T) {
	out := captureLog(t, func(logger *slog.Logger) {
		logger.Info("upload", slog.String("file_type", "pdf"), slog.Int("size", 42))
	})
	if !strings.Contains(out, "file_type=pdf") || !strings.Contains(out, "size=42") {
		t.Fatalf("benign attrs should pass through untouched: %q", out)
	}
}

func TestFingerprintStableWithinRun(t *testing.T) {
	a := Fingerprint("doc-1")
	b := Fingerprint("doc-1")
	c := Fingerprint("doc-2")
	if a != b {
		t.Fatal("fingerprint should be stable within one run")
	}
	if a == c {
		t.Fatal("distinct values should not share a fingerprint")
	}
	if !strings.HasPrefix(a, "fp_") || len(a) != len("fp_")+16 {
		t.Fatalf("unexpected fingerprint shape: %q", a)
	}
	if Fingerprint("   ") != "" {
		t.Fatal("blank values should fingerprint to empty")
	}
}

func TestHandlerEnabledDelegates(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled under a warn-level handler")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should be enabled")
	}
}
