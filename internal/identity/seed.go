package identity

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tyler-smith/go-bip39"

	"docseal/go-backend/internal/keyexchange"
	"docseal/go-backend/internal/securestore"
)

var (
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrSeedNotAvailable = errors.New("seed is not available")
	ErrPasswordRequired = errors.New("password is required")
	ErrMnemonicRequired = errors.New("mnemonic is required")
	ErrPasswordLocked   = errors.New("password attempts are temporarily locked")
)

// SeedManager holds the passphrase-protected mnemonic envelope in memory and
// throttles repeated bad-passphrase attempts.
type SeedManager struct {
	mu             sync.RWMutex
	envelope       *securestore.Envelope
	failedAttempts int
	lockedUntil    time.Time
	now            func() time.Time
}

func NewSeedManager() *SeedManager {
	return &SeedManager{now: time.Now}
}

func newSeedManagerWithClock(now func() time.Time) *SeedManager {
	return &SeedManager{now: now}
}

// Create generates a fresh 24-word mnemonic and derives the identity from it.
func (s *SeedManager) Create(password string) (mnemonic string, pair keyexchange.KeyPair, err error) {
	if strings.TrimSpace(password) == "" {
		return "", keyexchange.KeyPair{}, ErrPasswordRequired
	}
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", keyexchange.KeyPair{}, err
	}
	mnemonic, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", keyexchange.KeyPair{}, err
	}
	return s.Import(mnemonic, password)
}

// Import validates a mnemonic, derives the identity key pair and seals the
// mnemonic under the password for later export.
func (s *SeedManager) Import(mnemonic, password string) (string, keyexchange.KeyPair, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return "", keyexchange.KeyPair{}, ErrMnemonicRequired
	}
	if strings.TrimSpace(password) == "" {
		return "", keyexchange.KeyPair{}, ErrPasswordRequired
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", keyexchange.KeyPair{}, ErrInvalidMnemonic
	}

	seedBytes := bip39.NewSeed(mnemonic, "")
	pair, err := KeyPairFromSeedBytes(seedBytes)
	if err != nil {
		return "", keyexchange.KeyPair{}, err
	}
	env, err := securestore.EncryptEnvelope(password, []byte(mnemonic))
	if err != nil {
		return "", keyexchange.KeyPair{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = env
	return mnemonic, pair, nil
}

// Export returns the mnemonic if the password verifies. Failed attempts back
// off exponentially up to 32s.
func (s *SeedManager) Export(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrPasswordRequired
	}

	s.mu.Lock()
	env := s.envelope
	if err := s.ensureUnlocked(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.mu.Unlock()
	if env == nil {
		return "", ErrSeedNotAvailable
	}

	plaintext, err := securestore.DecryptEnvelope(password, env)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.onFailedPasswordAttempt()
		return "", ErrInvalidPassword
	}
	s.mu.Lock()
	s.resetPasswordAttemptState()
	s.mu.Unlock()

	mnemonic := strings.TrimSpace(string(plaintext))
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", fmt.Errorf("%w: corrupted mnemonic", ErrInvalidMnemonic)
	}
	return mnemonic, nil
}

// ChangePassword re-seals the mnemonic under a new password.
func (s *SeedManager) ChangePassword(oldPassword, newPassword string) error {
	oldPassword = strings.TrimSpace(oldPassword)
	newPassword = strings.TrimSpace(newPassword)
	if oldPassword == "" || newPassword == "" {
		return ErrPasswordRequired
	}

	s.mu.Lock()
	env := s.envelope
	if err := s.ensureUnlocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	if env == nil {
		return ErrSeedNotAvailable
	}

	mnemonicBytes, err := securestore.DecryptEnvelope(oldPassword, env)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.onFailedPasswordAttempt()
		return ErrInvalidPassword
	}

	newEnv, err := securestore.EncryptEnvelope(newPassword, mnemonicBytes)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = newEnv
	s.resetPasswordAttemptState()
	return nil
}

func (s *SeedManager) ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(strings.TrimSpace(mnemonic))
}

func (s *SeedManager) ensureUnlocked() error {
	if s.lockedUntil.IsZero() {
		return nil
	}
	if s.now().Before(s.lockedUntil) {
		return ErrPasswordLocked
	}
	return nil
}

func (s *SeedManager) onFailedPasswordAttempt() {
	s.failedAttempts++
	s.lockedUntil = s.now().Add(failedAttemptBackoff(s.failedAttempts))
}

func (s *SeedManager) resetPasswordAttemptState() {
	s.failedAttempts = 0
	s.lockedUntil = time.Time{}
}

func failedAttemptBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// 1s, 2s, 4s... up to 32s max.
	shift := attempt - 1
	if shift > 5 {
		shift = 5
	}
	return time.Second * time.Duration(1<<shift)
}
