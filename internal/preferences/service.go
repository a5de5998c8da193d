// Package preferences stores user settings, including the remote API
// credential, in the settings table.
package preferences

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/debrideck/debrideck/internal/crypto"
	"github.com/debrideck/debrideck/internal/debrid"
)

// Defaults applied when a key has never been written.
const (
	defaultAutoRefresh     = true
	defaultAutoRefreshCron = "*/5 * * * *"
)

type Service struct {
	db      *sql.DB
	secrets *crypto.SecretStore
	logger  zerolog.Logger
}

// NewService creates the preferences service. InitSecrets must be
// called before the credential accessors are used.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "preferences").Logger(),
	}
}

// InitSecrets derives the at-rest encryption key from the instance
// secret, creating and persisting the salt on first run.
func (s *Service) InitSecrets(ctx context.Context, secret string) error {
	saltStr, err := s.getString(ctx, KeySecretSalt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var salt []byte
	if saltStr != "" {
		salt, err = base64.StdEncoding.DecodeString(saltStr)
		if err != nil {
			return fmt.Errorf("corrupt secret salt: %w", err)
		}
	} else {
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return err
		}
		if err := s.setString(ctx, KeySecretSalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
			return err
		}
	}

	store, err := crypto.NewSecretStore(secret, salt)
	if err != nil {
		return err
	}
	s.secrets = store
	return nil
}

// Get returns the current preferences.
func (s *Service) Get(ctx context.Context) (*Preferences, error) {
	prefs := &Preferences{
		AutoRefresh:     defaultAutoRefresh,
		AutoRefreshCron: defaultAutoRefreshCron,
	}

	if val, err := s.getString(ctx, KeyAutoRefresh); err == nil {
		if b, err := strconv.ParseBool(val); err == nil {
			prefs.AutoRefresh = b
		}
	}
	if val, err := s.getString(ctx, KeyAutoRefreshCron); err == nil && val != "" {
		prefs.AutoRefreshCron = val
	}
	if key, err := s.GetAPIKey(ctx); err == nil && key != "" {
		prefs.APIKeySet = true
	}

	return prefs, nil
}

// Update applies the non-nil fields of the input.
func (s *Service) Update(ctx context.Context, input UpdateInput) error {
	if input.APIKey != nil {
		if err := s.SetAPIKey(ctx, *input.APIKey); err != nil {
			return err
		}
	}
	if input.AutoRefresh != nil {
		if err := s.setString(ctx, KeyAutoRefresh, strconv.FormatBool(*input.AutoRefresh)); err != nil {
			return err
		}
	}
	if input.AutoRefreshCron != nil {
		if err := s.setString(ctx, KeyAutoRefreshCron, *input.AutoRefreshCron); err != nil {
			return err
		}
	}
	return nil
}

// GetAPIKey returns the stored credential, decrypted. An empty string
// means no credential is stored.
func (s *Service) GetAPIKey(ctx context.Context) (string, error) {
	val, err := s.getString(ctx, KeyAPIKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if val == "" {
		return "", nil
	}
	if s.secrets == nil {
		return "", errors.New("secret store not initialized")
	}
	return s.secrets.Decrypt(val)
}

// SetAPIKey stores the credential encrypted. An empty key clears it.
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return s.setString(ctx, KeyAPIKey, "")
	}
	if s.secrets == nil {
		return errors.New("secret store not initialized")
	}
	enc, err := s.secrets.Encrypt(key)
	if err != nil {
		return err
	}
	return s.setString(ctx, KeyAPIKey, enc)
}

// Credential implements the credential source consumed by the download
// pipeline. It returns an empty credential (not an error) when no key
// is stored, so a chain can fall through.
func (s *Service) Credential(ctx context.Context) (debrid.Credential, error) {
	key, err := s.GetAPIKey(ctx)
	if err != nil {
		return "", err
	}
	return debrid.Credential(key), nil
}

func (s *Service) getString(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	return value, err
}

func (s *Service) setString(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}
