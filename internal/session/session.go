// Package session stores the two bearer credentials issued by the checklist
// backend. Values are opaque; each carries its own expiry and disappears once
// that expiry has passed, mirroring how the browser treats cookies.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mark-chris/checklist/internal/keychain"
)

// Names of the stored credentials
const (
	AccessToken  = "access_token"
	RefreshToken = "refresh_token"
)

// Lifetimes applied when the backend issues credentials
const (
	AccessTTL  = 24 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour
)

// ErrNotFound is returned when a credential is absent or expired
var ErrNotFound = keychain.ErrNotFound

// Store is the read/write/clear contract for session credentials
type Store interface {
	Set(name, value string, ttl time.Duration) error
	Get(name string) (string, error)
	Remove(name string) error
}

type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// KeychainStore persists credentials in a keychain as small JSON envelopes
type KeychainStore struct {
	kc  keychain.Keychain
	now func() time.Time
}

// NewKeychainStore creates a store backed by kc
func NewKeychainStore(kc keychain.Keychain) *KeychainStore {
	return &KeychainStore{kc: kc, now: time.Now}
}

// NewMemoryStore creates a store backed by an in-memory keychain
func NewMemoryStore() *KeychainStore {
	return NewKeychainStore(keychain.NewMockKeychain())
}

// WithClock returns a copy of the store reading time from now
func (s *KeychainStore) WithClock(now func() time.Time) *KeychainStore {
	return &KeychainStore{kc: s.kc, now: now}
}

// Set stores value under name. A zero ttl means no expiry.
func (s *KeychainStore) Set(name, value string, ttl time.Duration) error {
	e := entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl).UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.kc.Set(name, string(data)); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// Get returns the value stored under name
func (s *KeychainStore) Get(name string) (string, error) {
	raw, err := s.kc.Get(name)
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		// written by something else; treat as a bare value
		return raw, nil
	}
	if !e.ExpiresAt.IsZero() && !s.now().Before(e.ExpiresAt) {
		_ = s.kc.Delete(name)
		return "", ErrNotFound
	}
	if e.Value == "" {
		return "", ErrNotFound
	}
	return e.Value, nil
}

// Remove deletes the value stored under name
func (s *KeychainStore) Remove(name string) error {
	if err := s.kc.Delete(name); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Save persists whichever of the two credentials is non-empty
func Save(store Store, access, refresh string) error {
	if access != "" {
		if err := store.Set(AccessToken, access, AccessTTL); err != nil {
			return err
		}
	}
	if refresh != "" {
		if err := store.Set(RefreshToken, refresh, RefreshTTL); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes both credentials, attempting both even if one fails
func Clear(store Store) error {
	return errors.Join(store.Remove(AccessToken), store.Remove(RefreshToken))
}

// IsAuthenticated reports whether an access token is present.
// The token itself is not inspected.
func IsAuthenticated(store Store) bool {
	token, err := store.Get(AccessToken)
	return err == nil && token != ""
}

// Expiry reads the exp claim of a JWT without verifying its signature.
// It is informational only; ok is false for tokens that are not JWTs.
func Expiry(token string) (exp time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
