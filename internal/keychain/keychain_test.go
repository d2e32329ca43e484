package keychain

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestMockKeychain_SetAndGet(t *testing.T) {
	kc := NewMockKeychain()

	err := kc.Set("test-key", "test-value")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := kc.Get("test-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if value != "test-value" {
		t.Errorf("expected 'test-value', got '%s'", value)
	}
}

func TestMockKeychain_GetNonexistent(t *testing.T) {
	kc := NewMockKeychain()

	_, err := kc.Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMockKeychain_Delete(t *testing.T) {
	kc := NewMockKeychain()

	_ = kc.Set("test-key", "test-value")

	err := kc.Delete("test-key")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = kc.Get("test-key")
	if err == nil {
		t.Error("expected error after delete, got nil")
	}
	if kc.Len() != 0 {
		t.Errorf("expected empty keychain, got %d keys", kc.Len())
	}
}

func TestSystemKeychain_RoundTrip(t *testing.T) {
	keyring.MockInit()

	kc := NewSystemKeychain("")
	if kc.service != DefaultService {
		t.Errorf("expected service %q, got %q", DefaultService, kc.service)
	}

	if err := kc.Set("access_token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := kc.Get("access_token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "abc" {
		t.Errorf("expected 'abc', got '%s'", value)
	}

	if err := kc.Delete("access_token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kc.Get("access_token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// deleting a missing key is not an error
	if err := kc.Delete("access_token"); err != nil {
		t.Errorf("expected nil deleting missing key, got %v", err)
	}
}
