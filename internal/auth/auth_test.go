package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultAdminSeeded(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, "admin", "secret")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Verify("admin", "secret"); err != nil {
		t.Fatalf("default admin must verify: %v", err)
	}
	if err := c.Verify("admin", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if err := c.Verify("nobody", "secret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown user, got %v", err)
	}

	// The file must not hold the plain password.
	raw, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatalf("read credential file: %v", err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Fatalf("credential file stores the plain password")
	}
}

func TestCorruptFileRebuilt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(path, []byte("{garbage"), 0600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c, err := Open(dir, "admin", "secret")
	if err != nil {
		t.Fatalf("open must tolerate a corrupt file: %v", err)
	}
	if err := c.Verify("admin", "secret"); err != nil {
		t.Fatalf("default admin must exist after rebuild: %v", err)
	}
}

func TestSetPasswordAndReopen(t *testing.T) {
	dir := t.TempDir()
	c, _ := Open(dir, "admin", "secret")
	if err := c.SetPassword("treasurer", "hunter2"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := c.SetPassword("", "x"); err == nil {
		t.Fatalf("expected error for empty user")
	}

	c2, err := Open(dir, "admin", "secret")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := c2.Verify("treasurer", "hunter2"); err != nil {
		t.Fatalf("account must survive reopen: %v", err)
	}
	if len(c2.Users()) != 2 {
		t.Fatalf("expected 2 users, got %v", c2.Users())
	}
}
