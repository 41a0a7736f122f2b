// Package auth is the credential check gating access to a tenant's ledger.
// Credentials live in one JSON document mapping username to a bcrypt hash
// (bcrypt embeds the per-password salt).
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("unknown user or wrong password")

// Credentials is the username-to-hash document. A default administrative
// account is guaranteed to exist even when the file is absent or corrupted.
type Credentials struct {
	mu    sync.Mutex
	path  string
	users map[string]string
}

// Open loads the credential file, rebuilding it around the default admin
// account when it is missing, unreadable or malformed.
func Open(dir, adminUser, adminPassword string) (*Credentials, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	c := &Credentials{
		path:  filepath.Join(dir, "credentials.json"),
		users: make(map[string]string),
	}

	raw, err := os.ReadFile(c.path)
	if err == nil {
		if jsonErr := json.Unmarshal(raw, &c.users); jsonErr != nil {
			slog.Warn("Credential file is malformed, rebuilding with default admin",
				"path", c.path, "error", jsonErr)
			c.users = make(map[string]string)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	if _, ok := c.users[adminUser]; !ok {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		c.users[adminUser] = string(hash)
		if err := c.persist(); err != nil {
			return nil, fmt.Errorf("persist credential file: %w", err)
		}
		slog.Info("Seeded default admin account", "user", adminUser)
	}
	return c, nil
}

// Verify checks a username/password pair.
func (c *Credentials) Verify(user, password string) error {
	c.mu.Lock()
	hash, ok := c.users[user]
	c.mu.Unlock()
	if !ok {
		return ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

// SetPassword creates or replaces one account's credential.
func (c *Credentials) SetPassword(user, password string) error {
	if user == "" || password == "" {
		return errors.New("user and password must be non-empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user] = string(hash)
	if err := c.persist(); err != nil {
		return fmt.Errorf("persist credential file: %w", err)
	}
	return nil
}

// Users returns the known usernames.
func (c *Credentials) Users() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.users))
	for u := range c.users {
		out = append(out, u)
	}
	return out
}

// persist expects the lock to be held by callers that hold it; Open calls
// it before the store is shared.
func (c *Credentials) persist() error {
	raw, err := json.MarshalIndent(c.users, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
