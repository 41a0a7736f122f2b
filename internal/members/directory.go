// Package members maps member names to profile attributes, persisted as a
// single JSON document shared by the deployment.
package members

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"hisab/internal/core"
)

// GroupAll selects every member regardless of cohort.
const GroupAll = "All"

// Directory is the name-keyed member document. Re-registering an existing
// name overwrites the old entry; there is no merge and no delete.
type Directory struct {
	mu      sync.Mutex
	path    string
	entries map[string]core.Member
}

// Open loads the member document, starting empty when the file is missing
// or unreadable.
func Open(dir string) (*Directory, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	d := &Directory{
		path:    filepath.Join(dir, "members.json"),
		entries: make(map[string]core.Member),
	}

	raw, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read member document: %w", err)
	}
	if err := json.Unmarshal(raw, &d.entries); err != nil {
		slog.Warn("Member document is malformed, starting from an empty directory",
			"path", d.path, "error", err)
		d.entries = make(map[string]core.Member)
	}
	return d, nil
}

// Register validates and stores a member profile, assigning a surrogate
// identifier when the entry has none. Last write wins on name collisions.
func (d *Directory) Register(m core.Member) (core.Member, error) {
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Group == "" {
		m.Group = core.GroupNone
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[m.Name] = m
	if err := d.persist(); err != nil {
		return m, fmt.Errorf("persist member document: %w", err)
	}
	return m, nil
}

// Lookup returns the profile for a name, or a zero-value member when the
// name is not registered.
func (d *Directory) Lookup(name string) core.Member {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries[strings.TrimSpace(name)]
}

// ListByGroup returns the names in a cohort (or all of them for GroupAll),
// sorted lexicographically.
func (d *Directory) ListByGroup(group string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var names []string
	for name, m := range d.entries {
		if group == GroupAll || m.Group == group {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// All returns a copy of every profile keyed by name.
func (d *Directory) All() map[string]core.Member {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]core.Member, len(d.entries))
	for k, v := range d.entries {
		out[k] = v
	}
	return out
}

// ImportJSON merges an uploaded member document into the directory. The
// upload is parsed completely first; a parse error leaves the directory
// unchanged. Colliding names are overwritten, per the registration rule.
func (d *Directory) ImportJSON(r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	incoming := make(map[string]core.Member)
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return 0, fmt.Errorf("parse import: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for name, m := range incoming {
		if m.Name == "" {
			m.Name = name
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		d.entries[name] = m
	}
	if err := d.persist(); err != nil {
		return 0, fmt.Errorf("persist member document: %w", err)
	}
	return len(incoming), nil
}

// persist rewrites the document. It expects the lock to be held.
func (d *Directory) persist() error {
	raw, err := json.MarshalIndent(d.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, d.path)
}
