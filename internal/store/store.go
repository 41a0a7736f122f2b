package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"hisab/internal/core"
)

var (
	// ErrStaleSnapshot means a wholesale replace was attempted against a
	// store that changed since the snapshot was taken. This closes the
	// edit-a-filtered-view data-loss hole at the API level instead of
	// trusting the UI to clear filters first.
	ErrStaleSnapshot = errors.New("store changed since snapshot was taken")

	ErrNotFound     = errors.New("record not found")
	ErrUnknownField = errors.New("unknown or read-only field")
	ErrBadConfirm   = errors.New("confirmation text does not match")
)

// Revision is an opaque token identifying one state of the store. Every
// mutation advances it.
type Revision uint64

// Store is one tenant's full record set with a durable CSV mirror.
// Methods are safe for concurrent use by the HTTP server, but two sessions
// of the same tenant can still race a ReplaceAll; that remains an accepted
// limitation of the single-tenant design.
type Store struct {
	mu       sync.Mutex
	path     string
	userKey  string
	records  []core.Record
	revision Revision
}

// Open loads the tenant's durable file. A missing file yields an empty,
// schema-complete store. A malformed file also yields an empty store with a
// logged warning: the previous data is unrecoverable at this layer and the
// dashboard must stay usable.
func Open(dir, userKey string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{
		path:    filepath.Join(dir, userKey+"_records.csv"),
		userKey: userKey,
	}

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	recs, drift, err := decodeRecords(f)
	if err != nil {
		slog.Warn("Records file is malformed, starting from an empty store",
			"path", s.path, "error", err)
		return s, nil
	}
	s.records = recs

	if drift {
		// Forward migration: persist the schema-complete file right away.
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("repair records schema: %w", err)
		}
		slog.Info("Repaired records file schema", "path", s.path, "records", len(recs))
	}
	return s, nil
}

// UserKey returns the tenant key the store was opened for.
func (s *Store) UserKey() string {
	return s.userKey
}

// Snapshot returns a copy of all records plus the revision token required
// for a later ReplaceAll.
func (s *Store) Snapshot() ([]core.Record, Revision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records...), s.revision
}

// Records returns a copy of all records.
func (s *Store) Records() []core.Record {
	recs, _ := s.Snapshot()
	return recs
}

// Append validates and stores one new record, assigning a fresh identifier.
// There is no dedup check. The durable write is the commit point; on write
// failure the in-memory state keeps the record and diverges until the next
// successful write.
func (s *Store) Append(rec core.Record) (core.Record, error) {
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}
	rec = rec.Normalize()
	rec.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.revision++
	if err := s.persist(); err != nil {
		return rec, fmt.Errorf("persist records: %w", err)
	}
	return rec, nil
}

// ReplaceAll swaps the entire record set. The caller must present the
// revision token from the Snapshot the replacement was derived from;
// otherwise the replace would silently drop rows the caller never saw.
func (s *Store) ReplaceAll(recs []core.Record, rev Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev != s.revision {
		return ErrStaleSnapshot
	}
	normalized := make([]core.Record, 0, len(recs))
	for _, r := range recs {
		r = r.Normalize()
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		normalized = append(normalized, r)
	}
	s.records = normalized
	s.revision++
	if err := s.persist(); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}

// UpdateField mutates a single column of one record. Identifier and the
// materialized Year/Month fields are not editable; Year/Month follow Date.
func (s *Store) UpdateField(id, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	rec := s.records[i]

	switch field {
	case "Date":
		d, err := core.ParseDate(value)
		if err != nil {
			return err
		}
		rec.Date = d
		rec.Year = d.Year()
		rec.Month = d.Month()
	case "Type":
		t := core.RecordType(value)
		if t != core.Incoming && t != core.Outgoing {
			return core.ErrInvalidType
		}
		rec.Type = t
	case "Group":
		rec.Group = value
	case "Category":
		rec.Category = value
	case "SubCategory":
		rec.SubCategory = value
	case "Medical":
		rec.Medical = value
	case "Name":
		rec.Name = value
	case "MemberID":
		rec.MemberID = value
	case "Address":
		rec.Address = value
	case "Reason":
		rec.Reason = value
	case "Responsible":
		rec.Responsible = value
	case "Amount":
		a, err := core.ParseAmount(value)
		if err != nil {
			return err
		}
		rec.Amount = a
	default:
		return ErrUnknownField
	}

	s.records[i] = rec
	s.revision++
	if err := s.persist(); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}

// Delete physically removes one record. There is no soft delete.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.revision++
	if err := s.persist(); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}

// Reset clears the store. It is the only irreversible bulk operation and
// requires the tenant key to be typed back as confirmation.
func (s *Store) Reset(confirm string) error {
	if confirm != s.userKey {
		return ErrBadConfirm
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.revision++
	if err := s.persist(); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}

// ImportCSV replaces the whole set with the contents of an uploaded file.
// The upload is parsed completely before anything is touched; on a parse
// error the prior state is retained unchanged.
func (s *Store) ImportCSV(r io.Reader) (int, error) {
	recs, _, err := decodeRecords(r)
	if err != nil {
		return 0, fmt.Errorf("parse import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := make([]core.Record, 0, len(recs))
	for _, rec := range recs {
		rec = rec.Normalize()
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		normalized = append(normalized, rec)
	}
	s.records = normalized
	s.revision++
	if err := s.persist(); err != nil {
		return 0, fmt.Errorf("persist records: %w", err)
	}
	return len(normalized), nil
}

// ExportCSV writes the canonical dump of the store.
func (s *Store) ExportCSV(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodeRecords(w, s.records)
}

// indexOf expects the lock to be held. Linear scan is fine at this scale.
func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// persist rewrites the durable file. It expects the lock to be held.
// Write goes through a temp file plus rename so a crash mid-write cannot
// leave a half-written ledger behind.
func (s *Store) persist() error {
	var buf bytes.Buffer
	if err := encodeRecords(&buf, s.records); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
