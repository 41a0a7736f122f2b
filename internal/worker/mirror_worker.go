// Package worker keeps the SQLite reporting mirror in step with the
// per-tenant CSV ledgers. Events arriving from the dashboard name a tenant
// and record; the worker re-reads the tenant's durable file and applies the
// change, so the mirror can never get ahead of the commit point.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hisab/internal/amqp"
	"hisab/internal/storage"
	"hisab/internal/store"
)

type MirrorWorker struct {
	mirror  *storage.Mirror
	dataDir string
}

func NewMirrorWorker(mirror *storage.Mirror, dataDir string) *MirrorWorker {
	return &MirrorWorker{mirror: mirror, dataDir: dataDir}
}

// HandleEvent applies one change notification to the mirror.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.RecordEvent) error {
	switch event.Kind {
	case amqp.EventRecordUpsert:
		return w.upsert(ctx, event.Tenant, event.RecordID)
	case amqp.EventRecordDelete:
		return w.mirror.DeleteRecord(ctx, event.Tenant, event.RecordID)
	case amqp.EventTenantReset:
		return w.Resync(ctx, event.Tenant)
	default:
		slog.WarnContext(ctx, "Dropping event of unknown kind", "kind", event.Kind)
		return nil
	}
}

// upsert re-reads the tenant file and mirrors the named record. A record
// already deleted from the file is removed from the mirror instead; events
// can arrive after further edits.
func (w *MirrorWorker) upsert(ctx context.Context, tenant, recordID string) error {
	st, err := store.Open(w.dataDir, tenant)
	if err != nil {
		return fmt.Errorf("open tenant store: %w", err)
	}
	for _, r := range st.Records() {
		if r.ID == recordID {
			return w.mirror.UpsertRecord(ctx, tenant, r)
		}
	}
	return w.mirror.DeleteRecord(ctx, tenant, recordID)
}

// Resync rewrites one tenant's mirror slice from the durable file.
func (w *MirrorWorker) Resync(ctx context.Context, tenant string) error {
	st, err := store.Open(w.dataDir, tenant)
	if err != nil {
		return fmt.Errorf("open tenant store: %w", err)
	}
	return w.mirror.ReplaceTenant(ctx, tenant, st.Records())
}

// ResyncAll rewrites every known tenant, used at startup and on the
// periodic tick to repair missed events.
func (w *MirrorWorker) ResyncAll(ctx context.Context) error {
	tenants, err := Tenants(w.dataDir)
	if err != nil {
		return err
	}
	for _, tenant := range tenants {
		if err := w.Resync(ctx, tenant); err != nil {
			return fmt.Errorf("resync %s: %w", tenant, err)
		}
	}
	slog.InfoContext(ctx, "Mirror resync complete", "tenants", len(tenants))
	return nil
}

// Tenants lists the tenant keys that have a ledger file in the data
// directory.
func Tenants(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	var tenants []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, "_records.csv") {
			continue
		}
		tenants = append(tenants, strings.TrimSuffix(name, "_records.csv"))
	}
	return tenants, nil
}
