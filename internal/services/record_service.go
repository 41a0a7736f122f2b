// Package services orchestrates record mutations: the tenant's durable
// store is the source of truth, and change events go to the reporting
// mirror on a best-effort basis.
package services

import (
	"context"
	"io"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/store"
	"hisab/internal/tenant"
)

// RecordService wraps store mutations with optional event publishing. The
// durable write must succeed; a publish failure is logged and never fails
// the request. A nil events client disables publishing entirely.
type RecordService struct {
	events *amqp.Client
}

func NewRecordService(events *amqp.Client) *RecordService {
	return &RecordService{events: events}
}

// Create validates and appends one record.
func (s *RecordService) Create(ctx context.Context, ws *tenant.Workspace, rec core.Record) (core.Record, error) {
	saved, err := ws.Store.Append(rec)
	if err != nil {
		return core.Record{}, err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.EventRecordUpsert, ws.UserKey, saved.ID))
	return saved, nil
}

// UpdateField mutates one column of one record.
func (s *RecordService) UpdateField(ctx context.Context, ws *tenant.Workspace, id, field, value string) error {
	if err := ws.Store.UpdateField(id, field, value); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.EventRecordUpsert, ws.UserKey, id))
	return nil
}

// Delete physically removes one record.
func (s *RecordService) Delete(ctx context.Context, ws *tenant.Workspace, id string) error {
	if err := ws.Store.Delete(id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.EventRecordDelete, ws.UserKey, id))
	return nil
}

// ReplaceAll swaps the whole record set against a snapshot revision token.
func (s *RecordService) ReplaceAll(ctx context.Context, ws *tenant.Workspace, recs []core.Record, rev store.Revision) error {
	if err := ws.Store.ReplaceAll(recs, rev); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.EventTenantReset, ws.UserKey, ""))
	return nil
}

// Import replaces the set wholesale from an uploaded CSV.
func (s *RecordService) Import(ctx context.Context, ws *tenant.Workspace, r io.Reader) (int, error) {
	n, err := ws.Store.ImportCSV(r)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.EventTenantReset, ws.UserKey, ""))
	return n, nil
}

// Reset clears the tenant's ledger after explicit confirmation.
func (s *RecordService) Reset(ctx context.Context, ws *tenant.Workspace, confirm string) error {
	if err := ws.Store.Reset(confirm); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.EventTenantReset, ws.UserKey, ""))
	return nil
}

func (s *RecordService) publish(ctx context.Context, event *amqp.RecordEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"error", err,
			"kind", event.Kind,
			"tenant", event.Tenant,
			"record_id", event.RecordID)
	}
}

// Close releases the event client, if any.
func (s *RecordService) Close() error {
	if s.events != nil {
		return s.events.Close()
	}
	return nil
}
