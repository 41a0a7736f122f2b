// Package storage is the SQLite reporting mirror fed by the worker. The
// per-tenant CSV file stays the source of truth; the mirror is eventually
// consistent and exists for external reporting queries only.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"hisab/internal/core"

	_ "modernc.org/sqlite"
)

type Mirror struct {
	db *sql.DB
}

func NewMirror(dbPath string) (*Mirror, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Mirror{db: db}, nil
}

func (m *Mirror) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

const upsertSQL = `
INSERT INTO records (
    tenant, record_id, date, year, month, type, grp, category,
    sub_category, medical, name, member_id, address, reason, responsible,
    amount, mirrored_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (tenant, record_id) DO UPDATE SET
    date = excluded.date,
    year = excluded.year,
    month = excluded.month,
    type = excluded.type,
    grp = excluded.grp,
    category = excluded.category,
    sub_category = excluded.sub_category,
    medical = excluded.medical,
    name = excluded.name,
    member_id = excluded.member_id,
    address = excluded.address,
    reason = excluded.reason,
    responsible = excluded.responsible,
    amount = excluded.amount,
    mirrored_at = CURRENT_TIMESTAMP`

// UpsertRecord writes one record into the mirror.
func (m *Mirror) UpsertRecord(ctx context.Context, tenant string, r core.Record) error {
	_, err := m.db.ExecContext(ctx, upsertSQL,
		tenant, r.ID, r.Date.String(), r.Year, r.Month, string(r.Type),
		r.Group, r.Category, r.SubCategory, r.Medical, r.Name, r.MemberID,
		r.Address, r.Reason, r.Responsible, r.Amount.String())
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// DeleteRecord removes one record from the mirror.
func (m *Mirror) DeleteRecord(ctx context.Context, tenant, recordID string) error {
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM records WHERE tenant = ? AND record_id = ?`, tenant, recordID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// ReplaceTenant rewrites the whole tenant slice of the mirror in one
// transaction, used after wholesale replaces, imports and resets.
func (m *Mirror) ReplaceTenant(ctx context.Context, tenant string, recs []core.Record) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE tenant = ?`, tenant); err != nil {
		return fmt.Errorf("clear tenant: %w", err)
	}
	for _, r := range recs {
		if _, err := tx.ExecContext(ctx, upsertSQL,
			tenant, r.ID, r.Date.String(), r.Year, r.Month, string(r.Type),
			r.Group, r.Category, r.SubCategory, r.Medical, r.Name, r.MemberID,
			r.Address, r.Reason, r.Responsible, r.Amount.String()); err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Replaced tenant slice of mirror",
		"tenant", tenant, "records", len(recs))
	return nil
}

// CountTenant returns how many rows the mirror holds for a tenant.
func (m *Mirror) CountTenant(ctx context.Context, tenant string) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE tenant = ?`, tenant).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tenant records: %w", err)
	}
	return n, nil
}

// MonthlyOutgoing sums the mirrored outgoing amounts per month for one
// tenant and year. SQLite stores amounts as text, so the sum is done in Go
// with decimals rather than with SUM().
func (m *Mirror) MonthlyOutgoing(ctx context.Context, tenant string, year int) (map[int]decimal.Decimal, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT month, amount FROM records
		 WHERE tenant = ? AND year = ? AND type = ?`,
		tenant, year, string(core.Outgoing))
	if err != nil {
		return nil, fmt.Errorf("query monthly outgoing: %w", err)
	}
	defer rows.Close()

	totals := make(map[int]decimal.Decimal)
	for rows.Next() {
		var month int
		var amount string
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			continue // tolerate historical junk, same as the CSV loader
		}
		totals[month] = totals[month].Add(a)
	}
	return totals, rows.Err()
}
