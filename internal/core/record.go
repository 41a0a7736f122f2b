package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Incoming RecordType = "Incoming"
	Outgoing RecordType = "Outgoing"
)

const (
	GroupBrother = "Brother"
	GroupSister  = "Sister"
	GroupNone    = "N/A"
)

type (
	// RecordType tags a transaction as money coming into a fund or being
	// disbursed from it. The tag is set at creation time and never changes.
	RecordType string

	Date struct {
		time.Time
	}

	// Record is one logged movement of money. Year and Month are
	// materialized from Date so report grouping never has to touch the
	// time package.
	Record struct {
		ID          string
		Date        Date
		Year        int
		Month       int
		Type        RecordType
		Group       string
		Category    string
		SubCategory string
		Medical     string
		Name        string
		MemberID    string
		Address     string
		Reason      string
		Responsible string
		Amount      decimal.Decimal
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidType   = errors.New("invalid record type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyEmail    = errors.New("empty email")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar day (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as an ISO calendar day.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Validate checks the entry-time invariants: positive amount, non-empty
// name, a known type and a usable date. Address, reason and responsible
// stay optional even for outgoing records; historical files may hold rows
// that would fail these checks and they are kept as-is on load.
func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	switch r.Type {
	case Incoming, Outgoing:
	default:
		return ErrInvalidType
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize fills the materialized Year/Month fields from Date and maps an
// empty group to the N/A cohort.
func (r Record) Normalize() Record {
	r.Year = r.Date.Year()
	r.Month = r.Date.Month()
	if strings.TrimSpace(r.Group) == "" {
		r.Group = GroupNone
	}
	return r
}
