package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// maxBodyBytes caps request bodies; CSV imports are the largest legitimate
// payload and stay well under this.
const maxBodyBytes = 8 << 20

// recordPayload is the wire shape of one transaction. Dates and amounts
// travel as strings so the client controls formatting and the server does
// all parsing.
type recordPayload struct {
	ID          string `json:"id,omitempty"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Group       string `json:"group,omitempty"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category,omitempty"`
	Medical     string `json:"medical,omitempty"`
	Name        string `json:"name"`
	MemberID    string `json:"member_id,omitempty"`
	Address     string `json:"address,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Responsible string `json:"responsible,omitempty"`
	Amount      string `json:"amount"`
}

// toRecord parses the payload into a domain record. Validation proper
// happens in the store; this only converts the typed fields.
func (p recordPayload) toRecord() (core.Record, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Record{}, err
	}
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		ID:          strings.TrimSpace(p.ID),
		Date:        date,
		Type:        core.RecordType(strings.TrimSpace(p.Type)),
		Group:       sanitizeInput(p.Group),
		Category:    sanitizeInput(p.Category),
		SubCategory: sanitizeInput(p.SubCategory),
		Medical:     sanitizeInput(p.Medical),
		Name:        sanitizeInput(p.Name),
		MemberID:    strings.TrimSpace(p.MemberID),
		Address:     sanitizeInput(p.Address),
		Reason:      sanitizeInput(p.Reason),
		Responsible: sanitizeInput(p.Responsible),
		Amount:      amount,
	}, nil
}

// toStoredRecord parses the payload the way the durable-file loader does:
// blank dates and non-positive amounts stay as zero values instead of being
// rejected. Replace-all writes back a full view the client read from the
// store, and historical rows predating entry validation must round-trip
// unchanged. New entries keep the strict toRecord path.
func (p recordPayload) toStoredRecord() core.Record {
	rec := core.Record{
		ID:          strings.TrimSpace(p.ID),
		Type:        core.RecordType(strings.TrimSpace(p.Type)),
		Group:       sanitizeInput(p.Group),
		Category:    sanitizeInput(p.Category),
		SubCategory: sanitizeInput(p.SubCategory),
		Medical:     sanitizeInput(p.Medical),
		Name:        sanitizeInput(p.Name),
		MemberID:    strings.TrimSpace(p.MemberID),
		Address:     sanitizeInput(p.Address),
		Reason:      sanitizeInput(p.Reason),
		Responsible: sanitizeInput(p.Responsible),
	}
	if d, err := core.ParseDate(p.Date); err == nil {
		rec.Date = d
	}
	raw := strings.ReplaceAll(strings.TrimSpace(p.Amount), ",", ".")
	if a, err := decimal.NewFromString(raw); err == nil {
		rec.Amount = a
	}
	return rec
}

func payloadFromRecord(r core.Record) recordPayload {
	return recordPayload{
		ID:          r.ID,
		Date:        r.Date.String(),
		Type:        string(r.Type),
		Group:       r.Group,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		Medical:     r.Medical,
		Name:        r.Name,
		MemberID:    r.MemberID,
		Address:     r.Address,
		Reason:      r.Reason,
		Responsible: r.Responsible,
		Amount:      core.FormatAmount(r.Amount),
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields and
// trailing garbage.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("decode request body: trailing data")
	}
	return nil
}

// parseYear extracts a year from the query string. Zero means no year
// filter.
func parseYear(r *http.Request) int {
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			return y
		}
	}
	return 0
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
