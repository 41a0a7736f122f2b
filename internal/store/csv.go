// Package store holds one tenant's transaction records in memory and keeps
// a durable CSV mirror in sync. The CSV file is the commit point: every
// mutation rewrites it synchronously.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// Canonical column order of the durable file. Older files may miss trailing
// columns; they are backfilled with empty strings on load and the repaired
// file is written back immediately.
var columns = []string{
	"ID", "Date", "Year", "Month", "Type", "Group", "Category",
	"SubCategory", "Medical", "Name", "MemberID", "Address", "Reason",
	"Responsible", "Amount",
}

func recordToRow(r core.Record) []string {
	return []string{
		r.ID,
		r.Date.String(),
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Month),
		string(r.Type),
		r.Group,
		r.Category,
		r.SubCategory,
		r.Medical,
		r.Name,
		r.MemberID,
		r.Address,
		r.Reason,
		r.Responsible,
		r.Amount.String(),
	}
}

// rowToRecord maps a raw CSV row to a record using the column positions of
// the file actually read. Unparseable dates and amounts are kept as zero
// values rather than rejected; historical files predate entry validation.
func rowToRecord(row []string, index map[string]int) core.Record {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec := core.Record{
		ID:          get("ID"),
		Type:        core.RecordType(get("Type")),
		Group:       get("Group"),
		Category:    get("Category"),
		SubCategory: get("SubCategory"),
		Medical:     get("Medical"),
		Name:        get("Name"),
		MemberID:    get("MemberID"),
		Address:     get("Address"),
		Reason:      get("Reason"),
		Responsible: get("Responsible"),
	}
	if d, err := core.ParseDate(get("Date")); err == nil {
		rec.Date = d
	}
	if a, err := decimal.NewFromString(get("Amount")); err == nil {
		rec.Amount = a
	}
	rec.Year, _ = strconv.Atoi(get("Year"))
	rec.Month, _ = strconv.Atoi(get("Month"))
	if rec.Year == 0 && !rec.Date.IsZero() {
		rec.Year = rec.Date.Year()
	}
	if rec.Month == 0 && !rec.Date.IsZero() {
		rec.Month = rec.Date.Month()
	}
	return rec
}

// decodeRecords reads a full CSV document. It returns the decoded records
// and whether the header was missing any canonical column (schema drift).
func decodeRecords(r io.Reader) ([]core.Record, bool, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, true, nil // empty file: treat as drifted so a header gets written
	}
	if err != nil {
		return nil, false, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	drift := false
	for _, col := range columns {
		if _, ok := index[col]; !ok {
			drift = true
			break
		}
	}

	var recs []core.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("read row: %w", err)
		}
		recs = append(recs, rowToRecord(row, index))
	}
	return recs, drift, nil
}

func encodeRecords(w io.Writer, recs []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(recordToRow(r)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
