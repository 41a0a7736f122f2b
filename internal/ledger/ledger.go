// Package ledger computes derived views over a snapshot of transaction
// records: fund balances, monthly sums, per-member totals and the pivot
// table behind the yearly report. Everything here is pure and stateless;
// nothing is cached, every read recomputes from the snapshot it is given.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// All disables a group/category filter.
const All = "All"

type (
	// MonthTotal is one zero-filled row of a 12-month table.
	MonthTotal struct {
		Month int
		Total decimal.Decimal
	}

	// NameTotal is one member's summed incoming contributions.
	NameTotal struct {
		Name  string
		Total decimal.Decimal
	}

	// LabelTotal is one slice of a proportion chart.
	LabelTotal struct {
		Label string
		Total decimal.Decimal
	}

	// PivotRow is one date's summed amounts, aligned with PivotTable.Categories.
	PivotRow struct {
		Date       string
		Cells      []decimal.Decimal
		DailyTotal decimal.Decimal
	}

	// PivotTable has dates as rows and the categories observed in the input
	// as columns. The column set is data-driven, so layout varies with the
	// filtered set it was built from.
	PivotTable struct {
		Categories []string
		Rows       []PivotRow
	}
)

// FundBalance is cumulative incoming minus cumulative outgoing for one
// category, optionally restricted to a donor/beneficiary group. An empty
// group means no restriction, same as the All sentinel and the same
// convention Filter uses.
func FundBalance(recs []core.Record, category, group string) decimal.Decimal {
	balance := decimal.Zero
	for _, r := range recs {
		if r.Category != category {
			continue
		}
		if group != "" && group != All && r.Group != group {
			continue
		}
		switch r.Type {
		case core.Incoming:
			balance = balance.Add(r.Amount)
		case core.Outgoing:
			balance = balance.Sub(r.Amount)
		}
	}
	return balance
}

// MonthlyTotals sums amounts per calendar month. All 12 months appear in
// the output even when empty; report tables always render 12 rows. An empty
// typeFilter sums both directions.
func MonthlyTotals(recs []core.Record, typeFilter core.RecordType) []MonthTotal {
	totals := make([]MonthTotal, 12)
	for i := range totals {
		totals[i] = MonthTotal{Month: i + 1, Total: decimal.Zero}
	}
	for _, r := range recs {
		if typeFilter != "" && r.Type != typeFilter {
			continue
		}
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		totals[r.Month-1].Total = totals[r.Month-1].Total.Add(r.Amount)
	}
	return totals
}

// PerMemberTotals groups incoming records by name and sorts descending by
// total. The sort is stable: members with equal sums keep their first-seen
// order.
func PerMemberTotals(recs []core.Record) []NameTotal {
	index := make(map[string]int)
	var totals []NameTotal
	for _, r := range recs {
		if r.Type != core.Incoming {
			continue
		}
		i, ok := index[r.Name]
		if !ok {
			i = len(totals)
			index[r.Name] = i
			totals = append(totals, NameTotal{Name: r.Name, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(r.Amount)
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals
}

// Pivot builds the date-by-category table: one row per distinct date, one
// column per distinct category observed in the input, zero-filled cells and
// a trailing daily total per row. Empty input yields an empty, well-formed
// table.
func Pivot(recs []core.Record) PivotTable {
	catSet := make(map[string]bool)
	dateSet := make(map[string]bool)
	for _, r := range recs {
		catSet[r.Category] = true
		dateSet[r.Date.String()] = true
	}
	cats := make([]string, 0, len(catSet))
	for c := range catSet {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	catIndex := make(map[string]int, len(cats))
	for i, c := range cats {
		catIndex[c] = i
	}
	rowIndex := make(map[string]int, len(dates))
	table := PivotTable{Categories: cats, Rows: make([]PivotRow, len(dates))}
	for i, d := range dates {
		cells := make([]decimal.Decimal, len(cats))
		for j := range cells {
			cells[j] = decimal.Zero
		}
		table.Rows[i] = PivotRow{Date: d, Cells: cells, DailyTotal: decimal.Zero}
		rowIndex[d] = i
	}

	for _, r := range recs {
		row := &table.Rows[rowIndex[r.Date.String()]]
		j := catIndex[r.Category]
		row.Cells[j] = row.Cells[j].Add(r.Amount)
		row.DailyTotal = row.DailyTotal.Add(r.Amount)
	}
	return table
}

// TotalsByLabel groups amounts by an arbitrary record field, dropping
// records whose label is empty. It feeds the report's proportion charts;
// an empty result means the chart is omitted.
func TotalsByLabel(recs []core.Record, label func(core.Record) string) []LabelTotal {
	index := make(map[string]int)
	var totals []LabelTotal
	for _, r := range recs {
		l := label(r)
		if l == "" {
			continue
		}
		i, ok := index[l]
		if !ok {
			i = len(totals)
			index[l] = i
			totals = append(totals, LabelTotal{Label: l, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(r.Amount)
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals
}

// Sum adds up every amount in the set.
func Sum(recs []core.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range recs {
		total = total.Add(r.Amount)
	}
	return total
}

// Filter selects a subset of records. Zero values match everything.
type Filter struct {
	Type     core.RecordType
	Group    string
	Category string
	Name     string
	Year     int
}

// Apply returns the records matching every set field.
func (f Filter) Apply(recs []core.Record) []core.Record {
	var out []core.Record
	for _, r := range recs {
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Group != "" && f.Group != All && r.Group != f.Group {
			continue
		}
		if f.Category != "" && f.Category != All && r.Category != f.Category {
			continue
		}
		if f.Name != "" && r.Name != f.Name {
			continue
		}
		if f.Year != 0 && r.Year != f.Year {
			continue
		}
		out = append(out, r)
	}
	return out
}
