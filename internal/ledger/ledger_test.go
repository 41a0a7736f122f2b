package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

func rec(t core.RecordType, group, category, name string, amount int64, year, month int) core.Record {
	r := core.Record{
		Date:     core.NewDate(year, month, 5),
		Type:     t,
		Group:    group,
		Category: category,
		Name:     name,
		Amount:   decimal.NewFromInt(amount),
	}
	return r.Normalize()
}

func TestFundBalance(t *testing.T) {
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "a", 100, 2024, 1),
		rec(core.Outgoing, core.GroupNone, "Zakat", "b", 40, 2024, 2),
		rec(core.Incoming, core.GroupSister, "Sadaka", "c", 500, 2024, 3),
	}
	if got := FundBalance(recs, "Zakat", All); got.String() != "60" {
		t.Fatalf("Zakat/All = %s, want 60", got)
	}
	if got := FundBalance(recs, "Zakat", core.GroupBrother); got.String() != "100" {
		t.Fatalf("Zakat/Brother = %s, want 100", got)
	}
	// No matching records is zero, not an error.
	if got := FundBalance(recs, "Fitra", All); !got.IsZero() {
		t.Fatalf("Fitra/All = %s, want 0", got)
	}
	if got := FundBalance(recs, "Zakat", core.GroupSister); !got.IsZero() {
		t.Fatalf("Zakat/Sister = %s, want 0", got)
	}
	if got := FundBalance(nil, "Zakat", All); !got.IsZero() {
		t.Fatalf("empty input = %s, want 0", got)
	}
}

func TestFundBalanceEmptyGroupMeansAll(t *testing.T) {
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "a", 100, 2024, 1),
		rec(core.Outgoing, core.GroupNone, "Zakat", "b", 30, 2024, 2),
	}
	// The dashboard's default view passes no group at all; every record
	// carries a concrete group after Normalize, so "" must not filter.
	if got := FundBalance(recs, "Zakat", ""); got.String() != "70" {
		t.Fatalf("Zakat with no group filter = %s, want 70", got)
	}
	if got, want := FundBalance(recs, "Zakat", ""), FundBalance(recs, "Zakat", All); !got.Equal(want) {
		t.Fatalf("empty group = %s, All = %s, must agree", got, want)
	}
}

func TestMonthlyTotalsZeroFill(t *testing.T) {
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "a", 50, 2024, 1),
	}
	totals := MonthlyTotals(recs, core.Incoming)
	if len(totals) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(totals))
	}
	if totals[0].Month != 1 || totals[0].Total.String() != "50" {
		t.Fatalf("January = %+v", totals[0])
	}
	for _, mt := range totals[1:] {
		if !mt.Total.IsZero() {
			t.Fatalf("month %d should be zero, got %s", mt.Month, mt.Total)
		}
	}

	// Empty input still yields 12 well-formed rows.
	empty := MonthlyTotals(nil, "")
	if len(empty) != 12 {
		t.Fatalf("expected 12 rows for empty input, got %d", len(empty))
	}
	for i, mt := range empty {
		if mt.Month != i+1 || !mt.Total.IsZero() {
			t.Fatalf("row %d = %+v", i, mt)
		}
	}
}

func TestMonthlyTotalsTypeFilter(t *testing.T) {
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "a", 100, 2024, 1),
		rec(core.Outgoing, core.GroupNone, "Zakat", "b", 30, 2024, 2),
	}
	in := MonthlyTotals(recs, core.Incoming)
	if in[0].Total.String() != "100" || !in[1].Total.IsZero() {
		t.Fatalf("incoming totals wrong: %+v", in[:2])
	}
	both := MonthlyTotals(recs, "")
	if both[1].Total.String() != "30" {
		t.Fatalf("unfiltered February = %s, want 30", both[1].Total)
	}
}

func TestPerMemberTotalsStableTies(t *testing.T) {
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "first", 60, 2024, 1),
		rec(core.Incoming, core.GroupBrother, "Zakat", "second", 100, 2024, 1),
		rec(core.Incoming, core.GroupBrother, "Zakat", "first", 40, 2024, 2),
		rec(core.Outgoing, core.GroupNone, "Zakat", "ignored", 999, 2024, 3),
	}
	totals := PerMemberTotals(recs)
	if len(totals) != 2 {
		t.Fatalf("expected 2 members, got %d", len(totals))
	}
	// Both sum to 100; "first" was seen first and must stay first.
	if totals[0].Name != "first" || totals[1].Name != "second" {
		t.Fatalf("tie order broken: %+v", totals)
	}

	if len(PerMemberTotals(nil)) != 0 {
		t.Fatalf("empty input must yield empty totals")
	}
}

func TestPivotDynamicColumns(t *testing.T) {
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "a", 100, 2024, 1),
		rec(core.Incoming, core.GroupBrother, "Sadaka", "a", 20, 2024, 1),
		rec(core.Incoming, core.GroupSister, "Zakat", "b", 30, 2024, 2),
	}
	table := Pivot(recs)
	if len(table.Categories) != 2 || table.Categories[0] != "Sadaka" || table.Categories[1] != "Zakat" {
		t.Fatalf("categories = %v", table.Categories)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 date rows, got %d", len(table.Rows))
	}
	jan := table.Rows[0]
	if jan.Date != "2024-01-05" {
		t.Fatalf("rows must be date-sorted, first = %s", jan.Date)
	}
	if jan.Cells[0].String() != "20" || jan.Cells[1].String() != "100" {
		t.Fatalf("january cells = %v", jan.Cells)
	}
	if jan.DailyTotal.String() != "120" {
		t.Fatalf("january daily total = %s", jan.DailyTotal)
	}
	feb := table.Rows[1]
	// Missing combinations are zero-filled.
	if !feb.Cells[0].IsZero() || feb.Cells[1].String() != "30" {
		t.Fatalf("february cells = %v", feb.Cells)
	}

	empty := Pivot(nil)
	if len(empty.Categories) != 0 || len(empty.Rows) != 0 {
		t.Fatalf("empty input must yield an empty table")
	}
}

func TestScenarioZakatLedger(t *testing.T) {
	outgoing := rec(core.Outgoing, core.GroupNone, "Zakat", "Hamza", 30, 2024, 2)
	outgoing.SubCategory = "Medical help"
	outgoing.Medical = "Heart"
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "Abu Talha", 100, 2024, 1),
		outgoing,
	}

	if got := FundBalance(recs, "Zakat", All); got.String() != "70" {
		t.Fatalf("balance = %s, want 70", got)
	}

	in := MonthlyTotals(recs, core.Incoming)
	if in[0].Total.String() != "100" {
		t.Fatalf("january incoming = %s, want 100", in[0].Total)
	}
	for _, mt := range in[1:] {
		if !mt.Total.IsZero() {
			t.Fatalf("month %d incoming should be zero", mt.Month)
		}
	}

	med := TotalsByLabel(recs, func(r core.Record) string { return r.Medical })
	if len(med) != 1 || med[0].Label != "Heart" || med[0].Total.String() != "30" {
		t.Fatalf("medical aggregate = %+v", med)
	}
}

func TestFilterApply(t *testing.T) {
	recs := []core.Record{
		rec(core.Incoming, core.GroupBrother, "Zakat", "a", 100, 2024, 1),
		rec(core.Incoming, core.GroupSister, "Sadaka", "b", 50, 2023, 6),
		rec(core.Outgoing, core.GroupNone, "Zakat", "c", 30, 2024, 2),
	}
	got := (Filter{Type: core.Incoming, Year: 2024}).Apply(recs)
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("filtered = %+v", got)
	}
	if n := len((Filter{Group: All, Category: All}).Apply(recs)); n != 3 {
		t.Fatalf("All filters must match everything, got %d", n)
	}
	if (Filter{Name: "nobody"}).Apply(recs) != nil {
		t.Fatalf("no match must yield empty set")
	}
}
