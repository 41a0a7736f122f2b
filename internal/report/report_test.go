package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

func outgoing(category, sub, medical string, amount int64) core.Record {
	r := core.Record{
		Date:        core.NewDate(2024, 2, 10),
		Type:        core.Outgoing,
		Category:    category,
		SubCategory: sub,
		Medical:     medical,
		Name:        "Hamza",
		Amount:      decimal.NewFromInt(amount),
	}
	return r.Normalize()
}

func incoming(amount int64, month int) core.Record {
	r := core.Record{
		Date:     core.NewDate(2024, month, 5),
		Type:     core.Incoming,
		Group:    core.GroupBrother,
		Category: "Zakat",
		Name:     "Abu Talha",
		Amount:   decimal.NewFromInt(amount),
	}
	return r.Normalize()
}

func fullParams() Params {
	med := outgoing("Zakat", "Medical help", "Heart", 30)
	return Params{
		Member: core.Member{
			Name:    "Abu Talha",
			Email:   "abu@example.org",
			Phone:   "555-0101",
			Address: "12 Old Town Rd",
			Since:   "2020",
		},
		YearLabel:   "2024",
		Lifetime:    decimal.NewFromInt(1200),
		MemberYear:  []core.Record{incoming(100, 1), incoming(50, 3)},
		OrgOutgoing: []core.Record{med, outgoing("Sadaka", "Food aid", "", 70)},
		Medical:     []core.Record{med},
		HeaderMsg:   "Thank you for your continued support.",
		FooterMsg:   "Prepared by the treasurer.",
	}
}

func TestBuildFullReport(t *testing.T) {
	b := New("Tk ", "")
	doc, err := b.Build(fullParams())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(doc) == 0 {
		t.Fatalf("expected a non-empty document")
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", doc[:8])
	}
}

func TestBuildOmitsEmptyCharts(t *testing.T) {
	// No outgoing records at all: every chart aggregate is empty and the
	// build must still fully succeed.
	p := fullParams()
	p.OrgOutgoing = nil
	p.Medical = nil
	b := New("Tk ", "")
	doc, err := b.Build(p)
	if err != nil {
		t.Fatalf("build without charts: %v", err)
	}
	if len(doc) == 0 {
		t.Fatalf("expected a document")
	}

	// Medical omitted, fund/usage present.
	p = fullParams()
	p.Medical = nil
	if _, err := b.Build(p); err != nil {
		t.Fatalf("build without medical chart: %v", err)
	}
}

func TestBuildEmptyYear(t *testing.T) {
	// A member with no records in the target year still gets a full
	// 12-row, zero-filled report.
	p := fullParams()
	p.MemberYear = nil
	b := New("Tk ", "")
	if _, err := b.Build(p); err != nil {
		t.Fatalf("build for empty year: %v", err)
	}
}

func TestProbe(t *testing.T) {
	if err := New("Tk ", "").Probe(); err != nil {
		t.Fatalf("probe: %v", err)
	}
}

func TestMissingFontSkipsQuotes(t *testing.T) {
	b := New("Tk ", "/nonexistent/kalpurush.ttf")
	if b.hasFont {
		t.Fatalf("missing font file must disable the quotes block")
	}
	if _, err := b.Build(fullParams()); err != nil {
		t.Fatalf("build without font: %v", err)
	}
}
