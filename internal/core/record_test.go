package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2024, 1, 5), true},
		{NewDate(2024, 12, 31), true},
		{Date{}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-10")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 10 {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("10/02/2024"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"100", "100", true},
		{"0", "", false},
		{"-5", "", false},
		{"+5", "", false},
		{"", "", false},
		{"abc", "", false},
	}
	for i, tc := range cases {
		d, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.ok && d.String() != tc.want {
			t.Fatalf("case %d got %s want %s", i, d.String(), tc.want)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		Date:     NewDate(2024, 1, 5),
		Type:     Incoming,
		Group:    GroupBrother,
		Category: "Zakat",
		Name:     "Abu Talha",
		Amount:   decimal.NewFromInt(100),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Record{
		{Type: Incoming, Name: "a", Amount: decimal.NewFromInt(1)},                              // zero date
		{Date: NewDate(2024, 1, 5), Type: "Transfer", Name: "a", Amount: decimal.NewFromInt(1)}, // bad type
		{Date: NewDate(2024, 1, 5), Type: Incoming, Name: "  ", Amount: decimal.NewFromInt(1)},  // blank name
		{Date: NewDate(2024, 1, 5), Type: Incoming, Name: "a", Amount: decimal.Zero},            // zero amount
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecordNormalize(t *testing.T) {
	r := Record{Date: NewDate(2024, 2, 10), Type: Outgoing, Name: "x", Amount: decimal.NewFromInt(30)}
	n := r.Normalize()
	if n.Year != 2024 || n.Month != 2 {
		t.Fatalf("got year=%d month=%d", n.Year, n.Month)
	}
	if n.Group != GroupNone {
		t.Fatalf("expected empty group mapped to %q, got %q", GroupNone, n.Group)
	}
}

func TestMemberValidate(t *testing.T) {
	good := Member{Name: "Abu Talha", Email: "abu@example.org", Group: GroupBrother}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Member{Name: "", Email: "a@b.c"}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Member{Name: "Abu Talha", Email: " "}).Validate(); err == nil {
		t.Fatalf("expected error for empty email")
	}
}

func TestTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()
	if tax.Revision != "v2" {
		t.Fatalf("default revision = %q, want v2", tax.Revision)
	}
	if !tax.Allowed(TagIncomeCategories, "Fitra") {
		t.Fatalf("Fitra should be allowed in latest revision")
	}
	if tax.Allowed(TagIncomeCategories, "Lottery") {
		t.Fatalf("unknown category should not be allowed")
	}
	// Optional tags accept empty values, mandatory ones do not.
	if !tax.Allowed(TagMedicalConditions, "") {
		t.Fatalf("empty medical condition should be allowed")
	}
	if tax.Allowed(TagGroups, "") {
		t.Fatalf("empty group should not be allowed")
	}

	old := TaxonomyRevision("v1")
	if old.Allowed(TagIncomeCategories, "Fitra") {
		t.Fatalf("Fitra is not a v1 category")
	}
	if got := TaxonomyRevision("nope").Revision; got != "v2" {
		t.Fatalf("unknown revision should fall back to latest, got %q", got)
	}
}
