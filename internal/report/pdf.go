// Package report turns aggregator output into the exportable member
// contribution report. Generation is all-or-nothing: any render error
// returns no document, and a server that cannot pass Probe should not offer
// the capability at all.
package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

// Quotes rendered between the charts and the footer when a UTF-8 font is
// available; the built-in PDF fonts cannot render Bengali.
const (
	quranQuote = "যারা আল্লাহর পথে নিজেদের মাল ব্যয় করে, তাদের (দানের) তুলনা সেই বীজের মত, যাত্থেকে সাতটি শীষ জন্মিল, প্রত্যেক শীষে একশত করে দানা এবং আল্লাহ যাকে ইচ্ছে করেন, বর্ধিত হারে দিয়ে থাকেন। বস্তুতঃ আল্লাহ প্রাচুর্যের অধিকারী, জ্ঞানময়। (সুরা বাকারাহ ২৬১)"

	hadithQuote = "আদী ইব্‌ন হাতিম (রাঃ) থেকে বর্ণিতঃ নবী (সাল্লাল্লাহু 'আলাইহি ওয়া সাল্লাম) থেকে বর্ণিত। তিনি বলেন তোমরা জাহান্নামের আগুন থেকে বাঁচ (নিজেদের রক্ষা কর) যদিও তা খেজুরের টুকরা দ্বারাও হয়। (সুনানে আন-নাসায়ী, হাদিস নং ২৫৫২)"
)

// Params is everything one report needs: the member profile, the year label
// ("All" for lifetime), the member's records for that year, the
// organization's outgoing records, the medical-flagged subset, and the
// operator-supplied header/footer messages.
type Params struct {
	Member      core.Member
	YearLabel   string
	Lifetime    decimal.Decimal
	MemberYear  []core.Record
	OrgOutgoing []core.Record
	Medical     []core.Record
	HeaderMsg   string
	FooterMsg   string
}

// Builder renders member contribution reports.
type Builder struct {
	currency string
	fontPath string
	hasFont  bool
}

// New creates a builder. fontPath may be empty; the quotes block is skipped
// without it.
func New(currency, fontPath string) *Builder {
	b := &Builder{currency: currency, fontPath: fontPath}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			b.hasFont = true
		}
	}
	return b
}

// Probe renders a throwaway document so the server can verify the
// capability before offering it. Probe failure means the report endpoint
// stays disabled; a partial or garbled document is never acceptable.
func (b *Builder) Probe() error {
	_, err := b.Build(Params{
		Member:    core.Member{Name: "probe", Email: "probe@localhost"},
		YearLabel: "All",
		Lifetime:  decimal.Zero,
	})
	if err != nil {
		return fmt.Errorf("report probe: %w", err)
	}
	return nil
}

// Build assembles the paginated document in the fixed section order: title,
// profile, lifetime highlight, header message, member monthly table,
// organization monthly table, proportion charts, quotes, footer message and
// signature line.
func (b *Builder) Build(p Params) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Member Contribution Report", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Title block
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Member Contribution Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// Member profile
	pdf.SetFont("Helvetica", "", 10)
	since := p.Member.Since
	if since == "" {
		since = "-"
	}
	profile := []string{
		fmt.Sprintf("Name: %s", p.Member.Name),
		fmt.Sprintf("Member Since: %s", since),
		fmt.Sprintf("Address: %s", orDash(p.Member.Address)),
		fmt.Sprintf("Phone/Email: %s / %s", orDash(p.Member.Phone), orDash(p.Member.Email)),
		fmt.Sprintf("Report Year: %s", p.YearLabel),
	}
	for _, line := range profile {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// Lifetime highlight
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 139)
	pdf.CellFormat(0, 8, fmt.Sprintf("LIFETIME CONTRIBUTIONS: %s%s", b.currency, p.Lifetime.StringFixed(2)), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	if p.HeaderMsg != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, p.HeaderMsg, "", "L", false)
		pdf.Ln(4)
	}

	// Table 1: the member's own monthly contributions
	b.monthlyTable(pdf,
		fmt.Sprintf("1. Your Contributions in %s", p.YearLabel),
		ledger.MonthlyTotals(p.MemberYear, ""),
		0, 100, 0)

	// Table 2: organization-wide monthly disbursements
	b.monthlyTable(pdf,
		fmt.Sprintf("2. Charity Overall Donations in %s (Impact)", p.YearLabel),
		ledger.MonthlyTotals(p.OrgOutgoing, ""),
		0, 0, 128)

	if err := b.chartSection(pdf, p); err != nil {
		return nil, err
	}

	if b.hasFont {
		if err := b.quotesSection(pdf); err != nil {
			return nil, err
		}
	}

	if p.FooterMsg != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, p.FooterMsg, "", "L", false)
		pdf.Ln(8)
	}

	// Signature line
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(10)
	pdf.CellFormat(0, 6, "______________________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Authorized Signature", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// monthlyTable renders a 12-row month/amount table with a trailing bold
// TOTAL row. Months with no records show 0.00.
func (b *Builder) monthlyTable(pdf *gofpdf.Fpdf, heading string, rows []ledger.MonthTotal, r, g, bl int) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")

	pdf.SetFillColor(r, g, bl)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Month", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 7, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "", 10)
	total := decimal.Zero
	for _, row := range rows {
		pdf.CellFormat(70, 6, time.Month(row.Month).String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, row.Total.StringFixed(2), "1", 1, "R", false, 0, "")
		total = total.Add(row.Total)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "TOTAL", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, total.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Ln(6)
}

// chartSection embeds up to three proportion charts. A chart whose source
// aggregate is empty is omitted, never rendered blank.
func (b *Builder) chartSection(pdf *gofpdf.Fpdf, p Params) error {
	fund := ledger.TotalsByLabel(p.OrgOutgoing, func(r core.Record) string { return r.Category })
	usage := ledger.TotalsByLabel(p.OrgOutgoing, func(r core.Record) string { return r.SubCategory })
	medical := ledger.TotalsByLabel(p.Medical, func(r core.Record) string { return r.Medical })
	if len(fund) == 0 && len(usage) == 0 && len(medical) == 0 {
		return nil
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("3. Distribution Analysis (%s)", p.YearLabel), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	const imgW = 85.0 // two-up layout on an A4 portrait page
	type namedChart struct {
		name   string
		title  string
		totals []ledger.LabelTotal
	}
	row1 := []namedChart{}
	if len(fund) > 0 {
		row1 = append(row1, namedChart{"chart-fund", "By Fund Source", fund})
	}
	if len(usage) > 0 {
		row1 = append(row1, namedChart{"chart-usage", "By Usage", usage})
	}

	place := func(c namedChart, x float64) error {
		png, err := pieChartPNG(c.title, c.totals)
		if err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(c.name, opts, bytes.NewReader(png))
		pdf.ImageOptions(c.name, x, pdf.GetY(), imgW, 0, false, opts, 0, "")
		return nil
	}

	if len(row1) > 0 {
		if pdf.GetY()+imgW > 270 {
			pdf.AddPage()
		}
		y := pdf.GetY()
		x := 15.0
		for _, c := range row1 {
			if err := place(c, x); err != nil {
				return err
			}
			x += imgW + 10
		}
		pdf.SetY(y + imgW + 5)
	}

	if len(medical) > 0 {
		if pdf.GetY()+imgW > 270 {
			pdf.AddPage()
		}
		y := pdf.GetY()
		if err := place(namedChart{"chart-medical", "Medical Breakdown", medical}, 60); err != nil {
			return err
		}
		pdf.SetY(y + imgW + 8)
	}
	return nil
}

func (b *Builder) quotesSection(pdf *gofpdf.Fpdf) error {
	pdf.AddUTF8Font("quotes", "", b.fontPath)
	if pdf.Err() {
		return fmt.Errorf("load quote font: %v", pdf.Error())
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Inspirational Quotes:", "", 1, "L", false, 0, "")
	pdf.SetFont("quotes", "", 10)
	pdf.MultiCell(0, 6, quranQuote, "", "L", false)
	pdf.Ln(2)
	pdf.MultiCell(0, 6, hadithQuote, "", "L", false)
	pdf.Ln(6)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
