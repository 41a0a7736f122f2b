package http

import (
	"net/http"
	"strings"

	"hisab/internal/core"
	"hisab/internal/ledger"
	applog "hisab/internal/log"
	"hisab/internal/report"
	"hisab/internal/tenant"
)

type summaryResponse struct {
	Year            int               `json:"year,omitempty"`
	Group           string            `json:"group,omitempty"`
	Balances        map[string]string `json:"balances"`
	MonthlyIncoming []monthRow        `json:"monthly_incoming"`
	MonthlyOutgoing []monthRow        `json:"monthly_outgoing"`
	PerMember       []nameRow         `json:"per_member"`
	Pivot           pivotPayload      `json:"pivot"`
}

type monthRow struct {
	Month int    `json:"month"`
	Total string `json:"total"`
}

type nameRow struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

type pivotPayload struct {
	Categories []string   `json:"categories"`
	Rows       []pivotRow `json:"rows"`
}

type pivotRow struct {
	Date       string   `json:"date"`
	Cells      []string `json:"cells"`
	DailyTotal string   `json:"daily_total"`
}

// handleSummary computes the dashboard aggregates from a fresh snapshot.
// Nothing is cached; every call reflects the latest committed state.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	recs, _ := ws.Store.Snapshot()

	group := strings.TrimSpace(r.URL.Query().Get("group"))
	year := parseYear(r)
	filtered := (ledger.Filter{Group: group, Year: year}).Apply(recs)

	resp := summaryResponse{
		Year:     year,
		Group:    group,
		Balances: make(map[string]string),
	}
	for _, cat := range s.taxonomy.Values(core.TagIncomeCategories) {
		resp.Balances[cat] = core.FormatAmount(ledger.FundBalance(filtered, cat, group))
	}
	for _, mt := range ledger.MonthlyTotals(filtered, core.Incoming) {
		resp.MonthlyIncoming = append(resp.MonthlyIncoming, monthRow{Month: mt.Month, Total: core.FormatAmount(mt.Total)})
	}
	for _, mt := range ledger.MonthlyTotals(filtered, core.Outgoing) {
		resp.MonthlyOutgoing = append(resp.MonthlyOutgoing, monthRow{Month: mt.Month, Total: core.FormatAmount(mt.Total)})
	}
	for _, nt := range ledger.PerMemberTotals(filtered) {
		resp.PerMember = append(resp.PerMember, nameRow{Name: nt.Name, Total: core.FormatAmount(nt.Total)})
	}

	pivot := ledger.Pivot(filtered)
	resp.Pivot.Categories = pivot.Categories
	for _, row := range pivot.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, core.FormatAmount(c))
		}
		resp.Pivot.Rows = append(resp.Pivot.Rows, pivotRow{
			Date:       row.Date,
			Cells:      cells,
			DailyTotal: core.FormatAmount(row.DailyTotal),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReport renders the member contribution PDF. When the builder failed
// its startup probe the endpoint answers 503 so callers get a clear notice
// instead of a partial document.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.report == nil {
		writeError(w, http.StatusServiceUnavailable, "report generation unavailable")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing member name")
		return
	}
	member := ws.Directory.Lookup(name)
	if member.Name == "" {
		// Records can name people who never registered; the report still
		// renders with a bare profile.
		member = core.Member{Name: name}
	}

	year := parseYear(r)
	yearLabel := "All"
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" && year > 0 {
		yearLabel = v
	}

	recs, _ := ws.Store.Snapshot()
	memberAll := (ledger.Filter{Type: core.Incoming, Name: name}).Apply(recs)
	memberYear := (ledger.Filter{Year: year}).Apply(memberAll)
	orgOutgoing := (ledger.Filter{Type: core.Outgoing, Year: year}).Apply(recs)

	var medical []core.Record
	for _, rec := range orgOutgoing {
		if rec.Medical != "" {
			medical = append(medical, rec)
		}
	}

	params := report.Params{
		Member:      member,
		YearLabel:   yearLabel,
		Lifetime:    ledger.Sum(memberAll),
		MemberYear:  memberYear,
		OrgOutgoing: orgOutgoing,
		Medical:     medical,
		HeaderMsg:   sanitizeInput(r.URL.Query().Get("header_msg")),
		FooterMsg:   sanitizeInput(r.URL.Query().Get("footer_msg")),
	}

	doc, err := s.report.Build(params)
	if err != nil {
		applog.FromContext(r.Context()).Error("Report build failed",
			applog.FieldTenant, ws.UserKey, applog.FieldMemberName, name, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="contribution_report.pdf"`)
	_, _ = w.Write(doc)
}
