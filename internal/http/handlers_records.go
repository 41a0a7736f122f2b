package http

import (
	"net/http"
	"strings"

	"hisab/internal/core"
	"hisab/internal/ledger"
	applog "hisab/internal/log"
	"hisab/internal/store"
	"hisab/internal/tenant"
)

type recordListResponse struct {
	Revision store.Revision  `json:"revision"`
	Records  []recordPayload `json:"records"`
}

type replaceAllRequest struct {
	Revision store.Revision  `json:"revision"`
	Records  []recordPayload `json:"records"`
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type resetRequest struct {
	Confirm string `json:"confirm"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

// handleRecords serves the collection endpoint: GET lists (optionally
// filtered), POST creates, PUT is the wholesale replace guarded by the
// revision token from a prior GET.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	switch r.Method {
	case http.MethodGet:
		s.listRecords(w, r, ws)
	case http.MethodPost:
		s.createRecord(w, r, ws)
	case http.MethodPut:
		s.replaceRecords(w, r, ws)
	default:
		requireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodPut)
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	recs, rev := ws.Store.Snapshot()

	q := r.URL.Query()
	filter := ledger.Filter{
		Type:     core.RecordType(strings.TrimSpace(q.Get("type"))),
		Group:    strings.TrimSpace(q.Get("group")),
		Category: strings.TrimSpace(q.Get("category")),
		Name:     strings.TrimSpace(q.Get("name")),
		Year:     parseYear(r),
	}
	recs = filter.Apply(recs)

	payload := make([]recordPayload, 0, len(recs))
	for _, rec := range recs {
		payload = append(payload, payloadFromRecord(rec))
	}
	writeJSON(w, http.StatusOK, recordListResponse{Revision: rev, Records: payload})
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	var p recordPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "malformed record")
		return
	}
	rec, err := p.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if msg, ok := s.checkTaxonomy(rec); !ok {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := s.svc.Create(r.Context(), ws, rec)
	if err != nil {
		applog.FromContext(r.Context()).Error("Record create failed",
			applog.FieldTenant, ws.UserKey, applog.FieldError, err)
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, payloadFromRecord(created))
}

func (s *Server) replaceRecords(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	var req replaceAllRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed replace request")
		return
	}
	// Rows go through the lenient parser: a replace writes back what the
	// client read, and the store may hold historical rows that would fail
	// entry validation.
	recs := make([]core.Record, 0, len(req.Records))
	for _, p := range req.Records {
		recs = append(recs, p.toStoredRecord())
	}
	if err := s.svc.ReplaceAll(r.Context(), ws, recs, req.Revision); err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			applog.FromContext(r.Context()).Error("Replace-all failed",
				applog.FieldTenant, ws.UserKey, applog.FieldError, err)
		}
		writeError(w, errorStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordByID serves PUT (single-field update) and DELETE on
// /api/records/{id}.
func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	id := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "unknown record path")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req updateFieldRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed update request")
			return
		}
		if err := s.svc.UpdateField(r.Context(), ws, id, req.Field, sanitizeInput(req.Value)); err != nil {
			writeError(w, errorStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := s.svc.Delete(r.Context(), ws, id); err != nil {
			writeError(w, errorStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		requireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	n, err := s.svc.Import(r.Context(), ws, http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		// The prior state is untouched on any parse failure.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	applog.FromContext(r.Context()).Info("Records imported",
		applog.FieldTenant, ws.UserKey, applog.FieldOperation, applog.OpImport, "count", n)
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ws.UserKey+`_records.csv"`)
	if err := ws.Store.ExportCSV(w); err != nil {
		applog.FromContext(r.Context()).Error("Export failed",
			applog.FieldTenant, ws.UserKey, applog.FieldError, err)
	}
}

// handleReset clears the tenant's ledger. The caller must echo the tenant
// key in the confirm field; a bare POST is never enough.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed reset request")
		return
	}
	if err := s.svc.Reset(r.Context(), ws, req.Confirm); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	applog.FromContext(r.Context()).Warn("Ledger reset", applog.FieldTenant, ws.UserKey)
	w.WriteHeader(http.StatusNoContent)
}

// checkTaxonomy validates the enumerated fields of a new record against
// the configured category lists.
func (s *Server) checkTaxonomy(rec core.Record) (string, bool) {
	catTag := core.TagIncomeCategories
	if rec.Type == core.Outgoing {
		catTag = core.TagOutgoingCategories
	}
	if !s.taxonomy.Allowed(catTag, rec.Category) {
		return "unknown category: " + rec.Category, false
	}
	if rec.Group != "" && rec.Group != core.GroupNone && !s.taxonomy.Allowed(core.TagGroups, rec.Group) {
		return "unknown group: " + rec.Group, false
	}
	if rec.SubCategory != "" && !s.taxonomy.Allowed(core.TagSubCategories, rec.SubCategory) {
		return "unknown sub-category: " + rec.SubCategory, false
	}
	if rec.Medical != "" {
		if !s.taxonomy.Allowed(core.TagMedicalConditions, rec.Medical) {
			return "unknown medical condition: " + rec.Medical, false
		}
		if rec.SubCategory != core.MedicalSubCategory {
			return "medical condition requires the " + core.MedicalSubCategory + " sub-category", false
		}
	}
	return "", true
}
