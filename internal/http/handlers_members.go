package http

import (
	"net/http"
	"strings"

	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/members"
	"hisab/internal/tenant"
)

type memberListResponse struct {
	Members []core.Member `json:"members"`
}

// handleMembers serves GET (listing, optionally by group) and POST
// (registration) on the member directory.
func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	switch r.Method {
	case http.MethodGet:
		s.listMembers(w, r, ws.Directory)
	case http.MethodPost:
		s.registerMember(w, r, ws.Directory)
	default:
		requireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request, dir *members.Directory) {
	group := strings.TrimSpace(r.URL.Query().Get("group"))
	if group == "" {
		group = members.GroupAll
	}

	names := dir.ListByGroup(group)
	all := dir.All()
	out := make([]core.Member, 0, len(names))
	for _, name := range names {
		out = append(out, all[name])
	}
	writeJSON(w, http.StatusOK, memberListResponse{Members: out})
}

func (s *Server) registerMember(w http.ResponseWriter, r *http.Request, dir *members.Directory) {
	var m core.Member
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, "malformed member")
		return
	}
	m.Name = sanitizeInput(m.Name)
	m.Email = sanitizeInput(m.Email)

	registered, err := dir.Register(m)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	applog.FromContext(r.Context()).Info("Member registered", applog.FieldMemberName, registered.Name)
	writeJSON(w, http.StatusCreated, registered)
}

func (s *Server) handleMembersImport(w http.ResponseWriter, r *http.Request, ws *tenant.Workspace) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	n, err := ws.Directory.ImportJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	applog.FromContext(r.Context()).Info("Members imported", applog.FieldOperation, applog.OpImport, "count", n)
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}
