package httpapi

import (
	"net/http"
	"strings"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

type groupRequest struct {
	GroupName string          `json:"groupName"`
	Members   []domain.Member `json:"members"`
}

type groupsResponse struct {
	Groups []domain.Group `json:"groups"`
}

func (a *api) handleGroupsCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	g, err := a.groupSvc.CreateGroup(r.Context(), u.ID, domain.GroupInput{GroupName: req.GroupName, Members: req.Members})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, g)
}

func (a *api) handleGroupsList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	groups, err := a.groupSvc.ListGroups(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if groups == nil {
		groups = []domain.Group{}
	}
	WriteJSON(w, http.StatusOK, groupsResponse{Groups: groups})
}

func (a *api) handleGroupsGet(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	g, err := a.groupSvc.GetGroup(r.Context(), u.ID, strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, g)
}

func (a *api) handleGroupsReplace(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	g, err := a.groupSvc.ReplaceGroup(r.Context(), u.ID, strings.TrimSpace(r.PathValue("id")), domain.GroupInput{GroupName: req.GroupName, Members: req.Members})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, g)
}

func (a *api) handleGroupsDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.groupSvc.DeleteGroup(r.Context(), u.ID, strings.TrimSpace(r.PathValue("id"))); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
