package httpapi

import (
	"net/http"
	"strings"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

type recordRequest struct {
	GroupID        string          `json:"groupId"`
	GameTitle      string          `json:"gameTitle"`
	PlayerNames    []domain.Player `json:"playerNames"`
	ScoreItemNames []string        `json:"scoreItemNames"`
	Scores         [][]int         `json:"scores"`
	NumPlayers     int             `json:"numPlayers"`
	NumScoreItems  int             `json:"numScoreItems"`
}

func (req recordRequest) input() domain.RecordInput {
	return domain.RecordInput{
		GroupID:        req.GroupID,
		GameTitle:      req.GameTitle,
		Players:        req.PlayerNames,
		ScoreItemNames: req.ScoreItemNames,
		Scores:         req.Scores,
		NumPlayers:     req.NumPlayers,
		NumScoreItems:  req.NumScoreItems,
	}
}

type recordsResponse struct {
	Records []domain.ScoreRecord `json:"records"`
}

func (a *api) handleRecordsCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	rec, err := a.recordSvc.CreateRecord(r.Context(), u.ID, req.input())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rec)
}

func (a *api) handleRecordsList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	records, err := a.recordSvc.ListRecords(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if records == nil {
		records = []domain.ScoreRecord{}
	}
	WriteJSON(w, http.StatusOK, recordsResponse{Records: records})
}

func (a *api) handleRecordsGet(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	rec, err := a.recordSvc.GetRecord(r.Context(), u.ID, strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (a *api) handleRecordsReplace(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	rec, err := a.recordSvc.ReplaceRecord(r.Context(), u.ID, strings.TrimSpace(r.PathValue("id")), req.input())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (a *api) handleRecordsDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.recordSvc.DeleteRecord(r.Context(), u.ID, strings.TrimSpace(r.PathValue("id"))); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
