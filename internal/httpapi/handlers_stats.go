package httpapi

import (
	"net/http"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

// Statistics are recomputed on every call, so they must never be cached.
func (a *api) handleStatsPersonal(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	stats, err := a.statsSvc.PersonalStats(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, stats)
}

func (a *api) handleStatsGroup(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	stats, err := a.statsSvc.GroupStats(r.Context(), u.ID, r.PathValue("id"), r.URL.Query().Get("game"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, stats)
}
