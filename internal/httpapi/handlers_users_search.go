package httpapi

import (
	"net/http"

	"SementesSocial/internal/domain"
)

func (a *api) handleUsersSearch(w http.ResponseWriter, r *http.Request) {
	out, err := a.usersSvc.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.SuggestedUser{}
	}
	WriteJSON(w, http.StatusOK, usersResponse{Usuarios: out})
}
