package httpapi

import (
	"net/http"
	"time"
)

type notificationTokenRequest struct {
	UsuarioID string `json:"usuarioId" validate:"required"`
	Token     string `json:"token" validate:"required,max=4096"`
	Platform  string `json:"platform" validate:"required"`
}

type notificationTokenResponse struct {
	Token     string `json:"token"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func formatMillis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (a *api) handleNotificationsTokenUpsert(w http.ResponseWriter, r *http.Request) {
	var req notificationTokenRequest
	if err := decodeValid(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	out, err := a.notificationsSvc.RegisterToken(r.Context(), req.UsuarioID, req.Token, req.Platform)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, notificationTokenResponse{
		Token:     out.Token,
		Platform:  out.Platform,
		CreatedAt: formatMillis(out.CreatedAt),
		UpdatedAt: formatMillis(out.UpdatedAt),
	})
}
