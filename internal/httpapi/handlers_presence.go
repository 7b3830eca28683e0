package httpapi

import "net/http"

type presenceAnnounceRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type presenceListResponse struct {
	Online []string `json:"online"`
}

func (a *api) handlePresenceAnnounce(w http.ResponseWriter, r *http.Request) {
	var req presenceAnnounceRequest
	if err := decodeValid(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := a.presenceSvc.Announce(r.Context(), req.UserID); err != nil {
		a.logger.Error("presence: announce failed", "err", err, "user_id", req.UserID)
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handlePresenceList(w http.ResponseWriter, r *http.Request) {
	ids, err := a.presenceSvc.Online(r.Context())
	if err != nil {
		a.logger.Error("presence: list failed", "err", err)
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, presenceListResponse{Online: ids})
}
