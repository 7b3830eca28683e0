package httpapi

import (
	"net/http"
	"strings"
	"time"

	"SementesSocial/internal/domain"
)

type friendsResponse struct {
	Amigos []domain.Friend `json:"amigos"`
}

type pendingResponse struct {
	Solicitacoes []domain.PendingRequest `json:"solicitacoes"`
}

type usersResponse struct {
	Usuarios []domain.SuggestedUser `json:"usuarios"`
}

type createFriendRequestRequest struct {
	UsuarioID string `json:"usuarioId" validate:"required"`
	AmigoID   string `json:"amigoId" validate:"required,nefield=UsuarioID"`
	Mensagem  string `json:"mensagem,omitempty" validate:"max=500"`
}

type createFriendRequestResponse struct {
	Solicitacao domain.PendingRequest `json:"solicitacao"`
}

func userIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get("usuarioId"))
	if id == "" {
		return "", domain.FieldError("usuarioId", "required")
	}
	return id, nil
}

func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", domain.FieldError("id", "required")
	}
	return id, nil
}

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out, err := a.friendsSvc.ListFriends(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.Friend{}
	}
	WriteJSON(w, http.StatusOK, friendsResponse{Amigos: out})
}

func (a *api) handleFriendsIncoming(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out, err := a.friendsSvc.ListIncoming(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.PendingRequest{}
	}
	WriteJSON(w, http.StatusOK, pendingResponse{Solicitacoes: out})
}

func (a *api) handleFriendsSuggested(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out, err := a.friendsSvc.ListSuggested(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.SuggestedUser{}
	}
	WriteJSON(w, http.StatusOK, usersResponse{Usuarios: out})
}

func (a *api) handleFriendsCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req createFriendRequestRequest
	if err := decodeValid(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !a.requestLimiter.Allow(req.UsuarioID, time.Now()) {
		WriteDomainError(w, domain.ErrRateLimited)
		return
	}

	fr, err := a.friendsSvc.CreateRequest(r.Context(), req.UsuarioID, req.AmigoID, req.Mensagem)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, createFriendRequestResponse{Solicitacao: fr})
}

func (a *api) handleFriendsAccept(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.Accept(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsReject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.Reject(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsRemove(w http.ResponseWriter, r *http.Request) {
	friendID, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	userID, err := userIDParam(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.Remove(r.Context(), userID, friendID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
