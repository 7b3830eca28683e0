package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"SementesSocial/internal/domain"
	"SementesSocial/internal/service"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// domainErrors is checked in order; the first match wins.
var domainErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{domain.ErrValidation, http.StatusBadRequest, "validation_error", "invalid request"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "unauthenticated"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden", "forbidden"},
	{domain.ErrUserDisabled, http.StatusForbidden, "user_disabled", "user is disabled"},
	{domain.ErrFriendshipExists, http.StatusConflict, "friendship_exists", "friend request already exists"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later"},
	{service.ErrNotificationsUnavailable, http.StatusServiceUnavailable, "notifications_unavailable", "notifications unavailable"},
}

func WriteDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, "validation_error", ve.Error())
		return
	}
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			WriteError(w, de.status, de.code, de.message)
			return
		}
	}
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
