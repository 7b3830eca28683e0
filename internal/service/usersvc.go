package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"SementesSocial/internal/domain"
)

const (
	MinSearchLength = 2
	SearchLimit     = 20
)

type UsersSearchStore interface {
	SearchUsers(ctx context.Context, q string, limit int) ([]domain.SuggestedUser, error)
}

type UsersService struct {
	Store UsersSearchStore
}

func (s *UsersService) Search(ctx context.Context, q string) ([]domain.SuggestedUser, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return nil, domain.FieldError("query", "must be at least 2 characters")
	}
	return s.Store.SearchUsers(ctx, q, SearchLimit)
}
