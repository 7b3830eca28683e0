package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"SementesSocial/internal/domain"
)

// SuggestedLimit caps the discovery list.
const SuggestedLimit = 10

type FriendsUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	ListSuggested(ctx context.Context, userID string, limit int) ([]domain.SuggestedUser, error)
}

type FriendshipsStore interface {
	CreateRequest(ctx context.Context, requesterID, addresseeID, message string) (string, time.Time, error)
	Accept(ctx context.Context, requestID string, when time.Time) error
	Reject(ctx context.Context, requestID string) error
	Remove(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string, now time.Time) ([]domain.Friend, error)
	ListIncoming(ctx context.Context, userID string) ([]domain.PendingRequest, error)
}

type FriendsService struct {
	Users       FriendsUsersStore
	Friendships FriendshipsStore
	Notifier    FriendRequestNotifier
	Logger      *slog.Logger
	Now         func() time.Time
}

func (s *FriendsService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func requireUserID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.FieldError("usuarioId", "required")
	}
	return id, nil
}

func (s *FriendsService) ListFriends(ctx context.Context, userID string) ([]domain.Friend, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.Friendships.ListFriends(ctx, userID, s.now())
}

func (s *FriendsService) ListIncoming(ctx context.Context, userID string) ([]domain.PendingRequest, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.Friendships.ListIncoming(ctx, userID)
}

func (s *FriendsService) ListSuggested(ctx context.Context, userID string) ([]domain.SuggestedUser, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.Users.ListSuggested(ctx, userID, SuggestedLimit)
}

// CreateRequest records a pending request from requesterID to addresseeID and
// notifies the addressee. A failed notification does not fail the request.
func (s *FriendsService) CreateRequest(ctx context.Context, requesterID, addresseeID, message string) (domain.PendingRequest, error) {
	requesterID = strings.TrimSpace(requesterID)
	addresseeID = strings.TrimSpace(addresseeID)
	fields := map[string]string{}
	if requesterID == "" {
		fields["usuarioId"] = "required"
	}
	if addresseeID == "" {
		fields["amigoId"] = "required"
	}
	if len(fields) > 0 {
		return domain.PendingRequest{}, domain.NewValidationError(fields)
	}
	if requesterID == addresseeID {
		return domain.PendingRequest{}, domain.FieldError("amigoId", "cannot friend yourself")
	}

	requester, err := s.Users.GetUserByID(ctx, requesterID)
	if err != nil {
		return domain.PendingRequest{}, err
	}
	if requester.Status == domain.UserStatusDisabled {
		return domain.PendingRequest{}, domain.ErrUserDisabled
	}

	target, err := s.Users.GetUserByID(ctx, addresseeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PendingRequest{}, domain.ErrNotFound
		}
		return domain.PendingRequest{}, err
	}
	if target.Status == domain.UserStatusDisabled {
		return domain.PendingRequest{}, domain.ErrForbidden
	}

	message = strings.TrimSpace(message)
	id, createdAt, err := s.Friendships.CreateRequest(ctx, requester.ID, target.ID, message)
	if err != nil {
		return domain.PendingRequest{}, err
	}

	if s.Notifier != nil {
		n := FriendRequestNotification{RequestID: id, RequesterID: requester.ID, AddresseeID: target.ID}
		if err := s.Notifier.NotifyFriendRequest(ctx, n); err != nil {
			s.logger().Warn("friends: notify request failed", "err", err, "request_id", id)
		}
	}

	return domain.PendingRequest{
		ID:             id,
		RemetenteID:    requester.ID,
		RemetenteNome:  requester.Nome,
		RemetenteEmail: requester.Email,
		DataEnvio:      createdAt,
		Mensagem:       message,
	}, nil
}

func (s *FriendsService) Accept(ctx context.Context, requestID string) error {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return domain.FieldError("id", "required")
	}
	return s.Friendships.Accept(ctx, requestID, s.now())
}

func (s *FriendsService) Reject(ctx context.Context, requestID string) error {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return domain.FieldError("id", "required")
	}
	return s.Friendships.Reject(ctx, requestID)
}

func (s *FriendsService) Remove(ctx context.Context, userID, friendID string) error {
	userID = strings.TrimSpace(userID)
	friendID = strings.TrimSpace(friendID)
	fields := map[string]string{}
	if userID == "" {
		fields["usuarioId"] = "required"
	}
	if friendID == "" {
		fields["id"] = "required"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return s.Friendships.Remove(ctx, userID, friendID)
}

func (s *FriendsService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
