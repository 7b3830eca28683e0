package service

import (
	"context"
	"errors"
	"time"

	"SementesSocial/internal/domain"
	"SementesSocial/internal/notifications"
)

type stubUsersStore struct {
	getByIDFunc       func(context.Context, string) (domain.User, error)
	listSuggestedFunc func(context.Context, string, int) ([]domain.SuggestedUser, error)
	touchFunc         func(context.Context, string, time.Time) error
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return domain.User{}, errors.New("get user not stubbed")
}

func (s *stubUsersStore) ListSuggested(ctx context.Context, userID string, limit int) ([]domain.SuggestedUser, error) {
	if s.listSuggestedFunc != nil {
		return s.listSuggestedFunc(ctx, userID, limit)
	}
	return nil, errors.New("list suggested not stubbed")
}

func (s *stubUsersStore) TouchLastSeen(ctx context.Context, id string, when time.Time) error {
	if s.touchFunc != nil {
		return s.touchFunc(ctx, id, when)
	}
	return errors.New("touch not stubbed")
}

type stubFriendshipsStore struct {
	createFunc       func(context.Context, string, string, string) (string, time.Time, error)
	acceptFunc       func(context.Context, string, time.Time) error
	rejectFunc       func(context.Context, string) error
	removeFunc       func(context.Context, string, string) error
	listFriendsFunc  func(context.Context, string, time.Time) ([]domain.Friend, error)
	listIncomingFunc func(context.Context, string) ([]domain.PendingRequest, error)
}

func (s *stubFriendshipsStore) CreateRequest(ctx context.Context, requesterID, addresseeID, message string) (string, time.Time, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, requesterID, addresseeID, message)
	}
	return "", time.Time{}, errors.New("create not stubbed")
}

func (s *stubFriendshipsStore) Accept(ctx context.Context, requestID string, when time.Time) error {
	if s.acceptFunc != nil {
		return s.acceptFunc(ctx, requestID, when)
	}
	return errors.New("accept not stubbed")
}

func (s *stubFriendshipsStore) Reject(ctx context.Context, requestID string) error {
	if s.rejectFunc != nil {
		return s.rejectFunc(ctx, requestID)
	}
	return errors.New("reject not stubbed")
}

func (s *stubFriendshipsStore) Remove(ctx context.Context, userID, friendID string) error {
	if s.removeFunc != nil {
		return s.removeFunc(ctx, userID, friendID)
	}
	return errors.New("remove not stubbed")
}

func (s *stubFriendshipsStore) ListFriends(ctx context.Context, userID string, now time.Time) ([]domain.Friend, error) {
	if s.listFriendsFunc != nil {
		return s.listFriendsFunc(ctx, userID, now)
	}
	return nil, errors.New("list friends not stubbed")
}

func (s *stubFriendshipsStore) ListIncoming(ctx context.Context, userID string) ([]domain.PendingRequest, error) {
	if s.listIncomingFunc != nil {
		return s.listIncomingFunc(ctx, userID)
	}
	return nil, errors.New("list incoming not stubbed")
}

type stubNotifier struct {
	notifyFunc func(context.Context, FriendRequestNotification) error
}

func (s *stubNotifier) NotifyFriendRequest(ctx context.Context, n FriendRequestNotification) error {
	if s.notifyFunc != nil {
		return s.notifyFunc(ctx, n)
	}
	return nil
}

type stubNotificationTokensStore struct {
	upsertFunc func(context.Context, domain.NotificationToken) (domain.NotificationToken, error)
	deleteFunc func(context.Context, string) error
	listFunc   func(context.Context, string) ([]domain.NotificationToken, error)
}

func (s *stubNotificationTokensStore) UpsertToken(ctx context.Context, t domain.NotificationToken) (domain.NotificationToken, error) {
	if s.upsertFunc != nil {
		return s.upsertFunc(ctx, t)
	}
	return domain.NotificationToken{}, errors.New("upsert not stubbed")
}

func (s *stubNotificationTokensStore) DeleteToken(ctx context.Context, token string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, token)
	}
	return errors.New("delete not stubbed")
}

func (s *stubNotificationTokensStore) ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, userID)
	}
	return nil, errors.New("list not stubbed")
}

type stubPushSender struct {
	sendFunc func(context.Context, string, notifications.Message) error
}

func (s *stubPushSender) Send(ctx context.Context, token string, msg notifications.Message) error {
	if s.sendFunc != nil {
		return s.sendFunc(ctx, token, msg)
	}
	return nil
}

type stubRegistry struct {
	touchFunc  func(context.Context, string, time.Time) error
	onlineFunc func(context.Context, time.Time) ([]string, error)
}

func (s *stubRegistry) Touch(ctx context.Context, userID string, at time.Time) error {
	if s.touchFunc != nil {
		return s.touchFunc(ctx, userID, at)
	}
	return nil
}

func (s *stubRegistry) Online(ctx context.Context, since time.Time) ([]string, error) {
	if s.onlineFunc != nil {
		return s.onlineFunc(ctx, since)
	}
	return nil, nil
}
