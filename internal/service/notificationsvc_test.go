package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"SementesSocial/internal/domain"
	"SementesSocial/internal/notifications"
)

func TestNotificationServiceRegisterToken(t *testing.T) {
	now := time.Date(2025, 4, 1, 8, 0, 0, 123456789, time.UTC)
	svc := &NotificationService{
		Tokens: &stubNotificationTokensStore{
			upsertFunc: func(_ context.Context, tok domain.NotificationToken) (domain.NotificationToken, error) {
				if tok.UserID != "u1" || tok.Token != "abc" || tok.Platform != "android" {
					t.Fatalf("unexpected token: %+v", tok)
				}
				if !tok.UpdatedAt.Equal(now.Truncate(time.Millisecond)) {
					t.Fatalf("timestamp not truncated: %v", tok.UpdatedAt)
				}
				return tok, nil
			},
		},
		Now: func() time.Time { return now },
	}

	if _, err := svc.RegisterToken(context.Background(), "u1", " abc ", " Android "); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
}

func TestNotificationServiceRegisterTokenValidation(t *testing.T) {
	svc := &NotificationService{Tokens: &stubNotificationTokensStore{}}

	if _, err := svc.RegisterToken(context.Background(), "u1", "", "android"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty token, got %v", err)
	}
	if _, err := svc.RegisterToken(context.Background(), "u1", "abc", "symbian"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for platform, got %v", err)
	}
	if _, err := svc.RegisterToken(context.Background(), "", "abc", "ios"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for user, got %v", err)
	}

	var none NotificationService
	if _, err := none.RegisterToken(context.Background(), "u1", "abc", "ios"); !errors.Is(err, ErrNotificationsUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestNotificationServiceNotifyFriendRequest(t *testing.T) {
	var deleted []string
	sent := map[string]notifications.Message{}

	tokens := &stubNotificationTokensStore{
		listFunc: func(_ context.Context, userID string) ([]domain.NotificationToken, error) {
			if userID != "u9" {
				t.Fatalf("unexpected addressee: %s", userID)
			}
			return []domain.NotificationToken{
				{Token: "droid", Platform: "android"},
				{Token: "phone", Platform: "ios"},
				{Token: "stale", Platform: "android"},
			}, nil
		},
		deleteFunc: func(_ context.Context, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}
	users := &stubUsersStore{
		getByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{ID: id, Nome: "Ana"}, nil
		},
	}
	sender := &stubPushSender{
		sendFunc: func(_ context.Context, token string, msg notifications.Message) error {
			if token == "stale" {
				return notifications.ErrInvalidToken
			}
			sent[token] = msg
			return nil
		},
	}

	svc := &NotificationService{Tokens: tokens, Users: users, Sender: sender}
	err := svc.NotifyFriendRequest(context.Background(), FriendRequestNotification{
		RequestID:   "r1",
		RequesterID: "u1",
		AddresseeID: "u9",
	})
	if err != nil {
		t.Fatalf("NotifyFriendRequest: %v", err)
	}

	if len(deleted) != 1 || deleted[0] != "stale" {
		t.Fatalf("expected stale token deleted, got %v", deleted)
	}
	if sent["droid"].Notification != nil {
		t.Fatalf("android should receive data-only")
	}
	if sent["phone"].Notification == nil {
		t.Fatalf("ios should receive an alert")
	}
	if sent["droid"].Data["request_id"] != "r1" {
		t.Fatalf("missing request id in payload: %v", sent["droid"].Data)
	}
}

func TestNotificationServiceNotifyWithoutSender(t *testing.T) {
	svc := &NotificationService{Tokens: &stubNotificationTokensStore{}}
	if err := svc.NotifyFriendRequest(context.Background(), FriendRequestNotification{}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
