package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"SementesSocial/internal/domain"
	"SementesSocial/internal/notifications"
)

var ErrNotificationsUnavailable = errors.New("notifications_unavailable")

type NotificationTokensStore interface {
	UpsertToken(ctx context.Context, t domain.NotificationToken) (domain.NotificationToken, error)
	DeleteToken(ctx context.Context, token string) error
	ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error)
}

type NotificationUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type PushSender interface {
	Send(ctx context.Context, token string, msg notifications.Message) error
}

type FriendRequestNotification struct {
	RequestID   string
	RequesterID string
	AddresseeID string
}

type FriendRequestNotifier interface {
	NotifyFriendRequest(ctx context.Context, notification FriendRequestNotification) error
}

type NotificationService struct {
	Tokens NotificationTokensStore
	Users  NotificationUsersStore
	Sender PushSender
	Logger *slog.Logger
	Now    func() time.Time
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID, token, platform string) (domain.NotificationToken, error) {
	if s.Tokens == nil {
		return domain.NotificationToken{}, ErrNotificationsUnavailable
	}
	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	platform = strings.TrimSpace(strings.ToLower(platform))

	fields := map[string]string{}
	if userID == "" {
		fields["usuarioId"] = "required"
	}
	if token == "" {
		fields["token"] = "required"
	}
	switch platform {
	case "android", "ios", "web":
	case "":
		fields["platform"] = "required"
	default:
		fields["platform"] = "must be android, ios or web"
	}
	if len(fields) > 0 {
		return domain.NotificationToken{}, domain.NewValidationError(fields)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Tokens.UpsertToken(ctx, domain.NotificationToken{
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		UpdatedAt: now().UTC().Truncate(time.Millisecond),
	})
}

// NotifyFriendRequest pushes to every device of the addressee. Tokens the
// provider reports unregistered are deleted; other send failures are logged.
func (s *NotificationService) NotifyFriendRequest(ctx context.Context, n FriendRequestNotification) error {
	if s.Tokens == nil || s.Sender == nil || s.Users == nil {
		return nil
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := s.Tokens.ListTokens(ctx, n.AddresseeID)
	if err != nil {
		logger.Error("notifications: list tokens failed", "err", err, "user_id", n.AddresseeID)
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	requester, err := s.Users.GetUserByID(ctx, n.RequesterID)
	if err != nil {
		logger.Error("notifications: requester lookup failed", "err", err, "user_id", n.RequesterID)
		return err
	}

	name := strings.TrimSpace(requester.Nome)
	payload := map[string]string{
		"type":         "friend_request",
		"request_id":   n.RequestID,
		"remetente_id": requester.ID,
		"nome":         name,
	}
	body := "Você recebeu uma solicitação de amizade."
	if name != "" {
		body = name + " quer ser seu amigo no Sementes."
	}
	alert := notifications.Message{
		Data:         payload,
		Notification: &notifications.Notification{Title: "Nova solicitação de amizade", Body: body},
	}
	dataOnly := notifications.Message{Data: payload}

	for _, t := range tokens {
		msg := dataOnly
		if t.Platform == "ios" || t.Platform == "web" {
			msg = alert
		}
		if err := s.Sender.Send(ctx, t.Token, msg); err != nil {
			if errors.Is(err, notifications.ErrInvalidToken) {
				if delErr := s.Tokens.DeleteToken(ctx, t.Token); delErr != nil {
					logger.Error("notifications: delete invalid token failed", "err", delErr, "user_id", n.AddresseeID)
				}
				continue
			}
			logger.Error("notifications: send failed", "err", err, "user_id", n.AddresseeID)
		}
	}
	return nil
}
