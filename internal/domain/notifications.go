package domain

import "time"

// NotificationToken is a device push token registered for a user.
type NotificationToken struct {
	ID        string    `json:"-"`
	UserID    string    `json:"usuarioId"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
