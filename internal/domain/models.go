package domain

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type User struct {
	ID         string
	Email      string
	Nome       string
	Nivel      string
	Sementes   int
	Status     UserStatus
	CreatedAt  time.Time
	LastSeenAt *time.Time
}
