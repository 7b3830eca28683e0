package domain

import "time"

// Actor is the signed-in user driving the widget.
type Actor struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Sementes int    `json:"sementes"`
}

type FriendStatus string

const (
	FriendStatusOnline  FriendStatus = "online"
	FriendStatusOffline FriendStatus = "offline"
	FriendStatusAway    FriendStatus = "away"
)

// Friend is a confirmed relationship seen from the actor's side. ID is the
// counterpart's user id; there is no separate edge id.
type Friend struct {
	ID              string       `json:"id"`
	Nome            string       `json:"nome"`
	Email           string       `json:"email"`
	Nivel           string       `json:"nivel"`
	Sementes        int          `json:"sementes"`
	Status          FriendStatus `json:"status"`
	UltimaAtividade time.Time    `json:"ultimaAtividade"`
	Mutual          bool         `json:"mutual"`
}

// PendingRequest is an inbound, unconfirmed friend request. ID is the request
// id, not the sender's user id.
type PendingRequest struct {
	ID             string    `json:"id"`
	RemetenteID    string    `json:"remetenteId"`
	RemetenteNome  string    `json:"remetenteNome"`
	RemetenteEmail string    `json:"remetenteEmail"`
	DataEnvio      time.Time `json:"dataEnvio"`
	Mensagem       string    `json:"mensagem,omitempty"`
}

type SuggestedUser struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Nivel    string `json:"nivel"`
	Sementes int    `json:"sementes"`
}

type Relationships struct {
	Friends   []Friend         `json:"friends"`
	Pending   []PendingRequest `json:"pending"`
	Suggested []SuggestedUser  `json:"suggested"`
}

type Message struct {
	ID            string    `json:"id"`
	RemetenteID   string    `json:"remetenteId"`
	RemetenteNome string    `json:"remetenteNome"`
	Conteudo      string    `json:"conteudo"`
	Timestamp     time.Time `json:"timestamp"`
	Lida          bool      `json:"lida"`
}

// StatusFromLastSeen derives the informational friend status from the last
// recorded activity. It is independent of the polled presence set.
func StatusFromLastSeen(lastSeen, now time.Time) FriendStatus {
	if lastSeen.IsZero() {
		return FriendStatusOffline
	}
	idle := now.Sub(lastSeen)
	switch {
	case idle < 5*time.Minute:
		return FriendStatusOnline
	case idle < 30*time.Minute:
		return FriendStatusAway
	default:
		return FriendStatusOffline
	}
}
