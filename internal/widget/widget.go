// Package widget wires the session, the relationship store, the presence
// tracker and the conversation view into one mountable unit with a single
// lifetime.
package widget

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"SementesSocial/internal/chat"
	"SementesSocial/internal/domain"
	"SementesSocial/internal/friends"
	"SementesSocial/internal/presence"
	"SementesSocial/internal/session"
)

var ErrNotMounted = errors.New("widget_not_mounted")

type API interface {
	friends.API
	presence.API
}

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(level Level, message string)
}

type NotifyFunc func(level Level, message string)

func (f NotifyFunc) Notify(level Level, message string) { f(level, message) }

type Opts struct {
	Session   *session.Provider
	API       API
	Notifier  Notifier
	Confirmer friends.Confirmer
	Logger    *slog.Logger

	PresenceInterval time.Duration
	SearchDelay      time.Duration

	// OnPresence and OnMessage are forwarded to the tracker and the
	// conversation view.
	OnPresence func(online []string)
	OnMessage  func(friend domain.Friend, newest domain.Message)
}

type FriendRow struct {
	domain.Friend
	Online bool `json:"online"`
}

type UserRow struct {
	domain.SuggestedUser
	Online bool `json:"online"`
}

type Widget struct {
	opts   Opts
	logger *slog.Logger

	mu        sync.Mutex
	life      context.Context
	cancel    context.CancelFunc
	store     *friends.Store
	tracker   *presence.Tracker
	chat      *chat.View
	debouncer *friends.Debouncer
}

func New(opts Opts) *Widget {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Widget{opts: opts, logger: logger}
}

// Mount resolves the actor, starts presence polling and performs the initial
// load. Without a session it returns domain.ErrUnauthenticated and the caller
// is expected to send the user to login.
func (w *Widget) Mount(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return nil
	}
	if w.opts.Session == nil {
		w.mu.Unlock()
		return domain.ErrUnauthenticated
	}
	actor, ok := w.opts.Session.Actor()
	if !ok {
		w.mu.Unlock()
		return domain.ErrUnauthenticated
	}

	life, cancel := context.WithCancel(ctx)
	w.life = life
	w.cancel = cancel
	w.store = friends.NewStore(w.opts.API, actor, w.logger)
	w.tracker = presence.NewTracker(w.opts.API, actor, w.opts.PresenceInterval, w.logger)
	w.tracker.OnChange = w.opts.OnPresence
	w.chat = chat.NewView(actor)
	w.chat.OnChange = w.opts.OnMessage
	w.debouncer = friends.NewDebouncer(w.opts.SearchDelay)
	store, tracker := w.store, w.tracker
	w.mu.Unlock()

	w.logger.Info("widget: mounted", "user_id", actor.ID)
	tracker.Start(life)
	store.LoadAll(life)
	return nil
}

// Unmount aborts in-flight requests, stops polling and drops the open
// conversation. It is a no-op when not mounted.
func (w *Widget) Unmount() {
	w.mu.Lock()
	cancel, tracker, debouncer, view := w.cancel, w.tracker, w.debouncer, w.chat
	w.cancel = nil
	w.life = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	debouncer.Stop()
	tracker.Stop()
	view.Close()
	w.logger.Info("widget: unmounted")
}

type parts struct {
	life    context.Context
	store   *friends.Store
	tracker *presence.Tracker
	chat    *chat.View
}

func (w *Widget) parts() (parts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return parts{}, ErrNotMounted
	}
	return parts{life: w.life, store: w.store, tracker: w.tracker, chat: w.chat}, nil
}

// scope returns a context canceled by either ctx or unmount.
func scope(ctx, life context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (w *Widget) Actor() (domain.Actor, error) {
	p, err := w.parts()
	if err != nil {
		return domain.Actor{}, err
	}
	return p.store.Actor(), nil
}

func (w *Widget) Reload(ctx context.Context) (domain.Relationships, error) {
	p, err := w.parts()
	if err != nil {
		return domain.Relationships{}, err
	}
	ctx, cancel := scope(ctx, p.life)
	defer cancel()
	return p.store.LoadAll(ctx), nil
}

func (w *Widget) SendRequest(ctx context.Context, targetID string) error {
	return w.mutate(ctx, "Não foi possível enviar a solicitação de amizade.", func(ctx context.Context, s *friends.Store) error {
		return s.SendRequest(ctx, targetID)
	})
}

func (w *Widget) AcceptRequest(ctx context.Context, requestID string) error {
	return w.mutate(ctx, "Não foi possível aceitar a solicitação.", func(ctx context.Context, s *friends.Store) error {
		return s.AcceptRequest(ctx, requestID)
	})
}

func (w *Widget) RejectRequest(ctx context.Context, requestID string) error {
	return w.mutate(ctx, "Não foi possível rejeitar a solicitação.", func(ctx context.Context, s *friends.Store) error {
		return s.RejectRequest(ctx, requestID)
	})
}

// RemoveFriend asks the configured Confirmer before deleting. Declining
// returns friends.ErrNotConfirmed without touching the backend.
func (w *Widget) RemoveFriend(ctx context.Context, friendID string) error {
	return w.mutate(ctx, "Não foi possível remover o amigo.", func(ctx context.Context, s *friends.Store) error {
		return s.RemoveFriend(ctx, friendID, w.opts.Confirmer)
	})
}

func (w *Widget) mutate(ctx context.Context, failure string, op func(context.Context, *friends.Store) error) error {
	p, err := w.parts()
	if err != nil {
		return err
	}
	ctx, cancel := scope(ctx, p.life)
	defer cancel()

	err = op(ctx, p.store)
	var me *friends.MutationError
	if errors.As(err, &me) {
		w.notify(LevelError, failure)
	}
	return err
}

func (w *Widget) notify(level Level, message string) {
	if w.opts.Notifier == nil {
		return
	}
	w.opts.Notifier.Notify(level, message)
}

// FriendsView returns the friends list with the live presence flag.
func (w *Widget) FriendsView() []FriendRow {
	p, err := w.parts()
	if err != nil {
		return nil
	}
	list := p.store.Friends()
	rows := make([]FriendRow, 0, len(list))
	for _, f := range list {
		rows = append(rows, FriendRow{Friend: f, Online: p.tracker.IsOnline(f.ID)})
	}
	return rows
}

func (w *Widget) Pending() []domain.PendingRequest {
	p, err := w.parts()
	if err != nil {
		return nil
	}
	return p.store.Pending()
}

func (w *Widget) Suggested() []UserRow {
	p, err := w.parts()
	if err != nil {
		return nil
	}
	return annotate(p.tracker, p.store.Suggested())
}

// SearchView returns the latest search results with the live presence flag.
func (w *Widget) SearchView() []UserRow {
	p, err := w.parts()
	if err != nil {
		return nil
	}
	return annotate(p.tracker, p.store.SearchResults())
}

func annotate(tr *presence.Tracker, users []domain.SuggestedUser) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{SuggestedUser: u, Online: tr.IsOnline(u.ID)})
	}
	return rows
}

func (w *Widget) Search(ctx context.Context, query string) ([]UserRow, error) {
	p, err := w.parts()
	if err != nil {
		return nil, err
	}
	ctx, cancel := scope(ctx, p.life)
	defer cancel()
	return annotate(p.tracker, p.store.Search(ctx, query)), nil
}

// QueueSearch runs the search once typing settles. Only the last query
// queued within the delay is executed; done receives its results.
func (w *Widget) QueueSearch(query string, done func([]UserRow)) error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrNotMounted
	}
	life, debouncer := w.life, w.debouncer
	w.mu.Unlock()

	debouncer.Do(func() {
		rows, err := w.Search(life, query)
		if err != nil || life.Err() != nil {
			return
		}
		if done != nil {
			done(rows)
		}
	})
	return nil
}

func (w *Widget) IsOnline(userID string) bool {
	p, err := w.parts()
	if err != nil {
		return false
	}
	return p.tracker.IsOnline(userID)
}

// OpenConversation opens a chat with a confirmed friend, replacing any
// conversation already open.
func (w *Widget) OpenConversation(friendID string) (*chat.Conversation, error) {
	p, err := w.parts()
	if err != nil {
		return nil, err
	}
	for _, f := range p.store.Friends() {
		if f.ID == friendID {
			return p.chat.Open(f), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Conversation returns the open conversation, or nil.
func (w *Widget) Conversation() *chat.Conversation {
	p, err := w.parts()
	if err != nil {
		return nil
	}
	return p.chat.Current()
}

func (w *Widget) CloseConversation() {
	p, err := w.parts()
	if err != nil {
		return
	}
	p.chat.Close()
}
