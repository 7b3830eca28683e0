// Package chat holds the single open conversation between the actor and one
// friend. Messages live in memory only and are discarded on Close.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"SementesSocial/internal/domain"
)

type View struct {
	actor domain.Actor

	// OnChange, if set, is called with the newest message after every append
	// to the open conversation.
	OnChange func(friend domain.Friend, newest domain.Message)

	Now   func() time.Time
	NewID func() string

	mu      sync.Mutex
	current *Conversation
}

func NewView(actor domain.Actor) *View {
	return &View{actor: actor}
}

// Open starts a fresh conversation with friend, replacing whatever was open.
func (v *View) Open(friend domain.Friend) *Conversation {
	c := &Conversation{
		friend: friend,
		actor:  v.actor,
		now:    v.Now,
		newID:  v.NewID,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = func() string { return uuid.NewString() }
	}
	if v.OnChange != nil {
		onChange := v.OnChange
		c.onAppend = func(m domain.Message) { onChange(friend, m) }
	}
	c.seed()

	v.mu.Lock()
	prev := v.current
	v.current = c
	v.mu.Unlock()
	if prev != nil {
		prev.close()
	}
	return c
}

// Current returns the open conversation, or nil.
func (v *View) Current() *Conversation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

func (v *View) Close() {
	v.mu.Lock()
	prev := v.current
	v.current = nil
	v.mu.Unlock()
	if prev != nil {
		prev.close()
	}
}

type Conversation struct {
	friend   domain.Friend
	actor    domain.Actor
	now      func() time.Time
	newID    func() string
	onAppend func(domain.Message)

	mu       sync.Mutex
	messages []domain.Message
	draft    string
	closed   bool
}

func (c *Conversation) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Closed reports whether the conversation was replaced or closed. A closed
// conversation accepts no more messages.
func (c *Conversation) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conversation) seed() {
	now := c.now()
	c.messages = []domain.Message{
		{
			ID:            c.newID(),
			RemetenteID:   c.friend.ID,
			RemetenteNome: c.friend.Nome,
			Conteudo:      "Oi! Tudo bem?",
			Timestamp:     now.Add(-5 * time.Minute),
			Lida:          true,
		},
		{
			ID:            c.newID(),
			RemetenteID:   c.actor.ID,
			RemetenteNome: c.actor.Nome,
			Conteudo:      "Tudo ótimo! E com você?",
			Timestamp:     now.Add(-4 * time.Minute),
			Lida:          true,
		},
	}
}

func (c *Conversation) Friend() domain.Friend { return c.friend }

// Send appends text as an unread message from the actor. Blank text, or a
// closed conversation, is ignored and reported as false.
func (c *Conversation) Send(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || c.Closed() {
		return false
	}
	m := domain.Message{
		ID:            c.newID(),
		RemetenteID:   c.actor.ID,
		RemetenteNome: c.actor.Nome,
		Conteudo:      text,
		Timestamp:     c.now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.messages = append(c.messages, m)
	c.mu.Unlock()

	if c.onAppend != nil {
		c.onAppend(m)
	}
	return true
}

func (c *Conversation) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

func (c *Conversation) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// CanSend reports whether the draft holds anything besides whitespace.
func (c *Conversation) CanSend() bool {
	return !c.Closed() && strings.TrimSpace(c.Draft()) != ""
}

// SendDraft sends the draft and clears it on success.
func (c *Conversation) SendDraft() bool {
	if !c.Send(c.Draft()) {
		return false
	}
	c.SetDraft("")
	return true
}

// Messages returns the thread oldest first.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message{}, c.messages...)
}
