package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SementesSocial/internal/domain"
)

var (
	actor  = domain.Actor{ID: "u1", Nome: "Ana"}
	friend = domain.Friend{ID: "u9", Nome: "Bia"}
)

func newTestView() *View {
	v := NewView(actor)
	n := 0
	v.NewID = func() string { n++; return fmt.Sprintf("m%d", n) }
	v.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return v
}

func contents(msgs []domain.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Conteudo)
	}
	return out
}

func TestOpenSeedsConversation(t *testing.T) {
	v := newTestView()
	c := v.Open(friend)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "u9", msgs[0].RemetenteID)
	assert.Equal(t, "u1", msgs[1].RemetenteID)
	assert.True(t, msgs[0].Lida)
	assert.True(t, msgs[1].Lida)
	assert.True(t, msgs[0].Timestamp.Before(msgs[1].Timestamp))
	assert.Same(t, c, v.Current())
}

func TestSendAppendsInOrder(t *testing.T) {
	v := newTestView()
	c := v.Open(friend)

	assert.True(t, c.Send("a"))
	assert.True(t, c.Send("b"))
	assert.False(t, c.Send(""))
	assert.False(t, c.Send("   "))

	msgs := c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"a", "b"}, contents(msgs[2:]))

	last := msgs[3]
	assert.Equal(t, "u1", last.RemetenteID)
	assert.Equal(t, "Ana", last.RemetenteNome)
	assert.False(t, last.Lida)
	assert.Equal(t, "m4", last.ID)
	assert.Equal(t, v.Now(), last.Timestamp)
}

func TestSendTrimsText(t *testing.T) {
	c := newTestView().Open(friend)
	require.True(t, c.Send("  olá  "))
	msgs := c.Messages()
	assert.Equal(t, "olá", msgs[len(msgs)-1].Conteudo)
}

func TestDraftLifecycle(t *testing.T) {
	c := newTestView().Open(friend)

	assert.False(t, c.CanSend())
	assert.False(t, c.SendDraft())

	c.SetDraft(" \t")
	assert.False(t, c.CanSend())
	assert.False(t, c.SendDraft())
	assert.Equal(t, " \t", c.Draft())

	c.SetDraft("bom dia")
	assert.True(t, c.CanSend())
	assert.True(t, c.SendDraft())
	assert.Empty(t, c.Draft())
	assert.Len(t, c.Messages(), 3)
}

func TestOnChangeFiresPerAppend(t *testing.T) {
	v := newTestView()
	var got []string
	v.OnChange = func(f domain.Friend, m domain.Message) {
		assert.Equal(t, "u9", f.ID)
		got = append(got, m.Conteudo)
	}
	c := v.Open(friend)
	c.Send("x")
	c.Send("")
	c.Send("y")
	assert.Equal(t, []string{"x", "y"}, got)
}

func TestOpenReplacesAndCloseDiscards(t *testing.T) {
	v := newTestView()
	first := v.Open(friend)
	first.Send("hello")

	second := v.Open(domain.Friend{ID: "u5", Nome: "Caio"})
	assert.Same(t, second, v.Current())
	assert.Len(t, second.Messages(), 2)
	assert.Equal(t, "u5", second.Friend().ID)

	v.Close()
	assert.Nil(t, v.Current())

	reopened := v.Open(friend)
	assert.Len(t, reopened.Messages(), 2)
}

func TestReplacedConversationRejectsSends(t *testing.T) {
	v := newTestView()
	var got []string
	v.OnChange = func(f domain.Friend, m domain.Message) {
		got = append(got, f.ID+":"+m.Conteudo)
	}

	first := v.Open(friend)
	second := v.Open(domain.Friend{ID: "u5", Nome: "Caio"})
	assert.True(t, first.Closed())
	assert.False(t, second.Closed())

	first.SetDraft("late")
	assert.False(t, first.CanSend())
	assert.False(t, first.SendDraft())
	assert.False(t, first.Send("late"))
	assert.Len(t, first.Messages(), 2)

	assert.True(t, second.Send("oi"))
	v.Close()
	assert.True(t, second.Closed())
	assert.False(t, second.Send("after close"))

	assert.Equal(t, []string{"u5:oi"}, got)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	c := NewView(actor).Open(friend)
	c.Send("a")
	seen := map[string]bool{}
	for _, m := range c.Messages() {
		assert.NotEmpty(t, m.ID)
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}
