package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	return New(u, srv.Client(), time.Second)
}

func TestListFriends(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/amigos", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("usuarioId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"amigos":[{"id":"u9","nome":"Bia","email":"bia@x.com","nivel":"Ouro","sementes":40,"status":"online","ultimaAtividade":"2024-06-01T12:00:00Z","mutual":true}]}`)
	})

	friends, err := c.ListFriends(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "u9", friends[0].ID)
	assert.Equal(t, "Bia", friends[0].Nome)
	assert.Equal(t, 40, friends[0].Sementes)
	assert.True(t, friends[0].Mutual)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), friends[0].UltimaAtividade.UTC())
}

func TestListPendingAndSuggested(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/amigos/solicitacoes":
			_, _ = io.WriteString(w, `{"solicitacoes":[{"id":"r1","remetenteId":"u9","remetenteNome":"Bia","remetenteEmail":"bia@x.com","dataEnvio":"2024-06-01T12:00:00Z","mensagem":"oi"}]}`)
		case "/api/amigos/sugeridos":
			_, _ = io.WriteString(w, `{"usuarios":[{"id":"u3","nome":"Caio","email":"caio@x.com","nivel":"Prata","sementes":10}]}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	pending, err := c.ListPendingRequests(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r1", pending[0].ID)
	assert.Equal(t, "u9", pending[0].RemetenteID)
	assert.Equal(t, "oi", pending[0].Mensagem)

	suggested, err := c.ListSuggested(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, suggested, 1)
	assert.Equal(t, "Prata", suggested[0].Nivel)
}

func TestSearchUsersEncodesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/usuarios", r.URL.Path)
		assert.Equal(t, "ana maria&x", r.URL.Query().Get("query"))
		_, _ = io.WriteString(w, `{"usuarios":[]}`)
	})

	users, err := c.SearchUsers(context.Background(), "ana maria&x")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSendRequestBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/amigos", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"usuarioId":"u1","amigoId":"u9"}`, string(raw))
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.SendRequest(context.Background(), "u1", "u9"))
}

func TestMutationPaths(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.EscapedPath()+"?"+r.URL.RawQuery)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, c.AcceptRequest(ctx, "r1"))
	require.NoError(t, c.RejectRequest(ctx, "r/2"))
	require.NoError(t, c.RemoveFriend(ctx, "u1", "u9"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"POST /api/amigos/solicitacoes/r1/aceitar?",
		"POST /api/amigos/solicitacoes/r%2F2/rejeitar?",
		"DELETE /api/amigos/u9?usuarioId=u1",
	}, seen)
}

func TestPresence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/usuarios-online", r.URL.Path)
		if r.Method == http.MethodPost {
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"userId":"u1"}`, string(raw))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"online":["u1","u9"]}`)
	})

	require.NoError(t, c.AnnounceOnline(context.Background(), "u1"))
	online, err := c.OnlineUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u9"}, online)
}

func TestStatusErrorDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":{"code":"friendship_exists","message":"friend request already exists"}}`)
	})

	err := c.SendRequest(context.Background(), "u1", "u9")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.Status)
	assert.Equal(t, "friendship_exists", se.Code)
}

func TestStatusErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.OnlineUsers(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Empty(t, se.Code)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)
	c := New(u, srv.Client(), 50*time.Millisecond)

	_, err := c.OnlineUsers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
