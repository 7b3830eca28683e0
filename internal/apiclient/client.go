// Package apiclient talks to the friends/presence REST backend.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"SementesSocial/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

// New builds a client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(baseURL *url.URL, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u := *baseURL
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return &Client{baseURL: &u, http: httpClient, timeout: timeout}
}

type friendsResponse struct {
	Amigos []domain.Friend `json:"amigos"`
}

type pendingResponse struct {
	Solicitacoes []domain.PendingRequest `json:"solicitacoes"`
}

type usersResponse struct {
	Usuarios []domain.SuggestedUser `json:"usuarios"`
}

type onlineResponse struct {
	Online []string `json:"online"`
}

type sendRequestBody struct {
	UsuarioID string `json:"usuarioId"`
	AmigoID   string `json:"amigoId"`
}

type presenceBody struct {
	UserID string `json:"userId"`
}

func (c *Client) ListFriends(ctx context.Context, userID string) ([]domain.Friend, error) {
	var out friendsResponse
	if err := c.do(ctx, http.MethodGet, "/api/amigos", url.Values{"usuarioId": {userID}}, nil, &out); err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out.Amigos, nil
}

func (c *Client) ListPendingRequests(ctx context.Context, userID string) ([]domain.PendingRequest, error) {
	var out pendingResponse
	if err := c.do(ctx, http.MethodGet, "/api/amigos/solicitacoes", url.Values{"usuarioId": {userID}}, nil, &out); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return out.Solicitacoes, nil
}

func (c *Client) ListSuggested(ctx context.Context, userID string) ([]domain.SuggestedUser, error) {
	var out usersResponse
	if err := c.do(ctx, http.MethodGet, "/api/amigos/sugeridos", url.Values{"usuarioId": {userID}}, nil, &out); err != nil {
		return nil, fmt.Errorf("list suggested users: %w", err)
	}
	return out.Usuarios, nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]domain.SuggestedUser, error) {
	var out usersResponse
	if err := c.do(ctx, http.MethodGet, "/api/usuarios", url.Values{"query": {query}}, nil, &out); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return out.Usuarios, nil
}

func (c *Client) SendRequest(ctx context.Context, userID, friendID string) error {
	body := sendRequestBody{UsuarioID: userID, AmigoID: friendID}
	if err := c.do(ctx, http.MethodPost, "/api/amigos", nil, body, nil); err != nil {
		return fmt.Errorf("send friend request: %w", err)
	}
	return nil
}

func (c *Client) AcceptRequest(ctx context.Context, requestID string) error {
	p := "/api/amigos/solicitacoes/" + url.PathEscape(requestID) + "/aceitar"
	if err := c.do(ctx, http.MethodPost, p, nil, nil, nil); err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	return nil
}

func (c *Client) RejectRequest(ctx context.Context, requestID string) error {
	p := "/api/amigos/solicitacoes/" + url.PathEscape(requestID) + "/rejeitar"
	if err := c.do(ctx, http.MethodPost, p, nil, nil, nil); err != nil {
		return fmt.Errorf("reject friend request: %w", err)
	}
	return nil
}

func (c *Client) RemoveFriend(ctx context.Context, userID, friendID string) error {
	p := "/api/amigos/" + url.PathEscape(friendID)
	if err := c.do(ctx, http.MethodDelete, p, url.Values{"usuarioId": {userID}}, nil, nil); err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	return nil
}

func (c *Client) AnnounceOnline(ctx context.Context, userID string) error {
	if err := c.do(ctx, http.MethodPost, "/api/chat/usuarios-online", nil, presenceBody{UserID: userID}, nil); err != nil {
		return fmt.Errorf("announce presence: %w", err)
	}
	return nil
}

func (c *Client) OnlineUsers(ctx context.Context) ([]string, error) {
	var out onlineResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/usuarios-online", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("query presence: %w", err)
	}
	return out.Online, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// path segments are escaped by the callers
	target := c.baseURL.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return statusErrorFromResponse(resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusErrorFromResponse(status int, body []byte) error {
	se := &StatusError{Status: status}
	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
	}
	return se
}
