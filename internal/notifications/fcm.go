// Package notifications delivers push messages through Firebase Cloud
// Messaging's HTTP v1 API.
package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	fcmScope    = "https://www.googleapis.com/auth/firebase.messaging"
	fcmEndpoint = "https://fcm.googleapis.com"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidToken means the device token is no longer registered and should
// be forgotten.
var ErrInvalidToken = errors.New("fcm_invalid_token")

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Message is a push payload. A nil Notification sends a data-only message.
type Message struct {
	Data         map[string]string
	Notification *Notification
}

type FCMSender struct {
	projectID   string
	endpoint    string
	tokenSource oauth2.TokenSource
	client      *http.Client
}

func NewFCMSender(ctx context.Context, projectID, credentialsPath string) (*FCMSender, error) {
	if strings.TrimSpace(credentialsPath) == "" {
		return nil, fmt.Errorf("fcm credentials path required")
	}
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("load fcm credentials: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("fcm project id required")
	}
	return &FCMSender{
		projectID:   projectID,
		endpoint:    fcmEndpoint,
		tokenSource: creds.TokenSource,
		client:      http.DefaultClient,
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, token string, msg Message) error {
	if s == nil {
		return fmt.Errorf("fcm sender not configured")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("fcm token required")
	}

	body, err := json.Marshal(buildRequest(token, msg))
	if err != nil {
		return fmt.Errorf("marshal fcm payload: %w", err)
	}
	accessToken, err := s.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("fcm access token: %w", err)
	}

	endpoint := s.endpoint
	if endpoint == "" {
		endpoint = fcmEndpoint
	}
	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", endpoint, s.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send fcm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	rawBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	return fcmErrorFromResponse(resp.StatusCode, rawBody)
}

func buildRequest(token string, msg Message) fcmRequest {
	m := fcmMessage{
		Token:   token,
		Data:    msg.Data,
		Android: &fcmAndroidConfig{Priority: "HIGH"},
	}
	// iOS only shows an alert when both the notification block and the
	// alert push type are present.
	if msg.Notification != nil {
		m.Notification = msg.Notification
		m.APNS = &fcmAPNSConfig{Headers: map[string]string{
			"apns-push-type": "alert",
			"apns-priority":  "10",
		}}
	}
	return fcmRequest{Message: m}
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Data         map[string]string `json:"data,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
	Android      *fcmAndroidConfig `json:"android,omitempty"`
	APNS         *fcmAPNSConfig    `json:"apns,omitempty"`
}

type fcmAndroidConfig struct {
	Priority string `json:"priority,omitempty"`
}

type fcmAPNSConfig struct {
	Headers map[string]string `json:"headers,omitempty"`
}

type fcmErrorResponse struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

func fcmErrorFromResponse(status int, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("fcm send failed: status %d", status)
	}
	var resp fcmErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("fcm send failed: status %d: %s", status, string(body))
	}
	for _, detail := range resp.Error.Details {
		if detail.ErrorCode == "UNREGISTERED" {
			return fmt.Errorf("%w: %s", ErrInvalidToken, resp.Error.Message)
		}
	}
	return fmt.Errorf("fcm send failed: status %d: %s", status, resp.Error.Message)
}
