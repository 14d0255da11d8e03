package metis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/vision"
)

const DefaultSessionURL = "https://api.metisai.ir/api/v1/chat/session"

type sessionRequest struct {
	BotID string  `json:"botId"`
	User  *string `json:"user"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

type messageRequest struct {
	Message message `json:"message"`
}

type message struct {
	Type        string       `json:"type"`
	Content     string       `json:"content"`
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type messageResponse struct {
	Content json.RawMessage `json:"content"`
}

// SessionAnalyzer opens a Metis chat session bound to a bot and posts the
// prompt with the image attached by URL. Each call costs two requests.
type SessionAnalyzer struct {
	apiKey   string
	botID    string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewSessionAnalyzer(apiKey, botID, endpoint string, client *http.Client, logger *slog.Logger) *SessionAnalyzer {
	if endpoint == "" {
		endpoint = DefaultSessionURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &SessionAnalyzer{
		apiKey:   apiKey,
		botID:    botID,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   client,
		logger:   logger,
	}
}

func (a *SessionAnalyzer) Analyze(ctx context.Context, locator string, c domain.Context) (string, error) {
	sessionID, err := a.openSession(ctx)
	if err != nil {
		return "", err
	}
	a.logger.Info("metis session opened", "session_id", sessionID)

	body := messageRequest{Message: message{
		Type:    "USER",
		Content: vision.BuildPrompt(c),
		Attachments: []attachment{{
			Content:     locator,
			ContentType: "IMAGE",
		}},
	}}
	raw, err := a.post(ctx, a.endpoint+"/"+url.PathEscape(sessionID)+"/message", body)
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", vision.Malformed(raw, fmt.Errorf("failed to decode message response: %w", err))
	}
	content, ok := replyText(resp.Content)
	if !ok {
		a.logger.Error("metis reply has no content", "body", logging.Snippet(raw))
		return "", vision.Malformed(raw, nil)
	}
	return content, nil
}

func (a *SessionAnalyzer) openSession(ctx context.Context) (string, error) {
	raw, err := a.post(ctx, a.endpoint, sessionRequest{BotID: a.botID})
	if err != nil {
		return "", err
	}
	var resp sessionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", vision.Malformed(raw, fmt.Errorf("failed to decode session response: %w", err))
	}
	if resp.ID == "" {
		a.logger.Error("metis session response has no id", "body", logging.Snippet(raw))
		return "", vision.Malformed(raw, nil)
	}
	return resp.ID, nil
}

func (a *SessionAnalyzer) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, vision.Transport(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, vision.Transport(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, vision.Transport(fmt.Errorf("failed to call metis: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Error("failed to close metis response body", "error", err)
		}
	}()

	if !vision.IsSuccess(resp.StatusCode) {
		rejected := vision.Rejected(resp)
		a.logger.Error("metis rejected request", "url", endpoint, "status", rejected.Status, "body", logging.Snippet([]byte(rejected.Body)))
		return nil, rejected
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, vision.Transport(fmt.Errorf("failed to read response: %w", err))
	}
	return raw, nil
}

// replyText returns the assistant content as text. Bots configured for JSON
// output sometimes return the object itself instead of a string.
func replyText(content json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, s != ""
	}
	return string(trimmed), true
}
