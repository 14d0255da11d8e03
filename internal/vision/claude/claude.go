package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/vision"
)

// maxTokens leaves room for two plant entries with Persian care notes.
const maxTokens = 1024

// apiErrorStatus maps Anthropic error types to the HTTP status the API
// documents for them, since the client only surfaces the type.
var apiErrorStatus = map[string]int{
	"invalid_request_error": http.StatusBadRequest,
	"authentication_error":  http.StatusUnauthorized,
	"permission_error":      http.StatusForbidden,
	"not_found_error":       http.StatusNotFound,
	"request_too_large":     http.StatusRequestEntityTooLarge,
	"rate_limit_error":      http.StatusTooManyRequests,
	"api_error":             http.StatusInternalServerError,
	"overloaded_error":      529,
}

// ClaudeAnalyzer downloads the uploaded image and sends it inline to the
// Anthropic Messages API.
type ClaudeAnalyzer struct {
	client     *anthropic.Client
	httpClient *http.Client
	model      string
	logger     *slog.Logger
}

func NewClaudeAnalyzer(apiKey, model, baseURL string, httpClient *http.Client, logger *slog.Logger) *ClaudeAnalyzer {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(httpClient)}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeAnalyzer{
		client:     anthropic.NewClient(apiKey, opts...),
		httpClient: httpClient,
		model:      model,
		logger:     logger,
	}
}

func (a *ClaudeAnalyzer) Analyze(ctx context.Context, locator string, c domain.Context) (string, error) {
	img, err := vision.FetchImage(ctx, a.httpClient, locator)
	if err != nil {
		return "", err
	}

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					img.MIMEType,
					base64.StdEncoding.EncodeToString(img.Data),
				)),
				anthropic.NewTextMessageContent(vision.BuildPrompt(c)),
			},
		}},
	})
	if err != nil {
		return "", a.classify(err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		a.logger.Error("claude reply has no text content", "stop_reason", resp.StopReason)
		return "", vision.Malformed(nil, errors.New("claude reply has no text content"))
	}
	return text, nil
}

func (a *ClaudeAnalyzer) classify(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		status := apiErrorStatus[string(apiErr.Type)]
		a.logger.Error("claude rejected request", "type", apiErr.Type, "status", status, "message", apiErr.Message)
		return &vision.ClientError{
			Kind:   vision.KindRejected,
			Status: status,
			Body:   fmt.Sprintf("%s: %s", apiErr.Type, apiErr.Message),
			Err:    err,
		}
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		a.logger.Error("claude rejected request", "status", reqErr.StatusCode, "error", reqErr.Err)
		return &vision.ClientError{Kind: vision.KindRejected, Status: reqErr.StatusCode, Body: reqErr.Error(), Err: err}
	}
	a.logger.Error("claude request failed", "error", err)
	return vision.Transport(fmt.Errorf("failed to call claude: %w", err))
}
