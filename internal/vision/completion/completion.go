package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/vision"
)

const DefaultURL = "https://api.metisai.ir/openai/v1/chat/completions"

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content []part `json:"content"`
}

type part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyzer talks to any OpenAI-compatible chat completions endpoint,
// passing the image by URL in a single request.
type Analyzer struct {
	endpoint  string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
	logger    *slog.Logger
}

func NewAnalyzer(endpoint, apiKey, model string, maxTokens int, client *http.Client, logger *slog.Logger) *Analyzer {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Analyzer{
		endpoint:  endpoint,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    client,
		logger:    logger,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, locator string, c domain.Context) (string, error) {
	body := request{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []part{
				{Type: "text", Text: vision.BuildPrompt(c)},
				{Type: "image_url", ImageURL: &imageURL{URL: locator}},
			},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", vision.Transport(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", vision.Transport(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", vision.Transport(fmt.Errorf("failed to call completion endpoint: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Error("failed to close completion response body", "error", err)
		}
	}()

	if !vision.IsSuccess(resp.StatusCode) {
		rejected := vision.Rejected(resp)
		a.logger.Error("completion request rejected", "status", rejected.Status, "body", logging.Snippet([]byte(rejected.Body)))
		return "", rejected
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", vision.Transport(fmt.Errorf("failed to read response: %w", err))
	}

	var respBody response
	if err := json.Unmarshal(raw, &respBody); err != nil {
		return "", vision.Malformed(raw, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(respBody.Choices) == 0 || respBody.Choices[0].Message.Content == nil {
		a.logger.Error("completion response has no content", "body", logging.Snippet(raw))
		return "", vision.Malformed(raw, nil)
	}

	return *respBody.Choices[0].Message.Content, nil
}
