package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/vision"
)

const defaultModel = "gemini-2.5-flash"

// Analyzer sends the uploaded image inline to the Gemini API and asks for a
// JSON response.
type Analyzer struct {
	client     *genai.Client
	httpClient *http.Client
	model      string
	logger     *slog.Logger
}

// NewAnalyzer builds a Gemini API client. baseURL is only set in tests.
func NewAnalyzer(ctx context.Context, apiKey, model, baseURL string, httpClient *http.Client, logger *slog.Logger) (*Analyzer, error) {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		model = defaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Analyzer{
		client:     client,
		httpClient: httpClient,
		model:      model,
		logger:     logger,
	}, nil
}

func (a *Analyzer) Analyze(ctx context.Context, locator string, c domain.Context) (string, error) {
	img, err := vision.FetchImage(ctx, a.httpClient, locator)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: vision.BuildPrompt(c)},
				{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.4)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", a.classify(err)
	}

	text := resp.Text()
	if text == "" {
		a.logger.Error("gemini reply has no text content", "candidates", len(resp.Candidates))
		return "", vision.Malformed(nil, errors.New("gemini reply has no text content"))
	}
	return text, nil
}

func (a *Analyzer) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		a.logger.Error("gemini rejected request", "status", apiErr.Code, "message", apiErr.Message)
		return &vision.ClientError{Kind: vision.KindRejected, Status: apiErr.Code, Body: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		a.logger.Error("gemini rejected request", "status", apiErrPtr.Code, "message", apiErrPtr.Message)
		return &vision.ClientError{Kind: vision.KindRejected, Status: apiErrPtr.Code, Body: apiErrPtr.Message, Err: err}
	}
	a.logger.Error("gemini request failed", "error", err)
	return vision.Transport(fmt.Errorf("failed to call gemini: %w", err))
}
