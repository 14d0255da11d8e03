package metis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/upload"
)

const DefaultStorageURL = "https://api.metisai.ir/api/v1/storage"

// maxErrorBody caps how much of a rejected response is kept for diagnostics.
const maxErrorBody = 4096

type storageResponse struct {
	Files []struct {
		URL string `json:"url"`
	} `json:"files"`
}

// Uploader sends files to Metis storage with a bearer token.
type Uploader struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewUploader(apiKey, endpoint string, client *http.Client, logger *slog.Logger) *Uploader {
	if endpoint == "" {
		endpoint = DefaultStorageURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Uploader{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &upload.Error{Kind: upload.KindNotFound, Err: err}
		}
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer func() {
		if err := f.Close(); err != nil {
			u.logger.Error("failed to close upload source", "path", path, "error", err)
		}
	}()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to create form file: %w", err)}
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to finish form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+u.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	u.logger.Info("uploading file", "path", path, "bytes", body.Len())
	resp, err := u.client.Do(req)
	if err != nil {
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to call storage: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			u.logger.Error("failed to close storage response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		u.logger.Error("upload rejected", "status", resp.StatusCode, "body", logging.Snippet(errBody))
		return "", &upload.Error{Kind: upload.KindRejected, Status: resp.StatusCode, Body: string(errBody)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var parsed storageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		u.logger.Error("upload response is not json", "body", logging.Snippet(raw))
		return "", &upload.Error{Kind: upload.KindMalformedResponse, Body: string(raw), Err: err}
	}
	for _, file := range parsed.Files {
		if file.URL != "" {
			u.logger.Info("file uploaded", "path", path, "url", file.URL)
			return file.URL, nil
		}
	}

	u.logger.Error("upload response did not contain a file url", "body", logging.Snippet(raw))
	return "", &upload.Error{Kind: upload.KindMalformedResponse, Body: string(raw)}
}
