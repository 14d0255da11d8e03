package vision

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
)

// maxImageBytes bounds how much of a locator is pulled into memory for the
// inline-image adapters.
const maxImageBytes = 20 << 20

type Image struct {
	Data     []byte
	MIMEType string
}

// FetchImage downloads the uploaded image behind locator for adapters that
// send image bytes inline rather than by reference.
func FetchImage(ctx context.Context, client *http.Client, locator string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, Transport(fmt.Errorf("failed to create image request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, Transport(fmt.Errorf("failed to fetch image: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close image response body", "error", err)
		}
	}()

	if !IsSuccess(resp.StatusCode) {
		return nil, Rejected(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, Transport(fmt.Errorf("failed to read image: %w", err))
	}
	if len(data) == 0 {
		return nil, Malformed(nil, fmt.Errorf("image at %s is empty", locator))
	}

	mimeType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return &Image{Data: data, MIMEType: ImageMIME(mimeType)}, nil
}

// ImageMIME maps a content type to one the vision APIs accept. Anything other
// than png, gif or webp is sent as jpeg.
func ImageMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
