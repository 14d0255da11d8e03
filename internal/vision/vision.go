package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vbonduro/roomplants/internal/domain"
)

// Analyzer sends an uploaded image and the recommendation prompt to a remote
// model and returns the reply text untouched. Callers run it through
// Normalize.
type Analyzer interface {
	Analyze(ctx context.Context, locator string, c domain.Context) (string, error)
}

type Kind string

const (
	KindTransport         Kind = "transport"
	KindRejected          Kind = "rejected"
	KindMalformedResponse Kind = "malformed_response"
)

// maxErrorBody caps how much of a rejected response body is retained.
const maxErrorBody = 4096

type ClientError struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *ClientError) Error() string {
	switch {
	case e.Kind == KindRejected:
		return fmt.Sprintf("analyze rejected with status %d: %s", e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("analyze %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("analyze %s", e.Kind)
	}
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// KindOf extracts the client error kind from err, or "" if err is not a
// ClientError.
func KindOf(err error) Kind {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func Transport(err error) *ClientError {
	return &ClientError{Kind: KindTransport, Err: err}
}

func Malformed(body []byte, err error) *ClientError {
	return &ClientError{Kind: KindMalformedResponse, Body: string(body), Err: err}
}

// Rejected reads a bounded amount of resp.Body into a KindRejected error.
func Rejected(resp *http.Response) *ClientError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &ClientError{Kind: KindRejected, Status: resp.StatusCode, Body: string(body)}
}

func IsSuccess(status int) bool {
	return status >= 200 && status <= 299
}
