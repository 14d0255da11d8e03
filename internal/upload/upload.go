package upload

import (
	"context"
	"errors"
	"fmt"
)

// Uploader publishes a local image and returns a locator the recommendation
// API can fetch. Implementations never return an empty locator with a nil
// error.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindRejected          Kind = "rejected"
	KindTransport         Kind = "transport"
	KindMalformedResponse Kind = "malformed_response"
)

// Error is returned by every Uploader. Status and Body are set for
// KindRejected so the failure can be diagnosed from logs.
type Error struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindRejected:
		return fmt.Sprintf("upload rejected with status %d: %s", e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("upload %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("upload %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the upload error kind from err, or "" if err is not an
// upload error.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}
