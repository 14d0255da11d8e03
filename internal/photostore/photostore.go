package photostore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("photo not found")

// PhotoStore stages inbound photos on local disk for the length of one
// recommendation run. Path gives the file location the uploader reads.
type PhotoStore interface {
	Save(ctx context.Context, owner, mimeType string, r io.Reader) (storageKey string, err error)
	Path(storageKey string) (string, error)
	Delete(ctx context.Context, storageKey string) error
}
