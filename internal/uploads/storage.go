package uploads

import (
	"context"
	"io"
	"time"
)

// StorageDriver is the blob store holding CoA PDFs and template XML.
// Get on a missing key returns an error wrapping fs.ErrNotExist.
type StorageDriver interface {
	// Save writes body under key, replacing any previous content.
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get streams the content back with its content type.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GenerateURL returns a URL the UI can load the object from.
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
