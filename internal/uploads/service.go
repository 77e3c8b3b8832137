package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no object is stored under a key.
	ErrNotFound = errors.New("file not found")
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("file too large")
	// ErrInvalidKey is returned for keys that could escape the storage root.
	ErrInvalidKey = errors.New("invalid file key")
)

const (
	mimePDF = "application/pdf"
	mimeXML = "application/xml"

	documentPrefix = "documents"
	templatePrefix = "templates"
)

// UploadService stores CoA documents and template XML through a StorageDriver.
type UploadService struct {
	Driver   StorageDriver
	MaxBytes int64
}

// NewUploadService returns a service writing to driver. maxBytes <= 0 disables the size limit.
func NewUploadService(driver StorageDriver, maxBytes int64) *UploadService {
	return &UploadService{Driver: driver, MaxBytes: maxBytes}
}

// ValidateKey rejects keys that are absolute or climb out of the storage root.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

func (s *UploadService) readLimited(r io.Reader) ([]byte, error) {
	if s.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.MaxBytes)
	}
	return data, nil
}

// UploadPDF checks that r holds a PDF, stores it under a fresh key and returns its metadata
// including the page count.
func (s *UploadService) UploadPDF(ctx context.Context, filename string, r io.Reader) (*FileMetadata, error) {
	data, err := s.readLimited(r)
	if err != nil {
		return nil, err
	}
	pages, err := InspectPDF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%s.pdf", documentPrefix, uuid.New().String())
	meta, err := s.store(ctx, key, filename, data, mimePDF)
	if err != nil {
		return nil, err
	}
	meta.Kind = KindPDF
	meta.PageCount = pages
	return meta, nil
}

// SaveXML checks that content is well-formed XML and stores it under key.
// An empty key allocates a new one.
func (s *UploadService) SaveXML(ctx context.Context, key, filename string, content []byte) (*FileMetadata, error) {
	if s.MaxBytes > 0 && int64(len(content)) > s.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.MaxBytes)
	}
	if err := CheckXML(content); err != nil {
		return nil, err
	}
	if key == "" {
		key = fmt.Sprintf("%s/%s.xml", templatePrefix, uuid.New().String())
	} else if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if filename == "" {
		filename = path.Base(key)
	}
	meta, err := s.store(ctx, key, filename, content, mimeXML)
	if err != nil {
		return nil, err
	}
	meta.Kind = KindXML
	return meta, nil
}

func (s *UploadService) store(ctx context.Context, key, filename string, data []byte, mime string) (*FileMetadata, error) {
	if err := s.Driver.Save(ctx, key, bytes.NewReader(data), mime); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.Driver.GenerateURL(ctx, key, 0)
	if err != nil {
		if delErr := s.Driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned file", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	slog.InfoContext(ctx, "file stored", "key", key, "size", len(data), "mime_type", mime)
	return &FileMetadata{
		Key:      key,
		Name:     filename,
		URL:      url,
		Size:     int64(len(data)),
		MimeType: mime,
	}, nil
}

// Download streams the object stored under key.
func (s *UploadService) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ValidateKey(key); err != nil {
		return nil, "", err
	}
	rc, mime, err := s.Driver.Get(ctx, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, "", err
	}
	return rc, mime, nil
}

// ReadAll returns the whole object stored under key.
func (s *UploadService) ReadAll(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := s.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// URL returns the URL the UI loads key from.
func (s *UploadService) URL(ctx context.Context, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return s.Driver.GenerateURL(ctx, key, 0)
}

// Delete removes the object stored under key.
func (s *UploadService) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.Driver.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
