package drivers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultContentType = "application/octet-stream"

// LocalFSDriver keeps blobs on local disk under two levels of hashed directories.
// The content type of each blob is kept in a ".meta" sidecar file.
type LocalFSDriver struct {
	BaseDir   string
	PublicURL string
}

// NewLocalFSDriver creates baseDir if needed. publicURL prefixes generated links (e.g. /api/files).
func NewLocalFSDriver(baseDir, publicURL string) (*LocalFSDriver, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalFSDriver{BaseDir: baseDir, PublicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

// pathFor spreads keys over directories named after the first four characters of the file name.
func (d *LocalFSDriver) pathFor(key string) string {
	dir, name := filepath.Split(filepath.FromSlash(key))
	if len(name) < 4 {
		return filepath.Join(d.BaseDir, dir, name)
	}
	return filepath.Join(d.BaseDir, dir, name[0:2], name[2:4], name)
}

func (d *LocalFSDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath := d.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create hashed directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	if err := os.WriteFile(fullPath+".meta", []byte(contentType), 0o644); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

func (d *LocalFSDriver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	fullPath := d.pathFor(key)
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", key, err)
	}

	contentType := defaultContentType
	if meta, err := os.ReadFile(fullPath + ".meta"); err == nil && len(meta) > 0 {
		contentType = string(meta)
	}
	return f, contentType, nil
}

func (d *LocalFSDriver) Delete(ctx context.Context, key string) error {
	fullPath := d.pathFor(key)
	_ = os.Remove(fullPath + ".meta")
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// GenerateURL returns a link served by the files endpoint. Local links do not expire.
func (d *LocalFSDriver) GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if d.PublicURL == "" {
		return escaped, nil
	}
	return d.PublicURL + "/" + escaped, nil
}
