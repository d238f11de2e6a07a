// Package storage keeps uploaded product photos on the local filesystem and
// exposes them under the public /uploads/ prefix.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

const sniffBytes = 3072

// allowedImageTypes are raster formats only. Script-capable types such as
// SVG would run in the site origin when served from /uploads/.
var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// LocalStore implements ports.AssetStore on a directory.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates dir if needed. maxBytes <= 0 disables the size check.
func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir is the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save sniffs the content type, accepts raster images only, and stores the file
// under a random name. The original name is only used for logging context.
func (s *LocalStore) Save(_ context.Context, originalName string, content io.Reader) (string, error) {
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload %q: %w", originalName, err)
	}
	head = head[:n]
	if n == 0 {
		return "", fmt.Errorf("%w: photo is empty", domain.ErrValidation)
	}

	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return "", fmt.Errorf("%w: photo must be a PNG, JPEG, GIF or WebP image, got %s", domain.ErrValidation, mt.String())
	}

	name := uuid.NewString() + mt.Extension()
	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}

	var src io.Reader = io.MultiReader(bytes.NewReader(head), content)
	if s.maxBytes > 0 {
		src = io.LimitReader(src, s.maxBytes+1)
	}
	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("write asset: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("write asset: %w", closeErr)
	case s.maxBytes > 0 && written > s.maxBytes:
		_ = os.Remove(full)
		return "", fmt.Errorf("%w: photo exceeds %d bytes", domain.ErrValidation, s.maxBytes)
	}

	return domain.UploadsPrefix + name, nil
}

// Remove deletes the file behind publicPath. A file that is already gone is not an error.
func (s *LocalStore) Remove(_ context.Context, publicPath string) error {
	if !strings.HasPrefix(publicPath, domain.UploadsPrefix) {
		return fmt.Errorf("refusing to remove %q: outside uploads", publicPath)
	}
	name := filepath.Base(strings.TrimPrefix(publicPath, domain.UploadsPrefix))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return fmt.Errorf("refusing to remove %q: invalid name", publicPath)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}
