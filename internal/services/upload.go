// Package services holds UI-independent helpers the presentation layer calls.
package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"histoview/internal/logger"

	"fyne.io/fyne/v2"
)

// UploadExtensions are the file types the upload control accepts.
var UploadExtensions = []string{".jpg", ".jpeg", ".png"}

var (
	ErrUnsupportedUpload = errors.New("unsupported upload type")
	ErrUploadTooLarge    = errors.New("upload too large")
	ErrEmptyUpload       = errors.New("upload is empty")
)

// Upload is a file picked by the user, kept as raw bytes. Decoding happens
// later, when a frame is acquired from it.
type Upload struct {
	Name string
	Data []byte
}

type UploadService struct {
	maxBytes int64
	log      logger.Logger
}

func NewUploadService(maxBytes int64, log logger.Logger) *UploadService {
	return &UploadService{maxBytes: maxBytes, log: log}
}

// LoadURI reads a file chosen in a fyne file dialog and closes the reader.
func (s *UploadService) LoadURI(ctx context.Context, reader fyne.URIReadCloser) (*Upload, error) {
	defer reader.Close()
	return s.Load(ctx, reader.URI().Name(), reader)
}

// Load reads r fully. name decides whether the type is accepted; content is
// not inspected.
func (s *UploadService) Load(ctx context.Context, name string, r io.Reader) (*Upload, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !AcceptedUpload(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedUpload, name)
	}

	var src io.Reader = bufio.NewReader(r)
	if s.maxBytes > 0 {
		src = io.LimitReader(src, s.maxBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyUpload, name)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrUploadTooLarge, name, s.maxBytes)
	}

	s.log.Info("UploadService", "upload loaded", map[string]interface{}{
		"name":  name,
		"bytes": len(data),
	})

	return &Upload{Name: name, Data: data}, nil
}

func AcceptedUpload(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range UploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
