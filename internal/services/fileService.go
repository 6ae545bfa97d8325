package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/models"
	"github.com/arzan03/ConsultCMS/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sniffLen = 512

// UploadService accepts image and video uploads and hands them to a storage backend.
type UploadService struct {
	storage  storage.Storage
	maxBytes int64
	log      zerolog.Logger
}

func NewUploadService(st storage.Storage, maxBytes int64, log zerolog.Logger) *UploadService {
	return &UploadService{storage: st, maxBytes: maxBytes, log: log.With().Str("component", "upload").Logger()}
}

// MaxBytes is the largest accepted upload.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// UploadFile stores a multipart file part under a random name.
func (s *UploadService) UploadFile(ctx context.Context, fh *multipart.FileHeader) (models.File, error) {
	f, err := fh.Open()
	if err != nil {
		return models.File{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return s.Upload(ctx, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
}

// Upload validates size and media type and stores r as <uuid><ext>.
func (s *UploadService) Upload(ctx context.Context, filename, declared string, size int64, r io.Reader) (models.File, error) {
	if size > s.maxBytes {
		return models.File{}, apperr.PayloadTooLarge(fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return models.File{}, fmt.Errorf("failed to read file: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return models.File{}, apperr.Validation("file is empty")
	}

	contentType, ok := mediaType(declared, head)
	if !ok {
		return models.File{}, apperr.UnsupportedMedia("Only image and video files are allowed")
	}

	// Guards against a part whose header under-reports its size.
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), r), s.maxBytes+1)
	counter := &countingReader{r: body}

	name := uuid.NewString() + extension(filename, contentType)
	url, err := s.storage.Put(ctx, name, counter, size, contentType)
	if err != nil {
		return models.File{}, err
	}
	if counter.n > s.maxBytes {
		s.Discard(ctx, name)
		return models.File{}, apperr.PayloadTooLarge(fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}

	s.log.Info().Str("name", name).Str("contentType", contentType).Int64("size", counter.n).Msg("file uploaded")
	return models.File{
		URL:         url,
		Name:        name,
		Original:    filename,
		Size:        counter.n,
		ContentType: contentType,
	}, nil
}

// Discard removes a stored upload, logging rather than returning failures.
func (s *UploadService) Discard(ctx context.Context, name string) {
	if err := s.storage.Remove(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn().Err(err).Str("name", name).Msg("failed to remove upload")
	}
}

// Remove deletes a stored upload by name.
func (s *UploadService) Remove(ctx context.Context, name string) error {
	err := s.storage.Remove(ctx, name)
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		return apperr.Validation("invalid file name")
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("File", name)
	case err != nil:
		return fmt.Errorf("remove %s: %w", name, err)
	}
	s.log.Info().Str("name", name).Msg("file removed")
	return nil
}

// mediaType prefers the sniffed type and only trusts the declared one when sniffing is inconclusive.
func mediaType(declared string, head []byte) (string, bool) {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	if isMedia(sniffed) {
		return sniffed, true
	}
	declared, _, _ = mime.ParseMediaType(declared)
	if sniffed == "application/octet-stream" && isMedia(declared) {
		return declared, true
	}
	return "", false
}

func isMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && len(ext) <= 10 {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
