package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newUploadService(t *testing.T, maxBytes int64) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	local, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)
	return NewUploadService(local, maxBytes, zerolog.Nop()), dir
}

func TestUploadStoresImageUnderRandomName(t *testing.T) {
	svc, dir := newUploadService(t, 10<<20)
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 100)...)

	file, err := svc.Upload(context.Background(), "Team Photo.PNG", "image/png", int64(len(body)), bytes.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, "image/png", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Name, ".png"))
	assert.NotContains(t, file.Name, "Team")
	assert.Equal(t, "/uploads/"+file.Name, file.URL)
	assert.Equal(t, "Team Photo.PNG", file.Original)
	assert.Equal(t, int64(len(body)), file.Size)

	stored, err := os.ReadFile(filepath.Join(dir, file.Name))
	require.NoError(t, err)
	assert.Equal(t, body, stored)

	again, err := svc.Upload(context.Background(), "Team Photo.PNG", "image/png", int64(len(body)), bytes.NewReader(body))
	require.NoError(t, err)
	assert.NotEqual(t, file.Name, again.Name)
}

func TestUploadRejectsNonMedia(t *testing.T) {
	svc, _ := newUploadService(t, 10<<20)
	body := []byte("%PDF-1.7 not an image")

	_, err := svc.Upload(context.Background(), "report.pdf", "application/pdf", int64(len(body)), bytes.NewReader(body))
	assert.True(t, apperr.Is(err, apperr.KindUnsupportedMedia))

	_, err = svc.Upload(context.Background(), "fake.png", "image/png", 11, strings.NewReader("hello world"))
	assert.True(t, apperr.Is(err, apperr.KindUnsupportedMedia), "declared type does not override sniffed text")
}

func TestUploadTrustsDeclaredVideoWhenSniffingIsInconclusive(t *testing.T) {
	svc, _ := newUploadService(t, 10<<20)
	body := bytes.Repeat([]byte{0x00, 0x01, 0x02, 0xFE}, 64)

	file, err := svc.Upload(context.Background(), "clip.mov", "video/quicktime", int64(len(body)), bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "video/quicktime", file.ContentType)
}

func TestUploadEnforcesSizeLimit(t *testing.T) {
	svc, dir := newUploadService(t, 64)
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 100)...)

	_, err := svc.Upload(context.Background(), "big.png", "image/png", int64(len(body)), bytes.NewReader(body))
	assert.True(t, apperr.Is(err, apperr.KindPayloadTooLarge))

	// size header lies; the stream is still capped
	_, err = svc.Upload(context.Background(), "big.png", "image/png", 10, bytes.NewReader(body))
	assert.True(t, apperr.Is(err, apperr.KindPayloadTooLarge))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "oversized uploads are removed")

	_, err = svc.Upload(context.Background(), "empty.png", "image/png", 0, bytes.NewReader(nil))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRemoveMapsStorageErrors(t *testing.T) {
	svc, dir := newUploadService(t, 10<<20)
	ctx := context.Background()
	body := append(append([]byte{}, pngHeader...), 1, 2, 3)

	file, err := svc.Upload(ctx, "a.png", "image/png", int64(len(body)), bytes.NewReader(body))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, file.Name))
	_, err = os.Stat(filepath.Join(dir, file.Name))
	assert.True(t, os.IsNotExist(err))

	err = svc.Remove(ctx, file.Name)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	err = svc.Remove(ctx, ".env")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	svc.Discard(ctx, file.Name)
}
