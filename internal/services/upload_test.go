package services

import (
	"context"
	"strings"
	"testing"

	"histoview/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptedUpload(t *testing.T) {
	assert.True(t, AcceptedUpload("photo.jpg"))
	assert.True(t, AcceptedUpload("PHOTO.JPEG"))
	assert.True(t, AcceptedUpload("dir/scan.png"))
	assert.False(t, AcceptedUpload("anim.gif"))
	assert.False(t, AcceptedUpload("noext"))
}

func TestLoad(t *testing.T) {
	svc := NewUploadService(16, logger.Nop())

	up, err := svc.Load(context.Background(), "a.png", strings.NewReader("not decoded yet"))
	require.NoError(t, err)
	assert.Equal(t, "a.png", up.Name)
	assert.Equal(t, []byte("not decoded yet"), up.Data)
}

func TestLoadRejections(t *testing.T) {
	svc := NewUploadService(4, logger.Nop())
	ctx := context.Background()

	_, err := svc.Load(ctx, "a.bmp", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrUnsupportedUpload)

	_, err = svc.Load(ctx, "a.jpg", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyUpload)

	_, err = svc.Load(ctx, "a.jpg", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrUploadTooLarge)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Load(cancelled, "a.jpg", strings.NewReader("1"))
	assert.ErrorIs(t, err, context.Canceled)
}
