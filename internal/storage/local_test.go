package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_UploadReadRemove(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Upload(ctx, "requests/2026/09/01/photo.jpg", []byte("jpeg-bytes"), "image/jpeg"))

	data, err := l.Read(ctx, "requests/2026/09/01/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	assert.Equal(t, "/uploads/requests/2026/09/01/photo.jpg", l.PublicURL("requests/2026/09/01/photo.jpg"))

	require.NoError(t, l.Remove(ctx, []string{"requests/2026/09/01/photo.jpg"}))
	_, err = l.Read(ctx, "requests/2026/09/01/photo.jpg")
	assert.Error(t, err)
}

func TestLocal_RemoveMissingIsNotAnError(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	assert.NoError(t, l.Remove(context.Background(), []string{"never/existed.jpg"}))
}

func TestLocal_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)

	secret := filepath.Join(dir, "..", "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("x"), 0644))
	t.Cleanup(func() { os.Remove(secret) })

	_, err = l.Read(context.Background(), "../secret.txt")
	assert.Error(t, err)
}
