package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoStorage_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewPhotoStorage(root, 1)
	require.NoError(t, err)

	data := []byte("fake-image-bytes")
	rel, size, err := s.SaveProfilePhoto(context.Background(), "11111111-2222-3333-4444-555555555555", "png", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	assert.True(t, strings.HasPrefix(rel, "profiles/11111111-2222-3333-4444-555555555555/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	require.NoError(t, s.Delete(context.Background(), rel))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(context.Background(), rel))
}

func TestPhotoStorage_SizeLimit(t *testing.T) {
	root := t.TempDir()
	s, err := NewPhotoStorage(root, 1)
	require.NoError(t, err)

	big := bytes.Repeat([]byte{0x1}, 1024*1024+1)
	_, _, err = s.SaveProfilePhoto(context.Background(), "user", "jpg", bytes.NewReader(big))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, profileDir, "user"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPhotoStorage_SanitizesInput(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "uploads")
	s, err := NewPhotoStorage(root, 1)
	require.NoError(t, err)

	rel, _, err := s.SaveProfilePhoto(context.Background(), "../../etc", "../sh", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "profiles/etc/"))
	assert.True(t, strings.HasSuffix(rel, ".sh"))

	outside := filepath.Join(base, "outside")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))
	require.NoError(t, s.Delete(context.Background(), "../outside"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestPhotoStorage_CanceledContext(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = s.SaveProfilePhoto(ctx, "user", "png", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
