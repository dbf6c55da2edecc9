package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	path, err := s.Save(ctx, "Photo.PNG", []byte("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	data, err := os.ReadFile(filepath.Join(s.Dir(), path))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, s.Delete(ctx, path))
	assert.ErrorIs(t, s.Delete(ctx, path), ErrNotExist)

	t.Run("path traversal stays inside dir", func(t *testing.T) {
		outside := filepath.Join(dir, "keep.txt")
		require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

		assert.ErrorIs(t, s.Delete(ctx, "/../keep.txt"), ErrNotExist)
		_, err := os.Stat(outside)
		assert.NoError(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	path, err := s.Save(ctx, "a.jpg", []byte("x"))
	require.NoError(t, err)
	assert.True(t, s.Has(path))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, path))
	assert.False(t, s.Has(path))
	assert.ErrorIs(t, s.Delete(ctx, path), ErrNotExist)
}

func TestDeleteQuietly(t *testing.T) {
	ctx := context.Background()
	log, hook := test.NewNullLogger()
	s := NewMemoryStore()

	kept, err := s.Save(ctx, "a.jpg", nil)
	require.NoError(t, err)
	missing := "/missing.jpg"
	empty := ""

	DeleteQuietly(ctx, s, log, &kept, nil, &empty, &missing)

	assert.False(t, s.Has(kept))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, missing, hook.LastEntry().Data["path"])

	hook.Reset()
	s.FailDeletes = errors.New("disk on fire")
	other := "/other.jpg"
	DeleteQuietly(ctx, s, log, &other)
	assert.Len(t, hook.Entries, 1)
}
