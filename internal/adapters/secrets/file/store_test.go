package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGetDelete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "openai/api_key", "sk-file\n"))

	info, err := os.Stat(filepath.Join(root, "openai", "api_key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	value, err := store.Get(ctx, "openai/api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-file", value)

	require.NoError(t, store.Put(ctx, "openai/api_key", "sk-rotated"))
	value, err = store.Get(ctx, "openai/api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-rotated", value)

	require.NoError(t, store.Delete(ctx, "openai/api_key"))
	require.NoError(t, store.Delete(ctx, "openai/api_key"))

	_, err = store.Get(ctx, "openai/api_key")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	leftovers, err := filepath.Glob(filepath.Join(root, "openai", ".secret-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStoreRejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	for _, key := range []string{"", "  ", "/etc/passwd", "../outside", ".", ".."} {
		err := store.Put(context.Background(), key, "value")
		assert.Error(t, err, "key %q", key)
	}
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore(t.TempDir()).Get(ctx, "openai/api_key")
	require.ErrorIs(t, err, context.Canceled)
}
