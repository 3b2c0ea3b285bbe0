package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFS(root)
	require.NoError(t, err)

	info, err := s.Put(ctx, "shop/orders/order.yaml", strings.NewReader("id:\n  type: int\n"), PutObjectOptions{Size: -1})
	require.NoError(t, err)
	assert.Equal(t, "shop/orders/order.yaml", info.Key)
	assert.Equal(t, int64(16), info.Size)

	_, err = os.Stat(filepath.Join(root, "shop", "orders", "order.yaml"))
	require.NoError(t, err)

	rc, got, err := s.Get(ctx, "shop/orders/order.yaml")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "id:\n  type: int\n", string(body))
	assert.Equal(t, int64(16), got.Size)
}

func TestFSStorage_PutReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(ctx, "a/b/c", strings.NewReader("first"), PutObjectOptions{})
	require.NoError(t, err)
	_, err = s.Put(ctx, "a/b/c", strings.NewReader("second"), PutObjectOptions{})
	require.NoError(t, err)

	rc, _, err := s.Get(ctx, "a/b/c")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "second", string(body))

	// No temp files are left behind.
	objs, err := s.List(ctx, "a/b")
	require.NoError(t, err)
	assert.Len(t, objs, 1)
}

func TestFSStorage_GetMissing(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), "x/y/z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStorage_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(ctx, "x/y/z", strings.NewReader("v"), PutObjectOptions{})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "x/y/z"))
	assert.ErrorIs(t, s.Delete(ctx, "x/y/z"), ErrNotFound)
}

func TestFSStorage_List(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFS(root)
	require.NoError(t, err)

	t.Run("missing directory is empty", func(t *testing.T) {
		objs, err := s.List(ctx, "none/here")
		require.NoError(t, err)
		assert.Empty(t, objs)
	})

	t.Run("sorted, files only", func(t *testing.T) {
		for _, k := range []string{"db/c/b.yaml", "db/c/a.yaml", "db/c/sub/deep.yaml"} {
			_, err := s.Put(ctx, k, strings.NewReader("k: {}"), PutObjectOptions{})
			require.NoError(t, err)
		}
		require.NoError(t, os.WriteFile(filepath.Join(root, "db", "c", ".hidden"), []byte("x"), 0o644))

		objs, err := s.List(ctx, "db/c")
		require.NoError(t, err)
		require.Len(t, objs, 2)
		assert.Equal(t, "db/c/a.yaml", objs[0].Key)
		assert.Equal(t, "db/c/b.yaml", objs[1].Key)
	})
}

func TestFSStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/../../b", "a//b", ""} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{})
		assert.Error(t, err, key)
	}
}

func TestFSStorage_CanceledContext(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Put(ctx, "a/b/c", strings.NewReader("x"), PutObjectOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
