package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krasnovkir/go-sync-cache/models"
)

func TestRowKeys(t *testing.T) {
	assert.Equal(t, "C:users/alice/", serverCacheKey(models.NewPath("users/alice")))
	assert.Equal(t, "C:/", serverCacheKey(models.Path{}))
	assert.Equal(t, "Q:12", trackedQueryKey(12))
	assert.Equal(t, "W:7", userWriteKey(7))
}

func TestPrefixRange(t *testing.T) {
	start, end := prefixRange(trackedQueryPrefix)
	assert.Equal(t, "Q:", start)
	assert.Equal(t, "Q;", end)

	// every well-formed row key of the kind falls inside the range
	key := trackedQueryKey(999)
	assert.True(t, start <= key && key < end)
}

func TestSubtreeRange(t *testing.T) {
	t.Run("covers the node and its descendants", func(t *testing.T) {
		start, end := subtreeRange(models.NewPath("a"))
		assert.Equal(t, "C:a/", start)
		assert.Equal(t, "C:a0", end)

		for _, key := range []string{
			serverCacheKey(models.NewPath("a")),
			serverCacheKey(models.NewPath("a/b")),
			serverCacheKey(models.NewPath("a/b/c")),
		} {
			assert.True(t, start <= key && key < end, "expected %q inside range", key)
		}
	})

	t.Run("excludes siblings sharing a string prefix", func(t *testing.T) {
		start, end := subtreeRange(models.NewPath("a"))

		for _, key := range []string{
			serverCacheKey(models.NewPath("a0")),
			serverCacheKey(models.NewPath("ab")),
			serverCacheKey(models.NewPath("b")),
		} {
			outside := key < start || key >= end
			assert.True(t, outside, "expected sibling %q outside range", key)
		}
	})

	t.Run("root subtree covers the whole cache prefix", func(t *testing.T) {
		start, end := subtreeRange(models.Path{})
		assert.Equal(t, "C:", start)
		assert.Equal(t, "C;", end)

		key := serverCacheKey(models.NewPath("anything/below"))
		assert.True(t, start <= key && key < end)
	})
}

func TestAllKeysRange_CoversEveryKind(t *testing.T) {
	start, end := AllKeysRange()

	for _, key := range []string{
		serverCacheKey(models.NewPath("a")),
		trackedQueryKey(1),
		userWriteKey(42),
	} {
		assert.True(t, start <= key && key < end, "expected %q inside range", key)
	}
}

func TestPathFromCacheKey(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := models.NewPath("users/alice/settings")
		got, err := pathFromCacheKey(serverCacheKey(path))
		require.NoError(t, err)
		assert.True(t, path.Equal(got))
	})

	t.Run("wrong prefix", func(t *testing.T) {
		_, err := pathFromCacheKey("Q:12")
		require.ErrorIs(t, err, ErrDecodingRow)
	})

	t.Run("missing terminator", func(t *testing.T) {
		_, err := pathFromCacheKey("C:users/alice")
		require.ErrorIs(t, err, ErrDecodingRow)
	})
}

func TestIDFromKey(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		id, err := idFromKey(userWriteKey(1234), userWritePrefix)
		require.NoError(t, err)
		assert.Equal(t, int64(1234), id)
	})

	t.Run("wrong prefix", func(t *testing.T) {
		_, err := idFromKey("C:a/", userWritePrefix)
		require.ErrorIs(t, err, ErrDecodingRow)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		_, err := idFromKey("W:abc", userWritePrefix)
		require.ErrorIs(t, err, ErrDecodingRow)
	})
}
