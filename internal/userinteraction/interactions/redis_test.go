package interactions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore starts an in-process miniredis server and returns a Store
// backed by a real go-redis client pointed at it.
func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 100*time.Millisecond)
	return store, context.Background()
}

// Invariant 3: like/isLiked/unlike/isLiked round trip, and repeated like is
// idempotent.
func TestLikeUnlikeRoundTrip(t *testing.T) {
	store, ctx := newTestStore(t)

	added, err := store.Like(ctx, "post-1", "user-1")
	require.NoError(t, err)
	assert.True(t, added)

	liked, err := store.IsLiked(ctx, "post-1", "user-1")
	require.NoError(t, err)
	assert.True(t, liked)

	addedAgain, err := store.Like(ctx, "post-1", "user-1")
	require.NoError(t, err)
	assert.False(t, addedAgain, "repeated like should report not newly added")

	removed, err := store.Unlike(ctx, "post-1", "user-1")
	require.NoError(t, err)
	assert.True(t, removed)

	liked, err = store.IsLiked(ctx, "post-1", "user-1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeCount(t *testing.T) {
	store, ctx := newTestStore(t)

	_, _ = store.Like(ctx, "post-1", "user-1")
	_, _ = store.Like(ctx, "post-1", "user-2")

	count, err := store.LikeCount(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestIsManyLiked(t *testing.T) {
	t.Run("empty input short circuits", func(t *testing.T) {
		store, ctx := newTestStore(t)

		out, err := store.IsManyLiked(ctx, nil, "user-1")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("pipelined across resources", func(t *testing.T) {
		store, ctx := newTestStore(t)

		_, _ = store.Like(ctx, "post-1", "user-1")

		out, err := store.IsManyLiked(ctx, []string{"post-1", "post-2"}, "user-1")
		require.NoError(t, err)
		assert.True(t, out["post-1"])
		assert.False(t, out["post-2"])
	})
}

// Invariant 4: viewCount is monotonically non-decreasing across any
// sequence of view calls, including repeats from the same viewer.
func TestViewCountMonotonicallyNonDecreasing(t *testing.T) {
	store, ctx := newTestStore(t)

	grew, err := store.View(ctx, "post-1", "user-1")
	require.NoError(t, err)
	assert.True(t, grew)

	first, err := store.ViewCount(ctx, "post-1")
	require.NoError(t, err)

	grewAgain, err := store.View(ctx, "post-1", "user-1")
	require.NoError(t, err)
	assert.False(t, grewAgain, "same viewer should not grow the estimate")

	second, err := store.ViewCount(ctx, "post-1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second, first)

	grewThird, err := store.View(ctx, "post-1", "user-2")
	require.NoError(t, err)
	assert.True(t, grewThird)

	third, err := store.ViewCount(ctx, "post-1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, third, second)
}

func TestDeleteInteractionsRemovesBothStructures(t *testing.T) {
	store, ctx := newTestStore(t)

	_, _ = store.Like(ctx, "post-1", "user-1")
	_, _ = store.View(ctx, "post-1", "user-1")

	require.NoError(t, store.DeleteInteractions(ctx, "post-1"))

	count, err := store.LikeCount(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	views, err := store.ViewCount(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), views)
}

func TestCacheRoundTrip(t *testing.T) {
	store, ctx := newTestStore(t)

	val, found, err := store.GetCached(ctx, "post-1", "viewer-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)

	require.NoError(t, store.SetCached(ctx, "post-1", "viewer-1", []byte(`{"postId":"post-1"}`)))

	val, found, err = store.GetCached(ctx, "post-1", "viewer-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"postId":"post-1"}`, string(val))
}

// Invariant 8: hash-cache invalidation after reply CUD removes every field
// whose name contains the root post id, viewer-scoped or not.
func TestInvalidatePostRemovesEveryMatchingField(t *testing.T) {
	store, ctx := newTestStore(t)

	require.NoError(t, store.SetCached(ctx, "post-1", "", []byte("no-viewer")))
	require.NoError(t, store.SetCached(ctx, "post-1", "viewer-1", []byte("viewer-1")))
	require.NoError(t, store.SetCached(ctx, "post-1", "viewer-2", []byte("viewer-2")))
	require.NoError(t, store.SetCached(ctx, "post-2", "", []byte("unrelated")))

	require.NoError(t, store.InvalidatePost(ctx, "post-1"))

	_, found, err := store.GetCached(ctx, "post-1", "")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.GetCached(ctx, "post-1", "viewer-1")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.GetCached(ctx, "post-2", "")
	require.NoError(t, err)
	assert.True(t, found, "unrelated post's cache entry must survive invalidation")
}

func TestKnownUserSet(t *testing.T) {
	store, ctx := newTestStore(t)

	known, err := store.IsKnownUser(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, known)

	require.NoError(t, store.AddKnownUser(ctx, "user-1"))
	known, err = store.IsKnownUser(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, known)

	require.NoError(t, store.RemoveKnownUser(ctx, "user-1"))
	known, err = store.IsKnownUser(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, known)
}
