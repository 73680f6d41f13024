//go:build integration
// +build integration

package replystore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return dsn, cleanup
}

func newTestStore(t *testing.T) *Store {
	dsn, cleanup := setupPostgresContainer(t)
	t.Cleanup(cleanup)

	st, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, st.EnsureSchema(context.Background()))
	t.Cleanup(st.Close)
	return st
}

// Invariant 1: a reply's materialized path is its parent's path with its own
// id appended, and a top-level reply's path starts at the post id.
func TestCreate_TopLevelReply_PathRootsAtPost(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	reply, err := st.Create(ctx, "post-1", "post-1", "user-1", "first reply")
	require.NoError(t, err)
	assert.Equal(t, "post-1/"+reply.ID, reply.Path)
	assert.Equal(t, "post-1", reply.RootID)
	assert.Equal(t, "post-1", reply.ParentID)
}

func TestCreate_NestedReply_PathExtendsParent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r1, err := st.Create(ctx, "post-1", "post-1", "user-1", "r1")
	require.NoError(t, err)

	r2, err := st.Create(ctx, "post-1", r1.ID, "user-2", "r2")
	require.NoError(t, err)
	assert.Equal(t, r1.Path+"/"+r2.ID, r2.Path)
}

// Scenario S3: R1 -> R2 -> R3 chain; deleting R1 removes all three rows and
// GetAllByPost then returns empty.
func TestDelete_CascadesToEntireSubtree(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r1, err := st.Create(ctx, "post-1", "post-1", "user-1", "r1")
	require.NoError(t, err)
	r2, err := st.Create(ctx, "post-1", r1.ID, "user-1", "r2")
	require.NoError(t, err)
	_, err = st.Create(ctx, "post-1", r2.ID, "user-1", "r3")
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, r1.ID))

	remaining, err := st.GetAllByPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

// Invariant 2: deleting a non-root reply removes only its own subtree,
// leaving siblings and ancestors untouched.
func TestDelete_OnlyRemovesMatchingSubtree(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r1, err := st.Create(ctx, "post-1", "post-1", "user-1", "r1")
	require.NoError(t, err)
	r2, err := st.Create(ctx, "post-1", r1.ID, "user-1", "r2")
	require.NoError(t, err)
	sibling, err := st.Create(ctx, "post-1", r1.ID, "user-1", "sibling")
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, r2.ID))

	remaining, err := st.GetAllByPost(ctx, "post-1")
	require.NoError(t, err)
	ids := make([]string, 0, len(remaining))
	for _, r := range remaining {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{r1.ID, sibling.ID}, ids)
}

func TestUpdate_ChangesContentNotPath(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r1, err := st.Create(ctx, "post-1", "post-1", "user-1", "original")
	require.NoError(t, err)

	updated, err := st.Update(ctx, r1.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, r1.Path, updated.Path)
}

func TestGetSubtree_ReturnsSelfAndDescendants(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r1, err := st.Create(ctx, "post-1", "post-1", "user-1", "r1")
	require.NoError(t, err)
	r2, err := st.Create(ctx, "post-1", r1.ID, "user-1", "r2")
	require.NoError(t, err)
	_, err = st.Create(ctx, "post-1", "post-1", "user-1", "unrelated-top-level")
	require.NoError(t, err)

	subtree, err := st.GetSubtree(ctx, r1.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(subtree))
	for _, r := range subtree {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{r1.ID, r2.ID}, ids)
}

func TestGetAllByPosts_BucketsByRoot(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Create(ctx, "post-1", "post-1", "user-1", "r1")
	require.NoError(t, err)
	_, err = st.Create(ctx, "post-2", "post-2", "user-1", "r2")
	require.NoError(t, err)

	buckets, err := st.GetAllByPosts(ctx, []string{"post-1", "post-2", "post-missing"})
	require.NoError(t, err)
	assert.Len(t, buckets["post-1"], 1)
	assert.Len(t, buckets["post-2"], 1)
	assert.Empty(t, buckets["post-missing"])
}

func TestDeleteByUser_ReturnsDeletedIDs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r1, err := st.Create(ctx, "post-1", "post-1", "user-1", "r1")
	require.NoError(t, err)
	_, err = st.Create(ctx, "post-1", "post-1", "user-2", "r2")
	require.NoError(t, err)

	deleted, err := st.DeleteByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{r1.ID}, deleted)

	remaining, err := st.GetAllByPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestDeleteByPost_RemovesEveryReplyRootedThere(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Create(ctx, "post-1", "post-1", "user-1", "r1")
	require.NoError(t, err)
	_, err = st.Create(ctx, "post-2", "post-2", "user-1", "r2")
	require.NoError(t, err)

	require.NoError(t, st.DeleteByPost(ctx, "post-1"))

	remaining, err := st.GetAllByPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	other, err := st.GetAllByPost(ctx, "post-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
