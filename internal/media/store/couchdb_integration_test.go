//go:build integration
// +build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nimbusfeed/socialmesh/internal/media/domain"
)

func setupCouchDBContainer(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "couchdb:3.3",
		ExposedPorts: []string{"5984/tcp"},
		Env: map[string]string{
			"COUCHDB_USER":     "admin",
			"COUCHDB_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForHTTP("/_up").WithPort("5984/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start couchdb container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5984")
	require.NoError(t, err)

	url := fmt.Sprintf("http://admin:testpass@%s:%s", host, port.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return url, cleanup
}

func TestStore_CreateAndGetPost(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	post := domain.Post{
		ID:      "post-1",
		OwnerID: "user-1",
		Content: "hello world",
		Files: []domain.FileRef{
			{ID: "file-1", OriginalName: "a.png", ContentType: "image/png", ObjectKey: "obj-1"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	require.NoError(t, st.CreatePost(ctx, post))

	got, err := st.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, post.OwnerID, got.OwnerID)
	assert.Equal(t, post.Content, got.Content)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "a.png", got.Files[0].OriginalName)
}

func TestStore_GetPost_NotFound(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.GetPost(context.Background(), "missing")
	assert.Error(t, err)
}

// Invariant 7: GetBatch returns a subset of the requested ids, silently
// omitting ones that don't exist rather than failing the whole batch.
func TestStore_GetBatch_SkipsMissingIDs(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, st.CreatePost(ctx, domain.Post{ID: "post-a", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, st.CreatePost(ctx, domain.Post{ID: "post-b", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}))

	posts, err := st.GetBatch(ctx, []string{"post-a", "post-missing", "post-b"})
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestStore_AddFiles_AppendsWithoutMutatingExisting(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, st.CreatePost(ctx, domain.Post{
		ID:        "post-1",
		OwnerID:   "user-1",
		Files:     []domain.FileRef{{ID: "file-1", OriginalName: "first.png"}},
		CreatedAt: now,
		UpdatedAt: now,
	}))

	require.NoError(t, st.AddFiles(ctx, "post-1", []domain.FileRef{{ID: "file-2", OriginalName: "second.png"}}, time.Now()))

	got, err := st.GetPost(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, got.Files, 2)
	assert.Equal(t, "first.png", got.Files[0].OriginalName)
	assert.Equal(t, "second.png", got.Files[1].OriginalName)
}

func TestStore_DeletePost(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, st.CreatePost(ctx, domain.Post{ID: "post-1", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, st.DeletePost(ctx, "post-1"))

	_, err = st.GetPost(ctx, "post-1")
	assert.Error(t, err)

	// deleting an already-deleted post is a no-op, not an error.
	assert.NoError(t, st.DeletePost(ctx, "post-1"))
}

func TestStore_ListByOwner_Paginates(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, st.CreatePost(ctx, domain.Post{
			ID:        fmt.Sprintf("post-%d", i),
			OwnerID:   "user-1",
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}
	time.Sleep(100 * time.Millisecond)

	page, err := st.ListByOwner(ctx, "user-1", 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.NotEmpty(t, page.NextCursor)

	next, err := st.ListByOwner(ctx, "user-1", 2, page.NextCursor)
	require.NoError(t, err)
	assert.Len(t, next.Posts, 2)
}

func TestStore_UserExistenceLifecycle(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()

	exists, err := st.UserExists(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, st.AddUser(ctx, "user-1"))
	exists, err = st.UserExists(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, st.RemoveUser(ctx, "user-1"))
	exists, err = st.UserExists(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_PostsByOwner_CascadeDeleteSource(t *testing.T) {
	url, cleanup := setupCouchDBContainer(t)
	defer cleanup()

	st, err := Open(context.Background(), url)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, st.CreatePost(ctx, domain.Post{ID: "post-1", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, st.CreatePost(ctx, domain.Post{ID: "post-2", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, st.CreatePost(ctx, domain.Post{ID: "post-3", OwnerID: "user-2", CreatedAt: now, UpdatedAt: now}))
	time.Sleep(100 * time.Millisecond)

	ids, err := st.PostsByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"post-1", "post-2"}, ids)
}
