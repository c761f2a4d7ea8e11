// Package storetest holds the behaviour every repository.Store must share.
// Backend test files call Run with a constructor for a fresh, migrated
// store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-api/models"
	"blog-api/repository"
)

var base = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// Run executes the contract suite. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) repository.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("posts", func(t *testing.T) { testPosts(t, open(t)) })
	t.Run("missing posts", func(t *testing.T) { testMissingPosts(t, open(t)) })
}

func testUsers(t *testing.T, st repository.Store) {
	ctx := context.Background()

	u := &models.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", CreatedAt: base}
	require.NoError(t, st.CreateUser(ctx, u))

	dup := &models.User{ID: "u-2", Name: "Other", Email: "ada@example.com", PasswordHash: "hash", CreatedAt: base}
	require.ErrorIs(t, st.CreateUser(ctx, dup), repository.ErrDuplicateEmail)

	got, err := st.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, base.Equal(got.CreatedAt), "created_at %v", got.CreatedAt)

	byEmail, err := st.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	_, err = st.GetUser(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = st.GetUserByEmail(ctx, "nope@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func seedAuthors(t *testing.T, st repository.Store) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{"author-a", "author-b"} {
		require.NoError(t, st.CreateUser(ctx, &models.User{
			ID: id, Name: id, Email: id + "@example.com", PasswordHash: "x", CreatedAt: base,
		}))
	}
}

func post(id, author string, v models.Visibility, age time.Duration) *models.Post {
	at := base.Add(-age)
	return &models.Post{
		ID:            id,
		Title:         "title " + id,
		Content:       "<p>" + id + "</p>",
		FeaturedImage: "https://img.example.com/" + id + ".png",
		Visibility:    v,
		AuthorID:      author,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func ids(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func testPosts(t *testing.T, st repository.Store) {
	ctx := context.Background()
	seedAuthors(t, st)

	require.NoError(t, st.CreatePost(ctx, post("a-public", "author-a", models.Public, 3*time.Hour)))
	require.NoError(t, st.CreatePost(ctx, post("a-private", "author-a", models.Private, 2*time.Hour)))
	require.NoError(t, st.CreatePost(ctx, post("b-public", "author-b", models.Public, time.Hour)))

	public, err := st.ListPublicPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-public", "a-public"}, ids(public))

	mine, err := st.ListPostsByAuthor(ctx, "author-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-private", "a-public"}, ids(mine))

	none, err := st.ListPostsByAuthor(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := st.GetPost(ctx, "a-private")
	require.NoError(t, err)
	assert.Equal(t, "title a-private", got.Title)
	assert.Equal(t, "<p>a-private</p>", got.Content)
	assert.Equal(t, models.Private, got.Visibility)
	assert.Equal(t, "author-a", got.AuthorID)
	assert.Equal(t, "https://img.example.com/a-private.png", got.FeaturedImage)

	created := got.CreatedAt
	got.Title = "renamed"
	got.Content = "<h2>new</h2>"
	got.Visibility = models.Public
	got.FeaturedImage = "https://img.example.com/new.png"
	got.UpdatedAt = base
	got.AuthorID = "author-b"
	require.NoError(t, st.UpdatePost(ctx, got))

	updated, err := st.GetPost(ctx, "a-private")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "<h2>new</h2>", updated.Content)
	assert.Equal(t, models.Public, updated.Visibility)
	assert.Equal(t, "https://img.example.com/new.png", updated.FeaturedImage)
	assert.Equal(t, "author-a", updated.AuthorID, "author must not change on update")
	assert.True(t, created.Equal(updated.CreatedAt))
	assert.True(t, base.Equal(updated.UpdatedAt))

	public, err = st.ListPublicPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-public", "a-private", "a-public"}, ids(public))

	require.NoError(t, st.DeletePost(ctx, "a-public"))
	_, err = st.GetPost(ctx, "a-public")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func testMissingPosts(t *testing.T, st repository.Store) {
	ctx := context.Background()

	_, err := st.GetPost(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, st.UpdatePost(ctx, post("missing", "author-a", models.Public, 0)), repository.ErrNotFound)
	require.ErrorIs(t, st.DeletePost(ctx, "missing"), repository.ErrNotFound)

	public, err := st.ListPublicPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)
}
