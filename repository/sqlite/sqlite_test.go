package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"blog-api/models"
	"blog-api/repository"
	"blog-api/repository/storetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return openTestStore(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestMutationsWriteActivityLog(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "u", Name: "u", Email: "u@example.com", PasswordHash: "x"}))
	p := &models.Post{ID: "p", Title: "t", Content: "<p>c</p>", FeaturedImage: "i", Visibility: models.Public, AuthorID: "u"}
	require.NoError(t, st.CreatePost(ctx, p))
	require.NoError(t, st.UpdatePost(ctx, p))
	require.NoError(t, st.DeletePost(ctx, "p"))

	rows, err := st.db.QueryContext(ctx, `SELECT action FROM activity_logs WHERE post_id=? ORDER BY id`, "p")
	require.NoError(t, err)
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var a string
		require.NoError(t, rows.Scan(&a))
		actions = append(actions, a)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{repository.ActionNewPost, repository.ActionUpdatePost, repository.ActionDeletePost}, actions)
}

func TestPostRequiresExistingAuthor(t *testing.T) {
	st := openTestStore(t)
	err := st.CreatePost(context.Background(), &models.Post{ID: "p", Visibility: models.Public, AuthorID: "ghost"})
	require.Error(t, err)
}
