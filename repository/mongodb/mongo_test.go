package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blog-api/repository"
	"blog-api/repository/storetest"
)

// Set BLOG_TEST_MONGO_URI to run the contract against a live server. Each
// subtest gets its own database, dropped on cleanup.
func TestStoreContract(t *testing.T) {
	uri := os.Getenv("BLOG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BLOG_TEST_MONGO_URI not set")
	}

	storetest.Run(t, func(t *testing.T) repository.Store {
		ctx := context.Background()
		name := fmt.Sprintf("blog_test_%d", time.Now().UnixNano())
		st, err := Open(ctx, uri, name)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = st.client.Database(name).Drop(context.Background())
			_ = st.Close()
		})
		require.NoError(t, st.Migrate(ctx))
		return st
	})
}

func TestOpenRequiresDatabase(t *testing.T) {
	_, err := Open(context.Background(), "mongodb://localhost:27017", "")
	require.Error(t, err)
}
