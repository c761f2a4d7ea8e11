package blog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-api/access"
	"blog-api/content"
	"blog-api/media"
	"blog-api/models"
	"blog-api/repository/sqlite"
)

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeHost struct {
	uploads int
	err     error
}

func (h *fakeHost) Upload(_ context.Context, img media.Image) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	h.uploads++
	return "https://img.example.com/" + img.Filename, nil
}

type fixture struct {
	svc   *Service
	host  *fakeHost
	alice access.Identity
	bob   access.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	for _, u := range []models.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com", PasswordHash: "x"},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", PasswordHash: "x"},
	} {
		u.CreatedAt = time.Now().UTC()
		require.NoError(t, st.CreateUser(ctx, &u))
	}

	// Each call advances a second so listings have a stable order.
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	host := &fakeHost{}
	return &fixture{
		svc:   NewService(st, st, host, WithClock(now)),
		host:  host,
		alice: access.User("alice"),
		bob:   access.User("bob"),
	}
}

func sampleDoc() content.Document {
	return content.Document{
		content.Heading{Level: 2, Text: "Hello"},
		content.Paragraph{Text: "First <b>post</b>."},
		content.List{Ordered: true, Items: []string{"one", "two"}},
	}
}

func (f *fixture) create(t *testing.T, who access.Identity, title, visibility string) *models.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), CreateInput{
		Title:      title,
		Blocks:     sampleDoc(),
		Visibility: visibility,
		Image:      &media.Image{Filename: title + ".png", Data: png},
	}, who)
	require.NoError(t, err)
	return post
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	post := f.create(t, f.alice, "Hello", "")
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, models.Public, post.Visibility)
	assert.Equal(t, "alice", post.AuthorID)
	assert.Equal(t, content.Encode(sampleDoc()), post.Content)
	assert.Equal(t, "https://img.example.com/Hello.png", post.FeaturedImage)
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Alice", post.Author.Name)
	assert.Equal(t, 1, f.host.uploads)
}

func TestCreateWithImageURL(t *testing.T) {
	f := newFixture(t)

	post, err := f.svc.Create(context.Background(), CreateInput{
		Title:      "Linked",
		Blocks:     sampleDoc(),
		Visibility: "private",
		ImageURL:   "https://cdn.example.com/a.jpg",
	}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", post.FeaturedImage)
	assert.Equal(t, models.Private, post.Visibility)
	assert.Zero(t, f.host.uploads)
}

func TestCreateRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{Title: "x", Blocks: sampleDoc(), ImageURL: "https://a/b.png"}, access.Anonymous)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateValidation(t *testing.T) {
	image := &media.Image{Filename: "a.png", Data: png}
	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"blank title", CreateInput{Title: "  ", Blocks: sampleDoc(), Image: image}, "title"},
		{"empty document", CreateInput{Title: "t", Blocks: content.Document{}, Image: image}, "content"},
		{"only unknown blocks", CreateInput{Title: "t", Blocks: content.Document{content.Unknown{Type: "embed"}}, Image: image}, "content"},
		{"heading level", CreateInput{Title: "t", Blocks: content.Document{content.Heading{Level: 1, Text: "x"}}, Image: image}, "content"},
		{"visibility", CreateInput{Title: "t", Blocks: sampleDoc(), Visibility: "friends", Image: image}, "visibility"},
		{"missing image", CreateInput{Title: "t", Blocks: sampleDoc()}, "featured_image"},
		{"not an image", CreateInput{Title: "t", Blocks: sampleDoc(), Image: &media.Image{Filename: "a.txt", Data: []byte("plain text")}}, "featured_image"},
		{"relative image url", CreateInput{Title: "t", Blocks: sampleDoc(), ImageURL: "/uploads/a.png"}, "featured_image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.in, f.alice)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, f.host.uploads)
		})
	}
}

func TestCreateMediaFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	f.host.err = errors.New("cloud down")

	_, err := f.svc.Create(context.Background(), CreateInput{
		Title:  "t",
		Blocks: sampleDoc(),
		Image:  &media.Image{Filename: "a.png", Data: png},
	}, f.alice)

	var uerr *UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "media", uerr.Op)

	mine, err := f.svc.ListByAuthor(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub := f.create(t, f.alice, "public", "public")
	priv := f.create(t, f.alice, "private", "private")

	tests := []struct {
		name string
		id   string
		who  access.Identity
		err  error
	}{
		{"public anonymous", pub.ID, access.Anonymous, nil},
		{"public other user", pub.ID, f.bob, nil},
		{"private owner", priv.ID, f.alice, nil},
		{"private other user", priv.ID, f.bob, ErrNotFound},
		{"private anonymous", priv.ID, access.Anonymous, ErrNotFound},
		{"missing", "nope", f.alice, ErrNotFound},
		{"empty id", "", f.alice, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := f.svc.Get(ctx, tt.id, tt.who)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, post.ID)
			require.NotNil(t, post.Author)
		})
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, f.alice, "before", "public")

	doc := content.Document{content.Quote{Text: "q", Caption: "c"}}
	updated, err := f.svc.Update(ctx, post.ID, UpdateInput{Title: "after", Blocks: doc, Visibility: "private"}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, content.Encode(doc), updated.Content)
	assert.Equal(t, models.Private, updated.Visibility)
	assert.Equal(t, post.FeaturedImage, updated.FeaturedImage, "image kept when none given")
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(post.UpdatedAt))

	got, err := f.svc.Get(ctx, post.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, post.CreatedAt, got.CreatedAt)

	replaced, err := f.svc.Update(ctx, post.ID, UpdateInput{
		Title:  "after",
		Blocks: doc,
		Image:  &media.Image{Filename: "new.png", Data: png},
	}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/new.png", replaced.FeaturedImage)
	assert.Equal(t, models.Public, replaced.Visibility, "empty visibility means public")
}

func TestUpdateAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, f.alice, "mine", "public")
	in := UpdateInput{Title: "hijack", Blocks: sampleDoc()}

	_, err := f.svc.Update(ctx, post.ID, in, f.bob)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Update(ctx, post.ID, in, access.Anonymous)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Update(ctx, "missing", in, f.alice)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(ctx, post.ID, access.Anonymous)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestUpdateValidatesAfterAuthorization(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, f.alice, "mine", "public")

	_, err := f.svc.Update(context.Background(), post.ID, UpdateInput{Title: ""}, f.bob)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Update(context.Background(), post.ID, UpdateInput{Title: ""}, f.alice)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, f.alice, "doomed", "private")

	require.ErrorIs(t, f.svc.Delete(ctx, post.ID, f.bob), ErrForbidden)
	require.ErrorIs(t, f.svc.Delete(ctx, post.ID, access.Anonymous), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, post.ID, f.alice))

	_, err := f.svc.Get(ctx, post.ID, f.alice)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, post.ID, f.alice), ErrNotFound)
}

func TestGetForEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, f.alice, "editable", "public")

	got, doc, err := f.svc.GetForEdit(ctx, post.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, sampleDoc(), doc)

	_, _, err = f.svc.GetForEdit(ctx, post.ID, f.bob)
	require.ErrorIs(t, err, ErrForbidden)
	_, _, err = f.svc.GetForEdit(ctx, "missing", f.alice)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t, f.alice, "first", "public")
	hidden := f.create(t, f.alice, "hidden", "private")
	third := f.create(t, f.bob, "third", "public")

	public, err := f.svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, third.ID, public[0].ID)
	assert.Equal(t, first.ID, public[1].ID)
	assert.Equal(t, "Bob", public[0].Author.Name)
	assert.Equal(t, "Hello First post. one two", public[0].Excerpt)

	mine, err := f.svc.ListByAuthor(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, hidden.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	_, err = f.svc.ListByAuthor(ctx, access.Anonymous)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
