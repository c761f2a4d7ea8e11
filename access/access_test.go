package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blog-api/models"
)

func post(v models.Visibility, author string) *models.Post {
	return &models.Post{ID: "p1", Visibility: v, AuthorID: author}
}

func TestAuthorizeRead(t *testing.T) {
	tests := []struct {
		name string
		post *models.Post
		who  Identity
		want error
	}{
		{"public anonymous", post(models.Public, "A"), Anonymous, nil},
		{"public other user", post(models.Public, "A"), User("B"), nil},
		{"public owner", post(models.Public, "A"), User("A"), nil},
		{"private anonymous", post(models.Private, "A"), Anonymous, ErrForbidden},
		{"private other user", post(models.Private, "A"), User("B"), ErrForbidden},
		{"private owner", post(models.Private, "A"), User("A"), nil},
		{"unknown visibility treated as private", post("draft", "A"), User("B"), ErrForbidden},
		{"nil post", nil, User("A"), ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeRead(tt.post, tt.who)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthorizeWriteIgnoresVisibility(t *testing.T) {
	for _, v := range []models.Visibility{models.Public, models.Private} {
		p := post(v, "A")
		assert.NoError(t, AuthorizeWrite(p, User("A")), v)
		assert.ErrorIs(t, AuthorizeWrite(p, User("B")), ErrForbidden, v)
		assert.ErrorIs(t, AuthorizeWrite(p, Anonymous), ErrForbidden, v)
	}
}

func TestAnonymousNeverOwnsAuthorlessPost(t *testing.T) {
	p := post(models.Private, "")
	assert.ErrorIs(t, AuthorizeRead(p, Anonymous), ErrForbidden)
	assert.ErrorIs(t, AuthorizeWrite(p, Anonymous), ErrForbidden)
}

func TestAuthorizeCreate(t *testing.T) {
	assert.ErrorIs(t, AuthorizeCreate(Anonymous), ErrUnauthenticated)
	assert.NoError(t, AuthorizeCreate(User("A")))
}
