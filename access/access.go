// Package access decides who may read, change or create posts.
//
// The checks are pure functions over a post snapshot and the requester's
// identity. Callers must evaluate them on every request against a freshly
// loaded post; decisions are never cached.
package access

import (
	"errors"

	"blog-api/models"
)

var (
	ErrForbidden       = errors.New("not authorized")
	ErrUnauthenticated = errors.New("authentication required")
)

// Identity is the requester as established by the identity provider. The
// zero value is Anonymous.
type Identity struct {
	ID string
}

var Anonymous = Identity{}

func User(id string) Identity {
	return Identity{ID: id}
}

func (i Identity) IsAnonymous() bool {
	return i.ID == ""
}

// Owns reports whether the identity authored the post.
func (i Identity) Owns(post *models.Post) bool {
	if i.IsAnonymous() || post == nil {
		return false
	}
	return post.AuthorID == i.ID
}

// AuthorizeRead allows anyone to read a public post. Private posts are
// readable by their author only.
func AuthorizeRead(post *models.Post, who Identity) error {
	if post == nil {
		return ErrForbidden
	}
	switch post.Visibility {
	case models.Public:
		return nil
	default:
		if who.Owns(post) {
			return nil
		}
		return ErrForbidden
	}
}

// AuthorizeWrite guards update and delete. Visibility plays no part.
func AuthorizeWrite(post *models.Post, who Identity) error {
	if who.Owns(post) {
		return nil
	}
	return ErrForbidden
}

func AuthorizeCreate(who Identity) error {
	if who.IsAnonymous() {
		return ErrUnauthenticated
	}
	return nil
}
