package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// ParseVisibility normalizes a client supplied visibility. Empty means public.
func ParseVisibility(raw string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(raw))); v {
	case "":
		return Public, nil
	case Public, Private:
		return v, nil
	default:
		return "", fmt.Errorf("visibility must be public or private")
	}
}

type Post struct {
	ID            string     `json:"id" bson:"_id"`
	Title         string     `json:"title" bson:"title"`
	Content       string     `json:"content" bson:"content"`
	FeaturedImage string     `json:"featured_image" bson:"featured_image"`
	Visibility    Visibility `json:"visibility" bson:"visibility"`
	AuthorID      string     `json:"author_id" bson:"author_id"`
	Author        *Author    `json:"author,omitempty" bson:"-"`
	Excerpt       string     `json:"excerpt,omitempty" bson:"-"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// CreatePostReq is the JSON form of a create request. Multipart requests
// carry the same fields as form values plus a featuredImage file.
type CreatePostReq struct {
	Title            string          `json:"title"`
	Visibility       string          `json:"visibility"`
	Blocks           json.RawMessage `json:"blocks"`
	FeaturedImageURL string          `json:"featured_image_url"`
}

// UpdatePostReq replaces title, content and visibility as a whole; the
// image is only replaced when a new one is supplied.
type UpdatePostReq struct {
	Title            string          `json:"title"`
	Visibility       string          `json:"visibility"`
	Blocks           json.RawMessage `json:"blocks"`
	FeaturedImageURL string          `json:"featured_image_url"`
}
