// Package blog implements post operations: create, read, update, delete and
// the two listings. Every operation loads the post once, asks the access
// package for a decision and only then touches the store or media host.
package blog

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-api/access"
	"blog-api/content"
	"blog-api/media"
	"blog-api/models"
	"blog-api/repository"
)

type Service struct {
	posts         repository.PostStore
	users         repository.UserStore
	media         media.Host
	maxImageBytes int64
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

type Option func(*Service)

func WithMaxImageBytes(n int64) Option {
	return func(s *Service) { s.maxImageBytes = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(posts repository.PostStore, users repository.UserStore, host media.Host, opts ...Option) *Service {
	s := &Service{
		posts:         posts,
		users:         users,
		media:         host,
		maxImageBytes: media.DefaultMaxImageBytes,
		logger:        slog.Default(),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries either an uploaded Image or an ImageURL; one is
// required.
type CreateInput struct {
	Title      string
	Blocks     content.Document
	Visibility string
	Image      *media.Image
	ImageURL   string
}

// UpdateInput replaces title, content and visibility. The featured image
// changes only when Image or ImageURL is set.
type UpdateInput struct {
	Title      string
	Blocks     content.Document
	Visibility string
	Image      *media.Image
	ImageURL   string
}

type fields struct {
	title      string
	html       string
	visibility models.Visibility
}

func (s *Service) Create(ctx context.Context, in CreateInput, who access.Identity) (*models.Post, error) {
	if err := access.AuthorizeCreate(who); err != nil {
		return nil, err
	}
	f, err := validate(in.Title, in.Blocks, in.Visibility)
	if err != nil {
		return nil, err
	}
	image, err := s.featuredImage(ctx, in.Image, in.ImageURL, true)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	post := &models.Post{
		ID:            s.newID(),
		Title:         f.title,
		Content:       f.html,
		FeaturedImage: image,
		Visibility:    f.visibility,
		AuthorID:      who.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, upstream("store", err)
	}
	s.logger.Info("post created", "post_id", post.ID, "author_id", post.AuthorID, "visibility", post.Visibility)

	s.attachAuthors(ctx, []*models.Post{post})
	return post, nil
}

// Get returns a post the requester may read.
func (s *Service) Get(ctx context.Context, id string, who access.Identity) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeRead(post, who); err != nil {
		return nil, ErrNotFound
	}
	s.attachAuthors(ctx, []*models.Post{post})
	return post, nil
}

// GetForEdit returns the post and its content as editor blocks. Only the
// author may edit, whatever the visibility.
func (s *Service) GetForEdit(ctx context.Context, id string, who access.Identity) (*models.Post, content.Document, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := access.AuthorizeWrite(post, who); err != nil {
		return nil, nil, err
	}
	s.attachAuthors(ctx, []*models.Post{post})
	return post, content.Decode(post.Content), nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput, who access.Identity) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeWrite(post, who); err != nil {
		return nil, err
	}
	f, err := validate(in.Title, in.Blocks, in.Visibility)
	if err != nil {
		return nil, err
	}
	image, err := s.featuredImage(ctx, in.Image, in.ImageURL, false)
	if err != nil {
		return nil, err
	}

	post.Title = f.title
	post.Content = f.html
	post.Visibility = f.visibility
	if image != "" {
		post.FeaturedImage = image
	}
	post.UpdatedAt = s.clock()

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, upstream("store", err)
	}
	s.logger.Info("post updated", "post_id", post.ID, "visibility", post.Visibility)

	s.attachAuthors(ctx, []*models.Post{post})
	return post, nil
}

func (s *Service) Delete(ctx context.Context, id string, who access.Identity) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := access.AuthorizeWrite(post, who); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return upstream("store", err)
	}
	s.logger.Info("post deleted", "post_id", id)
	return nil
}

// ListPublic returns every public post, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.ListPublicPosts(ctx)
	if err != nil {
		return nil, upstream("store", err)
	}
	return s.decorate(ctx, posts), nil
}

// ListByAuthor returns the requester's own posts, private ones included.
func (s *Service) ListByAuthor(ctx context.Context, who access.Identity) ([]models.Post, error) {
	if who.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	posts, err := s.posts.ListPostsByAuthor(ctx, who.ID)
	if err != nil {
		return nil, upstream("store", err)
	}
	return s.decorate(ctx, posts), nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	post, err := s.posts.GetPost(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream("store", err)
	}
	return post, nil
}

func validate(title string, doc content.Document, visibility string) (fields, error) {
	var f fields
	f.title = strings.TrimSpace(title)
	if f.title == "" {
		return f, invalid("title", "Title is required")
	}
	if doc.Known() == 0 {
		return f, invalid("content", "Content is required")
	}
	for _, blk := range doc {
		if h, ok := blk.(content.Heading); ok && (h.Level < 2 || h.Level > 4) {
			return f, invalid("content", "Heading level must be 2, 3 or 4")
		}
	}
	f.html = content.Encode(doc)

	v, err := models.ParseVisibility(visibility)
	if err != nil {
		return f, invalid("visibility", "Visibility must be public or private")
	}
	f.visibility = v
	return f, nil
}

// featuredImage uploads img or checks imageURL. It returns "" when neither
// is given and the image is optional.
func (s *Service) featuredImage(ctx context.Context, img *media.Image, imageURL string, required bool) (string, error) {
	if img != nil {
		if err := media.Validate(*img, s.maxImageBytes); err != nil {
			return "", invalid("featured_image", strings.TrimPrefix(err.Error(), media.ErrInvalidImage.Error()+": "))
		}
		if s.media == nil {
			return "", upstream("media", errors.New("no media host configured"))
		}
		u, err := s.media.Upload(ctx, *img)
		if err != nil {
			return "", upstream("media", err)
		}
		return u, nil
	}

	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		if required {
			return "", invalid("featured_image", "Featured image is required")
		}
		return "", nil
	}
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalid("featured_image", "Featured image URL must be an absolute http(s) URL")
	}
	return imageURL, nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) decorate(ctx context.Context, posts []models.Post) []models.Post {
	refs := make([]*models.Post, len(posts))
	for i := range posts {
		posts[i].Excerpt = content.Excerpt(posts[i].Content, content.DefaultExcerptLength)
		refs[i] = &posts[i]
	}
	s.attachAuthors(ctx, refs)
	return posts
}

// attachAuthors fills Author from the user store. A missing or failing
// lookup leaves Author nil rather than failing the read.
func (s *Service) attachAuthors(ctx context.Context, posts []*models.Post) {
	if s.users == nil {
		return
	}
	seen := map[string]*models.Author{}
	for _, p := range posts {
		author, ok := seen[p.AuthorID]
		if !ok {
			user, err := s.users.GetUser(ctx, p.AuthorID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("author lookup failed", "author_id", p.AuthorID, "error", err)
			}
			author = user.Author()
			seen[p.AuthorID] = author
		}
		p.Author = author
	}
}
