// Package auth is the identity provider: it registers accounts, verifies
// passwords and turns bearer tokens into an access.Identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-api/access"
	"blog-api/models"
	"blog-api/repository"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists")
)

type Service struct {
	users  repository.UserStore
	tokens *Tokens
	now    func() time.Time
}

// Session is what register and login hand back to the client.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func NewService(users repository.UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens, now: time.Now}
}

func (s *Service) Register(ctx context.Context, req models.RegisterReq) (*Session, error) {
	name, err := NormalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, req models.LoginReq) (*Session, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// Me loads the account behind an identity.
func (s *Service) Me(ctx context.Context, who access.Identity) (*models.User, error) {
	if who.IsAnonymous() {
		return nil, access.ErrUnauthenticated
	}
	user, err := s.users.GetUser(ctx, who.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, access.ErrUnauthenticated
	}
	return user, err
}

// Identify resolves an Authorization header value. An empty header is
// Anonymous with no error; a malformed or expired token is an error so
// callers can decide whether to reject or downgrade.
func (s *Service) Identify(header string) (access.Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return access.Anonymous, nil
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return access.Anonymous, fmt.Errorf("%w: expected bearer token", ErrInvalidToken)
	}
	id, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return access.Anonymous, err
	}
	return access.User(id), nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
