package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
)

// ErrUnknownUser is returned when a login email matches no user.
var ErrUnknownUser = errors.New("unknown user")

// UserLookup finds the users tokens are issued to.
type UserLookup interface {
	Get(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService implements the stub single sign-on: any known email can log in
// without a password and receives a signed session token.
type AuthService struct {
	users  UserLookup
	tokens *TokenIssuer
}

// NewAuthService creates a new AuthService instance
func NewAuthService(users UserLookup, tokens *TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login issues a token for the user with email.
func (as *AuthService) Login(ctx context.Context, email string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is empty", ErrUnknownUser)
	}
	user, err := as.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		slog.InfoContext(ctx, "login rejected", "email", email, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %s: %w", email, err)
	}
	token, expires, err := as.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate verifies a bearer header and reloads the user it names so
// role changes and deletions take effect before the token expires.
func (as *AuthService) Authenticate(ctx context.Context, header string) (*AuthContext, error) {
	raw, err := ExtractBearer(header)
	if err != nil {
		return nil, err
	}
	claims, err := as.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	user, err := as.users.Get(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s: %v", ErrInvalidToken, claims.Subject, err)
	}
	return &AuthContext{User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}
