package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

var errInvalidCredentials = &models.AppError{Code: models.KindUnauthenticated, Message: "invalid credentials"}

// AuthService registers users and issues bearer tokens backed by sessions
type AuthService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	cache     *SessionCache
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, cache *SessionCache, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		cache:     cache,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, models.NewValidationError("user already exists", err)
		}
		return nil, models.NewInternalError(err)
	}

	log.Printf("[AuthService] Registered user %s", user.ID)
	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, models.NewInternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(ctx, user)
}

// Logout ends the session the token names. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return models.NewUnauthenticatedError()
	}
	if err := s.sessions.DeleteByToken(ctx, claims.SessionToken()); err != nil {
		return models.NewInternalError(err)
	}
	s.cache.Delete(ctx, claims.SessionToken())
	return nil
}

// Authenticate resolves a bearer token to the identity of a live session
func (s *AuthService) Authenticate(ctx context.Context, token string) (*types.Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, models.NewUnauthenticatedError()
	}

	if identity, ok := s.cache.Get(ctx, claims.SessionToken()); ok {
		return identity, nil
	}

	session, err := s.sessions.FindByToken(ctx, claims.SessionToken())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewUnauthenticatedError()
		}
		return nil, models.NewInternalError(err)
	}
	if session.Expired(s.now()) {
		if err := s.sessions.DeleteByToken(ctx, session.Token); err != nil {
			log.Printf("[AuthService] Failed to delete expired session: %v", err)
		}
		return nil, models.NewUnauthenticatedError()
	}

	identity := &types.Identity{ID: session.UserID, Email: session.User.Email, Name: session.User.Name}
	s.cache.Set(ctx, session.Token, identity, session.ExpiresAt)
	return identity, nil
}

// CurrentUser loads the acting user
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	identity := types.IdentityFromContext(ctx)
	if identity == nil {
		return nil, models.NewUnauthenticatedError()
	}
	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewUnauthenticatedError()
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// PurgeExpiredSessions deletes sessions that have run out
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*types.AuthResponse, error) {
	sessionToken, err := newSessionToken()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now()
	session := &models.Session{
		Token:     sessionToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, models.NewInternalError(err)
	}

	identity := &types.Identity{ID: user.ID, Email: user.Email, Name: user.Name}
	claims := types.NewSessionClaims(sessionToken, identity, now, session.ExpiresAt)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	s.cache.Set(ctx, sessionToken, identity, session.ExpiresAt)
	return &types.AuthResponse{Token: signed, User: identity}, nil
}

func (s *AuthService) parse(tokenString string) (*types.SessionClaims, error) {
	claims := &types.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.SessionToken() == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
