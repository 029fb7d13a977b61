package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/amjkhan-git/HMCC-Calendar/config"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
	"github.com/amjkhan-git/HMCC-Calendar/internal/repository"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/jwt"
)

const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Identity is the authenticated caller behind a session token.
type Identity struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn string    `json:"expires_in"`
}

type AuthService interface {
	Authenticate(username, password string) bool
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	CreateSession(ctx context.Context, username string) (*LoginResult, error)
	ValidateSession(ctx context.Context, token string) (*Identity, error)
	InvalidateSession(ctx context.Context, token string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type authService struct {
	cfg      config.AuthConfig
	sessions repository.SessionRepository
	tokens   *jwt.Manager
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(cfg config.AuthConfig, sessions repository.SessionRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		cfg:      cfg,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	return userOK && passOK
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if !s.Authenticate(username, password) {
		s.log.Warn("admin login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	return s.CreateSession(ctx, username)
}

// CreateSession issues a signed token and records it; a token is only honoured
// while its session row exists.
func (s *authService) CreateSession(ctx context.Context, username string) (*LoginResult, error) {
	token, exp, err := s.tokens.Generate(username, RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	session := &models.AdminSession{
		ID:        uuid.NewString(),
		Username:  username,
		Token:     token,
		ExpiresAt: exp.UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info("admin session created", zap.String("username", username))
	return &LoginResult{
		Token:     token,
		Username:  username,
		ExpiresAt: session.ExpiresAt,
		ExpiresIn: s.tokens.TTL().String(),
	}, nil
}

func (s *authService) ValidateSession(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	session, err := s.sessions.FindValid(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session expired or revoked", ErrUnauthorized)
		}
		return nil, err
	}

	return &Identity{
		Username:  session.Username,
		Role:      claims.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authService) InvalidateSession(ctx context.Context, token string) error {
	return s.sessions.DeleteByToken(ctx, token)
}

func (s *authService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}
