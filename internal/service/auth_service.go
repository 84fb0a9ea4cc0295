package service

import (
	"context"
	"fmt"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/config"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// SessionClaims are the JWT claims carried by an admin session token
type SessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// authService is the concrete implementation of AuthService
type authService struct {
	admins repository.AdminRepository
	tokens TokenStore
	cfg    *config.AuthConfig
	log    zerolog.Logger
}

// newAuthService creates a new AuthService
func newAuthService(admins repository.AdminRepository, tokens TokenStore, cfg *config.AuthConfig, log zerolog.Logger) *authService {
	return &authService{
		admins: admins,
		tokens: tokens,
		cfg:    cfg,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

// Login verifies admin credentials and issues a session token
func (s *authService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if user == nil {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.TokenTTL)
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Info().Str("email", email).Msg("Admin logged in")
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate parses a session token and checks it against the revocation
// store
func (s *authService) Validate(ctx context.Context, token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, models.ErrInvalidCredentials
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, models.ErrInvalidCredentials
	}
	return claims, nil
}

// Logout revokes a session token until its natural expiry
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.log.Info().Str("email", claims.Email).Msg("Admin logged out")
	return nil
}

// EnsureSeedAdmin bootstraps the first admin account from configuration
// when the table is empty
func (s *authService) EnsureSeedAdmin(ctx context.Context) error {
	if s.cfg.SeedAdmin == "" || s.cfg.SeedAdminPass == "" {
		return nil
	}

	count, err := s.admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.SeedAdminPass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	user := &models.AdminUser{
		ID:           uuid.New().String(),
		Email:        s.cfg.SeedAdmin,
		Name:         "Administrator",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.admins.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	s.log.Info().Str("email", user.Email).Msg("Seed admin created")
	return nil
}
