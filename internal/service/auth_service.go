package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
)

// ErrInvalidToken indicates a bearer token that failed verification.
var ErrInvalidToken = errors.New("invalid token")

// AuthConfig configures token signing.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenClaims are the verified bearer token fields.
type TokenClaims struct {
	Subject   string
	Role      models.Role
	SessionID string
}

// AuthService issues bearer tokens bound to a browsing session.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) (dto.LogoutResponse, error)
	Current(ctx context.Context, sessionID string) (models.Principal, bool)
	ParseToken(token string) (TokenClaims, error)
}

type authService struct {
	directory DirectoryService
	sessions  SessionService
	validator *validator.Validate
	secret    []byte
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(directory DirectoryService, sessions SessionService, validate *validator.Validate, cfg AuthConfig, logger zerolog.Logger) AuthService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &authService{
		directory: directory,
		sessions:  sessions,
		validator: validate,
		secret:    []byte(cfg.Secret),
		ttl:       ttl,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	principal, err := s.directory.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	sessionID := uuid.NewString()
	route, err := s.sessions.Login(ctx, sessionID, principal)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	expiresAt := s.now().Add(s.ttl).UTC()
	token, err := s.sign(principal, sessionID, expiresAt)
	if err != nil {
		if _, logoutErr := s.sessions.Logout(ctx, sessionID); logoutErr != nil {
			s.logger.Warn().Err(logoutErr).Msg("failed to discard session after signing error")
		}
		return dto.LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Str("principal_id", principal.ID).Str("role", string(principal.Role)).Msg("principal logged in")
	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Redirect:  route,
		Principal: dto.NewPrincipalResponse(principal),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) (dto.LogoutResponse, error) {
	route, err := s.sessions.Logout(ctx, sessionID)
	return dto.LogoutResponse{Redirect: route}, err
}

func (s *authService) Current(ctx context.Context, sessionID string) (models.Principal, bool) {
	if strings.TrimSpace(sessionID) == "" {
		return models.Principal{}, false
	}
	return s.sessions.Restore(ctx, sessionID)
}

func (s *authService) ParseToken(tokenString string) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	sessionID, _ := claims["sid"].(string)
	role, _ := claims["role"].(string)
	if subject == "" || sessionID == "" {
		return TokenClaims{}, ErrInvalidToken
	}

	return TokenClaims{Subject: subject, Role: models.ParseRole(role), SessionID: sessionID}, nil
}

func (s *authService) sign(principal models.Principal, sessionID string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  principal.ID,
		"role": string(principal.Role),
		"sid":  sessionID,
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	})
	return token.SignedString(s.secret)
}
