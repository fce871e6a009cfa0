package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
)

func newAuthHarness(t *testing.T) (*authService, directoryHarness) {
	t.Helper()
	dir := newDirectoryHarness(t)
	_, err := dir.svc.EnsureAdmin(context.Background(), "Root", "root@algotutor.test", "changeme1")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("pending-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	pending := testPending
	pending.PasswordHash = string(hash)
	dir.state.Principals.Append(pending)

	sessions, _ := newTestSessionService(t)
	svc := NewAuthService(dir.svc, sessions, testValidator(), AuthConfig{Secret: "test-secret", TTL: time.Hour}, testLogger()).(*authService)
	return svc, dir
}

func TestAuthLoginIssuesSessionToken(t *testing.T) {
	svc, _ := newAuthHarness(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "root@algotutor.test", Password: "changeme1"})
	require.NoError(t, err)
	require.Equal(t, RouteAdminHome, resp.Redirect)
	require.Equal(t, "admin", resp.Principal.Role)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.Principal.ID, claims.Subject)
	require.Equal(t, models.RoleAdmin, claims.Role)

	current, ok := svc.Current(ctx, claims.SessionID)
	require.True(t, ok)
	require.Equal(t, "root@algotutor.test", current.Email)
	require.Empty(t, current.PasswordHash)

	out, err := svc.Logout(ctx, claims.SessionID)
	require.NoError(t, err)
	require.Equal(t, RoutePublicHome, out.Redirect)
	_, ok = svc.Current(ctx, claims.SessionID)
	require.False(t, ok)
}

func TestAuthLoginFailures(t *testing.T) {
	svc, _ := newAuthHarness(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Email: "nobody@algotutor.test", Password: "whatever"})
	require.ErrorIs(t, err, ErrUnknownEmail)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "root@algotutor.test", Password: "wrong"})
	require.ErrorIs(t, err, ErrPasswordIncorrect)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: testPending.Email, Password: "pending-pass"})
	require.ErrorIs(t, err, ErrPendingApproval)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "not-an-email", Password: "x"})
	require.True(t, isValidation(err))
}

func TestAuthParseTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthHarness(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "sid": "y", "exp": time.Now().Add(time.Hour).Unix()})
	signed, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	noSession := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()})
	signed, err = noSession.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "root@algotutor.test", Password: "changeme1"})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseToken(resp.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
