package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/repository"
)

func newTestSessionService(t *testing.T) (SessionService, *miniredis.Miniredis) {
	t.Helper()
	server, kv := newTestRedis(t)
	return NewSessionService(repository.NewSessionRepository(kv, time.Hour), testLogger()), server
}

func TestSessionLoginRestoreRoundTrip(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	principal := testTeacher
	principal.Bio = "Loves loops"
	principal.AvatarURL = "https://picsum.photos/seed/teacher-1/200"

	route, err := svc.Login(ctx, "sid-1", principal)
	require.NoError(t, err)
	require.Equal(t, RouteTeacherHome, route)

	restored, ok := svc.Restore(ctx, "sid-1")
	require.True(t, ok)
	require.Equal(t, principal, restored)
}

func TestSessionRecordNeverCarriesPasswordHash(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	principal := testAdmin
	principal.PasswordHash = "$2a$10$hash"

	route, err := svc.Login(ctx, "sid-admin", principal)
	require.NoError(t, err)
	require.Equal(t, RouteAdminHome, route)

	restored, ok := svc.Restore(ctx, "sid-admin")
	require.True(t, ok)
	require.Empty(t, restored.PasswordHash)
}

func TestSessionRestoreDiscardsCorruptRecord(t *testing.T) {
	svc, server := newTestSessionService(t)
	require.NoError(t, server.Set("algotutor:session:sid-bad", "{not json"))

	_, ok := svc.Restore(context.Background(), "sid-bad")
	require.False(t, ok)
	require.False(t, server.Exists("algotutor:session:sid-bad"))
}

func TestSessionLoginStorageFailureLeavesNoSession(t *testing.T) {
	svc, server := newTestSessionService(t)
	ctx := context.Background()

	server.SetError("storage offline")
	_, err := svc.Login(ctx, "sid-1", testTeacher)
	require.ErrorIs(t, err, ErrSessionUnavailable)

	_, ok := svc.Restore(ctx, "sid-1")
	require.False(t, ok)

	server.SetError("")
	_, ok = svc.Restore(ctx, "sid-1")
	require.False(t, ok)
}

func TestSessionLogout(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "sid-1", testTeacher)
	require.NoError(t, err)

	route, err := svc.Logout(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, RoutePublicHome, route)

	_, ok := svc.Restore(ctx, "sid-1")
	require.False(t, ok)
}

func TestSessionSyncAndRevoke(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "sid-a", testTeacher)
	require.NoError(t, err)
	_, err = svc.Login(ctx, "sid-b", testTeacher)
	require.NoError(t, err)

	updated := testTeacher
	updated.IsApproved = false
	updated.Name = "Ada King"
	svc.Sync(ctx, updated)

	for _, sid := range []string{"sid-a", "sid-b"} {
		restored, ok := svc.Restore(ctx, sid)
		require.True(t, ok)
		require.Equal(t, updated, restored)
	}

	svc.Revoke(ctx, testTeacher.ID)
	for _, sid := range []string{"sid-a", "sid-b"} {
		_, ok := svc.Restore(ctx, sid)
		require.False(t, ok)
	}
}

func TestSessionSyncDoesNotExtendOrRevive(t *testing.T) {
	svc, server := newTestSessionService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "sid-live", testTeacher)
	require.NoError(t, err)
	_, err = svc.Login(ctx, "sid-gone", testTeacher)
	require.NoError(t, err)
	_, err = svc.Logout(ctx, "sid-gone")
	require.NoError(t, err)

	server.FastForward(59 * time.Minute)
	updated := testTeacher
	updated.Bio = "Graph theory"
	svc.Sync(ctx, updated)

	require.Equal(t, time.Minute, server.TTL("algotutor:session:sid-live"))
	restored, ok := svc.Restore(ctx, "sid-live")
	require.True(t, ok)
	require.Equal(t, "Graph theory", restored.Bio)

	_, ok = svc.Restore(ctx, "sid-gone")
	require.False(t, ok)
	require.False(t, server.Exists("algotutor:session:sid-gone"))
}

func TestHomeRoute(t *testing.T) {
	require.Equal(t, RouteAdminHome, HomeRoute(models.Principal{Role: models.RoleAdmin}))
	require.Equal(t, RouteTeacherHome, HomeRoute(models.Principal{Role: models.RoleTeacher}))
}
