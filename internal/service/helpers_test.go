package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func testCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	catalog, err := i18n.Load()
	require.NoError(t, err)
	return catalog
}

type recordedEvents struct {
	mu     sync.Mutex
	events []dto.Event
}

func (r *recordedEvents) Publish(_ context.Context, event dto.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Collection+"."+event.Action)
	}
	return out
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, repository.KeyValueStore) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, repository.NewRedisStore(client)
}

var (
	testAdmin   = models.Principal{ID: "admin-1", Name: "Root", Email: "admin@algotutor.test", Role: models.RoleAdmin}
	testTeacher = models.Principal{ID: "teacher-1", Name: "Ada Lovelace", Email: "ada@algotutor.test", Role: models.RoleTeacher, IsApproved: true}
	testOther   = models.Principal{ID: "teacher-2", Name: "Alan Turing", Email: "alan@algotutor.test", Role: models.RoleTeacher, IsApproved: true}
	testPending = models.Principal{ID: "teacher-3", Name: "Grace Hopper", Email: "grace@algotutor.test", Role: models.RoleTeacher}
)

func isValidation(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
