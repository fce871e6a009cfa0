package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/policy"
	"github.com/noah-isme/algotutor-api/internal/store"
)

// AvatarStore uploads profile pictures.
type AvatarStore interface {
	StoreAvatar(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (string, error)
}

// DirectoryService manages the teacher and administrator directory.
type DirectoryService interface {
	Register(ctx context.Context, locale i18n.Locale, req dto.RegisterRequest) (models.Principal, error)
	AddTeacher(ctx context.Context, actor models.Principal, locale i18n.Locale, req dto.AddTeacherRequest) (models.Principal, error)
	SetApproval(ctx context.Context, actor models.Principal, id string, approved bool) (models.Principal, bool, error)
	Remove(ctx context.Context, actor models.Principal, id string) error
	Update(ctx context.Context, actor models.Principal, id string, req dto.ProfileUpdateRequest) (models.Principal, bool, error)
	UploadAvatar(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (models.Principal, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
	Authenticate(ctx context.Context, email, password string) (models.Principal, error)
	Find(id string) (models.Principal, bool)
	List(actor models.Principal) ([]models.Principal, error)
	ListApproved() []models.Principal
}

// DirectoryConfig tunes password hashing.
type DirectoryConfig struct {
	HashCost int
}

type directoryService struct {
	state     *store.State
	sessions  SessionService
	avatars   AvatarStore
	catalog   *i18n.Catalog
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	changes   changeNotifier
	hashCost  int
	logger    zerolog.Logger
}

// NewDirectoryService constructs the directory service.
func NewDirectoryService(state *store.State, sessions SessionService, avatars AvatarStore, catalog *i18n.Catalog, validate *validator.Validate, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger, cfg DirectoryConfig) DirectoryService {
	cost := cfg.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger = logger.With().Str("component", "directory_service").Logger()
	return &directoryService{
		state:     state,
		sessions:  sessions,
		avatars:   avatars,
		catalog:   catalog,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		changes:   newChangeNotifier(events, activity, logger),
		hashCost:  cost,
		logger:    logger,
	}
}

func (s *directoryService) Register(ctx context.Context, locale i18n.Locale, req dto.RegisterRequest) (models.Principal, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Principal{}, err
	}

	principal, err := s.create(req.FirstName, req.LastName, req.Email, req.Password, s.catalog.Resolve(locale, "register.defaultBio", nil), false)
	if err != nil {
		s.changes.outcome(collectionPrincipals, "registered", resultRejected)
		return models.Principal{}, err
	}

	s.changes.applied(ctx, models.Principal{}, collectionPrincipals, "registered", principal.ID, dto.NewPrincipalResponse(principal), map[string]interface{}{"email": principal.Email})
	return principal, nil
}

func (s *directoryService) AddTeacher(ctx context.Context, actor models.Principal, locale i18n.Locale, req dto.AddTeacherRequest) (models.Principal, error) {
	if !policy.CanManageDirectory(actor) {
		s.changes.outcome(collectionPrincipals, "added", resultDenied)
		return models.Principal{}, denied("add teacher")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.Principal{}, err
	}

	principal, err := s.create(req.FirstName, req.LastName, req.Email, req.Password, s.catalog.Resolve(locale, "admin.addTeacher.defaultBio", nil), true)
	if err != nil {
		s.changes.outcome(collectionPrincipals, "added", resultRejected)
		return models.Principal{}, err
	}

	s.changes.applied(ctx, actor, collectionPrincipals, "added", principal.ID, dto.NewPrincipalResponse(principal), map[string]interface{}{"email": principal.Email})
	return principal, nil
}

func (s *directoryService) create(firstName, lastName, email, password, bio string, approved bool) (models.Principal, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.Principal{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	principal := models.Principal{
		ID:           id,
		Name:         plainText(s.sanitizer, strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName)),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		Bio:          bio,
		AvatarURL:    avatarPlaceholder(id),
		IsApproved:   approved,
		Role:         models.RoleTeacher,
	}

	err = s.state.Principals.Transact(func(items []models.Principal) ([]models.Principal, error) {
		if emailInUse(items, principal.Email, "") {
			return nil, ErrEmailTaken
		}
		return append(items, principal), nil
	})
	if err != nil {
		return models.Principal{}, err
	}
	return principal, nil
}

// SetApproval reports false for unknown ids and administrator targets, which
// are left untouched.
func (s *directoryService) SetApproval(ctx context.Context, actor models.Principal, id string, approved bool) (models.Principal, bool, error) {
	if !policy.CanManageDirectory(actor) {
		s.changes.outcome(collectionPrincipals, "approval", resultDenied)
		return models.Principal{}, false, denied("change approval")
	}

	target, ok := s.state.Principals.Find(id)
	if !ok || !policy.CanRevokeApproval(actor, target) {
		s.changes.outcome(collectionPrincipals, "approval", resultNoop)
		return models.Principal{}, false, nil
	}

	updated, ok := s.state.Principals.Update(id, func(p *models.Principal) {
		p.IsApproved = approved
	})
	if !ok {
		s.changes.outcome(collectionPrincipals, "approval", resultNoop)
		return models.Principal{}, false, nil
	}

	s.sessions.Sync(ctx, updated)
	s.changes.applied(ctx, actor, collectionPrincipals, "approval", id, dto.NewPrincipalResponse(updated), map[string]interface{}{"approved": approved})
	return updated, true, nil
}

func (s *directoryService) Remove(ctx context.Context, actor models.Principal, id string) error {
	if !policy.CanManageDirectory(actor) {
		s.changes.outcome(collectionPrincipals, "removed", resultDenied)
		return denied("remove principal")
	}

	target, ok := s.state.Principals.Find(id)
	if !ok || !policy.CanDeletePrincipal(actor, target) {
		s.changes.outcome(collectionPrincipals, "removed", resultNoop)
		return nil
	}

	if _, ok := s.state.Principals.Remove(id); !ok {
		s.changes.outcome(collectionPrincipals, "removed", resultNoop)
		return nil
	}

	s.sessions.Revoke(ctx, id)
	s.changes.applied(ctx, actor, collectionPrincipals, "removed", id, nil, nil)
	return nil
}

func (s *directoryService) Update(ctx context.Context, actor models.Principal, id string, req dto.ProfileUpdateRequest) (models.Principal, bool, error) {
	target, found := s.state.Principals.Find(id)
	if !found {
		target = models.Principal{ID: id}
	}
	if !policy.CanUpdateProfile(actor, target) {
		s.changes.outcome(collectionPrincipals, "updated", resultDenied)
		return models.Principal{}, false, denied("update profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.Principal{}, false, err
	}
	if !found {
		s.changes.outcome(collectionPrincipals, "updated", resultNoop)
		return models.Principal{}, false, nil
	}

	changes := models.PrincipalChanges{AvatarURL: req.AvatarURL}
	if req.Name != nil {
		name := plainText(s.sanitizer, *req.Name)
		changes.Name = &name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		changes.Email = &email
	}
	if req.Bio != nil {
		bio := plainText(s.sanitizer, *req.Bio)
		changes.Bio = &bio
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.hashCost)
		if err != nil {
			return models.Principal{}, false, fmt.Errorf("hash password: %w", err)
		}
		encoded := string(hash)
		changes.PasswordHash = &encoded
	}

	updated, applied, err := s.apply(id, changes)
	if err != nil {
		s.changes.outcome(collectionPrincipals, "updated", resultRejected)
		return models.Principal{}, false, err
	}
	if !applied {
		s.changes.outcome(collectionPrincipals, "updated", resultNoop)
		return models.Principal{}, false, nil
	}

	s.sessions.Sync(ctx, updated)
	s.changes.applied(ctx, actor, collectionPrincipals, "updated", id, dto.NewPrincipalResponse(updated), updatedFields(req))
	return updated, true, nil
}

func (s *directoryService) apply(id string, changes models.PrincipalChanges) (models.Principal, bool, error) {
	var (
		updated models.Principal
		applied bool
	)
	err := s.state.Principals.Transact(func(items []models.Principal) ([]models.Principal, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if changes.Email != nil && emailInUse(items, *changes.Email, id) {
				return nil, ErrEmailTaken
			}
			changes.Apply(&items[i])
			updated, applied = items[i], true
			break
		}
		return items, nil
	})
	return updated, applied, err
}

func (s *directoryService) UploadAvatar(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (models.Principal, error) {
	if actor.ID == "" {
		return models.Principal{}, denied("upload avatar")
	}
	url, err := s.avatars.StoreAvatar(ctx, actor, file)
	if err != nil {
		return models.Principal{}, err
	}

	updated, _, err := s.apply(actor.ID, models.PrincipalChanges{AvatarURL: &url})
	if err != nil {
		return models.Principal{}, err
	}

	s.sessions.Sync(ctx, updated)
	s.changes.applied(ctx, actor, collectionPrincipals, "updated", actor.ID, dto.NewPrincipalResponse(updated), map[string]interface{}{"fields": []string{"avatar_url"}})
	return updated, nil
}

func (s *directoryService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, fmt.Errorf("admin email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	admin := models.Principal{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	admin.AvatarURL = avatarPlaceholder(admin.ID)

	created := false
	err = s.state.Principals.Transact(func(items []models.Principal) ([]models.Principal, error) {
		if emailInUse(items, email, "") {
			return items, nil
		}
		created = true
		return append(items, admin), nil
	})
	if err != nil || !created {
		return false, err
	}

	s.changes.applied(ctx, models.Principal{}, collectionPrincipals, "added", admin.ID, nil, map[string]interface{}{"role": string(models.RoleAdmin)})
	return true, nil
}

func (s *directoryService) Authenticate(_ context.Context, email, password string) (models.Principal, error) {
	email = normalizeEmail(email)
	principal, ok := s.state.Principals.FindBy(func(p models.Principal) bool { return p.Email == email })
	if !ok {
		return models.Principal{}, ErrUnknownEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		return models.Principal{}, ErrPasswordIncorrect
	}
	if !principal.IsAdmin() && !principal.IsApproved {
		return models.Principal{}, ErrPendingApproval
	}
	return principal.Public(), nil
}

func (s *directoryService) Find(id string) (models.Principal, bool) {
	principal, ok := s.state.Principals.Find(id)
	return principal.Public(), ok
}

func (s *directoryService) List(actor models.Principal) ([]models.Principal, error) {
	if !policy.CanManageDirectory(actor) {
		return nil, denied("list principals")
	}
	return publicPrincipals(s.state.Principals.All()), nil
}

func (s *directoryService) ListApproved() []models.Principal {
	return publicPrincipals(s.state.Principals.Filter(func(p models.Principal) bool {
		return !p.IsAdmin() && p.IsApproved
	}))
}

func publicPrincipals(items []models.Principal) []models.Principal {
	for i := range items {
		items[i] = items[i].Public()
	}
	return items
}

func emailInUse(items []models.Principal, email, exceptID string) bool {
	for _, item := range items {
		if item.ID != exceptID && item.Email == email {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func avatarPlaceholder(seed string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200", seed)
}

func updatedFields(req dto.ProfileUpdateRequest) map[string]interface{} {
	fields := []string{}
	if req.Name != nil {
		fields = append(fields, "name")
	}
	if req.Email != nil {
		fields = append(fields, "email")
	}
	if req.Bio != nil {
		fields = append(fields, "bio")
	}
	if req.AvatarURL != nil {
		fields = append(fields, "avatar_url")
	}
	if req.Password != nil {
		fields = append(fields, "password")
	}
	return map[string]interface{}{"fields": fields}
}
