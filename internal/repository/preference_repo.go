package repository

import "context"

const localeKeyPrefix = "algotutor:locale:"

// PreferenceRepository persists per-client preferences without expiry.
type PreferenceRepository interface {
	Locale(ctx context.Context, clientID string) (string, error)
	SetLocale(ctx context.Context, clientID, locale string) error
}

type preferenceRepository struct {
	kv KeyValueStore
}

// NewPreferenceRepository constructs a preference repository.
func NewPreferenceRepository(kv KeyValueStore) PreferenceRepository {
	return &preferenceRepository{kv: kv}
}

func (r *preferenceRepository) Locale(ctx context.Context, clientID string) (string, error) {
	return r.kv.Get(ctx, localeKeyPrefix+clientID)
}

func (r *preferenceRepository) SetLocale(ctx context.Context, clientID, locale string) error {
	return r.kv.Set(ctx, localeKeyPrefix+clientID, locale, 0)
}
