package dto

// ResolveResponse is a single resolved translation.
type ResolveResponse struct {
	Key    string `json:"key"`
	Locale string `json:"locale"`
	Value  string `json:"value"`
}

// LocaleRequest stores a locale preference.
type LocaleRequest struct {
	Locale string `json:"locale" validate:"required,oneof=en fr"`
}

// LocaleResponse reports the preference for a client.
type LocaleResponse struct {
	ClientID string `json:"client_id"`
	Locale   string `json:"locale"`
}

// CatalogueEntry is one grade or file category with its localized labels.
type CatalogueEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CatalogueResponse lists the upload catalogue.
type CatalogueResponse struct {
	Locale     string           `json:"locale"`
	Grades     []CatalogueEntry `json:"grades"`
	Categories []CatalogueEntry `json:"categories"`
	Semesters  []int            `json:"semesters"`
}
