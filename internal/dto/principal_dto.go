package dto

import "github.com/noah-isme/algotutor-api/internal/models"

// PrincipalResponse is the client-visible snapshot of a principal.
// Administrators never expose an approval flag.
type PrincipalResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Bio        string `json:"bio"`
	AvatarURL  string `json:"avatar_url"`
	Role       string `json:"role"`
	IsApproved *bool  `json:"is_approved,omitempty"`
}

// NewPrincipalResponse converts a principal into its snapshot.
func NewPrincipalResponse(p models.Principal) PrincipalResponse {
	resp := PrincipalResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Role:      string(p.Role),
	}
	if !p.IsAdmin() {
		approved := p.IsApproved
		resp.IsApproved = &approved
	}
	return resp
}

// NewPrincipalResponseSlice converts a list of principals.
func NewPrincipalResponseSlice(items []models.Principal) []PrincipalResponse {
	out := make([]PrincipalResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewPrincipalResponse(item))
	}
	return out
}

// ProfileUpdateRequest merges profile fields. Role and approval are not
// editable through this form.
type ProfileUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=160"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// ApprovalRequest toggles a teacher's approval flag.
type ApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// TeacherCardResponse is the public directory card. It carries no contact
// details.
type TeacherCardResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// NewTeacherCardSlice converts approved teachers for the public directory.
func NewTeacherCardSlice(items []models.Principal) []TeacherCardResponse {
	out := make([]TeacherCardResponse, 0, len(items))
	for _, item := range items {
		out = append(out, TeacherCardResponse{ID: item.ID, Name: item.Name, Bio: item.Bio, AvatarURL: item.AvatarURL})
	}
	return out
}
