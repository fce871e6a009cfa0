package dto

import (
	"time"

	"github.com/noah-isme/algotutor-api/internal/models"
)

// UploadMetadataRequest files an upload in the catalogue.
type UploadMetadataRequest struct {
	FileName   string `json:"file_name" form:"file_name" validate:"omitempty,max=255"`
	GradeID    string `json:"grade_id" form:"grade_id" validate:"required"`
	CategoryID string `json:"category_id" form:"category_id" validate:"required"`
	Semester   int    `json:"semester" form:"semester" validate:"required,oneof=1 2"`
}

// UploadUpdateRequest merges upload metadata.
type UploadUpdateRequest struct {
	FileName   *string `json:"file_name" form:"file_name" validate:"omitempty,min=1,max=255"`
	GradeID    *string `json:"grade_id" form:"grade_id" validate:"omitempty,min=1"`
	CategoryID *string `json:"category_id" form:"category_id" validate:"omitempty,min=1"`
	Semester   *int    `json:"semester" form:"semester" validate:"omitempty,oneof=1 2"`
}

// UploadFilter narrows the public file listing.
type UploadFilter struct {
	GradeID    string
	CategoryID string
	TeacherID  string
	Semester   int
}

// UploadResponse serializes an uploaded file record.
type UploadResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	GradeID    string    `json:"grade_id"`
	CategoryID string    `json:"category_id"`
	TeacherID  string    `json:"teacher_id"`
	Semester   int       `json:"semester"`
	MimeType   string    `json:"mime_type,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewUploadResponse converts a record.
func NewUploadResponse(f models.UploadedFile) UploadResponse {
	return UploadResponse{
		ID:         f.ID,
		FileName:   f.FileName,
		FileURL:    f.FileURL,
		GradeID:    f.GradeID,
		CategoryID: f.CategoryID,
		TeacherID:  f.TeacherID,
		Semester:   f.Semester,
		MimeType:   f.MimeType,
		SizeBytes:  f.SizeBytes,
		UploadedAt: f.UploadedAt,
	}
}

// NewUploadResponseSlice converts records keeping their order.
func NewUploadResponseSlice(items []models.UploadedFile) []UploadResponse {
	out := make([]UploadResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewUploadResponse(item))
	}
	return out
}

// UploadProgress is pushed to the uploader while bytes are sent.
type UploadProgress struct {
	FileName string `json:"file_name"`
	Percent  int    `json:"percent"`
}
