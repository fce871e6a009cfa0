package models

import "time"

// UploadedFile describes a teaching file stored in the blob store.
type UploadedFile struct {
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

// UploadChanges carries mergeable upload fields.
type UploadChanges struct {
	FileName   *string
	FileURL    *string
	GradeID    *string
	CategoryID *string
	Semester   *int
	MimeType   *string
	SizeBytes  *int64
}

// Apply merges the non-nil fields into the record.
func (c UploadChanges) Apply(f *UploadedFile) {
	if c.FileName != nil {
		f.FileName = *c.FileName
	}
	if c.FileURL != nil {
		f.FileURL = *c.FileURL
	}
	if c.GradeID != nil {
		f.GradeID = *c.GradeID
	}
	if c.CategoryID != nil {
		f.CategoryID = *c.CategoryID
	}
	if c.Semester != nil {
		f.Semester = *c.Semester
	}
	if c.MimeType != nil {
		f.MimeType = *c.MimeType
	}
	if c.SizeBytes != nil {
		f.SizeBytes = *c.SizeBytes
	}
}
