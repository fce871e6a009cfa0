// Package policy holds the authorization predicates consulted by every
// mutating service call.
package policy

import "github.com/noah-isme/algotutor-api/internal/models"

// CanDeletePrincipal forbids deleting administrators.
func CanDeletePrincipal(_ models.Principal, target models.Principal) bool {
	return !target.IsAdmin()
}

// CanRevokeApproval forbids touching an administrator's approval flag.
func CanRevokeApproval(_ models.Principal, target models.Principal) bool {
	return !target.IsAdmin()
}

// CanEditUpload allows administrators and the owning teacher.
func CanEditUpload(actor models.Principal, upload models.UploadedFile) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == upload.TeacherID)
}

// CanAnswerQuestion allows administrators and the addressed teacher.
func CanAnswerQuestion(actor models.Principal, question models.Question) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == question.TeacherID)
}

// CanManageDirectory allows administrators only.
func CanManageDirectory(actor models.Principal) bool {
	return actor.IsAdmin()
}

// CanManageContent allows administrators and approved teachers.
func CanManageContent(actor models.Principal) bool {
	if actor.ID == "" {
		return false
	}
	return actor.IsAdmin() || (actor.Role == models.RoleTeacher && actor.IsApproved)
}

// CanUpdateProfile allows a principal to edit itself, and administrators to
// edit anyone.
func CanUpdateProfile(actor models.Principal, target models.Principal) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == target.ID)
}
