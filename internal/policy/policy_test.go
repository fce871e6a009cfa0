package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/models"
)

var (
	admin    = models.Principal{ID: "admin-1", Role: models.RoleAdmin}
	teacher  = models.Principal{ID: "teacher-1", Role: models.RoleTeacher, IsApproved: true}
	other    = models.Principal{ID: "teacher-2", Role: models.RoleTeacher, IsApproved: true}
	pending  = models.Principal{ID: "teacher-3", Role: models.RoleTeacher}
	nobody   = models.Principal{}
	everyone = []models.Principal{admin, teacher, other, pending, nobody}
)

func TestCanDeletePrincipalOnlyDependsOnTargetRole(t *testing.T) {
	for _, actor := range everyone {
		for _, target := range everyone {
			require.Equal(t, !target.IsAdmin(), CanDeletePrincipal(actor, target))
			require.Equal(t, !target.IsAdmin(), CanRevokeApproval(actor, target))
		}
	}
}

func TestCanEditUpload(t *testing.T) {
	upload := models.UploadedFile{ID: "f1", TeacherID: teacher.ID}

	require.True(t, CanEditUpload(admin, upload))
	require.True(t, CanEditUpload(teacher, upload))
	require.False(t, CanEditUpload(other, upload))
	require.False(t, CanEditUpload(nobody, models.UploadedFile{}))
}

func TestCanAnswerQuestion(t *testing.T) {
	question := models.Question{ID: "q1", TeacherID: teacher.ID}

	require.True(t, CanAnswerQuestion(admin, question))
	require.True(t, CanAnswerQuestion(teacher, question))
	require.False(t, CanAnswerQuestion(other, question))
	require.False(t, CanAnswerQuestion(nobody, models.Question{}))
}

func TestCanManageContent(t *testing.T) {
	require.True(t, CanManageContent(admin))
	require.True(t, CanManageContent(teacher))
	require.False(t, CanManageContent(pending))
	require.False(t, CanManageContent(nobody))
}

func TestCanUpdateProfile(t *testing.T) {
	require.True(t, CanUpdateProfile(teacher, teacher))
	require.True(t, CanUpdateProfile(admin, teacher))
	require.False(t, CanUpdateProfile(other, teacher))
	require.True(t, CanManageDirectory(admin))
	require.False(t, CanManageDirectory(teacher))
}
