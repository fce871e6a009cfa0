package service

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is matched by every PermissionDeniedError.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSlugTaken indicates another record already uses the slug.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrEmailTaken indicates another principal already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnknownEmail indicates no principal matches the login email.
	ErrUnknownEmail = errors.New("no account for this email")
	// ErrPasswordIncorrect indicates the password does not match.
	ErrPasswordIncorrect = errors.New("password incorrect")
	// ErrPendingApproval indicates the teacher has not been approved yet.
	ErrPendingApproval = errors.New("account pending approval")
	// ErrUnknownTeacher indicates a question targets no approved teacher.
	ErrUnknownTeacher = errors.New("unknown teacher")
	// ErrQuestionNotAnswered indicates an unanswered question cannot be pinned.
	ErrQuestionNotAnswered = errors.New("question has not been answered")
	// ErrQuestionEmpty indicates the question has no text left once sanitised.
	ErrQuestionEmpty = errors.New("question text empty after sanitization")
	// ErrAnswerEmpty indicates the answer has no text left once sanitised.
	ErrAnswerEmpty = errors.New("answer text empty after sanitization")
	// ErrSessionUnavailable indicates session storage could not be written.
	ErrSessionUnavailable = errors.New("session storage unavailable")
	// ErrUnsupportedLocale indicates a locale outside en/fr.
	ErrUnsupportedLocale = errors.New("unsupported locale")
	// ErrClientIDRequired indicates a preference call without a client id.
	ErrClientIDRequired = errors.New("client id is required")
	// ErrInvalidCatalogue indicates an unknown grade, category or semester.
	ErrInvalidCatalogue = errors.New("unknown grade, category or semester")
	// ErrFileRequired indicates the multipart file is missing.
	ErrFileRequired = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadScanFailed indicates validation of the file failed.
	ErrUploadScanFailed = errors.New("file scanning failed")
	// ErrUploadFailed wraps transport errors from the blob store.
	ErrUploadFailed = errors.New("upload failed")
)

// PermissionDeniedError reports which action the actor was not allowed to run.
type PermissionDeniedError struct {
	Action string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Action)
}

// Is lets errors.Is match ErrPermissionDenied.
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func denied(action string) error {
	return &PermissionDeniedError{Action: action}
}
