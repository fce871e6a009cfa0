package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/observability"
	"github.com/noah-isme/algotutor-api/internal/policy"
	"github.com/noah-isme/algotutor-api/internal/store"
)

// FileStorage is the blob store contract. onProgress receives 0..100.
type FileStorage interface {
	Upload(ctx context.Context, path string, reader io.Reader, size int64, onProgress func(percent int)) (string, error)
}

// UploadService files teaching documents in the catalogue.
type UploadService interface {
	Upload(ctx context.Context, actor models.Principal, file *multipart.FileHeader, meta dto.UploadMetadataRequest) (models.UploadedFile, error)
	Replace(ctx context.Context, actor models.Principal, id string, file *multipart.FileHeader, req dto.UploadUpdateRequest) (models.UploadedFile, bool, error)
	UpdateMetadata(ctx context.Context, actor models.Principal, id string, req dto.UploadUpdateRequest) (models.UploadedFile, bool, error)
	Delete(ctx context.Context, actor models.Principal, id string) error
	List(filter dto.UploadFilter) []models.UploadedFile
	ListForActor(actor models.Principal) ([]models.UploadedFile, error)
	StoreAvatar(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (string, error)
}

// UploadConfig bounds accepted payloads.
type UploadConfig struct {
	MaxSizeMB int
}

type uploadService struct {
	state     *store.State
	storage   FileStorage
	validator *validator.Validate
	events    EventPublisher
	changes   changeNotifier
	logger    zerolog.Logger
	maxSize   int64
	tracer    trace.Tracer
	now       func() time.Time
}

type preparedFile struct {
	name     string
	mimeType string
	payload  []byte
}

// NewUploadService constructs an upload service.
func NewUploadService(state *store.State, storage FileStorage, validate *validator.Validate, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger, cfg UploadConfig) UploadService {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 20
	}
	logger = logger.With().Str("component", "upload_service").Logger()
	return &uploadService{
		state:     state,
		storage:   storage,
		validator: validate,
		events:    events,
		changes:   newChangeNotifier(events, activity, logger),
		logger:    logger,
		maxSize:   int64(cfg.MaxSizeMB) * 1024 * 1024,
		tracer:    otel.Tracer("github.com/noah-isme/algotutor-api/internal/service/upload"),
		now:       time.Now,
	}
}

func (s *uploadService) Upload(ctx context.Context, actor models.Principal, file *multipart.FileHeader, meta dto.UploadMetadataRequest) (models.UploadedFile, error) {
	ctx, span := s.tracer.Start(ctx, "upload.create", trace.WithAttributes(attribute.String("upload.teacher_id", actor.ID)))
	defer span.End()

	if !policy.CanManageContent(actor) {
		s.changes.outcome(collectionUploads, "created", resultDenied)
		return models.UploadedFile{}, denied("upload file")
	}
	if err := s.validator.Struct(meta); err != nil {
		return models.UploadedFile{}, err
	}
	if !validCatalogue(meta.GradeID, meta.CategoryID, meta.Semester) {
		observability.UploadRejected().WithLabelValues("catalogue").Inc()
		return models.UploadedFile{}, ErrInvalidCatalogue
	}

	prepared, err := s.prepare(span, file, isAllowedDocument)
	if err != nil {
		return models.UploadedFile{}, err
	}

	url, err := s.send(ctx, span, actor, "uploads", prepared)
	if err != nil {
		return models.UploadedFile{}, err
	}

	record := models.UploadedFile{
		ID:         uuid.NewString(),
		FileName:   displayName(meta.FileName, file.Filename),
		FileURL:    url,
		GradeID:    meta.GradeID,
		CategoryID: meta.CategoryID,
		TeacherID:  actor.ID,
		Semester:   meta.Semester,
		MimeType:   prepared.mimeType,
		SizeBytes:  int64(len(prepared.payload)),
		UploadedAt: s.now().UTC(),
	}
	s.state.Uploads.Prepend(record)

	span.SetStatus(codes.Ok, "stored")
	s.changes.applied(ctx, actor, collectionUploads, "created", record.ID, dto.NewUploadResponse(record), map[string]interface{}{"file_name": record.FileName, "grade_id": record.GradeID})
	return record, nil
}

func (s *uploadService) Replace(ctx context.Context, actor models.Principal, id string, file *multipart.FileHeader, req dto.UploadUpdateRequest) (models.UploadedFile, bool, error) {
	ctx, span := s.tracer.Start(ctx, "upload.replace", trace.WithAttributes(attribute.String("upload.id", id)))
	defer span.End()

	existing, ok := s.state.Uploads.Find(id)
	if !ok {
		s.changes.outcome(collectionUploads, "updated", resultNoop)
		return models.UploadedFile{}, false, nil
	}
	if !policy.CanEditUpload(actor, existing) {
		s.changes.outcome(collectionUploads, "updated", resultDenied)
		return models.UploadedFile{}, false, denied("replace upload")
	}
	changes, err := s.metadataChanges(existing, req)
	if err != nil {
		return models.UploadedFile{}, false, err
	}

	prepared, err := s.prepare(span, file, isAllowedDocument)
	if err != nil {
		return models.UploadedFile{}, false, err
	}
	url, err := s.send(ctx, span, actor, "uploads", prepared)
	if err != nil {
		return models.UploadedFile{}, false, err
	}

	size := int64(len(prepared.payload))
	changes.FileURL = &url
	changes.MimeType = &prepared.mimeType
	changes.SizeBytes = &size
	if changes.FileName == nil {
		name := displayName("", file.Filename)
		changes.FileName = &name
	}

	return s.commitUpdate(ctx, actor, id, changes, "replaced")
}

func (s *uploadService) UpdateMetadata(ctx context.Context, actor models.Principal, id string, req dto.UploadUpdateRequest) (models.UploadedFile, bool, error) {
	existing, ok := s.state.Uploads.Find(id)
	if !ok {
		s.changes.outcome(collectionUploads, "updated", resultNoop)
		return models.UploadedFile{}, false, nil
	}
	if !policy.CanEditUpload(actor, existing) {
		s.changes.outcome(collectionUploads, "updated", resultDenied)
		return models.UploadedFile{}, false, denied("update upload")
	}
	changes, err := s.metadataChanges(existing, req)
	if err != nil {
		return models.UploadedFile{}, false, err
	}
	return s.commitUpdate(ctx, actor, id, changes, "updated")
}

func (s *uploadService) Delete(ctx context.Context, actor models.Principal, id string) error {
	existing, ok := s.state.Uploads.Find(id)
	if !ok {
		s.changes.outcome(collectionUploads, "deleted", resultNoop)
		return nil
	}
	if !policy.CanEditUpload(actor, existing) {
		s.changes.outcome(collectionUploads, "deleted", resultDenied)
		return denied("delete upload")
	}

	if _, removed := s.state.Uploads.Remove(id); !removed {
		s.changes.outcome(collectionUploads, "deleted", resultNoop)
		return nil
	}
	s.changes.applied(ctx, actor, collectionUploads, "deleted", id, nil, map[string]interface{}{"file_name": existing.FileName})
	return nil
}

func (s *uploadService) List(filter dto.UploadFilter) []models.UploadedFile {
	return s.state.Uploads.Filter(func(f models.UploadedFile) bool {
		if filter.GradeID != "" && f.GradeID != filter.GradeID {
			return false
		}
		if filter.CategoryID != "" && f.CategoryID != filter.CategoryID {
			return false
		}
		if filter.TeacherID != "" && f.TeacherID != filter.TeacherID {
			return false
		}
		if filter.Semester != 0 && f.Semester != filter.Semester {
			return false
		}
		return true
	})
}

func (s *uploadService) ListForActor(actor models.Principal) ([]models.UploadedFile, error) {
	if actor.ID == "" {
		return nil, denied("list own uploads")
	}
	if actor.IsAdmin() {
		return s.state.Uploads.All(), nil
	}
	return s.List(dto.UploadFilter{TeacherID: actor.ID}), nil
}

// StoreAvatar uploads a profile picture and returns its URL. Only images
// are accepted.
func (s *uploadService) StoreAvatar(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (string, error) {
	ctx, span := s.tracer.Start(ctx, "upload.avatar", trace.WithAttributes(attribute.String("upload.teacher_id", actor.ID)))
	defer span.End()

	prepared, err := s.prepare(span, file, isImage)
	if err != nil {
		return "", err
	}
	return s.send(ctx, span, actor, "avatars", prepared)
}

func (s *uploadService) metadataChanges(existing models.UploadedFile, req dto.UploadUpdateRequest) (models.UploadChanges, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.UploadChanges{}, err
	}

	changes := models.UploadChanges{
		FileName:   trimmedPtr(req.FileName),
		GradeID:    trimmedPtr(req.GradeID),
		CategoryID: trimmedPtr(req.CategoryID),
		Semester:   req.Semester,
	}

	merged := existing
	changes.Apply(&merged)
	if !validCatalogue(merged.GradeID, merged.CategoryID, merged.Semester) {
		observability.UploadRejected().WithLabelValues("catalogue").Inc()
		return models.UploadChanges{}, ErrInvalidCatalogue
	}
	return changes, nil
}

func (s *uploadService) commitUpdate(ctx context.Context, actor models.Principal, id string, changes models.UploadChanges, action string) (models.UploadedFile, bool, error) {
	updated, ok := s.state.Uploads.Update(id, func(f *models.UploadedFile) {
		changes.Apply(f)
	})
	if !ok {
		s.changes.outcome(collectionUploads, "updated", resultNoop)
		return models.UploadedFile{}, false, nil
	}

	s.changes.applied(ctx, actor, collectionUploads, "updated", id, dto.NewUploadResponse(updated), map[string]interface{}{"file_name": updated.FileName, "change": action})
	return updated, true, nil
}

func (s *uploadService) prepare(span trace.Span, file *multipart.FileHeader, allowed func(string) bool) (preparedFile, error) {
	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))
	if file == nil {
		span.SetAttributes(attribute.Bool("upload.file_present", false))
		span.SetStatus(codes.Error, "validation failed")
		return preparedFile{}, ErrFileRequired
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		return preparedFile{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return preparedFile{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return preparedFile{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return preparedFile{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	detected := mimetype.Detect(buf.Bytes())
	mimeType := strings.ToLower(detected.String())
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	span.SetAttributes(attribute.String("upload.detected_mime", mimeType))
	if !allowed(mimeType) {
		return preparedFile{}, s.reject(span, "type", ErrUploadTypeNotAllowed)
	}

	if err := s.scan(buf.Bytes(), mimeType); err != nil {
		return preparedFile{}, s.reject(span, "scan", err)
	}

	return preparedFile{
		name:     sanitizeFileName(file.Filename, detected.Extension()),
		mimeType: mimeType,
		payload:  buf.Bytes(),
	}, nil
}

// send hands the payload to the blob store under
// <folder>/<teacherID>/<unix>_<name>, relaying progress to the uploader.
func (s *uploadService) send(ctx context.Context, span trace.Span, actor models.Principal, folder string, file preparedFile) (string, error) {
	path := fmt.Sprintf("%s/%s/%d_%s", folder, actor.ID, s.now().Unix(), file.name)
	span.SetAttributes(
		attribute.String("upload.path", path),
		attribute.Int64("upload.size_bytes", int64(len(file.payload))),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	last := -1
	url, err := s.storage.Upload(ctx, path, bytes.NewReader(file.payload), int64(len(file.payload)), func(percent int) {
		if percent == last {
			return
		}
		last = percent
		s.progress(ctx, actor.ID, file.name, percent)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("blob upload failed")
		return "", s.reject(span, "storage", fmt.Errorf("%w: %v", ErrUploadFailed, err))
	}
	return url, nil
}

func (s *uploadService) progress(ctx context.Context, uploaderID, name string, percent int) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, dto.Event{
		Collection: collectionUploads,
		Action:     "progress",
		Audience:   uploaderID,
		Data:       dto.UploadProgress{FileName: name, Percent: percent},
		OccurredAt: time.Now().UTC(),
	})
}

func (s *uploadService) reject(span trace.Span, reason string, err error) error {
	observability.UploadRejected().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	return err
}

func (s *uploadService) scan(payload []byte, mime string) error {
	if !strings.Contains(mime, "zip") {
		return nil
	}
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ErrUploadScanFailed
	}
	var totalUncompressed uint64
	for _, f := range reader.File {
		totalUncompressed += f.UncompressedSize64
		if totalUncompressed > uint64(s.maxSize*20) {
			return fmt.Errorf("zip archive uncompressed size too large: %w", ErrUploadScanFailed)
		}
	}
	return nil
}

func validCatalogue(gradeID, categoryID string, semester int) bool {
	if !models.IsKnownGrade(gradeID) || !models.IsKnownCategory(categoryID) {
		return false
	}
	for _, allowed := range models.Semesters {
		if semester == allowed {
			return true
		}
	}
	return false
}

func displayName(requested, original string) string {
	if name := strings.TrimSpace(requested); name != "" {
		return name
	}
	if name := strings.TrimSpace(filepath.Base(original)); name != "" && name != "." {
		return name
	}
	return "file"
}

func sanitizeFileName(name, detectedExt string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "upload"
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = detectedExt
	}
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func isAllowedDocument(mime string) bool {
	if isImage(mime) {
		return true
	}
	switch mime {
	case "application/pdf",
		"application/zip",
		"application/x-zip-compressed",
		"application/msword",
		"application/vnd.ms-excel",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return true
	default:
		return false
	}
}

func isImage(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

var _ AvatarStore = (*uploadService)(nil)
