package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/attendly-api/internal/models"
	"github.com/attendly/attendly-api/internal/ocr"
	"github.com/attendly/attendly-api/internal/repository"
	"github.com/attendly/attendly-api/internal/timetable"
	appErrors "github.com/attendly/attendly-api/pkg/errors"
)

type timetableCourseRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error)
	SaveBatch(ctx context.Context, creates, updates []models.Course) error
}

type proposalStore interface {
	Save(ctx context.Context, proposal *models.ImportProposal) error
	Find(ctx context.Context, ownerID, id string) (*models.ImportProposal, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type uploadArchive interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (io.ReadCloser, error)
	Delete(filename string) error
}

// TimetableService ingests timetables from OCR images or manual entry and
// reconciles the extracted schedule into the owner's course records.
type TimetableService struct {
	courses   timetableCourseRepository
	proposals proposalStore
	engine    ocr.Engine
	uploads   uploadArchive
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService instance. The metrics
// service may be nil.
func NewTimetableService(courses timetableCourseRepository, proposals proposalStore, engine ocr.Engine, uploads uploadArchive, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableService{
		courses:   courses,
		proposals: proposals,
		engine:    engine,
		uploads:   uploads,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// ImportImage runs OCR over a timetable image, extracts and normalizes the
// schedule, and stages the resulting plan as a proposal awaiting the
// owner's confirmation. Nothing is written to the course records yet.
func (s *TimetableService) ImportImage(ctx context.Context, ownerID string, image []byte, mimeType string) (*models.ImportProposal, error) {
	if len(image) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image payload is empty")
	}

	proposalID := uuid.NewString()
	imagePath := ""
	if s.uploads != nil {
		name := fmt.Sprintf("%s/%s%s", ownerID, proposalID, extensionFor(mimeType))
		saved, err := s.uploads.Save(name, image)
		if err != nil {
			s.logger.Warn("failed to archive uploaded image", zap.Error(err))
		} else {
			imagePath = saved
		}
	}

	text, err := s.engine.Recognize(ctx, image, mimeType)
	s.metrics.RecordRecognition(err == nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRecognitionFailed.Code, appErrors.ErrRecognitionFailed.Status, "image recognition failed")
	}

	candidates := timetable.Parse(text)
	normalized := timetable.Normalize(candidates)
	if len(normalized.Groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyExtraction, "no usable schedule entries extracted from image")
	}

	proposal := &models.ImportProposal{
		ID:        proposalID,
		OwnerID:   ownerID,
		Source:    models.ImportSourceOCR,
		RawText:   text,
		ImagePath: imagePath,
		Groups:    normalized.Groups,
		Warnings:  normalized.Warnings,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.proposals.Save(ctx, proposal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage import proposal")
	}

	s.logger.Info("import proposal staged",
		zap.String("owner_id", ownerID),
		zap.String("proposal_id", proposal.ID),
		zap.Int("subjects", len(proposal.Groups)))
	return proposal, nil
}

// ConfirmProposal commits a staged proposal into the owner's courses. An
// unknown or expired proposal ID is refused without writing anything.
func (s *TimetableService) ConfirmProposal(ctx context.Context, ownerID, proposalID string) (*models.ImportResult, error) {
	proposal, err := s.proposals.Find(ctx, ownerID, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrProposalNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import proposal")
	}

	result, err := s.commit(ctx, ownerID, proposal.Source, proposal.Groups, proposal.Warnings)
	if err != nil {
		return nil, err
	}

	if err := s.proposals.Delete(ctx, ownerID, proposalID); err != nil {
		s.logger.Warn("failed to drop committed proposal", zap.Error(err))
	}
	s.dropArchivedImage(proposal.ImagePath)
	return result, nil
}

// RetryProposal re-runs recognition over the archived image of a staged
// proposal, so a weak first extraction can be retried without a re-upload.
// The refreshed plan replaces the proposal's groups under the same ID; on
// failure the staged proposal is left untouched.
func (s *TimetableService) RetryProposal(ctx context.Context, ownerID, proposalID string) (*models.ImportProposal, error) {
	proposal, err := s.proposals.Find(ctx, ownerID, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrProposalNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import proposal")
	}
	if proposal.ImagePath == "" || s.uploads == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposal has no archived image to retry")
	}

	file, err := s.uploads.Open(proposal.ImagePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open archived image")
	}
	image, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read archived image")
	}

	text, err := s.engine.Recognize(ctx, image, mimeFor(proposal.ImagePath))
	s.metrics.RecordRecognition(err == nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRecognitionFailed.Code, appErrors.ErrRecognitionFailed.Status, "image recognition failed")
	}

	normalized := timetable.Normalize(timetable.Parse(text))
	if len(normalized.Groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyExtraction, "no usable schedule entries extracted from image")
	}

	proposal.RawText = text
	proposal.Groups = normalized.Groups
	proposal.Warnings = normalized.Warnings
	if err := s.proposals.Save(ctx, proposal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restage import proposal")
	}

	s.logger.Info("import proposal retried",
		zap.String("owner_id", ownerID),
		zap.String("proposal_id", proposal.ID),
		zap.Int("subjects", len(proposal.Groups)))
	return proposal, nil
}

// DiscardProposal drops a staged proposal without committing it.
func (s *TimetableService) DiscardProposal(ctx context.Context, ownerID, proposalID string) error {
	proposal, err := s.proposals.Find(ctx, ownerID, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrProposalNotFound, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import proposal")
	}
	if err := s.proposals.Delete(ctx, ownerID, proposalID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to discard import proposal")
	}
	s.dropArchivedImage(proposal.ImagePath)
	return nil
}

// ImportManual reconciles hand-entered schedule rows directly into the
// owner's courses, skipping the review step.
func (s *TimetableService) ImportManual(ctx context.Context, ownerID string, req models.ManualImportRequest) (*models.ImportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manual import payload")
	}

	candidates := make([]models.CandidateSlot, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		if !models.ValidWeekday(entry.Day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown weekday "+entry.Day)
		}
		candidates = append(candidates, models.CandidateSlot{
			Subject:    entry.Name,
			CourseCode: entry.CourseCode,
			Day:        entry.Day,
			StartTime:  entry.StartTime,
			EndTime:    entry.EndTime,
			Location:   entry.Location,
		})
	}

	normalized := timetable.Normalize(candidates)
	if len(normalized.Groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyExtraction, "no usable schedule entries supplied")
	}
	return s.commit(ctx, ownerID, models.ImportSourceManual, normalized.Groups, normalized.Warnings)
}

// commit reconciles subject groups against the owner's existing courses.
// Matching is by identity key: a match merges slot lists and keeps the
// course's professor and target percentage; anything else becomes a new
// course. The whole batch is one transaction.
func (s *TimetableService) commit(ctx context.Context, ownerID, source string, groups []models.SubjectGroup, warnings []string) (*models.ImportResult, error) {
	existing, err := s.courses.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	byKey := make(map[string]*models.Course, len(existing))
	for i := range existing {
		byKey[existing[i].Key()] = &existing[i]
	}

	var creates, updates []models.Course
	for _, group := range groups {
		if current, ok := byKey[group.Key]; ok {
			updated := *current
			updated.Slots = timetable.MergeSlots(current.Slots, group.Slots)
			if group.CourseCode != "" {
				updated.CourseCode = group.CourseCode
			}
			updates = append(updates, updated)
			continue
		}
		creates = append(creates, models.Course{
			OwnerID:          ownerID,
			Name:             group.Name,
			CourseCode:       group.CourseCode,
			Slots:            group.Slots,
			TargetPercentage: models.DefaultTargetPercentage,
		})
	}

	if err := s.courses.SaveBatch(ctx, creates, updates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule batch")
	}

	s.metrics.RecordImportCommit(source)
	s.logger.Info("schedule reconciled",
		zap.String("owner_id", ownerID),
		zap.String("source", source),
		zap.Int("created", len(creates)),
		zap.Int("updated", len(updates)))

	result := &models.ImportResult{
		Created:  len(creates),
		Updated:  len(updates),
		Warnings: warnings,
	}
	result.Courses = append(result.Courses, creates...)
	result.Courses = append(result.Courses, updates...)
	return result, nil
}

// dropArchivedImage removes the archived upload once its proposal is gone.
func (s *TimetableService) dropArchivedImage(imagePath string) {
	if imagePath == "" || s.uploads == nil {
		return
	}
	if err := s.uploads.Delete(imagePath); err != nil {
		s.logger.Warn("failed to delete archived image", zap.String("path", imagePath), zap.Error(err))
	}
}

func mimeFor(imagePath string) string {
	switch filepath.Ext(imagePath) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
