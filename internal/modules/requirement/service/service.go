package requirement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/collegetrack/internal/entity"
	access "anoa.com/collegetrack/internal/modules/access/service"
	"anoa.com/collegetrack/internal/modules/requirement/dto"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/logger"
	"anoa.com/collegetrack/pkg/sanitize"
	"anoa.com/collegetrack/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxDocumentSize = 10 << 20

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store is implemented by the application repository.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	FindRequirement(ctx context.Context, applicationID, requirementID uuid.UUID) (*entity.ApplicationRequirement, error)
	UpdateRequirement(ctx context.Context, req *entity.ApplicationRequirement) error
}

type RequirementService interface {
	UpdateRequirement(ctx context.Context, actor entity.Actor, applicationID, requirementID uuid.UUID, req dto.UpdateRequirementRequest) (*dto.RequirementResponse, error)
	UploadDocument(ctx context.Context, actor entity.Actor, applicationID, requirementID uuid.UUID, file dto.DocumentFile) (*dto.RequirementResponse, error)
}

type requirementService struct {
	store   Store
	access  access.AccessService
	storage storage.DocumentStorage
}

func NewRequirementService(store Store, accessService access.AccessService, documentStorage storage.DocumentStorage) RequirementService {
	return &requirementService{
		store:   store,
		access:  accessService,
		storage: documentStorage,
	}
}

func (s *requirementService) UpdateRequirement(ctx context.Context, actor entity.Actor, applicationID, requirementID uuid.UUID, req dto.UpdateRequirementRequest) (*dto.RequirementResponse, error) {
	status := entity.RequirementStatus(req.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("invalid requirement status %q: %w", req.Status, apperror.ErrBadRequest)
	}

	item, err := s.load(ctx, actor, applicationID, requirementID)
	if err != nil {
		return nil, err
	}

	item.Status = status
	if req.Notes != nil {
		item.Notes = sanitize.Optional(req.Notes)
	}

	if err := s.store.UpdateRequirement(ctx, item); err != nil {
		return nil, err
	}
	return toResponse(item), nil
}

func (s *requirementService) UploadDocument(ctx context.Context, actor entity.Actor, applicationID, requirementID uuid.UUID, file dto.DocumentFile) (*dto.RequirementResponse, error) {
	if s.storage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "document uploads are not configured", storage.ErrNotConfigured)
	}
	if file.Size > MaxDocumentSize {
		return nil, fmt.Errorf("document is larger than 10MB: %w", apperror.ErrBadRequest)
	}
	ext := strings.ToLower(filepath.Ext(file.FileName))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("unsupported document type %q: %w", ext, apperror.ErrBadRequest)
	}

	item, err := s.load(ctx, actor, applicationID, requirementID)
	if err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("applications/%s", applicationID)
	url, err := s.storage.UploadDocument(ctx, file.Reader, folder, file.FileName)
	if err != nil {
		return nil, err
	}

	previous := item.DocumentURL
	item.DocumentURL = &url
	if item.Status == entity.RequirementNotStarted {
		item.Status = entity.RequirementInProgress
	}

	if err := s.store.UpdateRequirement(ctx, item); err != nil {
		if delErr := s.storage.DeleteDocument(ctx, url); delErr != nil {
			logger.Warn().Err(delErr).Str("url", url).Msg("failed to remove orphaned document")
		}
		return nil, err
	}

	if previous != nil && *previous != "" {
		if err := s.storage.DeleteDocument(ctx, *previous); err != nil {
			logger.Warn().Err(err).Str("url", *previous).Msg("failed to remove replaced document")
		}
	}

	return toResponse(item), nil
}

func (s *requirementService) load(ctx context.Context, actor entity.Actor, applicationID, requirementID uuid.UUID) (*entity.ApplicationRequirement, error) {
	app, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.access.Authorize(ctx, actor, app.StudentID); err != nil {
		return nil, err
	}

	item, err := s.store.FindRequirement(ctx, applicationID, requirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("requirement not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func toResponse(item *entity.ApplicationRequirement) *dto.RequirementResponse {
	return &dto.RequirementResponse{
		ID:              item.ID,
		ApplicationID:   item.ApplicationID,
		RequirementType: item.RequirementType,
		Status:          item.Status,
		DocumentURL:     item.DocumentURL,
		Notes:           item.Notes,
		UpdatedAt:       item.UpdatedAt,
	}
}
