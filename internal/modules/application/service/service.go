package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/collegetrack/internal/entity"
	access "anoa.com/collegetrack/internal/modules/access/service"
	"anoa.com/collegetrack/internal/modules/application/dto"
	"anoa.com/collegetrack/internal/modules/application/repository"
	"anoa.com/collegetrack/internal/modules/application/workflow"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/logger"
	"anoa.com/collegetrack/pkg/sanitize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UniversityFinder is the slice of the university repository this service needs.
type UniversityFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.University, error)
}

// StatusNotifier is told about every committed status change.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, app *entity.Application, log *entity.ApplicationStatusLog) error
}

type Options struct {
	Tx  repository.TxOptions
	Now func() time.Time
}

type ApplicationService interface {
	ListApplications(ctx context.Context, actor entity.Actor, studentID *uuid.UUID) ([]dto.ApplicationResponse, error)
	CreateApplication(ctx context.Context, actor entity.Actor, req dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	GetApplication(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.ApplicationResponse, error)
	UpdateApplication(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error)
	DeleteApplication(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	GetSummary(ctx context.Context, actor entity.Actor, studentID *uuid.UUID) (*dto.SummaryResponse, error)
}

type applicationService struct {
	repo         repository.ApplicationRepository
	universities UniversityFinder
	access       access.AccessService
	notifier     StatusNotifier
	opts         Options
}

func NewApplicationService(repo repository.ApplicationRepository, universities UniversityFinder, accessService access.AccessService, notifier StatusNotifier, opts Options) ApplicationService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &applicationService{
		repo:         repo,
		universities: universities,
		access:       accessService,
		notifier:     notifier,
		opts:         opts,
	}
}

func (s *applicationService) ListApplications(ctx context.Context, actor entity.Actor, studentID *uuid.UUID) ([]dto.ApplicationResponse, error) {
	target, err := s.resolveStudent(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}

	apps, err := s.repo.FindByStudent(ctx, target)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, toApplicationResponse(&apps[i], actor))
	}
	return out, nil
}

func (s *applicationService) CreateApplication(ctx context.Context, actor entity.Actor, req dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if actor.Role != entity.RoleStudent {
		return nil, fmt.Errorf("only students can create applications: %w", apperror.ErrForbidden)
	}

	universityID, err := uuid.Parse(req.UniversityID)
	if err != nil {
		return nil, fmt.Errorf("invalid university id: %w", apperror.ErrBadRequest)
	}

	appType := entity.ApplicationType(req.ApplicationType)
	if !appType.Valid() {
		return nil, fmt.Errorf("invalid application type %q: %w", req.ApplicationType, apperror.ErrBadRequest)
	}

	deadline, err := s.parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	if _, err := s.universities.FindByID(ctx, universityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("university not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if appType == entity.ApplicationTypeEarlyDecision {
		if err := s.ensureSingleEarlyDecision(ctx, actor.ID, nil); err != nil {
			return nil, err
		}
	}

	app := &entity.Application{
		StudentID:       actor.ID,
		UniversityID:    universityID,
		ApplicationType: appType,
		Deadline:        deadline,
		Status:          entity.StatusNotStarted,
		Notes:           sanitize.Optional(req.Notes),
	}
	for _, t := range entity.DefaultRequirementTypes {
		app.Requirements = append(app.Requirements, entity.ApplicationRequirement{
			RequirementType: t,
			Status:          entity.RequirementNotStarted,
		})
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, app.ID, actor)
}

func (s *applicationService) GetApplication(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ApplicationResponse, error) {
	app, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(ctx, actor, app.StudentID); err != nil {
		return nil, err
	}

	resp := toApplicationResponse(app, actor)
	return &resp, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.ApplicationResponse, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(ctx, actor, app.StudentID); err != nil {
		return nil, err
	}

	from := app.Status
	statusLog, err := workflow.Apply(app, entity.ApplicationStatus(req.Status), actor, sanitize.Optional(req.Reason), s.opts.Now())
	if err != nil {
		return nil, err
	}

	if err := s.persistStatus(ctx, app, from, statusLog); err != nil {
		return nil, err
	}

	updated, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyStatusChange(ctx, updated, statusLog); err != nil {
			logger.Warn().Err(err).Str("application_id", id.String()).Msg("failed to send status notifications")
		}
	}

	resp := toApplicationResponse(updated, actor)
	return &resp, nil
}

// persistStatus writes the status and its log atomically. When the transaction itself fails
// the two writes are retried one after the other, which can leave them out of step.
func (s *applicationService) persistStatus(ctx context.Context, app *entity.Application, from entity.ApplicationStatus, statusLog *entity.ApplicationStatusLog) error {
	txErr := s.repo.Transaction(ctx, s.opts.Tx, func(ctx context.Context, tx repository.ApplicationRepository) error {
		if err := tx.UpdateStatus(ctx, app, from); err != nil {
			return err
		}
		return tx.CreateStatusLog(ctx, statusLog)
	})
	if txErr == nil {
		return nil
	}
	if errors.Is(txErr, apperror.ErrConflict) {
		return txErr
	}

	logger.Warn().Err(txErr).
		Bool("status_fallback", true).
		Str("application_id", app.ID.String()).
		Str("old_status", string(from)).
		Str("new_status", string(app.Status)).
		Msg("status transaction failed, falling back to sequential writes")

	if err := s.repo.UpdateStatus(ctx, app, from); err != nil {
		return err
	}
	if err := s.repo.CreateStatusLog(ctx, statusLog); err != nil {
		logger.Error().Err(err).
			Bool("status_fallback", true).
			Str("application_id", app.ID.String()).
			Msg("status updated without a matching log entry")
		return err
	}
	return nil
}

func (s *applicationService) UpdateApplication(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error) {
	if req.Status != nil {
		return nil, fmt.Errorf("status can only be changed through the status endpoint: %w", apperror.ErrBadRequest)
	}

	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(ctx, actor, app.StudentID); err != nil {
		return nil, err
	}

	if req.ApplicationType != nil {
		appType := entity.ApplicationType(*req.ApplicationType)
		if !appType.Valid() {
			return nil, fmt.Errorf("invalid application type %q: %w", *req.ApplicationType, apperror.ErrBadRequest)
		}
		if appType == entity.ApplicationTypeEarlyDecision {
			if err := s.ensureSingleEarlyDecision(ctx, app.StudentID, &app.ID); err != nil {
				return nil, err
			}
		}
		app.ApplicationType = appType
	}

	if req.Deadline != nil {
		deadline, err := s.parseDeadline(*req.Deadline)
		if err != nil {
			return nil, err
		}
		app.Deadline = deadline
	}

	if req.Notes != nil {
		app.Notes = sanitize.Optional(req.Notes)
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, app.ID, actor)
}

func (s *applicationService) DeleteApplication(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if actor.Role != entity.RoleStudent {
		return fmt.Errorf("only students can delete applications: %w", apperror.ErrUnauthorized)
	}

	app, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	// Someone else's application looks the same as a missing one.
	if app.StudentID != actor.ID {
		return fmt.Errorf("application not found: %w", apperror.ErrNotFound)
	}

	return s.repo.Delete(ctx, id)
}

func (s *applicationService) GetSummary(ctx context.Context, actor entity.Actor, studentID *uuid.UUID) (*dto.SummaryResponse, error) {
	target, err := s.resolveStudent(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}

	apps, err := s.repo.FindByStudent(ctx, target)
	if err != nil {
		return nil, err
	}

	return buildSummary(target, apps, s.opts.Now()), nil
}

// resolveStudent picks whose applications the actor is asking for and checks access to them.
func (s *applicationService) resolveStudent(ctx context.Context, actor entity.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	var target uuid.UUID
	switch actor.Role {
	case entity.RoleStudent:
		target = actor.ID
		if requested != nil && *requested != actor.ID {
			return uuid.Nil, fmt.Errorf("students can only view their own applications: %w", apperror.ErrForbidden)
		}
	case entity.RoleParent:
		if requested == nil {
			return uuid.Nil, fmt.Errorf("studentId is required: %w", apperror.ErrBadRequest)
		}
		target = *requested
	default:
		return uuid.Nil, fmt.Errorf("role %s cannot view applications: %w", actor.Role, apperror.ErrForbidden)
	}

	if err := s.access.Authorize(ctx, actor, target); err != nil {
		return uuid.Nil, err
	}
	return target, nil
}

func (s *applicationService) ensureSingleEarlyDecision(ctx context.Context, studentID uuid.UUID, excludeID *uuid.UUID) error {
	exists, err := s.repo.HasEarlyDecision(ctx, studentID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("student already has an early decision application: %w", apperror.ErrConflict)
	}
	return nil
}

func (s *applicationService) find(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return app, nil
}

func (s *applicationService) findDetail(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	app, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return app, nil
}

func (s *applicationService) loadResponse(ctx context.Context, id uuid.UUID, actor entity.Actor) (*dto.ApplicationResponse, error) {
	app, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toApplicationResponse(app, actor)
	return &resp, nil
}
