package financialplan

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/collegetrack/internal/entity"
	access "anoa.com/collegetrack/internal/modules/access/service"
	"anoa.com/collegetrack/internal/modules/financialplan/dto"
	"anoa.com/collegetrack/internal/modules/financialplan/repository"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApplicationFinder resolves the application a plan belongs to.
type ApplicationFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
}

type FinancialPlanService interface {
	ListPlans(ctx context.Context, actor entity.Actor, studentID uuid.UUID) ([]dto.FinancialPlanResponse, error)
	UpsertPlan(ctx context.Context, actor entity.Actor, req dto.UpsertFinancialPlanRequest) (*dto.FinancialPlanResponse, error)
}

type financialPlanService struct {
	repo         repository.FinancialPlanRepository
	applications ApplicationFinder
	access       access.AccessService
}

func NewFinancialPlanService(repo repository.FinancialPlanRepository, applications ApplicationFinder, accessService access.AccessService) FinancialPlanService {
	return &financialPlanService{
		repo:         repo,
		applications: applications,
		access:       accessService,
	}
}

// ListPlans returns the plans for a student's applications. Parents only see the plans
// they wrote themselves.
func (s *financialPlanService) ListPlans(ctx context.Context, actor entity.Actor, studentID uuid.UUID) ([]dto.FinancialPlanResponse, error) {
	if err := s.access.Authorize(ctx, actor, studentID); err != nil {
		return nil, err
	}

	var parentID *uuid.UUID
	if actor.Role == entity.RoleParent {
		parentID = &actor.ID
	}

	plans, err := s.repo.FindByStudent(ctx, studentID, parentID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.FinancialPlanResponse, 0, len(plans))
	for i := range plans {
		resp = append(resp, *toResponse(&plans[i]))
	}
	return resp, nil
}

func (s *financialPlanService) UpsertPlan(ctx context.Context, actor entity.Actor, req dto.UpsertFinancialPlanRequest) (*dto.FinancialPlanResponse, error) {
	if actor.Role != entity.RoleParent {
		return nil, fmt.Errorf("only parents can manage financial plans: %w", apperror.ErrForbidden)
	}

	applicationID, err := uuid.Parse(req.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", apperror.ErrBadRequest)
	}

	amounts := []*decimal.Decimal{
		req.Tuition,
		req.RoomAndBoard,
		req.BooksAndSupplies,
		req.PersonalExpenses,
		req.Transportation,
		req.OtherFees,
	}
	for _, amount := range amounts {
		if amount != nil && amount.IsNegative() {
			return nil, fmt.Errorf("amounts cannot be negative: %w", apperror.ErrBadRequest)
		}
	}

	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.access.Authorize(ctx, actor, app.StudentID); err != nil {
		return nil, err
	}

	plan := &entity.FinancialPlan{
		ApplicationID:    applicationID,
		ParentID:         actor.ID,
		Tuition:          toNull(req.Tuition),
		RoomAndBoard:     toNull(req.RoomAndBoard),
		BooksAndSupplies: toNull(req.BooksAndSupplies),
		PersonalExpenses: toNull(req.PersonalExpenses),
		Transportation:   toNull(req.Transportation),
		OtherFees:        toNull(req.OtherFees),
		Notes:            sanitize.Optional(req.Notes),
	}
	if err := s.repo.Upsert(ctx, plan); err != nil {
		return nil, err
	}

	saved, err := s.repo.FindByApplicationAndParent(ctx, applicationID, actor.ID)
	if err != nil {
		return nil, err
	}
	return toResponse(saved), nil
}

// toNull stores zero and absent amounts as NULL.
func toNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil || d.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(2))
}

func fromNull(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toResponse(plan *entity.FinancialPlan) *dto.FinancialPlanResponse {
	resp := &dto.FinancialPlanResponse{
		ID:               plan.ID,
		ApplicationID:    plan.ApplicationID,
		ParentID:         plan.ParentID,
		Tuition:          fromNull(plan.Tuition),
		RoomAndBoard:     fromNull(plan.RoomAndBoard),
		BooksAndSupplies: fromNull(plan.BooksAndSupplies),
		PersonalExpenses: fromNull(plan.PersonalExpenses),
		Transportation:   fromNull(plan.Transportation),
		OtherFees:        fromNull(plan.OtherFees),
		TotalCost:        plan.TotalCost(),
		Notes:            plan.Notes,
		UpdatedAt:        plan.UpdatedAt,
	}
	if plan.Application != nil {
		resp.Application = &dto.PlanApplication{
			ID:       plan.Application.ID,
			Deadline: plan.Application.Deadline,
		}
		if u := plan.Application.University; u != nil {
			resp.Application.UniversityName = u.Name
			resp.Application.Country = u.Country
		}
	}
	if plan.Parent != nil {
		resp.Parent = &dto.PlanParent{
			ID:    plan.Parent.ID,
			Name:  plan.Parent.Name,
			Email: plan.Parent.Email,
		}
	}
	return resp
}
