package repository

import (
	"context"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FinancialPlanRepository interface {
	FindByStudent(ctx context.Context, studentID uuid.UUID, parentID *uuid.UUID) ([]entity.FinancialPlan, error)
	FindByApplicationAndParent(ctx context.Context, applicationID, parentID uuid.UUID) (*entity.FinancialPlan, error)
	Upsert(ctx context.Context, plan *entity.FinancialPlan) error
}

type financialPlanRepository struct {
	db *gorm.DB
}

func NewFinancialPlanRepository(db *gorm.DB) FinancialPlanRepository {
	return &financialPlanRepository{db: db}
}

func (r *financialPlanRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Application").
		Preload("Application.University").
		Preload("Parent", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "role")
		})
}

// FindByStudent returns the plans for every application of studentID. A non-nil parentID
// narrows the result to that parent's plans.
func (r *financialPlanRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, parentID *uuid.UUID) ([]entity.FinancialPlan, error) {
	var plans []entity.FinancialPlan
	query := r.withRelations(ctx).
		Joins("JOIN applications a ON a.id = financial_plans.application_id").
		Where("a.student_id = ?", studentID)
	if parentID != nil {
		query = query.Where("financial_plans.parent_id = ?", *parentID)
	}
	err := query.Order("a.deadline asc, financial_plans.created_at asc").Find(&plans).Error
	return plans, err
}

func (r *financialPlanRepository) FindByApplicationAndParent(ctx context.Context, applicationID, parentID uuid.UUID) (*entity.FinancialPlan, error) {
	var plan entity.FinancialPlan
	err := r.withRelations(ctx).
		Where("application_id = ? AND parent_id = ?", applicationID, parentID).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Upsert writes the plan keyed by (application_id, parent_id). Every amount column is
// overwritten, so omitted amounts become NULL. On conflict the generated id is discarded;
// reload through FindByApplicationAndParent.
func (r *financialPlanRepository) Upsert(ctx context.Context, plan *entity.FinancialPlan) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}, {Name: "parent_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tuition",
			"room_and_board",
			"books_and_supplies",
			"personal_expenses",
			"transportation",
			"other_fees",
			"notes",
			"updated_at",
		}),
	}).Create(plan).Error
}
