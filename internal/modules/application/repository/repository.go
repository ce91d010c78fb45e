package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxOptions bounds the status transaction: Timeout for the whole unit of work,
// MaxWait for any single lock wait inside it.
type TxOptions struct {
	Timeout time.Duration
	MaxWait time.Duration
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Application, error)
	HasEarlyDecision(ctx context.Context, studentID uuid.UUID, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, app *entity.Application) error
	UpdateStatus(ctx context.Context, app *entity.Application, from entity.ApplicationStatus) error
	CreateStatusLog(ctx context.Context, log *entity.ApplicationStatusLog) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindDueBetween(ctx context.Context, from, to time.Time, statuses []entity.ApplicationStatus) ([]entity.Application, error)
	FindRequirement(ctx context.Context, applicationID, requirementID uuid.UUID) (*entity.ApplicationRequirement, error)
	UpdateRequirement(ctx context.Context, req *entity.ApplicationRequirement) error
	Transaction(ctx context.Context, opts TxOptions, fn func(ctx context.Context, repo ApplicationRepository) error) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *entity.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	var app entity.Application
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("University").
		Preload("Requirements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		Preload("StatusLogs.ChangedByUser", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "role")
		}).
		Preload("FinancialPlans")
}

func (r *applicationRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	var app entity.Application
	if err := r.detailQuery(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Application, error) {
	var apps []entity.Application
	err := r.detailQuery(ctx).
		Where("student_id = ?", studentID).
		Order("deadline asc").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) HasEarlyDecision(ctx context.Context, studentID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Application{}).
		Where("student_id = ? AND application_type = ?", studentID, entity.ApplicationTypeEarlyDecision)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *entity.Application) error {
	return r.db.WithContext(ctx).Model(app).
		Select("application_type", "deadline", "notes", "updated_at").
		Updates(app).Error
}

// UpdateStatus writes the new status only if the row still holds from.
func (r *applicationRepository) UpdateStatus(ctx context.Context, app *entity.Application, from entity.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&entity.Application{}).
		Where("id = ? AND status = ?", app.ID, from).
		Updates(map[string]interface{}{
			"status":         app.Status,
			"submitted_date": app.SubmittedDate,
			"decision_date":  app.DecisionDate,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("application status changed by someone else: %w", apperror.ErrConflict)
	}
	return nil
}

func (r *applicationRepository) CreateStatusLog(ctx context.Context, log *entity.ApplicationStatusLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *applicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("application_id = ?", id).Delete(&entity.ApplicationRequirement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("application_id = ?", id).Delete(&entity.ApplicationStatusLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("application_id = ?", id).Delete(&entity.FinancialPlan{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Application{}, "id = ?", id).Error
	})
}

func (r *applicationRepository) FindDueBetween(ctx context.Context, from, to time.Time, statuses []entity.ApplicationStatus) ([]entity.Application, error) {
	var apps []entity.Application
	err := r.db.WithContext(ctx).
		Preload("University").
		Where("deadline >= ? AND deadline <= ?", from, to).
		Where("status IN ?", statuses).
		Order("deadline asc").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) FindRequirement(ctx context.Context, applicationID, requirementID uuid.UUID) (*entity.ApplicationRequirement, error) {
	var req entity.ApplicationRequirement
	if err := r.db.WithContext(ctx).
		Where("id = ? AND application_id = ?", requirementID, applicationID).
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *applicationRepository) UpdateRequirement(ctx context.Context, req *entity.ApplicationRequirement) error {
	return r.db.WithContext(ctx).Model(req).
		Select("status", "document_url", "notes", "updated_at").
		Updates(req).Error
}

// Transaction runs fn inside one database transaction bounded by opts.
func (r *applicationRepository) Transaction(ctx context.Context, opts TxOptions, fn func(ctx context.Context, repo ApplicationRepository) error) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.MaxWait > 0 {
			// SET LOCAL does not accept bind parameters.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", opts.MaxWait.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(ctx, &applicationRepository{db: tx})
	})
}
