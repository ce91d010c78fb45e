package repository

import (
	"context"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LinkRepository interface {
	Exists(ctx context.Context, parentID, studentID uuid.UUID) (bool, error)
	Create(ctx context.Context, link *entity.ParentStudent) error
	Delete(ctx context.Context, parentID, studentID uuid.UUID) (bool, error)
	FindStudents(ctx context.Context, parentID uuid.UUID) ([]entity.User, error)
	FindParents(ctx context.Context, studentID uuid.UUID) ([]entity.User, error)
	FindParentIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error)
	WithTx(tx *gorm.DB) LinkRepository
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) WithTx(tx *gorm.DB) LinkRepository {
	return &linkRepository{db: tx}
}

func (r *linkRepository) Exists(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ParentStudent{}).
		Where("parent_id = ? AND student_id = ?", parentID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *linkRepository) Create(ctx context.Context, link *entity.ParentStudent) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *linkRepository) Delete(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("parent_id = ? AND student_id = ?", parentID, studentID).
		Delete(&entity.ParentStudent{})
	return res.RowsAffected > 0, res.Error
}

func (r *linkRepository) FindStudents(ctx context.Context, parentID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN parent_students ps ON ps.student_id = users.id").
		Where("ps.parent_id = ?", parentID).
		Order("users.name asc").
		Find(&users).Error
	return users, err
}

func (r *linkRepository) FindParents(ctx context.Context, studentID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN parent_students ps ON ps.parent_id = users.id").
		Where("ps.student_id = ?", studentID).
		Order("users.name asc").
		Find(&users).Error
	return users, err
}

func (r *linkRepository) FindParentIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.ParentStudent{}).
		Where("student_id = ?", studentID).
		Pluck("parent_id", &ids).Error
	return ids, err
}
