package repository

import (
	"context"
	"strings"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows the university list. A non-nil IDs restricts the result to those ids,
// so an empty non-nil slice matches nothing.
type Filter struct {
	Name              string
	Country           string
	MinRanking        *int
	MaxRanking        *int
	MinAcceptanceRate *float64
	MaxAcceptanceRate *float64
	IDs               []uuid.UUID
}

type UniversityRepository interface {
	FindAll(ctx context.Context, filter Filter) ([]entity.University, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.University, error)
	FindBySlug(ctx context.Context, slug string) (*entity.University, error)
	UpsertBySlug(ctx context.Context, university *entity.University) error
}

type universityRepository struct {
	db *gorm.DB
}

func NewUniversityRepository(db *gorm.DB) UniversityRepository {
	return &universityRepository{db: db}
}

func (r *universityRepository) FindAll(ctx context.Context, filter Filter) ([]entity.University, error) {
	var universities []entity.University
	query := r.db.WithContext(ctx).Model(&entity.University{})

	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return universities, nil
		}
		query = query.Where("id IN ?", filter.IDs)
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("name ILIKE ?", "%"+escapeLike(name)+"%")
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.MinRanking != nil {
		query = query.Where("us_news_ranking >= ?", *filter.MinRanking)
	}
	if filter.MaxRanking != nil {
		query = query.Where("us_news_ranking <= ?", *filter.MaxRanking)
	}
	if filter.MinAcceptanceRate != nil {
		query = query.Where("acceptance_rate >= ?", *filter.MinAcceptanceRate)
	}
	if filter.MaxAcceptanceRate != nil {
		query = query.Where("acceptance_rate <= ?", *filter.MaxAcceptanceRate)
	}

	err := query.Order("us_news_ranking asc nulls last").Order("name asc").Find(&universities).Error
	return universities, err
}

func (r *universityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.University, error) {
	var university entity.University
	if err := r.db.WithContext(ctx).First(&university, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &university, nil
}

func (r *universityRepository) FindBySlug(ctx context.Context, slug string) (*entity.University, error) {
	var university entity.University
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&university).Error; err != nil {
		return nil, err
	}
	return &university, nil
}

// UpsertBySlug inserts the university or leaves an existing row with the same slug
// untouched, then loads the stored row into university.
func (r *universityRepository) UpsertBySlug(ctx context.Context, university *entity.University) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(university).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("slug = ?", university.Slug).First(university).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
