package university

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/internal/modules/university/dto"
	"anoa.com/collegetrack/internal/modules/university/repository"
	"anoa.com/collegetrack/internal/modules/university/search"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const searchLimit = 200

type UniversityService interface {
	ListUniversities(ctx context.Context, query dto.UniversityQuery) ([]dto.UniversityResponse, error)
	GetUniversity(ctx context.Context, idOrSlug string) (*dto.UniversityResponse, error)
	Reindex(ctx context.Context) (int, error)
}

type universityService struct {
	repo  repository.UniversityRepository
	index search.Index
}

// NewUniversityService builds the catalogue service. index may be nil, in which case search
// falls back to a name match in SQL.
func NewUniversityService(repo repository.UniversityRepository, index search.Index) UniversityService {
	return &universityService{repo: repo, index: index}
}

func (s *universityService) ListUniversities(ctx context.Context, query dto.UniversityQuery) ([]dto.UniversityResponse, error) {
	if query.MinRanking != nil && query.MaxRanking != nil && *query.MinRanking > *query.MaxRanking {
		return nil, fmt.Errorf("minRanking cannot exceed maxRanking: %w", apperror.ErrBadRequest)
	}
	if query.MinAcceptanceRate != nil && query.MaxAcceptanceRate != nil && *query.MinAcceptanceRate > *query.MaxAcceptanceRate {
		return nil, fmt.Errorf("minAcceptanceRate cannot exceed maxAcceptanceRate: %w", apperror.ErrBadRequest)
	}

	filter := repository.Filter{
		Country:           strings.TrimSpace(query.Country),
		MinRanking:        query.MinRanking,
		MaxRanking:        query.MaxRanking,
		MinAcceptanceRate: query.MinAcceptanceRate,
		MaxAcceptanceRate: query.MaxAcceptanceRate,
	}

	term := strings.TrimSpace(query.Search)
	if term != "" {
		if s.index != nil {
			ids, err := s.index.Search(ctx, term, searchLimit)
			if err != nil {
				logger.Warn().Err(err).Str("search", term).Msg("search index unavailable, using name match")
				filter.Name = term
			} else {
				filter.IDs = ids
			}
		} else {
			filter.Name = term
		}
	}

	universities, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.UniversityResponse, 0, len(universities))
	for i := range universities {
		resp = append(resp, *toResponse(&universities[i]))
	}
	return resp, nil
}

func (s *universityService) GetUniversity(ctx context.Context, idOrSlug string) (*dto.UniversityResponse, error) {
	var (
		university *entity.University
		err        error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		university, err = s.repo.FindByID(ctx, id)
	} else {
		university, err = s.repo.FindBySlug(ctx, strings.ToLower(idOrSlug))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("university not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return toResponse(university), nil
}

// Reindex pushes every university to the search index and returns how many were sent.
func (s *universityService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, apperror.New(http.StatusServiceUnavailable, "search index is not configured", apperror.ErrInternal)
	}

	universities, err := s.repo.FindAll(ctx, repository.Filter{})
	if err != nil {
		return 0, err
	}
	if err := s.index.IndexUniversities(ctx, universities); err != nil {
		return 0, err
	}
	return len(universities), nil
}

func fromNull(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toResponse(u *entity.University) *dto.UniversityResponse {
	return &dto.UniversityResponse{
		ID:                u.ID,
		Slug:              u.Slug,
		Name:              u.Name,
		Country:           u.Country,
		State:             u.State,
		City:              u.City,
		USNewsRanking:     u.USNewsRanking,
		AcceptanceRate:    u.AcceptanceRate,
		ApplicationSystem: u.ApplicationSystem,
		TuitionInState:    fromNull(u.TuitionInState),
		TuitionOutState:   fromNull(u.TuitionOutState),
		ApplicationFee:    fromNull(u.ApplicationFee),
		Deadlines:         u.Deadlines.Data(),
		Requirements:      u.Requirements.Data(),
		UpdatedAt:         u.UpdatedAt,
	}
}
