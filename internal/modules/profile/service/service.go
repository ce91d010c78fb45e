package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/collegetrack/internal/entity"
	profileDto "anoa.com/collegetrack/internal/modules/profile/dto"
	userDto "anoa.com/collegetrack/internal/modules/user/dto"
	userRepo "anoa.com/collegetrack/internal/modules/user/repository"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/logger"
	"anoa.com/collegetrack/pkg/sanitize"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetProfile(ctx context.Context, actor entity.Actor) (*userDto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor entity.Actor, input profileDto.UpdateProfileInput) (*userDto.UserResponse, error)
}

type profileService struct {
	repo userRepo.UserRepository
}

func NewProfileService(repo userRepo.UserRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) GetProfile(ctx context.Context, actor entity.Actor) (*userDto.UserResponse, error) {
	user, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	return userDto.ToUserResponse(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, actor entity.Actor, input profileDto.UpdateProfileInput) (*userDto.UserResponse, error) {
	if err := validateRanges(input); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", apperror.ErrBadRequest)
		}
		user.Name = name
	}
	user.GraduationYear = input.GraduationYear
	user.GPA = input.GPA
	user.SATScore = input.SATScore
	user.ACTScore = input.ACTScore
	user.TargetCountries = cleanList(input.TargetCountries)
	user.IntendedMajors = cleanList(input.IntendedMajors)

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	logger.Info().Str("user_id", user.ID.String()).Msg("student profile updated")
	return userDto.ToUserResponse(user), nil
}

func (s *profileService) load(ctx context.Context, actor entity.Actor) (*entity.User, error) {
	if actor.Role != entity.RoleStudent {
		return nil, fmt.Errorf("only students have an academic profile: %w", apperror.ErrForbidden)
	}

	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// validateRanges repeats the binding checks for callers that skip gin binding.
func validateRanges(input profileDto.UpdateProfileInput) error {
	if y := input.GraduationYear; y != nil && (*y < 2020 || *y > 2030) {
		return fmt.Errorf("graduationYear must be between 2020 and 2030: %w", apperror.ErrBadRequest)
	}
	if g := input.GPA; g != nil && (*g < 0 || *g > 4) {
		return fmt.Errorf("gpa must be between 0 and 4.0: %w", apperror.ErrBadRequest)
	}
	if v := input.SATScore; v != nil && (*v < 400 || *v > 1600) {
		return fmt.Errorf("satScore must be between 400 and 1600: %w", apperror.ErrBadRequest)
	}
	if v := input.ACTScore; v != nil && (*v < 1 || *v > 36) {
		return fmt.Errorf("actScore must be between 1 and 36: %w", apperror.ErrBadRequest)
	}
	return nil
}

func cleanList(items []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
