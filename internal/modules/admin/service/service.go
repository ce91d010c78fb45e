package admin

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/collegetrack/internal/entity"
	accessRepo "anoa.com/collegetrack/internal/modules/access/repository"
	"anoa.com/collegetrack/internal/modules/admin/dto"
	userDto "anoa.com/collegetrack/internal/modules/user/dto"
	userRepo "anoa.com/collegetrack/internal/modules/user/repository"
	"anoa.com/collegetrack/pkg/apperror"
	commonDto "anoa.com/collegetrack/pkg/dto"
	"anoa.com/collegetrack/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminService interface {
	ListUsers(ctx context.Context, query dto.UserListQuery) (*dto.UserListResponse, error)
	CreateLink(ctx context.Context, input dto.LinkInput) (*dto.LinkResponse, error)
	DeleteLink(ctx context.Context, input dto.LinkInput) error
}

type adminService struct {
	users userRepo.UserRepository
	links accessRepo.LinkRepository
}

func NewAdminService(users userRepo.UserRepository, links accessRepo.LinkRepository) AdminService {
	return &adminService{
		users: users,
		links: links,
	}
}

func (s *adminService) ListUsers(ctx context.Context, query dto.UserListQuery) (*dto.UserListResponse, error) {
	offset := query.Normalize()

	users, total, err := s.users.List(ctx, userRepo.ListFilter{
		Role:   entity.Role(query.Role),
		Search: query.Search,
		Limit:  query.Limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*userDto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userDto.ToUserResponse(&users[i]))
	}

	return &dto.UserListResponse{
		Users: out,
		Meta:  commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

func (s *adminService) CreateLink(ctx context.Context, input dto.LinkInput) (*dto.LinkResponse, error) {
	parentID, studentID, err := parseLink(input)
	if err != nil {
		return nil, err
	}

	parent, err := s.findWithRole(ctx, parentID, entity.RoleParent)
	if err != nil {
		return nil, err
	}
	student, err := s.findWithRole(ctx, studentID, entity.RoleStudent)
	if err != nil {
		return nil, err
	}

	exists, err := s.links.Exists(ctx, parentID, studentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("parent is already linked to this student: %w", apperror.ErrConflict)
	}

	link := &entity.ParentStudent{ParentID: parentID, StudentID: studentID}
	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("parent is already linked to this student: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	logger.Info().
		Str("parent_id", parentID.String()).
		Str("student_id", studentID.String()).
		Msg("parent linked to student")

	return &dto.LinkResponse{
		ID:        link.ID,
		Parent:    dto.ToLinkedUser(parent),
		Student:   dto.ToLinkedUser(student),
		CreatedAt: link.CreatedAt,
	}, nil
}

func (s *adminService) DeleteLink(ctx context.Context, input dto.LinkInput) error {
	parentID, studentID, err := parseLink(input)
	if err != nil {
		return err
	}

	deleted, err := s.links.Delete(ctx, parentID, studentID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("link not found: %w", apperror.ErrNotFound)
	}

	logger.Info().
		Str("parent_id", parentID.String()).
		Str("student_id", studentID.String()).
		Msg("parent unlinked from student")
	return nil
}

func (s *adminService) findWithRole(ctx context.Context, id uuid.UUID, role entity.Role) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s not found: %w", roleLabel(role), apperror.ErrNotFound)
		}
		return nil, err
	}
	if user.Role != role {
		return nil, fmt.Errorf("user %s is not a %s: %w", id, roleLabel(role), apperror.ErrBadRequest)
	}
	return user, nil
}

func roleLabel(role entity.Role) string {
	if role == entity.RoleParent {
		return "parent"
	}
	return "student"
}

func parseLink(input dto.LinkInput) (uuid.UUID, uuid.UUID, error) {
	parentID, err := uuid.Parse(input.ParentID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid parentId: %w", apperror.ErrBadRequest)
	}
	studentID, err := uuid.Parse(input.StudentID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid studentId: %w", apperror.ErrBadRequest)
	}
	return parentID, studentID, nil
}
