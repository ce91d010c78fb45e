// Package access decides whether an actor may touch resources owned by a student.
package access

import (
	"context"
	"fmt"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/pkg/apperror"
	"github.com/google/uuid"
)

// LinkChecker is the only I/O the decision needs.
type LinkChecker interface {
	Exists(ctx context.Context, parentID, studentID uuid.UUID) (bool, error)
}

type AccessService interface {
	// CanAccess reports whether actor may read or write resources of studentID.
	CanAccess(ctx context.Context, actor entity.Actor, studentID uuid.UUID) (bool, error)
	// Authorize is CanAccess that returns ErrForbidden instead of false.
	Authorize(ctx context.Context, actor entity.Actor, studentID uuid.UUID) error
}

type accessService struct {
	links LinkChecker
}

func NewAccessService(links LinkChecker) AccessService {
	return &accessService{links: links}
}

func (s *accessService) CanAccess(ctx context.Context, actor entity.Actor, studentID uuid.UUID) (bool, error) {
	if actor.ID == uuid.Nil || studentID == uuid.Nil {
		return false, nil
	}

	switch actor.Role {
	case entity.RoleStudent:
		return actor.ID == studentID, nil
	case entity.RoleParent:
		ok, err := s.links.Exists(ctx, actor.ID, studentID)
		if err != nil {
			return false, fmt.Errorf("failed to check parent link: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

func (s *accessService) Authorize(ctx context.Context, actor entity.Actor, studentID uuid.UUID) error {
	ok, err := s.CanAccess(ctx, actor, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no access to this student's records: %w", apperror.ErrForbidden)
	}
	return nil
}
