package admin

import (
	"context"
	"testing"

	"anoa.com/collegetrack/internal/entity"
	accessRepo "anoa.com/collegetrack/internal/modules/access/repository"
	"anoa.com/collegetrack/internal/modules/admin/dto"
	userRepo "anoa.com/collegetrack/internal/modules/user/repository"
	"anoa.com/collegetrack/pkg/apperror"
	commonDto "anoa.com/collegetrack/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsers struct {
	userRepo.UserRepository
	byID       map[uuid.UUID]*entity.User
	lastFilter userRepo.ListFilter
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) List(_ context.Context, filter userRepo.ListFilter) ([]entity.User, int64, error) {
	f.lastFilter = filter
	var out []entity.User
	for _, u := range f.byID {
		if filter.Role == "" || u.Role == filter.Role {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

type fakeLinks struct {
	accessRepo.LinkRepository
	links map[[2]uuid.UUID]bool
}

func (f *fakeLinks) Exists(_ context.Context, parentID, studentID uuid.UUID) (bool, error) {
	return f.links[[2]uuid.UUID{parentID, studentID}], nil
}

func (f *fakeLinks) Create(_ context.Context, link *entity.ParentStudent) error {
	link.ID = uuid.New()
	f.links[[2]uuid.UUID{link.ParentID, link.StudentID}] = true
	return nil
}

func (f *fakeLinks) Delete(_ context.Context, parentID, studentID uuid.UUID) (bool, error) {
	key := [2]uuid.UUID{parentID, studentID}
	if !f.links[key] {
		return false, nil
	}
	delete(f.links, key)
	return true, nil
}

type fixture struct {
	users   *fakeUsers
	links   *fakeLinks
	svc     AdminService
	parent  *entity.User
	student *entity.User
}

func newFixture() *fixture {
	parent := &entity.User{ID: uuid.New(), Name: "Mom", Email: "mom@example.com", Role: entity.RoleParent}
	student := &entity.User{ID: uuid.New(), Name: "Kid", Email: "kid@example.com", Role: entity.RoleStudent}
	users := &fakeUsers{byID: map[uuid.UUID]*entity.User{parent.ID: parent, student.ID: student}}
	links := &fakeLinks{links: map[[2]uuid.UUID]bool{}}
	return &fixture{
		users:   users,
		links:   links,
		svc:     NewAdminService(users, links),
		parent:  parent,
		student: student,
	}
}

func (f *fixture) input() dto.LinkInput {
	return dto.LinkInput{ParentID: f.parent.ID.String(), StudentID: f.student.ID.String()}
}

func TestCreateLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.CreateLink(ctx, f.input())
	require.NoError(t, err)
	assert.Equal(t, "Mom", res.Parent.Name)
	assert.Equal(t, "Kid", res.Student.Name)

	_, err = f.svc.CreateLink(ctx, f.input())
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCreateLink_ChecksRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	swapped := dto.LinkInput{ParentID: f.student.ID.String(), StudentID: f.parent.ID.String()}
	_, err := f.svc.CreateLink(ctx, swapped)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	missing := dto.LinkInput{ParentID: uuid.NewString(), StudentID: f.student.ID.String()}
	_, err = f.svc.CreateLink(ctx, missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreateLink(ctx, dto.LinkInput{ParentID: "nope", StudentID: f.student.ID.String()})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Empty(t, f.links.links)
}

func TestDeleteLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.svc.DeleteLink(ctx, f.input())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreateLink(ctx, f.input())
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteLink(ctx, f.input()))
	assert.Empty(t, f.links.links)
}

func TestListUsers(t *testing.T) {
	f := newFixture()

	res, err := f.svc.ListUsers(context.Background(), dto.UserListQuery{
		PaginationQuery: commonDto.PaginationQuery{Page: 2, Limit: 10},
		Role:            "PARENT",
	})
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, f.parent.ID, res.Users[0].ID)
	assert.Equal(t, 10, f.users.lastFilter.Offset)
	assert.Equal(t, commonDto.PaginationMeta{CurrentPage: 2, TotalPages: 1, TotalItems: 1, Limit: 10}, res.Meta)
}
