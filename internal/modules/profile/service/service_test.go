package profile

import (
	"context"
	"testing"

	"anoa.com/collegetrack/internal/entity"
	profileDto "anoa.com/collegetrack/internal/modules/profile/dto"
	userRepo "anoa.com/collegetrack/internal/modules/user/repository"
	"anoa.com/collegetrack/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsers struct {
	userRepo.UserRepository
	user    *entity.User
	updates int
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *entity.User) error {
	f.updates++
	cp := *u
	f.user = &cp
	return nil
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestUpdateProfile(t *testing.T) {
	student := &entity.User{ID: uuid.New(), Name: "Alex", Role: entity.RoleStudent, SATScore: intPtr(1400)}
	repo := &fakeUsers{user: student}
	svc := NewProfileService(repo)
	actor := entity.Actor{ID: student.ID, Role: entity.RoleStudent}

	res, err := svc.UpdateProfile(context.Background(), actor, profileDto.UpdateProfileInput{
		Name:            strPtr(" Alex <b>Kim</b> "),
		GraduationYear:  intPtr(2027),
		GPA:             floatPtr(3.9),
		IntendedMajors:  []string{"Computer Science", "Computer Science", ""},
		TargetCountries: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alex Kim", res.Name)
	assert.Equal(t, 2027, *res.GraduationYear)
	assert.Nil(t, res.SATScore)
	assert.Equal(t, []string{"Computer Science"}, res.IntendedMajors)
	assert.Equal(t, []string{}, res.TargetCountries)
	assert.Equal(t, 1, repo.updates)
}

func TestUpdateProfile_RejectsOutOfRange(t *testing.T) {
	student := &entity.User{ID: uuid.New(), Role: entity.RoleStudent}
	repo := &fakeUsers{user: student}
	svc := NewProfileService(repo)
	actor := entity.Actor{ID: student.ID, Role: entity.RoleStudent}

	cases := []profileDto.UpdateProfileInput{
		{GraduationYear: intPtr(2019)},
		{GraduationYear: intPtr(2031)},
		{GPA: floatPtr(4.1)},
		{GPA: floatPtr(-0.1)},
		{SATScore: intPtr(399)},
		{SATScore: intPtr(1601)},
		{ACTScore: intPtr(0)},
		{ACTScore: intPtr(37)},
	}
	for _, in := range cases {
		_, err := svc.UpdateProfile(context.Background(), actor, in)
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	}
	assert.Zero(t, repo.updates)

	_, err := svc.UpdateProfile(context.Background(), actor, profileDto.UpdateProfileInput{Name: strPtr("  ")})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestProfile_StudentsOnly(t *testing.T) {
	parent := &entity.User{ID: uuid.New(), Role: entity.RoleParent}
	svc := NewProfileService(&fakeUsers{user: parent})

	_, err := svc.GetProfile(context.Background(), entity.Actor{ID: parent.ID, Role: entity.RoleParent})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.GetProfile(context.Background(), entity.Actor{ID: uuid.New(), Role: entity.RoleStudent})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
