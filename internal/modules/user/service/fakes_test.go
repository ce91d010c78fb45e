package user

import (
	"context"
	"strings"

	"anoa.com/collegetrack/internal/entity"
	accessRepo "anoa.com/collegetrack/internal/modules/access/repository"
	"anoa.com/collegetrack/internal/modules/user/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUsers struct {
	byID map[uuid.UUID]*entity.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*entity.User{}}
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	for _, u := range f.byID {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *entity.User) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) SetGoogleID(_ context.Context, id uuid.UUID, googleID string) error {
	if u, ok := f.byID[id]; ok {
		u.GoogleID = &googleID
	}
	return nil
}

func (f *fakeUsers) List(context.Context, repository.ListFilter) ([]entity.User, int64, error) {
	var out []entity.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

// Transaction restores the previous state when fn fails.
func (f *fakeUsers) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := make(map[uuid.UUID]*entity.User, len(f.byID))
	for k, v := range f.byID {
		snapshot[k] = v
	}
	if err := fn(nil); err != nil {
		f.byID = snapshot
		return err
	}
	return nil
}

func (f *fakeUsers) WithTx(*gorm.DB) repository.UserRepository { return f }

type fakeLinks struct {
	users *fakeUsers
	links []entity.ParentStudent
}

func (f *fakeLinks) Exists(_ context.Context, parentID, studentID uuid.UUID) (bool, error) {
	for _, l := range f.links {
		if l.ParentID == parentID && l.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinks) Create(_ context.Context, link *entity.ParentStudent) error {
	f.links = append(f.links, *link)
	return nil
}

func (f *fakeLinks) Delete(_ context.Context, parentID, studentID uuid.UUID) (bool, error) {
	for i, l := range f.links {
		if l.ParentID == parentID && l.StudentID == studentID {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinks) FindStudents(_ context.Context, parentID uuid.UUID) ([]entity.User, error) {
	var out []entity.User
	for _, l := range f.links {
		if l.ParentID == parentID {
			out = append(out, *f.users.byID[l.StudentID])
		}
	}
	return out, nil
}

func (f *fakeLinks) FindParents(_ context.Context, studentID uuid.UUID) ([]entity.User, error) {
	var out []entity.User
	for _, l := range f.links {
		if l.StudentID == studentID {
			out = append(out, *f.users.byID[l.ParentID])
		}
	}
	return out, nil
}

func (f *fakeLinks) FindParentIDs(_ context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, l := range f.links {
		if l.StudentID == studentID {
			out = append(out, l.ParentID)
		}
	}
	return out, nil
}

func (f *fakeLinks) WithTx(*gorm.DB) accessRepo.LinkRepository { return f }
