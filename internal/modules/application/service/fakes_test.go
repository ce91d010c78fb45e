package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"anoa.com/collegetrack/internal/entity"
	access "anoa.com/collegetrack/internal/modules/access/service"
	"anoa.com/collegetrack/internal/modules/application/repository"
	"anoa.com/collegetrack/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu           sync.Mutex
	apps         map[uuid.UUID]*entity.Application
	logs         []entity.ApplicationStatusLog
	txErr        error
	txCalls      int
	deleteCalled bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: map[uuid.UUID]*entity.Application{}}
}

func (f *fakeRepo) put(app *entity.Application) *entity.Application {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	f.apps[app.ID] = app
	return app
}

func (f *fakeRepo) Create(_ context.Context, app *entity.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app.ID = uuid.New()
	for i := range app.Requirements {
		app.Requirements[i].ID = uuid.New()
		app.Requirements[i].ApplicationID = app.ID
	}
	cp := *app
	f.apps[app.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *app
	return &cp, nil
}

func (f *fakeRepo) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	app, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	app.StatusLogs = nil
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].ApplicationID == id {
			app.StatusLogs = append(app.StatusLogs, f.logs[i])
		}
	}
	return app, nil
}

func (f *fakeRepo) FindByStudent(_ context.Context, studentID uuid.UUID) ([]entity.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Application
	for _, app := range f.apps {
		if app.StudentID == studentID {
			out = append(out, *app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

func (f *fakeRepo) HasEarlyDecision(_ context.Context, studentID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.apps {
		if excludeID != nil && app.ID == *excludeID {
			continue
		}
		if app.StudentID == studentID && app.ApplicationType == entity.ApplicationTypeEarlyDecision {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Update(_ context.Context, app *entity.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.apps[app.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ApplicationType = app.ApplicationType
	stored.Deadline = app.Deadline
	stored.Notes = app.Notes
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, app *entity.Application, from entity.ApplicationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.apps[app.ID]
	if !ok || stored.Status != from {
		return apperror.ErrConflict
	}
	stored.Status = app.Status
	stored.SubmittedDate = app.SubmittedDate
	stored.DecisionDate = app.DecisionDate
	return nil
}

func (f *fakeRepo) CreateStatusLog(_ context.Context, log *entity.ApplicationStatusLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalled = true
	delete(f.apps, id)
	return nil
}

func (f *fakeRepo) FindDueBetween(context.Context, time.Time, time.Time, []entity.ApplicationStatus) ([]entity.Application, error) {
	return nil, nil
}

func (f *fakeRepo) FindRequirement(context.Context, uuid.UUID, uuid.UUID) (*entity.ApplicationRequirement, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateRequirement(context.Context, *entity.ApplicationRequirement) error {
	return nil
}

// Transaction runs fn directly unless txErr is set, in which case it fails before fn runs.
func (f *fakeRepo) Transaction(ctx context.Context, _ repository.TxOptions, fn func(ctx context.Context, repo repository.ApplicationRepository) error) error {
	f.txCalls++
	if f.txErr != nil {
		return f.txErr
	}
	return fn(ctx, f)
}

func (f *fakeRepo) logsFor(id uuid.UUID) []entity.ApplicationStatusLog {
	var out []entity.ApplicationStatusLog
	for _, l := range f.logs {
		if l.ApplicationID == id {
			out = append(out, l)
		}
	}
	return out
}

type fakeUniversities struct {
	known map[uuid.UUID]bool
}

func (f *fakeUniversities) FindByID(_ context.Context, id uuid.UUID) (*entity.University, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &entity.University{ID: id, Name: "Massachusetts Institute of Technology"}, nil
}

type fakeLinks map[[2]uuid.UUID]bool

func (f fakeLinks) Exists(_ context.Context, parentID, studentID uuid.UUID) (bool, error) {
	return f[[2]uuid.UUID{parentID, studentID}], nil
}

type recordingNotifier struct {
	calls []entity.ApplicationStatusLog
	err   error
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, _ *entity.Application, log *entity.ApplicationStatusLog) error {
	n.calls = append(n.calls, *log)
	return n.err
}

type fixture struct {
	repo     *fakeRepo
	links    fakeLinks
	notifier *recordingNotifier
	svc      ApplicationService
	now      time.Time
	univ     uuid.UUID
	student  entity.Actor
	parent   entity.Actor
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newFakeRepo(),
		links:    fakeLinks{},
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		univ:     uuid.New(),
		student:  entity.Actor{ID: uuid.New(), Role: entity.RoleStudent},
		parent:   entity.Actor{ID: uuid.New(), Role: entity.RoleParent},
	}
	f.links[[2]uuid.UUID{f.parent.ID, f.student.ID}] = true

	f.svc = NewApplicationService(
		f.repo,
		&fakeUniversities{known: map[uuid.UUID]bool{f.univ: true}},
		access.NewAccessService(f.links),
		f.notifier,
		Options{Now: func() time.Time { return f.now }},
	)
	return f
}

func (f *fixture) seed(status entity.ApplicationStatus, appType entity.ApplicationType) *entity.Application {
	return f.repo.put(&entity.Application{
		StudentID:       f.student.ID,
		UniversityID:    f.univ,
		ApplicationType: appType,
		Deadline:        f.now.AddDate(0, 2, 0),
		Status:          status,
	})
}

var errTxAborted = errors.New("could not serialize access")
