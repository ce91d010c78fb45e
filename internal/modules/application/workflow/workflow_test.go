package workflow

import (
	"testing"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_Table(t *testing.T) {
	allowed := map[entity.ApplicationStatus][]entity.ApplicationStatus{
		entity.StatusNotStarted:  {entity.StatusInProgress},
		entity.StatusInProgress:  {entity.StatusSubmitted, entity.StatusAccepted, entity.StatusRejected, entity.StatusWaitlisted},
		entity.StatusSubmitted:   {entity.StatusUnderReview, entity.StatusAccepted, entity.StatusRejected, entity.StatusWaitlisted},
		entity.StatusUnderReview: {entity.StatusAccepted, entity.StatusRejected, entity.StatusWaitlisted},
		entity.StatusWaitlisted:  {entity.StatusAccepted, entity.StatusRejected},
	}

	for _, from := range Statuses {
		for _, to := range Statuses {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}

			got, err := Transition(from, to)
			if want {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, got)
			} else {
				assert.ErrorIs(t, err, apperror.ErrInvalidTransition, "%s -> %s", from, to)
				assert.Equal(t, from, got, "state must not change on %s -> %s", from, to)
			}
		}
	}
}

func TestTransition_TerminalStatesAbsorb(t *testing.T) {
	for _, terminal := range []entity.ApplicationStatus{entity.StatusAccepted, entity.StatusRejected} {
		assert.True(t, IsTerminal(terminal))
		assert.Empty(t, NextStatuses(terminal))
		for _, to := range Statuses {
			_, err := Transition(terminal, to)
			assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
		}
	}
	assert.False(t, IsTerminal(entity.StatusWaitlisted))
	assert.False(t, IsTerminal(entity.ApplicationStatus("DRAFT")))
}

func TestTransition_NotStartedToSubmittedRejected(t *testing.T) {
	_, err := Transition(entity.StatusNotStarted, entity.StatusSubmitted)
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "IN_PROGRESS")
}

func TestTransition_UnknownStatus(t *testing.T) {
	_, err := Transition(entity.StatusInProgress, "DRAFT")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	_, err = Transition("DRAFT", entity.StatusInProgress)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.False(t, Valid("DRAFT"))
}

func TestNextStatuses_ReturnsCopy(t *testing.T) {
	next := NextStatuses(entity.StatusNotStarted)
	next[0] = entity.StatusAccepted

	assert.Equal(t, []entity.ApplicationStatus{entity.StatusInProgress}, NextStatuses(entity.StatusNotStarted))
}

func TestApply(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	actor := entity.Actor{ID: uuid.New(), Role: entity.RoleParent}
	reason := "portal updated"
	app := &entity.Application{ID: uuid.New(), Status: entity.StatusInProgress}

	log, err := Apply(app, entity.StatusSubmitted, actor, &reason, now)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSubmitted, app.Status)
	assert.Equal(t, now, *app.SubmittedDate)
	assert.Nil(t, app.DecisionDate)
	assert.Equal(t, app.ID, log.ApplicationID)
	assert.Equal(t, entity.StatusInProgress, log.OldStatus)
	assert.Equal(t, entity.StatusSubmitted, log.NewStatus)
	assert.Equal(t, actor.ID, log.ChangedBy)
	assert.Equal(t, entity.RoleParent, log.ChangedByRole)
	assert.Equal(t, &reason, log.Reason)

	later := now.Add(time.Hour)
	_, err = Apply(app, entity.StatusAccepted, actor, nil, later)
	require.NoError(t, err)
	assert.Equal(t, now, *app.SubmittedDate)
	assert.Equal(t, later, *app.DecisionDate)
}

func TestApply_RejectedLeavesApplicationUntouched(t *testing.T) {
	app := &entity.Application{ID: uuid.New(), Status: entity.StatusNotStarted}

	log, err := Apply(app, entity.StatusSubmitted, entity.Actor{ID: uuid.New(), Role: entity.RoleStudent}, nil, time.Now())
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Nil(t, log)
	assert.Equal(t, entity.StatusNotStarted, app.Status)
	assert.Nil(t, app.SubmittedDate)
}
