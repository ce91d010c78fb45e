// Package workflow holds the application status state machine.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/pkg/apperror"
	"github.com/google/uuid"
)

var transitions = map[entity.ApplicationStatus][]entity.ApplicationStatus{
	entity.StatusNotStarted:  {entity.StatusInProgress},
	entity.StatusInProgress:  {entity.StatusSubmitted, entity.StatusAccepted, entity.StatusRejected, entity.StatusWaitlisted},
	entity.StatusSubmitted:   {entity.StatusUnderReview, entity.StatusAccepted, entity.StatusRejected, entity.StatusWaitlisted},
	entity.StatusUnderReview: {entity.StatusAccepted, entity.StatusRejected, entity.StatusWaitlisted},
	entity.StatusWaitlisted:  {entity.StatusAccepted, entity.StatusRejected},
	entity.StatusAccepted:    {},
	entity.StatusRejected:    {},
}

// Statuses lists every known status in lifecycle order.
var Statuses = []entity.ApplicationStatus{
	entity.StatusNotStarted,
	entity.StatusInProgress,
	entity.StatusSubmitted,
	entity.StatusUnderReview,
	entity.StatusWaitlisted,
	entity.StatusAccepted,
	entity.StatusRejected,
}

func Valid(s entity.ApplicationStatus) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s entity.ApplicationStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// NextStatuses returns a copy of the statuses reachable from s.
func NextStatuses(s entity.ApplicationStatus) []entity.ApplicationStatus {
	next := transitions[s]
	out := make([]entity.ApplicationStatus, len(next))
	copy(out, next)
	return out
}

func CanTransition(current, requested entity.ApplicationStatus) bool {
	for _, s := range transitions[current] {
		if s == requested {
			return true
		}
	}
	return false
}

// Transition validates current -> requested. Staying on the same status is not a transition.
func Transition(current, requested entity.ApplicationStatus) (entity.ApplicationStatus, error) {
	if !Valid(requested) {
		return current, fmt.Errorf("unknown status %q: %w", requested, apperror.ErrInvalidTransition)
	}
	if !Valid(current) {
		return current, fmt.Errorf("application has unknown status %q: %w", current, apperror.ErrInvalidTransition)
	}
	if !CanTransition(current, requested) {
		allowed := make([]string, 0, len(transitions[current]))
		for _, s := range transitions[current] {
			allowed = append(allowed, string(s))
		}
		if len(allowed) == 0 {
			return current, fmt.Errorf("cannot move from %s, it is final: %w", current, apperror.ErrInvalidTransition)
		}
		return current, fmt.Errorf("cannot move from %s to %s, allowed: %s: %w",
			current, requested, strings.Join(allowed, ", "), apperror.ErrInvalidTransition)
	}
	return requested, nil
}

// NewStatusLog builds the audit row for an accepted transition.
func NewStatusLog(applicationID uuid.UUID, from, to entity.ApplicationStatus, actor entity.Actor, reason *string) *entity.ApplicationStatusLog {
	return &entity.ApplicationStatusLog{
		ApplicationID: applicationID,
		OldStatus:     from,
		NewStatus:     to,
		ChangedBy:     actor.ID,
		ChangedByRole: actor.Role,
		Reason:        reason,
	}
}

// Apply moves app to the requested status and stamps the submitted and decision dates.
// app is left untouched when the transition is rejected.
func Apply(app *entity.Application, requested entity.ApplicationStatus, actor entity.Actor, reason *string, now time.Time) (*entity.ApplicationStatusLog, error) {
	next, err := Transition(app.Status, requested)
	if err != nil {
		return nil, err
	}

	log := NewStatusLog(app.ID, app.Status, next, actor, reason)
	app.Status = next

	switch next {
	case entity.StatusSubmitted:
		if app.SubmittedDate == nil {
			app.SubmittedDate = &now
		}
	case entity.StatusAccepted, entity.StatusRejected, entity.StatusWaitlisted:
		app.DecisionDate = &now
	}

	return log, nil
}
