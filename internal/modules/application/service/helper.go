package application

import (
	"fmt"
	"math"
	"strings"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/internal/modules/application/dto"
	"anoa.com/collegetrack/internal/modules/application/workflow"
	"anoa.com/collegetrack/pkg/apperror"
	"github.com/google/uuid"
)

const (
	upcomingWindow = 30 * 24 * time.Hour
	urgentWindow   = 7 * 24 * time.Hour
)

// parseDeadline accepts a date or an RFC3339 timestamp. The deadline may be today
// but no later than two years from now.
func (s *applicationService) parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	deadline, err := time.Parse("2006-01-02", raw)
	if err != nil {
		deadline, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid deadline format, use YYYY-MM-DD: %w", apperror.ErrBadRequest)
		}
	}

	now := s.opts.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if deadline.Before(startOfToday) {
		return time.Time{}, fmt.Errorf("deadline cannot be in the past: %w", apperror.ErrBadRequest)
	}
	if deadline.After(now.AddDate(2, 0, 0)) {
		return time.Time{}, fmt.Errorf("deadline cannot be more than two years away: %w", apperror.ErrBadRequest)
	}

	return deadline, nil
}

func toApplicationResponse(app *entity.Application, actor entity.Actor) dto.ApplicationResponse {
	resp := dto.ApplicationResponse{
		ID:              app.ID,
		StudentID:       app.StudentID,
		ApplicationType: app.ApplicationType,
		Deadline:        app.Deadline,
		Status:          app.Status,
		NextStatuses:    workflow.NextStatuses(app.Status),
		SubmittedDate:   app.SubmittedDate,
		DecisionDate:    app.DecisionDate,
		Notes:           app.Notes,
		Requirements:    make([]dto.RequirementResponse, 0, len(app.Requirements)),
		StatusLogs:      make([]dto.StatusLogResponse, 0, len(app.StatusLogs)),
		FinancialPlans:  []dto.FinancialPlanSummary{},
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}

	if app.University != nil {
		resp.University = &dto.UniversitySummary{
			ID:             app.University.ID,
			Slug:           app.University.Slug,
			Name:           app.University.Name,
			Country:        app.University.Country,
			USNewsRanking:  app.University.USNewsRanking,
			AcceptanceRate: app.University.AcceptanceRate,
		}
	}

	for _, r := range app.Requirements {
		resp.Requirements = append(resp.Requirements, dto.RequirementResponse{
			ID:              r.ID,
			RequirementType: r.RequirementType,
			Status:          r.Status,
			DocumentURL:     r.DocumentURL,
			Notes:           r.Notes,
			UpdatedAt:       r.UpdatedAt,
		})
	}

	for _, l := range app.StatusLogs {
		item := dto.StatusLogResponse{
			ID:            l.ID,
			OldStatus:     l.OldStatus,
			NewStatus:     l.NewStatus,
			ChangedBy:     l.ChangedBy,
			ChangedByRole: l.ChangedByRole,
			Reason:        l.Reason,
			CreatedAt:     l.CreatedAt,
		}
		if l.ChangedByUser != nil {
			item.ChangedByName = l.ChangedByUser.Name
		}
		resp.StatusLogs = append(resp.StatusLogs, item)
	}

	for i := range app.FinancialPlans {
		plan := &app.FinancialPlans[i]
		// Parents only see the plans they wrote.
		if actor.Role == entity.RoleParent && plan.ParentID != actor.ID {
			continue
		}
		resp.FinancialPlans = append(resp.FinancialPlans, dto.FinancialPlanSummary{
			ID:        plan.ID,
			ParentID:  plan.ParentID,
			TotalCost: plan.TotalCost(),
		})
	}

	return resp
}

func buildSummary(studentID uuid.UUID, apps []entity.Application, now time.Time) *dto.SummaryResponse {
	summary := &dto.SummaryResponse{
		StudentID:         studentID,
		Total:             len(apps),
		ByStatus:          make(map[entity.ApplicationStatus]int, len(workflow.Statuses)),
		UpcomingDeadlines: []dto.DeadlineItem{},
		UrgentDeadlines:   []dto.DeadlineItem{},
	}
	for _, st := range workflow.Statuses {
		summary.ByStatus[st] = 0
	}

	for i := range apps {
		app := &apps[i]
		summary.ByStatus[app.Status]++

		switch app.Status {
		case entity.StatusNotStarted, entity.StatusInProgress:
			summary.Pending++
		case entity.StatusSubmitted:
			summary.Submitted++
			summary.Completed++
		case entity.StatusAccepted:
			summary.Accepted++
			summary.Completed++
		}

		until := app.Deadline.Sub(now)
		if until < 0 {
			continue
		}
		item := dto.DeadlineItem{
			ApplicationID: app.ID,
			Deadline:      app.Deadline,
			Status:        app.Status,
			DaysLeft:      int(math.Ceil(until.Hours() / 24)),
		}
		if app.University != nil {
			item.UniversityName = app.University.Name
		}

		if until <= upcomingWindow && app.Status != entity.StatusSubmitted && app.Status != entity.StatusAccepted {
			summary.UpcomingDeadlines = append(summary.UpcomingDeadlines, item)
		}
		if until <= urgentWindow && app.Status != entity.StatusSubmitted {
			summary.UrgentDeadlines = append(summary.UrgentDeadlines, item)
		}
	}

	if summary.Total > 0 {
		summary.ProgressPercent = int(math.Round(float64(summary.Completed) / float64(summary.Total) * 100))
	}

	return summary
}
