package dto

import (
	"time"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateApplicationRequest struct {
	UniversityID    string  `json:"universityId" binding:"required,uuid"`
	ApplicationType string  `json:"applicationType" binding:"required,oneof=REGULAR_DECISION EARLY_ACTION EARLY_DECISION ROLLING_ADMISSION"`
	Deadline        string  `json:"deadline" binding:"required"`
	Notes           *string `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

type UpdateApplicationRequest struct {
	Notes           *string `json:"notes" binding:"omitempty,max=2000"`
	ApplicationType *string `json:"applicationType" binding:"omitempty,oneof=REGULAR_DECISION EARLY_ACTION EARLY_DECISION ROLLING_ADMISSION"`
	Deadline        *string `json:"deadline"`
	// Status is rejected here; transitions go through PATCH.
	Status *string `json:"status"`
}

type StudentQuery struct {
	StudentID string `form:"studentId" binding:"omitempty,uuid"`
}

type UniversitySummary struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Country        string    `json:"country"`
	USNewsRanking  *int      `json:"usNewsRanking,omitempty"`
	AcceptanceRate *float64  `json:"acceptanceRate,omitempty"`
}

type RequirementResponse struct {
	ID              uuid.UUID                `json:"id"`
	RequirementType entity.RequirementType   `json:"requirementType"`
	Status          entity.RequirementStatus `json:"status"`
	DocumentURL     *string                  `json:"documentUrl,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

type StatusLogResponse struct {
	ID            uuid.UUID                `json:"id"`
	OldStatus     entity.ApplicationStatus `json:"oldStatus"`
	NewStatus     entity.ApplicationStatus `json:"newStatus"`
	ChangedBy     uuid.UUID                `json:"changedBy"`
	ChangedByName string                   `json:"changedByName,omitempty"`
	ChangedByRole entity.Role              `json:"changedByRole"`
	Reason        *string                  `json:"reason,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
}

type FinancialPlanSummary struct {
	ID        uuid.UUID       `json:"id"`
	ParentID  uuid.UUID       `json:"parentId"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

type ApplicationResponse struct {
	ID              uuid.UUID                  `json:"id"`
	StudentID       uuid.UUID                  `json:"studentId"`
	University      *UniversitySummary         `json:"university,omitempty"`
	ApplicationType entity.ApplicationType     `json:"applicationType"`
	Deadline        time.Time                  `json:"deadline"`
	Status          entity.ApplicationStatus   `json:"status"`
	NextStatuses    []entity.ApplicationStatus `json:"nextStatuses"`
	SubmittedDate   *time.Time                 `json:"submittedDate,omitempty"`
	DecisionDate    *time.Time                 `json:"decisionDate,omitempty"`
	Notes           *string                    `json:"notes,omitempty"`
	Requirements    []RequirementResponse      `json:"requirements"`
	StatusLogs      []StatusLogResponse        `json:"statusLogs"`
	FinancialPlans  []FinancialPlanSummary     `json:"financialPlans"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

type DeadlineItem struct {
	ApplicationID  uuid.UUID                `json:"applicationId"`
	UniversityName string                   `json:"universityName"`
	Deadline       time.Time                `json:"deadline"`
	Status         entity.ApplicationStatus `json:"status"`
	DaysLeft       int                      `json:"daysLeft"`
}

type SummaryResponse struct {
	StudentID         uuid.UUID                        `json:"studentId"`
	Total             int                              `json:"total"`
	ByStatus          map[entity.ApplicationStatus]int `json:"byStatus"`
	Submitted         int                              `json:"submitted"`
	Accepted          int                              `json:"accepted"`
	Pending           int                              `json:"pending"`
	Completed         int                              `json:"completed"`
	ProgressPercent   int                              `json:"progressPercent"`
	UpcomingDeadlines []DeadlineItem                   `json:"upcomingDeadlines"`
	UrgentDeadlines   []DeadlineItem                   `json:"urgentDeadlines"`
}
