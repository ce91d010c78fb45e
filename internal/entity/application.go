package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationType string

const (
	ApplicationTypeRegular       ApplicationType = "REGULAR_DECISION"
	ApplicationTypeEarlyAction   ApplicationType = "EARLY_ACTION"
	ApplicationTypeEarlyDecision ApplicationType = "EARLY_DECISION"
	ApplicationTypeRolling       ApplicationType = "ROLLING_ADMISSION"
)

func (t ApplicationType) Valid() bool {
	switch t {
	case ApplicationTypeRegular, ApplicationTypeEarlyAction, ApplicationTypeEarlyDecision, ApplicationTypeRolling:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	StatusNotStarted  ApplicationStatus = "NOT_STARTED"
	StatusInProgress  ApplicationStatus = "IN_PROGRESS"
	StatusSubmitted   ApplicationStatus = "SUBMITTED"
	StatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	StatusAccepted    ApplicationStatus = "ACCEPTED"
	StatusRejected    ApplicationStatus = "REJECTED"
	StatusWaitlisted  ApplicationStatus = "WAITLISTED"
)

type Application struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"studentId"`
	Student         *User             `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	UniversityID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"universityId"`
	University      *University       `gorm:"foreignKey:UniversityID" json:"university,omitempty"`
	ApplicationType ApplicationType   `gorm:"size:30;not null" json:"applicationType"`
	Deadline        time.Time         `gorm:"not null;index" json:"deadline"`
	Status          ApplicationStatus `gorm:"size:20;not null;default:NOT_STARTED;index" json:"status"`
	SubmittedDate   *time.Time        `json:"submittedDate,omitempty"`
	DecisionDate    *time.Time        `json:"decisionDate,omitempty"`
	Notes           *string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`

	Requirements   []ApplicationRequirement `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"requirements,omitempty"`
	StatusLogs     []ApplicationStatusLog   `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"statusLogs,omitempty"`
	FinancialPlans []FinancialPlan          `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"financialPlans,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type RequirementType string

const (
	RequirementEssay          RequirementType = "ESSAY"
	RequirementTranscript     RequirementType = "TRANSCRIPT"
	RequirementRecommendation RequirementType = "RECOMMENDATION"
	RequirementTestScores     RequirementType = "TEST_SCORES"
)

// DefaultRequirementTypes are attached to every new application.
var DefaultRequirementTypes = []RequirementType{
	RequirementEssay,
	RequirementTranscript,
	RequirementRecommendation,
	RequirementTestScores,
}

type RequirementStatus string

const (
	RequirementNotStarted RequirementStatus = "NOT_STARTED"
	RequirementInProgress RequirementStatus = "IN_PROGRESS"
	RequirementCompleted  RequirementStatus = "COMPLETED"
)

func (s RequirementStatus) Valid() bool {
	switch s {
	case RequirementNotStarted, RequirementInProgress, RequirementCompleted:
		return true
	}
	return false
}

type ApplicationRequirement struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"applicationId"`
	RequirementType RequirementType   `gorm:"size:30;not null" json:"requirementType"`
	Status          RequirementStatus `gorm:"size:20;not null;default:NOT_STARTED" json:"status"`
	DocumentURL     *string           `gorm:"type:text" json:"documentUrl,omitempty"`
	Notes           *string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (r *ApplicationRequirement) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// ApplicationStatusLog is append-only: rows are never updated.
type ApplicationStatusLog struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"applicationId"`
	OldStatus     ApplicationStatus `gorm:"size:20;not null" json:"oldStatus"`
	NewStatus     ApplicationStatus `gorm:"size:20;not null" json:"newStatus"`
	ChangedBy     uuid.UUID         `gorm:"type:uuid;not null" json:"changedBy"`
	ChangedByUser *User             `gorm:"foreignKey:ChangedBy" json:"changedByUser,omitempty"`
	ChangedByRole Role              `gorm:"size:20;not null" json:"changedByRole"`
	Reason        *string           `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (l *ApplicationStatusLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
