package dto

import (
	"io"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
)

type UpdateRequirementRequest struct {
	Status string  `json:"status" binding:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
	Notes  *string `json:"notes" binding:"omitempty,max=2000"`
}

// DocumentFile is an uploaded essay, transcript or score report.
type DocumentFile struct {
	Reader   io.Reader
	FileName string
	Size     int64
}

type RequirementResponse struct {
	ID              uuid.UUID                `json:"id"`
	ApplicationID   uuid.UUID                `json:"applicationId"`
	RequirementType entity.RequirementType   `json:"requirementType"`
	Status          entity.RequirementStatus `json:"status"`
	DocumentURL     *string                  `json:"documentUrl,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}
