package dto

import (
	"time"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
)

type NotificationQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

type NotificationResponse struct {
	ID            uuid.UUID               `json:"id"`
	Type          entity.NotificationType `json:"type"`
	Title         string                  `json:"title"`
	Message       string                  `json:"message"`
	ApplicationID *uuid.UUID              `json:"applicationId,omitempty"`
	IsRead        bool                    `json:"isRead"`
	CreatedAt     time.Time               `json:"createdAt"`
}
