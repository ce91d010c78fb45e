package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationStatusChanged    NotificationType = "status_changed"
	NotificationDeadlineReminder NotificationType = "deadline_reminder"
)

type Notification struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_user_read,priority:1" json:"userId"`
	User          *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type          NotificationType `gorm:"size:50;not null" json:"type"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Message       string           `gorm:"type:text" json:"message"`
	ApplicationID *uuid.UUID       `gorm:"type:uuid;index" json:"applicationId,omitempty"`
	IsRead        bool             `gorm:"default:false;index:idx_notification_user_read,priority:2" json:"isRead"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
