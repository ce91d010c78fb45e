package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleParent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Role         Role      `gorm:"size:20;index;not null;default:STUDENT" json:"role"`
	GoogleID     *string   `gorm:"size:100;uniqueIndex" json:"-"`

	// Academic profile, only filled for students.
	GraduationYear  *int                        `json:"graduationYear,omitempty"`
	GPA             *float64                    `gorm:"column:gpa" json:"gpa,omitempty"`
	SATScore        *int                        `gorm:"column:sat_score" json:"satScore,omitempty"`
	ACTScore        *int                        `gorm:"column:act_score" json:"actScore,omitempty"`
	TargetCountries datatypes.JSONSlice[string] `json:"targetCountries"`
	IntendedMajors  datatypes.JSONSlice[string] `json:"intendedMajors"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.TargetCountries == nil {
		u.TargetCountries = datatypes.JSONSlice[string]{}
	}
	if u.IntendedMajors == nil {
		u.IntendedMajors = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ParentStudent grants a parent visibility into one student's applications.
type ParentStudent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_parent_student,priority:1" json:"parentId"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_parent_student,priority:2;index" json:"studentId"`
	Parent    *User     `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`
	Student   *User     `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (p *ParentStudent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
