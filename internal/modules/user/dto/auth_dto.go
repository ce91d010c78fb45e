package dto

import (
	"time"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
)

// RegisterRequest is the full set of fields accepted at sign-up; anything else in the body
// is ignored.
type RegisterRequest struct {
	Email           string   `json:"email" binding:"required,email,max=100"`
	Password        string   `json:"password" binding:"required,min=6,max=72"`
	Name            string   `json:"name" binding:"required,max=100"`
	Role            string   `json:"role" binding:"omitempty,oneof=STUDENT PARENT TEACHER"`
	StudentEmail    string   `json:"studentEmail" binding:"omitempty,email"`
	GraduationYear  *int     `json:"graduationYear" binding:"omitempty,min=2020,max=2030"`
	GPA             *float64 `json:"gpa" binding:"omitempty,min=0,max=4"`
	SATScore        *int     `json:"satScore" binding:"omitempty,min=400,max=1600"`
	ACTScore        *int     `json:"actScore" binding:"omitempty,min=1,max=36"`
	TargetCountries []string `json:"targetCountries" binding:"omitempty,max=20,dive,max=100"`
	IntendedMajors  []string `json:"intendedMajors" binding:"omitempty,max=20,dive,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID              uuid.UUID   `json:"id"`
	Email           string      `json:"email"`
	Name            string      `json:"name"`
	Role            entity.Role `json:"role"`
	GraduationYear  *int        `json:"graduationYear,omitempty"`
	GPA             *float64    `json:"gpa,omitempty"`
	SATScore        *int        `json:"satScore,omitempty"`
	ACTScore        *int        `json:"actScore,omitempty"`
	TargetCountries []string    `json:"targetCountries"`
	IntendedMajors  []string    `json:"intendedMajors"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type LinkedUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

type MeResponse struct {
	User     *UserResponse `json:"user"`
	Students []LinkedUser  `json:"students,omitempty"`
	Parents  []LinkedUser  `json:"parents,omitempty"`
}

func ToUserResponse(u *entity.User) *UserResponse {
	resp := &UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		GraduationYear:  u.GraduationYear,
		GPA:             u.GPA,
		SATScore:        u.SATScore,
		ACTScore:        u.ACTScore,
		TargetCountries: []string(u.TargetCountries),
		IntendedMajors:  []string(u.IntendedMajors),
		CreatedAt:       u.CreatedAt,
	}
	if resp.TargetCountries == nil {
		resp.TargetCountries = []string{}
	}
	if resp.IntendedMajors == nil {
		resp.IntendedMajors = []string{}
	}
	return resp
}

func ToLinkedUsers(users []entity.User) []LinkedUser {
	out := make([]LinkedUser, 0, len(users))
	for _, u := range users {
		out = append(out, LinkedUser{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	return out
}
