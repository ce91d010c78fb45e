package dto

import (
	"time"

	"anoa.com/collegetrack/internal/entity"
	userDto "anoa.com/collegetrack/internal/modules/user/dto"
	commonDto "anoa.com/collegetrack/pkg/dto"
	"github.com/google/uuid"
)

type UserListQuery struct {
	commonDto.PaginationQuery
	Role   string `form:"role" binding:"omitempty,oneof=STUDENT PARENT TEACHER ADMIN"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

type UserListResponse struct {
	Users []*userDto.UserResponse  `json:"users"`
	Meta  commonDto.PaginationMeta `json:"meta"`
}

type LinkInput struct {
	ParentID  string `json:"parentId" binding:"required,uuid"`
	StudentID string `json:"studentId" binding:"required,uuid"`
}

type LinkResponse struct {
	ID        uuid.UUID          `json:"id"`
	Parent    userDto.LinkedUser `json:"parent"`
	Student   userDto.LinkedUser `json:"student"`
	CreatedAt time.Time          `json:"createdAt"`
}

func ToLinkedUser(u *entity.User) userDto.LinkedUser {
	return userDto.LinkedUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
