package dto

import (
	"time"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UniversityQuery struct {
	Search            string   `form:"search" binding:"omitempty,max=100"`
	Country           string   `form:"country" binding:"omitempty,max=100"`
	MinRanking        *int     `form:"minRanking" binding:"omitempty,min=1"`
	MaxRanking        *int     `form:"maxRanking" binding:"omitempty,min=1"`
	MinAcceptanceRate *float64 `form:"minAcceptanceRate" binding:"omitempty,min=0,max=100"`
	MaxAcceptanceRate *float64 `form:"maxAcceptanceRate" binding:"omitempty,min=0,max=100"`
}

type UniversityResponse struct {
	ID                uuid.UUID           `json:"id"`
	Slug              string              `json:"slug"`
	Name              string              `json:"name"`
	Country           string              `json:"country"`
	State             *string             `json:"state,omitempty"`
	City              *string             `json:"city,omitempty"`
	USNewsRanking     *int                `json:"usNewsRanking,omitempty"`
	AcceptanceRate    *float64            `json:"acceptanceRate,omitempty"`
	ApplicationSystem *string             `json:"applicationSystem,omitempty"`
	TuitionInState    *decimal.Decimal    `json:"tuitionInState,omitempty"`
	TuitionOutState   *decimal.Decimal    `json:"tuitionOutState,omitempty"`
	ApplicationFee    *decimal.Decimal    `json:"applicationFee,omitempty"`
	Deadlines         entity.Deadlines    `json:"deadlines"`
	Requirements      entity.Requirements `json:"requirements"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type ReindexResponse struct {
	Indexed int `json:"indexed"`
}
