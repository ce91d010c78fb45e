package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FinancialPlanQuery struct {
	StudentID string `form:"studentId" binding:"required,uuid"`
}

// UpsertFinancialPlanRequest accepts amounts as JSON numbers or numeric strings.
type UpsertFinancialPlanRequest struct {
	ApplicationID    string           `json:"applicationId" binding:"required,uuid"`
	Tuition          *decimal.Decimal `json:"tuition"`
	RoomAndBoard     *decimal.Decimal `json:"roomAndBoard"`
	BooksAndSupplies *decimal.Decimal `json:"booksAndSupplies"`
	PersonalExpenses *decimal.Decimal `json:"personalExpenses"`
	Transportation   *decimal.Decimal `json:"transportation"`
	OtherFees        *decimal.Decimal `json:"otherFees"`
	Notes            *string          `json:"notes" binding:"omitempty,max=2000"`
}

type PlanApplication struct {
	ID             uuid.UUID `json:"id"`
	UniversityName string    `json:"universityName"`
	Country        string    `json:"country"`
	Deadline       time.Time `json:"deadline"`
}

type PlanParent struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type FinancialPlanResponse struct {
	ID               uuid.UUID        `json:"id"`
	ApplicationID    uuid.UUID        `json:"applicationId"`
	Application      *PlanApplication `json:"application,omitempty"`
	ParentID         uuid.UUID        `json:"parentId"`
	Parent           *PlanParent      `json:"parent,omitempty"`
	Tuition          *decimal.Decimal `json:"tuition"`
	RoomAndBoard     *decimal.Decimal `json:"roomAndBoard"`
	BooksAndSupplies *decimal.Decimal `json:"booksAndSupplies"`
	PersonalExpenses *decimal.Decimal `json:"personalExpenses"`
	Transportation   *decimal.Decimal `json:"transportation"`
	OtherFees        *decimal.Decimal `json:"otherFees"`
	TotalCost        decimal.Decimal  `json:"totalCost"`
	Notes            *string          `json:"notes,omitempty"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}
