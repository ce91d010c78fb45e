package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinancialPlan is a parent's cost breakdown for one application.
// The total is derived on read and never stored.
type FinancialPlan struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID    uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_plan_application_parent,priority:1" json:"applicationId"`
	Application      *Application        `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	ParentID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_plan_application_parent,priority:2" json:"parentId"`
	Parent           *User               `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`
	Tuition          decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"tuition"`
	RoomAndBoard     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"roomAndBoard"`
	BooksAndSupplies decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"booksAndSupplies"`
	PersonalExpenses decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"personalExpenses"`
	Transportation   decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"transportation"`
	OtherFees        decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"otherFees"`
	Notes            *string             `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *FinancialPlan) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// TotalCost sums the amounts that are present.
func (p *FinancialPlan) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range []decimal.NullDecimal{
		p.Tuition,
		p.RoomAndBoard,
		p.BooksAndSupplies,
		p.PersonalExpenses,
		p.Transportation,
		p.OtherFees,
	} {
		if amount.Valid {
			total = total.Add(amount.Decimal)
		}
	}
	return total
}
