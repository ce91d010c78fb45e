package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Deadlines holds ISO dates (YYYY-MM-DD) per application round.
type Deadlines struct {
	EarlyAction   *string `json:"earlyAction,omitempty"`
	EarlyDecision *string `json:"earlyDecision,omitempty"`
	Regular       *string `json:"regular,omitempty"`
	Rolling       *string `json:"rolling,omitempty"`
}

type ScoreRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Requirements struct {
	GPA              *float64    `json:"gpa,omitempty"`
	SAT              *ScoreRange `json:"sat,omitempty"`
	ACT              *ScoreRange `json:"act,omitempty"`
	TOEFL            *int        `json:"toefl,omitempty"`
	IELTS            *float64    `json:"ielts,omitempty"`
	Essays           []string    `json:"essays,omitempty"`
	Recommendations  int         `json:"recommendations"`
	Portfolio        bool        `json:"portfolio"`
	Interview        bool        `json:"interview"`
	Extracurriculars []string    `json:"extracurriculars,omitempty"`
}

type University struct {
	ID                uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	Slug              string                           `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Name              string                           `gorm:"size:200;not null;index" json:"name"`
	Country           string                           `gorm:"size:100;index;not null" json:"country"`
	State             *string                          `gorm:"size:100" json:"state,omitempty"`
	City              *string                          `gorm:"size:100" json:"city,omitempty"`
	USNewsRanking     *int                             `gorm:"column:us_news_ranking;index" json:"usNewsRanking,omitempty"`
	AcceptanceRate    *float64                         `json:"acceptanceRate,omitempty"`
	ApplicationSystem *string                          `gorm:"size:50" json:"applicationSystem,omitempty"`
	TuitionInState    decimal.NullDecimal              `gorm:"type:numeric(12,2)" json:"tuitionInState"`
	TuitionOutState   decimal.NullDecimal              `gorm:"type:numeric(12,2)" json:"tuitionOutState"`
	ApplicationFee    decimal.NullDecimal              `gorm:"type:numeric(10,2)" json:"applicationFee"`
	Deadlines         datatypes.JSONType[Deadlines]    `json:"deadlines"`
	Requirements      datatypes.JSONType[Requirements] `json:"requirements"`
	CreatedAt         time.Time                        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time                        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *University) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}
