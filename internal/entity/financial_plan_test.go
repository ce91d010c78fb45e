package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFinancialPlan_TotalCost(t *testing.T) {
	plan := &FinancialPlan{
		Tuition:        decimal.NewNullDecimal(decimal.RequireFromString("57000.50")),
		RoomAndBoard:   decimal.NewNullDecimal(decimal.RequireFromString("18000")),
		Transportation: decimal.NewNullDecimal(decimal.RequireFromString("0.25")),
	}

	assert.True(t, decimal.RequireFromString("75000.75").Equal(plan.TotalCost()))
}

func TestFinancialPlan_TotalCostEmpty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal((&FinancialPlan{}).TotalCost()))
}

func TestRoleAndTypeValid(t *testing.T) {
	assert.True(t, RoleParent.Valid())
	assert.False(t, Role("GUARDIAN").Valid())
	assert.True(t, ApplicationTypeEarlyDecision.Valid())
	assert.False(t, ApplicationType("EARLY").Valid())
	assert.True(t, RequirementCompleted.Valid())
	assert.False(t, RequirementStatus("DONE").Valid())
}
