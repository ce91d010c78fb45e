package handler

import (
	"net/http"

	"anoa.com/collegetrack/internal/middleware"
	"anoa.com/collegetrack/internal/modules/financialplan/dto"
	financialplan "anoa.com/collegetrack/internal/modules/financialplan/service"
	"anoa.com/collegetrack/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FinancialPlanHandler struct {
	service financialplan.FinancialPlanService
}

func NewFinancialPlanHandler(service financialplan.FinancialPlanService) *FinancialPlanHandler {
	return &FinancialPlanHandler{service: service}
}

func (h *FinancialPlanHandler) ListPlans(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.FinancialPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, err)
		return
	}

	plans, err := h.service.ListPlans(c.Request.Context(), actor, uuid.MustParse(query.StudentID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"financialPlans": plans})
}

func (h *FinancialPlanHandler) UpsertPlan(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpsertFinancialPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	plan, err := h.service.UpsertPlan(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"financialPlan": plan})
}
