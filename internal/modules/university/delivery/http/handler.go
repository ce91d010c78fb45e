package handler

import (
	"net/http"

	"anoa.com/collegetrack/internal/modules/university/dto"
	university "anoa.com/collegetrack/internal/modules/university/service"
	"anoa.com/collegetrack/pkg/response"
	"github.com/gin-gonic/gin"
)

type UniversityHandler struct {
	service university.UniversityService
}

func NewUniversityHandler(service university.UniversityService) *UniversityHandler {
	return &UniversityHandler{service: service}
}

func (h *UniversityHandler) ListUniversities(c *gin.Context) {
	var query dto.UniversityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, err)
		return
	}

	universities, err := h.service.ListUniversities(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"universities": universities})
}

func (h *UniversityHandler) GetUniversity(c *gin.Context) {
	resp, err := h.service.GetUniversity(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"university": resp})
}

func (h *UniversityHandler) Reindex(c *gin.Context) {
	count, err := h.service.Reindex(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ReindexResponse{Indexed: count})
}
