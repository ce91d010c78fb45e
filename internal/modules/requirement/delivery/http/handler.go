package handler

import (
	"net/http"

	"anoa.com/collegetrack/internal/middleware"
	"anoa.com/collegetrack/internal/modules/requirement/dto"
	requirement "anoa.com/collegetrack/internal/modules/requirement/service"
	"anoa.com/collegetrack/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequirementHandler struct {
	service requirement.RequirementService
}

func NewRequirementHandler(service requirement.RequirementService) *RequirementHandler {
	return &RequirementHandler{service: service}
}

func (h *RequirementHandler) UpdateRequirement(c *gin.Context) {
	applicationID, requirementID, ok := parseIDs(c)
	if !ok {
		return
	}

	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.UpdateRequirement(c.Request.Context(), actor, applicationID, requirementID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requirement": resp})
}

func (h *RequirementHandler) UploadDocument(c *gin.Context) {
	applicationID, requirementID, ok := parseIDs(c)
	if !ok {
		return
	}

	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, requirement.MaxDocumentSize+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	resp, err := h.service.UploadDocument(c.Request.Context(), actor, applicationID, requirementID, dto.DocumentFile{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requirement": resp})
}

func parseIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return uuid.Nil, uuid.Nil, false
	}
	requirementID, err := uuid.Parse(c.Param("requirementId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requirement id"})
		return uuid.Nil, uuid.Nil, false
	}
	return applicationID, requirementID, true
}
