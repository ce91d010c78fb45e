package handler

import (
	"net/http"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/internal/middleware"
	"anoa.com/collegetrack/internal/modules/application/dto"
	application "anoa.com/collegetrack/internal/modules/application/service"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	service application.ApplicationService
}

func NewApplicationHandler(service application.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	studentID, err := bindStudentQuery(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.ListApplications(c.Request.Context(), actor, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	app, err := h.service.CreateApplication(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"application": app})
}

func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	app, err := h.service.GetApplication(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	app, err := h.service.UpdateApplication(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteApplication(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "application deleted successfully"})
}

func (h *ApplicationHandler) GetSummary(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	studentID, err := bindStudentQuery(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), actor, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func bindStudentQuery(c *gin.Context) (*uuid.UUID, error) {
	var q dto.StudentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, err
	}
	if q.StudentID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(q.StudentID)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "invalid studentId", err)
	}
	return &id, nil
}

func actorAndID(c *gin.Context) (actor entity.Actor, id uuid.UUID, ok bool) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return actor, uuid.Nil, false
	}

	id, err = uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return actor, uuid.Nil, false
	}

	return actor, id, true
}
