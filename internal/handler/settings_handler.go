package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly-api/internal/middleware"
	"github.com/attendly/attendly-api/internal/service"
	"github.com/attendly/attendly-api/pkg/response"
)

// SettingsHandler wires the data management endpoints.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler creates a new handler.
func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// ClearCourses godoc
// @Summary Clear all courses
// @Description Delete every course the caller owns, including their attendance marks
// @Tags Settings
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/courses [delete]
func (h *SettingsHandler) ClearCourses(c *gin.Context) {
	if err := h.service.ClearCourses(c.Request.Context(), middleware.OwnerID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearAttendance godoc
// @Summary Clear all attendance marks
// @Description Delete every attendance mark the caller owns, keeping the courses
// @Tags Settings
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/attendance [delete]
func (h *SettingsHandler) ClearAttendance(c *gin.Context) {
	if err := h.service.ClearAttendance(c.Request.Context(), middleware.OwnerID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearAll godoc
// @Summary Clear all data
// @Description Delete every course and attendance mark the caller owns
// @Tags Settings
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/data [delete]
func (h *SettingsHandler) ClearAll(c *gin.Context) {
	if err := h.service.ClearAll(c.Request.Context(), middleware.OwnerID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
