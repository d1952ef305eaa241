package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly-api/internal/middleware"
	"github.com/attendly/attendly-api/internal/models"
	"github.com/attendly/attendly-api/internal/service"
	appErrors "github.com/attendly/attendly-api/pkg/errors"
	"github.com/attendly/attendly-api/pkg/response"
)

// TimetableHandler wires HTTP endpoints to the timetable import service.
type TimetableHandler struct {
	service     *service.TimetableService
	maxImageLen int64
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc *service.TimetableService, maxImageLen int64) *TimetableHandler {
	if maxImageLen <= 0 {
		maxImageLen = 8 << 20
	}
	return &TimetableHandler{service: svc, maxImageLen: maxImageLen}
}

// ImportImage godoc
// @Summary Import timetable image
// @Description Extract a schedule from a timetable photo and stage it for review
// @Tags Timetable
// @Accept mpfd
// @Produce json
// @Param image formData file true "Timetable image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/import [post]
func (h *TimetableHandler) ImportImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}
	if fileHeader.Size > h.maxImageLen {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image exceeds the maximum upload size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to open uploaded image"))
		return
	}
	defer file.Close() //nolint:errcheck

	image, err := io.ReadAll(io.LimitReader(file, h.maxImageLen))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read uploaded image"))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	proposal, err := h.service.ImportImage(c.Request.Context(), middleware.OwnerID(c), image, mimeType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// Confirm godoc
// @Summary Confirm import proposal
// @Description Commit a staged schedule proposal into the caller's courses
// @Tags Timetable
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/proposals/{id}/confirm [post]
func (h *TimetableHandler) Confirm(c *gin.Context) {
	result, err := h.service.ConfirmProposal(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Retry godoc
// @Summary Retry import proposal
// @Description Re-run recognition over the archived image of a staged proposal
// @Tags Timetable
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/proposals/{id}/retry [post]
func (h *TimetableHandler) Retry(c *gin.Context) {
	proposal, err := h.service.RetryProposal(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// Discard godoc
// @Summary Discard import proposal
// @Description Drop a staged schedule proposal without committing it
// @Tags Timetable
// @Param id path string true "Proposal ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/proposals/{id} [delete]
func (h *TimetableHandler) Discard(c *gin.Context) {
	if err := h.service.DiscardProposal(c.Request.Context(), middleware.OwnerID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ImportManual godoc
// @Summary Import manual schedule
// @Description Reconcile hand-entered schedule rows directly into the caller's courses
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body models.ManualImportRequest true "Manual schedule rows"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable/import/manual [post]
func (h *TimetableHandler) ImportManual(c *gin.Context) {
	var req models.ManualImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid manual import payload"))
		return
	}

	result, err := h.service.ImportManual(c.Request.Context(), middleware.OwnerID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
