package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
	"github.com/Xebarter/Leap-sub002/internal/repository/mongodb"
)

// OccupancyService is the occupancy surface used by the HTTP layer.
type OccupancyService interface {
	Status(ctx context.Context, propertyID string) (models.OccupancyStatusView, error)
	History(ctx context.Context, propertyID string) ([]models.OccupancyRecord, error)
	Extend(ctx context.Context, propertyID string, req models.ExtendRequest) (models.ExtendResponse, error)
	Cancel(ctx context.Context, propertyID string, req models.CancelRequest) (models.CancelResponse, error)
}

// OccupancyHandler exposes tenant occupancy periods over HTTP.
type OccupancyHandler struct {
	svc    OccupancyService
	logger *zap.Logger
}

// NewOccupancyHandler constructs the HTTP handler adapter.
func NewOccupancyHandler(svc OccupancyService, logger *zap.Logger) *OccupancyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccupancyHandler{svc: svc, logger: logger}
}

// Status returns the current occupancy of a property.
func (h *OccupancyHandler) Status(c *gin.Context) {
	view, err := h.svc.Status(c.Request.Context(), c.Param("propertyId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// History lists every occupancy of a property.
func (h *OccupancyHandler) History(c *gin.Context) {
	records, err := h.svc.History(c.Request.Context(), c.Param("propertyId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []models.OccupancyRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// Extend adds paid months to the property's occupancy.
func (h *OccupancyHandler) Extend(c *gin.Context) {
	var req models.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid extend payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ExtendResponse{Success: false, Error: "invalid request body"})
		return
	}

	resp, err := h.svc.Extend(c.Request.Context(), c.Param("propertyId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !resp.Success {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel ends the property's occupancy immediately.
func (h *OccupancyHandler) Cancel(c *gin.Context) {
	var req models.CancelRequest
	// The reason is optional, so an empty body is accepted.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid cancel payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, models.CancelResponse{Success: false, Error: "invalid request body"})
			return
		}
	}

	resp, err := h.svc.Cancel(c.Request.Context(), c.Param("propertyId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !resp.Success {
		c.JSON(http.StatusConflict, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OccupancyHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "occupancy not found"})
		return
	}
	h.logger.Error("occupancy request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
