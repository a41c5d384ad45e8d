package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/domain/building"
	"github.com/Xebarter/Leap-sub002/internal/domain/models"
	"github.com/Xebarter/Leap-sub002/internal/repository/mongodb"
	service "github.com/Xebarter/Leap-sub002/internal/service/building"
)

// BuildingService is the draft editing surface used by the HTTP layer.
type BuildingService interface {
	CreateDraft(req service.CreateDraftRequest) (string, building.Summary, error)
	Draft(draftID string) (building.Summary, error)
	DiscardDraft(draftID string)
	Rename(draftID, name string) (building.Summary, error)
	AddTemplate(draftID string, unitType models.UnitType) (models.PropertyTemplate, building.Summary, error)
	UpdateTemplate(draftID, templateID string, patch models.TemplatePatch) (building.Summary, error)
	DeleteTemplate(draftID, templateID string) (building.Summary, error)
	SetTotalFloors(draftID string, floors int) (building.Summary, error)
	AddUnits(draftID string, floor, count int, templateID string) ([]models.UnitAssignment, building.Summary, error)
	UpdateUnit(draftID, unitID string, patch models.UnitPatch) (building.Summary, error)
	RemoveUnit(draftID, unitID string) (building.Summary, error)
	Save(ctx context.Context, draftID string) (building.Summary, error)
	Building(ctx context.Context, buildingID string) (building.Summary, error)
	OpenDraft(ctx context.Context, buildingID string) (string, building.Summary, error)
}

type renameRequest struct {
	BuildingName string `json:"building_name" binding:"required"`
}

type addTemplateRequest struct {
	UnitType models.UnitType `json:"unit_type" binding:"required"`
}

type setFloorsRequest struct {
	TotalFloors int `json:"total_floors"`
}

type addUnitsRequest struct {
	Floor      int    `json:"floor" binding:"required"`
	Count      int    `json:"count"`
	TemplateID string `json:"template_id" binding:"required"`
}

type draftResponse struct {
	DraftID string `json:"draft_id"`
	building.Summary
}

// BuildingHandler exposes building drafts and saved buildings over HTTP.
type BuildingHandler struct {
	svc    BuildingService
	logger *zap.Logger
}

// NewBuildingHandler constructs the HTTP handler adapter.
func NewBuildingHandler(svc BuildingService, logger *zap.Logger) *BuildingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuildingHandler{svc: svc, logger: logger}
}

// CreateDraft starts a new building draft.
func (h *BuildingHandler) CreateDraft(c *gin.Context) {
	var req service.CreateDraftRequest
	if !h.bind(c, &req) {
		return
	}
	id, summary, err := h.svc.CreateDraft(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, draftResponse{DraftID: id, Summary: summary})
}

// GetDraft returns the current state of a draft.
func (h *BuildingHandler) GetDraft(c *gin.Context) {
	summary, err := h.svc.Draft(c.Param("draftId"))
	h.respond(c, summary, err)
}

// RenameDraft changes the building name of a draft.
func (h *BuildingHandler) RenameDraft(c *gin.Context) {
	var req renameRequest
	if !h.bind(c, &req) {
		return
	}
	summary, err := h.svc.Rename(c.Param("draftId"), req.BuildingName)
	h.respond(c, summary, err)
}

// DiscardDraft drops a draft without saving it.
func (h *BuildingHandler) DiscardDraft(c *gin.Context) {
	h.svc.DiscardDraft(c.Param("draftId"))
	c.Status(http.StatusNoContent)
}

// AddTemplate adds a unit type to the draft.
func (h *BuildingHandler) AddTemplate(c *gin.Context) {
	var req addTemplateRequest
	if !h.bind(c, &req) {
		return
	}
	tmpl, summary, err := h.svc.AddTemplate(c.Param("draftId"), req.UnitType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": tmpl, "draft": draftResponse{DraftID: c.Param("draftId"), Summary: summary}})
}

// UpdateTemplate patches a template of the draft.
func (h *BuildingHandler) UpdateTemplate(c *gin.Context) {
	var patch models.TemplatePatch
	if !h.bind(c, &patch) {
		return
	}
	summary, err := h.svc.UpdateTemplate(c.Param("draftId"), c.Param("templateId"), patch)
	h.respond(c, summary, err)
}

// DeleteTemplate removes a template from the draft.
func (h *BuildingHandler) DeleteTemplate(c *gin.Context) {
	summary, err := h.svc.DeleteTemplate(c.Param("draftId"), c.Param("templateId"))
	h.respond(c, summary, err)
}

// SetFloors changes the floor count of the draft.
func (h *BuildingHandler) SetFloors(c *gin.Context) {
	var req setFloorsRequest
	if !h.bind(c, &req) {
		return
	}
	summary, err := h.svc.SetTotalFloors(c.Param("draftId"), req.TotalFloors)
	h.respond(c, summary, err)
}

// AddUnits adds one unit, or count units when count is set.
func (h *BuildingHandler) AddUnits(c *gin.Context) {
	var req addUnitsRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	units, summary, err := h.svc.AddUnits(c.Param("draftId"), req.Floor, req.Count, req.TemplateID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"units": units, "draft": draftResponse{DraftID: c.Param("draftId"), Summary: summary}})
}

// UpdateUnit patches a unit of the draft.
func (h *BuildingHandler) UpdateUnit(c *gin.Context) {
	var patch models.UnitPatch
	if !h.bind(c, &patch) {
		return
	}
	summary, err := h.svc.UpdateUnit(c.Param("draftId"), c.Param("unitId"), patch)
	h.respond(c, summary, err)
}

// RemoveUnit deletes a unit from the draft.
func (h *BuildingHandler) RemoveUnit(c *gin.Context) {
	summary, err := h.svc.RemoveUnit(c.Param("draftId"), c.Param("unitId"))
	h.respond(c, summary, err)
}

// SaveDraft persists the draft.
func (h *BuildingHandler) SaveDraft(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	summary, err := h.svc.Save(ctx, c.Param("draftId"))
	h.respond(c, summary, err)
}

// GetBuilding returns a saved building.
func (h *BuildingHandler) GetBuilding(c *gin.Context) {
	summary, err := h.svc.Building(c.Request.Context(), c.Param("buildingId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// OpenDraft loads a saved building into a new draft.
func (h *BuildingHandler) OpenDraft(c *gin.Context) {
	id, summary, err := h.svc.OpenDraft(c.Request.Context(), c.Param("buildingId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, draftResponse{DraftID: id, Summary: summary})
}

func (h *BuildingHandler) bind(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		h.logger.Warn("invalid building payload", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *BuildingHandler) respond(c *gin.Context, summary building.Summary, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse{DraftID: c.Param("draftId"), Summary: summary})
}

func (h *BuildingHandler) fail(c *gin.Context, err error) {
	status := buildingErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("building request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func buildingErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrDraftNotFound),
		errors.Is(err, mongodb.ErrNotFound),
		errors.Is(err, building.ErrTemplateNotFound),
		errors.Is(err, building.ErrUnitNotFound):
		return http.StatusNotFound
	case errors.Is(err, building.ErrLastTemplate),
		errors.Is(err, building.ErrOwnerKeyBound):
		return http.StatusConflict
	case errors.Is(err, building.ErrFloorsOutOfRange),
		errors.Is(err, building.ErrFloorOutOfRange),
		errors.Is(err, building.ErrInvalidUnitType),
		errors.Is(err, building.ErrInvalidUnitCount),
		errors.Is(err, building.ErrInvalidTemplate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
