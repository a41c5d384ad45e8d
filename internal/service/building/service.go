package building

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/domain/building"
	"github.com/Xebarter/Leap-sub002/internal/domain/models"
	repo "github.com/Xebarter/Leap-sub002/internal/repository/mongodb"
)

// CreateDraftRequest seeds a new building draft.
type CreateDraftRequest struct {
	BuildingName string          `json:"building_name" binding:"required"`
	TotalFloors  int             `json:"total_floors" binding:"required"`
	UnitType     models.UnitType `json:"unit_type" binding:"required"`
}

// Service edits building drafts in memory and persists them on demand.
type Service struct {
	drafts *DraftStore
	repo   repo.BuildingRepository
	newID  func() string
	logger *zap.Logger
}

// NewService wires a new building service instance.
func NewService(repository repo.BuildingRepository, drafts *DraftStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if drafts == nil {
		drafts = NewDraftStore()
	}
	return &Service{
		drafts: drafts,
		repo:   repository,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// CreateDraft starts a new unsaved building.
func (s *Service) CreateDraft(req CreateDraftRequest) (string, building.Summary, error) {
	cfg, err := building.New(req.BuildingName, req.TotalFloors, req.UnitType)
	if err != nil {
		return "", building.Summary{}, err
	}
	id := s.newID()
	s.drafts.Put(id, cfg)
	s.logger.Info("building draft created", zap.String("draft_id", id), zap.Int("floors", req.TotalFloors))
	return id, cfg.Summary(), nil
}

// Draft returns the current view of a draft.
func (s *Service) Draft(draftID string) (building.Summary, error) {
	var summary building.Summary
	err := s.drafts.View(draftID, func(cfg *building.Configuration) {
		summary = cfg.Summary()
	})
	return summary, err
}

// AddTemplate adds a unit type to the draft.
func (s *Service) AddTemplate(draftID string, unitType models.UnitType) (models.PropertyTemplate, building.Summary, error) {
	var tmpl models.PropertyTemplate
	summary, err := s.mutate(draftID, func(cfg *building.Configuration) (err error) {
		tmpl, err = cfg.AddTemplate(unitType)
		return err
	})
	return tmpl, summary, err
}

// UpdateTemplate merges patch into a template of the draft.
func (s *Service) UpdateTemplate(draftID, templateID string, patch models.TemplatePatch) (building.Summary, error) {
	return s.mutate(draftID, func(cfg *building.Configuration) error {
		return cfg.UpdateTemplate(templateID, patch)
	})
}

// DeleteTemplate removes a template, moving its units to the first remaining one.
func (s *Service) DeleteTemplate(draftID, templateID string) (building.Summary, error) {
	return s.mutate(draftID, func(cfg *building.Configuration) error {
		return cfg.DeleteTemplate(templateID)
	})
}

// Rename changes the draft building's display name.
func (s *Service) Rename(draftID, name string) (building.Summary, error) {
	return s.mutate(draftID, func(cfg *building.Configuration) error {
		cfg.Rename(name)
		return nil
	})
}

// SetTotalFloors grows or shrinks the draft building.
func (s *Service) SetTotalFloors(draftID string, floors int) (building.Summary, error) {
	return s.mutate(draftID, func(cfg *building.Configuration) error {
		return cfg.SetTotalFloors(floors)
	})
}

// AddUnits appends count units of a template to floor.
func (s *Service) AddUnits(draftID string, floor, count int, templateID string) ([]models.UnitAssignment, building.Summary, error) {
	var added []models.UnitAssignment
	summary, err := s.mutate(draftID, func(cfg *building.Configuration) (err error) {
		added, err = cfg.BulkAddUnits(floor, count, templateID)
		return err
	})
	return added, summary, err
}

// UpdateUnit merges patch into a unit of the draft.
func (s *Service) UpdateUnit(draftID, unitID string, patch models.UnitPatch) (building.Summary, error) {
	return s.mutate(draftID, func(cfg *building.Configuration) error {
		return cfg.UpdateUnit(unitID, patch)
	})
}

// RemoveUnit deletes a unit and renumbers its floor.
func (s *Service) RemoveUnit(draftID, unitID string) (building.Summary, error) {
	return s.mutate(draftID, func(cfg *building.Configuration) error {
		return cfg.RemoveUnit(unitID)
	})
}

// Save persists the draft. The first save binds the building's owner key
// and replaces temporary IDs; the draft stays open for further edits. The
// draft is only locked while it is prepared and while the stored
// availability is copied back, never during the write itself.
func (s *Service) Save(ctx context.Context, draftID string) (building.Summary, error) {
	var w repo.BuildingWrite
	err := s.drafts.Update(draftID, func(cfg *building.Configuration) error {
		if cfg.OwnerKey() == "" {
			if err := cfg.AssignOwnerKey(s.newID()); err != nil {
				return err
			}
		}
		cfg.PromoteIDs(s.newID)
		w = repo.BuildingWrite{
			Configuration:     cfg.Snapshot(),
			UnitCodes:         cfg.UnitCodes(),
			AvailabilityEdits: cfg.AvailabilityEdits(),
		}
		return nil
	})
	if err != nil {
		return building.Summary{}, err
	}

	stored, err := s.repo.SaveBuilding(ctx, w)
	if err != nil {
		return building.Summary{}, fmt.Errorf("save building %s: %w", w.Configuration.ID, err)
	}

	summary, err := s.mutate(draftID, func(cfg *building.Configuration) error {
		cfg.SyncAvailability(stored, w.AvailabilityEdits)
		return nil
	})
	if errors.Is(err, ErrDraftNotFound) {
		// discarded while the write was in flight
		cfg, rerr := building.Restore(w.Configuration)
		if rerr != nil {
			return building.Summary{}, rerr
		}
		cfg.SyncAvailability(stored, w.AvailabilityEdits)
		summary, err = cfg.Summary(), nil
	}
	if err != nil {
		return building.Summary{}, err
	}

	s.logger.Info("building saved",
		zap.String("draft_id", draftID),
		zap.String("building_id", summary.Configuration.ID),
		zap.Int("units", summary.TotalUnits))
	return summary, nil
}

// Building loads a persisted building.
func (s *Service) Building(ctx context.Context, buildingID string) (building.Summary, error) {
	cfg, err := s.load(ctx, buildingID)
	if err != nil {
		return building.Summary{}, err
	}
	return cfg.Summary(), nil
}

// OpenDraft loads a persisted building into a new draft for editing.
func (s *Service) OpenDraft(ctx context.Context, buildingID string) (string, building.Summary, error) {
	cfg, err := s.load(ctx, buildingID)
	if err != nil {
		return "", building.Summary{}, err
	}
	id := s.newID()
	s.drafts.Put(id, cfg)
	return id, cfg.Summary(), nil
}

// PurgeDrafts drops drafts idle for longer than ttl.
func (s *Service) PurgeDrafts(ttl time.Duration) int {
	removed := s.drafts.Purge(ttl)
	if removed > 0 {
		s.logger.Info("purged stale building drafts", zap.Int("count", removed))
	}
	return removed
}

// DiscardDraft drops a draft without saving it.
func (s *Service) DiscardDraft(draftID string) {
	s.drafts.Delete(draftID)
}

func (s *Service) load(ctx context.Context, buildingID string) (*building.Configuration, error) {
	snapshot, err := s.repo.FindBuilding(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("load building %s: %w", buildingID, err)
	}
	cfg, err := building.Restore(snapshot)
	if err != nil {
		return nil, fmt.Errorf("restore building %s: %w", buildingID, err)
	}
	return cfg, nil
}

func (s *Service) mutate(draftID string, fn func(*building.Configuration) error) (building.Summary, error) {
	var summary building.Summary
	err := s.drafts.Update(draftID, func(cfg *building.Configuration) error {
		if err := fn(cfg); err != nil {
			return err
		}
		summary = cfg.Summary()
		return nil
	})
	return summary, err
}
