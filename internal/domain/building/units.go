package building

import (
	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

// Units returns a copy of every unit in insertion order.
func (c *Configuration) Units() []models.UnitAssignment {
	return append([]models.UnitAssignment(nil), c.state.Units...)
}

// Unit looks up a unit by ID.
func (c *Configuration) Unit(id string) (models.UnitAssignment, bool) {
	idx := c.unitIndex(id)
	if idx < 0 {
		return models.UnitAssignment{}, false
	}
	return c.state.Units[idx], true
}

// SetTotalFloors grows or shrinks the building. New floors receive one unit
// of the first template; units above a removed floor are discarded.
func (c *Configuration) SetTotalFloors(n int) error {
	if n < MinFloors || n > MaxFloors {
		return ErrFloorsOutOfRange
	}

	switch {
	case n > c.state.TotalFloors:
		c.growTo(n)
	case n < c.state.TotalFloors:
		kept := c.state.Units[:0:0]
		for _, u := range c.state.Units {
			if u.Floor <= n {
				kept = append(kept, u)
			}
		}
		c.state.Units = kept
		c.state.TotalFloors = n
	}
	return nil
}

// AddUnit appends an available, template-synced unit to floor.
func (c *Configuration) AddUnit(floor int, templateID string) (models.UnitAssignment, error) {
	units, err := c.BulkAddUnits(floor, 1, templateID)
	if err != nil {
		return models.UnitAssignment{}, err
	}
	return units[0], nil
}

// BulkAddUnits appends count units to floor. Numbering continues from the
// floor's unit count taken once before any unit is added.
func (c *Configuration) BulkAddUnits(floor, count int, templateID string) ([]models.UnitAssignment, error) {
	if floor < MinFloors || floor > c.state.TotalFloors {
		return nil, ErrFloorOutOfRange
	}
	if count < 1 || count > MaxBulkUnits {
		return nil, ErrInvalidUnitCount
	}
	if c.templateIndex(templateID) < 0 {
		return nil, ErrTemplateNotFound
	}

	base := c.floorUnitCount(floor)
	added := make([]models.UnitAssignment, 0, count)
	for i := 1; i <= count; i++ {
		added = append(added, c.newUnit(floor, base+i, templateID))
	}
	c.state.Units = append(c.state.Units, added...)
	return added, nil
}

// RemoveUnit deletes a unit and renumbers the rest of its floor to 1..N,
// preserving their relative order.
func (c *Configuration) RemoveUnit(unitID string) error {
	idx := c.unitIndex(unitID)
	if idx < 0 {
		return ErrUnitNotFound
	}

	floor := c.state.Units[idx].Floor
	c.state.Units = append(c.state.Units[:idx:idx], c.state.Units[idx+1:]...)
	delete(c.availabilityEdits, unitID)
	c.renumberFloor(floor)
	return nil
}

// UpdateUnit merges patch into the unit with the given ID.
func (c *Configuration) UpdateUnit(unitID string, patch models.UnitPatch) error {
	idx := c.unitIndex(unitID)
	if idx < 0 {
		return ErrUnitNotFound
	}
	if patch.TemplateID != nil && c.templateIndex(*patch.TemplateID) < 0 {
		return ErrTemplateNotFound
	}

	u := &c.state.Units[idx]
	if patch.IsAvailable != nil {
		u.IsAvailable = *patch.IsAvailable
		if c.availabilityEdits == nil {
			c.availabilityEdits = make(map[string]bool)
		}
		c.availabilityEdits[unitID] = *patch.IsAvailable
	}
	if patch.TemplateID != nil {
		u.TemplateID = *patch.TemplateID
	}
	if patch.SyncWithTemplate != nil {
		u.SyncWithTemplate = *patch.SyncWithTemplate
	}
	return nil
}

// AvailabilityEdits returns the availability set in this session for each
// unit whose flag was changed since the last confirmed save.
func (c *Configuration) AvailabilityEdits() map[string]bool {
	out := make(map[string]bool, len(c.availabilityEdits))
	for id, v := range c.availabilityEdits {
		out[id] = v
	}
	return out
}

// SyncAvailability copies the persisted availability in stored onto the
// draft after a save that carried the edits in written. An edit made after
// that save started is kept over the stored flag.
func (c *Configuration) SyncAvailability(stored, written map[string]bool) {
	for i := range c.state.Units {
		u := &c.state.Units[i]
		if edit, ok := c.availabilityEdits[u.ID]; ok {
			if sent, wasSent := written[u.ID]; !wasSent || sent != edit {
				continue
			}
			delete(c.availabilityEdits, u.ID)
		}
		if v, ok := stored[u.ID]; ok {
			u.IsAvailable = v
		}
	}
}

func (c *Configuration) growTo(n int) {
	templateID := c.state.PropertyTemplates[0].ID
	for floor := c.state.TotalFloors + 1; floor <= n; floor++ {
		c.state.Units = append(c.state.Units, c.newUnit(floor, c.floorUnitCount(floor)+1, templateID))
	}
	c.state.TotalFloors = n
}
