// Package building keeps a building's floors, unit templates and unit
// assignments consistent while an admin edits them. Every mutator either
// applies completely or returns an error and leaves the aggregate untouched.
package building

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
	"github.com/Xebarter/Leap-sub002/internal/domain/unitid"
)

const (
	// MinFloors and MaxFloors bound TotalFloors.
	MinFloors = 1
	MaxFloors = 50
	// MaxBulkUnits caps a single BulkAddUnits call.
	MaxBulkUnits = 100

	kindTemplate = "template"
	kindUnit     = "unit"
	kindKey      = "key"
)

var (
	ErrFloorsOutOfRange  = fmt.Errorf("total floors must be between %d and %d", MinFloors, MaxFloors)
	ErrFloorOutOfRange   = errors.New("floor does not exist in this building")
	ErrLastTemplate      = errors.New("a building must keep at least one template")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrUnitNotFound      = errors.New("unit not found")
	ErrInvalidUnitType   = errors.New("unknown unit type")
	ErrInvalidUnitCount  = fmt.Errorf("unit count must be between 1 and %d", MaxBulkUnits)
	ErrInvalidTemplate   = errors.New("invalid template fields")
	ErrOwnerKeyBound     = errors.New("owner key already bound to a different value")
	ErrMissingOwnerKey   = errors.New("owner key must not be empty")
	ErrInconsistentState = errors.New("configuration violates building invariants")
)

// Configuration is a single admin session's editable building. It is not
// safe for concurrent use; callers serialize access.
type Configuration struct {
	state models.BuildingConfiguration
	ids   *unitid.Allocator
	// availabilityEdits holds the availability set by this session per unit
	// ID, until a save confirms it.
	availabilityEdits map[string]bool
}

// New creates a configuration with one template of the given type and one
// default unit on every floor.
func New(name string, totalFloors int, unitType models.UnitType) (*Configuration, error) {
	if totalFloors < MinFloors || totalFloors > MaxFloors {
		return nil, ErrFloorsOutOfRange
	}
	if !unitType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUnitType, unitType)
	}

	c := &Configuration{
		state: models.BuildingConfiguration{BuildingName: name},
		ids:   unitid.NewAllocator(0),
	}
	c.state.PropertyTemplates = append(c.state.PropertyTemplates, c.newTemplate(unitType))
	c.growTo(totalFloors)
	return c, nil
}

// Restore rebuilds a configuration from a persisted snapshot. Unit numbers
// are normalized to a contiguous 1..N sequence per floor.
func Restore(snapshot models.BuildingConfiguration) (*Configuration, error) {
	if snapshot.TotalFloors < MinFloors || snapshot.TotalFloors > MaxFloors {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentState, ErrFloorsOutOfRange)
	}
	if len(snapshot.PropertyTemplates) == 0 {
		return nil, fmt.Errorf("%w: no templates", ErrInconsistentState)
	}

	c := &Configuration{state: clone(snapshot), ids: unitid.NewAllocator(highestTemporary(snapshot))}

	floors := make(map[int]struct{})
	for _, u := range c.state.Units {
		if u.Floor < MinFloors || u.Floor > c.state.TotalFloors {
			return nil, fmt.Errorf("%w: unit %s on floor %d", ErrInconsistentState, u.ID, u.Floor)
		}
		if c.templateIndex(u.TemplateID) < 0 {
			return nil, fmt.Errorf("%w: unit %s references template %s", ErrInconsistentState, u.ID, u.TemplateID)
		}
		floors[u.Floor] = struct{}{}
	}

	for floor := range floors {
		c.sortFloor(floor)
		c.renumberFloor(floor)
	}
	return c, nil
}

// Snapshot returns a deep copy of the aggregate suitable for persistence.
func (c *Configuration) Snapshot() models.BuildingConfiguration {
	return clone(c.state)
}

// BuildingName returns the display name of the building.
func (c *Configuration) BuildingName() string { return c.state.BuildingName }

// TotalFloors returns the current floor count.
func (c *Configuration) TotalFloors() int { return c.state.TotalFloors }

// OwnerKey returns the stable key bound on first save, or "".
func (c *Configuration) OwnerKey() string { return c.state.OwnerKey }

// Rename changes the building's display name.
func (c *Configuration) Rename(name string) {
	c.state.BuildingName = name
}

// AssignOwnerKey binds the stable building key used to derive unit codes.
// Binding the same key twice is allowed.
func (c *Configuration) AssignOwnerKey(key string) error {
	if key == "" {
		return ErrMissingOwnerKey
	}
	if c.state.OwnerKey != "" && c.state.OwnerKey != key {
		return ErrOwnerKeyBound
	}
	c.state.OwnerKey = key
	if c.state.ID == "" {
		c.state.ID = key
	}
	return nil
}

// PromoteIDs replaces every temporary template ID, template key and unit ID
// with one minted by newID, rewriting unit template references to match.
func (c *Configuration) PromoteIDs(newID func() string) {
	renamed := make(map[string]string)
	for i := range c.state.PropertyTemplates {
		t := &c.state.PropertyTemplates[i]
		if unitid.IsTemporary(t.ID) {
			id := newID()
			renamed[t.ID] = id
			t.ID = id
		}
		if unitid.IsTemporary(t.TemplateKey) {
			t.TemplateKey = newID()
		}
	}
	for i := range c.state.Units {
		u := &c.state.Units[i]
		if id, ok := renamed[u.TemplateID]; ok {
			u.TemplateID = id
		}
		if unitid.IsTemporary(u.ID) {
			id := newID()
			if v, ok := c.availabilityEdits[u.ID]; ok {
				delete(c.availabilityEdits, u.ID)
				c.availabilityEdits[id] = v
			}
			u.ID = id
		}
	}
}

func (c *Configuration) templateIndex(id string) int {
	for i, t := range c.state.PropertyTemplates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Configuration) unitIndex(id string) int {
	for i, u := range c.state.Units {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (c *Configuration) floorUnitCount(floor int) int {
	n := 0
	for _, u := range c.state.Units {
		if u.Floor == floor {
			n++
		}
	}
	return n
}

func (c *Configuration) newUnit(floor, index int, templateID string) models.UnitAssignment {
	return models.UnitAssignment{
		ID:               c.ids.Next(kindUnit),
		UnitNumber:       strconv.Itoa(index),
		Floor:            floor,
		TemplateID:       templateID,
		IsAvailable:      true,
		SyncWithTemplate: true,
	}
}

// renumberFloor rewrites the unit numbers on floor to 1..N in slice order.
func (c *Configuration) renumberFloor(floor int) {
	next := 1
	for i := range c.state.Units {
		if c.state.Units[i].Floor != floor {
			continue
		}
		c.state.Units[i].UnitNumber = strconv.Itoa(next)
		next++
	}
}

// sortFloor reorders the units of floor by their current number while
// keeping every other unit in place.
func (c *Configuration) sortFloor(floor int) {
	var positions []int
	var units []models.UnitAssignment
	for i, u := range c.state.Units {
		if u.Floor == floor {
			positions = append(positions, i)
			units = append(units, u)
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		return unitNumber(units[i]) < unitNumber(units[j])
	})
	for i, pos := range positions {
		c.state.Units[pos] = units[i]
	}
}

func unitNumber(u models.UnitAssignment) int {
	n, err := strconv.Atoi(u.UnitNumber)
	if err != nil {
		return 0
	}
	return n
}

// highestTemporary returns the largest sequence number among temporary IDs
// in snapshot so a restored allocator never reissues one of them.
func highestTemporary(snapshot models.BuildingConfiguration) int {
	high := 0
	track := func(id string) {
		if !unitid.IsTemporary(id) {
			return
		}
		if n, err := strconv.Atoi(id[strings.LastIndex(id, "-")+1:]); err == nil && n > high {
			high = n
		}
	}
	for _, t := range snapshot.PropertyTemplates {
		track(t.ID)
		track(t.TemplateKey)
	}
	for _, u := range snapshot.Units {
		track(u.ID)
	}
	return high
}

func clone(in models.BuildingConfiguration) models.BuildingConfiguration {
	out := in
	out.PropertyTemplates = make([]models.PropertyTemplate, len(in.PropertyTemplates))
	for i, t := range in.PropertyTemplates {
		t.Features = append([]string(nil), t.Features...)
		out.PropertyTemplates[i] = t
	}
	out.Units = append([]models.UnitAssignment(nil), in.Units...)
	return out
}
