package building

import (
	"sort"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
	"github.com/Xebarter/Leap-sub002/internal/domain/unitid"
)

// UnitView is a unit together with its display code.
type UnitView struct {
	models.UnitAssignment
	Code string `json:"code"`
}

// FloorUnits groups the units of one floor ordered by unit number.
type FloorUnits struct {
	Floor int        `json:"floor"`
	Units []UnitView `json:"units"`
}

// TemplateUtilization reports how many units of a template are still free.
type TemplateUtilization struct {
	TemplateID string  `json:"template_id"`
	Name       string  `json:"name"`
	Available  int     `json:"available"`
	Total      int     `json:"total"`
	Ratio      float64 `json:"ratio"`
}

// TemplateGroup lists the units that follow a template's changes.
type TemplateGroup struct {
	TemplateKey string   `json:"template_key"`
	TemplateID  string   `json:"template_id"`
	UnitIDs     []string `json:"unit_ids"`
}

// Summary is the full derived view of a configuration.
type Summary struct {
	Configuration models.BuildingConfiguration `json:"configuration"`
	TotalUnits    int                          `json:"total_units"`
	Floors        []FloorUnits                 `json:"floors"`
	Utilization   []TemplateUtilization        `json:"utilization"`
	SyncGroups    []TemplateGroup              `json:"sync_groups"`
}

// TotalUnits counts every unit in the building.
func (c *Configuration) TotalUnits() int {
	return len(c.state.Units)
}

// AvailableByTemplate counts available units per template ID. Every
// template appears, including those with zero available units.
func (c *Configuration) AvailableByTemplate() map[string]int {
	out := make(map[string]int, len(c.state.PropertyTemplates))
	for _, t := range c.state.PropertyTemplates {
		out[t.ID] = 0
	}
	for _, u := range c.state.Units {
		if u.IsAvailable {
			out[u.TemplateID]++
		}
	}
	return out
}

// UnitsByFloor groups units by floor, floors ascending and units ordered by
// number. Floors without units are included with an empty list.
func (c *Configuration) UnitsByFloor() []FloorUnits {
	floors := make([]FloorUnits, c.state.TotalFloors)
	for i := range floors {
		floors[i] = FloorUnits{Floor: i + 1, Units: []UnitView{}}
	}
	for _, u := range c.state.Units {
		f := &floors[u.Floor-1]
		f.Units = append(f.Units, UnitView{UnitAssignment: u, Code: c.UnitCode(u)})
	}
	for i := range floors {
		units := floors[i].Units
		sort.SliceStable(units, func(a, b int) bool {
			return unitNumber(units[a].UnitAssignment) < unitNumber(units[b].UnitAssignment)
		})
	}
	return floors
}

// Utilization reports available/total per template in template order.
func (c *Configuration) Utilization() []TemplateUtilization {
	totals := make(map[string]int, len(c.state.PropertyTemplates))
	available := c.AvailableByTemplate()
	for _, u := range c.state.Units {
		totals[u.TemplateID]++
	}

	out := make([]TemplateUtilization, 0, len(c.state.PropertyTemplates))
	for _, t := range c.state.PropertyTemplates {
		entry := TemplateUtilization{
			TemplateID: t.ID,
			Name:       t.Name,
			Available:  available[t.ID],
			Total:      totals[t.ID],
		}
		if entry.Total > 0 {
			entry.Ratio = float64(entry.Available) / float64(entry.Total)
		}
		out = append(out, entry)
	}
	return out
}

// UnitsByTemplateKey groups the units with SyncWithTemplate set under their
// template's key, in template order. Every template appears.
func (c *Configuration) UnitsByTemplateKey() []TemplateGroup {
	byID := make(map[string][]string, len(c.state.PropertyTemplates))
	for _, u := range c.state.Units {
		if u.SyncWithTemplate {
			byID[u.TemplateID] = append(byID[u.TemplateID], u.ID)
		}
	}

	out := make([]TemplateGroup, 0, len(c.state.PropertyTemplates))
	for _, t := range c.state.PropertyTemplates {
		units := byID[t.ID]
		if units == nil {
			units = []string{}
		}
		out = append(out, TemplateGroup{TemplateKey: t.TemplateKey, TemplateID: t.ID, UnitIDs: units})
	}
	return out
}

// UnitCode returns the formatted generated identifier of u once the building
// has an owner key, and a temporary placeholder before that.
func (c *Configuration) UnitCode(u models.UnitAssignment) string {
	index := unitNumber(u)
	if c.state.OwnerKey == "" {
		return unitid.Placeholder(u.Floor, index)
	}
	id, err := unitid.Generate(c.state.OwnerKey, u.Floor, index)
	if err != nil {
		return unitid.Placeholder(u.Floor, index)
	}
	return unitid.Format(id)
}

// Summary bundles the snapshot with every derived view.
func (c *Configuration) Summary() Summary {
	return Summary{
		Configuration: c.Snapshot(),
		TotalUnits:    c.TotalUnits(),
		Floors:        c.UnitsByFloor(),
		Utilization:   c.Utilization(),
		SyncGroups:    c.UnitsByTemplateKey(),
	}
}

// UnitCodes maps every unit ID to its display code.
func (c *Configuration) UnitCodes() map[string]string {
	out := make(map[string]string, len(c.state.Units))
	for _, u := range c.state.Units {
		out[u.ID] = c.UnitCode(u)
	}
	return out
}
