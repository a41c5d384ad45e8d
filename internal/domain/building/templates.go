package building

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

var validate = validator.New()

type templateDefaults struct {
	label     string
	bedrooms  int
	bathrooms int
	area      float64
}

// defaultsByType seeds new templates; area is in square metres.
var defaultsByType = map[models.UnitType]templateDefaults{
	models.UnitTypeStudio:    {label: "Studio", bedrooms: 0, bathrooms: 1, area: 30},
	models.UnitTypeOneBed:    {label: "1 Bedroom", bedrooms: 1, bathrooms: 1, area: 50},
	models.UnitTypeTwoBed:    {label: "2 Bedroom", bedrooms: 2, bathrooms: 1, area: 75},
	models.UnitTypeThreeBed:  {label: "3 Bedroom", bedrooms: 3, bathrooms: 2, area: 100},
	models.UnitTypeFourBed:   {label: "4 Bedroom", bedrooms: 4, bathrooms: 3, area: 130},
	models.UnitTypePenthouse: {label: "Penthouse", bedrooms: 4, bathrooms: 4, area: 200},
}

// Templates returns a copy of the building's templates in insertion order.
func (c *Configuration) Templates() []models.PropertyTemplate {
	return clone(c.state).PropertyTemplates
}

// Template looks up a template by ID.
func (c *Configuration) Template(id string) (models.PropertyTemplate, bool) {
	idx := c.templateIndex(id)
	if idx < 0 {
		return models.PropertyTemplate{}, false
	}
	t := c.state.PropertyTemplates[idx]
	t.Features = append([]string(nil), t.Features...)
	return t, true
}

// AddTemplate appends a template seeded with the defaults for unitType. The
// display name gets a " (n)" suffix when the plain label is already taken.
func (c *Configuration) AddTemplate(unitType models.UnitType) (models.PropertyTemplate, error) {
	if !unitType.Valid() {
		return models.PropertyTemplate{}, fmt.Errorf("%w: %q", ErrInvalidUnitType, unitType)
	}
	t := c.newTemplate(unitType)
	c.state.PropertyTemplates = append(c.state.PropertyTemplates, t)
	return t, nil
}

// UpdateTemplate merges patch into the template with the given ID.
func (c *Configuration) UpdateTemplate(id string, patch models.TemplatePatch) error {
	idx := c.templateIndex(id)
	if idx < 0 {
		return ErrTemplateNotFound
	}

	candidate := c.state.PropertyTemplates[idx]
	if patch.Name != nil {
		candidate.Name = *patch.Name
	}
	if patch.Description != nil {
		candidate.Description = *patch.Description
	}
	if patch.UnitType != nil {
		candidate.UnitType = *patch.UnitType
	}
	if patch.Bedrooms != nil {
		candidate.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		candidate.Bathrooms = *patch.Bathrooms
	}
	if patch.Area != nil {
		candidate.Area = *patch.Area
	}
	if patch.Price != nil {
		candidate.Price = *patch.Price
	}
	if patch.Features != nil {
		candidate.Features = append([]string(nil), patch.Features...)
	}

	if err := validateTemplate(candidate); err != nil {
		return err
	}
	c.state.PropertyTemplates[idx] = candidate
	return nil
}

// DeleteTemplate removes a template and moves its units onto the first
// remaining template. The last template can never be deleted.
func (c *Configuration) DeleteTemplate(id string) error {
	idx := c.templateIndex(id)
	if idx < 0 {
		return ErrTemplateNotFound
	}
	if len(c.state.PropertyTemplates) == 1 {
		return ErrLastTemplate
	}

	c.state.PropertyTemplates = append(c.state.PropertyTemplates[:idx:idx], c.state.PropertyTemplates[idx+1:]...)
	fallback := c.state.PropertyTemplates[0].ID
	for i := range c.state.Units {
		if c.state.Units[i].TemplateID == id {
			c.state.Units[i].TemplateID = fallback
		}
	}
	return nil
}

func (c *Configuration) newTemplate(unitType models.UnitType) models.PropertyTemplate {
	d := defaultsByType[unitType]
	return models.PropertyTemplate{
		ID:          c.ids.Next(kindTemplate),
		TemplateKey: c.ids.Next(kindKey),
		Name:        c.uniqueTemplateName(d.label),
		UnitType:    unitType,
		Bedrooms:    d.bedrooms,
		Bathrooms:   d.bathrooms,
		Area:        d.area,
		Price:       decimal.Zero,
		Features:    []string{},
	}
}

func (c *Configuration) uniqueTemplateName(base string) string {
	taken := make(map[string]struct{}, len(c.state.PropertyTemplates))
	for _, t := range c.state.PropertyTemplates {
		taken[t.Name] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		name := fmt.Sprintf("%s (%d)", base, n)
		if _, ok := taken[name]; !ok {
			return name
		}
	}
}

func validateTemplate(t models.PropertyTemplate) error {
	if !t.UnitType.Valid() {
		return fmt.Errorf("%w: unknown unit type %q", ErrInvalidTemplate, t.UnitType)
	}
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if t.Bedrooms == 0 && t.UnitType != models.UnitTypeStudio {
		return fmt.Errorf("%w: only studios may have zero bedrooms", ErrInvalidTemplate)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidTemplate)
	}
	return nil
}
