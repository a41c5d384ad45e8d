package models

import "github.com/shopspring/decimal"

// UnitType enumerates the marketable unit categories a building can offer.
type UnitType string

const (
	UnitTypeStudio    UnitType = "Studio"
	UnitTypeOneBed    UnitType = "1BR"
	UnitTypeTwoBed    UnitType = "2BR"
	UnitTypeThreeBed  UnitType = "3BR"
	UnitTypeFourBed   UnitType = "4BR"
	UnitTypePenthouse UnitType = "Penthouse"
)

// UnitTypes lists every supported unit type in display order.
var UnitTypes = []UnitType{
	UnitTypeStudio,
	UnitTypeOneBed,
	UnitTypeTwoBed,
	UnitTypeThreeBed,
	UnitTypeFourBed,
	UnitTypePenthouse,
}

// Valid reports whether t is one of the supported unit types.
func (t UnitType) Valid() bool {
	for _, known := range UnitTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PropertyTemplate describes one unit type offered inside a building. Many
// physical units may share the same template.
type PropertyTemplate struct {
	ID          string          `json:"id"`
	TemplateKey string          `json:"template_key"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitType    UnitType        `json:"unit_type"`
	Bedrooms    int             `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int             `json:"bathrooms" validate:"gte=0"`
	Area        float64         `json:"area" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features"`
}

// UnitAssignment is one physical unit placed on a floor.
type UnitAssignment struct {
	ID               string `json:"id"`
	UnitNumber       string `json:"unit_number"`
	Floor            int    `json:"floor"`
	TemplateID       string `json:"template_id"`
	IsAvailable      bool   `json:"is_available"`
	SyncWithTemplate bool   `json:"sync_with_template"`
}

// BuildingConfiguration is the floors/templates/units aggregate edited by admins.
// OwnerKey stays empty until the configuration is first saved.
type BuildingConfiguration struct {
	ID                string             `json:"id,omitempty"`
	OwnerKey          string             `json:"owner_key,omitempty"`
	BuildingName      string             `json:"building_name"`
	TotalFloors       int                `json:"total_floors"`
	PropertyTemplates []PropertyTemplate `json:"property_templates"`
	Units             []UnitAssignment   `json:"units"`
}

// TemplatePatch carries the optional fields merged by a template update.
type TemplatePatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	UnitType    *UnitType        `json:"unit_type,omitempty"`
	Bedrooms    *int             `json:"bedrooms,omitempty"`
	Bathrooms   *int             `json:"bathrooms,omitempty"`
	Area        *float64         `json:"area,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Features    []string         `json:"features,omitempty"`
}

// UnitPatch carries the optional fields merged by a unit update.
type UnitPatch struct {
	IsAvailable      *bool   `json:"is_available,omitempty"`
	TemplateID       *string `json:"template_id,omitempty"`
	SyncWithTemplate *bool   `json:"sync_with_template,omitempty"`
}
