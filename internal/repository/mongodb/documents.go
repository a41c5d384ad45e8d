package mongodb

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

type buildingDocument struct {
	ID           string    `bson:"_id"`
	OwnerKey     string    `bson:"owner_key"`
	BuildingName string    `bson:"building_name"`
	TotalFloors  int       `bson:"total_floors"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type templateDocument struct {
	ID          string               `bson:"_id"`
	BuildingID  string               `bson:"building_id"`
	Position    int                  `bson:"position"`
	TemplateKey string               `bson:"template_key"`
	Name        string               `bson:"name"`
	Description string               `bson:"description,omitempty"`
	UnitType    string               `bson:"unit_type"`
	Bedrooms    int                  `bson:"bedrooms"`
	Bathrooms   int                  `bson:"bathrooms"`
	Area        float64              `bson:"area"`
	Price       primitive.Decimal128 `bson:"price"`
	Features    []string             `bson:"features"`
}

type unitDocument struct {
	ID               string `bson:"_id"`
	BuildingID       string `bson:"building_id"`
	Position         int    `bson:"position"`
	UnitNumber       string `bson:"unit_number"`
	UnitCode         string `bson:"unit_code"`
	Floor            int    `bson:"floor"`
	TemplateID       string `bson:"template_id"`
	IsAvailable      bool   `bson:"is_available"`
	SyncWithTemplate bool   `bson:"sync_with_template"`
}

// buildingDocuments splits a configuration into the records stored per
// collection. unitCodes carries the display code for each unit ID.
func buildingDocuments(cfg models.BuildingConfiguration, unitCodes map[string]string, now time.Time) (buildingDocument, []templateDocument, []unitDocument, error) {
	if cfg.ID == "" {
		return buildingDocument{}, nil, nil, fmt.Errorf("building id must be set before saving")
	}

	b := buildingDocument{
		ID:           cfg.ID,
		OwnerKey:     cfg.OwnerKey,
		BuildingName: cfg.BuildingName,
		TotalFloors:  cfg.TotalFloors,
		UpdatedAt:    now,
	}

	templates := make([]templateDocument, 0, len(cfg.PropertyTemplates))
	for i, t := range cfg.PropertyTemplates {
		price, err := primitive.ParseDecimal128(t.Price.String())
		if err != nil {
			return buildingDocument{}, nil, nil, fmt.Errorf("encode price of template %s: %w", t.ID, err)
		}
		features := t.Features
		if features == nil {
			features = []string{}
		}
		templates = append(templates, templateDocument{
			ID:          t.ID,
			BuildingID:  cfg.ID,
			Position:    i,
			TemplateKey: t.TemplateKey,
			Name:        t.Name,
			Description: t.Description,
			UnitType:    string(t.UnitType),
			Bedrooms:    t.Bedrooms,
			Bathrooms:   t.Bathrooms,
			Area:        t.Area,
			Price:       price,
			Features:    features,
		})
	}

	units := make([]unitDocument, 0, len(cfg.Units))
	for i, u := range cfg.Units {
		units = append(units, unitDocument{
			ID:               u.ID,
			BuildingID:       cfg.ID,
			Position:         i,
			UnitNumber:       u.UnitNumber,
			UnitCode:         unitCodes[u.ID],
			Floor:            u.Floor,
			TemplateID:       u.TemplateID,
			IsAvailable:      u.IsAvailable,
			SyncWithTemplate: u.SyncWithTemplate,
		})
	}

	return b, templates, units, nil
}

// unitUpdate builds the upsert for one unit. The availability flag is only
// overwritten when the draft edited it; otherwise it is set on insert.
func unitUpdate(u unitDocument, availabilityEdited bool) bson.M {
	set := bson.M{
		"building_id":        u.BuildingID,
		"position":           u.Position,
		"unit_number":        u.UnitNumber,
		"unit_code":          u.UnitCode,
		"floor":              u.Floor,
		"template_id":        u.TemplateID,
		"sync_with_template": u.SyncWithTemplate,
	}
	update := bson.M{"$set": set}
	if availabilityEdited {
		set["is_available"] = u.IsAvailable
	} else {
		update["$setOnInsert"] = bson.M{"is_available": u.IsAvailable}
	}
	return update
}

// configurationFromDocuments reassembles a configuration, restoring the
// original template and unit order.
func configurationFromDocuments(b buildingDocument, templates []templateDocument, units []unitDocument) (models.BuildingConfiguration, error) {
	sort.SliceStable(templates, func(i, j int) bool { return templates[i].Position < templates[j].Position })
	sort.SliceStable(units, func(i, j int) bool { return units[i].Position < units[j].Position })

	cfg := models.BuildingConfiguration{
		ID:                b.ID,
		OwnerKey:          b.OwnerKey,
		BuildingName:      b.BuildingName,
		TotalFloors:       b.TotalFloors,
		PropertyTemplates: make([]models.PropertyTemplate, 0, len(templates)),
		Units:             make([]models.UnitAssignment, 0, len(units)),
	}

	for _, t := range templates {
		price, err := decimal.NewFromString(t.Price.String())
		if err != nil {
			return models.BuildingConfiguration{}, fmt.Errorf("decode price of template %s: %w", t.ID, err)
		}
		cfg.PropertyTemplates = append(cfg.PropertyTemplates, models.PropertyTemplate{
			ID:          t.ID,
			TemplateKey: t.TemplateKey,
			Name:        t.Name,
			Description: t.Description,
			UnitType:    models.UnitType(t.UnitType),
			Bedrooms:    t.Bedrooms,
			Bathrooms:   t.Bathrooms,
			Area:        t.Area,
			Price:       price,
			Features:    t.Features,
		})
	}

	for _, u := range units {
		cfg.Units = append(cfg.Units, models.UnitAssignment{
			ID:               u.ID,
			UnitNumber:       u.UnitNumber,
			Floor:            u.Floor,
			TemplateID:       u.TemplateID,
			IsAvailable:      u.IsAvailable,
			SyncWithTemplate: u.SyncWithTemplate,
		})
	}

	return cfg, nil
}
