package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

func sampleConfiguration() models.BuildingConfiguration {
	return models.BuildingConfiguration{
		ID:           "b-1",
		OwnerKey:     "b-1",
		BuildingName: "Bugolobi Flats",
		TotalFloors:  2,
		PropertyTemplates: []models.PropertyTemplate{
			{ID: "t-1", TemplateKey: "k-1", Name: "Studio", UnitType: models.UnitTypeStudio, Bathrooms: 1, Area: 30, Price: decimal.RequireFromString("650000.50"), Features: []string{"wifi"}},
			{ID: "t-2", TemplateKey: "k-2", Name: "2 Bedroom", UnitType: models.UnitTypeTwoBed, Bedrooms: 2, Bathrooms: 1, Area: 75, Price: decimal.NewFromInt(1200000)},
		},
		Units: []models.UnitAssignment{
			{ID: "u-2", UnitNumber: "1", Floor: 2, TemplateID: "t-2", IsAvailable: true, SyncWithTemplate: true},
			{ID: "u-1", UnitNumber: "1", Floor: 1, TemplateID: "t-1", IsAvailable: false},
		},
	}
}

func TestBuildingDocuments_PreservesOrderAndPrice(t *testing.T) {
	cfg := sampleConfiguration()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	b, templates, units, err := buildingDocuments(cfg, map[string]string{"u-1": "123-456-7890"}, now)
	require.NoError(t, err)
	assert.Equal(t, now, b.UpdatedAt)
	require.Len(t, units, 2)
	assert.Equal(t, "123-456-7890", units[1].UnitCode)
	assert.Empty(t, units[0].UnitCode)
	assert.Equal(t, []string{}, templates[1].Features)

	// reverse storage order to mimic an unordered query result
	templates[0], templates[1] = templates[1], templates[0]
	units[0], units[1] = units[1], units[0]

	got, err := configurationFromDocuments(b, templates, units)
	require.NoError(t, err)

	assert.Equal(t, cfg.BuildingName, got.BuildingName)
	assert.Equal(t, cfg.TotalFloors, got.TotalFloors)
	require.Len(t, got.PropertyTemplates, 2)
	assert.Equal(t, "t-1", got.PropertyTemplates[0].ID)
	assert.True(t, got.PropertyTemplates[0].Price.Equal(cfg.PropertyTemplates[0].Price), got.PropertyTemplates[0].Price.String())
	assert.True(t, got.PropertyTemplates[1].Price.Equal(cfg.PropertyTemplates[1].Price))
	assert.Equal(t, cfg.Units, got.Units)
}

func TestBuildingDocuments_RequiresID(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.ID = ""

	_, _, _, err := buildingDocuments(cfg, nil, time.Now())
	assert.Error(t, err)
}

func TestUnitUpdate_KeepsStoredAvailabilityUnlessEdited(t *testing.T) {
	_, _, units, err := buildingDocuments(sampleConfiguration(), nil, time.Now())
	require.NoError(t, err)
	u := units[1]

	update := unitUpdate(u, false)
	set := update["$set"].(bson.M)
	assert.NotContains(t, set, "is_available")
	assert.Equal(t, bson.M{"is_available": false}, update["$setOnInsert"])
	assert.Equal(t, "b-1", set["building_id"])
	assert.Equal(t, 1, set["position"])

	update = unitUpdate(u, true)
	set = update["$set"].(bson.M)
	assert.Equal(t, false, set["is_available"])
	assert.NotContains(t, update, "$setOnInsert")
}
