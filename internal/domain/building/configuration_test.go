package building

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

func newTestConfig(t *testing.T, floors int) *Configuration {
	t.Helper()
	c, err := New("Kololo Heights", floors, models.UnitTypeOneBed)
	require.NoError(t, err)
	return c
}

func firstTemplateID(c *Configuration) string {
	return c.Templates()[0].ID
}

func numbersOnFloor(c *Configuration, floor int) []string {
	var out []string
	for _, f := range c.UnitsByFloor() {
		if f.Floor != floor {
			continue
		}
		for _, u := range f.Units {
			out = append(out, u.UnitNumber)
		}
	}
	return out
}

func unitsOnFloor(c *Configuration, floor int) []models.UnitAssignment {
	var out []models.UnitAssignment
	for _, u := range c.Units() {
		if u.Floor == floor {
			out = append(out, u)
		}
	}
	return out
}

func TestNew_SeedsOneUnitPerFloor(t *testing.T) {
	c := newTestConfig(t, 3)

	assert.Equal(t, 3, c.TotalFloors())
	assert.Equal(t, 3, c.TotalUnits())
	require.Len(t, c.Templates(), 1)

	tmpl := c.Templates()[0]
	assert.Equal(t, "1 Bedroom", tmpl.Name)
	assert.Equal(t, 1, tmpl.Bedrooms)
	assert.NotEmpty(t, tmpl.TemplateKey)

	for floor := 1; floor <= 3; floor++ {
		assert.Equal(t, []string{"1"}, numbersOnFloor(c, floor))
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New("x", 0, models.UnitTypeStudio)
	assert.ErrorIs(t, err, ErrFloorsOutOfRange)

	_, err = New("x", 2, models.UnitType("Castle"))
	assert.ErrorIs(t, err, ErrInvalidUnitType)
}

func TestSetTotalFloors_Bounds(t *testing.T) {
	c := newTestConfig(t, 4)
	before := c.Snapshot()

	assert.ErrorIs(t, c.SetTotalFloors(0), ErrFloorsOutOfRange)
	assert.ErrorIs(t, c.SetTotalFloors(51), ErrFloorsOutOfRange)

	assert.Equal(t, 4, c.TotalFloors())
	assert.Equal(t, before, c.Snapshot())

	require.NoError(t, c.SetTotalFloors(50))
	assert.Equal(t, 50, c.TotalFloors())
}

func TestSetTotalFloors_ShrinkDiscardsUpperFloors(t *testing.T) {
	c := newTestConfig(t, 5)
	tid := firstTemplateID(c)
	_, err := c.BulkAddUnits(5, 3, tid)
	require.NoError(t, err)
	_, err = c.BulkAddUnits(2, 2, tid)
	require.NoError(t, err)
	lowerBefore := append(append(unitsOnFloor(c, 1), unitsOnFloor(c, 2)...), unitsOnFloor(c, 3)...)

	require.NoError(t, c.SetTotalFloors(3))

	assert.Equal(t, 3, c.TotalFloors())
	assert.Empty(t, unitsOnFloor(c, 4))
	assert.Empty(t, unitsOnFloor(c, 5))
	lowerAfter := append(append(unitsOnFloor(c, 1), unitsOnFloor(c, 2)...), unitsOnFloor(c, 3)...)
	assert.Equal(t, lowerBefore, lowerAfter)
}

func TestSetTotalFloors_GrowUsesFirstTemplate(t *testing.T) {
	c := newTestConfig(t, 1)
	second, err := c.AddTemplate(models.UnitTypeStudio)
	require.NoError(t, err)

	require.NoError(t, c.SetTotalFloors(2))

	added := unitsOnFloor(c, 2)
	require.Len(t, added, 1)
	assert.Equal(t, firstTemplateID(c), added[0].TemplateID)
	assert.NotEqual(t, second.ID, added[0].TemplateID)
	assert.Equal(t, "1", added[0].UnitNumber)
}

func TestAddTemplate_DisambiguatesName(t *testing.T) {
	c := newTestConfig(t, 1)

	second, err := c.AddTemplate(models.UnitTypeOneBed)
	require.NoError(t, err)
	third, err := c.AddTemplate(models.UnitTypeOneBed)
	require.NoError(t, err)
	studio, err := c.AddTemplate(models.UnitTypeStudio)
	require.NoError(t, err)

	assert.Equal(t, "1 Bedroom (2)", second.Name)
	assert.Equal(t, "1 Bedroom (3)", third.Name)
	assert.Equal(t, "Studio", studio.Name)
	assert.Equal(t, 0, studio.Bedrooms)
	assert.NotEqual(t, second.TemplateKey, third.TemplateKey)

	_, err = c.AddTemplate(models.UnitType("Loft"))
	assert.ErrorIs(t, err, ErrInvalidUnitType)
}

func TestUpdateTemplate(t *testing.T) {
	c := newTestConfig(t, 1)
	tid := firstTemplateID(c)

	name := "Garden 1BR"
	price := decimal.NewFromInt(850000)
	require.NoError(t, c.UpdateTemplate(tid, models.TemplatePatch{
		Name:     &name,
		Price:    &price,
		Features: []string{"balcony", "parking"},
	}))

	got, ok := c.Template(tid)
	require.True(t, ok)
	assert.Equal(t, "Garden 1BR", got.Name)
	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, []string{"balcony", "parking"}, got.Features)
	assert.Equal(t, 1, got.Bedrooms)
}

func TestUpdateTemplate_RejectsInvalidFields(t *testing.T) {
	c := newTestConfig(t, 1)
	tid := firstTemplateID(c)
	before := c.Snapshot()

	negative := -1
	assert.ErrorIs(t, c.UpdateTemplate(tid, models.TemplatePatch{Bathrooms: &negative}), ErrInvalidTemplate)

	zero := 0
	assert.ErrorIs(t, c.UpdateTemplate(tid, models.TemplatePatch{Bedrooms: &zero}), ErrInvalidTemplate)

	price := decimal.NewFromInt(-5)
	assert.ErrorIs(t, c.UpdateTemplate(tid, models.TemplatePatch{Price: &price}), ErrInvalidTemplate)

	assert.Equal(t, before, c.Snapshot())
	assert.ErrorIs(t, c.UpdateTemplate("missing", models.TemplatePatch{}), ErrTemplateNotFound)

	studio := models.UnitTypeStudio
	require.NoError(t, c.UpdateTemplate(tid, models.TemplatePatch{UnitType: &studio, Bedrooms: &zero}))
}

func TestDeleteTemplate_LastTemplateProtected(t *testing.T) {
	c := newTestConfig(t, 2)
	tid := firstTemplateID(c)
	before := c.Snapshot()

	assert.ErrorIs(t, c.DeleteTemplate(tid), ErrLastTemplate)
	assert.Len(t, c.Templates(), 1)
	assert.Equal(t, before, c.Snapshot())
}

func TestDeleteTemplate_ReassignsToFirstRemaining(t *testing.T) {
	c := newTestConfig(t, 2)
	first := firstTemplateID(c)
	second, err := c.AddTemplate(models.UnitTypeTwoBed)
	require.NoError(t, err)
	third, err := c.AddTemplate(models.UnitTypeStudio)
	require.NoError(t, err)

	_, err = c.BulkAddUnits(1, 2, third.ID)
	require.NoError(t, err)

	require.NoError(t, c.DeleteTemplate(first))

	assert.Len(t, c.Templates(), 2)
	for _, u := range c.Units() {
		assert.Contains(t, []string{second.ID, third.ID}, u.TemplateID)
	}
	for _, f := range c.UnitsByFloor() {
		for _, u := range f.Units {
			if u.UnitNumber == "1" {
				assert.Equal(t, second.ID, u.TemplateID, "floor %d seed unit", f.Floor)
			}
		}
	}
	assert.ErrorIs(t, c.DeleteTemplate(first), ErrTemplateNotFound)
}

func TestAddUnit(t *testing.T) {
	c := newTestConfig(t, 2)
	tid := firstTemplateID(c)

	u, err := c.AddUnit(2, tid)
	require.NoError(t, err)
	assert.Equal(t, "2", u.UnitNumber)
	assert.True(t, u.IsAvailable)
	assert.True(t, u.SyncWithTemplate)

	_, err = c.AddUnit(3, tid)
	assert.ErrorIs(t, err, ErrFloorOutOfRange)
	_, err = c.AddUnit(0, tid)
	assert.ErrorIs(t, err, ErrFloorOutOfRange)
	_, err = c.AddUnit(1, "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestBulkAddUnits_RejectsBadCount(t *testing.T) {
	c := newTestConfig(t, 1)
	tid := firstTemplateID(c)

	_, err := c.BulkAddUnits(1, 0, tid)
	assert.ErrorIs(t, err, ErrInvalidUnitCount)
	_, err = c.BulkAddUnits(1, MaxBulkUnits+1, tid)
	assert.ErrorIs(t, err, ErrInvalidUnitCount)
	assert.Equal(t, 1, c.TotalUnits())
}

func TestRemoveUnit_RenumbersFloor(t *testing.T) {
	c := newTestConfig(t, 1)
	tid := firstTemplateID(c)
	_, err := c.BulkAddUnits(1, 2, tid)
	require.NoError(t, err)

	floor := unitsOnFloor(c, 1)
	require.Len(t, floor, 3)
	require.Equal(t, []string{"1", "2", "3"}, numbersOnFloor(c, 1))

	require.NoError(t, c.RemoveUnit(floor[1].ID))

	remaining := unitsOnFloor(c, 1)
	require.Len(t, remaining, 2)
	assert.Equal(t, floor[0].ID, remaining[0].ID)
	assert.Equal(t, "1", remaining[0].UnitNumber)
	assert.Equal(t, floor[2].ID, remaining[1].ID)
	assert.Equal(t, "2", remaining[1].UnitNumber)

	assert.ErrorIs(t, c.RemoveUnit(floor[1].ID), ErrUnitNotFound)
}

func TestUpdateUnit(t *testing.T) {
	c := newTestConfig(t, 1)
	studio, err := c.AddTemplate(models.UnitTypeStudio)
	require.NoError(t, err)
	unit := c.Units()[0]

	unavailable := false
	noSync := false
	require.NoError(t, c.UpdateUnit(unit.ID, models.UnitPatch{
		IsAvailable:      &unavailable,
		TemplateID:       &studio.ID,
		SyncWithTemplate: &noSync,
	}))

	got, ok := c.Unit(unit.ID)
	require.True(t, ok)
	assert.False(t, got.IsAvailable)
	assert.False(t, got.SyncWithTemplate)
	assert.Equal(t, studio.ID, got.TemplateID)

	missing := "missing"
	assert.ErrorIs(t, c.UpdateUnit(unit.ID, models.UnitPatch{TemplateID: &missing}), ErrTemplateNotFound)
	assert.ErrorIs(t, c.UpdateUnit("nope", models.UnitPatch{}), ErrUnitNotFound)
}

func TestScenario_FloorsBulkAddRemove(t *testing.T) {
	c := newTestConfig(t, 1)
	tid := firstTemplateID(c)

	require.NoError(t, c.SetTotalFloors(3))
	assert.Equal(t, 3, c.TotalUnits())
	for floor := 1; floor <= 3; floor++ {
		assert.Equal(t, []string{"1"}, numbersOnFloor(c, floor))
	}

	_, err := c.BulkAddUnits(2, 2, tid)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, numbersOnFloor(c, 2))

	floorTwo := unitsOnFloor(c, 2)
	require.NoError(t, c.RemoveUnit(floorTwo[0].ID))
	assert.Equal(t, []string{"1", "2"}, numbersOnFloor(c, 2))
	assert.Equal(t, 4, c.TotalUnits())
}

func TestPromoteIDs_RewritesReferences(t *testing.T) {
	c := newTestConfig(t, 2)
	second, err := c.AddTemplate(models.UnitTypeStudio)
	require.NoError(t, err)
	_, err = c.AddUnit(1, second.ID)
	require.NoError(t, err)

	n := 0
	c.PromoteIDs(func() string {
		n++
		return "perm-" + string(rune('a'+n))
	})

	ids := make(map[string]struct{})
	keys := make(map[string]struct{})
	for _, tmpl := range c.Templates() {
		assert.NotContains(t, tmpl.ID, "tmp-")
		assert.NotContains(t, tmpl.TemplateKey, "tmp-")
		assert.NotEqual(t, tmpl.ID, tmpl.TemplateKey)
		ids[tmpl.ID] = struct{}{}
		keys[tmpl.TemplateKey] = struct{}{}
	}
	assert.Len(t, keys, 2)
	for _, u := range c.Units() {
		assert.NotContains(t, u.ID, "tmp-")
		assert.Contains(t, ids, u.TemplateID)
	}
}

func TestPromoteIDs_KeepsPermanentKeysAndRekeysEdits(t *testing.T) {
	c := newTestConfig(t, 1)
	unit := c.Units()[0]
	taken := false
	require.NoError(t, c.UpdateUnit(unit.ID, models.UnitPatch{IsAvailable: &taken}))

	n := 0
	c.PromoteIDs(func() string {
		n++
		return fmt.Sprintf("perm-%d", n)
	})
	promotedKey := c.Templates()[0].TemplateKey
	promotedUnit := c.Units()[0].ID
	assert.Equal(t, map[string]bool{promotedUnit: false}, c.AvailabilityEdits())

	c.PromoteIDs(func() string {
		t.Fatal("nothing temporary is left to promote")
		return ""
	})
	assert.Equal(t, promotedKey, c.Templates()[0].TemplateKey)
	assert.Equal(t, promotedUnit, c.Units()[0].ID)
}

func TestAvailabilityEdits_TrackSessionChanges(t *testing.T) {
	c := newTestConfig(t, 2)
	units := c.Units()
	assert.Empty(t, c.AvailabilityEdits())

	taken := false
	require.NoError(t, c.UpdateUnit(units[0].ID, models.UnitPatch{IsAvailable: &taken}))
	require.NoError(t, c.UpdateUnit(units[1].ID, models.UnitPatch{IsAvailable: &taken}))
	noSync := false
	require.NoError(t, c.UpdateUnit(units[1].ID, models.UnitPatch{SyncWithTemplate: &noSync}))
	assert.Equal(t, map[string]bool{units[0].ID: false, units[1].ID: false}, c.AvailabilityEdits())

	require.NoError(t, c.RemoveUnit(units[1].ID))
	assert.Equal(t, map[string]bool{units[0].ID: false}, c.AvailabilityEdits())

	restored, err := Restore(c.Snapshot())
	require.NoError(t, err)
	assert.Empty(t, restored.AvailabilityEdits())
}

func TestSyncAvailability(t *testing.T) {
	c := newTestConfig(t, 3)
	units := c.Units()
	taken := false
	require.NoError(t, c.UpdateUnit(units[0].ID, models.UnitPatch{IsAvailable: &taken}))
	written := c.AvailabilityEdits()

	// made while the save was in flight
	require.NoError(t, c.UpdateUnit(units[1].ID, models.UnitPatch{IsAvailable: &taken}))

	stored := map[string]bool{units[0].ID: false, units[1].ID: true, units[2].ID: false}
	c.SyncAvailability(stored, written)

	got := c.Units()
	assert.False(t, got[0].IsAvailable)
	assert.False(t, got[1].IsAvailable, "unsaved edit wins over the stored flag")
	assert.False(t, got[2].IsAvailable, "stored flag replaces the draft's")
	assert.Equal(t, map[string]bool{units[1].ID: false}, c.AvailabilityEdits())
}

func TestAssignOwnerKey(t *testing.T) {
	c := newTestConfig(t, 1)

	assert.ErrorIs(t, c.AssignOwnerKey(""), ErrMissingOwnerKey)
	require.NoError(t, c.AssignOwnerKey("b-1"))
	require.NoError(t, c.AssignOwnerKey("b-1"))
	assert.ErrorIs(t, c.AssignOwnerKey("b-2"), ErrOwnerKeyBound)
	assert.Equal(t, "b-1", c.OwnerKey())
	assert.Equal(t, "b-1", c.Snapshot().ID)
}

func TestRestore_NormalizesNumbering(t *testing.T) {
	snapshot := models.BuildingConfiguration{
		ID:           "b-1",
		OwnerKey:     "b-1",
		BuildingName: "Ntinda Court",
		TotalFloors:  2,
		PropertyTemplates: []models.PropertyTemplate{
			{ID: "t-1", Name: "Studio", UnitType: models.UnitTypeStudio},
		},
		Units: []models.UnitAssignment{
			{ID: "u-3", UnitNumber: "5", Floor: 1, TemplateID: "t-1"},
			{ID: "u-1", UnitNumber: "2", Floor: 1, TemplateID: "t-1"},
			{ID: "u-2", UnitNumber: "1", Floor: 2, TemplateID: "t-1"},
		},
	}

	c, err := Restore(snapshot)
	require.NoError(t, err)

	floor := unitsOnFloor(c, 1)
	require.Len(t, floor, 2)
	assert.Equal(t, "u-1", floor[0].ID)
	assert.Equal(t, "1", floor[0].UnitNumber)
	assert.Equal(t, "u-3", floor[1].ID)
	assert.Equal(t, "2", floor[1].UnitNumber)

	u, err := c.AddUnit(1, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "3", u.UnitNumber)
}

func TestRestore_RejectsBrokenSnapshots(t *testing.T) {
	_, err := Restore(models.BuildingConfiguration{TotalFloors: 1})
	assert.ErrorIs(t, err, ErrInconsistentState)

	_, err = Restore(models.BuildingConfiguration{
		TotalFloors:       1,
		PropertyTemplates: []models.PropertyTemplate{{ID: "t-1"}},
		Units:             []models.UnitAssignment{{ID: "u-1", Floor: 2, TemplateID: "t-1"}},
	})
	assert.ErrorIs(t, err, ErrInconsistentState)

	_, err = Restore(models.BuildingConfiguration{
		TotalFloors:       1,
		PropertyTemplates: []models.PropertyTemplate{{ID: "t-1"}},
		Units:             []models.UnitAssignment{{ID: "u-1", Floor: 1, TemplateID: "t-9"}},
	})
	assert.ErrorIs(t, err, ErrInconsistentState)
}
