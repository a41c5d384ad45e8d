package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

// BuildingRepository persists building configurations.
type BuildingRepository interface {
	SaveBuilding(ctx context.Context, w BuildingWrite) (map[string]bool, error)
	FindBuilding(ctx context.Context, id string) (models.BuildingConfiguration, error)
}

// BuildingWrite is one save of a building configuration. UnitCodes carries
// the display code per unit ID. Units already stored keep their persisted
// availability unless their ID is in AvailabilityEdits.
type BuildingWrite struct {
	Configuration     models.BuildingConfiguration
	UnitCodes         map[string]string
	AvailabilityEdits map[string]bool
}

// SaveBuilding upserts the building record, replaces its templates and
// upserts its units, dropping units no longer in the configuration. It
// returns the stored availability of every unit after the write.
func (r *MongoDBRepository) SaveBuilding(ctx context.Context, w BuildingWrite) (map[string]bool, error) {
	b, templates, units, err := buildingDocuments(w.Configuration, w.UnitCodes, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	_, err = r.collection(buildingsCollection).ReplaceOne(ctx, bson.M{"_id": b.ID}, b, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert building %s: %w", b.ID, err)
	}

	byBuilding := bson.M{"building_id": b.ID}
	if _, err := r.collection(templatesCollection).DeleteMany(ctx, byBuilding); err != nil {
		return nil, fmt.Errorf("failed to clear templates of building %s: %w", b.ID, err)
	}
	if len(templates) > 0 {
		docs := make([]interface{}, len(templates))
		for i := range templates {
			docs[i] = templates[i]
		}
		if _, err := r.collection(templatesCollection).InsertMany(ctx, docs); err != nil {
			return nil, fmt.Errorf("failed to insert templates of building %s: %w", b.ID, err)
		}
	}

	ids := make(bson.A, 0, len(units))
	writes := make([]mongo.WriteModel, 0, len(units))
	for _, u := range units {
		_, edited := w.AvailabilityEdits[u.ID]
		ids = append(ids, u.ID)
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetUpdate(unitUpdate(u, edited)).
			SetUpsert(true))
	}
	if len(writes) > 0 {
		if _, err := r.collection(unitsCollection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return nil, fmt.Errorf("failed to upsert units of building %s: %w", b.ID, err)
		}
	}
	stale := bson.M{"building_id": b.ID, "_id": bson.M{"$nin": ids}}
	if _, err := r.collection(unitsCollection).DeleteMany(ctx, stale); err != nil {
		return nil, fmt.Errorf("failed to drop removed units of building %s: %w", b.ID, err)
	}

	stored, err := r.unitAvailability(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("building saved",
		zap.String("building_id", b.ID),
		zap.Int("templates", len(templates)),
		zap.Int("units", len(units)),
		zap.Int("availability_edits", len(w.AvailabilityEdits)))
	return stored, nil
}

// FindBuilding loads a building configuration by ID.
func (r *MongoDBRepository) FindBuilding(ctx context.Context, id string) (models.BuildingConfiguration, error) {
	var b buildingDocument
	err := r.collection(buildingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.BuildingConfiguration{}, ErrNotFound
	}
	if err != nil {
		return models.BuildingConfiguration{}, fmt.Errorf("failed to load building %s: %w", id, err)
	}

	var templates []templateDocument
	if err := r.findAll(ctx, templatesCollection, bson.M{"building_id": id}, &templates); err != nil {
		return models.BuildingConfiguration{}, err
	}
	var units []unitDocument
	if err := r.findAll(ctx, unitsCollection, bson.M{"building_id": id}, &units); err != nil {
		return models.BuildingConfiguration{}, err
	}

	return configurationFromDocuments(b, templates, units)
}

// SetUnitAvailability flips the availability flag of a persisted unit.
func (r *MongoDBRepository) SetUnitAvailability(ctx context.Context, unitID string, available bool) error {
	res, err := r.collection(unitsCollection).UpdateOne(ctx,
		bson.M{"_id": unitID},
		bson.M{"$set": bson.M{"is_available": available}})
	if err != nil {
		return fmt.Errorf("failed to update unit %s availability: %w", unitID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoDBRepository) unitAvailability(ctx context.Context, buildingID string) (map[string]bool, error) {
	var units []unitDocument
	if err := r.findAll(ctx, unitsCollection, bson.M{"building_id": buildingID}, &units); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(units))
	for _, u := range units {
		out[u.ID] = u.IsAvailable
	}
	return out, nil
}

func (r *MongoDBRepository) findAll(ctx context.Context, coll string, filter bson.M, out interface{}) error {
	cursor, err := r.collection(coll).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll, err)
	}
	return nil
}
