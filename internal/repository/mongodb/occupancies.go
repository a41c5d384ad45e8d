package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

// OccupancyRepository persists occupancy records and the unit availability
// they control.
type OccupancyRepository interface {
	FindCurrentOccupancy(ctx context.Context, propertyID string) (models.OccupancyRecord, error)
	ListOccupancies(ctx context.Context, propertyID string) ([]models.OccupancyRecord, error)
	ListLiveOccupancies(ctx context.Context) ([]models.OccupancyRecord, error)
	SaveOccupancy(ctx context.Context, rec models.OccupancyRecord) error
	SetUnitAvailability(ctx context.Context, unitID string, available bool) error
}

var liveStatuses = bson.A{string(models.OccupancyActive), string(models.OccupancyExtended)}

// FindCurrentOccupancy returns the live occupancy of a property, or the most
// recently updated one when none is live.
func (r *MongoDBRepository) FindCurrentOccupancy(ctx context.Context, propertyID string) (models.OccupancyRecord, error) {
	newest := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	var rec models.OccupancyRecord
	err := r.collection(occupanciesCollection).
		FindOne(ctx, bson.M{"property_id": propertyID, "status": bson.M{"$in": liveStatuses}}, newest).
		Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = r.collection(occupanciesCollection).
			FindOne(ctx, bson.M{"property_id": propertyID}, newest).
			Decode(&rec)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.OccupancyRecord{}, ErrNotFound
	}
	if err != nil {
		return models.OccupancyRecord{}, fmt.Errorf("failed to load occupancy for property %s: %w", propertyID, err)
	}
	return rec, nil
}

// ListOccupancies returns every occupancy of a property, newest first.
func (r *MongoDBRepository) ListOccupancies(ctx context.Context, propertyID string) ([]models.OccupancyRecord, error) {
	cursor, err := r.collection(occupanciesCollection).Find(ctx,
		bson.M{"property_id": propertyID},
		options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query occupancies for property %s: %w", propertyID, err)
	}

	records := []models.OccupancyRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode occupancies: %w", err)
	}
	return records, nil
}

// ListLiveOccupancies returns every active or extended occupancy.
func (r *MongoDBRepository) ListLiveOccupancies(ctx context.Context) ([]models.OccupancyRecord, error) {
	records := []models.OccupancyRecord{}
	if err := r.findAll(ctx, occupanciesCollection, bson.M{"status": bson.M{"$in": liveStatuses}}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveOccupancy upserts an occupancy record by ID.
func (r *MongoDBRepository) SaveOccupancy(ctx context.Context, rec models.OccupancyRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("occupancy id must not be empty")
	}
	_, err := r.collection(occupanciesCollection).ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save occupancy %s: %w", rec.ID, err)
	}
	return nil
}
