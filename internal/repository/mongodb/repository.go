package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	buildingsCollection   = "buildings"
	templatesCollection   = "property_templates"
	unitsCollection       = "property_units"
	occupanciesCollection = "occupancies"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// MongoDBRepository implements the building and occupancy repositories on MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

// EnsureIndexes creates the lookup indexes used by the repository queries.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	byBuilding := mongo.IndexModel{Keys: bson.D{{Key: "building_id", Value: 1}}}
	if _, err := r.collection(templatesCollection).Indexes().CreateOne(ctx, byBuilding); err != nil {
		return fmt.Errorf("create template index: %w", err)
	}
	if _, err := r.collection(unitsCollection).Indexes().CreateOne(ctx, byBuilding); err != nil {
		return fmt.Errorf("create unit index: %w", err)
	}

	byProperty := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}}}
	if _, err := r.collection(occupanciesCollection).Indexes().CreateOne(ctx, byProperty); err != nil {
		return fmt.Errorf("create occupancy index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}
