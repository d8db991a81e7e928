package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"restaurant_map/internal/config"
	"restaurant_map/internal/models"
)

// errCodeGeoKeys is MongoDB's "Can't extract geo keys" write error.
const errCodeGeoKeys = 16755

// Mongo stores records as documents with a 2dsphere index on address.coord.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects, verifies the server and ensures the spatial index.
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := NewMongo(client, client.Database(cfg.Database).Collection(cfg.Collection))
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"database":   cfg.Database,
		"collection": cfg.Collection,
	}).Info("mongo store ready")
	return m, nil
}

func NewMongo(client *mongo.Client, coll *mongo.Collection) *Mongo {
	return &Mongo{client: client, coll: coll}
}

func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "address.coord", Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("create 2dsphere index: %w", err)
	}
	return nil
}

func (m *Mongo) List(ctx context.Context) ([]models.Restaurant, error) {
	cur, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, translateMongo("list", err)
	}
	items := []models.Restaurant{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, translateMongo("list", err)
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, translateMongo("get", err)
	}
	r.Normalize()
	return &r, nil
}

func (m *Mongo) Create(ctx context.Context, r *models.Restaurant) error {
	r.ID = newID()
	r.Normalize()
	if _, err := m.coll.InsertOne(ctx, r); err != nil {
		return translateMongo("create", err)
	}
	return nil
}

func (m *Mongo) CreateMany(ctx context.Context, items []models.Restaurant) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		items[i].ID = newID()
		items[i].Normalize()
		docs[i] = items[i]
	}
	res, err := m.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	if err != nil {
		return inserted, translateMongo("create many", err)
	}
	return inserted, nil
}

func (m *Mongo) Replace(ctx context.Context, id string, r *models.Restaurant) error {
	r.ID = id
	r.Normalize()
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, r)
	if err != nil {
		return translateMongo("replace", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := m.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, translateMongo("delete", err)
	}
	r.Normalize()
	return &r, nil
}

func (m *Mongo) Nearby(ctx context.Context, center models.LngLat, maxMeters float64) ([]models.NearbyRestaurant, error) {
	cur, err := m.coll.Aggregate(ctx, nearbyPipeline(center, maxMeters))
	if err != nil {
		return nil, translateMongo("nearby", err)
	}
	out := []models.NearbyRestaurant{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translateMongo("nearby", err)
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (m *Mongo) ScoresByCuisine(ctx context.Context) ([]models.CuisineScore, error) {
	cur, err := m.coll.Aggregate(ctx, scoresByCuisinePipeline())
	if err != nil {
		return nil, translateMongo("scores by cuisine", err)
	}
	out := []models.CuisineScore{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translateMongo("scores by cuisine", err)
	}
	return out, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return models.NewStoreError("ping", m.client.Ping(ctx, readpref.Primary()))
}

func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

// nearbyPipeline sorts by spherical distance and records it under dist.calculated.
func nearbyPipeline(center models.LngLat, maxMeters float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{center.Lng, center.Lat}},
			}},
			{Key: "key", Value: "address.coord"},
			{Key: "distanceField", Value: "dist.calculated"},
			{Key: "maxDistance", Value: maxMeters},
			{Key: "spherical", Value: true},
		}}},
	}
}

// scoresByCuisinePipeline unwinds grades so every inspection is one sample.
func scoresByCuisinePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "cuisine", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}},
		}}},
		{{Key: "$unwind", Value: "$grades"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$cuisine"},
			{Key: "averageScore", Value: bson.D{{Key: "$avg", Value: "$grades.score"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averageScore", Value: -1}}}},
	}
}

func translateMongo(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: duplicate key", models.ErrInvalidArgument)
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == errCodeGeoKeys {
				return fmt.Errorf("%w: %s", models.ErrInvalidArgument, e.Message)
			}
		}
	}
	return models.NewStoreError(op, err)
}
