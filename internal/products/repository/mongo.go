package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/products"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const productsCollection = "products"

type measurementsDocument struct {
	Height float64 `bson:"height"`
	Width  float64 `bson:"width"`
	Weight float64 `bson:"weight"`
}

type productDocument struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Name         string               `bson:"name"`
	Price        float64              `bson:"price"`
	Currency     string               `bson:"currency"`
	Categories   []string             `bson:"categories"`
	Measurements measurementsDocument `bson:"measurements"`
	CreatedAt    time.Time            `bson:"created_at"`
}

func (d productDocument) toProduct() products.Product {
	return products.Product{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Price:      d.Price,
		Currency:   d.Currency,
		Categories: d.Categories,
		Measurements: products.Measurements{
			Height: d.Measurements.Height,
			Width:  d.Measurements.Width,
			Weight: d.Measurements.Weight,
		},
	}
}

type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongo(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{
		client: client,
		coll:   client.Database(database).Collection(productsCollection),
	}
}

func (r *MongoRepository) List(ctx context.Context) ([]products.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	list := make([]products.Product, 0)
	for cur.Next(ctx) {
		var doc productDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		list = append(list, doc.toProduct())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (products.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return products.Product{}, fmt.Errorf("parse id %q: %w", id, err)
	}

	var doc productDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("find product %s: %w", id, err)
	}
	return doc.toProduct(), nil
}

func (r *MongoRepository) Create(ctx context.Context, in products.CreateInput) (products.Product, error) {
	doc := productDocument{
		ID:         primitive.NewObjectID(),
		Name:       in.Name,
		Price:      in.Price,
		Currency:   in.Currency,
		Categories: in.Categories,
		Measurements: measurementsDocument{
			Height: in.Measurements.Height,
			Width:  in.Measurements.Width,
			Weight: in.Measurements.Weight,
		},
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return doc.toProduct(), nil
}

// Update applies $set for the present fields and returns the post-update document.
func (r *MongoRepository) Update(ctx context.Context, id string, in products.UpdateInput) (products.Product, error) {
	set := updateDocument(in)
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return products.Product{}, fmt.Errorf("parse id %q: %w", id, err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	return doc.toProduct(), nil
}

func updateDocument(in products.UpdateInput) bson.D {
	set := bson.D{}
	if in.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *in.Name})
	}
	if in.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *in.Price})
	}
	if in.Currency != nil {
		set = append(set, bson.E{Key: "currency", Value: *in.Currency})
	}
	if in.Categories != nil {
		set = append(set, bson.E{Key: "categories", Value: in.Categories})
	}
	if m := in.Measurements; m != nil {
		set = append(set, bson.E{Key: "measurements", Value: measurementsDocument{
			Height: m.Height,
			Width:  m.Width,
			Weight: m.Weight,
		}})
	}
	return set
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("parse id %q: %w", id, err)
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return products.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.client.Ping(ctx, readpref.Primary())
}
