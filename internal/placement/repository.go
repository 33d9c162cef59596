package placement

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"PlacementPortal/pkg/apperrors"
)

// Repository handles persistence for placement records.
type Repository struct {
	records *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{records: db.Collection("placements")}
}

func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	_, err := r.records.InsertOne(ctx, rec)
	return err
}

func (r *Repository) FindByID(ctx context.Context, id primitive.ObjectID) (*Record, error) {
	var rec Record
	err := r.records.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Record, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Industry != "" {
		query["company.industry"] = filter.Industry
	}
	if filter.Verified != nil {
		query["verification.is_verified"] = *filter.Verified
	}
	if filter.Student != "" {
		if oid, err := primitive.ObjectIDFromHex(filter.Student); err == nil {
			query["student"] = oid
		}
	}

	total, err := r.records.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cursor, err := r.records.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Update replaces the mutable fields of a record. Verification is written
// only through Verify.
func (r *Repository) Update(ctx context.Context, rec *Record) error {
	update := bson.M{"$set": bson.M{
		"company":    rec.Company,
		"position":   rec.Position,
		"package":    rec.Package,
		"location":   rec.Location,
		"timeline":   rec.Timeline,
		"process":    rec.Process,
		"status":     rec.Status,
		"updated_at": rec.UpdatedAt,
	}}
	res, err := r.records.UpdateOne(ctx, bson.M{"_id": rec.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("placement record not found")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.records.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("placement record not found")
	}
	return nil
}

// Verify stamps the verification block in one write. Re-verification simply
// overwrites verifier and time.
func (r *Repository) Verify(ctx context.Context, id, verifier primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"verification.is_verified": true,
		"verification.verified_by": verifier,
		"verification.verified_at": at,
		"updated_at":               at,
	}}
	res, err := r.records.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("placement record not found")
	}
	return nil
}
