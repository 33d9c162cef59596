package analytics

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository runs the aggregation pipelines behind the analytics views. It
// reads the collections owned by the resource services and never writes.
type Repository struct {
	users      *mongo.Collection
	placements *mongo.Collection
	programs   *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:      db.Collection("users"),
		placements: db.Collection("placements"),
		programs:   db.Collection("training_programs"),
	}
}

func dateRange(field string, start, end time.Time) bson.M {
	if start.IsZero() && end.IsZero() {
		return bson.M{}
	}
	return bson.M{field: bson.M{"$gte": start, "$lt": end}}
}

// UserRoleStats groups accounts per role with active and verified breakdowns.
func (r *Repository) UserRoleStats(ctx context.Context) ([]RoleStats, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":      "$role",
			"total":    bson.M{"$sum": 1},
			"active":   bson.M{"$sum": bson.M{"$cond": bson.A{"$is_active", 1, 0}}},
			"verified": bson.M{"$sum": bson.M{"$cond": bson.A{"$is_verified", 1, 0}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate role stats: %w", err)
	}
	var rows []struct {
		Role     string `bson:"_id"`
		Total    int64  `bson:"total"`
		Active   int64  `bson:"active"`
		Verified int64  `bson:"verified"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	stats := make([]RoleStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, RoleStats{
			Role:     row.Role,
			Total:    row.Total,
			Active:   row.Active,
			Inactive: row.Total - row.Active,
			Verified: row.Verified,
		})
	}
	return stats, nil
}

// UserDepartmentCounts groups student accounts per department.
func (r *Repository) UserDepartmentCounts(ctx context.Context) ([]CountBucket, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"student.department": bson.M{"$exists": true}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$student.department", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	return r.countBuckets(ctx, r.users, pipeline)
}

// PlacementStatusCounts groups placement records by status inside the window.
func (r *Repository) PlacementStatusCounts(ctx context.Context, start, end time.Time) ([]CountBucket, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: dateRange("created_at", start, end)}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	return r.countBuckets(ctx, r.placements, pipeline)
}

// PlacementIndustryCounts groups placement records by industry.
func (r *Repository) PlacementIndustryCounts(ctx context.Context, start, end time.Time) ([]CountBucket, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: dateRange("created_at", start, end)}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$company.industry", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	return r.countBuckets(ctx, r.placements, pipeline)
}

// PlacementVerifiedCount counts verified records inside the window.
func (r *Repository) PlacementVerifiedCount(ctx context.Context, start, end time.Time) (int64, error) {
	query := dateRange("created_at", start, end)
	query["verification.is_verified"] = true
	return r.placements.CountDocuments(ctx, query)
}

// PlacementCTCs returns the package values of records that reached an offer,
// for the stats and histogram computed in the service.
func (r *Repository) PlacementCTCs(ctx context.Context, start, end time.Time) ([]float64, error) {
	query := dateRange("created_at", start, end)
	query["status"] = bson.M{"$in": bson.A{"Offer Received", "Offer Accepted", "Offer Declined"}}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: query}},
		bson.D{{Key: "$project", Value: bson.M{"ctc": "$package.ctc"}}},
	}
	cursor, err := r.placements.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate package values: %w", err)
	}
	var rows []struct {
		CTC float64 `bson:"ctc"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.CTC)
	}
	return values, nil
}

// ProgramCountsBy groups training programs by the given document field.
func (r *Repository) ProgramCountsBy(ctx context.Context, field string) ([]CountBucket, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	return r.countBuckets(ctx, r.programs, pipeline)
}

// AverageFeedbackRating averages every feedback entry across programs.
func (r *Repository) AverageFeedbackRating(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$feedback"}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$feedback.rating"}}}},
	}
	cursor, err := r.programs.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate feedback rating: %w", err)
	}
	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Avg, nil
}

// EnrollmentStatusCounts groups every enrollment entry across programs.
func (r *Repository) EnrollmentStatusCounts(ctx context.Context) ([]CountBucket, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$students"}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$students.status", "count": bson.M{"$sum": 1}}}},
	}
	return r.countBuckets(ctx, r.programs, pipeline)
}

// Trend source selectors.
const (
	TrendRegistrations = "registrations"
	TrendPlacements    = "placements"
	TrendEnrollments   = "enrollments"
)

// DailyCounts buckets one collection's documents by calendar day inside the
// window.
func (r *Repository) DailyCounts(ctx context.Context, source string, start, end time.Time) ([]TrendPoint, error) {
	var coll *mongo.Collection
	dateField := "created_at"
	pipeline := mongo.Pipeline{}
	switch source {
	case TrendRegistrations:
		coll = r.users
	case TrendPlacements:
		coll = r.placements
	case TrendEnrollments:
		coll = r.programs
		dateField = "students.enrolled_at"
		pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: "$students"}})
	default:
		return nil, fmt.Errorf("unknown trend source %q", source)
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: dateRange(dateField, start, end)}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$" + dateField}},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	)
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s trend: %w", source, err)
	}
	var rows []struct {
		Date  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	points := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, TrendPoint{Date: row.Date, Count: row.Count})
	}
	return points, nil
}

func (r *Repository) countBuckets(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]CountBucket, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate counts: %w", err)
	}
	var rows []struct {
		Label string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	buckets := make([]CountBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, CountBucket{Label: row.Label, Count: row.Count})
	}
	return buckets, nil
}
