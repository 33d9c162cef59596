package training

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"PlacementPortal/pkg/apperrors"
)

// Repository handles persistence for training programs. Enrollment mutations
// touch the entries array and the seat counter in single document updates, so
// the two can never drift.
type Repository struct {
	programs *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{programs: db.Collection("training_programs")}
}

func (r *Repository) Insert(ctx context.Context, p *Program) error {
	_, err := r.programs.InsertOne(ctx, p)
	return err
}

func (r *Repository) FindByID(ctx context.Context, id primitive.ObjectID) (*Program, error) {
	var p Program
	err := r.programs.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Program, int64, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Level != "" {
		query["level"] = filter.Level
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Open != nil {
		query["enrollment_window.is_open"] = *filter.Open
	}

	total, err := r.programs.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.M{"schedule.start_date": 1}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cursor, err := r.programs.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	var programs []Program
	if err := cursor.All(ctx, &programs); err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}

// Update replaces the program metadata. Enrollment entries, feedback and the
// seat counter are written only through their dedicated operations.
func (r *Repository) Update(ctx context.Context, p *Program) error {
	update := bson.M{"$set": bson.M{
		"title":                 p.Title,
		"description":           p.Description,
		"category":              p.Category,
		"type":                  p.Type,
		"level":                 p.Level,
		"status":                p.Status,
		"instructor":            p.Instructor,
		"schedule":              p.Schedule,
		"capacity.max_students": p.Capacity.MaxStudents,
		"enrollment_window":     p.Window,
		"updated_at":            p.UpdatedAt,
	}}
	res, err := r.programs.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("training program not found")
	}
	return nil
}

// DeleteIfUnenrolled removes the program only while no student holds a seat.
// The guard is part of the delete filter, so a concurrent enrollment cannot
// slip in between check and delete.
func (r *Repository) DeleteIfUnenrolled(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.programs.DeleteOne(ctx, bson.M{
		"_id":                       id,
		"capacity.current_enrolled": 0,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// Enroll appends an enrollment entry and increments the seat counter in one
// atomic update. The filter re-checks capacity and non-membership, so under
// concurrent attempts against the last seat at most one succeeds.
func (r *Repository) Enroll(ctx context.Context, id primitive.ObjectID, e Enrollment) (bool, error) {
	filter := bson.M{
		"_id":              id,
		"students.student": bson.M{"$ne": e.Student},
		"$expr":            bson.M{"$lt": bson.A{"$capacity.current_enrolled", "$capacity.max_students"}},
	}
	update := bson.M{
		"$push": bson.M{"students": e},
		"$inc":  bson.M{"capacity.current_enrolled": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.programs.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// UpdateEnrollment rewrites one student's enrollment entry via the positional
// operator, adjusting the seat counter in the same write when the status
// moves in or out of the active set. The filter pins the status the counter
// delta was computed from, so a concurrent status change makes the write miss
// instead of drifting the counter.
func (r *Repository) UpdateEnrollment(ctx context.Context, id, student primitive.ObjectID, e Enrollment, prior EnrollmentStatus, counterDelta int) (bool, error) {
	filter := bson.M{
		"_id":      id,
		"students": bson.M{"$elemMatch": bson.M{"student": student, "status": prior}},
	}
	update := bson.M{
		"$set": bson.M{
			"students.$.progress":    e.Progress,
			"students.$.status":      e.Status,
			"students.$.certificate": e.Certificate,
			"updated_at":             time.Now().UTC(),
		},
	}
	if counterDelta != 0 {
		update["$inc"] = bson.M{"capacity.current_enrolled": counterDelta}
	}
	res, err := r.programs.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// AddFeedback appends one feedback entry. The filter requires an enrollment
// and the absence of prior feedback from the same student, so the once-only
// rule holds even under concurrent submissions.
func (r *Repository) AddFeedback(ctx context.Context, id primitive.ObjectID, f FeedbackEntry) (bool, error) {
	filter := bson.M{
		"_id":              id,
		"students.student": f.Student,
		"feedback.student": bson.M{"$ne": f.Student},
	}
	update := bson.M{
		"$push": bson.M{"feedback": f},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.programs.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
