package identity

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"PlacementPortal/pkg/apperrors"
)

// Repository handles persistence for user accounts.
type Repository struct {
	users *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{users: db.Collection("users")}
}

func (r *Repository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByStudentID(ctx context.Context, studentID string) (*User, error) {
	var user User
	err := r.users.FindOne(ctx, bson.M{"student.student_id": studentID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Insert(ctx context.Context, user *User) error {
	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("email or student id already registered")
		}
		return err
	}
	return nil
}

// userUpdateDocument spells out every mutable field. Absent profile pointers
// and an empty phone become $unset, so a role demotion actually removes the
// stale sub-document (and frees its sparse-unique student_id).
func userUpdateDocument(user *User) bson.M {
	set := bson.M{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"is_verified":   user.IsVerified,
		"updated_at":    user.UpdatedAt,
	}
	unset := bson.M{}
	if user.Phone != "" {
		set["phone"] = user.Phone
	} else {
		unset["phone"] = ""
	}
	if user.Student != nil {
		set["student"] = user.Student
	} else {
		unset["student"] = ""
	}
	if user.Faculty != nil {
		set["faculty"] = user.Faculty
	} else {
		unset["faculty"] = ""
	}
	return bson.M{"$set": set, "$unset": unset}
}

// Update replaces the mutable fields of an existing user document.
func (r *Repository) Update(ctx context.Context, user *User) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": user.ID}, userUpdateDocument(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("email or student id already registered")
		}
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// List returns one page of the directory plus the unpaged total.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]User, int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Department != "" {
		query["$or"] = []bson.M{
			{"student.department": filter.Department},
			{"faculty.department": filter.Department},
		}
	}
	if filter.Year > 0 {
		query["student.year"] = filter.Year
	}
	if filter.IsActive != nil {
		query["is_active"] = *filter.IsActive
	}

	total, err := r.users.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cursor, err := r.users.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// RoleCounts aggregates the number of accounts per role.
func (r *Repository) RoleCounts(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate role counts: %w", err)
	}
	var rows []struct {
		Role  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
