package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	domain "mongo-user-service/internal/domain/user"
)

// UserRepoMongo implements the Repository interface on a MongoDB collection.
type UserRepoMongo struct {
	col *mongodriver.Collection // users collection, unique index on email
	log *zap.Logger             // Structured logger for database operations
}

// NewUserRepoMongo creates a new instance of UserRepoMongo.
func NewUserRepoMongo(col *mongodriver.Collection, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{col: col, log: log}
}

// userDocument represents the persisted shape of a user.
type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"` // Storage-assigned identifier
	Name     string             `bson:"name"`
	Email    string             `bson:"email"` // Unique across the collection
	Age      int64              `bson:"age"`
	IsActive bool               `bson:"is_active"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Email:    d.Email,
		Age:      d.Age,
		IsActive: d.IsActive,
	}
}

// Create inserts a new user and returns the assigned id.
// A unique-index violation on email surfaces as domain.ErrDuplicateEmail.
func (r *UserRepoMongo) Create(ctx context.Context, u *domain.User) (string, error) {
	if u == nil {
		return "", errors.New("user cannot be nil")
	}

	doc := userDocument{
		Name:     u.Name,
		Email:    u.Email,
		Age:      u.Age,
		IsActive: u.IsActive,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			r.log.Warn("duplicate email rejected by unique index", zap.String("email", u.Email))
			return "", fmt.Errorf("failed to create user: %w", domain.ErrDuplicateEmail)
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	r.log.Info("user created in db", zap.String("id", oid.Hex()))
	return oid.Hex(), nil
}

// GetByID retrieves a user by their unique id.
func (r *UserRepoMongo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", domain.ErrNotFound)
	}

	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			r.log.Warn("user not found", zap.String("id", id))
			return nil, fmt.Errorf("failed to get user: %w", domain.ErrNotFound)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return doc.toDomain(), nil
}

// FindByEmail retrieves the first user holding email, skipping excludeID when
// it is a well-formed id. Returns nil without error when no such user exists.
func (r *UserRepoMongo) FindByEmail(ctx context.Context, email, excludeID string) (*domain.User, error) {
	filter := bson.M{"email": email}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return doc.toDomain(), nil
}

// Update applies the non-nil fields of the patch as a single $set and
// returns the number of matched documents.
func (r *UserRepoMongo) Update(ctx context.Context, id string, p domain.Patch) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	set := setDocument(p)
	if len(set) == 0 {
		return 0, errors.New("empty patch")
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			r.log.Warn("duplicate email rejected by unique index", zap.String("id", id))
			return 0, fmt.Errorf("failed to update user: %w", domain.ErrDuplicateEmail)
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", id))
		return 0, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.String("id", id), zap.Int64("matched", res.MatchedCount))
	return res.MatchedCount, nil
}

// Delete removes a user by id and returns the number of deleted documents.
func (r *UserRepoMongo) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	r.log.Info("user deleted in db", zap.String("id", id), zap.Int64("deleted", res.DeletedCount))
	return res.DeletedCount, nil
}

// List retrieves a page of users matching the filter, sorted by name
// ascending with an id tie-break for determinism.
func (r *UserRepoMongo) List(ctx context.Context, f domain.Filter, page, limit int64) ([]domain.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, buildFilter(f), opts)
	if err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.log.Error("failed to decode users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, len(docs))
	for i := range docs {
		users[i] = *docs[i].toDomain()
	}

	return users, nil
}

// Count returns the number of users matching the filter.
func (r *UserRepoMongo) Count(ctx context.Context, f domain.Filter) (int64, error) {
	total, err := r.col.CountDocuments(ctx, buildFilter(f))
	if err != nil {
		r.log.Error("failed to count users in db", zap.Error(err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}
