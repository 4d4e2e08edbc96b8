package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoAlertThresholds struct {
	SeventyFivePercent bool `bson:"seventyFivePercent"`
	FiftyPercent       bool `bson:"fiftyPercent"`
	TwentyFivePercent  bool `bson:"twentyFivePercent"`
	TenPercent         bool `bson:"tenPercent"`
	FivePercent        bool `bson:"fivePercent"`
}

type mongoUser struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Username        string               `bson:"username"`
	Email           string               `bson:"email"`
	PasswordHash    string               `bson:"password"`
	Verified        bool                 `bson:"verified"`
	AlertThresholds mongoAlertThresholds `bson:"alertThresholds"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toUserDoc(user)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// Update persists the full user document, alert flags included. The alert
// machine relies on this being a complete write.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toUserDoc(user)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id string) error {
	return r.setFields(ctx, id, bson.M{"verified": true})
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.setFields(ctx, id, bson.M{"password": passwordHash})
}

func (r *UserRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromUserDoc(&mu), nil
}

// EnsureIndexes creates the unique email and username indexes.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func toUserDoc(user *domain.User) mongoUser {
	return mongoUser{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Verified:     user.Verified,
		AlertThresholds: mongoAlertThresholds{
			SeventyFivePercent: user.AlertThresholds.SeventyFivePercent,
			FiftyPercent:       user.AlertThresholds.FiftyPercent,
			TwentyFivePercent:  user.AlertThresholds.TwentyFivePercent,
			TenPercent:         user.AlertThresholds.TenPercent,
			FivePercent:        user.AlertThresholds.FivePercent,
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func fromUserDoc(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Verified:     mu.Verified,
		AlertThresholds: domain.AlertThresholds{
			SeventyFivePercent: mu.AlertThresholds.SeventyFivePercent,
			FiftyPercent:       mu.AlertThresholds.FiftyPercent,
			TwentyFivePercent:  mu.AlertThresholds.TwentyFivePercent,
			TenPercent:         mu.AlertThresholds.TenPercent,
			FivePercent:        mu.AlertThresholds.FivePercent,
		},
		CreatedAt: mu.CreatedAt,
		UpdatedAt: mu.UpdatedAt,
	}
}
