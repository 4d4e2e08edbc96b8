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

const otpsCollection = "otps"

type OTPRepository struct {
	coll *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{coll: db.Collection(otpsCollection)}
}

type mongoOTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user"`
	CodeHash  string             `bson:"otp"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *OTPRepository) Create(ctx context.Context, otp *domain.OTP) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoOTP{
		UserID:    otp.UserID,
		CodeHash:  otp.CodeHash,
		ExpiresAt: otp.ExpiresAt,
		CreatedAt: otp.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}
	return nil
}

// FindLatestByUser returns the most recently issued code for the user.
func (r *OTPRepository) FindLatestByUser(ctx context.Context, userID string) (*domain.OTP, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "expires_at", Value: -1}})

	var mo mongoOTP
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}, opts).Decode(&mo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}

	return &domain.OTP{
		ID:        mo.ID.Hex(),
		UserID:    mo.UserID,
		CodeHash:  mo.CodeHash,
		ExpiresAt: mo.ExpiresAt,
		CreatedAt: mo.CreatedAt,
	}, nil
}

func (r *OTPRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete otps: %w", err)
	}
	return nil
}

// EnsureIndexes creates the user lookup index and a TTL index so expired
// codes are reaped by the server without application sweeps.
func (r *OTPRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
