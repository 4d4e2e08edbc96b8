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
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

const (
	incomesCollection  = "incomes"
	expensesCollection = "expenses"
)

// TransactionRepository persists incomes and expenses in two collections of
// identical shape, selected by kind.
type TransactionRepository struct {
	db *mongo.Database
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type mongoTransaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user"`
	Title       string             `bson:"title"`
	Amount      float64            `bson:"amount"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	Date        string             `bson:"date"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (r *TransactionRepository) coll(kind domain.TransactionKind) *mongo.Collection {
	if kind == domain.KindIncome {
		return r.db.Collection(incomesCollection)
	}
	return r.db.Collection(expensesCollection)
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTransaction{
		UserID:      t.UserID,
		Title:       t.Title,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	res, err := r.coll(t.Kind).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.Kind, err)
	}

	created := *t
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *TransactionRepository) FindOwned(ctx context.Context, kind domain.TransactionKind, id, userID string) (*domain.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTransactionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Scoping the filter by owner makes a foreign id look exactly like a
	// missing one.
	var mt mongoTransaction
	err = r.coll(kind).FindOne(ctx, bson.M{"_id": oid, "user": userID}).Decode(&mt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return fromTransactionDoc(kind, &mt), nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return domain.ErrTransactionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":       t.Title,
		"amount":      t.Amount,
		"category":    t.Category,
		"description": t.Description,
		"date":        t.Date,
		"updated_at":  t.UpdatedAt,
	}}
	res, err := r.coll(t.Kind).UpdateOne(ctx, bson.M{"_id": oid, "user": t.UserID}, update)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.Kind, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) DeleteOwned(ctx context.Context, kind domain.TransactionKind, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTransactionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll(kind).DeleteOne(ctx, bson.M{"_id": oid, "user": userID})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// List returns one page in insertion order (created_at ascending, _id as a
// tiebreak) so pagination is deterministic, plus the total match count.
func (r *TransactionRepository) List(ctx context.Context, kind domain.TransactionKind, userID string, page ports.ListPage) ([]*domain.Transaction, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Page-1) * int64(page.PageSize)).
		SetLimit(int64(page.PageSize))

	cursor, err := r.coll(kind).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", kind, err)
	}
	items, err := decodeTransactions(ctx, kind, cursor)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll(kind).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return items, total, nil
}

func (r *TransactionRepository) ListAll(ctx context.Context, kind domain.TransactionKind, userID string) ([]*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll(kind).Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return decodeTransactions(ctx, kind, cursor)
}

// SumAmounts aggregates the user's amounts with $match + $group + $sum.
// A user with no documents of the kind sums to 0.
func (r *TransactionRepository) SumAmounts(ctx context.Context, kind domain.TransactionKind, userID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := r.coll(kind).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("sum %s: %w", kind, err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("sum %s: %w", kind, err)
		}
	}
	if err := cursor.Err(); err != nil {
		return 0, fmt.Errorf("sum %s: %w", kind, err)
	}
	return result.Total, nil
}

// EnsureIndexes creates the owner indexes on both collections.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	for _, kind := range []domain.TransactionKind{domain.KindIncome, domain.KindExpense} {
		if _, err := r.coll(kind).Indexes().CreateMany(ctx, indexes); err != nil {
			return err
		}
	}
	return nil
}

func decodeTransactions(ctx context.Context, kind domain.TransactionKind, cursor *mongo.Cursor) ([]*domain.Transaction, error) {
	defer cursor.Close(ctx)

	var items []*domain.Transaction
	for cursor.Next(ctx) {
		var mt mongoTransaction
		if err := cursor.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		items = append(items, fromTransactionDoc(kind, &mt))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return items, nil
}

func fromTransactionDoc(kind domain.TransactionKind, mt *mongoTransaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          mt.ID.Hex(),
		UserID:      mt.UserID,
		Kind:        kind,
		Title:       mt.Title,
		Amount:      mt.Amount,
		Category:    mt.Category,
		Description: mt.Description,
		Date:        mt.Date,
		CreatedAt:   mt.CreatedAt,
		UpdatedAt:   mt.UpdatedAt,
	}
}
