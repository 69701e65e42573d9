package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stockroom/backend/config"
	"github.com/stockroom/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const transferCollection = "transfers"

type transferLineDoc struct {
	UPC      string `bson:"upc"`
	Title    string `bson:"title"`
	Quantity int64  `bson:"quantity"`
}

type transferDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Reference    string             `bson:"reference"`
	FromBranchID string             `bson:"from_branch_id"`
	ToBranchID   string             `bson:"to_branch_id"`
	Status       string             `bson:"status"`
	Lines        []transferLineDoc  `bson:"lines"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *transferDoc) toDomain() *domain.Transfer {
	lines := make([]domain.TransferLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, domain.TransferLine{UPC: l.UPC, Title: l.Title, Quantity: l.Quantity})
	}
	return &domain.Transfer{
		ID:           d.ID.Hex(),
		Reference:    d.Reference,
		FromBranchID: d.FromBranchID,
		ToBranchID:   d.ToBranchID,
		Status:       domain.TransferStatus(d.Status),
		Lines:        lines,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func transferToDoc(t *domain.Transfer) *transferDoc {
	lines := make([]transferLineDoc, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, transferLineDoc{UPC: l.UPC, Title: l.Title, Quantity: l.Quantity})
	}
	return &transferDoc{
		Reference:    t.Reference,
		FromBranchID: t.FromBranchID,
		ToBranchID:   t.ToBranchID,
		Status:       string(t.Status),
		Lines:        lines,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// TransferRepository persists inter-branch transfers in MongoDB
type TransferRepository struct {
	collection *mongo.Collection
	timeouts   timeouts
}

// NewTransferRepository creates a transfer repository over the given database
func NewTransferRepository(db *mongo.Database, cfg config.MongoConfig) *TransferRepository {
	return &TransferRepository{
		collection: db.Collection(transferCollection),
		timeouts:   newTimeouts(cfg),
	}
}

func (r *TransferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	transfer.CreatedAt = now
	transfer.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, transferToDoc(transfer))
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		transfer.ID = oid.Hex()
	}
	return nil
}

func (r *TransferRepository) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid transfer id %s", domain.ErrNotFound, id)
	}

	var doc transferDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: transfer %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find transfer: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *TransferRepository) FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*domain.Transfer, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	// A transfer is listed for both its source and destination branch
	filter := bson.M{"$or": []bson.M{
		{"from_branch_id": branchID},
		{"to_branch_id": branchID},
	}}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer cursor.Close(ctx)

	var transfers []*domain.Transfer
	for cursor.Next(ctx) {
		var doc transferDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode transfer: %w", err)
		}
		transfers = append(transfers, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("transfer cursor error: %w", err)
	}

	return transfers, nil
}

func (r *TransferRepository) Update(ctx context.Context, transfer *domain.Transfer) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(transfer.ID)
	if err != nil {
		return fmt.Errorf("%w: invalid transfer id %s", domain.ErrNotFound, transfer.ID)
	}

	transfer.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": transferToDoc(transfer)})
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: transfer %s", domain.ErrNotFound, transfer.ID)
	}
	return nil
}
