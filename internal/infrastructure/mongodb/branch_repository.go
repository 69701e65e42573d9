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

const branchCollection = "branches"

// branchDoc is the stored shape of a branch
type branchDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Code      string             `bson:"code"`
	Name      string             `bson:"name"`
	Address   string             `bson:"address,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *branchDoc) toDomain() *domain.Branch {
	return &domain.Branch{
		ID:        d.ID.Hex(),
		Code:      d.Code,
		Name:      d.Name,
		Address:   d.Address,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func branchToDoc(b *domain.Branch) *branchDoc {
	return &branchDoc{
		Code:      b.Code,
		Name:      b.Name,
		Address:   b.Address,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BranchRepository persists branches in MongoDB
type BranchRepository struct {
	collection *mongo.Collection
	timeouts   timeouts
}

// NewBranchRepository creates a branch repository over the given database
func NewBranchRepository(db *mongo.Database, cfg config.MongoConfig) *BranchRepository {
	return &BranchRepository{
		collection: db.Collection(branchCollection),
		timeouts:   newTimeouts(cfg),
	}
}

func (r *BranchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	branch.CreatedAt = now
	branch.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, branchToDoc(branch))
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		branch.ID = oid.Hex()
	}
	return nil
}

func (r *BranchRepository) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid branch id %s", domain.ErrNotFound, id)
	}

	var doc branchDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: branch %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find branch: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *BranchRepository) FindAll(ctx context.Context) ([]*domain.Branch, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer cursor.Close(ctx)

	var branches []*domain.Branch
	for cursor.Next(ctx) {
		var doc branchDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode branch: %w", err)
		}
		branches = append(branches, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("branch cursor error: %w", err)
	}

	return branches, nil
}

func (r *BranchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(branch.ID)
	if err != nil {
		return fmt.Errorf("%w: invalid branch id %s", domain.ErrNotFound, branch.ID)
	}

	branch.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{"$set": bson.M{
		"code":       branch.Code,
		"name":       branch.Name,
		"address":    branch.Address,
		"updated_at": branch.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: branch %s", domain.ErrNotFound, branch.ID)
	}
	return nil
}

func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid branch id %s", domain.ErrNotFound, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: branch %s", domain.ErrNotFound, id)
	}
	return nil
}
