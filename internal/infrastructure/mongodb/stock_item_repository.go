package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/config"
	"github.com/stockroom/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const stockItemCollection = "stock_items"

// stockItemDoc is the stored shape of a stock item. Money is stored as a
// decimal string so no precision is lost to float rounding.
type stockItemDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	BranchID     string             `bson:"branch_id"`
	UPC          string             `bson:"upc"`
	Title        string             `bson:"title"`
	Brand        string             `bson:"brand,omitempty"`
	Model        string             `bson:"model"`
	Description  string             `bson:"description,omitempty"`
	ImageURL     string             `bson:"image_url,omitempty"`
	Category     string             `bson:"category,omitempty"`
	Quantity     int64              `bson:"quantity"`
	ReorderLevel int64              `bson:"reorder_level"`
	UnitCost     string             `bson:"unit_cost"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *stockItemDoc) toDomain() (*domain.StockItem, error) {
	unitCost, err := decimal.NewFromString(d.UnitCost)
	if err != nil {
		return nil, fmt.Errorf("stored unit cost %q is not a decimal: %w", d.UnitCost, err)
	}
	return &domain.StockItem{
		ID:           d.ID.Hex(),
		BranchID:     d.BranchID,
		UPC:          d.UPC,
		Title:        d.Title,
		Brand:        d.Brand,
		Model:        d.Model,
		Description:  d.Description,
		ImageURL:     d.ImageURL,
		Category:     d.Category,
		Quantity:     d.Quantity,
		ReorderLevel: d.ReorderLevel,
		UnitCost:     unitCost,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func stockItemToDoc(item *domain.StockItem) *stockItemDoc {
	return &stockItemDoc{
		BranchID:     item.BranchID,
		UPC:          item.UPC,
		Title:        item.Title,
		Brand:        item.Brand,
		Model:        item.Model,
		Description:  item.Description,
		ImageURL:     item.ImageURL,
		Category:     item.Category,
		Quantity:     item.Quantity,
		ReorderLevel: item.ReorderLevel,
		UnitCost:     item.UnitCost.String(),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// StockItemRepository persists per-branch stock positions in MongoDB
type StockItemRepository struct {
	collection *mongo.Collection
	timeouts   timeouts
}

// NewStockItemRepository creates a stock item repository over the given database
func NewStockItemRepository(db *mongo.Database, cfg config.MongoConfig) *StockItemRepository {
	return &StockItemRepository{
		collection: db.Collection(stockItemCollection),
		timeouts:   newTimeouts(cfg),
	}
}

func (r *StockItemRepository) Create(ctx context.Context, item *domain.StockItem) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, stockItemToDoc(item))
	if err != nil {
		return fmt.Errorf("failed to create stock item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *StockItemRepository) FindByID(ctx context.Context, id string) (*domain.StockItem, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid stock item id %s", domain.ErrNotFound, id)
	}

	var doc stockItemDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: stock item %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find stock item: %w", err)
	}

	return doc.toDomain()
}

func (r *StockItemRepository) FindByBranchAndUPC(ctx context.Context, branchID, upc string) (*domain.StockItem, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	var doc stockItemDoc
	err := r.collection.FindOne(ctx, bson.M{"branch_id": branchID, "upc": upc}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: upc %s at branch %s", domain.ErrNotFound, upc, branchID)
		}
		return nil, fmt.Errorf("failed to find stock item: %w", err)
	}

	return doc.toDomain()
}

func (r *StockItemRepository) FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*domain.StockItem, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, bson.M{"branch_id": branchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*domain.StockItem
	for cursor.Next(ctx) {
		var doc stockItemDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode stock item: %w", err)
		}
		item, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("stock item cursor error: %w", err)
	}

	return items, nil
}

func (r *StockItemRepository) Update(ctx context.Context, item *domain.StockItem) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(item.ID)
	if err != nil {
		return fmt.Errorf("%w: invalid stock item id %s", domain.ErrNotFound, item.ID)
	}

	item.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	doc := stockItemToDoc(item)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": doc})
	if err != nil {
		return fmt.Errorf("failed to update stock item: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: stock item %s", domain.ErrNotFound, item.ID)
	}
	return nil
}

// AdjustQuantity atomically changes a stock position by delta. The filter
// refuses decrements that would drive the quantity negative, so the update
// either applies fully or not at all.
func (r *StockItemRepository) AdjustQuantity(ctx context.Context, branchID, upc string, delta int64) (*domain.StockItem, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	filter := bson.M{"branch_id": branchID, "upc": upc}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc stockItemDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the item does not exist or the decrement would go
			// negative; disambiguate for the caller.
			if _, findErr := r.FindByBranchAndUPC(ctx, branchID, upc); findErr == nil {
				return nil, fmt.Errorf("%w: upc %s at branch %s", domain.ErrInsufficientStock, upc, branchID)
			}
			return nil, fmt.Errorf("%w: upc %s at branch %s", domain.ErrNotFound, upc, branchID)
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return doc.toDomain()
}

func (r *StockItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid stock item id %s", domain.ErrNotFound, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: stock item %s", domain.ErrNotFound, id)
	}
	return nil
}
