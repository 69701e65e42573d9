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

const purchaseOrderCollection = "purchase_orders"

type purchaseOrderLineDoc struct {
	UPC         string `bson:"upc"`
	Title       string `bson:"title"`
	Quantity    int64  `bson:"quantity"`
	ReceivedQty int64  `bson:"received_qty"`
	UnitCost    string `bson:"unit_cost"`
}

type purchaseOrderDoc struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty"`
	Reference string                 `bson:"reference"`
	BranchID  string                 `bson:"branch_id"`
	Supplier  string                 `bson:"supplier"`
	Status    string                 `bson:"status"`
	Lines     []purchaseOrderLineDoc `bson:"lines"`
	Total     string                 `bson:"total"`
	CreatedAt time.Time              `bson:"created_at"`
	UpdatedAt time.Time              `bson:"updated_at"`
}

func (d *purchaseOrderDoc) toDomain() (*domain.PurchaseOrder, error) {
	total, err := decimal.NewFromString(d.Total)
	if err != nil {
		return nil, fmt.Errorf("stored total %q is not a decimal: %w", d.Total, err)
	}

	lines := make([]domain.PurchaseOrderLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		unitCost, err := decimal.NewFromString(l.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("stored unit cost %q is not a decimal: %w", l.UnitCost, err)
		}
		lines = append(lines, domain.PurchaseOrderLine{
			UPC:         l.UPC,
			Title:       l.Title,
			Quantity:    l.Quantity,
			ReceivedQty: l.ReceivedQty,
			UnitCost:    unitCost,
		})
	}

	return &domain.PurchaseOrder{
		ID:        d.ID.Hex(),
		Reference: d.Reference,
		BranchID:  d.BranchID,
		Supplier:  d.Supplier,
		Status:    domain.PurchaseOrderStatus(d.Status),
		Lines:     lines,
		Total:     total,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func purchaseOrderToDoc(po *domain.PurchaseOrder) *purchaseOrderDoc {
	lines := make([]purchaseOrderLineDoc, 0, len(po.Lines))
	for _, l := range po.Lines {
		lines = append(lines, purchaseOrderLineDoc{
			UPC:         l.UPC,
			Title:       l.Title,
			Quantity:    l.Quantity,
			ReceivedQty: l.ReceivedQty,
			UnitCost:    l.UnitCost.String(),
		})
	}
	return &purchaseOrderDoc{
		Reference: po.Reference,
		BranchID:  po.BranchID,
		Supplier:  po.Supplier,
		Status:    string(po.Status),
		Lines:     lines,
		Total:     po.Total.String(),
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

// PurchaseOrderRepository persists purchase orders in MongoDB
type PurchaseOrderRepository struct {
	collection *mongo.Collection
	timeouts   timeouts
}

// NewPurchaseOrderRepository creates a purchase order repository over the given database
func NewPurchaseOrderRepository(db *mongo.Database, cfg config.MongoConfig) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		collection: db.Collection(purchaseOrderCollection),
		timeouts:   newTimeouts(cfg),
	}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	po.CreatedAt = now
	po.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, purchaseOrderToDoc(po))
	if err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		po.ID = oid.Hex()
	}
	return nil
}

func (r *PurchaseOrderRepository) FindByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid purchase order id %s", domain.ErrNotFound, id)
	}

	var doc purchaseOrderDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: purchase order %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find purchase order: %w", err)
	}

	return doc.toDomain()
}

func (r *PurchaseOrderRepository) FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*domain.PurchaseOrder, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.read)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, bson.M{"branch_id": branchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.PurchaseOrder
	for cursor.Next(ctx) {
		var doc purchaseOrderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode purchase order: %w", err)
		}
		po, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("purchase order cursor error: %w", err)
	}

	return orders, nil
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	ctx, cancel := withTimeout(ctx, r.timeouts.write)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(po.ID)
	if err != nil {
		return fmt.Errorf("%w: invalid purchase order id %s", domain.ErrNotFound, po.ID)
	}

	po.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": purchaseOrderToDoc(po)})
	if err != nil {
		return fmt.Errorf("failed to update purchase order: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: purchase order %s", domain.ErrNotFound, po.ID)
	}
	return nil
}
