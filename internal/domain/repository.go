package domain

import (
	"context"
	"time"
)

// Provider is one external product database consulted by the lookup chain.
// Lookup returns ErrNoMatch when the provider has no usable data for the
// barcode, ErrProviderUnauthorized on a credential rejection, and any other
// error for transport-level failures. A nil error implies a non-nil record.
type Provider interface {
	Name() string
	// Enabled reports whether the provider should be consulted at all; a
	// disabled provider is skipped without a request being made.
	Enabled() bool
	Lookup(ctx context.Context, upc string) (*ProductRecord, error)
}

// ProductCache caches resolved product records by UPC
type ProductCache interface {
	Get(ctx context.Context, upc string) (*ProductRecord, error)
	Set(ctx context.Context, upc string, record *ProductRecord, ttl time.Duration) error
	Delete(ctx context.Context, upc string) error
}

// BranchRepository persists warehouse branches
type BranchRepository interface {
	Create(ctx context.Context, branch *Branch) error
	FindByID(ctx context.Context, id string) (*Branch, error)
	FindAll(ctx context.Context) ([]*Branch, error)
	Update(ctx context.Context, branch *Branch) error
	Delete(ctx context.Context, id string) error
}

// StockItemRepository persists per-branch stock positions
type StockItemRepository interface {
	Create(ctx context.Context, item *StockItem) error
	FindByID(ctx context.Context, id string) (*StockItem, error)
	FindByBranchAndUPC(ctx context.Context, branchID, upc string) (*StockItem, error)
	FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*StockItem, error)
	Update(ctx context.Context, item *StockItem) error
	// AdjustQuantity atomically changes an item's quantity by delta and
	// returns the updated item. Implementations must fail rather than let
	// the quantity go negative.
	AdjustQuantity(ctx context.Context, branchID, upc string, delta int64) (*StockItem, error)
	Delete(ctx context.Context, id string) error
}

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	FindByID(ctx context.Context, id string) (*PurchaseOrder, error)
	FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*PurchaseOrder, error)
	Update(ctx context.Context, po *PurchaseOrder) error
}

// TransferRepository persists inter-branch transfers
type TransferRepository interface {
	Create(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, id string) (*Transfer, error)
	FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*Transfer, error)
	Update(ctx context.Context, transfer *Transfer) error
}

// MovementPublisher emits stock movement events for downstream consumers.
// Publishing is best-effort: implementations log failures instead of
// propagating them into the business operation.
type MovementPublisher interface {
	Publish(ctx context.Context, movement StockMovement) error
}
