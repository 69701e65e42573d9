package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stockroom/backend/internal/domain"
)

// InventoryService handles branch and stock item management
type InventoryService struct {
	branches  domain.BranchRepository
	items     domain.StockItemRepository
	publisher domain.MovementPublisher
}

// NewInventoryService creates an inventory service with dependencies
func NewInventoryService(
	branches domain.BranchRepository,
	items domain.StockItemRepository,
	publisher domain.MovementPublisher,
) *InventoryService {
	return &InventoryService{
		branches:  branches,
		items:     items,
		publisher: publisher,
	}
}

// CreateBranch validates and stores a new branch
func (s *InventoryService) CreateBranch(ctx context.Context, branch *domain.Branch) error {
	if branch == nil || branch.Name == "" || branch.Code == "" {
		return fmt.Errorf("%w: branch code and name are required", domain.ErrInvalidRequest)
	}
	return s.branches.Create(ctx, branch)
}

// GetBranch returns one branch by id
func (s *InventoryService) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	return s.branches.FindByID(ctx, id)
}

// ListBranches returns all branches
func (s *InventoryService) ListBranches(ctx context.Context) ([]*domain.Branch, error) {
	return s.branches.FindAll(ctx)
}

// UpdateBranch updates a branch's mutable fields
func (s *InventoryService) UpdateBranch(ctx context.Context, branch *domain.Branch) error {
	if branch == nil || branch.ID == "" || branch.Name == "" || branch.Code == "" {
		return fmt.Errorf("%w: branch id, code and name are required", domain.ErrInvalidRequest)
	}
	return s.branches.Update(ctx, branch)
}

// DeleteBranch removes a branch
func (s *InventoryService) DeleteBranch(ctx context.Context, id string) error {
	return s.branches.Delete(ctx, id)
}

// CreateItem validates and stores a new stock item for a branch. The branch
// must exist and the (branch, upc) pair must be unique.
func (s *InventoryService) CreateItem(ctx context.Context, item *domain.StockItem) error {
	if item == nil || item.Title == "" {
		return fmt.Errorf("%w: item title is required", domain.ErrInvalidRequest)
	}
	upc, err := SanitizeBarcode(item.UPC)
	if err != nil {
		return err
	}
	item.UPC = upc

	if item.Quantity < 0 || item.ReorderLevel < 0 {
		return fmt.Errorf("%w: quantities must not be negative", domain.ErrInvalidRequest)
	}
	if item.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unit cost must not be negative", domain.ErrInvalidRequest)
	}

	if _, err := s.branches.FindByID(ctx, item.BranchID); err != nil {
		return err
	}

	if _, err := s.items.FindByBranchAndUPC(ctx, item.BranchID, item.UPC); err == nil {
		return fmt.Errorf("%w: upc %s already stocked at branch %s", domain.ErrConflict, item.UPC, item.BranchID)
	}

	return s.items.Create(ctx, item)
}

// GetItem returns one stock item by id
func (s *InventoryService) GetItem(ctx context.Context, id string) (*domain.StockItem, error) {
	return s.items.FindByID(ctx, id)
}

// ListItems returns a branch's stock items, paginated
func (s *InventoryService) ListItems(ctx context.Context, branchID string, limit, offset int) ([]*domain.StockItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.items.FindByBranch(ctx, branchID, limit, offset)
}

// UpdateItem updates a stock item's metadata and reorder level. Quantity is
// deliberately not updatable here; use AdjustStock so every change leaves a
// movement trail.
func (s *InventoryService) UpdateItem(ctx context.Context, item *domain.StockItem) error {
	if item == nil || item.ID == "" || item.Title == "" {
		return fmt.Errorf("%w: item id and title are required", domain.ErrInvalidRequest)
	}

	current, err := s.items.FindByID(ctx, item.ID)
	if err != nil {
		return err
	}
	item.BranchID = current.BranchID
	item.UPC = current.UPC
	item.Quantity = current.Quantity

	return s.items.Update(ctx, item)
}

// DeleteItem removes a stock item
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

// AdjustStock changes a stock position by a signed delta (cycle counts,
// shrinkage, corrections) and records the movement.
func (s *InventoryService) AdjustStock(ctx context.Context, branchID, upc string, delta int64, reference string) (*domain.StockItem, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment delta must not be zero", domain.ErrInvalidRequest)
	}
	sanitized, err := SanitizeBarcode(upc)
	if err != nil {
		return nil, err
	}

	item, err := s.items.AdjustQuantity(ctx, branchID, sanitized, delta)
	if err != nil {
		return nil, err
	}

	s.publishMovement(ctx, domain.StockMovement{
		Type:       domain.MovementAdjustment,
		BranchID:   branchID,
		UPC:        sanitized,
		Quantity:   delta,
		Reference:  reference,
		OccurredAt: time.Now().UTC(),
	})

	return item, nil
}

// publishMovement emits a movement event, logging failures rather than
// propagating them: stock changes must not fail because the broker is down.
func (s *InventoryService) publishMovement(ctx context.Context, movement domain.StockMovement) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, movement); err != nil {
		log.Printf("[INVENTORY] failed to publish %s movement for upc %s: %v", movement.Type, movement.UPC, err)
	}
}
