package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain"
)

// ReceiptLine is one line of a receiving action: how many units of a UPC
// arrived on the dock.
type ReceiptLine struct {
	UPC      string `json:"upc" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// PurchaseOrderService handles the purchase order lifecycle, including the
// receiving workflow that turns ordered lines into on-hand stock.
type PurchaseOrderService struct {
	orders    domain.PurchaseOrderRepository
	branches  domain.BranchRepository
	items     domain.StockItemRepository
	publisher domain.MovementPublisher
}

// NewPurchaseOrderService creates a purchase order service with dependencies
func NewPurchaseOrderService(
	orders domain.PurchaseOrderRepository,
	branches domain.BranchRepository,
	items domain.StockItemRepository,
	publisher domain.MovementPublisher,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:    orders,
		branches:  branches,
		items:     items,
		publisher: publisher,
	}
}

// Create validates and stores a new draft purchase order, computing its
// total from the lines.
func (s *PurchaseOrderService) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	if po == nil || po.Supplier == "" {
		return fmt.Errorf("%w: supplier is required", domain.ErrInvalidRequest)
	}
	if len(po.Lines) == 0 {
		return fmt.Errorf("%w: a purchase order needs at least one line", domain.ErrInvalidRequest)
	}

	if _, err := s.branches.FindByID(ctx, po.BranchID); err != nil {
		return err
	}

	total := decimal.Zero
	seen := make(map[string]bool, len(po.Lines))
	for i := range po.Lines {
		line := &po.Lines[i]

		upc, err := SanitizeBarcode(line.UPC)
		if err != nil {
			return err
		}
		line.UPC = upc

		if seen[upc] {
			return fmt.Errorf("%w: duplicate line for upc %s", domain.ErrInvalidRequest, upc)
		}
		seen[upc] = true

		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line quantity must be positive", domain.ErrInvalidRequest)
		}
		if line.UnitCost.IsNegative() {
			return fmt.Errorf("%w: line unit cost must not be negative", domain.ErrInvalidRequest)
		}
		line.ReceivedQty = 0

		total = total.Add(line.UnitCost.Mul(decimal.NewFromInt(line.Quantity)))
	}

	po.Reference = newReference("PO")
	po.Status = domain.PurchaseOrderDraft
	po.Total = total

	return s.orders.Create(ctx, po)
}

// Get returns one purchase order by id
func (s *PurchaseOrderService) Get(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return s.orders.FindByID(ctx, id)
}

// List returns a branch's purchase orders, paginated
func (s *PurchaseOrderService) List(ctx context.Context, branchID string, limit, offset int) ([]*domain.PurchaseOrder, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.FindByBranch(ctx, branchID, limit, offset)
}

// Submit moves a draft order to ordered
func (s *PurchaseOrderService) Submit(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != domain.PurchaseOrderDraft {
		return nil, fmt.Errorf("%w: cannot submit a %s purchase order", domain.ErrConflict, po.Status)
	}

	po.Status = domain.PurchaseOrderOrdered
	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// Receive records arrived quantities against an ordered purchase order,
// increments the branch's stock positions, and advances the order status.
// Receiving more than the outstanding quantity on a line is clamped to the
// outstanding amount. Items not yet stocked at the branch are created from
// the order line.
func (s *PurchaseOrderService) Receive(ctx context.Context, id string, receipts []ReceiptLine) (*domain.PurchaseOrder, error) {
	if len(receipts) == 0 {
		return nil, fmt.Errorf("%w: nothing to receive", domain.ErrInvalidRequest)
	}

	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != domain.PurchaseOrderOrdered && po.Status != domain.PurchaseOrderPartiallyReceived {
		return nil, fmt.Errorf("%w: cannot receive against a %s purchase order", domain.ErrConflict, po.Status)
	}

	lineIndex := make(map[string]int, len(po.Lines))
	for i, line := range po.Lines {
		lineIndex[line.UPC] = i
	}

	for _, receipt := range receipts {
		upc, err := SanitizeBarcode(receipt.UPC)
		if err != nil {
			return nil, err
		}
		idx, ok := lineIndex[upc]
		if !ok {
			return nil, fmt.Errorf("%w: upc %s is not on this purchase order", domain.ErrInvalidRequest, upc)
		}
		if receipt.Quantity <= 0 {
			return nil, fmt.Errorf("%w: receipt quantity must be positive", domain.ErrInvalidRequest)
		}

		line := &po.Lines[idx]
		outstanding := line.Quantity - line.ReceivedQty
		if outstanding <= 0 {
			continue
		}

		qty := receipt.Quantity
		if qty > outstanding {
			qty = outstanding
		}

		if err := s.addStock(ctx, po, line, qty); err != nil {
			return nil, err
		}
		line.ReceivedQty += qty

		s.publishMovement(ctx, domain.StockMovement{
			Type:       domain.MovementReceive,
			BranchID:   po.BranchID,
			UPC:        line.UPC,
			Quantity:   qty,
			Reference:  po.Reference,
			OccurredAt: time.Now().UTC(),
		})
	}

	po.Status = domain.PurchaseOrderReceived
	for _, line := range po.Lines {
		if line.ReceivedQty < line.Quantity {
			po.Status = domain.PurchaseOrderPartiallyReceived
			break
		}
	}

	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// Cancel cancels an order that has not received any stock yet
func (s *PurchaseOrderService) Cancel(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != domain.PurchaseOrderDraft && po.Status != domain.PurchaseOrderOrdered {
		return nil, fmt.Errorf("%w: cannot cancel a %s purchase order", domain.ErrConflict, po.Status)
	}

	po.Status = domain.PurchaseOrderCancelled
	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// addStock increments an existing stock position or creates one seeded from
// the order line.
func (s *PurchaseOrderService) addStock(ctx context.Context, po *domain.PurchaseOrder, line *domain.PurchaseOrderLine, qty int64) error {
	_, err := s.items.AdjustQuantity(ctx, po.BranchID, line.UPC, qty)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	item := &domain.StockItem{
		BranchID: po.BranchID,
		UPC:      line.UPC,
		Title:    line.Title,
		Quantity: qty,
		UnitCost: line.UnitCost,
	}
	return s.items.Create(ctx, item)
}

func (s *PurchaseOrderService) publishMovement(ctx context.Context, movement domain.StockMovement) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, movement); err != nil {
		log.Printf("[PURCHASING] failed to publish %s movement for upc %s: %v", movement.Type, movement.UPC, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// newReference builds a short human-pasteable document reference
func newReference(prefix string) string {
	id := strings.ToUpper(uuid.NewString())
	return fmt.Sprintf("%s-%s", prefix, id[:8])
}
