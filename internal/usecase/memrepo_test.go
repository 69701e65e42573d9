package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stockroom/backend/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memBranchRepo struct {
	mu       sync.Mutex
	nextID   int
	branches map[string]*domain.Branch
}

func newMemBranchRepo() *memBranchRepo {
	return &memBranchRepo{branches: make(map[string]*domain.Branch)}
}

func (r *memBranchRepo) Create(ctx context.Context, branch *domain.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	branch.ID = fmt.Sprintf("branch-%d", r.nextID)
	branch.CreatedAt = time.Now().UTC()
	branch.UpdatedAt = branch.CreatedAt
	copied := *branch
	r.branches[branch.ID] = &copied
	return nil
}

func (r *memBranchRepo) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	branch, ok := r.branches[id]
	if !ok {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrNotFound, id)
	}
	copied := *branch
	return &copied, nil
}

func (r *memBranchRepo) FindAll(ctx context.Context) ([]*domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Branch, 0, len(r.branches))
	for _, branch := range r.branches {
		copied := *branch
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memBranchRepo) Update(ctx context.Context, branch *domain.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[branch.ID]; !ok {
		return fmt.Errorf("%w: branch %s", domain.ErrNotFound, branch.ID)
	}
	copied := *branch
	r.branches[branch.ID] = &copied
	return nil
}

func (r *memBranchRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[id]; !ok {
		return fmt.Errorf("%w: branch %s", domain.ErrNotFound, id)
	}
	delete(r.branches, id)
	return nil
}

type memItemRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[string]*domain.StockItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[string]*domain.StockItem)}
}

func (r *memItemRepo) Create(ctx context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = fmt.Sprintf("item-%d", r.nextID)
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memItemRepo) FindByID(ctx context.Context, id string) (*domain.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: stock item %s", domain.ErrNotFound, id)
	}
	copied := *item
	return &copied, nil
}

func (r *memItemRepo) FindByBranchAndUPC(ctx context.Context, branchID, upc string) (*domain.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.lookupLocked(branchID, upc)
	if item == nil {
		return nil, fmt.Errorf("%w: upc %s at branch %s", domain.ErrNotFound, upc, branchID)
	}
	copied := *item
	return &copied, nil
}

func (r *memItemRepo) FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*domain.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.StockItem
	for _, item := range r.items {
		if item.BranchID == branchID {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memItemRepo) Update(ctx context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("%w: stock item %s", domain.ErrNotFound, item.ID)
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memItemRepo) AdjustQuantity(ctx context.Context, branchID, upc string, delta int64) (*domain.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.lookupLocked(branchID, upc)
	if item == nil {
		return nil, fmt.Errorf("%w: upc %s at branch %s", domain.ErrNotFound, upc, branchID)
	}
	if item.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: upc %s at branch %s", domain.ErrInsufficientStock, upc, branchID)
	}
	item.Quantity += delta
	copied := *item
	return &copied, nil
}

func (r *memItemRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: stock item %s", domain.ErrNotFound, id)
	}
	delete(r.items, id)
	return nil
}

func (r *memItemRepo) lookupLocked(branchID, upc string) *domain.StockItem {
	for _, item := range r.items {
		if item.BranchID == branchID && item.UPC == upc {
			return item
		}
	}
	return nil
}

// quantity is a test helper that reads a stock level directly
func (r *memItemRepo) quantity(branchID, upc string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.lookupLocked(branchID, upc)
	if item == nil {
		return 0
	}
	return item.Quantity
}

type memOrderRepo struct {
	mu     sync.Mutex
	nextID int
	orders map[string]*domain.PurchaseOrder
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.PurchaseOrder)}
}

func (r *memOrderRepo) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	po.ID = fmt.Sprintf("po-%d", r.nextID)
	copied := clonePO(po)
	r.orders[po.ID] = copied
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: purchase order %s", domain.ErrNotFound, id)
	}
	return clonePO(po), nil
}

func (r *memOrderRepo) FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*domain.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PurchaseOrder
	for _, po := range r.orders {
		if po.BranchID == branchID {
			out = append(out, clonePO(po))
		}
	}
	return out, nil
}

func (r *memOrderRepo) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[po.ID]; !ok {
		return fmt.Errorf("%w: purchase order %s", domain.ErrNotFound, po.ID)
	}
	r.orders[po.ID] = clonePO(po)
	return nil
}

func clonePO(po *domain.PurchaseOrder) *domain.PurchaseOrder {
	copied := *po
	copied.Lines = append([]domain.PurchaseOrderLine(nil), po.Lines...)
	return &copied
}

type memTransferRepo struct {
	mu        sync.Mutex
	nextID    int
	transfers map[string]*domain.Transfer
}

func newMemTransferRepo() *memTransferRepo {
	return &memTransferRepo{transfers: make(map[string]*domain.Transfer)}
}

func (r *memTransferRepo) Create(ctx context.Context, transfer *domain.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	transfer.ID = fmt.Sprintf("tr-%d", r.nextID)
	r.transfers[transfer.ID] = cloneTransfer(transfer)
	return nil
}

func (r *memTransferRepo) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	transfer, ok := r.transfers[id]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s", domain.ErrNotFound, id)
	}
	return cloneTransfer(transfer), nil
}

func (r *memTransferRepo) FindByBranch(ctx context.Context, branchID string, limit, offset int) ([]*domain.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transfer
	for _, transfer := range r.transfers {
		if transfer.FromBranchID == branchID || transfer.ToBranchID == branchID {
			out = append(out, cloneTransfer(transfer))
		}
	}
	return out, nil
}

func (r *memTransferRepo) Update(ctx context.Context, transfer *domain.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[transfer.ID]; !ok {
		return fmt.Errorf("%w: transfer %s", domain.ErrNotFound, transfer.ID)
	}
	r.transfers[transfer.ID] = cloneTransfer(transfer)
	return nil
}

func cloneTransfer(transfer *domain.Transfer) *domain.Transfer {
	copied := *transfer
	copied.Lines = append([]domain.TransferLine(nil), transfer.Lines...)
	return &copied
}

// capturePublisher records every movement it is asked to publish
type capturePublisher struct {
	mu        sync.Mutex
	movements []domain.StockMovement
	err       error
}

func (p *capturePublisher) Publish(ctx context.Context, movement domain.StockMovement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.movements = append(p.movements, movement)
	return nil
}

func (p *capturePublisher) published() []domain.StockMovement {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.StockMovement(nil), p.movements...)
}
