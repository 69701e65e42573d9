package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stockroom/backend/internal/domain"
)

// TransferService handles inter-branch stock transfers. Stock leaves the
// source branch at dispatch time and arrives at the destination at receive
// time, so goods in transit are not counted at either branch.
type TransferService struct {
	transfers domain.TransferRepository
	branches  domain.BranchRepository
	items     domain.StockItemRepository
	publisher domain.MovementPublisher
}

// NewTransferService creates a transfer service with dependencies
func NewTransferService(
	transfers domain.TransferRepository,
	branches domain.BranchRepository,
	items domain.StockItemRepository,
	publisher domain.MovementPublisher,
) *TransferService {
	return &TransferService{
		transfers: transfers,
		branches:  branches,
		items:     items,
		publisher: publisher,
	}
}

// Create validates and stores a new pending transfer
func (s *TransferService) Create(ctx context.Context, transfer *domain.Transfer) error {
	if transfer == nil || len(transfer.Lines) == 0 {
		return fmt.Errorf("%w: a transfer needs at least one line", domain.ErrInvalidRequest)
	}
	if transfer.FromBranchID == transfer.ToBranchID {
		return fmt.Errorf("%w: source and destination branch must differ", domain.ErrInvalidRequest)
	}

	if _, err := s.branches.FindByID(ctx, transfer.FromBranchID); err != nil {
		return err
	}
	if _, err := s.branches.FindByID(ctx, transfer.ToBranchID); err != nil {
		return err
	}

	seen := make(map[string]bool, len(transfer.Lines))
	for i := range transfer.Lines {
		line := &transfer.Lines[i]

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

		// Carry the title from the source stock item when the caller omitted it
		if line.Title == "" {
			if item, err := s.items.FindByBranchAndUPC(ctx, transfer.FromBranchID, upc); err == nil {
				line.Title = item.Title
			}
		}
	}

	transfer.Reference = newReference("TR")
	transfer.Status = domain.TransferPending

	return s.transfers.Create(ctx, transfer)
}

// Get returns one transfer by id
func (s *TransferService) Get(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.transfers.FindByID(ctx, id)
}

// List returns the transfers touching a branch (as source or destination)
func (s *TransferService) List(ctx context.Context, branchID string, limit, offset int) ([]*domain.Transfer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.transfers.FindByBranch(ctx, branchID, limit, offset)
}

// Dispatch moves a pending transfer in transit, decrementing the source
// branch's stock. Fails without side effects on the transfer when any line
// has insufficient stock; lines already decremented are returned to stock.
func (s *TransferService) Dispatch(ctx context.Context, id string) (*domain.Transfer, error) {
	transfer, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: cannot dispatch a %s transfer", domain.ErrConflict, transfer.Status)
	}

	var done []domain.TransferLine
	for _, line := range transfer.Lines {
		if _, err := s.items.AdjustQuantity(ctx, transfer.FromBranchID, line.UPC, -line.Quantity); err != nil {
			// Roll back the lines already taken out of stock
			for _, d := range done {
				if _, rbErr := s.items.AdjustQuantity(ctx, transfer.FromBranchID, d.UPC, d.Quantity); rbErr != nil {
					log.Printf("[TRANSFER] rollback failed for upc %s on transfer %s: %v", d.UPC, transfer.Reference, rbErr)
				}
			}
			return nil, err
		}
		done = append(done, line)
	}

	transfer.Status = domain.TransferInTransit
	if err := s.transfers.Update(ctx, transfer); err != nil {
		return nil, err
	}

	for _, line := range transfer.Lines {
		s.publishMovement(ctx, domain.StockMovement{
			Type:       domain.MovementTransferOut,
			BranchID:   transfer.FromBranchID,
			UPC:        line.UPC,
			Quantity:   -line.Quantity,
			Reference:  transfer.Reference,
			OccurredAt: time.Now().UTC(),
		})
	}

	return transfer, nil
}

// Receive completes an in-transit transfer, incrementing the destination
// branch's stock. Items not yet stocked at the destination are created from
// the transfer line and the source item's metadata.
func (s *TransferService) Receive(ctx context.Context, id string) (*domain.Transfer, error) {
	transfer, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status != domain.TransferInTransit {
		return nil, fmt.Errorf("%w: cannot receive a %s transfer", domain.ErrConflict, transfer.Status)
	}

	for _, line := range transfer.Lines {
		if err := s.addStock(ctx, transfer, line); err != nil {
			return nil, err
		}

		s.publishMovement(ctx, domain.StockMovement{
			Type:       domain.MovementTransferIn,
			BranchID:   transfer.ToBranchID,
			UPC:        line.UPC,
			Quantity:   line.Quantity,
			Reference:  transfer.Reference,
			OccurredAt: time.Now().UTC(),
		})
	}

	transfer.Status = domain.TransferCompleted
	if err := s.transfers.Update(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// Cancel cancels a transfer that has not been dispatched yet
func (s *TransferService) Cancel(ctx context.Context, id string) (*domain.Transfer, error) {
	transfer, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: cannot cancel a %s transfer", domain.ErrConflict, transfer.Status)
	}

	transfer.Status = domain.TransferCancelled
	if err := s.transfers.Update(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// addStock increments the destination position or creates it, copying
// metadata from the source branch's item when available.
func (s *TransferService) addStock(ctx context.Context, transfer *domain.Transfer, line domain.TransferLine) error {
	_, err := s.items.AdjustQuantity(ctx, transfer.ToBranchID, line.UPC, line.Quantity)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	item := &domain.StockItem{
		BranchID: transfer.ToBranchID,
		UPC:      line.UPC,
		Title:    line.Title,
		Quantity: line.Quantity,
	}
	if source, err := s.items.FindByBranchAndUPC(ctx, transfer.FromBranchID, line.UPC); err == nil {
		item.Title = source.Title
		item.Brand = source.Brand
		item.Model = source.Model
		item.Description = source.Description
		item.ImageURL = source.ImageURL
		item.Category = source.Category
		item.ReorderLevel = source.ReorderLevel
		item.UnitCost = source.UnitCost
	}

	return s.items.Create(ctx, item)
}

func (s *TransferService) publishMovement(ctx context.Context, movement domain.StockMovement) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, movement); err != nil {
		log.Printf("[TRANSFER] failed to publish %s movement for upc %s: %v", movement.Type, movement.UPC, err)
	}
}
