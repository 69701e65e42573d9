package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain"
)

func newTransferFixture(t *testing.T) (*TransferService, *memBranchRepo, *memItemRepo, *capturePublisher) {
	t.Helper()
	transfers := newMemTransferRepo()
	branches := newMemBranchRepo()
	items := newMemItemRepo()
	publisher := &capturePublisher{}
	return NewTransferService(transfers, branches, items, publisher), branches, items, publisher
}

func pendingTransfer(t *testing.T, svc *TransferService, from, to string) *domain.Transfer {
	t.Helper()
	transfer := &domain.Transfer{
		FromBranchID: from,
		ToBranchID:   to,
		Lines: []domain.TransferLine{
			{UPC: "012345678905", Quantity: 5},
		},
	}
	require.NoError(t, svc.Create(context.Background(), transfer))
	return transfer
}

func stockAt(t *testing.T, items *memItemRepo, branchID string, qty int64) {
	t.Helper()
	require.NoError(t, items.Create(context.Background(), &domain.StockItem{
		BranchID:     branchID,
		UPC:          "012345678905",
		Title:        "Widget",
		Brand:        "Acme",
		Quantity:     qty,
		ReorderLevel: 2,
		UnitCost:     decimal.NewFromFloat(2.50),
	}))
}

func TestTransferCreate_Validation(t *testing.T) {
	svc, branches, _, _ := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")

	cases := []struct {
		name     string
		transfer *domain.Transfer
		want     error
	}{
		{
			name:     "no lines",
			transfer: &domain.Transfer{FromBranchID: main.ID, ToBranchID: north.ID},
			want:     domain.ErrInvalidRequest,
		},
		{
			name: "same branch",
			transfer: &domain.Transfer{
				FromBranchID: main.ID,
				ToBranchID:   main.ID,
				Lines:        []domain.TransferLine{{UPC: "012345678905", Quantity: 1}},
			},
			want: domain.ErrInvalidRequest,
		},
		{
			name: "unknown source",
			transfer: &domain.Transfer{
				FromBranchID: "branch-404",
				ToBranchID:   north.ID,
				Lines:        []domain.TransferLine{{UPC: "012345678905", Quantity: 1}},
			},
			want: domain.ErrNotFound,
		},
		{
			name: "zero quantity",
			transfer: &domain.Transfer{
				FromBranchID: main.ID,
				ToBranchID:   north.ID,
				Lines:        []domain.TransferLine{{UPC: "012345678905", Quantity: 0}},
			},
			want: domain.ErrInvalidRequest,
		},
		{
			name: "bad upc",
			transfer: &domain.Transfer{
				FromBranchID: main.ID,
				ToBranchID:   north.ID,
				Lines:        []domain.TransferLine{{UPC: "abc", Quantity: 1}},
			},
			want: domain.ErrInvalidBarcode,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tc.transfer)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTransferCreate_FillsTitleFromSourceStock(t *testing.T) {
	svc, branches, items, _ := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 10)

	transfer := pendingTransfer(t, svc, main.ID, north.ID)

	assert.Equal(t, domain.TransferPending, transfer.Status)
	assert.True(t, strings.HasPrefix(transfer.Reference, "TR-"))
	assert.Equal(t, "Widget", transfer.Lines[0].Title)
}

func TestTransferDispatch_MovesStockOutOfSource(t *testing.T) {
	svc, branches, items, publisher := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 10)

	transfer := pendingTransfer(t, svc, main.ID, north.ID)

	dispatched, err := svc.Dispatch(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferInTransit, dispatched.Status)
	assert.Equal(t, int64(5), items.quantity(main.ID, "012345678905"))
	// Nothing has arrived at the destination yet
	assert.Equal(t, int64(0), items.quantity(north.ID, "012345678905"))

	movements := publisher.published()
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementTransferOut, movements[0].Type)
	assert.Equal(t, main.ID, movements[0].BranchID)
	assert.Equal(t, int64(-5), movements[0].Quantity)
}

func TestTransferDispatch_InsufficientStock(t *testing.T) {
	svc, branches, items, publisher := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 3)

	transfer := pendingTransfer(t, svc, main.ID, north.ID)

	_, err := svc.Dispatch(context.Background(), transfer.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), items.quantity(main.ID, "012345678905"))
	assert.Empty(t, publisher.published())

	// The transfer stays pending and can be retried after a restock
	current, err := svc.Get(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferPending, current.Status)
}

func TestTransferDispatch_RollsBackEarlierLines(t *testing.T) {
	svc, branches, items, _ := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 10)
	require.NoError(t, items.Create(context.Background(), &domain.StockItem{
		BranchID: main.ID,
		UPC:      "036000291452",
		Title:    "Gadget",
		Quantity: 1,
	}))

	transfer := &domain.Transfer{
		FromBranchID: main.ID,
		ToBranchID:   north.ID,
		Lines: []domain.TransferLine{
			{UPC: "012345678905", Quantity: 5},
			{UPC: "036000291452", Quantity: 2},
		},
	}
	require.NoError(t, svc.Create(context.Background(), transfer))

	_, err := svc.Dispatch(context.Background(), transfer.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// The first line's decrement was rolled back
	assert.Equal(t, int64(10), items.quantity(main.ID, "012345678905"))
	assert.Equal(t, int64(1), items.quantity(main.ID, "036000291452"))
}

func TestTransferReceive_CreatesDestinationItemFromSource(t *testing.T) {
	svc, branches, items, publisher := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 10)

	transfer := pendingTransfer(t, svc, main.ID, north.ID)
	_, err := svc.Dispatch(context.Background(), transfer.ID)
	require.NoError(t, err)

	received, err := svc.Receive(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCompleted, received.Status)

	item, err := items.FindByBranchAndUPC(context.Background(), north.ID, "012345678905")
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Quantity)
	assert.Equal(t, "Widget", item.Title)
	assert.Equal(t, "Acme", item.Brand)
	assert.True(t, item.UnitCost.Equal(decimal.NewFromFloat(2.50)))

	movements := publisher.published()
	require.Len(t, movements, 2)
	assert.Equal(t, domain.MovementTransferIn, movements[1].Type)
	assert.Equal(t, north.ID, movements[1].BranchID)
	assert.Equal(t, int64(5), movements[1].Quantity)
}

func TestTransferReceive_IncrementsExistingDestinationStock(t *testing.T) {
	svc, branches, items, _ := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 10)
	stockAt(t, items, north.ID, 2)

	transfer := pendingTransfer(t, svc, main.ID, north.ID)
	_, err := svc.Dispatch(context.Background(), transfer.ID)
	require.NoError(t, err)

	_, err = svc.Receive(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), items.quantity(north.ID, "012345678905"))
}

func TestTransferReceive_OnlyWhenInTransit(t *testing.T) {
	svc, branches, items, _ := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 10)

	transfer := pendingTransfer(t, svc, main.ID, north.ID)

	_, err := svc.Receive(context.Background(), transfer.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTransferCancel_PendingOnly(t *testing.T) {
	svc, branches, items, _ := newTransferFixture(t)
	main := seedBranch(t, branches, "MAIN")
	north := seedBranch(t, branches, "NORTH")
	stockAt(t, items, main.ID, 10)

	transfer := pendingTransfer(t, svc, main.ID, north.ID)

	cancelled, err := svc.Cancel(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCancelled, cancelled.Status)

	other := pendingTransfer(t, svc, main.ID, north.ID)
	_, err = svc.Dispatch(context.Background(), other.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), other.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
