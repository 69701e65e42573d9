package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch represents a single warehouse or retail branch
type Branch struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StockItem is one product's stock position at one branch. Product metadata
// fields mirror ProductRecord so a lookup result can seed an item directly.
type StockItem struct {
	ID           string          `json:"id"`
	BranchID     string          `json:"branchId"`
	UPC          string          `json:"upc"`
	Title        string          `json:"title"`
	Brand        string          `json:"brand,omitempty"`
	Model        string          `json:"model"`
	Description  string          `json:"description,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Category     string          `json:"category,omitempty"`
	Quantity     int64           `json:"quantity"`
	ReorderLevel int64           `json:"reorderLevel"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// PurchaseOrderStatus enumerates the purchase order lifecycle
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft             PurchaseOrderStatus = "draft"
	PurchaseOrderOrdered           PurchaseOrderStatus = "ordered"
	PurchaseOrderPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderReceived          PurchaseOrderStatus = "received"
	PurchaseOrderCancelled         PurchaseOrderStatus = "cancelled"
)

// PurchaseOrderLine is one ordered product on a purchase order
type PurchaseOrderLine struct {
	UPC         string          `json:"upc"`
	Title       string          `json:"title"`
	Quantity    int64           `json:"quantity"`
	ReceivedQty int64           `json:"receivedQty"`
	UnitCost    decimal.Decimal `json:"unitCost"`
}

// PurchaseOrder is an order placed with a supplier for one branch
type PurchaseOrder struct {
	ID        string              `json:"id"`
	Reference string              `json:"reference"`
	BranchID  string              `json:"branchId"`
	Supplier  string              `json:"supplier"`
	Status    PurchaseOrderStatus `json:"status"`
	Lines     []PurchaseOrderLine `json:"lines"`
	Total     decimal.Decimal     `json:"total"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// TransferStatus enumerates the inter-branch transfer lifecycle
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// TransferLine is one product being moved between branches
type TransferLine struct {
	UPC      string `json:"upc"`
	Title    string `json:"title"`
	Quantity int64  `json:"quantity"`
}

// Transfer moves stock from one branch to another
type Transfer struct {
	ID           string         `json:"id"`
	Reference    string         `json:"reference"`
	FromBranchID string         `json:"fromBranchId"`
	ToBranchID   string         `json:"toBranchId"`
	Status       TransferStatus `json:"status"`
	Lines        []TransferLine `json:"lines"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// MovementType enumerates the kinds of stock movement events
type MovementType string

const (
	MovementReceive     MovementType = "receive"
	MovementTransferOut MovementType = "transfer_out"
	MovementTransferIn  MovementType = "transfer_in"
	MovementAdjustment  MovementType = "adjustment"
)

// StockMovement is the event emitted whenever a stock level changes.
// Quantity is signed: negative for outbound movements.
type StockMovement struct {
	Type       MovementType `json:"type"`
	BranchID   string       `json:"branchId"`
	UPC        string       `json:"upc"`
	Quantity   int64        `json:"quantity"`
	Reference  string       `json:"reference,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}
