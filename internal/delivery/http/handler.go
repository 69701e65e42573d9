package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain"
	"github.com/stockroom/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	lookup    *usecase.LookupService
	inventory *usecase.InventoryService
	orders    *usecase.PurchaseOrderService
	transfers *usecase.TransferService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	lookup *usecase.LookupService,
	inventory *usecase.InventoryService,
	orders *usecase.PurchaseOrderService,
	transfers *usecase.TransferService,
) *Handler {
	return &Handler{
		lookup:    lookup,
		inventory: inventory,
		orders:    orders,
		transfers: transfers,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stockroom-backend",
		"version": "1.0.0",
	})
}

// respondError translates a domain error into a structured JSON error with a
// stable machine-readable code.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrEmailUnverified):
		status, code = http.StatusForbidden, "permission-denied"
	case errors.Is(err, domain.ErrInvalidBarcode), errors.Is(err, domain.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "invalid-argument"
	case errors.Is(err, domain.ErrNoMatch), errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not-found"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInsufficientStock):
		status, code = http.StatusConflict, "failed-precondition"
	}

	c.JSON(status, gin.H{
		"code":  code,
		"error": err.Error(),
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":  "invalid-argument",
		"error": err.Error(),
	})
}

// LookupProduct resolves a barcode through the provider chain
func (h *Handler) LookupProduct(c *gin.Context) {
	var req domain.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.lookup.Lookup(c.Request.Context(), req.UPC)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// --- Branches ---

type branchRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// CreateBranch creates a new branch
func (h *Handler) CreateBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	branch := &domain.Branch{Code: req.Code, Name: req.Name, Address: req.Address}
	if err := h.inventory.CreateBranch(c.Request.Context(), branch); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, branch)
}

// GetBranch returns one branch
func (h *Handler) GetBranch(c *gin.Context) {
	branch, err := h.inventory.GetBranch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

// ListBranches returns all branches
func (h *Handler) ListBranches(c *gin.Context) {
	branches, err := h.inventory.ListBranches(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

// UpdateBranch updates a branch
func (h *Handler) UpdateBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	branch := &domain.Branch{
		ID:      c.Param("id"),
		Code:    req.Code,
		Name:    req.Name,
		Address: req.Address,
	}
	if err := h.inventory.UpdateBranch(c.Request.Context(), branch); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

// DeleteBranch removes a branch
func (h *Handler) DeleteBranch(c *gin.Context) {
	if err := h.inventory.DeleteBranch(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Stock items ---

type itemRequest struct {
	BranchID     string          `json:"branchId" binding:"required"`
	UPC          string          `json:"upc" binding:"required,upc"`
	Title        string          `json:"title" binding:"required"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	Category     string          `json:"category"`
	Quantity     int64           `json:"quantity"`
	ReorderLevel int64           `json:"reorderLevel"`
	UnitCost     decimal.Decimal `json:"unitCost"`
}

func (r *itemRequest) toDomain() *domain.StockItem {
	return &domain.StockItem{
		BranchID:     r.BranchID,
		UPC:          r.UPC,
		Title:        r.Title,
		Brand:        r.Brand,
		Model:        r.Model,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		Category:     r.Category,
		Quantity:     r.Quantity,
		ReorderLevel: r.ReorderLevel,
		UnitCost:     r.UnitCost,
	}
}

// CreateItem creates a stock item at a branch
func (h *Handler) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item := req.toDomain()
	if err := h.inventory.CreateItem(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItem returns one stock item
func (h *Handler) GetItem(c *gin.Context) {
	item, err := h.inventory.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItems returns a branch's stock items
func (h *Handler) ListItems(c *gin.Context) {
	limit, offset := pagination(c)
	items, err := h.inventory.ListItems(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateItem updates a stock item's metadata
func (h *Handler) UpdateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item := req.toDomain()
	item.ID = c.Param("id")
	if err := h.inventory.UpdateItem(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes a stock item
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.inventory.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type adjustRequest struct {
	BranchID  string `json:"branchId" binding:"required"`
	UPC       string `json:"upc" binding:"required,upc"`
	Delta     int64  `json:"delta" binding:"required"`
	Reference string `json:"reference"`
}

// AdjustStock applies a signed quantity adjustment to a stock position
func (h *Handler) AdjustStock(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.inventory.AdjustStock(c.Request.Context(), req.BranchID, req.UPC, req.Delta, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// --- Purchase orders ---

type purchaseOrderLineRequest struct {
	UPC      string          `json:"upc" binding:"required,upc"`
	Title    string          `json:"title"`
	Quantity int64           `json:"quantity" binding:"required,gt=0"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

type purchaseOrderRequest struct {
	BranchID string                     `json:"branchId" binding:"required"`
	Supplier string                     `json:"supplier" binding:"required"`
	Lines    []purchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreatePurchaseOrder creates a draft purchase order
func (h *Handler) CreatePurchaseOrder(c *gin.Context) {
	var req purchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po := &domain.PurchaseOrder{
		BranchID: req.BranchID,
		Supplier: req.Supplier,
	}
	for _, line := range req.Lines {
		po.Lines = append(po.Lines, domain.PurchaseOrderLine{
			UPC:      line.UPC,
			Title:    line.Title,
			Quantity: line.Quantity,
			UnitCost: line.UnitCost,
		})
	}

	if err := h.orders.Create(c.Request.Context(), po); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

// GetPurchaseOrder returns one purchase order
func (h *Handler) GetPurchaseOrder(c *gin.Context) {
	po, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// ListPurchaseOrders returns a branch's purchase orders
func (h *Handler) ListPurchaseOrders(c *gin.Context) {
	limit, offset := pagination(c)
	orders, err := h.orders.List(c.Request.Context(), c.Query("branchId"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchaseOrders": orders})
}

// SubmitPurchaseOrder moves a draft order to ordered
func (h *Handler) SubmitPurchaseOrder(c *gin.Context) {
	po, err := h.orders.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

type receiveRequest struct {
	Lines []usecase.ReceiptLine `json:"lines" binding:"required,min=1,dive"`
}

// ReceivePurchaseOrder records arrived quantities against an order
func (h *Handler) ReceivePurchaseOrder(c *gin.Context) {
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po, err := h.orders.Receive(c.Request.Context(), c.Param("id"), req.Lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// CancelPurchaseOrder cancels an order
func (h *Handler) CancelPurchaseOrder(c *gin.Context) {
	po, err := h.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// --- Transfers ---

type transferLineRequest struct {
	UPC      string `json:"upc" binding:"required,upc"`
	Title    string `json:"title"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

type transferRequest struct {
	FromBranchID string                `json:"fromBranchId" binding:"required"`
	ToBranchID   string                `json:"toBranchId" binding:"required"`
	Lines        []transferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateTransfer creates a pending inter-branch transfer
func (h *Handler) CreateTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	transfer := &domain.Transfer{
		FromBranchID: req.FromBranchID,
		ToBranchID:   req.ToBranchID,
	}
	for _, line := range req.Lines {
		transfer.Lines = append(transfer.Lines, domain.TransferLine{
			UPC:      line.UPC,
			Title:    line.Title,
			Quantity: line.Quantity,
		})
	}

	if err := h.transfers.Create(c.Request.Context(), transfer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

// GetTransfer returns one transfer
func (h *Handler) GetTransfer(c *gin.Context) {
	transfer, err := h.transfers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// ListTransfers returns the transfers touching a branch
func (h *Handler) ListTransfers(c *gin.Context) {
	limit, offset := pagination(c)
	transfers, err := h.transfers.List(c.Request.Context(), c.Query("branchId"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

// DispatchTransfer moves a pending transfer in transit
func (h *Handler) DispatchTransfer(c *gin.Context) {
	transfer, err := h.transfers.Dispatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// ReceiveTransfer completes an in-transit transfer
func (h *Handler) ReceiveTransfer(c *gin.Context) {
	transfer, err := h.transfers.Receive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// CancelTransfer cancels a pending transfer
func (h *Handler) CancelTransfer(c *gin.Context) {
	transfer, err := h.transfers.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// pagination reads limit/offset query params, leaving clamping to the services
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
