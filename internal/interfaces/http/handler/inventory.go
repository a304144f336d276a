package handler

import (
	"github.com/gin-gonic/gin"
	appinventory "github.com/posledger/backend/internal/application/inventory"
)

// InventoryHandler handles the stock ledger endpoints
type InventoryHandler struct {
	BaseHandler
	ledger *appinventory.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *appinventory.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// AddTransaction godoc
// @ID           addInventoryTransaction
// @Summary      Record a stock movement
// @Description  Append a manual ledger entry. Quantities are magnitudes; only IN adds to stock.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        request body appinventory.AddInventoryRequest true "Ledger entry"
// @Success      201 {object} APIResponse[appinventory.TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transactions [post]
func (h *InventoryHandler) AddTransaction(c *gin.Context) {
	tenantID, userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req appinventory.AddInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entry, err := h.ledger.AddInventory(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetProductStock godoc
// @ID           getProductStock
// @Summary      Stock of a product
// @Description  Current stock derived from the ledger, with the entries newest first
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[appinventory.ProductStockResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/products/{id}/stock [get]
func (h *InventoryHandler) GetProductStock(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	stock, err := h.ledger.GetProductStock(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// GetStats godoc
// @ID           getInventoryStats
// @Summary      Inventory statistics
// @Description  Active products, products with a minimum, low-stock products and ledger activity of the last 7 days
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Success      200 {object} APIResponse[appinventory.InventoryStatsResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/stats [get]
func (h *InventoryHandler) GetStats(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	stats, err := h.ledger.GetInventoryStats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
