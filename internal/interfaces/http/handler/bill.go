package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/posledger/backend/internal/application/billing"
	"github.com/posledger/backend/internal/interfaces/http/dto"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
)

// BillHandler handles bill and payment endpoints
type BillHandler struct {
	BaseHandler
	bills    *appbilling.BillService
	payments *appbilling.PaymentService
	loc      *time.Location
	now      func() time.Time
}

// NewBillHandler creates a new BillHandler. loc is the zone in which date
// query parameters are interpreted.
func NewBillHandler(bills *appbilling.BillService, payments *appbilling.PaymentService, loc *time.Location) *BillHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BillHandler{bills: bills, payments: payments, loc: loc, now: time.Now}
}

// Create godoc
// @ID           createBill
// @Summary      Create a bill
// @Description  Allocate a bill number, store the bill with its items and record the stock movements of catalog lines
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        Idempotency-Key header string false "Client key; a retry with the same key returns the first bill"
// @Param        request body appbilling.CreateBillRequest true "Bill creation request"
// @Success      201 {object} APIResponse[appbilling.BillResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req appbilling.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(middleware.IdempotencyKeyHeader)

	bill, err := h.bills.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// List godoc
// @ID           listBills
// @Summary      List bills
// @Description  Page through bill headers, newest first by default
// @Tags         bills
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        search query string false "Bill number fragment"
// @Param        status query string false "Bill status" Enums(DRAFT, ACTIVE, CANCELLED, RETURNED)
// @Param        payment_status query string false "Payment status" Enums(PENDING, PARTIAL, COMPLETED)
// @Param        customer_id query string false "Customer ID"
// @Param        from query string false "Created on or after (YYYY-MM-DD)"
// @Param        to query string false "Created before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, bill_number, final_amount)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appbilling.BillResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var filter appbilling.BillListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, dto.ErrCodeInvalidID, "Invalid customer_id format")
			return
		}
		filter.CustomerID = &customerID
	}
	page := dto.PageRequest{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	filter.Page, filter.PageSize = page.Page, page.PageSize

	bills, total, err := h.bills.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, bills, total, filter.Page, filter.PageSize)
}

// Stats godoc
// @ID           getBillStats
// @Summary      Bill statistics
// @Description  Bill count, gross sales, collected and outstanding amounts for a date range (default: last 30 days)
// @Tags         bills
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[appbilling.BillStatsResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills/stats [get]
func (h *BillHandler) Stats(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(c, h.loc, h.now())
	if !ok {
		return
	}

	stats, err := h.bills.Stats(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// DailySales godoc
// @ID           getDailySales
// @Summary      Daily sales
// @Description  Per-day bill count and sales total of non-cancelled bills (default: last 30 days)
// @Tags         bills
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]appbilling.DailySalesResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills/daily-sales [get]
func (h *BillHandler) DailySales(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(c, h.loc, h.now())
	if !ok {
		return
	}

	days, err := h.bills.DailySales(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, days)
}

// Get godoc
// @ID           getBill
// @Summary      Get a bill with details
// @Description  Bill with items, payments, totals, customer and product projections for invoice rendering
// @Tags         bills
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} APIResponse[appbilling.BillDetailResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id} [get]
func (h *BillHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.bills.GetWithDetails(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Update godoc
// @ID           updateBill
// @Summary      Update a bill
// @Description  Partial update. Replacing items re-syncs the stock ledger; setting status CANCELLED cancels the bill.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body appbilling.UpdateBillRequest true "Fields to change"
// @Success      200 {object} APIResponse[appbilling.BillResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id} [patch]
func (h *BillHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req appbilling.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	bill, err := h.bills.Update(c.Request.Context(), tenantID, userID, billID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Cancel godoc
// @ID           cancelBill
// @Summary      Cancel a bill
// @Description  Mark the bill cancelled and return its catalog quantities to stock
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body appbilling.CancelBillRequest false "Cancellation reason"
// @Success      200 {object} APIResponse[appbilling.BillResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id}/cancel [post]
func (h *BillHandler) Cancel(c *gin.Context) {
	tenantID, userID, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req appbilling.CancelBillRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	bill, err := h.bills.Cancel(c.Request.Context(), tenantID, userID, billID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// AddPayment godoc
// @ID           addBillPayment
// @Summary      Record a payment
// @Description  Append a payment and recompute the bill's payment status (PENDING, PARTIAL, COMPLETED)
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body appbilling.AddPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[appbilling.PaymentResultResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id}/payments [post]
func (h *BillHandler) AddPayment(c *gin.Context) {
	tenantID, userID, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req appbilling.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.payments.AddPayment(c.Request.Context(), tenantID, userID, billID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListPayments godoc
// @ID           listBillPayments
// @Summary      List payments of a bill
// @Description  Payments recorded against the bill, newest first
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} APIResponse[[]appbilling.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id}/payments [get]
func (h *BillHandler) ListPayments(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	payments, err := h.payments.GetBillPayments(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
