package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// BillItemInput is one line of a create or update request
type BillItemInput struct {
	ProductID      *uuid.UUID        `json:"product_id"`
	CustomName     string            `json:"custom_name" binding:"max=200"`
	Description    string            `json:"description" binding:"max=500"`
	Quantity       decimal.Decimal   `json:"quantity" binding:"required"`
	Unit           string            `json:"unit" binding:"max=20"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
	Discount       decimal.Decimal   `json:"discount"`
	IsTailoring    bool              `json:"is_tailoring"`
	TailoringPrice decimal.Decimal   `json:"tailoring_price"`
	Measurements   map[string]string `json:"measurements"`
	Notes          string            `json:"notes"`
}

// CreateBillRequest represents a request to create a bill
type CreateBillRequest struct {
	CustomerID     *uuid.UUID       `json:"customer_id"`
	Items          []BillItemInput  `json:"items" binding:"required,min=1,dive"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	PaymentMethod  string           `json:"payment_method" binding:"required"`
	Notes          string           `json:"notes"`
	DeliveryDate   *time.Time       `json:"delivery_date"`

	// IdempotencyKey is taken from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// UpdateBillRequest is a partial update; nil fields are left untouched
type UpdateBillRequest struct {
	CustomerID     *uuid.UUID       `json:"customer_id"`
	ClearCustomer  bool             `json:"clear_customer"`
	Items          []BillItemInput  `json:"items" binding:"omitempty,min=1,dive"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	PaymentMethod  *string          `json:"payment_method"`
	PaymentStatus  *string          `json:"payment_status"`
	Status         *string          `json:"status"`
	Notes          *string          `json:"notes"`
	DeliveryDate   *time.Time       `json:"delivery_date"`
	CancelReason   string           `json:"cancel_reason"`
}

// CancelBillRequest represents a request to cancel a bill
type CancelBillRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AddPaymentRequest represents a payment against a bill
type AddPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference" binding:"max=100"`
	Notes     string          `json:"notes" binding:"max=500"`
}

// BillListFilter represents filter options for the bill list
type BillListFilter struct {
	Search        string     `form:"search"`
	Status        string     `form:"status"`
	PaymentStatus string     `form:"payment_status"`
	CustomerID    *uuid.UUID `form:"-"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by" binding:"omitempty,oneof=created_at bill_number final_amount"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// BillItemResponse represents a bill line in API responses
type BillItemResponse struct {
	ID             uuid.UUID         `json:"id"`
	LineNo         int               `json:"line_no"`
	ProductID      *uuid.UUID        `json:"product_id,omitempty"`
	CustomName     string            `json:"custom_name,omitempty"`
	Description    string            `json:"description,omitempty"`
	Quantity       decimal.Decimal   `json:"quantity"`
	Unit           string            `json:"unit"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
	Discount       decimal.Decimal   `json:"discount"`
	IsTailoring    bool              `json:"is_tailoring"`
	TailoringPrice decimal.Decimal   `json:"tailoring_price"`
	Measurements   map[string]string `json:"measurements,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID             uuid.UUID          `json:"id"`
	TenantID       uuid.UUID          `json:"tenant_id"`
	BillNumber     string             `json:"bill_number"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	FinalAmount    decimal.Decimal    `json:"final_amount"`
	PaymentMethod  string             `json:"payment_method"`
	PaymentStatus  string             `json:"payment_status"`
	Status         string             `json:"status"`
	Notes          string             `json:"notes"`
	DeliveryDate   *time.Time         `json:"delivery_date,omitempty"`
	Items          []BillItemResponse `json:"items,omitempty"`
	CreatedBy      *uuid.UUID         `json:"created_by,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Version        int                `json:"version"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	BillID    uuid.UUID       `json:"bill_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentResultResponse is returned by AddPayment
type PaymentResultResponse struct {
	Payment       PaymentResponse `json:"payment"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	PaymentStatus string          `json:"payment_status"`
}

// CustomerProjection is the customer slice shown on an invoice
type CustomerProjection struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone,omitempty"`
	Email   string    `json:"email,omitempty"`
	Address string    `json:"address,omitempty"`
}

// ProductProjection is the product slice shown on an invoice line
type ProductProjection struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
	Unit string    `json:"unit"`
}

// BillDetailResponse is the read-model handed to invoice rendering
type BillDetailResponse struct {
	BillResponse
	Payments   []PaymentResponse               `json:"payments"`
	TotalPaid  decimal.Decimal                 `json:"total_paid"`
	BalanceDue decimal.Decimal                 `json:"balance_due"`
	Customer   *CustomerProjection             `json:"customer,omitempty"`
	Products   map[uuid.UUID]ProductProjection `json:"products,omitempty"`
}

// BillStatsResponse summarises a period
type BillStatsResponse struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	BillCount      int64           `json:"bill_count"`
	CancelledCount int64           `json:"cancelled_count"`
	GrossSales     decimal.Decimal `json:"gross_sales"`
	Collected      decimal.Decimal `json:"collected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

// DailySalesResponse is one day of sales
type DailySalesResponse struct {
	Day         string          `json:"day"`
	BillCount   int64           `json:"bill_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ==================== Mappers ====================

// ToBillItemResponse converts a domain bill item to a response
func ToBillItemResponse(item *billing.BillItem) BillItemResponse {
	return BillItemResponse{
		ID:             item.ID,
		LineNo:         item.LineNo,
		ProductID:      item.ProductID,
		CustomName:     item.CustomName,
		Description:    item.Description,
		Quantity:       item.Quantity,
		Unit:           item.Unit,
		UnitPrice:      item.UnitPrice,
		TotalPrice:     item.TotalPrice,
		Discount:       item.Discount,
		IsTailoring:    item.IsTailoring,
		TailoringPrice: item.TailoringPrice,
		Measurements:   item.Measurements,
		Notes:          item.Notes,
	}
}

// ToBillResponse converts a domain bill to a response
func ToBillResponse(b *billing.Bill) BillResponse {
	items := make([]BillItemResponse, len(b.Items))
	for i := range b.Items {
		items[i] = ToBillItemResponse(&b.Items[i])
	}
	return BillResponse{
		ID:             b.ID,
		TenantID:       b.TenantID,
		BillNumber:     b.BillNumber,
		CustomerID:     b.CustomerID,
		TotalAmount:    b.TotalAmount,
		DiscountAmount: b.DiscountAmount,
		TaxAmount:      b.TaxAmount,
		FinalAmount:    b.FinalAmount,
		PaymentMethod:  b.PaymentMethod.String(),
		PaymentStatus:  b.PaymentStatus.String(),
		Status:         b.Status.String(),
		Notes:          b.Notes,
		DeliveryDate:   b.DeliveryDate,
		Items:          items,
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		Version:        b.Version,
	}
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		BillID:    p.BillID,
		Amount:    p.Amount,
		Method:    p.Method.String(),
		Reference: p.Reference,
		Notes:     p.Notes,
		Status:    p.Status.String(),
		CreatedAt: p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

func toCustomerProjection(c *partner.Customer) *CustomerProjection {
	return &CustomerProjection{
		ID:      c.ID,
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
	}
}

func toProductProjection(p *catalog.Product) ProductProjection {
	return ProductProjection{
		ID:   p.ID,
		Code: p.Code,
		Name: p.Name,
		Unit: p.Unit,
	}
}

func toDomainItemInput(in BillItemInput) billing.BillItemInput {
	return billing.BillItemInput{
		ProductID:      in.ProductID,
		CustomName:     in.CustomName,
		Description:    in.Description,
		Quantity:       in.Quantity,
		Unit:           in.Unit,
		UnitPrice:      in.UnitPrice,
		TotalPrice:     in.TotalPrice,
		Discount:       in.Discount,
		IsTailoring:    in.IsTailoring,
		TailoringPrice: in.TailoringPrice,
		Measurements:   in.Measurements,
		Notes:          in.Notes,
	}
}
