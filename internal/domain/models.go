package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ImageURL      string          `json:"image_url"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InventoryValue is the on-hand quantity valued at purchase price.
func (p Product) InventoryValue() decimal.Decimal {
	return p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

type StockReceiveRequest struct {
	Name          string           `json:"name" validate:"required"`
	ImageURL      string           `json:"image_url" validate:"required"`
	Quantity      int              `json:"quantity" validate:"gte=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" validate:"required,gte=0,money"`
	SellingPrice  *decimal.Decimal `json:"selling_price" validate:"required,gte=0,money"`
}

type ProductUpdateRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,min=1"`
	Quantity      *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty" validate:"omitempty,gte=0,money"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty" validate:"omitempty,gte=0,money"`
}

type ReserveRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type StockReceiveResponse struct {
	Product Product `json:"product"`
	Created bool    `json:"created"`
}

type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MobileNumber string    `json:"mobile_number"`
	Address      string    `json:"address"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CustomerRequest struct {
	Name         string `json:"name" validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required"`
	Address      string `json:"address" validate:"required"`
	ImageURL     string `json:"image_url"`
}

// Sale stores references only. SaleDetail is the resolved read model.
type Sale struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	CustomerID      string          `json:"customer_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CashReceived    decimal.Decimal `json:"cash_received"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	SaleDate        time.Time       `json:"sale_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ProductRef struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ImageURL     string          `json:"image_url"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type CustomerRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	Address      string `json:"address"`
	ImageURL     string `json:"image_url"`
}

type SaleDetail struct {
	Sale
	Product  ProductRef  `json:"product"`
	Customer CustomerRef `json:"customer"`
}

type SaleCreateRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	CustomerID   string           `json:"customer_id" validate:"required_without=Customer"`
	Customer     *CustomerRequest `json:"customer,omitempty"`
	Quantity     int              `json:"quantity" validate:"required,min=1"`
	UnitPrice    *decimal.Decimal `json:"unit_price" validate:"required,gte=0,money"`
	CashReceived *decimal.Decimal `json:"cash_received,omitempty" validate:"omitempty,gte=0,money"`
	SaleDate     *time.Time       `json:"sale_date,omitempty"`
}

type PaymentRequest struct {
	AdditionalPayment *decimal.Decimal `json:"additional_payment" validate:"required,gte=0,money"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type SaleListResponse struct {
	Sales      []SaleDetail `json:"sales"`
	Pagination Pagination   `json:"pagination"`
}

type CustomerListResponse struct {
	Customers  []Customer `json:"customers"`
	Pagination Pagination `json:"pagination"`
}

type SalesSummary struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Count           int             `json:"count"`
}

type DashboardStats struct {
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	TodayPurchaseValue  decimal.Decimal `json:"today_purchase_value"`
	TodaySalesAmount    decimal.Decimal `json:"today_sales_amount"`
	TotalOutstanding    decimal.Decimal `json:"total_outstanding"`
}

type DailyPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthlyPoint struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type YearlyPoint struct {
	Year   string          `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

type SalesGraph struct {
	Daily   []DailyPoint   `json:"daily"`
	Monthly []MonthlyPoint `json:"monthly"`
	Yearly  []YearlyPoint  `json:"yearly"`
}

type CustomerStats struct {
	CustomerID          string          `json:"customer_id"`
	TotalPurchaseAmount decimal.Decimal `json:"total_purchase_amount"`
	TotalOutstanding    decimal.Decimal `json:"total_outstanding"`
}

type Actor struct {
	AccountID string
	Email     string
}
