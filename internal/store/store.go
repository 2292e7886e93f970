package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warungledger/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInUse             = errors.New("still referenced by sales")
	ErrDuplicate         = errors.New("already exists")
)

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type CustomerFilter struct {
	Search string
	Page   Page
}

type SaleFilter struct {
	CustomerID string
	Page       Page
}

type SalesSummaryFilter struct {
	CustomerID string
}

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	// ReceiveStock upserts by exact name. product.Quantity is the delta.
	ReceiveStock(ctx context.Context, product domain.Product) (*domain.Product, bool, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ReserveStock(ctx context.Context, id string, quantity int) (*domain.Product, error)
}

type CustomerRepository interface {
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]domain.Customer, int, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type SaleRepository interface {
	// CreateSale inserts newCustomer (when non-nil), reserves stock and
	// inserts the sale as one unit.
	CreateSale(ctx context.Context, sale domain.Sale, newCustomer *domain.Customer) (*domain.SaleDetail, error)
	GetSale(ctx context.Context, id string) (*domain.SaleDetail, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]domain.SaleDetail, int, error)
	// UpdateSale runs mutate under a per-sale lock and persists the result
	// unless mutate returns an error.
	UpdateSale(ctx context.Context, id string, mutate func(*domain.Sale) error) (*domain.SaleDetail, error)
	// ListSalesBetween returns sales with from <= sale_date < to.
	ListSalesBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error)
	SalesSummary(ctx context.Context, filter SalesSummaryFilter) (domain.SalesSummary, error)
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByProvider(ctx context.Context, provider, providerID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
}

type Repository interface {
	ProductRepository
	CustomerRepository
	SaleRepository
	AccountRepository
}
