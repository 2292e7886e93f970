package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/ledger"
	"warungledger/backend/internal/report"
	"warungledger/backend/internal/store"
	"warungledger/backend/internal/store/memory"
)

type deleteCountingCache struct {
	mu      sync.Mutex
	deletes int
}

func (c *deleteCountingCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (c *deleteCountingCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (c *deleteCountingCache) Delete(context.Context, ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	return nil
}

type fixture struct {
	svc   *Service
	repo  *memory.Store
	cache *deleteCountingCache
}

func newFixture(t *testing.T, policy ledger.Policy) fixture {
	t.Helper()
	repo := memory.New()
	cache := &deleteCountingCache{}
	engine := report.NewEngine(repo, cache, time.Minute, time.UTC)
	return fixture{svc: New(repo, engine, policy, "Warung Test"), repo: repo, cache: cache}
}

func money(v string) *decimal.Decimal {
	d := domain.Money(v)
	return &d
}

func (f fixture) product(t *testing.T, name string, qty int, price string) domain.Product {
	t.Helper()
	resp, err := f.svc.ReceiveStock(context.Background(), domain.StockReceiveRequest{
		Name:          name,
		ImageURL:      "https://img.test/" + name + ".png",
		Quantity:      qty,
		PurchasePrice: money(price),
		SellingPrice:  money(price),
	})
	require.NoError(t, err)
	return resp.Product
}

func (f fixture) customer(t *testing.T, name string) domain.Customer {
	t.Helper()
	c, err := f.svc.CreateCustomer(context.Background(), domain.CustomerRequest{
		Name:         name,
		MobileNumber: "0812000111",
		Address:      "Jl. Mawar 1",
	})
	require.NoError(t, err)
	return c
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.ErrorIs(t, err, ErrValidation)
	return verr.Fields
}

func TestPartialSaleThenSettlement(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Kopi Bubuk", 10, "100")
	c := f.customer(t, "Budi")

	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		ProductID:    p.ID,
		CustomerID:   c.ID,
		Quantity:     3,
		UnitPrice:    money("100"),
		CashReceived: money("150"),
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(domain.Money("300")))
	assert.True(t, sale.RemainingAmount.Equal(domain.Money("150")))
	assert.Equal(t, domain.PaymentPartial, sale.PaymentStatus)
	assert.Equal(t, p.Name, sale.Product.Name)
	assert.Equal(t, c.Name, sale.Customer.Name)

	stocked, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stocked.Quantity)

	paid, err := f.svc.ApplyPayment(ctx, sale.ID, domain.PaymentRequest{AdditionalPayment: money("150")})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.True(t, paid.RemainingAmount.IsZero())
	assert.True(t, paid.CashReceived.Equal(domain.Money("300")))

	afterPayment, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, afterPayment.Quantity, "payments never touch stock")
}

func TestCreateSaleInsufficientStockWritesNothing(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Gula", 2, "15000")
	c := f.customer(t, "Siti")

	_, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		ProductID:  p.ID,
		CustomerID: c.ID,
		Quantity:   5,
		UnitPrice:  money("15000"),
	})
	require.ErrorIs(t, err, store.ErrInsufficientStock)
	var stockErr *store.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	unchanged, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.Quantity)

	list, err := f.svc.ListSales(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list.Sales)
}

func TestCreateSaleValidation(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)

	tests := []struct {
		name   string
		req    domain.SaleCreateRequest
		fields map[string]string
	}{
		{
			name: "missing everything",
			req:  domain.SaleCreateRequest{},
			fields: map[string]string{
				"product_id":  "required",
				"customer_id": "required_without",
				"quantity":    "required",
				"unit_price":  "required",
			},
		},
		{
			name: "negative money",
			req: domain.SaleCreateRequest{
				ProductID:    "prd-1",
				CustomerID:   "cus-1",
				Quantity:     1,
				UnitPrice:    money("-1"),
				CashReceived: money("-5"),
			},
			fields: map[string]string{"unit_price": "gte", "cash_received": "gte"},
		},
		{
			name: "sub-cent money",
			req: domain.SaleCreateRequest{
				ProductID:    "prd-1",
				CustomerID:   "cus-1",
				Quantity:     3,
				UnitPrice:    money("0.333"),
				CashReceived: money("0.999"),
			},
			fields: map[string]string{"unit_price": "money", "cash_received": "money"},
		},
		{
			name: "money above column range",
			req: domain.SaleCreateRequest{
				ProductID:  "prd-1",
				CustomerID: "cus-1",
				Quantity:   1,
				UnitPrice:  money("1000000000000"),
			},
			fields: map[string]string{"unit_price": "money"},
		},
		{
			name: "incomplete inline customer",
			req: domain.SaleCreateRequest{
				ProductID: "prd-1",
				Customer:  &domain.CustomerRequest{Name: "  ", MobileNumber: "0812"},
				Quantity:  1,
				UnitPrice: money("10"),
			},
			fields: map[string]string{"customer.name": "required", "customer.address": "required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSale(context.Background(), tt.req)
			assert.Equal(t, tt.fields, validationFields(t, err))
		})
	}
}

func TestCreateSaleTotalBeyondRangeWritesNothing(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	p := f.product(t, "Emas", 5, "100")
	c := f.customer(t, "Sari")

	_, err := f.svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		ProductID: p.ID, CustomerID: c.ID, Quantity: 2, UnitPrice: money("999999999999.99"),
	})
	require.ErrorIs(t, err, ledger.ErrInvalidTerms)

	current, err := f.svc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, current.Quantity)
	sales, err := f.svc.ListSales(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, sales.Sales)
}

func TestCreateSaleUnknownReferences(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Teh", 5, "5000")
	c := f.customer(t, "Andi")

	_, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		ProductID: "prd-missing", CustomerID: c.ID, Quantity: 1, UnitPrice: money("5000"),
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		ProductID: p.ID, CustomerID: "cus-missing", Quantity: 1, UnitPrice: money("5000"),
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateSaleWithInlineCustomer(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Beras", 10, "70000")

	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{
		ProductID: p.ID,
		Customer: &domain.CustomerRequest{
			Name:         " Rina ",
			MobileNumber: "0857",
			Address:      "Jl. Kenanga",
		},
		Quantity:  1,
		UnitPrice: money("70000"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, sale.PaymentStatus)
	assert.Equal(t, "Rina", sale.Customer.Name)
	assert.NotEmpty(t, sale.CustomerID)

	stored, err := f.svc.GetCustomer(ctx, sale.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Jl. Kenanga", stored.Address)
}

func TestCreateSaleFullCashIsPaid(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	p := f.product(t, "Minyak", 3, "30000")
	c := f.customer(t, "Dewi")
	date := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	sale, err := f.svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		ProductID:    p.ID,
		CustomerID:   c.ID,
		Quantity:     2,
		UnitPrice:    money("30000"),
		CashReceived: money("70000"),
		SaleDate:     &date,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, sale.PaymentStatus)
	assert.True(t, sale.RemainingAmount.IsZero())
	assert.True(t, sale.CashReceived.Equal(domain.Money("70000")))
	assert.True(t, sale.SaleDate.Equal(date))
}

func TestApplyPaymentPolicies(t *testing.T) {
	open := func(t *testing.T, f fixture) domain.SaleDetail {
		p := f.product(t, "Sabun", 10, "100")
		c := f.customer(t, "Joko")
		sale, err := f.svc.CreateSale(context.Background(), domain.SaleCreateRequest{
			ProductID: p.ID, CustomerID: c.ID, Quantity: 3, UnitPrice: money("100"), CashReceived: money("150"),
		})
		require.NoError(t, err)
		return sale
	}

	t.Run("reject leaves sale unchanged", func(t *testing.T) {
		f := newFixture(t, ledger.PolicyReject)
		sale := open(t, f)

		_, err := f.svc.ApplyPayment(context.Background(), sale.ID, domain.PaymentRequest{AdditionalPayment: money("500")})
		require.ErrorIs(t, err, ledger.ErrOverpayment)
		var overErr *ledger.OverpaymentError
		require.ErrorAs(t, err, &overErr)
		assert.True(t, overErr.Remaining.Equal(domain.Money("150")))

		current, err := f.svc.GetSale(context.Background(), sale.ID)
		require.NoError(t, err)
		assert.True(t, current.CashReceived.Equal(domain.Money("150")))
		assert.Equal(t, domain.PaymentPartial, current.PaymentStatus)
	})

	t.Run("clamp settles and then stays terminal", func(t *testing.T) {
		f := newFixture(t, ledger.PolicyClamp)
		sale := open(t, f)

		paid, err := f.svc.ApplyPayment(context.Background(), sale.ID, domain.PaymentRequest{AdditionalPayment: money("500")})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
		assert.True(t, paid.RemainingAmount.IsZero())

		_, err = f.svc.ApplyPayment(context.Background(), sale.ID, domain.PaymentRequest{AdditionalPayment: money("1")})
		require.ErrorIs(t, err, ledger.ErrOverpayment)
	})

	t.Run("negative and missing amounts", func(t *testing.T) {
		f := newFixture(t, ledger.PolicyReject)
		sale := open(t, f)

		_, err := f.svc.ApplyPayment(context.Background(), sale.ID, domain.PaymentRequest{AdditionalPayment: money("-10")})
		assert.Equal(t, map[string]string{"additional_payment": "gte"}, validationFields(t, err))

		_, err = f.svc.ApplyPayment(context.Background(), sale.ID, domain.PaymentRequest{})
		assert.Equal(t, map[string]string{"additional_payment": "required"}, validationFields(t, err))
	})

	t.Run("sub-cent amount leaves sale unchanged", func(t *testing.T) {
		f := newFixture(t, ledger.PolicyClamp)
		sale := open(t, f)

		_, err := f.svc.ApplyPayment(context.Background(), sale.ID, domain.PaymentRequest{AdditionalPayment: money("0.004")})
		assert.Equal(t, map[string]string{"additional_payment": "money"}, validationFields(t, err))

		current, err := f.svc.GetSale(context.Background(), sale.ID)
		require.NoError(t, err)
		assert.True(t, current.RemainingAmount.Equal(domain.Money("150")))
		assert.Equal(t, domain.PaymentPartial, current.PaymentStatus)
	})

	t.Run("unknown sale", func(t *testing.T) {
		f := newFixture(t, ledger.PolicyReject)
		_, err := f.svc.ApplyPayment(context.Background(), "sal-missing", domain.PaymentRequest{AdditionalPayment: money("1")})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestReceiveStockUpsertsByTrimmedName(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()

	first, err := f.svc.ReceiveStock(ctx, domain.StockReceiveRequest{
		Name: "Susu UHT", ImageURL: "a.png", Quantity: 4, PurchasePrice: money("5000"), SellingPrice: money("6500"),
	})
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := f.svc.ReceiveStock(ctx, domain.StockReceiveRequest{
		Name: "  Susu UHT ", ImageURL: "b.png", Quantity: 6, PurchasePrice: money("5200"), SellingPrice: money("7000"),
	})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Product.ID, second.Product.ID)
	assert.Equal(t, 10, second.Product.Quantity)
	assert.Equal(t, "b.png", second.Product.ImageURL)
	assert.True(t, second.Product.SellingPrice.Equal(domain.Money("7000")))

	_, err = f.svc.ReceiveStock(ctx, domain.StockReceiveRequest{Name: "Roti", Quantity: -1, SellingPrice: money("1")})
	assert.Equal(t, map[string]string{
		"image_url":      "required",
		"quantity":       "gte",
		"purchase_price": "required",
	}, validationFields(t, err))
}

func TestProductPricesMustBeWholeCents(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()

	_, err := f.svc.ReceiveStock(ctx, domain.StockReceiveRequest{
		Name:          "Garam",
		ImageURL:      "https://img.test/garam.png",
		Quantity:      1,
		PurchasePrice: money("1.005"),
		SellingPrice:  money("1000000000000"),
	})
	assert.Equal(t, map[string]string{"purchase_price": "money", "selling_price": "money"}, validationFields(t, err))

	p := f.product(t, "Gula", 4, "12.50")
	_, err = f.svc.UpdateProduct(ctx, p.ID, domain.ProductUpdateRequest{SellingPrice: money("12.499")})
	assert.Equal(t, map[string]string{"selling_price": "money"}, validationFields(t, err))

	updated, err := f.svc.UpdateProduct(ctx, p.ID, domain.ProductUpdateRequest{SellingPrice: money("12.990")})
	require.NoError(t, err)
	assert.True(t, updated.SellingPrice.Equal(domain.Money("12.99")))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Kecap", 8, "9000")
	other := f.product(t, "Saos", 8, "9000")

	blank := "   "
	_, err := f.svc.UpdateProduct(ctx, p.ID, domain.ProductUpdateRequest{Name: &blank})
	assert.Equal(t, map[string]string{"name": "min"}, validationFields(t, err))

	taken := other.Name
	_, err = f.svc.UpdateProduct(ctx, p.ID, domain.ProductUpdateRequest{Name: &taken})
	require.ErrorIs(t, err, store.ErrDuplicate)

	qty := 3
	updated, err := f.svc.UpdateProduct(ctx, p.ID, domain.ProductUpdateRequest{Quantity: &qty, SellingPrice: money("9500")})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.True(t, updated.SellingPrice.Equal(domain.Money("9500")))
	assert.True(t, updated.PurchasePrice.Equal(domain.Money("9000")))

	c := f.customer(t, "Eka")
	_, err = f.svc.CreateSale(ctx, domain.SaleCreateRequest{ProductID: p.ID, CustomerID: c.ID, Quantity: 1, UnitPrice: money("9500")})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteProduct(ctx, p.ID), store.ErrInUse)
	require.ErrorIs(t, f.svc.DeleteCustomer(ctx, c.ID), store.ErrInUse)
	require.NoError(t, f.svc.DeleteProduct(ctx, other.ID))
	require.ErrorIs(t, f.svc.DeleteProduct(ctx, other.ID), store.ErrNotFound)
}

func TestReserveStock(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Telur", 5, "2000")

	left, err := f.svc.ReserveStock(ctx, p.ID, domain.ReserveRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, left.Quantity)

	_, err = f.svc.ReserveStock(ctx, p.ID, domain.ReserveRequest{Quantity: 2})
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	_, err = f.svc.ReserveStock(ctx, p.ID, domain.ReserveRequest{Quantity: 0})
	assert.Equal(t, map[string]string{"quantity": "required"}, validationFields(t, err))
}

func TestListCustomersPaging(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	for _, name := range []string{"Agus", "Agung", "Bayu"} {
		f.customer(t, name)
	}

	resp, err := f.svc.ListCustomers(ctx, "AG", 0, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 10, Total: 2, Pages: 1}, resp.Pagination)

	resp, err = f.svc.ListCustomers(ctx, "", 2, 500)
	require.NoError(t, err)
	assert.Empty(t, resp.Customers)
	assert.Equal(t, 100, resp.Pagination.Limit)
	assert.Equal(t, 3, resp.Pagination.Total)

	_, err = f.svc.UpdateCustomer(ctx, "cus-missing", domain.CustomerRequest{Name: "X", MobileNumber: "1", Address: "Y"})
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.svc.CreateCustomer(ctx, domain.CustomerRequest{Name: "X"})
	assert.Equal(t, map[string]string{"mobile_number": "required", "address": "required"}, validationFields(t, err))
}

func TestWritesInvalidateReportCache(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Mie", 10, "3000")
	c := f.customer(t, "Lina")
	afterStock := f.cache.deletes
	require.Equal(t, 1, afterStock)

	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{ProductID: p.ID, CustomerID: c.ID, Quantity: 2, UnitPrice: money("3000")})
	require.NoError(t, err)
	_, err = f.svc.ApplyPayment(ctx, sale.ID, domain.PaymentRequest{AdditionalPayment: money("1000")})
	require.NoError(t, err)
	assert.Equal(t, afterStock+2, f.cache.deletes)

	stats, err := f.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.TodaySalesAmount.Equal(domain.Money("6000")))
	assert.True(t, stats.TotalOutstanding.Equal(domain.Money("5000")))
	assert.True(t, stats.TotalInventoryValue.Equal(domain.Money("24000")))

	customerStats, err := f.svc.CustomerStats(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, customerStats.TotalPurchaseAmount.Equal(domain.Money("6000")))

	_, err = f.svc.CustomerStats(ctx, "cus-missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvoiceUsesCompanyName(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()
	p := f.product(t, "Kopi", 5, "20000")
	c := f.customer(t, "Tono")
	sale, err := f.svc.CreateSale(ctx, domain.SaleCreateRequest{ProductID: p.ID, CustomerID: c.ID, Quantity: 1, UnitPrice: money("20000")})
	require.NoError(t, err)

	account, err := f.repo.CreateAccount(ctx, domain.Account{
		Name:        "Owner",
		Email:       "owner@toko.test",
		CompanyName: "Toko Maju",
		Credential:  domain.LocalCredential{PasswordHash: "$2a$04$placeholder"},
	})
	require.NoError(t, err)
	actorCtx := WithActor(ctx, domain.Actor{AccountID: account.ID, Email: account.Email})

	assert.Equal(t, "Toko Maju", f.svc.invoiceIssuer(actorCtx))
	assert.Equal(t, "Warung Test", f.svc.invoiceIssuer(ctx))

	pdf, name, err := f.svc.Invoice(actorCtx, sale.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Equal(t, "invoice_"+sale.ID+".pdf", name)

	_, _, err = f.svc.Invoice(ctx, "sal-missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfile(t *testing.T) {
	f := newFixture(t, ledger.PolicyReject)
	ctx := context.Background()

	_, err := f.svc.Profile(ctx)
	require.True(t, errors.Is(err, ErrNoActor))

	account, err := f.repo.CreateAccount(ctx, domain.Account{
		Name:       "Fed User",
		Email:      "fed@toko.test",
		Credential: domain.FederatedCredential{Provider: "google", ProviderID: "g-1"},
	})
	require.NoError(t, err)
	actorCtx := WithActor(ctx, domain.Actor{AccountID: account.ID, Email: account.Email})

	name := "  Fed Owner "
	company := "Warung Fed"
	profile, err := f.svc.UpdateProfile(actorCtx, domain.ProfileUpdateRequest{Name: &name, CompanyName: &company})
	require.NoError(t, err)
	assert.Equal(t, "Fed Owner", profile.Name)
	assert.Equal(t, "Warung Fed", profile.CompanyName)
	assert.Equal(t, domain.OriginFederated, profile.Origin)

	fetched, err := f.svc.Profile(actorCtx)
	require.NoError(t, err)
	assert.Equal(t, profile.Name, fetched.Name)
}
