package memory

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/store"
	"warungledger/backend/internal/xid"
)

type Store struct {
	mu                sync.RWMutex
	products          map[string]domain.Product
	productIDByName   map[string]string
	customers         map[string]domain.Customer
	sales             map[string]domain.Sale
	accounts          map[string]domain.Account
	accountIDByEmail  map[string]string
	accountIDByFedKey map[string]string
}

func New() *Store {
	return &Store{
		products:          make(map[string]domain.Product),
		productIDByName:   make(map[string]string),
		customers:         make(map[string]domain.Customer),
		sales:             make(map[string]domain.Sale),
		accounts:          make(map[string]domain.Account),
		accountIDByEmail:  make(map[string]string),
		accountIDByFedKey: make(map[string]string),
	}
}

// NewSeeded returns a store with a demo owner account, a small catalogue and
// two customers. The owner password comes from SEED_OWNER_PASSWORD and falls
// back to a dev default with a warning. Postgres deployments never use it.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	ownerPwd := os.Getenv("SEED_OWNER_PASSWORD")
	if ownerPwd == "" {
		ownerPwd = "owner12345"
		log.Warn().Str("component", "memory-store").Msg("using default dev credentials; set SEED_OWNER_PASSWORD to override")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(ownerPwd), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash seed password")
	}
	owner := domain.Account{
		ID:          xid.New("acc"),
		Name:        "Demo Owner",
		Email:       "owner@warung.local",
		CompanyName: "Warung Demo",
		Credential:  domain.LocalCredential{PasswordHash: string(hash)},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.accounts[owner.ID] = owner
	s.accountIDByEmail[owner.Email] = owner.ID

	for i, p := range []struct {
		name     string
		qty      int
		purchase string
		selling  string
	}{
		{"Beras Premium 5kg", 40, "62000", "71000"},
		{"Minyak Goreng 2L", 36, "31000", "35500"},
		{"Gula Pasir 1kg", 50, "14500", "17400"},
		{"Kopi Bubuk 250g", 24, "18000", "22500"},
	} {
		created := now.Add(-time.Duration(i+1) * 24 * time.Hour)
		product := domain.Product{
			ID:            xid.New("prd"),
			Name:          p.name,
			ImageURL:      "https://images.warung.local/placeholder.png",
			Quantity:      p.qty,
			PurchasePrice: domain.Money(p.purchase),
			SellingPrice:  domain.Money(p.selling),
			CreatedAt:     created,
			UpdatedAt:     created,
		}
		s.products[product.ID] = product
		s.productIDByName[product.Name] = product.ID
	}

	for _, c := range []domain.Customer{
		{Name: "Budi Santoso", MobileNumber: "081234567890", Address: "Jl. Melati 4, Bandung"},
		{Name: "Siti Rahma", MobileNumber: "085701112233", Address: "Jl. Kenanga 12, Bogor"},
	} {
		c.ID = xid.New("cus")
		c.CreatedAt = now
		c.UpdatedAt = now
		s.customers[c.ID] = c
	}

	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b domain.Product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) ReceiveStock(_ context.Context, product domain.Product) (*domain.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if id, ok := s.productIDByName[product.Name]; ok {
		existing := s.products[id]
		existing.Quantity += product.Quantity
		existing.ImageURL = product.ImageURL
		existing.PurchasePrice = product.PurchasePrice
		existing.SellingPrice = product.SellingPrice
		existing.UpdatedAt = now
		s.products[id] = existing
		return &existing, false, nil
	}

	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = product
	s.productIDByName[product.Name] = product.ID
	return &product, true, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", product.ID, store.ErrNotFound)
	}
	if product.Quantity < 0 {
		return nil, fmt.Errorf("product %s: negative quantity", product.ID)
	}
	if otherID, taken := s.productIDByName[product.Name]; taken && otherID != product.ID {
		return nil, fmt.Errorf("product name %q: %w", product.Name, store.ErrDuplicate)
	}

	delete(s.productIDByName, existing.Name)
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	s.products[product.ID] = product
	s.productIDByName[product.Name] = product.ID
	return &product, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	for _, sale := range s.sales {
		if sale.ProductID == id {
			return fmt.Errorf("product %s: %w", id, store.ErrInUse)
		}
	}
	delete(s.products, id)
	delete(s.productIDByName, existing.Name)
	return nil
}

func (s *Store) ReserveStock(_ context.Context, id string, quantity int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.reserveLocked(id, quantity)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// reserveLocked checks and decrements stock. Callers hold s.mu.
func (s *Store) reserveLocked(id string, quantity int) (domain.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	if quantity < 1 {
		return domain.Product{}, fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}
	if product.Quantity < quantity {
		return domain.Product{}, &store.InsufficientStockError{ProductID: id, Requested: quantity, Available: product.Quantity}
	}
	product.Quantity -= quantity
	product.UpdatedAt = time.Now().UTC()
	s.products[id] = product
	return product, nil
}

func (s *Store) ListCustomers(_ context.Context, filter store.CustomerFilter) ([]domain.Customer, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.MobileNumber), needle) {
			continue
		}
		matched = append(matched, c)
	}
	slices.SortFunc(matched, func(a, b domain.Customer) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return paginate(matched, filter.Page), len(matched), nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.insertCustomerLocked(customer)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) insertCustomerLocked(customer domain.Customer) (domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	if _, exists := s.customers[customer.ID]; exists {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", customer.ID, store.ErrDuplicate)
	}
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.customers[customer.ID] = customer
	return customer, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[customer.ID]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", customer.ID, store.ErrNotFound)
	}
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = time.Now().UTC()
	s.customers[customer.ID] = customer
	return &customer, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return fmt.Errorf("customer %s: %w", id, store.ErrNotFound)
	}
	for _, sale := range s.sales {
		if sale.CustomerID == id {
			return fmt.Errorf("customer %s: %w", id, store.ErrInUse)
		}
	}
	delete(s.customers, id)
	return nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale, newCustomer *domain.Customer) (*domain.SaleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sales[sale.ID]; exists {
		return nil, fmt.Errorf("sale %s: %w", sale.ID, store.ErrDuplicate)
	}
	if newCustomer != nil {
		if _, exists := s.customers[newCustomer.ID]; exists {
			return nil, fmt.Errorf("customer %s: %w", newCustomer.ID, store.ErrDuplicate)
		}
	} else if _, ok := s.customers[sale.CustomerID]; !ok {
		return nil, fmt.Errorf("customer %s: %w", sale.CustomerID, store.ErrNotFound)
	}

	// Everything that can fail is checked before the first write.
	product, ok := s.products[sale.ProductID]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", sale.ProductID, store.ErrNotFound)
	}
	if product.Quantity < sale.Quantity {
		return nil, &store.InsufficientStockError{ProductID: product.ID, Requested: sale.Quantity, Available: product.Quantity}
	}

	if newCustomer != nil {
		created, err := s.insertCustomerLocked(*newCustomer)
		if err != nil {
			return nil, err
		}
		sale.CustomerID = created.ID
	}
	if _, err := s.reserveLocked(sale.ProductID, sale.Quantity); err != nil {
		return nil, err
	}
	s.sales[sale.ID] = sale

	detail := s.detailLocked(sale)
	return &detail, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.SaleDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale %s: %w", id, store.ErrNotFound)
	}
	detail := s.detailLocked(sale)
	return &detail, nil
}

func (s *Store) ListSales(_ context.Context, filter store.SaleFilter) ([]domain.SaleDetail, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if filter.CustomerID != "" && sale.CustomerID != filter.CustomerID {
			continue
		}
		matched = append(matched, sale)
	}
	sortSalesNewestFirst(matched)

	page := paginate(matched, filter.Page)
	details := make([]domain.SaleDetail, 0, len(page))
	for _, sale := range page {
		details = append(details, s.detailLocked(sale))
	}
	return details, len(matched), nil
}

func (s *Store) UpdateSale(_ context.Context, id string, mutate func(*domain.Sale) error) (*domain.SaleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale %s: %w", id, store.ErrNotFound)
	}
	if err := mutate(&sale); err != nil {
		return nil, err
	}
	s.sales[id] = sale

	detail := s.detailLocked(sale)
	return &detail, nil
}

func (s *Store) ListSalesBetween(_ context.Context, from, to time.Time) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Sale, 0)
	for _, sale := range s.sales {
		if sale.SaleDate.Before(from) || !sale.SaleDate.Before(to) {
			continue
		}
		result = append(result, sale)
	}
	sortSalesNewestFirst(result)
	return result, nil
}

func (s *Store) SalesSummary(_ context.Context, filter store.SalesSummaryFilter) (domain.SalesSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.SalesSummary{TotalAmount: decimal.Zero, RemainingAmount: decimal.Zero}
	for _, sale := range s.sales {
		if filter.CustomerID != "" && sale.CustomerID != filter.CustomerID {
			continue
		}
		summary.TotalAmount = summary.TotalAmount.Add(sale.TotalAmount)
		summary.RemainingAmount = summary.RemainingAmount.Add(sale.RemainingAmount)
		summary.Count++
	}
	return summary, nil
}

func (s *Store) CreateAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.accountIDByEmail[account.Email]; taken {
		return nil, fmt.Errorf("account %s: %w", account.Email, store.ErrDuplicate)
	}
	fedKey := ""
	if cred, ok := account.Credential.(domain.FederatedCredential); ok {
		fedKey = federationKey(cred.Provider, cred.ProviderID)
		if _, taken := s.accountIDByFedKey[fedKey]; taken {
			return nil, fmt.Errorf("account %s/%s: %w", cred.Provider, cred.ProviderID, store.ErrDuplicate)
		}
	}
	if account.ID == "" {
		account.ID = xid.New("acc")
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = account
	s.accountIDByEmail[account.Email] = account.ID
	if fedKey != "" {
		s.accountIDByFedKey[fedKey] = account.ID
	}
	return &account, nil
}

func (s *Store) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, store.ErrNotFound)
	}
	return &account, nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.accountIDByEmail[email]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", email, store.ErrNotFound)
	}
	account := s.accounts[id]
	return &account, nil
}

func (s *Store) GetAccountByProvider(_ context.Context, provider, providerID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.accountIDByFedKey[federationKey(provider, providerID)]
	if !ok {
		return nil, fmt.Errorf("account %s/%s: %w", provider, providerID, store.ErrNotFound)
	}
	account := s.accounts[id]
	return &account, nil
}

// UpdateAccount replaces profile fields. Email and credential are fixed at
// creation.
func (s *Store) UpdateAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[account.ID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", account.ID, store.ErrNotFound)
	}
	existing.Name = account.Name
	existing.CompanyName = account.CompanyName
	existing.ProfileImage = account.ProfileImage
	existing.UpdatedAt = time.Now().UTC()
	s.accounts[account.ID] = existing
	return &existing, nil
}

func (s *Store) detailLocked(sale domain.Sale) domain.SaleDetail {
	detail := domain.SaleDetail{Sale: sale}
	if p, ok := s.products[sale.ProductID]; ok {
		detail.Product = domain.ProductRef{ID: p.ID, Name: p.Name, ImageURL: p.ImageURL, SellingPrice: p.SellingPrice}
	}
	if c, ok := s.customers[sale.CustomerID]; ok {
		detail.Customer = domain.CustomerRef{ID: c.ID, Name: c.Name, MobileNumber: c.MobileNumber, Address: c.Address, ImageURL: c.ImageURL}
	}
	return detail
}

func sortSalesNewestFirst(sales []domain.Sale) {
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if c := b.SaleDate.Compare(a.SaleDate); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func paginate[T any](items []T, page store.Page) []T {
	if page.Limit <= 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+page.Limit, len(items))
	return items[start:end]
}

func federationKey(provider, providerID string) string {
	return provider + "\x00" + providerID
}
