package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/store"
	"warungledger/backend/internal/xid"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return storageErr("migrate", err)
	}
	return nil
}

const productColumns = `id, name, image_url, quantity, purchase_price, selling_price, created_at, updated_at`

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.ImageURL, &p.Quantity, &p.PurchasePrice, &p.SellingPrice, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC, name
	`)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
		return nil, storageErr("get product", err)
	}
	return &p, nil
}

func (s *Store) ReceiveStock(ctx context.Context, product domain.Product) (*domain.Product, bool, error) {
	if product.ID == "" {
		product.ID = xid.New("prd")
	}

	var p domain.Product
	var inserted bool
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, image_url, quantity, purchase_price, selling_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (name) DO UPDATE SET
			quantity = products.quantity + EXCLUDED.quantity,
			image_url = EXCLUDED.image_url,
			purchase_price = EXCLUDED.purchase_price,
			selling_price = EXCLUDED.selling_price,
			updated_at = now()
		RETURNING `+productColumns+`, (xmax = 0) AS inserted
	`, product.ID, product.Name, product.ImageURL, product.Quantity, product.PurchasePrice, product.SellingPrice).Scan(
		&p.ID, &p.Name, &p.ImageURL, &p.Quantity, &p.PurchasePrice, &p.SellingPrice, &p.CreatedAt, &p.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, false, storageErr("receive stock", err)
	}
	return &p, inserted, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, image_url = $3, quantity = $4, purchase_price = $5, selling_price = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		product.ID, product.Name, product.ImageURL, product.Quantity, product.PurchasePrice, product.SellingPrice,
	))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("product %s: %w", product.ID, store.ErrNotFound)
		case isUniqueViolation(err):
			return nil, fmt.Errorf("product name %q: %w", product.Name, store.ErrDuplicate)
		}
		return nil, storageErr("update product", err)
	}
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("product %s: %w", id, store.ErrInUse)
		}
		return storageErr("delete product", err)
	}
	return expectAffected(res, "product", id)
}

func (s *Store) ReserveStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	p, err := reserve(ctx, s.db, id, quantity)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// reserve decrements stock with a conditional update. Under READ COMMITTED a
// competing writer blocks on the row lock and the WHERE clause is re-checked
// against the committed quantity, so stock never goes negative.
func reserve(ctx context.Context, q queryer, id string, quantity int) (domain.Product, error) {
	if quantity < 1 {
		return domain.Product{}, fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	p, err := scanProduct(q.QueryRowContext(ctx, `
		UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING `+productColumns,
		id, quantity,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, storageErr("reserve stock", err)
	}

	var available int
	err = q.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
		return domain.Product{}, storageErr("reserve stock", err)
	}
	return domain.Product{}, &store.InsufficientStockError{ProductID: id, Requested: quantity, Available: available}
}

const customerColumns = `id, name, mobile_number, address, image_url, created_at, updated_at`

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.MobileNumber, &c.Address, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context, filter store.CustomerFilter) ([]domain.Customer, int, error) {
	search := escapeLike(strings.TrimSpace(filter.Search))
	where := `WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%' OR mobile_number ILIKE '%' || $1 || '%')`

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers `+where, search).Scan(&total); err != nil {
		return nil, 0, storageErr("count customers", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		`+where+`
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, search, limitOrAll(filter.Page), filter.Page.Offset())
	if err != nil {
		return nil, 0, storageErr("list customers", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 32)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, storageErr("scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("list customers", err)
	}
	return customers, total, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", id, store.ErrNotFound)
		}
		return nil, storageErr("get customer", err)
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	c, err := insertCustomer(ctx, s.db, customer)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func insertCustomer(ctx context.Context, q queryer, customer domain.Customer) (domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	c, err := scanCustomer(q.QueryRowContext(ctx, `
		INSERT INTO customers (id, name, mobile_number, address, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+customerColumns,
		customer.ID, customer.Name, customer.MobileNumber, customer.Address, customer.ImageURL,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Customer{}, fmt.Errorf("customer %s: %w", customer.ID, store.ErrDuplicate)
		}
		return domain.Customer{}, storageErr("insert customer", err)
	}
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, `
		UPDATE customers
		SET name = $2, mobile_number = $3, address = $4, image_url = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+customerColumns,
		customer.ID, customer.Name, customer.MobileNumber, customer.Address, customer.ImageURL,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", customer.ID, store.ErrNotFound)
		}
		return nil, storageErr("update customer", err)
	}
	return &c, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("customer %s: %w", id, store.ErrInUse)
		}
		return storageErr("delete customer", err)
	}
	return expectAffected(res, "customer", id)
}

const saleColumns = `s.id, s.product_id, s.customer_id, s.quantity, s.unit_price, s.total_amount,
	s.cash_received, s.remaining_amount, s.payment_status, s.sale_date, s.created_at, s.updated_at`

const saleDetailQuery = `
	SELECT ` + saleColumns + `,
		p.name, p.image_url, p.selling_price,
		c.name, c.mobile_number, c.address, c.image_url
	FROM sales s
	JOIN products p ON p.id = s.product_id
	JOIN customers c ON c.id = s.customer_id
`

func saleFields(sale *domain.Sale) []any {
	return []any{
		&sale.ID, &sale.ProductID, &sale.CustomerID, &sale.Quantity, &sale.UnitPrice, &sale.TotalAmount,
		&sale.CashReceived, &sale.RemainingAmount, &sale.PaymentStatus, &sale.SaleDate, &sale.CreatedAt, &sale.UpdatedAt,
	}
}

func scanSale(row rowScanner) (domain.Sale, error) {
	var sale domain.Sale
	err := row.Scan(saleFields(&sale)...)
	return sale, err
}

func scanSaleDetail(row rowScanner) (domain.SaleDetail, error) {
	var d domain.SaleDetail
	fields := append(saleFields(&d.Sale),
		&d.Product.Name, &d.Product.ImageURL, &d.Product.SellingPrice,
		&d.Customer.Name, &d.Customer.MobileNumber, &d.Customer.Address, &d.Customer.ImageURL,
	)
	if err := row.Scan(fields...); err != nil {
		return domain.SaleDetail{}, err
	}
	d.Product.ID = d.ProductID
	d.Customer.ID = d.CustomerID
	return d, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale, newCustomer *domain.Customer) (*domain.SaleDetail, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, storageErr("begin create sale", err)
	}
	defer func() { _ = tx.Rollback() }()

	if newCustomer != nil {
		created, err := insertCustomer(ctx, tx, *newCustomer)
		if err != nil {
			return nil, err
		}
		sale.CustomerID = created.ID
	} else {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, sale.CustomerID).Scan(&exists)
		if err != nil {
			return nil, storageErr("check customer", err)
		}
		if !exists {
			return nil, fmt.Errorf("customer %s: %w", sale.CustomerID, store.ErrNotFound)
		}
	}

	if _, err := reserve(ctx, tx, sale.ProductID, sale.Quantity); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (
			id, product_id, customer_id, quantity, unit_price, total_amount,
			cash_received, remaining_amount, payment_status, sale_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, sale.ID, sale.ProductID, sale.CustomerID, sale.Quantity, sale.UnitPrice, sale.TotalAmount,
		sale.CashReceived, sale.RemainingAmount, string(sale.PaymentStatus), sale.SaleDate, sale.CreatedAt, sale.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("sale %s: %w", sale.ID, store.ErrDuplicate)
		}
		return nil, storageErr("insert sale", err)
	}

	detail, err := scanSaleDetail(tx.QueryRowContext(ctx, saleDetailQuery+` WHERE s.id = $1`, sale.ID))
	if err != nil {
		return nil, storageErr("read created sale", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit create sale", err)
	}
	return &detail, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.SaleDetail, error) {
	d, err := scanSaleDetail(s.db.QueryRowContext(ctx, saleDetailQuery+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sale %s: %w", id, store.ErrNotFound)
		}
		return nil, storageErr("get sale", err)
	}
	return &d, nil
}

func (s *Store) ListSales(ctx context.Context, filter store.SaleFilter) ([]domain.SaleDetail, int, error) {
	where := ` WHERE ($1::text = '' OR s.customer_id = $1)`

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales s`+where, filter.CustomerID).Scan(&total); err != nil {
		return nil, 0, storageErr("count sales", err)
	}

	rows, err := s.db.QueryContext(ctx, saleDetailQuery+where+`
		ORDER BY s.sale_date DESC, s.created_at DESC, s.id
		LIMIT $2 OFFSET $3
	`, filter.CustomerID, limitOrAll(filter.Page), filter.Page.Offset())
	if err != nil {
		return nil, 0, storageErr("list sales", err)
	}
	defer rows.Close()

	sales := make([]domain.SaleDetail, 0, 32)
	for rows.Next() {
		d, err := scanSaleDetail(rows)
		if err != nil {
			return nil, 0, storageErr("scan sale", err)
		}
		sales = append(sales, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("list sales", err)
	}
	return sales, total, nil
}

func (s *Store) UpdateSale(ctx context.Context, id string, mutate func(*domain.Sale) error) (*domain.SaleDetail, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, storageErr("begin update sale", err)
	}
	defer func() { _ = tx.Rollback() }()

	sale, err := scanSale(tx.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales s WHERE s.id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sale %s: %w", id, store.ErrNotFound)
		}
		return nil, storageErr("lock sale", err)
	}

	if err := mutate(&sale); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sales
		SET cash_received = $2, remaining_amount = $3, payment_status = $4, updated_at = $5
		WHERE id = $1
	`, id, sale.CashReceived, sale.RemainingAmount, string(sale.PaymentStatus), sale.UpdatedAt)
	if err != nil {
		return nil, storageErr("update sale", err)
	}

	detail, err := scanSaleDetail(tx.QueryRowContext(ctx, saleDetailQuery+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, storageErr("read updated sale", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit update sale", err)
	}
	return &detail, nil
}

func (s *Store) ListSalesBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales s
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		ORDER BY s.sale_date DESC
	`, from, to)
	if err != nil {
		return nil, storageErr("list sales between", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 128)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, storageErr("scan sale", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list sales between", err)
	}
	return sales, nil
}

func (s *Store) SalesSummary(ctx context.Context, filter store.SalesSummaryFilter) (domain.SalesSummary, error) {
	summary := domain.SalesSummary{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(remaining_amount), 0), COUNT(*)
		FROM sales
		WHERE ($1::text = '' OR customer_id = $1)
	`, filter.CustomerID).Scan(&summary.TotalAmount, &summary.RemainingAmount, &summary.Count)
	if err != nil {
		return domain.SalesSummary{}, storageErr("sales summary", err)
	}
	return summary, nil
}

const accountColumns = `id, name, email, company_name, profile_image, origin, password_hash, provider, provider_id, created_at, updated_at`

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	var origin string
	var passwordHash, provider, providerID sql.NullString
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.CompanyName, &a.ProfileImage, &origin,
		&passwordHash, &provider, &providerID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, err
	}

	switch domain.AccountOrigin(origin) {
	case domain.OriginLocal:
		a.Credential = domain.LocalCredential{PasswordHash: passwordHash.String}
	case domain.OriginFederated:
		a.Credential = domain.FederatedCredential{Provider: provider.String, ProviderID: providerID.String}
	default:
		return domain.Account{}, fmt.Errorf("account %s has unknown origin %q", a.ID, origin)
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.ID == "" {
		account.ID = xid.New("acc")
	}

	var passwordHash, provider, providerID any
	switch cred := account.Credential.(type) {
	case domain.LocalCredential:
		passwordHash = cred.PasswordHash
	case domain.FederatedCredential:
		provider = cred.Provider
		providerID = cred.ProviderID
	default:
		return nil, fmt.Errorf("account %s: missing credential", account.Email)
	}

	a, err := scanAccount(s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, name, email, company_name, profile_image, origin, password_hash, provider, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+accountColumns,
		account.ID, account.Name, account.Email, account.CompanyName, account.ProfileImage, string(account.Origin()),
		passwordHash, provider, providerID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("account %s: %w", account.Email, store.ErrDuplicate)
		}
		return nil, storageErr("create account", err)
	}
	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getAccount(ctx, "account "+id, `WHERE id = $1`, id)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.getAccount(ctx, "account "+email, `WHERE email = $1`, email)
}

func (s *Store) GetAccountByProvider(ctx context.Context, provider, providerID string) (*domain.Account, error) {
	return s.getAccount(ctx, "account "+provider+"/"+providerID, `WHERE provider = $1 AND provider_id = $2`, provider, providerID)
}

func (s *Store) getAccount(ctx context.Context, label string, where string, args ...any) (*domain.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts `+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", label, store.ErrNotFound)
		}
		return nil, storageErr("get account", err)
	}
	return &a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET name = $2, company_name = $3, profile_image = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		account.ID, account.Name, account.CompanyName, account.ProfileImage,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", account.ID, store.ErrNotFound)
		}
		return nil, storageErr("update account", err)
	}
	return &a, nil
}

func storageErr(op string, err error) error {
	return &store.StorageError{Op: op, Err: err}
}

func expectAffected(res sql.Result, entity, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, store.ErrNotFound)
	}
	return nil
}

// limitOrAll maps a zero limit to NULL, which postgres reads as LIMIT ALL.
func limitOrAll(page store.Page) any {
	if page.Limit <= 0 {
		return nil
	}
	return page.Limit
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

func isUniqueViolation(err error) bool {
	return hasPgCode(err, "23505")
}

func isForeignKeyViolation(err error) bool {
	return hasPgCode(err, "23503")
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

var _ store.Repository = (*Store)(nil)
