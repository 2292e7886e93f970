package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/ledger"
	"warungledger/backend/internal/store"
	"warungledger/backend/internal/xid"
)

// CreateSale records a credit sale. An inline customer is only used when no
// customer_id is given, and is inserted in the same unit as the stock
// decrement.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleDetail, error) {
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if req.CustomerID != "" {
		req.Customer = nil
	}
	if req.Customer != nil {
		normalizeCustomer(req.Customer)
	}
	if err := Validate(req); err != nil {
		return domain.SaleDetail{}, err
	}

	customerID := req.CustomerID
	var newCustomer *domain.Customer
	if customerID == "" {
		c := customerFromRequest(xid.New("cus"), *req.Customer)
		newCustomer = &c
		customerID = c.ID
	}

	terms := ledger.Terms{
		ProductID:    req.ProductID,
		CustomerID:   customerID,
		Quantity:     req.Quantity,
		UnitPrice:    *req.UnitPrice,
		CashReceived: decimal.Zero,
	}
	if req.CashReceived != nil {
		terms.CashReceived = *req.CashReceived
	}
	if req.SaleDate != nil {
		terms.SaleDate = req.SaleDate.UTC()
	}

	sale, err := ledger.Open(xid.New("sal"), terms, s.now())
	if err != nil {
		return domain.SaleDetail{}, err
	}

	detail, err := s.repo.CreateSale(ctx, sale, newCustomer)
	if err != nil {
		return domain.SaleDetail{}, err
	}

	s.log.Info().
		Str("sale_id", detail.ID).
		Str("product_id", detail.ProductID).
		Int("quantity", detail.Quantity).
		Str("status", string(detail.PaymentStatus)).
		Msg("sale recorded")
	s.invalidateReports(ctx, "create_sale")
	return *detail, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.SaleDetail, error) {
	detail, err := s.repo.GetSale(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.SaleDetail{}, err
	}
	return *detail, nil
}

func (s *Service) ListSales(ctx context.Context, customerID string, page, limit int) (domain.SaleListResponse, error) {
	p := normalizePage(page, limit)
	sales, total, err := s.repo.ListSales(ctx, store.SaleFilter{
		CustomerID: strings.TrimSpace(customerID),
		Page:       p,
	})
	if err != nil {
		return domain.SaleListResponse{}, err
	}
	return domain.SaleListResponse{
		Sales:      sales,
		Pagination: domain.NewPagination(p.Page, p.Limit, total),
	}, nil
}

// ApplyPayment settles part or all of a sale's balance. The read-modify-write
// runs under the repository's per-sale lock.
func (s *Service) ApplyPayment(ctx context.Context, id string, req domain.PaymentRequest) (domain.SaleDetail, error) {
	if err := Validate(req); err != nil {
		return domain.SaleDetail{}, err
	}
	amount := *req.AdditionalPayment

	detail, err := s.repo.UpdateSale(ctx, strings.TrimSpace(id), func(sale *domain.Sale) error {
		return ledger.ApplyPayment(sale, amount, s.policy, s.now())
	})
	if err != nil {
		return domain.SaleDetail{}, err
	}

	s.log.Info().
		Str("sale_id", detail.ID).
		Str("amount", amount.String()).
		Str("remaining", detail.RemainingAmount.String()).
		Str("status", string(detail.PaymentStatus)).
		Msg("payment applied")
	s.invalidateReports(ctx, "apply_payment")
	return *detail, nil
}
