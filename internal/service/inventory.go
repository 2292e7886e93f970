package service

import (
	"context"
	"strings"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/xid"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

// ReceiveStock adds stock to the product with the same name, or creates it.
func (s *Service) ReceiveStock(ctx context.Context, req domain.StockReceiveRequest) (domain.StockReceiveResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := Validate(req); err != nil {
		return domain.StockReceiveResponse{}, err
	}

	product, created, err := s.repo.ReceiveStock(ctx, domain.Product{
		ID:            xid.New("prd"),
		Name:          req.Name,
		ImageURL:      req.ImageURL,
		Quantity:      req.Quantity,
		PurchasePrice: *req.PurchasePrice,
		SellingPrice:  *req.SellingPrice,
	})
	if err != nil {
		return domain.StockReceiveResponse{}, err
	}

	s.log.Info().
		Str("product_id", product.ID).
		Int("delta", req.Quantity).
		Int("quantity", product.Quantity).
		Bool("created", created).
		Msg("stock received")
	s.invalidateReports(ctx, "receive_stock")
	return domain.StockReceiveResponse{Product: *product, Created: created}, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.ImageURL != nil {
		trimmed := strings.TrimSpace(*req.ImageURL)
		req.ImageURL = &trimmed
	}
	if err := Validate(req); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProduct(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}

	next := *existing
	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.ImageURL != nil {
		next.ImageURL = *req.ImageURL
	}
	if req.Quantity != nil {
		next.Quantity = *req.Quantity
	}
	if req.PurchasePrice != nil {
		next.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		next.SellingPrice = *req.SellingPrice
	}

	updated, err := s.repo.UpdateProduct(ctx, next)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidateReports(ctx, "update_product")
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.invalidateReports(ctx, "delete_product")
	return nil
}

// ReserveStock takes quantity units out of stock without recording a sale.
func (s *Service) ReserveStock(ctx context.Context, id string, req domain.ReserveRequest) (domain.Product, error) {
	if err := Validate(req); err != nil {
		return domain.Product{}, err
	}
	product, err := s.repo.ReserveStock(ctx, strings.TrimSpace(id), req.Quantity)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidateReports(ctx, "reserve_stock")
	return *product, nil
}
