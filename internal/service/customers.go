package service

import (
	"context"
	"strings"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/store"
	"warungledger/backend/internal/xid"
)

func (s *Service) ListCustomers(ctx context.Context, search string, page, limit int) (domain.CustomerListResponse, error) {
	p := normalizePage(page, limit)
	customers, total, err := s.repo.ListCustomers(ctx, store.CustomerFilter{
		Search: strings.TrimSpace(search),
		Page:   p,
	})
	if err != nil {
		return domain.CustomerListResponse{}, err
	}
	return domain.CustomerListResponse{
		Customers:  customers,
		Pagination: domain.NewPagination(p.Page, p.Limit, total),
	}, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerRequest) (domain.Customer, error) {
	normalizeCustomer(&req)
	if err := Validate(req); err != nil {
		return domain.Customer{}, err
	}
	created, err := s.repo.CreateCustomer(ctx, customerFromRequest(xid.New("cus"), req))
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerRequest) (domain.Customer, error) {
	normalizeCustomer(&req)
	if err := Validate(req); err != nil {
		return domain.Customer{}, err
	}
	updated, err := s.repo.UpdateCustomer(ctx, customerFromRequest(strings.TrimSpace(id), req))
	if err != nil {
		return domain.Customer{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.repo.DeleteCustomer(ctx, strings.TrimSpace(id))
}

func normalizeCustomer(req *domain.CustomerRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)
	req.Address = strings.TrimSpace(req.Address)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
}

func customerFromRequest(id string, req domain.CustomerRequest) domain.Customer {
	return domain.Customer{
		ID:           id,
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		ImageURL:     req.ImageURL,
	}
}
