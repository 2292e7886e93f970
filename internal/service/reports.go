package service

import (
	"bytes"
	"context"
	"strings"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/invoice"
)

func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	return s.reports.DashboardStats(ctx)
}

func (s *Service) SalesGraph(ctx context.Context) (domain.SalesGraph, error) {
	return s.reports.SalesGraph(ctx)
}

func (s *Service) CustomerStats(ctx context.Context, customerID string) (domain.CustomerStats, error) {
	return s.reports.CustomerStats(ctx, strings.TrimSpace(customerID))
}

// Invoice renders the sale's PDF and returns it with its download file name.
func (s *Service) Invoice(ctx context.Context, saleID string) ([]byte, string, error) {
	detail, err := s.repo.GetSale(ctx, strings.TrimSpace(saleID))
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	err = invoice.Render(&buf, invoice.Document{
		Issuer:   s.invoiceIssuer(ctx),
		Sale:     *detail,
		IssuedAt: s.now(),
		Location: s.reports.Location(),
	})
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), invoice.FileName(detail.ID), nil
}

func (s *Service) invoiceIssuer(ctx context.Context) string {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return s.issuer
	}
	account, err := s.repo.GetAccount(ctx, actor.AccountID)
	if err != nil {
		s.log.Debug().Err(err).Str("account_id", actor.AccountID).Msg("invoice issuer falls back to default")
		return s.issuer
	}
	if name := strings.TrimSpace(account.CompanyName); name != "" {
		return name
	}
	return s.issuer
}
