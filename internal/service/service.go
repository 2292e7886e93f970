package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/ledger"
	"warungledger/backend/internal/logger"
	"warungledger/backend/internal/report"
	"warungledger/backend/internal/store"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo    store.Repository
	reports *report.Engine
	policy  ledger.Policy
	issuer  string
	now     func() time.Time
	log     zerolog.Logger
}

func New(repo store.Repository, reports *report.Engine, policy ledger.Policy, invoiceIssuer string) *Service {
	if policy == "" {
		policy = ledger.PolicyReject
	}
	if invoiceIssuer == "" {
		invoiceIssuer = "Warung Ledger"
	}
	if reports == nil {
		reports = report.NewEngine(repo, nil, 0, nil)
	}

	return &Service{
		repo:    repo,
		reports: reports,
		policy:  policy,
		issuer:  invoiceIssuer,
		now:     func() time.Time { return time.Now().UTC() },
		log:     logger.WithComponent("service"),
	}
}

// invalidateReports is best-effort: a stale snapshot expires with its TTL.
func (s *Service) invalidateReports(ctx context.Context, cause string) {
	if err := s.reports.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Str("cause", cause).Msg("failed to invalidate report cache")
	}
}

func normalizePage(page, limit int) store.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return store.Page{Page: page, Limit: limit}
}
