// Package report derives dashboard figures and time-bucketed sales series
// from the sale ledger. It never writes to the ledger.
package report

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"warungledger/backend/internal/cache"
	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/store"
)

const (
	DailyBuckets  = 30
	YearlyBuckets = 5

	dayLayout = "2006-01-02"
)

type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListSalesBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error)
	SalesSummary(ctx context.Context, filter store.SalesSummaryFilter) (domain.SalesSummary, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
}

type Engine struct {
	source   Source
	cache    cache.StatsCache
	cacheTTL time.Duration
	location *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

func NewEngine(source Source, cacheStore cache.StatsCache, cacheTTL time.Duration, location *time.Location) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopStatsCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	if location == nil {
		location = time.Local
	}

	return &Engine{
		source:   source,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		location: location,
		now:      time.Now,
		log:      log.Logger.With().Str("component", "report").Logger(),
	}
}

// WithClock replaces the wall clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) Location() *time.Location {
	return e.location
}

func (e *Engine) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	now := e.now().In(e.location)
	key := dashboardKey(now)

	var cached domain.DashboardStats
	if e.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	products, err := e.source.ListProducts(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	stats := domain.DashboardStats{
		TotalInventoryValue: decimal.Zero,
		TodayPurchaseValue:  decimal.Zero,
		TodaySalesAmount:    decimal.Zero,
	}
	for _, p := range products {
		value := p.InventoryValue()
		stats.TotalInventoryValue = stats.TotalInventoryValue.Add(value)
		if within(p.CreatedAt, today, tomorrow) {
			stats.TodayPurchaseValue = stats.TodayPurchaseValue.Add(value)
		}
	}

	todaySales, err := e.source.ListSalesBetween(ctx, today, tomorrow)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	for _, sale := range todaySales {
		stats.TodaySalesAmount = stats.TodaySalesAmount.Add(sale.TotalAmount)
	}

	summary, err := e.source.SalesSummary(ctx, store.SalesSummaryFilter{})
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.TotalOutstanding = summary.RemainingAmount

	e.toCache(ctx, key, stats)
	return stats, nil
}

func (e *Engine) SalesGraph(ctx context.Context) (domain.SalesGraph, error) {
	now := e.now().In(e.location)
	key := salesGraphKey(now)

	var cached domain.SalesGraph
	if e.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	from, to := graphWindow(now)
	sales, err := e.source.ListSalesBetween(ctx, from, to)
	if err != nil {
		return domain.SalesGraph{}, err
	}

	graph := BuildSalesGraph(sales, now, e.location)
	e.toCache(ctx, key, graph)
	return graph, nil
}

func (e *Engine) CustomerStats(ctx context.Context, customerID string) (domain.CustomerStats, error) {
	if _, err := e.source.GetCustomer(ctx, customerID); err != nil {
		return domain.CustomerStats{}, err
	}
	summary, err := e.source.SalesSummary(ctx, store.SalesSummaryFilter{CustomerID: customerID})
	if err != nil {
		return domain.CustomerStats{}, err
	}
	return domain.CustomerStats{
		CustomerID:          customerID,
		TotalPurchaseAmount: summary.TotalAmount,
		TotalOutstanding:    summary.RemainingAmount,
	}, nil
}

// Invalidate drops today's cached snapshots after a ledger or stock write.
func (e *Engine) Invalidate(ctx context.Context) error {
	now := e.now().In(e.location)
	return e.cache.Delete(ctx, dashboardKey(now), salesGraphKey(now))
}

func (e *Engine) fromCache(ctx context.Context, key string, dest any) bool {
	ok, err := e.cache.Get(ctx, key, dest)
	if err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("stats cache read failed")
		return false
	}
	return ok
}

func (e *Engine) toCache(ctx context.Context, key string, value any) {
	if err := e.cache.Set(ctx, key, value, e.cacheTTL); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("stats cache write failed")
	}
}

// BuildSalesGraph buckets sales by calendar day, month and year in loc.
// Daily covers the 30 days ending today, monthly the current year and yearly
// the current year plus the four before it, all oldest first.
func BuildSalesGraph(sales []domain.Sale, now time.Time, loc *time.Location) domain.SalesGraph {
	now = now.In(loc)
	today := startOfDay(now)
	firstYear := now.Year() - (YearlyBuckets - 1)

	graph := domain.SalesGraph{
		Daily:   make([]domain.DailyPoint, DailyBuckets),
		Monthly: make([]domain.MonthlyPoint, 12),
		Yearly:  make([]domain.YearlyPoint, YearlyBuckets),
	}

	dayIndex := make(map[string]int, DailyBuckets)
	for i := range graph.Daily {
		label := today.AddDate(0, 0, i-(DailyBuckets-1)).Format(dayLayout)
		graph.Daily[i] = domain.DailyPoint{Date: label, Amount: decimal.Zero}
		dayIndex[label] = i
	}
	for i := range graph.Monthly {
		graph.Monthly[i] = domain.MonthlyPoint{Month: time.Month(i + 1).String()[:3], Amount: decimal.Zero}
	}
	for i := range graph.Yearly {
		graph.Yearly[i] = domain.YearlyPoint{Year: strconv.Itoa(firstYear + i), Amount: decimal.Zero}
	}

	for _, sale := range sales {
		local := sale.SaleDate.In(loc)
		if i, ok := dayIndex[local.Format(dayLayout)]; ok {
			graph.Daily[i].Amount = graph.Daily[i].Amount.Add(sale.TotalAmount)
		}
		if local.Year() == now.Year() {
			m := int(local.Month()) - 1
			graph.Monthly[m].Amount = graph.Monthly[m].Amount.Add(sale.TotalAmount)
		}
		if y := local.Year() - firstYear; y >= 0 && y < YearlyBuckets {
			graph.Yearly[y].Amount = graph.Yearly[y].Amount.Add(sale.TotalAmount)
		}
	}
	return graph
}

// graphWindow spans every bucket BuildSalesGraph can fill.
func graphWindow(now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	today := startOfDay(now)
	from := time.Date(now.Year()-(YearlyBuckets-1), time.January, 1, 0, 0, 0, 0, loc)
	if dailyStart := today.AddDate(0, 0, -(DailyBuckets - 1)); dailyStart.Before(from) {
		from = dailyStart
	}
	to := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
	return from, to
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func dashboardKey(now time.Time) string {
	return "stats:dashboard:" + now.Format(dayLayout)
}

func salesGraphKey(now time.Time) string {
	return "stats:sales-graph:" + now.Format(dayLayout)
}
