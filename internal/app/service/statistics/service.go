package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StatisticType string

const (
	StatisticTypeDailyTransactionCount StatisticType = "daily_transaction_count"
	StatisticTypeDailyRevenue          StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue          StatisticType = "total_revenue"
)

// Summary is the one-shot dashboard snapshot served to operators.
type Summary struct {
	TotalTransactions   int64            `json:"total_transactions"`
	RevenueByCurrency   map[string]int64 `json:"revenue_by_currency"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
	ProjectsByStatus    map[string]int64 `json:"projects_by_status"`
}

type DailyRequest struct {
	Type StatisticType `json:"type"`
	// Days bounds the series length, most recent day last.
	Days int `json:"days"`
}

type DailyDataItem struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	out := &Summary{
		RevenueByCurrency: map[string]int64{},
		ProjectsByStatus:  map[string]int64{},
	}

	if err := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).Count(&out.TotalTransactions).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	type currencySum struct {
		Currency string
		Total    int64
	}
	var sums []currencySum
	err := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Group("currency").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	for _, row := range sums {
		out.RevenueByCurrency[row.Currency] = row.Total
	}

	err = s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ?", types.SubscriptionStatusActive).
		Count(&out.ActiveSubscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	type statusCount struct {
		Status string
		Total  int64
	}
	var statuses []statusCount
	err = s.db.WithContext(ctx).Model(&models.Project{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	for _, row := range statuses {
		out.ProjectsByStatus[row.Status] = row.Total
	}

	return out, nil
}

// GetDaily returns a per-day series over the payment ledger.
func (s *Service) GetDaily(ctx context.Context, req *DailyRequest) ([]*DailyDataItem, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	days := req.Days
	if days <= 0 || days > 366 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	var sel string
	switch req.Type {
	case StatisticTypeDailyTransactionCount:
		sel = "to_char(created_at, 'YYYY-MM-DD') AS date, COUNT(*) AS value"
	case StatisticTypeDailyRevenue:
		sel = "to_char(created_at, 'YYYY-MM-DD') AS date, COALESCE(SUM(amount), 0) AS value"
	default:
		return nil, fmt.Errorf("unsupported statistic type: %s", req.Type)
	}

	var items []*DailyDataItem
	err := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Select(sel).
		Where("created_at >= ?", since).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("date").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build daily series: %w", err)
	}
	return items, nil
}
