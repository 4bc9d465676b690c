package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

const alertDedupTTL = 24 * time.Hour

type AlertKind string

const (
	AlertOverdue AlertKind = "overdue"
	AlertStale   AlertKind = "stale"
)

// DealAlert — сигнал «сделка требует внимания» для нотификаций.
type DealAlert struct {
	DealID      string
	AgentID     int64
	Status      string
	StatusLabel string
	Kind        AlertKind
	Days        int
}

// CollectAttention обходит открытые сделки и возвращает просроченные
// и залежавшиеся. Состояние сделок не меняет. Дедуп через cache.Add:
// claim атомарный, параллельные прогоны не дублируют сигнал.
func (s *DealService) CollectAttention(ctx context.Context) ([]DealAlert, error) {
	deals, err := s.dealRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.ListOpen: %w", err)
	}

	now := s.now()

	var result []DealAlert

	for _, deal := range deals {
		if deal.IsOverdue(now) {
			key := deal.ID.String() + ":" + string(AlertOverdue)
			if s.alerts.Add(key, true, cache.DefaultExpiration) == nil {
				result = append(result, DealAlert{
					DealID:      deal.ID.String(),
					AgentID:     deal.AgentID,
					Status:      deal.Status.String(),
					StatusLabel: deal.Status.Label(),
					Kind:        AlertOverdue,
					Days:        deal.DaysOverdue(now),
				})
			}
		}

		if deal.IsStale(now, s.staleThreshold) {
			key := deal.ID.String() + ":" + string(AlertStale)
			if s.alerts.Add(key, true, cache.DefaultExpiration) == nil {
				result = append(result, DealAlert{
					DealID:      deal.ID.String(),
					AgentID:     deal.AgentID,
					Status:      deal.Status.String(),
					StatusLabel: deal.Status.Label(),
					Kind:        AlertStale,
					Days:        deal.DaysOpen(now),
				})
			}
		}
	}

	if len(result) > 0 {
		logger(ctx).Info("deals need attention", "count", len(result))
	}

	return result, nil
}
