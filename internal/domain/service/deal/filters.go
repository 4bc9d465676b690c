package service

import (
	"time"

	"github.com/samber/lo"

	"auto_crm/internal/domain/entity"
)

const defaultPageSize = 100

// ListFilter — набор чистых предикатов для выборок; состояние не трогает.
type ListFilter struct {
	AgentID           *int64
	Status            *entity.DealStatus
	Open              bool
	Closed            bool
	Won               bool
	Lost              bool
	MinProbability    *int
	Overdue           bool
	Stale             bool
	ExpectedCloseFrom *time.Time
	ExpectedCloseTo   *time.Time
	Limit             int
	Offset            int
}

func (f ListFilter) limitOrDefault() int {
	if f.Limit <= 0 {
		return defaultPageSize
	}

	return f.Limit
}

// page вырезает страницу из уже отфильтрованного списка.
func (f ListFilter) page(deals []entity.Deal) []entity.Deal {
	if f.Offset >= len(deals) {
		return nil
	}

	deals = deals[f.Offset:]

	if limit := f.limitOrDefault(); len(deals) > limit {
		deals = deals[:limit]
	}

	return deals
}

// Apply накладывает предикаты последовательно (логическое И).
func (f ListFilter) Apply(deals []entity.Deal, now time.Time, staleThreshold time.Duration) []entity.Deal {
	if f.AgentID != nil {
		deals = FilterByAgent(deals, *f.AgentID)
	}

	if f.Status != nil {
		deals = FilterByStatus(deals, *f.Status)
	}

	if f.Open {
		deals = FilterOpen(deals)
	}

	if f.Closed {
		deals = FilterClosed(deals)
	}

	if f.Won {
		deals = FilterByStatus(deals, entity.StatusClosedWon)
	}

	if f.Lost {
		deals = FilterByStatus(deals, entity.StatusClosedLost)
	}

	if f.MinProbability != nil {
		deals = FilterHighProbability(deals, *f.MinProbability)
	}

	if f.Overdue {
		deals = FilterOverdue(deals, now)
	}

	if f.Stale {
		deals = FilterStale(deals, now, staleThreshold)
	}

	if f.ExpectedCloseFrom != nil || f.ExpectedCloseTo != nil {
		deals = FilterExpectedCloseBetween(deals, f.ExpectedCloseFrom, f.ExpectedCloseTo)
	}

	return deals
}

func FilterOpen(deals []entity.Deal) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return d.IsOpen()
	})
}

func FilterClosed(deals []entity.Deal) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return d.Status.IsTerminal()
	})
}

func FilterByAgent(deals []entity.Deal, agentID int64) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return d.AgentID == agentID
	})
}

func FilterByStatus(deals []entity.Deal, status entity.DealStatus) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return d.Status == status
	})
}

func FilterHighProbability(deals []entity.Deal, minProbability int) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return d.Probability >= minProbability
	})
}

func FilterOverdue(deals []entity.Deal, now time.Time) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return d.IsOverdue(now)
	})
}

func FilterStale(deals []entity.Deal, now time.Time, threshold time.Duration) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return d.IsStale(now, threshold)
	})
}

// FilterExpectedCloseBetween — сделки с ожидаемой датой закрытия в интервале;
// открытые границы допустимы.
func FilterExpectedCloseBetween(deals []entity.Deal, from, to *time.Time) []entity.Deal {
	return lo.Filter(deals, func(d entity.Deal, _ int) bool {
		if d.ExpectedCloseDate == nil {
			return false
		}

		if from != nil && d.ExpectedCloseDate.Before(*from) {
			return false
		}

		if to != nil && d.ExpectedCloseDate.After(*to) {
			return false
		}

		return true
	})
}
