package server

import (
	"time"

	"auto_crm/internal/domain/entity"
	"auto_crm/pkg/lox"
	"auto_crm/pkg/rest"
)

func (s DealServer) newRESTDeal(deal entity.Deal) rest.Deal {
	now := s.now()

	return rest.Deal{
		ID:                deal.ID.String(),
		LeadID:            deal.LeadID,
		CarID:             deal.CarID,
		AgentID:           deal.AgentID,
		Status:            deal.Status.String(),
		StatusLabel:       deal.Status.Label(),
		Probability:       deal.Probability,
		VehiclePrice:      deal.VehiclePrice,
		FinalPrice:        deal.FinalPrice,
		CommissionRate:    deal.CommissionRate,
		ExpectedCloseDate: deal.ExpectedCloseDate,
		ClosedAt:          deal.ClosedAt,
		CreatedAt:         deal.CreatedAt,
		UpdatedAt:         deal.UpdatedAt,
		StatusHistory:     lox.Map(deal.StatusHistory, newRESTStatusChange),
		Finance:           newRESTFinance(deal),
		Timeline:          s.newRESTTimeline(deal, now),
	}
}

func (s DealServer) newRESTDealList(deals []entity.Deal) rest.DealList {
	return rest.DealList{
		Items: lox.Map(deals, s.newRESTDeal),
		Total: len(deals),
	}
}

func newRESTStatusChange(change entity.StatusChange) rest.StatusChange {
	return rest.StatusChange{
		OldStatus: change.OldStatus.String(),
		NewStatus: change.NewStatus.String(),
		Note:      change.Note,
		ChangedAt: change.ChangedAt,
	}
}

func newRESTFinance(deal entity.Deal) rest.DealFinance {
	finance := rest.DealFinance{
		Commission:         deal.Commission(),
		ExpectedCommission: deal.ExpectedCommission(),
	}

	if discount, ok := deal.DiscountAmount(); ok {
		finance.DiscountAmount = &discount
	}

	if percentage, ok := deal.DiscountPercentage(); ok {
		finance.DiscountPercentage = &percentage
	}

	return finance
}

func (s DealServer) newRESTTimeline(deal entity.Deal, now time.Time) rest.DealTimeline {
	timeline := rest.DealTimeline{
		DaysOpen:    deal.DaysOpen(now),
		Overdue:     deal.IsOverdue(now),
		DaysOverdue: deal.DaysOverdue(now),
		Stale:       deal.IsStale(now, s.dealService.StaleThreshold()),
	}

	if duration, ok := deal.Duration(); ok {
		timeline.DurationDays = &duration
	}

	return timeline
}

func newRESTTransitions(status entity.DealStatus) rest.AvailableTransitions {
	return rest.AvailableTransitions{
		Status:   status.String(),
		Terminal: status.IsTerminal(),
		Transitions: lox.Map(status.AvailableTransitions(), func(s entity.DealStatus) string {
			return s.String()
		}),
	}
}
