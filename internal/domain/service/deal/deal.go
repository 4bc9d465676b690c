package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"auto_crm/internal/domain/entity"
	"auto_crm/internal/domain/value"
)

const defaultStaleThreshold = 30 * 24 * time.Hour

type DealRepository interface {
	Create(ctx context.Context, deal *entity.Deal) error
	GetByID(ctx context.Context, id value.DealID) (*entity.Deal, error)
	// Update пишет сделку с проверкой версии; при проигрыше гонки
	// возвращает ошибку с кодом errcodes.StorageConflict
	Update(ctx context.Context, deal *entity.Deal) error
	// List сужает выборку по агенту и статусу ещё в запросе;
	// остальные предикаты и пагинация накладываются поверх
	List(ctx context.Context, agentID *int64, status *entity.DealStatus) ([]entity.Deal, error)
	ListOpen(ctx context.Context) ([]entity.Deal, error)
}

type DealService struct {
	dealRepo       DealRepository
	staleThreshold time.Duration
	now            func() time.Time
	alerts         *cache.Cache
}

func NewDealService(dealRepo DealRepository) *DealService {
	return &DealService{
		dealRepo:       dealRepo,
		staleThreshold: defaultStaleThreshold,
		now:            time.Now,
		alerts:         cache.New(alertDedupTTL, time.Hour),
	}
}

func (s *DealService) WithStaleThreshold(threshold time.Duration) *DealService {
	if threshold > 0 {
		s.staleThreshold = threshold
	}

	return s
}

func (s *DealService) WithClock(now func() time.Time) *DealService {
	s.now = now
	return s
}

func (s *DealService) StaleThreshold() time.Duration {
	return s.staleThreshold
}

type CreateDealInput struct {
	LeadID            int64
	CarID             int64
	AgentID           int64
	VehiclePrice      *float64
	ExpectedCloseDate *time.Time
}

// CreateDeal заводит сделку на этапе inquiry по сконвертированному лиду.
func (s *DealService) CreateDeal(ctx context.Context, input CreateDealInput) (*entity.Deal, error) {
	deal, err := entity.NewDeal(input.LeadID, input.CarID, input.AgentID, input.VehiclePrice, s.now())
	if err != nil {
		return nil, fmt.Errorf("entity.NewDeal: %w", err)
	}

	deal.ExpectedCloseDate = input.ExpectedCloseDate

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("dealRepo.Create: %w", err)
	}

	logger(ctx).Info("deal created",
		"deal_id", deal.ID.String(),
		"lead_id", deal.LeadID,
		"agent_id", deal.AgentID,
	)

	return deal, nil
}

// ChangeStatus — единственный мутатор статуса. Конфликт версий отдаётся
// наверх как есть, повторов внутри нет: решает вызывающая сторона.
func (s *DealService) ChangeStatus(ctx context.Context, id value.DealID, target entity.DealStatus, note string) (*entity.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.GetByID: %w", err)
	}

	oldStatus := deal.Status

	if err := deal.ChangeStatus(target, note, s.now()); err != nil {
		return nil, err
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("dealRepo.Update: %w", err)
	}

	observeTransition(oldStatus, target)

	logger(ctx).Info("deal status changed",
		"deal_id", deal.ID.String(),
		"from", oldStatus.String(),
		"to", target.String(),
		"probability", deal.Probability,
	)

	return deal, nil
}

// SetCommissionRate ужимает ставку в [0, 1] и сохраняет.
func (s *DealService) SetCommissionRate(ctx context.Context, id value.DealID, rate float64) (*entity.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.GetByID: %w", err)
	}

	deal.SetCommissionRate(rate, s.now())

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("dealRepo.Update: %w", err)
	}

	logger(ctx).Info("commission rate set",
		"deal_id", deal.ID.String(),
		"rate", deal.CommissionRate,
	)

	return deal, nil
}

func (s *DealService) GetDeal(ctx context.Context, id value.DealID) (*entity.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.GetByID: %w", err)
	}

	return deal, nil
}

// ListDeals возвращает страницу сделок. Сначала фильтры, потом страница:
// иначе overdue/stale за пределами первой страницы терялись бы.
func (s *DealService) ListDeals(ctx context.Context, filter ListFilter) ([]entity.Deal, error) {
	deals, err := s.dealRepo.List(ctx, filter.AgentID, filter.Status)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.List: %w", err)
	}

	deals = filter.Apply(deals, s.now(), s.staleThreshold)

	return filter.page(deals), nil
}
