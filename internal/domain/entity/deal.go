package entity

import (
	"fmt"
	"time"

	"auto_crm/internal/domain"
	"auto_crm/internal/domain/value"
	"auto_crm/pkg/errcodes"
)

const (
	DefaultCommissionRate = 0.01
	hoursPerDay           = 24
)

// StatusChange — одна запись журнала переходов. Журнал только дописывается.
type StatusChange struct {
	OldStatus DealStatus `json:"old_status"`
	NewStatus DealStatus `json:"new_status"`
	Note      string     `json:"note,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}

// Deal — сделка по продаже автомобиля. Lead, Car и агент живут в соседних
// модулях, здесь от них только идентификаторы.
type Deal struct {
	ID      value.DealID
	LeadID  int64
	CarID   int64
	AgentID int64

	Status      DealStatus
	Probability int // всегда равно Status.Probability(), кэш для выборок

	// Цены могут отсутствовать: прайс не всегда известен при создании,
	// финальная цена появляется на закрытии
	VehiclePrice   *float64
	FinalPrice     *float64
	CommissionRate float64

	ExpectedCloseDate *time.Time
	ClosedAt          *time.Time

	StatusHistory []StatusChange

	// Version — счётчик для оптимистичной блокировки на записи
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDeal создаёт сделку на этапе inquiry из сконвертированного лида.
func NewDeal(leadID, carID, agentID int64, vehiclePrice *float64, now time.Time) (*Deal, error) {
	if vehiclePrice != nil && *vehiclePrice < 0 {
		return nil, domain.NewError(errcodes.InvalidVehiclePrice,
			fmt.Sprintf("vehicle price must be non-negative, got %.2f", *vehiclePrice))
	}

	return &Deal{
		ID:             value.NewDealID(),
		LeadID:         leadID,
		CarID:          carID,
		AgentID:        agentID,
		Status:         StatusInquiry,
		Probability:    StatusInquiry.Probability(),
		VehiclePrice:   vehiclePrice,
		CommissionRate: DefaultCommissionRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ChangeStatus переводит сделку на следующий этап. При недопустимом переходе
// сделка не меняется вовсе. При успехе атомарно (в рамках агрегата):
// статус, вероятность, отметки закрытия и запись в журнал.
func (d *Deal) ChangeStatus(target DealStatus, note string, now time.Time) error {
	if !d.Status.CanTransitionTo(target) {
		return domain.NewError(errcodes.InvalidStatusTransition,
			fmt.Sprintf("transition %s -> %s is not allowed", d.Status, target))
	}

	d.StatusHistory = append(d.StatusHistory, StatusChange{
		OldStatus: d.Status,
		NewStatus: target,
		Note:      note,
		ChangedAt: now,
	})

	d.Status = target
	d.Probability = target.Probability()

	if target.IsTerminal() {
		closedAt := now
		d.ClosedAt = &closedAt

		if target == StatusClosedWon && d.FinalPrice == nil && d.VehiclePrice != nil {
			finalPrice := *d.VehiclePrice
			d.FinalPrice = &finalPrice
		}
	}

	d.UpdatedAt = now

	return nil
}

// SetCommissionRate сохраняет ставку, ужимая её в [0, 1].
// Политика намеренно мягкая: значение вне диапазона не ошибка.
func (d *Deal) SetCommissionRate(rate float64, now time.Time) {
	if rate < 0 {
		rate = 0
	}

	if rate > 1 {
		rate = 1
	}

	d.CommissionRate = rate
	d.UpdatedAt = now
}

func (d *Deal) IsOpen() bool {
	return !d.Status.IsTerminal()
}

// salePrice — цена продажи: финальная, а до её появления — прайсовая.
// Отсутствие обеих трактуется как ноль, а не как ошибка.
func (d *Deal) salePrice() float64 {
	if d.FinalPrice != nil {
		return *d.FinalPrice
	}

	if d.VehiclePrice != nil {
		return *d.VehiclePrice
	}

	return 0
}

// Commission — фактическая комиссия агента; начисляется только по выигранной сделке.
func (d *Deal) Commission() float64 {
	if d.Status != StatusClosedWon {
		return 0
	}

	return d.salePrice() * d.CommissionRate
}

// ExpectedCommission — прогноз комиссии, взвешенный на вероятность этапа.
// Считается на любом этапе; при probability=100 совпадает с Commission.
func (d *Deal) ExpectedCommission() float64 {
	return d.salePrice() * d.CommissionRate * float64(d.Probability) / 100
}

// DiscountAmount — скидка от прайса; определена, когда известны обе цены.
func (d *Deal) DiscountAmount() (float64, bool) {
	if d.VehiclePrice == nil || d.FinalPrice == nil {
		return 0, false
	}

	discount := *d.VehiclePrice - *d.FinalPrice
	if discount < 0 {
		discount = 0
	}

	return discount, true
}

func (d *Deal) DiscountPercentage() (float64, bool) {
	discount, ok := d.DiscountAmount()
	if !ok || *d.VehiclePrice <= 0 {
		return 0, false
	}

	return discount / *d.VehiclePrice * 100, true
}

// Duration — срок жизни закрытой сделки в днях.
func (d *Deal) Duration() (int, bool) {
	if d.ClosedAt == nil {
		return 0, false
	}

	return daysBetween(d.CreatedAt, *d.ClosedAt), true
}

// DaysOpen — сколько дней сделка открыта (для закрытых — до момента закрытия).
func (d *Deal) DaysOpen(now time.Time) int {
	if d.ClosedAt != nil {
		return daysBetween(d.CreatedAt, *d.ClosedAt)
	}

	return daysBetween(d.CreatedAt, now)
}

// IsOverdue — открытая сделка с прошедшей ожидаемой датой закрытия.
func (d *Deal) IsOverdue(now time.Time) bool {
	if d.ExpectedCloseDate == nil || d.Status.IsTerminal() {
		return false
	}

	return d.ExpectedCloseDate.Before(now)
}

func (d *Deal) DaysOverdue(now time.Time) int {
	if !d.IsOverdue(now) {
		return 0
	}

	return daysBetween(*d.ExpectedCloseDate, now)
}

// IsStale — открытая сделка без движения дольше порога.
func (d *Deal) IsStale(now time.Time, threshold time.Duration) bool {
	if d.Status.IsTerminal() {
		return false
	}

	return d.UpdatedAt.Before(now.Add(-threshold))
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / hoursPerDay)
}
