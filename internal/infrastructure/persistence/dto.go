package persistence

import (
	"encoding/json"
	"time"

	"auto_crm/internal/domain/entity"
	"auto_crm/internal/domain/value"
)

// dealSchema — внутренняя структура для маппинга строки БД.
type dealSchema struct {
	ID                string     `db:"id"`
	LeadID            int64      `db:"lead_id"`
	CarID             int64      `db:"car_id"`
	AgentID           int64      `db:"agent_id"`
	Status            string     `db:"status"`
	Probability       int        `db:"probability"`
	VehiclePrice      *float64   `db:"vehicle_price"`
	FinalPrice        *float64   `db:"final_price"`
	CommissionRate    float64    `db:"commission_rate"`
	ExpectedCloseDate *time.Time `db:"expected_close_date"`
	ClosedAt          *time.Time `db:"closed_at"`
	StatusHistory     []byte     `db:"status_history"`
	Version           int        `db:"version"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func fromDeal(d *entity.Deal) (*dealSchema, error) {
	history, err := json.Marshal(d.StatusHistory)
	if err != nil {
		return nil, err
	}

	return &dealSchema{
		ID:                d.ID.String(),
		LeadID:            d.LeadID,
		CarID:             d.CarID,
		AgentID:           d.AgentID,
		Status:            d.Status.String(),
		Probability:       d.Probability,
		VehiclePrice:      d.VehiclePrice,
		FinalPrice:        d.FinalPrice,
		CommissionRate:    d.CommissionRate,
		ExpectedCloseDate: d.ExpectedCloseDate,
		ClosedAt:          d.ClosedAt,
		StatusHistory:     history,
		Version:           d.Version,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

func (s *dealSchema) toDomain() (*entity.Deal, error) {
	status, err := entity.ParseDealStatus(s.Status)
	if err != nil {
		return nil, err
	}

	var history []entity.StatusChange
	if len(s.StatusHistory) > 0 {
		if err := json.Unmarshal(s.StatusHistory, &history); err != nil {
			return nil, err
		}
	}

	return &entity.Deal{
		ID:                value.DealID(s.ID),
		LeadID:            s.LeadID,
		CarID:             s.CarID,
		AgentID:           s.AgentID,
		Status:            status,
		Probability:       s.Probability,
		VehiclePrice:      s.VehiclePrice,
		FinalPrice:        s.FinalPrice,
		CommissionRate:    s.CommissionRate,
		ExpectedCloseDate: s.ExpectedCloseDate,
		ClosedAt:          s.ClosedAt,
		StatusHistory:     history,
		Version:           s.Version,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}, nil
}
