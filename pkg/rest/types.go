// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import "time"

type Deal struct {
	ID                string         `json:"id"`
	LeadID            int64          `json:"leadId"`
	CarID             int64          `json:"carId"`
	AgentID           int64          `json:"agentId"`
	Status            string         `json:"status"`
	StatusLabel       string         `json:"statusLabel"`
	Probability       int            `json:"probability"`
	VehiclePrice      *float64       `json:"vehiclePrice,omitempty"`
	FinalPrice        *float64       `json:"finalPrice,omitempty"`
	CommissionRate    float64        `json:"commissionRate"`
	ExpectedCloseDate *time.Time     `json:"expectedCloseDate,omitempty"`
	ClosedAt          *time.Time     `json:"closedAt,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	StatusHistory     []StatusChange `json:"statusHistory"`
	Finance           DealFinance    `json:"finance"`
	Timeline          DealTimeline   `json:"timeline"`
}

type StatusChange struct {
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// DealFinance Производные финансовые показатели, вычисляются на чтении
type DealFinance struct {
	Commission         float64  `json:"commission"`
	ExpectedCommission float64  `json:"expectedCommission"`
	DiscountAmount     *float64 `json:"discountAmount,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
}

// DealTimeline Производные показатели сроков, вычисляются на чтении
type DealTimeline struct {
	DaysOpen     int  `json:"daysOpen"`
	DurationDays *int `json:"durationDays,omitempty"`
	Overdue      bool `json:"overdue"`
	DaysOverdue  int  `json:"daysOverdue"`
	Stale        bool `json:"stale"`
}

type CreateDealRequest struct {
	LeadID            int64      `json:"leadId" validate:"required"`
	CarID             int64      `json:"carId" validate:"required"`
	AgentID           int64      `json:"agentId" validate:"required"`
	VehiclePrice      *float64   `json:"vehiclePrice,omitempty" validate:"omitempty,gte=0"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty" validate:"max=1000"`
}

type SetCommissionRateRequest struct {
	Rate *float64 `json:"rate" validate:"required"`
}

type AvailableTransitions struct {
	Status      string   `json:"status"`
	Terminal    bool     `json:"terminal"`
	Transitions []string `json:"transitions"`
}

type DealList struct {
	Items []Deal `json:"items"`
	Total int    `json:"total"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
