package entity

import (
	"fmt"

	"auto_crm/internal/domain"
	"auto_crm/pkg/errcodes"
)

// DealStatus — этап воронки продаж. Набор закрытый: любое новое значение
// обязано пройти через Probability и Label, иначе код не соберётся.
type DealStatus string

const (
	StatusInquiry          DealStatus = "inquiry"
	StatusQualified        DealStatus = "qualified"
	StatusViewingScheduled DealStatus = "viewing_scheduled"
	StatusViewed           DealStatus = "viewed"
	StatusTestDrive        DealStatus = "test_drive"
	StatusNegotiation      DealStatus = "negotiation"
	StatusProposal         DealStatus = "proposal"
	StatusContract         DealStatus = "contract"
	StatusFinancing        DealStatus = "financing"
	StatusDocumentation    DealStatus = "documentation"
	StatusClosedWon        DealStatus = "closed_won"
	StatusClosedLost       DealStatus = "closed_lost"
)

// statusTransitions — допустимые переходы. Таблица неизменяемая, заполняется
// на инициализации пакета; из каждого нетерминального этапа есть путь в closed_lost.
var statusTransitions = map[DealStatus][]DealStatus{
	StatusInquiry:          {StatusQualified, StatusClosedLost},
	StatusQualified:        {StatusViewingScheduled, StatusClosedLost},
	StatusViewingScheduled: {StatusViewed, StatusQualified, StatusClosedLost},
	StatusViewed:           {StatusTestDrive, StatusNegotiation, StatusClosedLost},
	StatusTestDrive:        {StatusNegotiation, StatusClosedLost},
	StatusNegotiation:      {StatusProposal, StatusTestDrive, StatusClosedLost},
	StatusProposal:         {StatusContract, StatusNegotiation, StatusClosedLost},
	StatusContract:         {StatusFinancing, StatusDocumentation, StatusClosedWon, StatusClosedLost},
	StatusFinancing:        {StatusDocumentation, StatusContract, StatusClosedLost},
	StatusDocumentation:    {StatusClosedWon, StatusClosedLost},
	StatusClosedWon:        {},
	StatusClosedLost:       {},
}

func AllStatuses() []DealStatus {
	return []DealStatus{
		StatusInquiry,
		StatusQualified,
		StatusViewingScheduled,
		StatusViewed,
		StatusTestDrive,
		StatusNegotiation,
		StatusProposal,
		StatusContract,
		StatusFinancing,
		StatusDocumentation,
		StatusClosedWon,
		StatusClosedLost,
	}
}

func ParseDealStatus(raw string) (DealStatus, error) {
	s := DealStatus(raw)
	if _, ok := statusTransitions[s]; !ok {
		return "", domain.NewError(errcodes.InvalidDealStatus, fmt.Sprintf("unknown deal status %q", raw))
	}

	return s, nil
}

func (s DealStatus) String() string {
	return string(s)
}

func (s DealStatus) IsTerminal() bool {
	return s == StatusClosedWon || s == StatusClosedLost
}

// CanTransitionTo — единственный источник истины о допустимости перехода.
func (s DealStatus) CanTransitionTo(target DealStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// AvailableTransitions возвращает копию списка допустимых следующих этапов.
func (s DealStatus) AvailableTransitions() []DealStatus {
	next := statusTransitions[s]

	result := make([]DealStatus, len(next))
	copy(result, next)

	return result
}

// Probability — вероятность закрытия сделки (0–100), детерминированно
// выводится из этапа и нигде не хранится отдельно от него.
func (s DealStatus) Probability() int {
	switch s {
	case StatusInquiry:
		return 10
	case StatusQualified:
		return 20
	case StatusViewingScheduled:
		return 30
	case StatusViewed:
		return 40
	case StatusTestDrive:
		return 50
	case StatusNegotiation:
		return 60
	case StatusProposal:
		return 70
	case StatusContract:
		return 80
	case StatusFinancing:
		return 85
	case StatusDocumentation:
		return 90
	case StatusClosedWon:
		return 100
	case StatusClosedLost:
		return 0
	}

	panic(fmt.Sprintf("probability: unknown deal status %q", string(s)))
}

func (s DealStatus) Label() string {
	switch s {
	case StatusInquiry:
		return "Первичный запрос"
	case StatusQualified:
		return "Квалифицирован"
	case StatusViewingScheduled:
		return "Назначен показ"
	case StatusViewed:
		return "Показ проведён"
	case StatusTestDrive:
		return "Тест-драйв"
	case StatusNegotiation:
		return "Переговоры"
	case StatusProposal:
		return "Предложение"
	case StatusContract:
		return "Договор"
	case StatusFinancing:
		return "Финансирование"
	case StatusDocumentation:
		return "Оформление документов"
	case StatusClosedWon:
		return "Сделка закрыта (успех)"
	case StatusClosedLost:
		return "Сделка закрыта (отказ)"
	}

	panic(fmt.Sprintf("label: unknown deal status %q", string(s)))
}
