package entity_test

import (
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"auto_crm/internal/domain"
	"auto_crm/internal/domain/entity"
	"auto_crm/pkg/errcodes"
)

func requireCode(t *testing.T, err error, want failure.ErrorCode) {
	t.Helper()

	code, ok := domain.GetCode(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	require.Equal(t, want, code)
}

func TestParseDealStatus(t *testing.T) {
	rq := require.New(t)

	for _, status := range entity.AllStatuses() {
		parsed, err := entity.ParseDealStatus(status.String())
		rq.NoError(err)
		rq.Equal(status, parsed)
	}

	_, err := entity.ParseDealStatus("haggling")
	rq.Error(err)
	requireCode(t, err, errcodes.InvalidDealStatus)

	_, err = entity.ParseDealStatus("")
	rq.Error(err)
	requireCode(t, err, errcodes.InvalidDealStatus)
}

func TestDealStatusProbability(t *testing.T) {
	rq := require.New(t)

	expected := map[entity.DealStatus]int{
		entity.StatusInquiry:          10,
		entity.StatusQualified:        20,
		entity.StatusViewingScheduled: 30,
		entity.StatusViewed:           40,
		entity.StatusTestDrive:        50,
		entity.StatusNegotiation:      60,
		entity.StatusProposal:         70,
		entity.StatusContract:         80,
		entity.StatusFinancing:        85,
		entity.StatusDocumentation:    90,
		entity.StatusClosedWon:        100,
		entity.StatusClosedLost:       0,
	}

	rq.Len(entity.AllStatuses(), len(expected))

	for status, probability := range expected {
		rq.Equal(probability, status.Probability(), "status %s", status)
	}
}

func TestDealStatusTerminal(t *testing.T) {
	rq := require.New(t)

	for _, status := range entity.AllStatuses() {
		isTerminal := status == entity.StatusClosedWon || status == entity.StatusClosedLost
		rq.Equal(isTerminal, status.IsTerminal(), "status %s", status)

		if isTerminal {
			rq.Empty(status.AvailableTransitions(), "terminal status %s must have no exits", status)
		}
	}
}

func TestDealStatusTransitions(t *testing.T) {
	rq := require.New(t)

	// Из любого нетерминального этапа клиент может отвалиться.
	for _, status := range entity.AllStatuses() {
		if status.IsTerminal() {
			continue
		}

		rq.True(status.CanTransitionTo(entity.StatusClosedLost),
			"status %s must allow closed_lost", status)
	}

	tests := []struct {
		name    string
		from    entity.DealStatus
		to      entity.DealStatus
		allowed bool
	}{
		{"inquiry to qualified", entity.StatusInquiry, entity.StatusQualified, true},
		{"inquiry skips to negotiation", entity.StatusInquiry, entity.StatusNegotiation, false},
		{"qualified to viewing", entity.StatusQualified, entity.StatusViewingScheduled, true},
		{"qualified skips viewing", entity.StatusQualified, entity.StatusViewed, false},
		{"viewing back to qualified", entity.StatusViewingScheduled, entity.StatusQualified, true},
		{"viewed skips test drive", entity.StatusViewed, entity.StatusNegotiation, true},
		{"viewed to test drive", entity.StatusViewed, entity.StatusTestDrive, true},
		{"negotiation back to test drive", entity.StatusNegotiation, entity.StatusTestDrive, true},
		{"proposal back to negotiation", entity.StatusProposal, entity.StatusNegotiation, true},
		{"contract straight to won", entity.StatusContract, entity.StatusClosedWon, true},
		{"contract to financing", entity.StatusContract, entity.StatusFinancing, true},
		{"financing back to contract", entity.StatusFinancing, entity.StatusContract, true},
		{"financing cannot win directly", entity.StatusFinancing, entity.StatusClosedWon, false},
		{"documentation to won", entity.StatusDocumentation, entity.StatusClosedWon, true},
		{"documentation cannot regress", entity.StatusDocumentation, entity.StatusContract, false},
		{"won is final", entity.StatusClosedWon, entity.StatusInquiry, false},
		{"lost is final", entity.StatusClosedLost, entity.StatusInquiry, false},
		{"no self transition", entity.StatusInquiry, entity.StatusInquiry, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAvailableTransitionsCopy(t *testing.T) {
	rq := require.New(t)

	transitions := entity.StatusInquiry.AvailableTransitions()
	rq.NotEmpty(transitions)

	transitions[0] = entity.StatusClosedWon

	rq.False(entity.StatusInquiry.CanTransitionTo(entity.StatusClosedWon),
		"mutating the returned slice must not affect the graph")
}

func TestDealStatusLabel(t *testing.T) {
	rq := require.New(t)

	for _, status := range entity.AllStatuses() {
		rq.NotEmpty(status.Label(), "status %s", status)
	}
}
