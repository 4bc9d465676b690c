package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"auto_crm/internal/domain/entity"
)

//nolint:gochecknoglobals
var statusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deal_status_transitions_total",
		Help: "Successful deal status transitions by edge.",
	},
	[]string{"from", "to"},
)

func observeTransition(from, to entity.DealStatus) {
	statusTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}
