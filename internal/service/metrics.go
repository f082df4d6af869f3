package service

import (
	"errors"

	"github.com/limaJavier/seating/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// assignmentsTotal counts arrangement attempts by mode and result
	assignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seating_assignments_total",
		Help: "Total seat assignments by mode and result",
	}, []string{"mode", "result"})

	assignmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seating_assignment_duration_seconds",
		Help:    "Seat assignment duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"mode"})

	// backtracksPerAssignment tracks how many placements strict searches had to undo
	backtracksPerAssignment = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seating_backtracks",
		Help:    "Number of undone placements per strict assignment",
		Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000, 1000000},
	})

	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seating_store_operations_total",
		Help: "Total arrangement store operations by operation and result",
	}, []string{"operation", "result"})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrSearchBudgetExceeded):
		return "budget_exceeded"
	case errors.Is(err, model.ErrNoValidArrangement):
		return "no_arrangement"
	case errors.Is(err, model.ErrCapacityExceeded):
		return "capacity_exceeded"
	default:
		return "error"
	}
}
