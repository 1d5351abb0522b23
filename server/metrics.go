package main

import (
	"strconv"

	"github.com/meikuraledutech/nodegraph/editor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal counts editor operations.
	// Labels: op (operation name), changed (whether a new state was published)
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodegraph",
		Subsystem: "editor",
		Name:      "operations_total",
		Help:      "Total editor operations by name and outcome",
	}, []string{"op", "changed"})

	// commitsTotal counts states handed to the host for persistence.
	commitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nodegraph",
		Subsystem: "editor",
		Name:      "commits_total",
		Help:      "Total committed graph states",
	})

	// pasteRejections counts pastes refused by validation.
	// Labels: reason
	pasteRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodegraph",
		Subsystem: "clipboard",
		Name:      "paste_rejections_total",
		Help:      "Total rejected pastes by reason",
	}, []string{"reason"})

	// persistDuration measures SaveGraph latency.
	// Labels: status (success, error)
	persistDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nodegraph",
		Subsystem: "store",
		Name:      "save_duration_seconds",
		Help:      "Time to persist a committed graph",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"status"})

	// graphNodes tracks the node count of the last committed state.
	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nodegraph",
		Subsystem: "editor",
		Name:      "nodes",
		Help:      "Nodes in the current document",
	})
)

func observe(op string, res editor.Result) {
	operationsTotal.WithLabelValues(op, strconv.FormatBool(res.Changed)).Inc()
}
