// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PreviewsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_previews_evaluated_total",
		Help: "Total number of multi-scenario payroll previews evaluated.",
	})

	RunsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_runs_generated_total",
		Help: "Total number of payroll runs committed.",
	})

	RunsRecalculated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_runs_recalculated_total",
		Help: "Total number of run total recalculations.",
	})

	RunsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_runs_deleted_total",
		Help: "Total number of payroll runs deleted.",
	})

	OccurrencesExpanded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payroll_occurrences_expanded_total",
		Help: "Total number of recurring allowance occurrences materialized.",
	})
)
