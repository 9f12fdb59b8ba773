/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutoreval_runs_total",
			Help: "Total number of evaluation runs by outcome",
		},
		[]string{"template", "outcome"},
	)

	degradedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutoreval_degraded_judgments_total",
			Help: "Sub-dimension judgments replaced by a zero score after a failure",
		},
		[]string{"template", "reason"},
	)

	vetoCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutoreval_vetoes_total",
			Help: "Total number of evaluation runs failed by a veto rule",
		},
		[]string{"template"},
	)

	scoreGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tutoreval_score_ratio",
			Help: "Most recent weighted total score as a fraction of the maximum (0.0-1.0)",
		},
		[]string{"template"},
	)
)

// Run outcomes recorded by RunObserver.
const (
	RunPassed = "passed"
	RunFailed = "failed"
	RunError  = "error"
)

// RunObserver records evaluation run outcomes for one rubric template.
type RunObserver struct {
	template string

	passed   prometheus.Counter
	failed   prometheus.Counter
	errored  prometheus.Counter
	vetoes   prometheus.Counter
	score    prometheus.Gauge
	degraded *prometheus.CounterVec
}

// NewRunObserver creates an observer labelled with the template id.
func NewRunObserver(template string) *RunObserver {
	labels := func(outcome string) prometheus.Labels {
		return prometheus.Labels{"template": template, "outcome": outcome}
	}
	return &RunObserver{
		template: template,
		passed:   runCounter.With(labels(RunPassed)),
		failed:   runCounter.With(labels(RunFailed)),
		errored:  runCounter.With(labels(RunError)),
		vetoes:   vetoCounter.With(prometheus.Labels{"template": template}),
		score:    scoreGauge.With(prometheus.Labels{"template": template}),
		degraded: degradedCounter.MustCurryWith(prometheus.Labels{"template": template}),
	}
}

// Completed records a finished run.
func (o *RunObserver) Completed(total, maxScore float64, passed, vetoed bool) {
	if passed {
		o.passed.Inc()
	} else {
		o.failed.Inc()
	}
	if vetoed {
		o.vetoes.Inc()
	}
	if maxScore > 0 {
		o.score.Set(total / maxScore)
	}
}

// Errored records a run that returned no report.
func (o *RunObserver) Errored() {
	o.errored.Inc()
}

// Degraded records a judgment replaced after a failure of the given kind.
func (o *RunObserver) Degraded(reason string) {
	o.degraded.With(prometheus.Labels{"reason": reason}).Inc()
}

// WriteTextfile writes the default registry in the node-exporter textfile
// format, for batch runs that exit before they could be scraped.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
