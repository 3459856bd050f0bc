// Package metrics exposes ADSC's decision state as Prometheus metrics:
// current default data slot, per-slot score and usability, stability-timer
// armed state, the consecutive validation-failure count, and counters for
// armed switches, cancellations, and evaluation passes.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric ADSC exports.
type Registry struct {
	registry *prometheus.Registry

	preferredSlot      prometheus.Gauge
	slotScore          *prometheus.GaugeVec
	slotUsable         *prometheus.GaugeVec
	stabilityArmed     prometheus.Gauge
	validationFailures prometheus.Gauge
	switchesArmed      prometheus.Counter
	switchesCancelled  prometheus.Counter
	evaluations        prometheus.Counter
}

// New creates a Registry with every ADSC metric registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		preferredSlot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adsc",
			Name:      "preferred_slot",
			Help:      "Slot currently selected as the default data slot, or -1 if unresolved.",
		}),
		slotScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adsc",
			Name:      "slot_score",
			Help:      "Host-reported RAT/signal score for the slot's current display/signal pair.",
		}, []string{"slot"}),
		slotUsable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adsc",
			Name:      "slot_usable",
			Help:      "Usability rank of the slot: -1 not usable, 0 roaming-enabled, 1 home.",
		}, []string{"slot"}),
		stabilityArmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adsc",
			Name:      "stability_timer_armed",
			Help:      "1 if a stability-check timer is currently armed, else 0.",
		}),
		validationFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adsc",
			Name:      "validation_failure_count",
			Help:      "Consecutive validation failures since the last successful switch.",
		}),
		switchesArmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adsc",
			Name:      "switches_armed_total",
			Help:      "Total number of stability checks armed.",
		}),
		switchesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adsc",
			Name:      "switches_cancelled_total",
			Help:      "Total number of pending switches cancelled before firing.",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adsc",
			Name:      "evaluations_total",
			Help:      "Total number of Evaluate passes run.",
		}),
	}

	reg.MustRegister(
		r.preferredSlot, r.slotScore, r.slotUsable, r.stabilityArmed,
		r.validationFailures, r.switchesArmed, r.switchesCancelled, r.evaluations,
	)
	return r
}

// Handler returns the HTTP handler serving the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// SetPreferredSlot records the host's current default data slot.
func (r *Registry) SetPreferredSlot(slot int) {
	r.preferredSlot.Set(float64(slot))
}

// SetSlotScore records a slot's current score.
func (r *Registry) SetSlotScore(slot, score int) {
	r.slotScore.WithLabelValues(slotLabel(slot)).Set(float64(score))
}

// SetSlotUsable records a slot's current usability rank.
func (r *Registry) SetSlotUsable(slot, usable int) {
	r.slotUsable.WithLabelValues(slotLabel(slot)).Set(float64(usable))
}

// SetStabilityArmed records whether a stability timer is currently armed.
func (r *Registry) SetStabilityArmed(armed bool) {
	if armed {
		r.stabilityArmed.Set(1)
	} else {
		r.stabilityArmed.Set(0)
	}
}

// SetValidationFailures records the current consecutive-failure count.
func (r *Registry) SetValidationFailures(n int) {
	r.validationFailures.Set(float64(n))
}

// IncSwitchArmed counts one stability check having been armed.
func (r *Registry) IncSwitchArmed() { r.switchesArmed.Inc() }

// IncSwitchCancelled counts one pending switch having been cancelled.
func (r *Registry) IncSwitchCancelled() { r.switchesCancelled.Inc() }

// IncEvaluation counts one Evaluate pass having run.
func (r *Registry) IncEvaluation() { r.evaluations.Inc() }

func slotLabel(slot int) string {
	if slot < 0 {
		return "none"
	}
	return strconv.Itoa(slot)
}
