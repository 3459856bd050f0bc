package main

import (
	"time"

	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/audit"
	"github.com/sim-autonomy/adsc/pkg/metrics"
	"github.com/sim-autonomy/adsc/pkg/mqttpub"
)

// fanoutObserver satisfies engine.Observer by fanning decision notifications
// out to the audit trail, the Prometheus registry, and the MQTT publisher.
// Structurally typed: no import of pkg/engine is needed for this to satisfy
// its Observer interface.
type fanoutObserver struct {
	trail     *audit.Trail
	metrics   *metrics.Registry
	publisher *mqttpub.Publisher
}

func (o *fanoutObserver) OnEvaluated(reason string, defaultSlot, candidate adsc.SlotId) {
	o.trail.Record(audit.Entry{Event: audit.EventEvaluated, Slot: int(defaultSlot), Reason: reason})
	o.metrics.IncEvaluation()
	o.metrics.SetPreferredSlot(int(defaultSlot))
	o.publisher.PublishDecision(mqttpub.Decision{
		Reason: reason, DefaultSlot: int(defaultSlot), Candidate: int(candidate),
	})
}

func (o *fanoutObserver) OnSlotEvaluated(slot adsc.SlotId, regState adsc.RegState, usable adsc.UsableState, score int, listening bool) {
	o.metrics.SetSlotScore(int(slot), score)
	o.metrics.SetSlotUsable(int(slot), int(usable))
	o.publisher.PublishSlotState(mqttpub.SlotState{
		Slot: int(slot), RegState: regState.String(), Usable: usable.String(),
		Score: score, Listening: listening,
	})
}

func (o *fanoutObserver) OnStabilityArmed(target adsc.SlotId, needValidation bool) {
	o.trail.Record(audit.Entry{Event: audit.EventStabilityArmed, Slot: int(target)})
	o.metrics.SetStabilityArmed(true)
	o.metrics.IncSwitchArmed()
}

func (o *fanoutObserver) OnStabilityFired(target adsc.SlotId, needValidation bool) {
	o.trail.Record(audit.Entry{Event: audit.EventStabilityFired, Slot: int(target)})
	o.metrics.SetStabilityArmed(false)
}

func (o *fanoutObserver) OnSwitchCancelled() {
	o.trail.Record(audit.Entry{Event: audit.EventSwitchCancelled})
	o.metrics.SetStabilityArmed(false)
	o.metrics.IncSwitchCancelled()
}

func (o *fanoutObserver) OnValidationRetryScheduled(attempt int, delay time.Duration) {
	o.trail.Record(audit.Entry{Event: audit.EventValidationRetry, Reason: delay.String()})
	o.metrics.SetValidationFailures(attempt)
}

func (o *fanoutObserver) OnValidationExhausted(retries int) {
	o.trail.Record(audit.Entry{Event: audit.EventValidationFailed, Reason: "retries_exhausted"})
	o.metrics.SetValidationFailures(0)
}
