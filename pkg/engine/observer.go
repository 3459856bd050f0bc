package engine

import (
	"time"

	"github.com/sim-autonomy/adsc/pkg/adsc"
)

// Observer receives read-only notifications of engine decisions, for the
// observability/control surfaces in spec.md §4.6's spirit: side-effect only,
// never able to feed back into Evaluate. cmd/adscd's fanoutObserver
// implements it and forwards to pkg/audit, pkg/metrics, and pkg/mqttpub.
type Observer interface {
	OnEvaluated(reason string, defaultSlot, candidate adsc.SlotId)
	OnSlotEvaluated(slot adsc.SlotId, regState adsc.RegState, usable adsc.UsableState, score int, listening bool)
	OnStabilityArmed(target adsc.SlotId, needValidation bool)
	OnStabilityFired(target adsc.SlotId, needValidation bool)
	OnSwitchCancelled()
	OnValidationRetryScheduled(attempt int, delay time.Duration)
	OnValidationExhausted(retries int)
}

// SetObserver installs obs. Must be called before Run starts, since the
// field is read without a lock from the single Run goroutine afterward.
func (e *Engine) SetObserver(obs Observer) {
	e.observer = obs
}
