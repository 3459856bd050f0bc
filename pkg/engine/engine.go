// Package engine implements the ADSC evaluation engine: event intake and
// coalescing, per-slot subscription lifecycle, the Case A/Case B decision
// routine, the stability-check timer, and validation retry backoff. Events
// are handled on a single goroutine and PostEvent is how other goroutines
// feed events in; OnValidationFailed and NotifySwitchPerformed are also
// called from other goroutines and touch only mutex-guarded fields.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/logx"
)

// internalEvent wraps adsc.Event with a stability-fire variant that the
// stability timer's callback posts back into the serial loop (design note
// §9: external AfterFunc callbacks never touch engine state directly, they
// only enqueue). Retry timers post a plain adsc.RetryValidation event.
type internalEvent struct {
	adsc.Event
	isStabilityFire bool
	fireTarget      adsc.SlotId
	fireNeedValid   bool
	fireGeneration  uint64
}

// Engine is the ADSC decision engine. Events are handled on the single
// goroutine running Run; PostEvent is how other goroutines (host callbacks,
// timers) feed events in.
type Engine struct {
	config   adsc.Config
	logger   *logx.Logger
	host     adsc.Host
	switcher adsc.Switcher
	notifier adsc.Notifier
	perf     *logx.PerformanceLogger

	inbox chan internalEvent

	// Tracker state (spec.md §3).
	phones               map[adsc.SlotId]*adsc.PhoneSignalStatus
	defaultOnNonCellular bool

	// Stability/retry state.
	selectedTarget          adsc.SlotId
	stabilityNeedValidation bool
	stabilityArmed          bool
	stabilityTimer          *time.Timer
	stabilityGeneration     uint64
	validationFailureCount  int

	// Coalescing: at most one Evaluate pending at a time.
	evaluatePending bool

	// displayedFirstNotification, per spec.md §4.6.
	displayedFirstNotification bool

	// lastActiveSlots is the most recently observed active-visible slot set;
	// evaluate returns early while it holds fewer than 2 slots.
	lastActiveSlots map[adsc.SlotId]bool

	// observer is an optional read-only notification sink (pkg/audit,
	// pkg/metrics, pkg/mqttpub); nil means no observer installed.
	observer Observer

	mu sync.Mutex // guards fields touched by both Run's goroutine and PostEvent callers' bookkeeping reads (GetX methods)
}

// New creates an engine. Boot-time policy (spec.md §4.1) is to subscribe all
// slots until the first SubscriptionsChanged prunes them; callers should
// follow New with an initial SubscriptionsChanged event once the host is ready.
func New(config adsc.Config, logger *logx.Logger, host adsc.Host, switcher adsc.Switcher, notifier adsc.Notifier) *Engine {
	return &Engine{
		config:          config,
		logger:          logger,
		host:            host,
		switcher:        switcher,
		notifier:        notifier,
		perf:            logx.NewPerformanceLogger(logger),
		inbox:           make(chan internalEvent, 256),
		phones:          make(map[adsc.SlotId]*adsc.PhoneSignalStatus),
		selectedTarget:  adsc.InvalidSlot,
		lastActiveSlots: make(map[adsc.SlotId]bool),
	}
}

// PostEvent enqueues an ingress event. Non-blocking: if the inbox is full
// the event is dropped and logged (spec.md §4.1: "all non-blocking").
func (e *Engine) PostEvent(ev adsc.Event) {
	select {
	case e.inbox <- internalEvent{Event: ev}:
	default:
		e.logger.Warn("event inbox full, dropping event", "kind", ev.Kind.String())
	}
}

// requestEvaluate enqueues Evaluate(reason) only if no Evaluate is already
// pending (spec.md §4.1 coalescing), with the sole exception of
// RetryValidation, which callers schedule separately with backoff.
func (e *Engine) requestEvaluate(reason string) {
	if e.evaluatePending {
		return
	}
	e.evaluatePending = true
	select {
	case e.inbox <- internalEvent{Event: adsc.Evaluate(reason)}:
	default:
		e.logger.Warn("event inbox full, dropping coalesced evaluate", "reason", reason)
		e.evaluatePending = false
	}
}

// Run drives the serial event loop until ctx is cancelled. All handlers run
// to completion without yielding (spec.md §5).
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.stopStabilityTimer()
			return
		case iev := <-e.inbox:
			e.dispatch(iev)
		}
	}
}

func (e *Engine) dispatch(iev internalEvent) {
	if iev.isStabilityFire {
		e.handleStabilityFire(iev.fireTarget, iev.fireNeedValid, iev.fireGeneration)
		return
	}

	ev := iev.Event
	switch ev.Kind {
	case adsc.EvServiceStateChanged:
		e.handleServiceStateChanged(ev.Slot)
	case adsc.EvDisplayInfoChanged:
		e.handleDisplayInfoChanged(ev.Slot)
	case adsc.EvSignalStrengthChanged:
		e.handleSignalStrengthChanged(ev.Slot)
	case adsc.EvDefaultNetworkChanged:
		e.handleDefaultNetworkChanged(ev)
	case adsc.EvDataSettingsChanged:
		e.requestEvaluate(ev.Kind.String())
	case adsc.EvRetryValidation:
		e.evaluate(ev.Kind.String())
	case adsc.EvSimLoaded, adsc.EvVoiceCallEnded:
		e.requestEvaluate(ev.Kind.String())
	case adsc.EvSubscriptionsChanged:
		e.handleSubscriptionsChanged()
	case adsc.EvMultiSimConfigChanged:
		e.handleMultiSimConfigChanged(ev.NumSlots)
	case adsc.EvEvaluate:
		e.evaluatePending = false
		e.evaluate(ev.Reason)
	default:
		e.logger.Warn("dropping event with unrecognized kind", "kind", int(ev.Kind))
	}
}

// GetSelectedTarget returns the slot the stability timer is currently armed
// for, or adsc.InvalidSlot if none. Safe to call from any goroutine.
func (e *Engine) GetSelectedTarget() adsc.SlotId {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedTarget
}

// GetValidationFailureCount returns the current consecutive-failure count.
func (e *Engine) GetValidationFailureCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validationFailureCount
}

// IsStabilityArmed reports whether a stability timer is currently armed.
func (e *Engine) IsStabilityArmed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stabilityArmed
}
