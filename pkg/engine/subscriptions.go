package engine

import (
	"context"
	"sort"

	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/policy"
)

// partition classifies a registration state into the three buckets used to
// decide whether a ServiceStateChanged update is evaluation-worthy
// (spec.md §4.1: "{NotInService, Home, non-Home-InService}").
func partition(r adsc.RegState) int {
	switch {
	case r == adsc.Home:
		return 1
	case r.InService():
		return 2
	default:
		return 0
	}
}

func (e *Engine) sortedSlots() []adsc.SlotId {
	ids := make([]adsc.SlotId, 0, len(e.phones))
	for id := range e.phones {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// handleServiceStateChanged updates reg_state and triggers an evaluation
// only if the in-service-ness or home-ness partition changed (spec.md §4.1).
func (e *Engine) handleServiceStateChanged(slot adsc.SlotId) {
	status, ok := e.phones[slot]
	if !ok {
		e.logger.Debug("service state event for unknown slot, dropping", "slot", int(slot))
		return
	}

	before := partition(status.RegState)
	status.RegState = e.host.RegistrationState(slot)
	after := partition(status.RegState)

	if before != after {
		e.requestEvaluate(adsc.EvServiceStateChanged.String())
	}
}

// handleDisplayInfoChanged updates display_info and triggers an evaluation
// only if the prefilter's candidate set would change (spec.md §4.1, §4.2).
func (e *Engine) handleDisplayInfoChanged(slot adsc.SlotId) {
	status, ok := e.phones[slot]
	if !ok {
		e.logger.Debug("display info event for unknown slot, dropping", "slot", int(slot))
		return
	}

	before := policy.HigherScoreCandidate(e.phones, e.host.PreferredDataSlot(), e.host, e.config.ScoreTolerance)
	status.DisplayInfo = e.host.DisplayInfo(slot)
	after := policy.HigherScoreCandidate(e.phones, e.host.PreferredDataSlot(), e.host, e.config.ScoreTolerance)

	if after != e.selectedTarget && after != before {
		e.requestEvaluate(adsc.EvDisplayInfoChanged.String())
	}
}

// handleSignalStrengthChanged updates signal_strength and triggers an
// evaluation only if the set of slots beating the preferred slot's score by
// more than the tolerance would now include a slot different from the
// currently armed target (spec.md §4.1's cheap prefilter, §4.2).
func (e *Engine) handleSignalStrengthChanged(slot adsc.SlotId) {
	status, ok := e.phones[slot]
	if !ok {
		e.logger.Debug("signal strength event for unknown slot, dropping", "slot", int(slot))
		return
	}

	status.SignalStrength = e.host.SignalStrength(slot)
	candidate := policy.HigherScoreCandidate(e.phones, e.host.PreferredDataSlot(), e.host, e.config.ScoreTolerance)

	if candidate != adsc.InvalidSlot && candidate != e.selectedTarget {
		e.requestEvaluate(adsc.EvSignalStrengthChanged.String())
	}
}

// handleDefaultNetworkChanged implements spec.md §4.5.
func (e *Engine) handleDefaultNetworkChanged(ev adsc.Event) {
	if ev.CapabilitiesLost {
		e.defaultOnNonCellular = false
		e.requestEvaluate(adsc.EvDefaultNetworkChanged.String())
		return
	}

	if ev.Capabilities == nil {
		return
	}

	e.defaultOnNonCellular = !ev.Capabilities.HasCellular
	if e.defaultOnNonCellular && e.host.AutoSelectedDataSubID() >= 0 {
		e.requestEvaluate(adsc.EvDefaultNetworkChanged.String())
	}
}

// handleSubscriptionsChanged implements the subscription lifecycle from
// spec.md §4.1: subscribe slots entering the active-visible set, unsubscribe
// slots leaving it. Fewer than 2 active-visible slots means an empty set.
func (e *Engine) handleSubscriptionsChanged() {
	subs := e.host.ActiveSubscriptions()

	active := make(map[adsc.SlotId]bool)
	if len(subs) >= 2 {
		for _, s := range subs {
			if s.Visible {
				active[s.Slot] = true
			}
		}
		if len(active) < 2 {
			active = make(map[adsc.SlotId]bool)
		}
	}

	for slot := range active {
		e.mu.Lock()
		status, exists := e.phones[slot]
		if !exists {
			status = adsc.NewPhoneSignalStatus(slot, e.host.DisplayInfo(slot), e.host.SignalStrength(slot))
			status.RegState = e.host.RegistrationState(slot)
			e.phones[slot] = status
		}
		wasListening := status.Listening
		e.mu.Unlock()

		if !wasListening {
			if err := e.host.Subscribe(context.Background(), slot); err != nil {
				e.logger.Error("failed to subscribe to slot", "slot", int(slot), "error", err)
				continue
			}
			e.mu.Lock()
			status.Listening = true
			e.mu.Unlock()
		}
	}

	for slot, status := range e.phones {
		if status.Listening && !active[slot] {
			if err := e.host.Unsubscribe(slot); err != nil {
				e.logger.Error("failed to unsubscribe from slot", "slot", int(slot), "error", err)
			}
			e.mu.Lock()
			status.Listening = false
			e.mu.Unlock()
		}
	}

	e.mu.Lock()
	e.lastActiveSlots = active
	e.mu.Unlock()
	e.requestEvaluate(adsc.EvSubscriptionsChanged.String())
}

// handleMultiSimConfigChanged resizes the slot array: unsubscribes slots
// that disappear and creates trackers for slots that appear, per spec.md §4.1.
func (e *Engine) handleMultiSimConfigChanged(numSlots int) {
	for slot, status := range e.phones {
		if int(slot) >= numSlots {
			if status.Listening {
				if err := e.host.Unsubscribe(slot); err != nil {
					e.logger.Error("failed to unsubscribe disappearing slot", "slot", int(slot), "error", err)
				}
			}
			e.mu.Lock()
			delete(e.phones, slot)
			delete(e.lastActiveSlots, slot)
			e.mu.Unlock()
		}
	}

	for i := 0; i < numSlots; i++ {
		slot := adsc.SlotId(i)
		if _, exists := e.phones[slot]; !exists {
			status := adsc.NewPhoneSignalStatus(slot, e.host.DisplayInfo(slot), e.host.SignalStrength(slot))
			status.RegState = e.host.RegistrationState(slot)
			e.mu.Lock()
			e.phones[slot] = status
			e.mu.Unlock()
		}
	}

	e.requestEvaluate(adsc.EvMultiSimConfigChanged.String())
}

// BootstrapAllSlots implements boot-time policy (spec.md §4.1): subscribe
// all slots until the first SubscriptionsChanged prunes them. numSlots is
// the initial modem count reported by the host.
func (e *Engine) BootstrapAllSlots(numSlots int) {
	for i := 0; i < numSlots; i++ {
		slot := adsc.SlotId(i)
		status := adsc.NewPhoneSignalStatus(slot, e.host.DisplayInfo(slot), e.host.SignalStrength(slot))
		status.RegState = e.host.RegistrationState(slot)
		if err := e.host.Subscribe(context.Background(), slot); err != nil {
			e.logger.Error("failed to subscribe at boot", "slot", i, "error", err)
		} else {
			status.Listening = true
			e.mu.Lock()
			e.lastActiveSlots[slot] = true
			e.mu.Unlock()
		}
		e.mu.Lock()
		e.phones[slot] = status
		e.mu.Unlock()
	}
}
