package engine

import (
	"context"

	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/policy"
)

// evaluate is the main decision routine (spec.md §4.3), invoked whenever an
// Evaluate(reason) reaches the front of the serial loop.
func (e *Engine) evaluate(reason string) {
	pc := e.perf.StartOperation(context.Background(), "evaluate")
	var evalErr error
	defer func() { pc.Complete(evalErr) }()

	if e.config.FeatureDisabled() {
		return
	}
	if len(e.lastActiveSlots) < 2 {
		return
	}

	defaultSlot, ok := e.resolveDefaultSlot()
	if !ok {
		e.logger.Warn("cannot resolve default data slot, aborting evaluation", "reason", reason)
		return // abort the pass; do not cancel a pending switch (spec.md §7)
	}

	preferred := e.host.PreferredDataSlot()

	e.logger.Debug("evaluating", "reason", reason, "default", int(defaultSlot), "preferred", int(preferred))

	e.reportSlotStates()

	if preferred == defaultSlot {
		e.evaluateCaseA(defaultSlot)
	} else {
		e.evaluateCaseB(defaultSlot, preferred)
	}
}

// reportSlotStates notifies the observer of each tracked slot's current
// registration state, usability, and score, ahead of the Case A/Case B
// decision for this pass.
func (e *Engine) reportSlotStates() {
	if e.observer == nil {
		return
	}
	for _, slot := range e.sortedSlots() {
		status := e.phones[slot]
		if status == nil {
			continue
		}
		e.observer.OnSlotEvaluated(slot, status.RegState, policy.Usable(status, e.host), policy.Score(status, e.host), status.Listening)
	}
}

func (e *Engine) resolveDefaultSlot() (adsc.SlotId, bool) {
	subID := e.host.DefaultDataSubID()
	if subID < 0 {
		return adsc.InvalidSlot, false
	}
	return e.host.SlotForSubID(subID)
}

// evaluateCaseA handles "currently on default; consider switching away"
// (spec.md §4.3 Case A).
func (e *Engine) evaluateCaseA(defaultSlot adsc.SlotId) {
	candidate := e.switchCandidate(defaultSlot)
	if e.observer != nil {
		e.observer.OnEvaluated("case_a", defaultSlot, candidate)
	}
	if candidate == adsc.InvalidSlot {
		e.cancelAnyPendingSwitch()
		return
	}

	e.armStabilityCheck(candidate, e.config.RequirePing)
}

// switchCandidate implements spec.md §4.3 Case A steps 1-4.
func (e *Engine) switchCandidate(defaultSlot adsc.SlotId) adsc.SlotId {
	if !e.host.UserDataEnabled(defaultSlot) || e.defaultOnNonCellular {
		return adsc.InvalidSlot
	}

	defaultStatus := e.phones[defaultSlot]
	if defaultStatus == nil {
		return adsc.InvalidSlot
	}

	scoreEnabled := e.config.ScoreSwitchEnabled()

	if e.config.AllowRoamingSwitch {
		if !scoreEnabled && defaultStatus.RegState == adsc.Home {
			return adsc.InvalidSlot
		}
	} else {
		if !scoreEnabled && defaultStatus.RegState.InService() {
			return adsc.InvalidSlot
		}
	}

	defaultUsable := policy.Usable(defaultStatus, e.host)
	defaultScore := policy.Score(defaultStatus, e.host)

	for _, slot := range e.sortedSlots() {
		if slot == defaultSlot {
			continue
		}
		status := e.phones[slot]
		if status == nil {
			continue
		}

		eligible := false
		if e.config.AllowRoamingSwitch {
			usable := policy.Usable(status, e.host)
			if usable > defaultUsable {
				eligible = true
			} else if scoreEnabled && usable == defaultUsable && usable != adsc.NotUsable {
				eligible = policy.Score(status, e.host)-defaultScore > e.config.ScoreTolerance
			}
		} else {
			usable := policy.Usable(status, e.host)
			if usable != adsc.UsableHome {
				continue
			}
			if defaultStatus.RegState.InService() {
				if scoreEnabled {
					eligible = policy.Score(status, e.host)-defaultScore > e.config.ScoreTolerance
				}
			} else {
				eligible = true
			}
		}

		if eligible && e.host.DataAllowed(slot) {
			return slot
		}
	}

	return adsc.InvalidSlot
}

// evaluateCaseB handles "currently on backup; consider switching back"
// (spec.md §4.3 Case B).
func (e *Engine) evaluateCaseB(defaultSlot, preferred adsc.SlotId) {
	if !e.host.UserDataEnabled(defaultSlot) || !e.host.DataAllowed(preferred) {
		e.switcher.RequireImmediatelySwitchToPhone(adsc.DefaultSlotIndex, adsc.EvDataSettingsChanged.String())
		return
	}

	back, needValidation := e.shouldGoBack(defaultSlot, preferred)
	if e.observer != nil {
		candidate := adsc.InvalidSlot
		if back {
			candidate = adsc.DefaultSlotIndex
		}
		e.observer.OnEvaluated("case_b", defaultSlot, candidate)
	}
	if !back {
		e.cancelAnyPendingSwitch()
		return
	}

	e.armStabilityCheck(adsc.DefaultSlotIndex, needValidation)
}

// shouldGoBack implements spec.md §4.3 Case B step 2.
func (e *Engine) shouldGoBack(defaultSlot, preferred adsc.SlotId) (back bool, needValidation bool) {
	if e.defaultOnNonCellular {
		return true, false
	}

	defaultStatus := e.phones[defaultSlot]
	preferredStatus := e.phones[preferred]
	if defaultStatus == nil || preferredStatus == nil {
		return false, false
	}

	scoreEnabled := e.config.ScoreSwitchEnabled()
	requirePing := e.config.RequirePing

	if e.config.AllowRoamingSwitch {
		preferredUsable := policy.Usable(preferredStatus, e.host)
		defaultUsable := policy.Usable(defaultStatus, e.host)

		switch {
		case preferredUsable < defaultUsable:
			return true, preferredUsable != adsc.NotUsable && requirePing
		case preferredUsable == defaultUsable:
			if preferredUsable == adsc.NotUsable {
				return true, false
			}
			if scoreEnabled && policy.Score(defaultStatus, e.host)-policy.Score(preferredStatus, e.host) > e.config.ScoreTolerance {
				return true, requirePing
			}
			if !scoreEnabled {
				return true, requirePing
			}
			return false, false
		default:
			return false, false
		}
	}

	// Legacy path.
	if preferredStatus.RegState != adsc.Home {
		return true, false
	}
	if scoreEnabled && policy.Score(defaultStatus, e.host)-policy.Score(preferredStatus, e.host) > e.config.ScoreTolerance {
		return true, requirePing
	}
	if defaultStatus.RegState.InService() {
		return true, requirePing
	}
	return false, false
}
