package engine

import "github.com/sim-autonomy/adsc/pkg/adsc"

// NotifySwitchPerformed is the Switcher's notification hook (spec.md §4.6).
// It is side-effect only and never re-enters the evaluation engine: calling
// it does not post any Event.
//
// auto reports whether the switch was caused by the auto-switch feature
// (as opposed to a direct user action); opportunistic reports whether the
// subscription that was switched to is an opportunistic subscription.
func (e *Engine) NotifySwitchPerformed(auto, opportunistic bool, from, to adsc.SlotId) {
	e.mu.Lock()
	displayed := e.displayedFirstNotification
	e.mu.Unlock()

	if e.notifier == nil {
		return
	}

	if displayed {
		e.notifier.CancelNotification()
		return
	}

	if auto && !opportunistic {
		e.notifier.NotifyAutoSwitch(from, to)
		e.mu.Lock()
		e.displayedFirstNotification = true
		e.mu.Unlock()
	}
}
