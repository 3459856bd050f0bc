package adsc

import "context"

// Subscription describes one active subscription as reported by the host.
type Subscription struct {
	SubID         int
	Slot          SlotId
	Visible       bool
	Opportunistic bool
}

// NetworkCapabilities describes the system default network's transport mix,
// as reported on a DefaultNetworkChanged event.
type NetworkCapabilities struct {
	HasCellular bool
}

// Host is everything ADSC pulls from the platform: subscription topology,
// per-slot telephony state, and the scoring oracle. It is a borrowed
// capability — the host outlives ADSC and owns the underlying telephony
// objects; ADSC never takes ownership of them.
type Host interface {
	// ActiveSubscriptions returns the currently active subscriptions, each with
	// its Visible and Opportunistic flags; the engine filters on Visible.
	ActiveSubscriptions() []Subscription
	// DefaultDataSubID returns the user-selected default data subscription, or -1 if unresolved.
	DefaultDataSubID() int
	// SlotForSubID resolves a subscription id to its slot, or (InvalidSlot, false) if unresolved.
	SlotForSubID(subID int) (SlotId, bool)
	// PreferredDataSlot returns the slot the Switcher currently routes data through.
	PreferredDataSlot() SlotId
	// AutoSelectedDataSubID returns the subscription most recently chosen by ADSC.
	AutoSelectedDataSubID() int

	// RegistrationState returns the current registration state for a slot.
	RegistrationState(slot SlotId) RegState
	// DisplayInfo returns the current display-info override for a slot.
	DisplayInfo(slot SlotId) DisplayInfo
	// SignalStrength returns the current signal strength for a slot.
	SignalStrength(slot SlotId) SignalStrength
	// DataRoamingEnabled reports whether the slot's owner enabled data roaming.
	DataRoamingEnabled(slot SlotId) bool
	// UserDataEnabled reports whether the user has mobile data enabled on the slot.
	UserDataEnabled(slot SlotId) bool
	// DataAllowed reports whether policy/thermal/etc. currently allow data on the slot.
	DataAllowed(slot SlotId) bool
	// AutoDataSwitchScore computes the opaque non-negative RAT/signal score for a slot.
	AutoDataSwitchScore(slot SlotId, display DisplayInfo, signal SignalStrength) int

	// Subscribe registers for per-slot telephony event callbacks.
	Subscribe(ctx context.Context, slot SlotId) error
	// Unsubscribe releases a prior Subscribe. Must be safe to call more than once.
	Unsubscribe(slot SlotId) error
}

// Switcher is the outbound contract ADSC drives: exactly the three methods
// in spec.md §6. The validation-failure feedback path runs the other way,
// through engine.Engine.OnValidationFailed.
type Switcher interface {
	// RequireValidation asks the Switcher to switch to target if it agrees
	// conditions are stable, optionally ping-testing first.
	RequireValidation(target SlotId, needValidation bool)
	// RequireImmediatelySwitchToPhone asks the Switcher to revert/switch now,
	// no dwell, no validation.
	RequireImmediatelySwitchToPhone(target SlotId, reason string)
	// RequireCancelAnyPendingValidation asks the Switcher to drop any
	// validation it had in flight on ADSC's behalf.
	RequireCancelAnyPendingValidation()
}

// Notifier is the side-effect sink for the first-switch notification
// (spec.md §4.6). It never re-enters the engine.
type Notifier interface {
	// NotifyAutoSwitch posts the one-time notification for an auto-triggered
	// switch away from the user's selected default, linking to settings.
	NotifyAutoSwitch(from, to SlotId)
	// CancelNotification cancels a previously displayed notification.
	CancelNotification()
}
