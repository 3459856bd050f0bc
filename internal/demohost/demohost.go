// Package demohost is a self-contained, in-memory adsc.Host/Switcher/
// Notifier implementation used by cmd/adscd when no real telephony stack is
// wired in. ADSC's real host is a platform telephony service (subscription
// manager, TelephonyManager-equivalent) with no Go binding available here;
// demohost stands in so adscd can run end-to-end for local development and
// the control CLI.
package demohost

import (
	"context"
	"sync"

	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/logx"
)

// SlotFixture is the mutable state of one simulated SIM slot.
type SlotFixture struct {
	SubID          int
	RegState       adsc.RegState
	Display        adsc.DisplayInfo
	Signal         adsc.SignalStrength
	DataRoaming    bool
	UserDataOn     bool
	DataAllowedVal bool
	Visible        bool
	Opportunistic  bool
}

// Host is an in-memory adsc.Host/Switcher/Notifier backed by SlotFixtures.
// Safe for concurrent use.
type Host struct {
	mu sync.Mutex

	logger *logx.Logger

	slots           map[adsc.SlotId]*SlotFixture
	defaultSubID    int
	preferredSlot   adsc.SlotId
	autoSelectedSub int
	subscribed      map[adsc.SlotId]bool

	onSwitchPerformed func(auto, opportunistic bool, from, to adsc.SlotId)
}

// SetSwitchPerformedCallback registers the hook demohost calls after
// executing a switch, mirroring a real Switcher calling back into
// engine.Engine.NotifySwitchPerformed once the physical switch completes.
func (h *Host) SetSwitchPerformedCallback(cb func(auto, opportunistic bool, from, to adsc.SlotId)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSwitchPerformed = cb
}

// New creates a Host with the given initial slot fixtures.
func New(logger *logx.Logger, slots map[adsc.SlotId]*SlotFixture) *Host {
	return &Host{
		logger:          logger,
		slots:           slots,
		defaultSubID:    -1,
		preferredSlot:   adsc.InvalidSlot,
		autoSelectedSub: -1,
		subscribed:      make(map[adsc.SlotId]bool),
	}
}

// SetDefault sets which slot the user has selected as the preferred data slot.
func (h *Host) SetDefault(slot adsc.SlotId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preferredSlot = slot
	if f, ok := h.slots[slot]; ok {
		h.defaultSubID = f.SubID
	}
}

// ActiveSubscriptions implements adsc.Host.
func (h *Host) ActiveSubscriptions() []adsc.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	var subs []adsc.Subscription
	for slot, f := range h.slots {
		subs = append(subs, adsc.Subscription{
			SubID:         f.SubID,
			Slot:          slot,
			Visible:       f.Visible,
			Opportunistic: f.Opportunistic,
		})
	}
	return subs
}

// DefaultDataSubID implements adsc.Host.
func (h *Host) DefaultDataSubID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.defaultSubID
}

// SlotForSubID implements adsc.Host.
func (h *Host) SlotForSubID(subID int) (adsc.SlotId, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for slot, f := range h.slots {
		if f.SubID == subID {
			return slot, true
		}
	}
	return adsc.InvalidSlot, false
}

// PreferredDataSlot implements adsc.Host.
func (h *Host) PreferredDataSlot() adsc.SlotId {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.preferredSlot
}

// AutoSelectedDataSubID implements adsc.Host.
func (h *Host) AutoSelectedDataSubID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.autoSelectedSub
}

// RegistrationState implements adsc.Host.
func (h *Host) RegistrationState(slot adsc.SlotId) adsc.RegState {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.slots[slot]; ok {
		return f.RegState
	}
	return adsc.NotRegistered
}

// DisplayInfo implements adsc.Host.
func (h *Host) DisplayInfo(slot adsc.SlotId) adsc.DisplayInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.slots[slot]; ok {
		return f.Display
	}
	return adsc.DisplayInfo{}
}

// SignalStrength implements adsc.Host.
func (h *Host) SignalStrength(slot adsc.SlotId) adsc.SignalStrength {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.slots[slot]; ok {
		return f.Signal
	}
	return adsc.SignalStrength{}
}

// DataRoamingEnabled implements adsc.Host.
func (h *Host) DataRoamingEnabled(slot adsc.SlotId) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.slots[slot]; ok {
		return f.DataRoaming
	}
	return false
}

// UserDataEnabled implements adsc.Host.
func (h *Host) UserDataEnabled(slot adsc.SlotId) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.slots[slot]; ok {
		return f.UserDataOn
	}
	return false
}

// DataAllowed implements adsc.Host.
func (h *Host) DataAllowed(slot adsc.SlotId) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.slots[slot]; ok {
		return f.DataAllowedVal
	}
	return false
}

// AutoDataSwitchScore implements adsc.Host with a simple RAT/signal score:
// network-type base score plus RSRP, clamped to a sane range.
func (h *Host) AutoDataSwitchScore(_ adsc.SlotId, display adsc.DisplayInfo, signal adsc.SignalStrength) int {
	base := map[string]int{"NR_SA": 100, "NR_NSA": 90, "LTE": 70, "UMTS": 40, "GSM": 20}[display.NetworkType]
	score := base + signal.RSRP/2
	if score < 0 {
		score = 0
	}
	return score
}

// Subscribe implements adsc.Host.
func (h *Host) Subscribe(_ context.Context, slot adsc.SlotId) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribed[slot] = true
	h.logger.Debug("demohost: subscribed", "slot", int(slot))
	return nil
}

// Unsubscribe implements adsc.Host.
func (h *Host) Unsubscribe(slot adsc.SlotId) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribed, slot)
	h.logger.Debug("demohost: unsubscribed", "slot", int(slot))
	return nil
}

// RequireValidation implements adsc.Switcher: in demohost, validation always
// succeeds immediately and the preferred slot moves to target.
func (h *Host) RequireValidation(target adsc.SlotId, needValidation bool) {
	h.logger.Info("demohost: validation requested", "target", int(target), "need_validation", needValidation)
	from := h.switchTo(target)
	h.notifySwitch(from, target)
}

// RequireImmediatelySwitchToPhone implements adsc.Switcher.
func (h *Host) RequireImmediatelySwitchToPhone(target adsc.SlotId, reason string) {
	h.logger.Info("demohost: immediate switch requested", "target", int(target), "reason", reason)
	from := h.switchTo(target)
	h.notifySwitch(from, target)
}

// switchTo applies target as the new auto-selected subscription and preferred
// slot (DefaultSlotIndex routes back to the default subscription's slot) and
// returns the slot that was previously preferred.
func (h *Host) switchTo(target adsc.SlotId) adsc.SlotId {
	h.mu.Lock()
	defer h.mu.Unlock()

	from := h.preferredSlot
	if target == adsc.DefaultSlotIndex {
		h.autoSelectedSub = -1
		for slot, f := range h.slots {
			if f.SubID == h.defaultSubID {
				h.preferredSlot = slot
			}
		}
	} else if f, ok := h.slots[target]; ok {
		h.autoSelectedSub = f.SubID
		h.preferredSlot = target
	}
	return from
}

func (h *Host) notifySwitch(from, to adsc.SlotId) {
	h.mu.Lock()
	cb := h.onSwitchPerformed
	opportunistic := false
	if f, ok := h.slots[to]; ok {
		opportunistic = f.Opportunistic
	}
	h.mu.Unlock()

	if cb != nil {
		cb(true, opportunistic, from, to)
	}
}

// RequireCancelAnyPendingValidation implements adsc.Switcher.
func (h *Host) RequireCancelAnyPendingValidation() {
	h.logger.Debug("demohost: cancel pending validation")
}

// NotifyAutoSwitch implements adsc.Notifier.
func (h *Host) NotifyAutoSwitch(from, to adsc.SlotId) {
	h.logger.Info("demohost: notify auto switch", "from", int(from), "to", int(to))
}

// CancelNotification implements adsc.Notifier.
func (h *Host) CancelNotification() {
	h.logger.Debug("demohost: cancel notification")
}
