// Package adsc defines the data model and host/switcher contracts for the
// Auto Data Switch Controller: the set of SIM slots, their tracked signal
// state, the configuration the host supplies once at startup, and the
// capability interfaces the evaluation engine in pkg/engine is built on.
package adsc

import "fmt"

// SlotId identifies a physical modem/SIM slot. Small non-negative integers.
type SlotId int

// InvalidSlot is the sentinel meaning "no selection".
const InvalidSlot SlotId = -1

// DefaultSlotIndex is the well-known sentinel passed to the Switcher to mean
// "revert to the user's selected default slot" rather than a concrete slot id.
const DefaultSlotIndex SlotId = -2

// RegState is the registration state of a slot's modem.
type RegState int

const (
	NotRegistered RegState = iota
	Home
	Roaming
	Other
)

func (r RegState) String() string {
	switch r {
	case NotRegistered:
		return "not_registered"
	case Home:
		return "home"
	case Roaming:
		return "roaming"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("reg_state(%d)", int(r))
	}
}

// InService reports whether the registration state counts as in service.
func (r RegState) InService() bool {
	return r == Home || r == Roaming
}

// DisplayInfo is an opaque host value describing network-type overrides
// (e.g. 5G NSA/SA variants). It is compared only for equality and is
// otherwise passed verbatim to the host's scoring function.
type DisplayInfo struct {
	// NetworkType is the host's label for the current override, e.g. "NR_NSA", "LTE".
	NetworkType string
	// Overrides carries any additional host-specific override bits.
	Overrides map[string]string
}

// Equal reports whether two DisplayInfo values are identical.
func (d DisplayInfo) Equal(o DisplayInfo) bool {
	if d.NetworkType != o.NetworkType {
		return false
	}
	if len(d.Overrides) != len(o.Overrides) {
		return false
	}
	for k, v := range d.Overrides {
		if ov, ok := o.Overrides[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// SignalStrength is an opaque host value. Level is used for cheap change
// detection; the full value is passed to the host's scoring function.
type SignalStrength struct {
	Level int
	RSRP  int
	RSRQ  int
	SNR   int
}

// UsableState is an ordered, qualitative rank of a slot's usability.
type UsableState int

const (
	// NotUsable: out of service, or roaming with roaming disabled.
	NotUsable UsableState = -1
	// RoamingEnabled: usable only because the user enabled data roaming on this slot.
	RoamingEnabled UsableState = 0
	// UsableHome: preferred, assumed unmetered.
	UsableHome UsableState = 1
)

func (u UsableState) String() string {
	switch u {
	case NotUsable:
		return "not_usable"
	case RoamingEnabled:
		return "roaming_enabled"
	case UsableHome:
		return "home"
	default:
		return fmt.Sprintf("usable_state(%d)", int(u))
	}
}

// PhoneSignalStatus is the per-slot tracker record.
type PhoneSignalStatus struct {
	SlotID         SlotId
	RegState       RegState
	DisplayInfo    DisplayInfo
	SignalStrength SignalStrength
	// Listening reports whether this slot's host event streams are currently subscribed.
	Listening bool
}

// NewPhoneSignalStatus creates a tracker record initialized from the host,
// starting in NotRegistered per spec.md §3.
func NewPhoneSignalStatus(slot SlotId, display DisplayInfo, signal SignalStrength) *PhoneSignalStatus {
	return &PhoneSignalStatus{
		SlotID:         slot,
		RegState:       NotRegistered,
		DisplayInfo:    display,
		SignalStrength: signal,
	}
}

// Score returns 0 if the slot is not in service, else the host's opaque
// RAT/signal score for the slot's current display/signal pair.
func (s *PhoneSignalStatus) Score(host Host) int {
	if !s.RegState.InService() {
		return 0
	}
	return host.AutoDataSwitchScore(s.SlotID, s.DisplayInfo, s.SignalStrength)
}

// Usable derives the UsableState from the tracked registration state and,
// for Roaming, whether the slot owner has data roaming enabled.
func (s *PhoneSignalStatus) Usable(host Host) UsableState {
	switch s.RegState {
	case Home:
		return UsableHome
	case Roaming:
		if host.DataRoamingEnabled(s.SlotID) {
			return RoamingEnabled
		}
		return NotUsable
	default:
		return NotUsable
	}
}
