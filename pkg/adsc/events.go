package adsc

// EventKind discriminates the ingress variant (design note §9: "model
// ingress as a tagged variant dispatched in one place").
type EventKind int

const (
	EvServiceStateChanged EventKind = iota
	EvDisplayInfoChanged
	EvSignalStrengthChanged
	EvDefaultNetworkChanged
	EvDataSettingsChanged
	EvRetryValidation
	EvSimLoaded
	EvVoiceCallEnded
	EvSubscriptionsChanged
	EvMultiSimConfigChanged
	EvEvaluate
)

func (k EventKind) String() string {
	switch k {
	case EvServiceStateChanged:
		return "ServiceStateChanged"
	case EvDisplayInfoChanged:
		return "DisplayInfoChanged"
	case EvSignalStrengthChanged:
		return "SignalStrengthChanged"
	case EvDefaultNetworkChanged:
		return "DefaultNetworkChanged"
	case EvDataSettingsChanged:
		return "DataSettingsChanged"
	case EvRetryValidation:
		return "RetryValidation"
	case EvSimLoaded:
		return "SimLoaded"
	case EvVoiceCallEnded:
		return "VoiceCallEnded"
	case EvSubscriptionsChanged:
		return "SubscriptionsChanged"
	case EvMultiSimConfigChanged:
		return "MultiSimConfigChanged"
	case EvEvaluate:
		return "Evaluate"
	default:
		return "Unknown"
	}
}

// Event is the single ingress message type dispatched by the Event Router.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Event struct {
	Kind EventKind

	// Slot is set for ServiceStateChanged, DisplayInfoChanged, SignalStrengthChanged.
	Slot SlotId

	// Capabilities is set for DefaultNetworkChanged when capabilities are present;
	// CapabilitiesLost is set when the default network was lost entirely.
	Capabilities     *NetworkCapabilities
	CapabilitiesLost bool

	// NumSlots is set for MultiSimConfigChanged.
	NumSlots int

	// Reason records why an Evaluate was requested (for logging/audit only).
	Reason string
}

// ServiceStateChanged builds an Event for a per-slot registration state update.
func ServiceStateChanged(slot SlotId) Event {
	return Event{Kind: EvServiceStateChanged, Slot: slot, Reason: EvServiceStateChanged.String()}
}

// DisplayInfoChanged builds an Event for a per-slot display-info update.
func DisplayInfoChanged(slot SlotId) Event {
	return Event{Kind: EvDisplayInfoChanged, Slot: slot, Reason: EvDisplayInfoChanged.String()}
}

// SignalStrengthChanged builds an Event for a per-slot signal-strength update.
func SignalStrengthChanged(slot SlotId) Event {
	return Event{Kind: EvSignalStrengthChanged, Slot: slot, Reason: EvSignalStrengthChanged.String()}
}

// DefaultNetworkChanged builds an Event reporting new default-network capabilities.
func DefaultNetworkChanged(caps NetworkCapabilities) Event {
	return Event{Kind: EvDefaultNetworkChanged, Capabilities: &caps, Reason: EvDefaultNetworkChanged.String()}
}

// DefaultNetworkLost builds an Event reporting the default network was lost.
func DefaultNetworkLost() Event {
	return Event{Kind: EvDefaultNetworkChanged, CapabilitiesLost: true, Reason: EvDefaultNetworkChanged.String()}
}

// DataSettingsChanged builds an Event for a user data/roaming toggle.
func DataSettingsChanged() Event {
	return Event{Kind: EvDataSettingsChanged, Reason: EvDataSettingsChanged.String()}
}

// RetryValidation builds the self-enqueued retry event.
func RetryValidation() Event {
	return Event{Kind: EvRetryValidation, Reason: EvRetryValidation.String()}
}

// SubscriptionsChanged builds an Event for an active-SIM composition change.
func SubscriptionsChanged() Event {
	return Event{Kind: EvSubscriptionsChanged, Reason: EvSubscriptionsChanged.String()}
}

// MultiSimConfigChanged builds an Event for a modem-count change.
func MultiSimConfigChanged(n int) Event {
	return Event{Kind: EvMultiSimConfigChanged, NumSlots: n, Reason: EvMultiSimConfigChanged.String()}
}

// SimLoaded and VoiceCallEnded are opaque triggers, per spec.md §4.1.
func SimLoaded() Event      { return Event{Kind: EvSimLoaded, Reason: EvSimLoaded.String()} }
func VoiceCallEnded() Event { return Event{Kind: EvVoiceCallEnded, Reason: EvVoiceCallEnded.String()} }

// Evaluate builds the internal coalesced evaluation-pass request.
func Evaluate(reason string) Event {
	return Event{Kind: EvEvaluate, Reason: reason}
}
