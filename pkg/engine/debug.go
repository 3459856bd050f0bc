package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sim-autonomy/adsc/pkg/adsc"
)

// Debug implements spec.md §6's debug interface: an indented text dump of
// configuration, retry state, and each tracked slot's current snapshot.
// Safe to call from any goroutine.
func (e *Engine) Debug() string {
	e.mu.Lock()
	selectedTarget := e.selectedTarget
	stabilityArmed := e.stabilityArmed
	needValidation := e.stabilityNeedValidation
	retryCount := e.validationFailureCount
	slots := make([]adsc.SlotId, 0, len(e.phones))
	statuses := make(map[adsc.SlotId]adsc.PhoneSignalStatus, len(e.phones))
	for id, status := range e.phones {
		slots = append(slots, id)
		statuses[id] = *status
	}
	e.mu.Unlock()

	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	var b strings.Builder

	fmt.Fprintf(&b, "adsc engine\n")
	fmt.Fprintf(&b, "  config:\n")
	fmt.Fprintf(&b, "    stability_dwell: %s\n", e.config.StabilityDwell)
	fmt.Fprintf(&b, "    score_tolerance: %d\n", e.config.ScoreTolerance)
	fmt.Fprintf(&b, "    require_ping: %t\n", e.config.RequirePing)
	fmt.Fprintf(&b, "    max_validation_retries: %d\n", e.config.MaxValidationRetries)
	fmt.Fprintf(&b, "    allow_roaming_switch: %t\n", e.config.AllowRoamingSwitch)
	fmt.Fprintf(&b, "    feature_score_based_enabled: %t\n", e.config.FeatureScoreBasedEnabled)
	fmt.Fprintf(&b, "  state:\n")
	fmt.Fprintf(&b, "    selected_target: %d\n", int(selectedTarget))
	fmt.Fprintf(&b, "    stability_armed: %t\n", stabilityArmed)
	fmt.Fprintf(&b, "    stability_need_validation: %t\n", needValidation)
	fmt.Fprintf(&b, "    validation_failure_count: %d\n", retryCount)
	fmt.Fprintf(&b, "    default_on_non_cellular: %t\n", e.defaultOnNonCellular)
	fmt.Fprintf(&b, "  slots:\n")

	for _, slot := range slots {
		status := statuses[slot]
		fmt.Fprintf(&b, "    slot %d:\n", int(slot))
		fmt.Fprintf(&b, "      reg_state: %s\n", status.RegState)
		fmt.Fprintf(&b, "      display_info: network_type=%q overrides=%v\n", status.DisplayInfo.NetworkType, status.DisplayInfo.Overrides)
		fmt.Fprintf(&b, "      signal_strength: level=%d rsrp=%d rsrq=%d snr=%d\n",
			status.SignalStrength.Level, status.SignalStrength.RSRP, status.SignalStrength.RSRQ, status.SignalStrength.SNR)
		fmt.Fprintf(&b, "      listening: %t\n", status.Listening)
		fmt.Fprintf(&b, "      usable: %s\n", status.Usable(e.host))
		fmt.Fprintf(&b, "      score: %d\n", status.Score(e.host))
	}

	return b.String()
}
