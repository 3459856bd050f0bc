// Package policy implements the pure, side-effect-free scoring and
// usability functions ADSC's evaluation engine consults (spec.md §4.2),
// built on an opaque host-supplied score rather than a metrics-derived one.
package policy

import (
	"sort"

	"github.com/sim-autonomy/adsc/pkg/adsc"
)

// Score returns 0 if the slot is not in service, else the host's opaque
// RAT/signal score (spec.md §4.2).
func Score(status *adsc.PhoneSignalStatus, host adsc.Host) int {
	return status.Score(host)
}

// Usable derives the ordered UsableState for a slot (spec.md §4.2):
// Home -> UsableHome; Roaming -> RoamingEnabled iff the owner enabled data
// roaming, else NotUsable; anything else -> NotUsable.
func Usable(status *adsc.PhoneSignalStatus, host adsc.Host) adsc.UsableState {
	return status.Usable(host)
}

// ScoreSwitchEnabled reports whether score-based switching is active.
func ScoreSwitchEnabled(cfg adsc.Config) bool {
	return cfg.ScoreSwitchEnabled()
}

// HigherScoreCandidate is the cheap prefilter used to suppress unnecessary
// evaluations on noisy signal-strength/display-info updates (spec.md §4.2).
// Let p be the current host-preferred slot. If p is invalid, returns
// InvalidSlot. Otherwise returns the lowest-numbered slot i != p whose score
// exceeds p's score by more than the configured tolerance, else InvalidSlot.
func HigherScoreCandidate(phones map[adsc.SlotId]*adsc.PhoneSignalStatus, preferred adsc.SlotId, host adsc.Host, scoreTolerance int) adsc.SlotId {
	if preferred == adsc.InvalidSlot {
		return adsc.InvalidSlot
	}
	p, ok := phones[preferred]
	if !ok {
		return adsc.InvalidSlot
	}
	pScore := Score(p, host)

	ids := make([]adsc.SlotId, 0, len(phones))
	for id := range phones {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if id == preferred {
			continue
		}
		if Score(phones[id], host)-pScore > scoreTolerance {
			return id
		}
	}
	return adsc.InvalidSlot
}
