package policy

import (
	"context"
	"testing"

	"github.com/sim-autonomy/adsc/pkg/adsc"
)

// scoreHost is a minimal adsc.Host stub exposing only what policy needs:
// opaque score by slot and per-slot roaming permission.
type scoreHost struct {
	scores  map[adsc.SlotId]int
	roaming map[adsc.SlotId]bool
}

func (h scoreHost) ActiveSubscriptions() []adsc.Subscription       { return nil }
func (h scoreHost) DefaultDataSubID() int                          { return -1 }
func (h scoreHost) SlotForSubID(int) (adsc.SlotId, bool)           { return adsc.InvalidSlot, false }
func (h scoreHost) PreferredDataSlot() adsc.SlotId                 { return adsc.InvalidSlot }
func (h scoreHost) AutoSelectedDataSubID() int                     { return -1 }
func (h scoreHost) RegistrationState(adsc.SlotId) adsc.RegState    { return adsc.NotRegistered }
func (h scoreHost) DisplayInfo(adsc.SlotId) adsc.DisplayInfo       { return adsc.DisplayInfo{} }
func (h scoreHost) SignalStrength(adsc.SlotId) adsc.SignalStrength { return adsc.SignalStrength{} }
func (h scoreHost) DataRoamingEnabled(slot adsc.SlotId) bool       { return h.roaming[slot] }
func (h scoreHost) UserDataEnabled(adsc.SlotId) bool               { return true }
func (h scoreHost) DataAllowed(adsc.SlotId) bool                   { return true }
func (h scoreHost) AutoDataSwitchScore(slot adsc.SlotId, _ adsc.DisplayInfo, _ adsc.SignalStrength) int {
	return h.scores[slot]
}
func (h scoreHost) Subscribe(context.Context, adsc.SlotId) error { return nil }
func (h scoreHost) Unsubscribe(adsc.SlotId) error                { return nil }

func TestScore_ZeroWhenNotInService(t *testing.T) {
	host := scoreHost{scores: map[adsc.SlotId]int{0: 99}}
	status := adsc.NewPhoneSignalStatus(0, adsc.DisplayInfo{}, adsc.SignalStrength{})
	status.RegState = adsc.NotRegistered

	if got := Score(status, host); got != 0 {
		t.Errorf("Score() = %d, want 0 for an out-of-service slot", got)
	}
}

func TestScore_UsesHostScoreWhenInService(t *testing.T) {
	host := scoreHost{scores: map[adsc.SlotId]int{0: 99}}
	status := adsc.NewPhoneSignalStatus(0, adsc.DisplayInfo{}, adsc.SignalStrength{})
	status.RegState = adsc.Home

	if got := Score(status, host); got != 99 {
		t.Errorf("Score() = %d, want 99", got)
	}
}

func TestUsable_HomeRoamingNotUsable(t *testing.T) {
	host := scoreHost{roaming: map[adsc.SlotId]bool{1: true}}

	home := adsc.NewPhoneSignalStatus(0, adsc.DisplayInfo{}, adsc.SignalStrength{})
	home.RegState = adsc.Home
	if got := Usable(home, host); got != adsc.UsableHome {
		t.Errorf("Usable(home) = %v, want UsableHome", got)
	}

	roamingAllowed := adsc.NewPhoneSignalStatus(1, adsc.DisplayInfo{}, adsc.SignalStrength{})
	roamingAllowed.RegState = adsc.Roaming
	if got := Usable(roamingAllowed, host); got != adsc.RoamingEnabled {
		t.Errorf("Usable(roaming, allowed) = %v, want RoamingEnabled", got)
	}

	roamingDenied := adsc.NewPhoneSignalStatus(2, adsc.DisplayInfo{}, adsc.SignalStrength{})
	roamingDenied.RegState = adsc.Roaming
	if got := Usable(roamingDenied, host); got != adsc.NotUsable {
		t.Errorf("Usable(roaming, denied) = %v, want NotUsable", got)
	}
}

func TestHigherScoreCandidate(t *testing.T) {
	host := scoreHost{scores: map[adsc.SlotId]int{0: 50, 1: 60, 2: 80}}

	phones := map[adsc.SlotId]*adsc.PhoneSignalStatus{
		0: adsc.NewPhoneSignalStatus(0, adsc.DisplayInfo{}, adsc.SignalStrength{}),
		1: adsc.NewPhoneSignalStatus(1, adsc.DisplayInfo{}, adsc.SignalStrength{}),
		2: adsc.NewPhoneSignalStatus(2, adsc.DisplayInfo{}, adsc.SignalStrength{}),
	}
	for _, s := range phones {
		s.RegState = adsc.Home
	}

	// Slots 1 (by 10) and 2 (by 30) both beat slot 0 (preferred) past a
	// tolerance of 5; slots are checked in id order, so slot 1 is returned.
	if got := HigherScoreCandidate(phones, 0, host, 5); got != 1 {
		t.Errorf("HigherScoreCandidate() = %d, want slot 1", got)
	}

	// The top scorer has no candidate beating it.
	if got := HigherScoreCandidate(phones, 2, host, 5); got != adsc.InvalidSlot {
		t.Errorf("HigherScoreCandidate() = %d, want InvalidSlot", got)
	}

	// An invalid preferred slot always yields InvalidSlot.
	if got := HigherScoreCandidate(phones, adsc.InvalidSlot, host, 5); got != adsc.InvalidSlot {
		t.Errorf("HigherScoreCandidate() = %d, want InvalidSlot", got)
	}
}

func TestScoreSwitchEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  adsc.Config
		want bool
	}{
		{"enabled", adsc.Config{FeatureScoreBasedEnabled: true, ScoreTolerance: 5}, true},
		{"flag off", adsc.Config{FeatureScoreBasedEnabled: false, ScoreTolerance: 5}, false},
		{"negative tolerance", adsc.Config{FeatureScoreBasedEnabled: true, ScoreTolerance: -1}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ScoreSwitchEnabled(c.cfg); got != c.want {
				t.Errorf("ScoreSwitchEnabled() = %v, want %v", got, c.want)
			}
		})
	}
}
