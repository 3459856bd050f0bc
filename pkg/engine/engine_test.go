package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/logx"
)

// fakeHost implements adsc.Host, adsc.Switcher, and adsc.Notifier together
// as a single in-memory test double.
type fakeHost struct {
	mu sync.Mutex

	regState    map[adsc.SlotId]adsc.RegState
	display     map[adsc.SlotId]adsc.DisplayInfo
	signal      map[adsc.SlotId]adsc.SignalStrength
	roaming     map[adsc.SlotId]bool
	userData    map[adsc.SlotId]bool
	dataAllowed map[adsc.SlotId]bool
	score       map[adsc.SlotId]int
	subs        []adsc.Subscription

	defaultSubID  int
	preferredSlot adsc.SlotId
	autoSelected  int
	subIDBySlot   map[adsc.SlotId]int

	subscribed map[adsc.SlotId]bool

	switchCalls       []switchCall
	cancelCalls       int
	notifyCalls       []notifyCall
	cancelNotifyCalls int
}

type switchCall struct {
	target         adsc.SlotId
	needValidation bool
	immediate      bool
	reason         string
}

type notifyCall struct{ from, to adsc.SlotId }

func newFakeHost() *fakeHost {
	return &fakeHost{
		regState:    make(map[adsc.SlotId]adsc.RegState),
		display:     make(map[adsc.SlotId]adsc.DisplayInfo),
		signal:      make(map[adsc.SlotId]adsc.SignalStrength),
		roaming:     make(map[adsc.SlotId]bool),
		userData:    make(map[adsc.SlotId]bool),
		dataAllowed: make(map[adsc.SlotId]bool),
		score:       make(map[adsc.SlotId]int),
		subIDBySlot: make(map[adsc.SlotId]int),
		subscribed:  make(map[adsc.SlotId]bool),
		defaultSubID: -1,
		preferredSlot: adsc.InvalidSlot,
		autoSelected:  -1,
	}
}

func (h *fakeHost) ActiveSubscriptions() []adsc.Subscription { return h.subs }
func (h *fakeHost) DefaultDataSubID() int                    { return h.defaultSubID }
func (h *fakeHost) SlotForSubID(subID int) (adsc.SlotId, bool) {
	for slot, id := range h.subIDBySlot {
		if id == subID {
			return slot, true
		}
	}
	return adsc.InvalidSlot, false
}
func (h *fakeHost) PreferredDataSlot() adsc.SlotId    { return h.preferredSlot }
func (h *fakeHost) AutoSelectedDataSubID() int        { return h.autoSelected }
func (h *fakeHost) RegistrationState(slot adsc.SlotId) adsc.RegState { return h.regState[slot] }
func (h *fakeHost) DisplayInfo(slot adsc.SlotId) adsc.DisplayInfo    { return h.display[slot] }
func (h *fakeHost) SignalStrength(slot adsc.SlotId) adsc.SignalStrength {
	return h.signal[slot]
}
func (h *fakeHost) DataRoamingEnabled(slot adsc.SlotId) bool { return h.roaming[slot] }
func (h *fakeHost) UserDataEnabled(slot adsc.SlotId) bool    { return h.userData[slot] }
func (h *fakeHost) DataAllowed(slot adsc.SlotId) bool        { return h.dataAllowed[slot] }
func (h *fakeHost) AutoDataSwitchScore(slot adsc.SlotId, _ adsc.DisplayInfo, _ adsc.SignalStrength) int {
	return h.score[slot]
}
func (h *fakeHost) Subscribe(_ context.Context, slot adsc.SlotId) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribed[slot] = true
	return nil
}
func (h *fakeHost) Unsubscribe(slot adsc.SlotId) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribed, slot)
	return nil
}

func (h *fakeHost) RequireValidation(target adsc.SlotId, needValidation bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.switchCalls = append(h.switchCalls, switchCall{target: target, needValidation: needValidation})
}
func (h *fakeHost) RequireImmediatelySwitchToPhone(target adsc.SlotId, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.switchCalls = append(h.switchCalls, switchCall{target: target, immediate: true, reason: reason})
}
func (h *fakeHost) RequireCancelAnyPendingValidation() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelCalls++
}
func (h *fakeHost) NotifyAutoSwitch(from, to adsc.SlotId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifyCalls = append(h.notifyCalls, notifyCall{from: from, to: to})
}
func (h *fakeHost) CancelNotification() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelNotifyCalls++
}

func (h *fakeHost) switchCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.switchCalls)
}

func (h *fakeHost) lastSwitchCall() switchCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.switchCalls[len(h.switchCalls)-1]
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func testConfig() adsc.Config {
	return adsc.Config{
		StabilityDwell:           20 * time.Millisecond,
		ScoreTolerance:           5,
		RequirePing:              false,
		MaxValidationRetries:     3,
		AllowRoamingSwitch:       false,
		FeatureScoreBasedEnabled: true,
	}
}

func newTestEngine(cfg adsc.Config, host *fakeHost) *Engine {
	logger := logx.NewLogger("debug", "test")
	return New(cfg, logger, host, host, host)
}

func setupTwoSlots(h *fakeHost) {
	h.subs = []adsc.Subscription{
		{SubID: 0, Slot: 0, Visible: true},
		{SubID: 1, Slot: 1, Visible: true},
	}
	h.subIDBySlot[0] = 0
	h.subIDBySlot[1] = 1
	h.defaultSubID = 0
	h.preferredSlot = 0
	h.regState[0] = adsc.Home
	h.regState[1] = adsc.Home
	h.userData[0] = true
	h.userData[1] = true
	h.dataAllowed[0] = true
	h.dataAllowed[1] = true
	h.score[0] = 50
	h.score[1] = 50
}

// TestEngine_CaseA_ArmsAndFiresSwitch verifies spec.md §4.3 Case A: when a
// non-default slot beats the default slot's score past the tolerance, the
// engine arms a stability check and, once the dwell elapses, tells the
// Switcher to validate the switch.
func TestEngine_CaseA_ArmsAndFiresSwitch(t *testing.T) {
	host := newFakeHost()
	setupTwoSlots(host)
	host.score[1] = 80 // beats slot 0 (score 50) by more than tolerance (5)

	eng := newTestEngine(testConfig(), host)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	eng.BootstrapAllSlots(2)
	eng.PostEvent(adsc.SubscriptionsChanged())

	waitUntil(t, time.Second, func() bool { return host.switchCallCount() > 0 })

	call := host.lastSwitchCall()
	if call.target != 1 {
		t.Errorf("expected switch target slot 1, got %d", call.target)
	}
	if call.immediate {
		t.Errorf("expected a validated switch, got immediate")
	}
}

// TestEngine_CaseA_CancelsWhenConditionDisappears verifies spec.md §4.4's
// cancellation law: if the favorable condition disappears before the
// stability dwell elapses, the Switcher never gets a validate/switch call.
func TestEngine_CaseA_CancelsWhenConditionDisappears(t *testing.T) {
	host := newFakeHost()
	setupTwoSlots(host)
	host.score[1] = 80

	cfg := testConfig()
	cfg.StabilityDwell = 200 * time.Millisecond
	eng := newTestEngine(cfg, host)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	eng.BootstrapAllSlots(2)
	eng.PostEvent(adsc.SubscriptionsChanged())

	waitUntil(t, time.Second, func() bool { return eng.IsStabilityArmed() })

	// Condition disappears: slot 1 regresses to the default's score.
	host.score[1] = 50
	eng.PostEvent(adsc.Evaluate("test_retrigger"))

	waitUntil(t, time.Second, func() bool { return !eng.IsStabilityArmed() })

	time.Sleep(cfg.StabilityDwell + 50*time.Millisecond)
	if n := host.switchCallCount(); n != 0 {
		t.Errorf("expected no switch calls after cancellation, got %d", n)
	}
	if host.cancelCalls == 0 {
		t.Errorf("expected RequireCancelAnyPendingValidation to be called")
	}
}

// TestEngine_CaseB_SwitchesBackWhenPreferredRecovers verifies spec.md §4.3
// Case B: while running on the backup slot, with the default slot back in
// home service, the engine asks the Switcher to revert to DefaultSlotIndex.
func TestEngine_CaseB_SwitchesBackWhenPreferredRecovers(t *testing.T) {
	host := newFakeHost()
	setupTwoSlots(host)
	// Running on slot 1 (backup); preferred (default) is slot 0.
	host.preferredSlot = 1
	host.autoSelected = 1
	host.regState[0] = adsc.Home
	host.score[0] = 50
	host.score[1] = 50

	eng := newTestEngine(testConfig(), host)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	eng.BootstrapAllSlots(2)
	eng.PostEvent(adsc.SubscriptionsChanged())

	waitUntil(t, time.Second, func() bool { return host.switchCallCount() > 0 })

	call := host.lastSwitchCall()
	if call.target != adsc.DefaultSlotIndex {
		t.Errorf("expected revert to DefaultSlotIndex, got %d", call.target)
	}
}

// TestEngine_FeatureDisabled verifies spec.md §3: a negative stability dwell
// disables evaluation entirely, regardless of slot scores.
func TestEngine_FeatureDisabled(t *testing.T) {
	host := newFakeHost()
	setupTwoSlots(host)
	host.score[1] = 1000

	cfg := testConfig()
	cfg.StabilityDwell = -1
	eng := newTestEngine(cfg, host)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	eng.BootstrapAllSlots(2)
	eng.PostEvent(adsc.SubscriptionsChanged())

	time.Sleep(100 * time.Millisecond)
	if n := host.switchCallCount(); n != 0 {
		t.Errorf("expected no switch calls with the feature disabled, got %d", n)
	}
}

// TestEngine_ValidationFailureTriggersBackoffRetry verifies spec.md §4.4:
// a validation failure schedules a retry and increments the failure counter
// up to max_validation_retries before giving up.
func TestEngine_ValidationFailureTriggersBackoffRetry(t *testing.T) {
	host := newFakeHost()
	setupTwoSlots(host)
	host.score[1] = 80

	cfg := testConfig()
	cfg.MaxValidationRetries = 1
	eng := newTestEngine(cfg, host)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	eng.BootstrapAllSlots(2)
	eng.PostEvent(adsc.SubscriptionsChanged())

	waitUntil(t, time.Second, func() bool { return host.switchCallCount() > 0 })
	eng.OnValidationFailed()

	waitUntil(t, time.Second, func() bool { return eng.GetValidationFailureCount() > 0 })
	if got := eng.GetValidationFailureCount(); got != 1 {
		t.Errorf("expected failure count 1, got %d", got)
	}
}

// TestBackoff_SaturatesToMaxBackoff verifies the overflow-safe saturation
// design note in spec.md §9.
func TestBackoff_SaturatesToMaxBackoff(t *testing.T) {
	cases := []struct {
		dwell time.Duration
		count int
	}{
		{time.Second, 100},
		{time.Hour, 5},
		{-1, 3},
	}
	for _, c := range cases {
		got := backoff(c.dwell, c.count)
		if got < 0 {
			t.Errorf("backoff(%s, %d) = %s, want non-negative", c.dwell, c.count, got)
		}
		if got > adsc.MaxBackoff {
			t.Errorf("backoff(%s, %d) = %s, want <= %s", c.dwell, c.count, got, adsc.MaxBackoff)
		}
	}
}

// TestBackoff_DoublesWithinRange verifies the shift doubles delay for small counts.
func TestBackoff_DoublesWithinRange(t *testing.T) {
	base := 10 * time.Millisecond
	if got := backoff(base, 0); got != base {
		t.Errorf("backoff(base, 0) = %s, want %s", got, base)
	}
	if got := backoff(base, 1); got != 2*base {
		t.Errorf("backoff(base, 1) = %s, want %s", got, 2*base)
	}
}
