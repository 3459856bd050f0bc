package adsc

import "time"

// Config is the immutable configuration read once at startup from the host
// (see pkg/config for the loader). A dwell of less than zero disables the
// entire feature (spec.md §3 invariant); a tolerance below zero disables
// RAT/signal-based switching while leaving service-based switching active.
type Config struct {
	// StabilityDwell is the time a favorable condition must persist before
	// ADSC asks the Switcher to act. Negative disables the feature entirely.
	StabilityDwell time.Duration
	// ScoreTolerance is the minimum score advantage required to prefer a
	// non-default slot on score alone. Negative disables score-based switching.
	ScoreTolerance int
	// RequirePing asks the Switcher to validate connectivity before acting.
	RequirePing bool
	// MaxValidationRetries bounds consecutive validation-failure retries.
	MaxValidationRetries int
	// AllowRoamingSwitch enables the UsableState-aware evaluation path
	// (Home > RoamingEnabled > NotUsable) instead of the legacy Home-only path.
	AllowRoamingSwitch bool
	// FeatureScoreBasedEnabled is the feature flag gating score-based
	// switching; combined with ScoreTolerance >= 0 by ScoreSwitchEnabled.
	FeatureScoreBasedEnabled bool
}

// ScoreSwitchEnabled reports whether score-based switching is active: the
// feature flag must be set and the tolerance must not be negative.
func (c Config) ScoreSwitchEnabled() bool {
	return c.FeatureScoreBasedEnabled && c.ScoreTolerance >= 0
}

// FeatureDisabled reports whether the whole engine is disabled.
func (c Config) FeatureDisabled() bool {
	return c.StabilityDwell < 0
}

// MaxBackoff caps exponential retry backoff (design note: "stability_dwell_ms
// << count may overflow for large retry counts; implementations must
// saturate to a safe maximum").
const MaxBackoff = time.Hour
