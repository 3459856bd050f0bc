// Package config loads adsc.Config from a flat UCI-style configuration file:
// a "config <type> '<name>' / option <key> '<value>'" text format, defaults
// applied before parsing, and a post-parse validate() pass.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sim-autonomy/adsc/pkg/adsc"
)

const sectionType = "adsc"

// Defaults, chosen per spec.md §3's suggested starting values.
const (
	DefaultStabilityDwell       = 10 * time.Second
	DefaultScoreTolerance       = 5
	DefaultMaxValidationRetries = 3
)

// Load reads path and returns a validated adsc.Config. A missing file yields
// the default configuration.
func Load(path string) (adsc.Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if err := parseFile(&cfg, path); err != nil {
		return adsc.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return adsc.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func defaults() adsc.Config {
	return adsc.Config{
		StabilityDwell:           DefaultStabilityDwell,
		ScoreTolerance:           DefaultScoreTolerance,
		RequirePing:              true,
		MaxValidationRetries:     DefaultMaxValidationRetries,
		AllowRoamingSwitch:       false,
		FeatureScoreBasedEnabled: true,
	}
}

// parseFile implements the "config <type> '<name>'" / "option <key>
// '<value>'" line format, restricted to the single section type this
// package understands.
func parseFile(cfg *adsc.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var inADSCSection bool

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "config ") {
			parts := strings.Fields(line)
			inADSCSection = len(parts) >= 2 && parts[1] == sectionType
			continue
		}

		if !inADSCSection || !strings.HasPrefix(line, "option ") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		option := parts[1]
		value := strings.Trim(strings.Join(parts[2:], " "), "'\"")

		if err := applyOption(cfg, option, value); err != nil {
			return fmt.Errorf("option %s: %w", option, err)
		}
	}

	return nil
}

func applyOption(cfg *adsc.Config, option, value string) error {
	switch option {
	case "stability_dwell_ms":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.StabilityDwell = time.Duration(ms) * time.Millisecond
	case "score_tolerance":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.ScoreTolerance = n
	case "require_ping":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.RequirePing = b
	case "max_validation_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.MaxValidationRetries = n
	case "allow_roaming_switch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.AllowRoamingSwitch = b
	case "feature_score_based_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.FeatureScoreBasedEnabled = b
	default:
		// Unknown options are ignored rather than rejected, for forward
		// compatibility with newer config files.
	}
	return nil
}

func validate(cfg adsc.Config) error {
	if cfg.MaxValidationRetries < 0 {
		return fmt.Errorf("max_validation_retries must be >= 0")
	}
	if cfg.StabilityDwell > adsc.MaxBackoff {
		return fmt.Errorf("stability_dwell_ms must not exceed %s", adsc.MaxBackoff)
	}
	return nil
}
