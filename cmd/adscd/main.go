// Command adscd runs the Auto Data Switch Controller evaluation engine as a
// standalone daemon: flag parsing, a PID-file single-instance guard,
// structured logging, signal handling, and a set of optional side-effect
// collaborators wired up around a central engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sim-autonomy/adsc/internal/demohost"
	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/audit"
	adscconfig "github.com/sim-autonomy/adsc/pkg/config"
	"github.com/sim-autonomy/adsc/pkg/debugserver"
	"github.com/sim-autonomy/adsc/pkg/engine"
	"github.com/sim-autonomy/adsc/pkg/logx"
	"github.com/sim-autonomy/adsc/pkg/metrics"
	"github.com/sim-autonomy/adsc/pkg/mqttpub"
)

var (
	configPath  = flag.String("config", "/etc/adsc/adsc.conf", "Path to the ADSC configuration file")
	pidPath     = flag.String("pid-file", "/tmp/adscd.pid", "Path to the PID file")
	logLevel    = flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	debugAddr   = flag.String("debug-addr", "127.0.0.1:9180", "Listen address for the debug/control HTTP server")
	debugAuth   = flag.String("debug-auth-key", "", "Bearer key required on the debug/control HTTP server (empty disables auth)")
	auditDBPath = flag.String("audit-db", "/var/lib/adsc/audit.db", "Path to the SQLite decision audit trail")
	metricsAddr = flag.String("metrics-addr", "127.0.0.1:9181", "Listen address for the Prometheus /metrics endpoint")
	force       = flag.Bool("force", false, "Force start by removing a stale PID file")
	version     = flag.Bool("version", false, "Show version information")
)

const (
	appName    = "adscd"
	appVersion = "1.0.0"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		return
	}

	logger := logx.NewLogger(*logLevel, appName)

	pf := newPIDGuard(*pidPath, *force, logger)
	if pf == nil {
		os.Exit(1)
	}
	defer pf.Remove()

	cfg, err := adscconfig.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		"stability_dwell", cfg.StabilityDwell, "score_tolerance", cfg.ScoreTolerance,
		"allow_roaming_switch", cfg.AllowRoamingSwitch)

	trail, err := audit.Open(*auditDBPath, logger)
	if err != nil {
		logger.Error("failed to open audit trail", "error", err, "path", *auditDBPath)
		os.Exit(1)
	}
	defer trail.Close()

	metricsReg := metrics.New()

	publisher := mqttpub.New(mqttpub.DefaultConfig(), logger)
	if err := publisher.Connect(); err != nil {
		logger.Warn("mqtt publisher connect failed, continuing without it", "error", err)
	}
	defer publisher.Disconnect()

	host := demohost.New(logger, demoFixtures())

	eng := engine.New(cfg, logger, host, host, host)
	eng.SetObserver(&fanoutObserver{trail: trail, metrics: metricsReg, publisher: publisher})
	host.SetSwitchPerformedCallback(eng.NotifySwitchPerformed)

	debugSrv, err := debugserver.New(eng, logger, *debugAuth)
	if err != nil {
		logger.Error("failed to initialize debug server", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := http.ListenAndServe(*debugAddr, debugSrv.Handler()); err != nil {
			logger.Error("debug server stopped", "error", err)
		}
	}()
	go func() {
		if err := http.ListenAndServe(*metricsAddr, metricsReg.Handler()); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	eng.BootstrapAllSlots(len(demoFixtures()))
	go eng.Run(ctx)
	eng.PostEvent(adsc.SubscriptionsChanged())

	logger.Info("adscd started", "version", appVersion, "pid", os.Getpid())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received shutdown signal", "signal", sig.String())

	cancel()
}

func demoFixtures() map[adsc.SlotId]*demohost.SlotFixture {
	return map[adsc.SlotId]*demohost.SlotFixture{
		0: {
			SubID: 0, RegState: adsc.Home,
			Display: adsc.DisplayInfo{NetworkType: "LTE"},
			Signal:  adsc.SignalStrength{Level: 3, RSRP: -95},
			UserDataOn: true, DataAllowedVal: true, Visible: true,
		},
		1: {
			SubID: 1, RegState: adsc.Roaming,
			Display: adsc.DisplayInfo{NetworkType: "LTE"},
			Signal:  adsc.SignalStrength{Level: 4, RSRP: -85},
			UserDataOn: true, DataAllowedVal: true, Visible: true,
		},
	}
}
