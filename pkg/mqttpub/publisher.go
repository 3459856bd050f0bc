// Package mqttpub publishes ADSC's per-slot state and decision outcomes to
// MQTT: connect/reconnect handling, a small publish-rate limiter, JSON
// payloads, a configurable topic prefix. This is a pure side-effect sink:
// nothing it does re-enters the evaluation engine.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/sim-autonomy/adsc/pkg/logx"
)

// Config holds MQTT broker connection settings.
type Config struct {
	Broker      string
	Port        int
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         int
	Retain      bool
	Enabled     bool
}

// DefaultConfig returns the out-of-the-box MQTT configuration: disabled.
func DefaultConfig() Config {
	return Config{
		Broker:      "localhost",
		Port:        1883,
		ClientID:    "adscd",
		TopicPrefix: "adsc",
		QoS:         1,
		Retain:      true,
		Enabled:     false,
	}
}

// rateLimiter caps outbound publishes to maxMessages per windowSize, a
// simple fixed-window token bucket.
type rateLimiter struct {
	mu          sync.Mutex
	maxMessages int
	windowSize  time.Duration
	count       int
	windowStart time.Time
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.windowStart) > rl.windowSize {
		rl.windowStart = now
		rl.count = 0
	}
	if rl.count >= rl.maxMessages {
		return false
	}
	rl.count++
	return true
}

// Publisher publishes ADSC state and decision events to MQTT.
type Publisher struct {
	client  MQTT.Client
	logger  *logx.Logger
	config  Config
	limiter *rateLimiter

	connected bool
}

// New creates a Publisher. Connect must be called before publishing.
func New(config Config, logger *logx.Logger) *Publisher {
	return &Publisher{
		logger:  logger,
		config:  config,
		limiter: &rateLimiter{maxMessages: 10, windowSize: time.Second, windowStart: time.Now()},
	}
}

// Connect establishes the broker connection. A no-op if disabled.
func (p *Publisher) Connect() error {
	if !p.config.Enabled {
		p.logger.Debug("mqtt publisher disabled")
		return nil
	}

	opts := MQTT.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", p.config.Broker, p.config.Port))
	opts.SetClientID(p.config.ClientID)
	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
		opts.SetPassword(p.config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(MQTT.Client) {
		p.connected = true
		p.logger.Info("mqtt publisher connected", "broker", p.config.Broker, "port", p.config.Port)
	})
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		p.connected = false
		p.logger.Warn("mqtt publisher connection lost", "error", err)
	})

	p.client = MQTT.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect mqtt broker: %w", token.Error())
	}
	return nil
}

// Disconnect closes the broker connection, if any.
func (p *Publisher) Disconnect() {
	if p.client != nil && p.connected {
		p.client.Disconnect(250)
		p.connected = false
	}
}

// SlotState is the per-slot telemetry payload published to
// "<prefix>/<slot>/state".
type SlotState struct {
	Slot      int    `json:"slot"`
	RegState  string `json:"reg_state"`
	Usable    string `json:"usable"`
	Score     int    `json:"score"`
	Listening bool   `json:"listening"`
}

// PublishSlotState publishes a per-slot snapshot.
func (p *Publisher) PublishSlotState(s SlotState) {
	p.publishJSON(fmt.Sprintf("%s/%d/state", p.config.TopicPrefix, s.Slot), s)
}

// Decision is the payload published to "<prefix>/decision" for every
// evaluation outcome.
type Decision struct {
	Reason         string `json:"reason"`
	DefaultSlot    int    `json:"default_slot"`
	Candidate      int    `json:"candidate"`
	Armed          bool   `json:"armed"`
	NeedValidation bool   `json:"need_validation"`
}

// PublishDecision publishes an evaluation outcome.
func (p *Publisher) PublishDecision(d Decision) {
	p.publishJSON(fmt.Sprintf("%s/decision", p.config.TopicPrefix), d)
}

func (p *Publisher) publishJSON(topic string, payload interface{}) {
	if !p.config.Enabled || !p.connected {
		return
	}
	if !p.limiter.allow() {
		p.logger.Debug("mqtt publish rate-limited, dropping", "topic", topic)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal mqtt payload", "error", err, "topic", topic)
		return
	}

	token := p.client.Publish(topic, byte(p.config.QoS), p.config.Retain, data)
	token.Wait()
	if err := token.Error(); err != nil {
		p.logger.Error("failed to publish mqtt message", "error", err, "topic", topic)
	}
}
