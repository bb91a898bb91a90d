// Package mqtt publishes per-step simulation snapshots to an MQTT broker
// for external visualization and reporting collaborators. The simulation
// core never imports this package; snapshots arrive over the event bus.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/mobilitylabs/evsim/core/sim"
	"github.com/mobilitylabs/evsim/infra/logger"
	"github.com/mobilitylabs/evsim/internal/eventbus"
)

// Config defines the connection parameters for the snapshot publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "evsim/snapshot"
	}
	if c.ClientID == "" {
		c.ClientID = "evsim-" + uuid.NewString()[:8]
	}
}

// Validate checks mandatory fields when publishing is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when publishing is enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

// SnapshotPublisher serialises snapshots to JSON and publishes them.
type SnapshotPublisher struct {
	cli   paho.Client
	topic string
	qos   byte
	log   logger.Logger
}

// NewSnapshotPublisher connects to the broker.
func NewSnapshotPublisher(cfg Config) (*SnapshotPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &SnapshotPublisher{
		cli:   cli,
		topic: cfg.Topic,
		qos:   cfg.QoS,
		log:   logger.New("mqtt-publisher"),
	}, nil
}

// Publish sends one snapshot. Errors are reported to the caller and never
// abort the simulation.
func (p *SnapshotPublisher) Publish(snap sim.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if token := p.cli.Publish(p.topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish snapshot: %w", token.Error())
	}
	return nil
}

// Listen consumes snapshots from the bus until the context is done or the
// bus closes. Publish failures are logged and skipped.
func (p *SnapshotPublisher) Listen(ctx context.Context, bus *eventbus.Bus[sim.Snapshot]) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			if err := p.Publish(snap); err != nil {
				p.log.Warnf("snapshot publish: %v", err)
			}
		}
	}
}

// Close disconnects from the broker.
func (p *SnapshotPublisher) Close() {
	p.cli.Disconnect(250)
}
