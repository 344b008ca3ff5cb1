package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// MQTTPublisher publishes events as MQTT topics <prefix>/<type>.
// Dots in the configured prefix become topic levels.
type MQTTPublisher struct {
	broker   string
	prefix   string
	clientID string
	client   mqtt.Client
	logger   *utils.Logger

	mu        sync.RWMutex
	connected bool
	published uint64
	errors    uint64
}

// NewMQTTPublisher creates a publisher for broker (host:port)
func NewMQTTPublisher(broker, prefix, clientID string) *MQTTPublisher {
	return &MQTTPublisher{
		broker:   broker,
		prefix:   strings.ReplaceAll(prefix, ".", "/"),
		clientID: clientID,
		logger:   utils.NewLogger("events-mqtt"),
	}
}

// Connect establishes connection to the MQTT broker
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", p.broker))
	opts.SetClientID(p.clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		p.setConnected(true)
		p.logger.Info("MQTT connection established (broker %s)", p.broker)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		p.setConnected(false)
		p.logger.Warn("MQTT connection lost, will auto-reconnect: %v", err)
	}

	p.client = mqtt.NewClient(opts)

	p.logger.Info("Connecting to MQTT broker %s", p.broker)
	token := p.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	p.setConnected(true)
	return nil
}

// Topic returns the topic an event type is published on
func (p *MQTTPublisher) Topic(eventType string) string {
	return p.prefix + "/" + eventType
}

// Publish implements Publisher
func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	if !p.isConnected() {
		p.countError()
		return fmt.Errorf("mqtt not connected")
	}

	payload, err := encode(event)
	if err != nil {
		p.countError()
		return err
	}

	token := p.client.Publish(p.Topic(event.Type), 1, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		p.countError()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		p.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	p.mu.Lock()
	p.published++
	p.mu.Unlock()
	return nil
}

// Close disconnects from the broker
func (p *MQTTPublisher) Close() error {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		p.logger.Info("MQTT disconnected")
	}
	p.setConnected(false)
	return nil
}

func (p *MQTTPublisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

func (p *MQTTPublisher) isConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

func (p *MQTTPublisher) countError() {
	p.mu.Lock()
	p.errors++
	p.mu.Unlock()
}
