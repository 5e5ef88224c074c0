// Package substratemqtt implements substrate.HeaderSubscription over an
// MQTT topic that a node-side bridge publishes new block headers to — an
// alternative push transport to substratews for deployments that already
// run an MQTT broker for fan-out (edge agents, constrained links) and want
// one subscription serving many consumers instead of one WebSocket per
// consumer.
package substratemqtt

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/clawinfra/substrate"
)

// Client is the MQTT operations substratemqtt needs, mirroring this
// codebase's injectable-client seam so tests can substitute a fake broker.
type Client interface {
	Connect() mqtt.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
	IsConnected() bool
}

// pahoClient wraps a real paho.mqtt.golang client to satisfy Client.
type pahoClient struct {
	inner mqtt.Client
}

// NewPahoClient connects to an MQTT broker at brokerURL and returns a
// Client backed by it.
func NewPahoClient(brokerURL, clientID string) (Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(brokerURL).SetClientID(clientID).SetAutoReconnect(true)
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("substratemqtt: connect %s: %w", brokerURL, token.Error())
	}
	return &pahoClient{inner: c}, nil
}

func (p *pahoClient) Connect() mqtt.Token                                          { return p.inner.Connect() }
func (p *pahoClient) Disconnect(quiesce uint)                                      { p.inner.Disconnect(quiesce) }
func (p *pahoClient) IsConnected() bool                                            { return p.inner.IsConnected() }
func (p *pahoClient) Subscribe(topic string, qos byte, cb mqtt.MessageHandler) mqtt.Token {
	return p.inner.Subscribe(topic, qos, cb)
}
func (p *pahoClient) Unsubscribe(topics ...string) mqtt.Token {
	return p.inner.Unsubscribe(topics...)
}

type wireHeader struct {
	ParentHash     string   `json:"parentHash"`
	Number         uint64   `json:"number"`
	StateRoot      string   `json:"stateRoot"`
	ExtrinsicsRoot string   `json:"extrinsicsRoot"`
	DigestLogs     []string `json:"digestLogs"`
}

// HeaderSource subscribes to one MQTT topic carrying JSON-encoded headers
// and exposes them as a substrate.HeaderSubscription.
type HeaderSource struct {
	client Client
	topic  string

	headers chan substrate.Header
	errs    chan error
}

// Subscribe subscribes to topic on client and starts buffering headers
// published to it.
func Subscribe(client Client, topic string, qos byte) (*HeaderSource, error) {
	hs := &HeaderSource{
		client:  client,
		topic:   topic,
		headers: make(chan substrate.Header, 64),
		errs:    make(chan error, 1),
	}

	token := client.Subscribe(topic, qos, hs.onMessage)
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("substratemqtt: subscribe %s: %w", topic, token.Error())
	}
	return hs, nil
}

func (hs *HeaderSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	var w wireHeader
	if err := json.Unmarshal(msg.Payload(), &w); err != nil {
		hs.fail(fmt.Errorf("substratemqtt: decode header payload: %w", err))
		return
	}

	hdr, err := w.decode()
	if err != nil {
		hs.fail(fmt.Errorf("substratemqtt: %w", err))
		return
	}

	select {
	case hs.headers <- hdr:
	default:
		// Slow consumer: drop rather than block paho's delivery goroutine.
	}
}

func (w wireHeader) decode() (substrate.Header, error) {
	parent, err := decodeHexHash(w.ParentHash)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("parentHash: %w", err)
	}
	stateRoot, err := decodeHexHash(w.StateRoot)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("stateRoot: %w", err)
	}
	extrinsicsRoot, err := decodeHexHash(w.ExtrinsicsRoot)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("extrinsicsRoot: %w", err)
	}
	digest, err := json.Marshal(w.DigestLogs)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("digestLogs: %w", err)
	}
	return substrate.Header{
		ParentHash:     parent,
		Number:         w.Number,
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
		Digest:         digest,
	}, nil
}

func (hs *HeaderSource) fail(err error) {
	select {
	case hs.errs <- err:
	default:
	}
}

// Next implements substrate.HeaderSubscription.
func (hs *HeaderSource) Next(ctx context.Context) (substrate.Header, error) {
	select {
	case h := <-hs.headers:
		return h, nil
	case err := <-hs.errs:
		return substrate.Header{}, err
	case <-ctx.Done():
		return substrate.Header{}, ctx.Err()
	}
}

// Close unsubscribes from the topic.
func (hs *HeaderSource) Close() error {
	token := hs.client.Unsubscribe(hs.topic)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("substratemqtt: unsubscribe %s: %w", hs.topic, token.Error())
	}
	return nil
}
