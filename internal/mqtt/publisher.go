package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"surfscout/internal/windfield"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher announces completed wind-field interpolations to an MQTT broker
// so frontends can refresh without polling. Disabled publishers are valid
// and turn every call into a no-op.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
	}, nil
}

// NotifyInterpolated publishes a summary of a freshly persisted interpolated
// field on <prefix>/windfields/<sessionID>. Failures are logged, never
// surfaced: by the time this runs, the data is already committed.
func (p *Publisher) NotifyInterpolated(field windfield.Interpolated) {
	if !p.enabled {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"session_id":       field.SessionID,
		"date":             field.DateString(),
		"timestamp":        field.ClockString(),
		"cell_size_meters": field.CellSizeMeters,
		"cell_count":       len(field.Cells),
	})
	if err != nil {
		log.Printf("Failed to marshal wind field notification: %v", err)
		return
	}

	topic := fmt.Sprintf("%s/windfields/%d", p.topicPrefix, field.SessionID)
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("Failed to publish to %s: %v", topic, token.Error())
	}
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
