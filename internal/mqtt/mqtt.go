package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/bus"
)

const (
	qos             = 1
	disconnectQuiet = 250
	publishTimeout  = 5 * time.Second
	topicPrefix     = "tv/"
	topicSuffix     = "/modules"
)

// Topic is where changes to a screen's module list are announced.
func Topic(pin string) string {
	return topicPrefix + pin + topicSuffix
}

func pinFromTopic(topic string) (string, bool) {
	if !strings.HasPrefix(topic, topicPrefix) || !strings.HasSuffix(topic, topicSuffix) {
		return "", false
	}
	pin := strings.TrimSuffix(strings.TrimPrefix(topic, topicPrefix), topicSuffix)
	if pin == "" || strings.Contains(pin, "/") {
		return "", false
	}
	return pin, true
}

// Bus publishes screen changes to an MQTT broker and fans the broker's
// announcements back out to local subscribers, so displays running in other
// processes wake up without waiting for their next poll.
type Bus struct {
	client  paho.Client
	local   *bus.Local
	timeout time.Duration
}

var (
	_ bus.Notifier   = (*Bus)(nil)
	_ bus.Subscriber = (*Bus)(nil)
)

var connectHandler paho.OnConnectHandler = func(client paho.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler paho.ConnectionLostHandler = func(client paho.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Connect dials the broker and subscribes to every screen's topic.
func Connect(brokerURL, clientID string) (*Bus, error) {
	b := &Bus{local: bus.NewLocal(), timeout: publishTimeout}

	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetWriteTimeout(publishTimeout)
	opts.OnConnect = func(client paho.Client) {
		connectHandler(client)
		// subscriptions are lost on reconnect with a clean session
		if token := client.Subscribe(Topic("+"), qos, b.handle); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Msg("failed to subscribe to screen topics")
		}
	}
	opts.OnConnectionLost = connectLostHandler

	b.client = paho.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Info().Str("broker", brokerURL).Str("clientID", clientID).Msg("MQTT bus initialized")
	return b, nil
}

func (b *Bus) handle(_ paho.Client, msg paho.Message) {
	pin, ok := pinFromTopic(msg.Topic())
	if !ok {
		log.Debug().Str("topic", msg.Topic()).Msg("ignoring message on unexpected topic")
		return
	}
	_ = b.local.Notify(context.Background(), pin)
}

// Notify publishes a change hint for pin. While the broker is unreachable
// the publish is abandoned after the bus timeout; displays still pick the
// change up on their next poll.
func (b *Bus) Notify(ctx context.Context, pin string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	token := b.client.Publish(Topic(pin), qos, false, []byte(pin))
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to announce change for screen %s: %w", pin, err)
	}
	return nil
}

func (b *Bus) Subscribe(pin string) (<-chan struct{}, func()) {
	return b.local.Subscribe(pin)
}

func (b *Bus) Close() {
	b.client.Disconnect(disconnectQuiet)
	log.Info().Msg("MQTT bus disconnected")
}
