// Package bus carries control messages from a pub/sub broker to the strip.
package bus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	KindMQTT  = "mqtt"
	KindRedis = "redis"

	DefaultMQTTPort = "1883"
)

var ErrClosed = errors.New("bus: closed")

// Message is one payload received on a topic.
type Message struct {
	Topic   string
	Payload []byte
}

type Subscriber interface {
	// Next blocks until a message arrives, ctx ends or the subscriber is closed.
	Next(ctx context.Context) (Message, error)
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

type Config struct {
	Kind     string
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	RedisDB  int
}

// Subscribe connects to the configured broker and subscribes to cfg.Topic.
func Subscribe(ctx context.Context, cfg Config, log zerolog.Logger) (Subscriber, error) {
	var (
		sub Subscriber
		err error
	)
	switch cfg.Kind {
	case KindMQTT, "":
		sub, err = SubscribeMQTT(ctx, cfg, log)
	case KindRedis:
		sub, err = SubscribeRedis(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown bus kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func NewPublisher(ctx context.Context, cfg Config, log zerolog.Logger) (Publisher, error) {
	var (
		pub Publisher
		err error
	)
	switch cfg.Kind {
	case KindMQTT, "":
		pub, err = DialMQTT(ctx, cfg, log)
	case KindRedis:
		pub, err = NewRedisPublisher(cfg)
	default:
		return nil, fmt.Errorf("unknown bus kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// BrokerAddr turns "mqtt://host[:port]/", "tcp://host:port" or a bare
// "host[:port]" into a dialable host:port.
func BrokerAddr(broker, defaultPort string) (string, error) {
	s := strings.TrimSpace(broker)
	if s == "" {
		return "", errors.New("empty broker address")
	}
	if !strings.Contains(s, "://") {
		s = "mqtt://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse broker %q: %w", broker, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("broker %q has no host", broker)
	}
	port := u.Port()
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(host, port), nil
}

// ClientID returns id, or a fresh "strangerlights-<uuid>" when id is empty.
func ClientID(id string) string {
	if id != "" {
		return id
	}
	return "strangerlights-" + uuid.NewString()
}
