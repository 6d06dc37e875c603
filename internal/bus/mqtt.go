package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	mqtt "github.com/soypat/natiu-mqtt"
)

const (
	mqttBufSize = 4096
	queueSize   = 16
)

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// MQTTSubscriber holds one broker connection subscribed to a single topic.
// A read loop owns the connection and queues every publish it sees.
type MQTTSubscriber struct {
	client *mqtt.Client
	conn   net.Conn
	topic  string
	log    zerolog.Logger

	queue chan Message
	done  chan struct{}
	once  sync.Once
	err   error
	stop  func() bool
}

func dialMQTT(ctx context.Context, cfg Config, log zerolog.Logger, onPub func(mqtt.Header, mqtt.VariablesPublish, io.Reader) error) (*mqtt.Client, net.Conn, error) {
	addr, err := BrokerAddr(cfg.Broker, DefaultMQTTPort)
	if err != nil {
		return nil, nil, err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("mqtt dial %s: %w", addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, mqttBufSize)},
		OnPub:   onPub,
	})
	var varconn mqtt.VariablesConnect
	id := ClientID(cfg.ClientID)
	varconn.SetDefaultMQTT([]byte(id))
	varconn.KeepAlive = 0
	if cfg.Username != "" {
		varconn.Username = []byte(cfg.Username)
		if cfg.Password != "" {
			varconn.Password = []byte(cfg.Password)
		}
	}
	if err := client.Connect(ctx, conn, &varconn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("mqtt connect %s: %w", addr, err)
	}
	log.Info().Str("addr", addr).Str("client_id", id).Msg("mqtt connected")
	return client, conn, nil
}

// SubscribeMQTT connects to cfg.Broker and subscribes to cfg.Topic at QoS 0.
// Cancelling ctx closes the connection.
func SubscribeMQTT(ctx context.Context, cfg Config, log zerolog.Logger) (*MQTTSubscriber, error) {
	s := &MQTTSubscriber{
		topic: cfg.Topic,
		log:   log,
		queue: make(chan Message, queueSize),
		done:  make(chan struct{}),
	}
	client, conn, err := dialMQTT(ctx, cfg, log, s.onPub)
	if err != nil {
		return nil, err
	}
	s.client, s.conn = client, conn

	err = client.Subscribe(ctx, mqtt.VariablesSubscribe{
		PacketIdentifier: 1,
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(cfg.Topic), QoS: mqtt.QoS0},
		},
	})
	if err != nil {
		_ = client.Disconnect(err)
		_ = conn.Close()
		return nil, fmt.Errorf("mqtt subscribe %s: %w", cfg.Topic, err)
	}
	_ = conn.SetDeadline(time.Time{})
	log.Info().Str("topic", cfg.Topic).Msg("mqtt subscribed")

	s.stop = context.AfterFunc(ctx, func() { s.shutdown(ctx.Err()) })
	go s.readLoop()
	return s, nil
}

func (s *MQTTSubscriber) onPub(_ mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m := Message{Topic: string(varPub.TopicName), Payload: payload}
	select {
	case s.queue <- m:
	case <-s.done:
	}
	return nil
}

func (s *MQTTSubscriber) readLoop() {
	for {
		if err := s.client.HandleNext(); err != nil {
			s.shutdown(fmt.Errorf("mqtt read: %w", err))
			return
		}
		if !s.client.IsConnected() {
			s.shutdown(fmt.Errorf("mqtt disconnected: %w", s.client.Err()))
			return
		}
	}
}

// shutdown records the first cause and tears the connection down, which also
// unblocks the read loop.
func (s *MQTTSubscriber) shutdown(cause error) {
	s.once.Do(func() {
		s.err = cause
		close(s.done)
		_ = s.client.Disconnect(ErrClosed)
		_ = s.conn.Close()
	})
}

func (s *MQTTSubscriber) Next(ctx context.Context) (Message, error) {
	select {
	case m := <-s.queue:
		return m, nil
	default:
	}
	select {
	case m := <-s.queue:
		return m, nil
	case <-s.done:
		return Message{}, s.err
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (s *MQTTSubscriber) Close() error {
	if s.stop != nil {
		s.stop()
	}
	s.shutdown(ErrClosed)
	return nil
}

// MQTTPublisher sends QoS 0 publishes on its own connection.
type MQTTPublisher struct {
	mu     sync.Mutex
	client *mqtt.Client
	conn   net.Conn
	pkt    uint16
}

func DialMQTT(ctx context.Context, cfg Config, log zerolog.Logger) (*MQTTPublisher, error) {
	ignore := func(mqtt.Header, mqtt.VariablesPublish, io.Reader) error { return nil }
	client, conn, err := dialMQTT(ctx, cfg, log, ignore)
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return &MQTTPublisher{client: client, conn: conn}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		_ = p.conn.SetWriteDeadline(dl)
		defer p.conn.SetWriteDeadline(time.Time{})
	}
	p.pkt++
	err := p.client.PublishPayload(pubFlags, mqtt.VariablesPublish{
		TopicName:        []byte(topic),
		PacketIdentifier: p.pkt,
	}, payload)
	if err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.client.Disconnect(ErrClosed)
	if cerr := p.conn.Close(); err == nil && !errors.Is(cerr, net.ErrClosed) {
		err = cerr
	}
	return err
}
