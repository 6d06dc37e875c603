package bus

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultRedisPort = "6379"

// RedisSubscriber reads one pub/sub channel. go-redis delivers on ch from
// its own goroutine, so Next can also wait on ctx.
type RedisSubscriber struct {
	rdb    *redis.Client
	pubsub *redis.PubSub
	ch     <-chan *redis.Message
	topic  string
	closed atomic.Bool
	log    zerolog.Logger
}

func redisOptions(cfg Config) (*redis.Options, error) {
	addr, err := BrokerAddr(cfg.Broker, DefaultRedisPort)
	if err != nil {
		return nil, err
	}
	return &redis.Options{
		Addr:     addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.RedisDB,
	}, nil
}

// SubscribeRedis subscribes to cfg.Topic and waits for the server to confirm.
func SubscribeRedis(ctx context.Context, cfg Config, log zerolog.Logger) (*RedisSubscriber, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pubsub := rdb.Subscribe(ctx, cfg.Topic)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", cfg.Topic, err)
	}
	log.Info().Str("addr", opts.Addr).Str("topic", cfg.Topic).Msg("redis subscribed")
	return &RedisSubscriber{rdb: rdb, pubsub: pubsub, ch: pubsub.Channel(), topic: cfg.Topic, log: log}, nil
}

func (s *RedisSubscriber) Next(ctx context.Context) (Message, error) {
	if s.closed.Load() {
		return Message{}, ErrClosed
	}
	select {
	case msg, ok := <-s.ch:
		if !ok {
			if s.closed.Load() {
				return Message{}, ErrClosed
			}
			return Message{}, fmt.Errorf("redis receive %s: subscription ended", s.topic)
		}
		return Message{Topic: msg.Channel, Payload: []byte(msg.Payload)}, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (s *RedisSubscriber) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.pubsub.Close()
	if cerr := s.rdb.Close(); err == nil {
		err = cerr
	}
	return err
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(cfg Config) (*RedisPublisher, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisPublisher{rdb: redis.NewClient(opts)}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
