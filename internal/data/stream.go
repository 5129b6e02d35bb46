package data

import (
	"context"
	"errors"
	"fmt"

	"ServiceDesk/internal/conf"
	"ServiceDesk/internal/event"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

// StreamField is the stream entry field holding the serialized event.
const StreamField = "data"

var errStreamClientNil = errors.New("stream: redis client is nil")

// StreamSender appends events to Redis streams with XADD.
type StreamSender struct {
	rdb    *redis.Client
	maxLen int64
}

// NewStreamSender creates a Redis stream sender. maxLen caps each stream
// approximately; zero leaves streams unbounded.
func NewStreamSender(rdb *redis.Client, maxLen int64) *StreamSender {
	return &StreamSender{rdb: rdb, maxLen: maxLen}
}

// Send implements event.Sender and returns the stream entry id.
func (s *StreamSender) Send(ctx context.Context, channel string, payload []byte) (string, error) {
	if s.rdb == nil {
		return "", errStreamClientNil
	}

	args := &redis.XAddArgs{
		Stream: channel,
		Values: map[string]interface{}{StreamField: payload},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	id, err := s.rdb.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("stream: xadd %s: %w", channel, err)
	}
	return id, nil
}

// NewEventSender selects the event backend named in the configuration.
func NewEventSender(c *conf.Events, rdb *redis.Client, logger log.Logger) (event.Sender, func(), error) {
	helper := log.NewHelper(log.With(logger, "module", "data/events"))

	switch c.Backend {
	case conf.EventBackendKafka:
		sender := NewKafkaSender(c.KafkaBrokers)
		helper.Infow("msg", "event backend selected", "backend", c.Backend, "brokers", c.KafkaBrokers)
		cleanup := func() {
			if err := sender.Close(); err != nil {
				helper.Warnw("msg", "failed to close kafka writer", "error", err)
			}
		}
		return sender, cleanup, nil
	case conf.EventBackendRedis, "":
		if rdb == nil {
			helper.Warnw("msg", "redis client is nil, events will fail until it is configured")
		}
		helper.Infow("msg", "event backend selected", "backend", conf.EventBackendRedis, "max_len", c.StreamMaxLen)
		return NewStreamSender(rdb, c.StreamMaxLen), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown event backend %q", c.Backend)
	}
}
