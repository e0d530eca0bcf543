// Package ingest is the tick transport boundary: it subscribes to a Redis
// Pub/Sub channel, decodes each message into a model.Tick, and hands it to
// the stream manager. Where ticks come from upstream of Redis is out of
// scope; this package is transport only and never writes tick or candle
// state back to Redis.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"candlestream/internal/model"
	"candlestream/internal/validate"
)

// TickSink is the subset of TickStreamManager this package depends on.
type TickSink interface {
	ProcessTick(tick model.Tick)
}

// Consumer subscribes to a Redis Pub/Sub channel carrying JSON-encoded
// ticks and feeds each decoded tick to a TickSink.
type Consumer struct {
	rdb     *redis.Client
	channel string
	sink    TickSink
	log     *slog.Logger

	onTick func() // test hook, called after each successfully decoded tick
}

// New creates a Consumer bound to the given Redis client and channel.
func New(rdb *redis.Client, channel string, sink TickSink, log *slog.Logger) *Consumer {
	return &Consumer{rdb: rdb, channel: channel, sink: sink, log: log}
}

// Run subscribes and routes decoded ticks to the sink until ctx is
// cancelled or the subscription closes.
func (c *Consumer) Run(ctx context.Context) {
	pubsub := c.rdb.Subscribe(ctx, c.channel)
	defer pubsub.Close()

	c.log.Info("ingest subscribed", "channel", c.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.handle(msg.Payload)
		}
	}
}

// handle decodes payload and forwards it to the sink, dropping ticks that
// fail the same price/size checks the REST boundary applies: a negative
// or non-finite price/size is rejected here rather than being allowed to
// corrupt aggregator state.
func (c *Consumer) handle(payload string) {
	var tick model.Tick
	if err := json.Unmarshal([]byte(payload), &tick); err != nil {
		c.log.Warn("ingest: dropping malformed tick payload", "error", err)
		return
	}
	if err := validate.Price(tick.Price); err != nil {
		c.log.Warn("ingest: dropping invalid tick", "symbol", tick.Symbol, "exchange", tick.Exchange, "error", err)
		return
	}
	if err := validate.Size(tick.Size); err != nil {
		c.log.Warn("ingest: dropping invalid tick", "symbol", tick.Symbol, "exchange", tick.Exchange, "error", err)
		return
	}
	c.sink.ProcessTick(tick)
	if c.onTick != nil {
		c.onTick()
	}
}
