package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"delivery-dispatch/internal/logx"
)

// HandleFunc processes a single OrderAcceptedEvent.
type HandleFunc func(context.Context, OrderAcceptedEvent) error

// Consumer wraps a Sarama consumer group and dispatches order events to a
// handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
	logger  logx.Logger
}

// NewConsumer creates a new Kafka consumer. Returns nil (and no error) when
// Kafka is not configured; the worker then runs on the outbox poller alone.
func NewConsumer(brokers []string, groupID, topic string, h HandleFunc, logger logx.Logger) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}, nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, &groupHandler{c: c, ctx: ctx}); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("kafka consume error", logx.Err(err))
			time.Sleep(time.Second)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close shuts the consumer group down.
func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	c   *Consumer
	ctx context.Context
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim decodes and handles messages from one partition claim.
// Undecodable messages are marked and skipped; handler errors leave the
// message unmarked so it is redelivered.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var event OrderAcceptedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.c.logger.Warn("kafka message decode failed",
				logx.Int64("offset", msg.Offset),
				logx.Err(err),
			)
			session.MarkMessage(msg, "")
			continue
		}
		if err := h.c.handler(h.ctx, event); err != nil {
			h.c.logger.Error("order event handling failed",
				logx.Int64("order_id", event.OrderID),
				logx.Err(err),
			)
			continue
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
