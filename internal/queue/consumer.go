package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Message is one message read from the mail stream.
type Message struct {
	ID  string  // Redis message ID (e.g., "1702000000000-0")
	Job MailJob // Parsed job payload
}

// Consumer defines the interface for consuming jobs from a stream.
type Consumer interface {
	// EnsureGroup creates the consumer group if it doesn't exist.
	// Should be called at worker startup.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read reads new messages from the stream for this consumer.
	// count: max messages to read per call
	// block: how long to block waiting for new messages (0 = forever)
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// Ack acknowledges that a message has been processed, removing it
	// from the consumer's pending list.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error

	// ReadPending reads messages delivered to this consumer but not yet
	// acknowledged. Used on startup to recover in-flight work after a
	// crash.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client *redis.Client
	log    *zap.Logger
}

// NewConsumer creates a new Consumer backed by Redis Streams.
func NewConsumer(client *redis.Client, log *zap.Logger) Consumer {
	return &RedisConsumer{client: client, log: log}
}

// EnsureGroup creates the consumer group with XGROUP CREATE MKSTREAM,
// which also creates the stream when missing. "0" makes the group see
// messages that were already on the stream.
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists.
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}

	c.log.Info("consumer group created",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

// Read reads new messages using XREADGROUP with the ">" cursor.
func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()

	if err == redis.Nil {
		// Timeout, no new messages.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	messages, malformed := c.parse(streams)
	c.ackMalformed(ctx, stream, group, malformed)
	return messages, nil
}

// Ack acknowledges messages using XACK.
func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

// ReadPending reads this consumer's unacknowledged messages by passing
// "0" instead of ">" to XREADGROUP.
func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
	}).Result()

	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup pending: %w", err)
	}

	messages, malformed := c.parse(streams)
	c.ackMalformed(ctx, stream, group, malformed)
	return messages, nil
}

// parse splits a read result into parseable jobs and the IDs of
// malformed entries. Malformed entries must still be acknowledged, or
// they sit in the pending list and get re-read on every restart.
func (c *RedisConsumer) parse(streams []redis.XStream) ([]Message, []string) {
	var messages []Message
	var malformed []string
	for _, s := range streams {
		for _, msg := range s.Messages {
			job, err := ParseMailJob(msg.Values)
			if err != nil {
				c.log.Warn("skipping malformed stream message",
					zap.String("msg_id", msg.ID),
					zap.Error(err))
				malformed = append(malformed, msg.ID)
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Job: job})
		}
	}
	return messages, malformed
}

func (c *RedisConsumer) ackMalformed(ctx context.Context, stream, group string, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := c.Ack(ctx, stream, group, ids...); err != nil {
		c.log.Error("ack malformed messages failed",
			zap.Strings("msg_ids", ids),
			zap.Error(err))
	}
}
