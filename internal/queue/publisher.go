package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"waypost/internal/mail"
)

// Publisher defines the interface for publishing jobs to a stream.
type Publisher interface {
	// Publish adds a job to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, job MailJob) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams. It also
// satisfies mail.Dispatcher: Dispatch drops jobs on failure instead of
// surfacing the error, so account flows never fail on the mail sink.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

// Publish adds a job to the stream using XADD.
// Uses "*" for auto-generated message ID (timestamp-sequence).
func (p *RedisPublisher) Publish(ctx context.Context, stream string, job MailJob) (string, error) {
	values, err := job.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize job: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	return messageID, nil
}

// Dispatch enqueues a message for delivery by the worker pool.
// Implements mail.Dispatcher.
func (p *RedisPublisher) Dispatch(ctx context.Context, msg mail.Message) {
	messageID, err := p.Publish(ctx, StreamMail, NewMailJob(msg))
	if err != nil {
		p.log.Error("mail dispatch failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return
	}

	p.log.Info("mail dispatched",
		zap.String("to", msg.To),
		zap.String("msg_id", messageID))
}
