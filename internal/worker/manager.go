package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"waypost/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second
)

// Manager orchestrates worker goroutines that consume mail jobs from
// Redis Streams.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	log         *zap.Logger
	workerCount int
	batchSize   int64
	blockTime   time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// NewManager creates a new worker manager.
func NewManager(consumer queue.Consumer, handler *Handler, log *zap.Logger, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		log:         log,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
	}
}

// Start begins the worker goroutines. Call Stop to shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamMail, queue.ConsumerGroupMail); err != nil {
		return err
	}

	for i := 0; i < m.workerCount; i++ {
		consumerName := "worker-" + strconv.Itoa(i+1)

		m.wg.Add(1)
		go m.runWorker(consumerName)
	}

	m.log.Info("mail workers started",
		zap.Int("count", m.workerCount),
		zap.String("stream", queue.StreamMail),
		zap.String("group", queue.ConsumerGroupMail))
	return nil
}

// Stop shuts down all workers and blocks until they have finished.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.log.Info("mail workers stopped")
}

func (m *Manager) runWorker(consumerName string) {
	defer m.wg.Done()

	// Recover jobs that were in flight when a previous run died.
	m.processPending(consumerName)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
			m.processMessages(consumerName)
		}
	}
}

// processPending handles messages that were delivered but never
// acknowledged.
func (m *Manager) processPending(consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamMail, queue.ConsumerGroupMail, consumerName, m.batchSize)
		if err != nil {
			m.log.Error("read pending failed",
				zap.String("consumer", consumerName),
				zap.Error(err))
			return
		}

		if len(messages) == 0 {
			return
		}

		m.handleMessages(consumerName, messages)
	}
}

func (m *Manager) processMessages(consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamMail,
		queue.ConsumerGroupMail,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		m.log.Error("read failed",
			zap.String("consumer", consumerName),
			zap.Error(err))
		time.Sleep(time.Second) // Back off on error
		return
	}

	if len(messages) == 0 {
		return // Timeout, no messages
	}

	m.handleMessages(consumerName, messages)
}

// handleMessages processes a batch of jobs and acknowledges them.
// Messages are acked even when the handler fails, so a bad job cannot
// wedge the stream.
func (m *Manager) handleMessages(consumerName string, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleJob(m.ctx, msg.Job); err != nil {
			m.log.Error("job failed",
				zap.String("consumer", consumerName),
				zap.String("msg_id", msg.ID),
				zap.Error(err))
		}

		if err := m.consumer.Ack(m.ctx, queue.StreamMail, queue.ConsumerGroupMail, msg.ID); err != nil {
			m.log.Error("ack failed",
				zap.String("msg_id", msg.ID),
				zap.Error(err))
		}
	}
}
