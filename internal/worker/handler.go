package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"waypost/internal/mail"
	"waypost/internal/queue"
)

// Handler processes mail jobs from the stream.
type Handler struct {
	sender mail.Sender
	log    *zap.Logger
}

// NewHandler creates a new job handler delivering through sender.
func NewHandler(sender mail.Sender, log *zap.Logger) *Handler {
	return &Handler{sender: sender, log: log}
}

// HandleJob routes a job to the appropriate handler based on type.
func (h *Handler) HandleJob(ctx context.Context, job queue.MailJob) error {
	switch job.Type {
	case queue.JobSendMail:
		return h.handleSendMail(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (h *Handler) handleSendMail(ctx context.Context, job queue.MailJob) error {
	if err := h.sender.Send(ctx, job.Message); err != nil {
		return fmt.Errorf("send mail to %s: %w", job.Message.To, err)
	}

	h.log.Info("mail sent",
		zap.String("to", job.Message.To),
		zap.String("subject", job.Message.Subject))
	return nil
}
