package worker

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"waypost/internal/mail"
	"waypost/internal/queue"
)

type mockSender struct {
	sendFn func(ctx context.Context, msg mail.Message) error

	sent []mail.Message
}

func (m *mockSender) Send(ctx context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return nil
}

func TestHandleJob_SendMail(t *testing.T) {
	sender := &mockSender{}
	h := NewHandler(sender, zap.NewNop())

	job := queue.NewMailJob(mail.Message{
		To:      "alice@example.com",
		Subject: "Confirm your email address",
		Body:    "follow the link",
	})
	if err := h.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("HandleJob() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if sender.sent[0].To != "alice@example.com" {
		t.Errorf("To = %q, want alice@example.com", sender.sent[0].To)
	}
}

func TestHandleJob_SendFailure(t *testing.T) {
	wantErr := errors.New("smtp unreachable")
	sender := &mockSender{
		sendFn: func(ctx context.Context, msg mail.Message) error { return wantErr },
	}
	h := NewHandler(sender, zap.NewNop())

	err := h.HandleJob(context.Background(), queue.NewMailJob(mail.Message{To: "x@y.z"}))
	if !errors.Is(err, wantErr) {
		t.Errorf("HandleJob() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestHandleJob_UnknownType(t *testing.T) {
	sender := &mockSender{}
	h := NewHandler(sender, zap.NewNop())

	err := h.HandleJob(context.Background(), queue.MailJob{Type: "reindex"})
	if err == nil {
		t.Fatal("expected an error for an unknown job type")
	}
	if len(sender.sent) != 0 {
		t.Error("nothing should be sent for an unknown job type")
	}
}
