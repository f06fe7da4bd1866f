package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"waypost/internal/mail"
)

// Job types for the mail stream
const (
	JobSendMail = "send_mail"
)

// Stream names
const (
	StreamMail = "stream:mail"
)

// Consumer group name for mail workers
const (
	ConsumerGroupMail = "mail_workers"
)

// MailJob is one unit of work on the mail stream: a message the worker
// pool should deliver over SMTP.
type MailJob struct {
	Type      string       `json:"type"`
	Timestamp int64        `json:"timestamp"`
	Message   mail.Message `json:"message"`
}

// NewMailJob wraps a message for publication to the mail stream.
func NewMailJob(msg mail.Message) MailJob {
	return MailJob{
		Type:      JobSendMail,
		Timestamp: time.Now().Unix(),
		Message:   msg,
	}
}

// ToMap converts the job to a map for Redis XADD. Streams store
// field-value pairs, so the payload is serialized as JSON in a "data"
// field.
func (j MailJob) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	return map[string]interface{}{
		"type": j.Type,
		"data": string(data),
	}, nil
}

// ParseMailJob parses a MailJob from Redis stream message values.
func ParseMailJob(values map[string]interface{}) (MailJob, error) {
	data, ok := values["data"].(string)
	if !ok {
		return MailJob{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var job MailJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return MailJob{}, fmt.Errorf("unmarshal job: %w", err)
	}
	return job, nil
}
