// Package email queues member notifications in Redis and delivers them over
// SMTP from a background worker.
package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"fitclub/internal/booking"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"
	maxTries  = 3

	TypeClassCancelled   = "class_cancelled"
	TypeSessionScheduled = "session_scheduled"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Sender delivers one message.
type Sender interface {
	SendMail(job Job) error
}

type SMTPConfig struct {
	From     string
	FromName string
	Host     string
	Port     string
	User     string
	Pass     string
}

type smtpSender struct {
	cfg SMTPConfig
}

func (s smtpSender) SendMail(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.cfg.User != "" && s.cfg.Pass != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	addr := s.cfg.Host + ":" + s.cfg.Port
	return smtp.SendMail(addr, auth, s.cfg.From, []string{job.To}, []byte(message))
}

type Service struct {
	redis      redis.Cmdable
	sender     Sender
	pollWait   time.Duration
	retryDelay time.Duration
}

func New(client redis.Cmdable, cfg SMTPConfig) *Service {
	return &Service{
		redis:      client,
		sender:     smtpSender{cfg: cfg},
		pollWait:   2 * time.Second,
		retryDelay: 5 * time.Second,
	}
}

func (s *Service) Send(ctx context.Context, emailType, to, name, subject, body string) error {
	job := Job{
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Error("failed to marshal email job", "error", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Error("failed to queue email", "to", to, "error", err)
		metrics.RecordEmail(emailType, "queue_failed")
		return err
	}

	metrics.RecordEmail(emailType, "queued")
	logger.Info("email queued", "type", emailType, "to", to)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, s.pollWait, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warn("email queue poll failed", "error", err)
		}
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad email job", "error", err)
		return
	}

	job.Tries++
	if err := s.sender.SendMail(job); err != nil {
		logger.Error("failed to send email", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			s.retry(ctx, job)
		} else {
			s.saveFailed(ctx, job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Info("email sent", "type", job.Type, "to", job.To)
}

func (s *Service) retry(ctx context.Context, job Job) {
	select {
	case <-ctx.Done():
	case <-time.After(s.retryDelay):
	}

	data, _ := json.Marshal(job)
	// ctx may already be cancelled; the job must still go back on the queue.
	if err := s.redis.LPush(context.WithoutCancel(ctx), queueKey, data).Err(); err != nil {
		logger.Error("failed to requeue email", "to", job.To, "error", err)
		return
	}
	metrics.RecordEmail(job.Type, "retried")
}

func (s *Service) saveFailed(ctx context.Context, job Job, sendErr error) {
	failed := map[string]any{
		"job":   job,
		"error": sendErr.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	if err := s.redis.LPush(context.WithoutCancel(ctx), failedKey, data).Err(); err != nil {
		logger.Error("failed to park email", "to", job.To, "error", err)
	}
	metrics.RecordEmail(job.Type, "failed")
	logger.Error("email moved to failed queue", "to", job.To, "tries", job.Tries)
}

// QueueLength reports pending jobs and mirrors the value into the queue gauge.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		logger.Warn("failed to read email queue length", "error", err)
		return 0
	}
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *Service) NotifyClassCancelled(ctx context.Context, class booking.GroupClass, recipients []booking.Contact) error {
	subject := "Class Cancelled - " + class.ClassName
	var errs []error
	for _, r := range recipients {
		body := fmt.Sprintf(`Hi %s,

Unfortunately the following class has been cancelled:

Class: %s
Date: %s
Time: %s

Your registration has been removed. We hope to see you at another class soon.

- FitClub Team`, r.Name, class.ClassName, class.ScheduledDate, class.Slot())

		if err := s.Send(ctx, TypeClassCancelled, r.Email, r.Name, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", r.Email, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) NotifySessionScheduled(ctx context.Context, session booking.PTSession, member booking.Contact) error {
	subject := "PT Session Confirmed"
	body := fmt.Sprintf(`Hi %s,

Your personal training session is booked!

Date: %s
Time: %s

See you at the gym!

- FitClub Team`, member.Name, session.ScheduledDate, session.Slot())

	return s.Send(ctx, TypeSessionScheduled, member.Email, member.Name, subject, body)
}

var _ booking.Notifier = (*Service)(nil)
