package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/proneo/platform/internal/guard"
	"github.com/proneo/platform/internal/notify"
)

const fcmCircuitKey = "fcm"

// Multicaster sends one message to many tokens. *messaging.Client satisfies it.
type Multicaster interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMSender delivers pushes through Firebase Cloud Messaging with three
// attempts and doubling backoff, behind a circuit breaker.
type FCMSender struct {
	client   Multicaster
	breaker  *guard.CircuitBreaker
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

// NewFCMSender creates a sender.
func NewFCMSender(client Multicaster, breaker *guard.CircuitBreaker, logger *slog.Logger) *FCMSender {
	return &FCMSender{client: client, breaker: breaker, logger: logger, attempts: 3, backoff: 300 * time.Millisecond}
}

// Send implements notify.Sender.
func (s *FCMSender) Send(ctx context.Context, p notify.Push) error {
	if len(p.Tokens) == 0 {
		return nil
	}
	if res := s.breaker.Check(ctx, fcmCircuitKey); !res.Allowed {
		return errors.New(res.Reason)
	}

	msg := &messaging.MulticastMessage{
		Tokens:       p.Tokens,
		Notification: &messaging.Notification{Title: p.Title, Body: p.Body},
		Data:         p.Data,
	}

	var lastErr error
	backoff := s.backoff
	for attempt := 1; attempt <= s.attempts; attempt++ {
		resp, err := s.client.SendEachForMulticast(ctx, msg)
		if err == nil {
			s.breaker.RecordSuccess(fcmCircuitKey)
			if resp != nil && resp.FailureCount > 0 {
				s.logger.Warn("push partially delivered", "success", resp.SuccessCount, "failure", resp.FailureCount)
			}
			return nil
		}
		lastErr = err
		if attempt < s.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	s.breaker.RecordFailure(fcmCircuitKey)
	return fmt.Errorf("fcm multicast after %d attempts: %w", s.attempts, lastErr)
}
