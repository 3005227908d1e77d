package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/infra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("audit consumer failed", "error", err)
		os.Exit(1)
	}
}

func topics() []string {
	types := []domain.EventType{
		domain.EventUserApproved,
		domain.EventUserRejected,
		domain.EventUserUpdated,
		domain.EventUserDeleted,
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, domain.OutboxDraft{EventType: t}.Topic())
	}
	return out
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topics(), cfg.AuditGroupID, cfg.KafkaEnabled, logger)
	defer consumer.Close()
	if !consumer.Enabled() {
		return errors.New("KAFKA_ENABLED must be true for the audit consumer")
	}

	logger.Info("audit consumer starting", "group", cfg.AuditGroupID)
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("audit consumer shutting down")
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		record(logger, msg)
	}
}

// record writes one audit line per user decision. Malformed messages are
// logged and skipped; the offset is already committed.
func record(logger *slog.Logger, msg infra.Message) {
	env, err := infra.DecodeEnvelope(msg.Value)
	if err != nil {
		logger.Warn("skipping malformed event", "topic", msg.Topic, "error", err)
		return
	}

	var d domain.UserDecision
	if err := json.Unmarshal(env.Payload, &d); err != nil {
		logger.Warn("skipping event with bad payload", "event_id", env.EventID, "error", err)
		return
	}

	logger.Info("user decision",
		"event_id", env.EventID,
		"event_type", env.EventType,
		"email", d.Email,
		"actor", d.Actor,
		"role", d.Role,
		"sport", d.Sport,
		"request_id", msg.Headers["request_id"],
		"occurred_at", env.OccurredAt,
	)
}
