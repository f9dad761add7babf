package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/kafka"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
)

// HandleOutbound consumes the outbound topic and performs the provider send.
// Delivery state is written back onto the Message row. The API's retry
// coordinator republishes failed rows, so the worker never retries on its
// own; doing both would double-count against the retry ceiling.
func HandleOutbound(broker string, ctx context.Context, sender whatsapp.Sender, logger *zap.Logger, messages *repositories.MessageRepository, tracer trace.Tracer) {
	topic := whatsapp.OutboundTopic
	c := kafka.NewConsumerFromEnv(topic, "sender")
	defer c.Close()

	logger.Info("Starting Kafka consumer", zap.String("topic", topic), zap.String("broker", broker))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down outbound consumer", zap.String("topic", topic))
			return
		default:
			m, err := c.ReadFromKafka(ctx)
			if err != nil {
				logger.Error("Error reading Kafka message", zap.String("topic", topic), zap.Error(err))
				continue
			}

			msgCtx := ctx
			if len(m.Headers) > 0 {
				carrier := make(map[string]string)
				for _, h := range m.Headers {
					carrier[h.Key] = string(h.Value)
				}
				msgCtx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(carrier))
			}

			sendCtx, span := tracer.Start(msgCtx, "handle-outbound")

			var msg whatsapp.Message
			if err := json.Unmarshal(m.Value, &msg); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to unmarshal outbound message")
				logger.Error("Failed to unmarshal outbound message",
					zap.ByteString("raw", m.Value),
					zap.Error(err),
				)
				span.End()
				continue
			}

			logger.Info("Kafka message received",
				zap.String("topic", topic),
				zap.ByteString("key", m.Key),
				zap.Int64("offset", m.Offset),
			)

			deliver(sendCtx, logger, sender, messages, msg, span)
			span.End()
		}
	}
}

func deliver(ctx context.Context, logger *zap.Logger, sender whatsapp.Sender, messages *repositories.MessageRepository, msg whatsapp.Message, span trace.Span) {
	apiTimer := prometheus.NewTimer(metrics.ExternalAPIDuration.WithLabelValues("twilio", "sender_worker"))
	err := sender.Send(ctx, msg)
	apiTimer.ObserveDuration()

	id, parseErr := uuid.Parse(msg.ID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider send failed")
		metrics.ExternalAPIFailureTotal.WithLabelValues("twilio", "sender_worker").Inc()
		logger.Warn("WhatsApp send failed", zap.String("to", msg.To), zap.Error(err))
		if parseErr == nil {
			// Every provider failure here counts against the retry ceiling.
			// The broker publish was the un-counted initial attempt; without
			// this the coordinator would republish forever.
			if dbErr := messages.MarkRetryFailed(id, err.Error()); dbErr != nil {
				logger.Error("Failed to record send failure", zap.String("message_id", msg.ID), zap.Error(dbErr))
			}
		}
		return
	}

	metrics.ExternalAPISuccessTotal.WithLabelValues("twilio", "sender_worker").Inc()
	if parseErr != nil {
		logger.Warn("Outbound message without a usable row ID", zap.String("message_id", msg.ID))
		return
	}
	if dbErr := messages.MarkSent(id); dbErr != nil {
		logger.Error("Failed to record delivery", zap.String("message_id", msg.ID), zap.Error(dbErr))
	}
}
