package whatsapp

import (
	"context"
	"encoding/json"

	segmentio "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/kafka"
)

// OutboundTopic carries messages handed off to the sender worker fleet when
// the gateway runs in kafka mode.
const OutboundTopic = "whatsapp.outbound"

// KafkaSender publishes outbound messages instead of calling the provider
// directly; a successful publish counts as submitted. The sender worker
// consumes the topic and performs the Twilio call.
type KafkaSender struct {
	Producer *kafka.Producer
}

func NewKafkaSender(p *kafka.Producer) *KafkaSender {
	return &KafkaSender{Producer: p}
}

func (k *KafkaSender) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Trace context rides in the message headers so the worker's span joins
	// the API's trace.
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]segmentio.Header, 0, len(carrier))
	for key, val := range carrier {
		headers = append(headers, segmentio.Header{Key: key, Value: []byte(val)})
	}

	return k.Producer.Publish(ctx, OutboundTopic, []byte(msg.To), value, headers...)
}
