package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/roletrack/config"
	"example.com/roletrack/internal/tracing"
)

// MessageHandler processes one received message. Returning an error
// abandons the message for redelivery.
type MessageHandler func(ctx context.Context, message *azservicebus.ReceivedMessage, txn *newrelic.Transaction) error

// AzureServiceBus wraps the import queue the parsing subsystem posts
// event-creation requests to.
type AzureServiceBus struct {
	client    *azservicebus.Client
	queueName string
	tracer    tracing.Tracer
}

// NewAzureServiceBus creates a new Azure Service Bus wrapper
func NewAzureServiceBus(cfg config.AzureConfig, tracer tracing.Tracer) (*AzureServiceBus, error) {
	if cfg.QueueConnStr == "" {
		return nil, errors.New("Azure Service Bus connection string is empty")
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.QueueConnStr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}

	if tracer == nil {
		tracer = tracing.Noop()
	}

	return &AzureServiceBus{
		client:    client,
		queueName: cfg.QueueName,
		tracer:    tracer,
	}, nil
}

// SendMessage sends a message to the import queue
func (b *AzureServiceBus) SendMessage(ctx context.Context, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message body")
	}

	sender, err := b.client.NewSender(b.queueName, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create Service Bus sender")
	}
	defer sender.Close(ctx)

	msg := &azservicebus.Message{
		Body: data,
		ApplicationProperties: map[string]interface{}{
			"time": time.Now().UTC().Format(time.RFC3339),
		},
	}

	return sender.SendMessage(ctx, msg, nil)
}

// ProcessMessages receives from the queue until the context is
// cancelled, dispatching each message to the handler. Handled messages
// are completed; failed ones are abandoned for redelivery.
func (b *AzureServiceBus) ProcessMessages(ctx context.Context, handler MessageHandler) error {
	receiver, err := b.client.NewReceiverForQueue(b.queueName, &azservicebus.ReceiverOptions{
		ReceiveMode: azservicebus.ReceiveModePeekLock,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create Service Bus receiver")
	}
	defer receiver.Close(context.Background())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		messages, err := receiver.ReceiveMessages(ctx, 10, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("Failed to receive messages, retrying")
			time.Sleep(5 * time.Second)
			continue
		}

		for _, message := range messages {
			txn := b.tracer.StartTransaction("process-import-message")

			if err := handler(ctx, message, txn); err != nil {
				log.Error().Err(err).Str("message_id", message.MessageID).Msg("Failed to process message")
				b.tracer.RecordError(txn, err)
				if abandonErr := receiver.AbandonMessage(ctx, message, nil); abandonErr != nil {
					log.Error().Err(abandonErr).Msg("Failed to abandon message")
				}
				b.tracer.EndTransaction(txn)
				continue
			}

			if err := receiver.CompleteMessage(ctx, message, nil); err != nil {
				log.Error().Err(err).Str("message_id", message.MessageID).Msg("Failed to complete message")
			}
			b.tracer.EndTransaction(txn)
		}
	}
}

// Close closes the Service Bus client
func (b *AzureServiceBus) Close() error {
	if b.client != nil {
		return b.client.Close(context.Background())
	}
	return nil
}
