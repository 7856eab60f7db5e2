package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/bakery_ledger/internal/config"
	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
)

// Consumer handles consuming events from core NATS subscriptions
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	subs   []*nats.Subscription
}

// NewConsumer creates a new NATS consumer
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("bakery-ledger-notifier"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infof("Connected to NATS at %s", cfg.NATS.URL)

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe subscribes to a NATS subject and processes messages
func (c *Consumer) Subscribe(subject string, handler func(data []byte) error) error {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		c.logger.Debugf("Received message on subject %s", subject)

		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", subject)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.subs = append(c.subs, sub)
	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Close unsubscribes and closes the NATS connection
func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// LoggingHandler logs a one-line summary of every ledger or catalog event
func LoggingHandler(log *logger.Logger) func(data []byte) error {
	return func(data []byte) error {
		var event domain.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("Failed to unmarshal event", err)
			return err
		}

		fields := map[string]interface{}{
			"event_type": event.EventType,
			"product_id": event.ProductID.String(),
			"timestamp":  event.Timestamp,
		}
		if event.Sale != nil {
			fields["sale_id"] = event.Sale.ID.String()
			fields["quantity"] = event.Sale.Quantity
			fields["total_amount"] = event.Sale.TotalAmount.StringFixed(2)
		}
		if event.Product != nil {
			fields["name"] = event.Product.Name
			fields["price"] = event.Product.Price.StringFixed(2)
			fields["total_stock"] = event.Product.TotalStock
		}

		log.WithFields(fields).Info("Received event")
		return nil
	}
}
