// Package changefeed fans record mutations out over AMQP so peer instances
// sharing a database can refresh their live subscriptions.
package changefeed

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

const queueName = "record_events"

// Event describes one record mutation.
type Event struct {
	Op       string `json:"op"` // "create", "update" or "delete"
	Kind     string `json:"kind"`
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	RecordID string `json:"recordId"`
}

// Client holds the AMQP connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds connection details.
type Config struct {
	URL string
}

// NewClient connects and declares the record events queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", queueName, err)
	}

	log.Printf("Change feed connected, %s declared.", queueName)
	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing change feed client: %v", errs)
	}
	return nil
}

// Publish sends one record mutation event.
func (c *Client) Publish(ev Event) error {
	if c.channel == nil {
		return fmt.Errorf("change feed channel is not available")
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.Publish(
		"",        // exchange: default
		queueName, // routing key: the queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Consume delivers incoming events to the handler until the channel closes.
// A handler error nacks and requeues the message.
func (c *Client) Consume(handler func(Event) error) error {
	if c.channel == nil {
		return fmt.Errorf("change feed channel is not available")
	}

	msgs, err := c.channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack: acknowledge manually after handling
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("Dropping malformed change event %d: %v", msg.DeliveryTag, err)
				if err := msg.Ack(false); err != nil {
					log.Printf("Error acking message %d: %v", msg.DeliveryTag, err)
				}
				continue
			}
			if err := handler(ev); err != nil {
				log.Printf("Error handling change event %d: %v", msg.DeliveryTag, err)
				if err := msg.Nack(false, true); err != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, err)
				}
				continue
			}
			if err := msg.Ack(false); err != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, err)
			}
		}
	}()
	return nil
}
