package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"social-publisher/pkg/config"
	"social-publisher/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	AlertQueueName  = "publisher_alert_queue"
	AlertExchange   = "publisher_alerts"
	AutoPauseRoute  = "auto_pause"
	publishDeadline = 5 * time.Second
)

// Alert is the message handed to the notification collaborator when a platform is paused automatically.
type Alert struct {
	Type       string    `json:"type"`
	Scope      string    `json:"scope"`
	Platform   string    `json:"platform"`
	Reason     string    `json:"reason"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		AlertExchange, // name
		"direct",      // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		AlertQueueName, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(AlertQueueName, AutoPauseRoute, AlertExchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishAlert publishes a persistent alert message on the auto-pause route.
func (c *Client) PublishAlert(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishDeadline)
	defer cancel()

	err = c.channel.PublishWithContext(ctx,
		AlertExchange,  // exchange
		AutoPauseRoute, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    alert.OccurredAt,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish alert to exchange=%s, routing_key=%s: %v", AlertExchange, AutoPauseRoute, err)
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s alert for scope=%s", alert.Type, alert.Scope)
	return nil
}

// GetQueueLength returns the number of alerts waiting for the notification collaborator.
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(AlertQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
