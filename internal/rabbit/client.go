package rabbit

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"

	"sparxfest/internal/dto"
)

// Client is the background-sync trigger channel. Submissions that could not
// be persisted park their payload in the local queue and publish a tagged
// trigger here; the sync worker consumes the triggers and drains the queue.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to connect to RabbitMQ")
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		zlog.Logger.Error().Err(err).Msg("failed to open RabbitMQ channel")
		return nil, err
	}

	client := &Client{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		queue:    queue,
	}

	if err := client.declareTopology(); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	zlog.Logger.Info().Msgf("sync trigger channel initialized (exchange=%s, queue=%s)", exchange, queue)

	return client, nil
}

// declareTopology sets up the delayed-message exchange and the durable
// trigger queue bound to it.
func (c *Client) declareTopology() error {
	args := amqp.Table{"x-delayed-type": "direct"}
	if err := c.channel.ExchangeDeclare(
		c.exchange,
		"x-delayed-message",
		true,
		false,
		false,
		false,
		args,
	); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to declare exchange")
		return err
	}

	if _, err := c.channel.QueueDeclare(
		c.queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to declare queue")
		return err
	}

	if err := c.channel.QueueBind(
		c.queue,
		"",
		c.exchange,
		false,
		nil,
	); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to bind queue")
		return err
	}

	return nil
}

func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	zlog.Logger.Info().Msg("sync trigger channel closed")
}

func encodeTrigger(msg dto.SyncTriggerMessage) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync trigger: %w", err)
	}
	return payload, nil
}

func decodeTrigger(body []byte) (dto.SyncTriggerMessage, error) {
	var msg dto.SyncTriggerMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return dto.SyncTriggerMessage{}, fmt.Errorf("failed to decode sync trigger: %w", err)
	}
	return msg, nil
}

// PublishTrigger sends one trigger, optionally delayed so retries back off
// instead of hammering a store that just failed.
func (c *Client) PublishTrigger(msg dto.SyncTriggerMessage, delaySeconds int) error {
	payload, err := encodeTrigger(msg)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode sync trigger")
		return err
	}

	headers := amqp.Table{}
	if delaySeconds > 0 {
		headers["x-delay"] = int32(delaySeconds * 1000)
	}

	err = c.channel.Publish(
		c.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
			Timestamp:   time.Now(),
			Headers:     headers,
		},
	)

	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to publish sync trigger")
	} else {
		zlog.Logger.Debug().Msgf("sync trigger published to exchange=%s delay=%ds", c.exchange, delaySeconds)
	}
	return err
}

// Consume decodes incoming triggers and hands them to the handler. Payloads
// that do not decode are dropped without requeueing; a handler error requeues
// the trigger for another attempt.
func (c *Client) Consume(handler func(dto.SyncTriggerMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to start consuming sync triggers")
		return err
	}

	go func() {
		for d := range msgs {
			msg, err := decodeTrigger(d.Body)
			if err != nil {
				zlog.Logger.Error().Err(err).Msgf("dropping malformed sync trigger: %s", string(d.Body))
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(msg); err != nil {
				zlog.Logger.Warn().Msgf("failed to process sync trigger: %v", err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}()

	zlog.Logger.Info().Msgf("consuming sync triggers from queue %s", c.queue)
	return nil
}
