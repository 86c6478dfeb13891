package rabbitmq

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/apex/log"
    "github.com/sethvargo/go-retry"
    "github.com/streadway/amqp"

    "nrp/internal/ports"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
    Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
    Close() error
}

// Publisher sends record events to a durable direct exchange, routed by
// event type.
type Publisher struct {
    conn     *amqp.Connection
    channel  channel
    exchange string
    attempts uint64
    base     time.Duration
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
    conn, err := amqp.Dial(amqpURL)
    if err != nil {
        return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        conn.Close()
        return nil, fmt.Errorf("failed to open channel: %w", err)
    }
    if err := ch.ExchangeDeclare(
        exchange, // name
        "direct", // type
        true,     // durable
        false,    // auto-deleted
        false,    // internal
        false,    // no-wait
        nil,
    ); err != nil {
        ch.Close()
        conn.Close()
        return nil, fmt.Errorf("failed to declare exchange: %w", err)
    }
    p := newPublisher(ch, exchange)
    p.conn = conn
    return p, nil
}

func newPublisher(ch channel, exchange string) *Publisher {
    return &Publisher{channel: ch, exchange: exchange, attempts: 3, base: 200 * time.Millisecond}
}

func (p *Publisher) Publish(ctx context.Context, event ports.RecordEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        return fmt.Errorf("failed to marshal event: %w", err)
    }
    msg := amqp.Publishing{
        ContentType:  "application/json",
        Body:         body,
        DeliveryMode: amqp.Persistent,
        Timestamp:    event.At,
        MessageId:    event.RecordID + ":" + string(event.To),
    }
    b := retry.WithMaxRetries(p.attempts-1, retry.NewExponential(p.base))
    return retry.Do(ctx, b, func(ctx context.Context) error {
        if err := p.channel.Publish(p.exchange, event.Type, false, false, msg); err != nil {
            log.WithError(err).WithField("record", event.RecordID).Warn("event publish failed")
            return retry.RetryableError(err)
        }
        return nil
    })
}

func (p *Publisher) Close() error {
    var err error
    if p.channel != nil {
        err = p.channel.Close()
    }
    if p.conn != nil {
        if cerr := p.conn.Close(); err == nil {
            err = cerr
        }
    }
    return err
}

var _ ports.EventPublisher = (*Publisher)(nil)
