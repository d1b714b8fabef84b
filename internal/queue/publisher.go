package queue

import (
    "context"
    "encoding/json"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

const dialTimeout = 2 * time.Second

// Publisher sends SeatingEvents to the seating queue.  Each call opens
// its own connection; seating changes are infrequent enough that a
// long-lived channel is not worth the reconnect handling.
type Publisher struct {
    URL    string
    Queue  string
    Logger *log.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, logger *log.Logger) *Publisher {
    return &Publisher{URL: url, Queue: SeatingQueue, Logger: logger}
}

// Publish sends ev as a persistent JSON message.  Errors are logged and
// returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev SeatingEvent) error {
    conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
    if err != nil {
        p.Logger.Warnf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Logger.Warnf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
        p.Logger.Warnf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
        p.Logger.Warnf("rabbitmq: publish %s failed: %v", ev.Type, err)
        return err
    }
    return nil
}
