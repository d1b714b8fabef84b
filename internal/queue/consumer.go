package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains the seating queue into LogDir/seating.log, one line per
// event.
type Consumer struct {
    URL    string
    Queue  string
    LogDir string
    Logger *log.Logger
}

// NewConsumer returns a Consumer writing under logDir.
func NewConsumer(url, logDir string, logger *log.Logger) *Consumer {
    return &Consumer{URL: url, Queue: SeatingQueue, LogDir: logDir, Logger: logger}
}

// Run connects to RabbitMQ, declares the queue and consumes until ctx is
// cancelled.  Lost connections are retried with exponential backoff
// capped at 30s; a message that cannot be handled is rejected without
// requeue so the loop keeps moving.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.DialConfig(c.URL, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
        if err != nil {
            c.Logger.Warnf("seating-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Logger.Warnf("seating-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Logger.Warnf("seating-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(d.Body); err != nil {
                c.Logger.Errorf("seating-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(body []byte) error {
    var ev SeatingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, "seating.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single newline-terminated log line.
func FormatLine(ev SeatingEvent) string {
    table := "-"
    if ev.TableID != 0 {
        table = fmt.Sprintf("%d (%s)", ev.TableID, ev.TableName)
    }
    return fmt.Sprintf("[%s] %s | reservation_id=%d | guest=%q | people=%d | slot=%s %s | status=%s | table=%s\n",
        ev.OccurredAt, ev.Type, ev.ReservationID, ev.GuestName, ev.People,
        ev.ReservationDate, ev.ReservationTime, ev.Status, table)
}
