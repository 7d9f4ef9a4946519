package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// brokerConn and brokerChannel are the parts of amqp091 the publisher uses.
type brokerConn interface {
	Channel() (brokerChannel, error)
	IsClosed() bool
	Close() error
}

type brokerChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (brokerConn, error)

type amqpConn struct{ *amqp.Connection }

func (c amqpConn) Channel() (brokerChannel, error) { return c.Connection.Channel() }

func dialAMQP(url string) (brokerConn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConn{conn}, nil
}

// AMQPPublisher publishes events as persistent JSON messages to a durable queue
// through the default exchange. Each event is sent on its own goroutine. A
// connection dropped by the broker is re-dialed on the next publish.
type AMQPPublisher struct {
	url   string
	queue string
	log   *slog.Logger
	dial  dialFunc

	mu   sync.Mutex
	conn brokerConn
	wg   sync.WaitGroup
}

// NewAMQPPublisher dials url and declares the queue.
func NewAMQPPublisher(url, queue string, log *slog.Logger) (*AMQPPublisher, error) {
	return newAMQPPublisher(url, queue, log, dialAMQP)
}

func newAMQPPublisher(url, queue string, log *slog.Logger, dial dialFunc) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, queue: queue, log: log, dial: dial}
	if _, err := p.connection(); err != nil {
		return nil, err
	}
	return p, nil
}

// connection returns the live connection, dialing a new one when the previous
// connection was closed.
func (p *AMQPPublisher) connection() (brokerConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	if p.conn != nil {
		p.log.Info("rabbitmq connection re-established", slog.String("queue", p.queue))
	}
	p.conn = conn
	return conn, nil
}

// discard drops conn so the next call to connection re-dials.
func (p *AMQPPublisher) discard(conn brokerConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == conn {
		_ = conn.Close()
	}
}

func (p *AMQPPublisher) Notify(ctx context.Context, e Event) {
	// The request may finish before the broker acknowledges.
	ctx = context.WithoutCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.publish(ctx, e); err != nil {
			p.log.ErrorContext(ctx, "publish notification failed",
				slog.String("type", e.Type),
				slog.String("recipient", e.Recipient),
				slog.Any("error", err),
			)
		}
	}()
}

func (p *AMQPPublisher) publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         e.Type,
		Timestamp:    e.OccurredAt,
		Body:         body,
	}

	err = p.publishOnce(ctx, msg)
	if errors.Is(err, amqp.ErrClosed) {
		// The connection died between the liveness check and the publish.
		err = p.publishOnce(ctx, msg)
	}
	return err
}

func (p *AMQPPublisher) publishOnce(ctx context.Context, msg amqp.Publishing) error {
	conn, err := p.connection()
	if err != nil {
		return err
	}

	// Channels are not safe for concurrent use; open one per message.
	ch, err := conn.Channel()
	if err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			p.discard(conn)
		}
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			p.discard(conn)
		}
		return err
	}
	return nil
}

// Close waits for in-flight publishes and closes the connection.
func (p *AMQPPublisher) Close() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
