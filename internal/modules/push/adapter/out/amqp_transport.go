package out

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"invsync/internal/modules/push/domain"
	pushout "invsync/internal/modules/push/port/out"
)

// AMQPTransport consumes hub events relayed onto a topic exchange. The
// routing key is the hub target, optionally suffixed with the session group
// (ReceiveItemUpdate.Inventary-42); the body is the event payload.
type AMQPTransport struct {
	url      string
	exchange string
	logger   zerolog.Logger
}

func NewAMQPTransport(url, exchange string, logger zerolog.Logger) *AMQPTransport {
	return &AMQPTransport{url: url, exchange: exchange, logger: logger}
}

// Dial presents a non-empty token as the broker password, which is how the
// RabbitMQ OAuth 2 backend expects a JWT.
func (t *AMQPTransport) Dial(ctx context.Context, token string) (pushout.HubConn, error) {
	uri, err := amqp.ParseURI(t.url)
	if err != nil {
		return nil, fmt.Errorf("parse amqp url: %w", err)
	}
	if token != "" {
		uri.Password = token
	}
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName("invsync")
	conn, err := amqp.DialConfig(uri.String(), amqp.Config{
		Heartbeat:  10 * time.Second,
		Properties: props,
		Dial:       amqp.DefaultDial(15 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(t.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, queue.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}

	c := &amqpConn{
		conn:       conn,
		ch:         ch,
		exchange:   t.exchange,
		queue:      queue.Name,
		logger:     t.logger,
		handlers:   map[string]func(json.RawMessage){},
		deliveries: deliveries,
		done:       make(chan struct{}),
	}
	go c.watch(conn.NotifyClose(make(chan *amqp.Error, 1)))
	return c, nil
}

type amqpConn struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
	logger   zerolog.Logger

	mu       sync.Mutex
	handlers map[string]func(json.RawMessage)

	deliveries <-chan amqp.Delivery
	startOnce  sync.Once

	done      chan struct{}
	err       error
	closeOnce sync.Once
}

func (c *amqpConn) On(target string, handler func(json.RawMessage)) {
	c.mu.Lock()
	c.handlers[strings.ToLower(target)] = handler
	c.mu.Unlock()
	if err := c.ch.QueueBind(c.queue, target, c.exchange, false, nil); err != nil {
		c.logger.Warn().Err(err).Str("target", target).Msg("bind hub target")
		c.fail(fmt.Errorf("bind %s: %w", target, err))
	}
}

func (c *amqpConn) Start() {
	c.startOnce.Do(func() { go c.consume(c.deliveries) })
}

// Invoke binds the session group routing keys for JoinInventoryGroup and
// publishes any other method onto the exchange.
func (c *amqpConn) Invoke(ctx context.Context, method string, args ...any) error {
	if method == domain.MethodJoinInventoryGroup {
		if len(args) != 1 {
			return &pushout.InvocationError{Method: method, Message: "expected one session id"}
		}
		group := fmt.Sprintf("Inventary-%v", args[0])
		for _, target := range domain.Targets {
			if err := c.ch.QueueBind(c.queue, target+"."+group, c.exchange, false, nil); err != nil {
				return &pushout.InvocationError{Method: method, Message: err.Error()}
			}
		}
		return nil
	}
	body, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx, c.exchange, method, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (c *amqpConn) Done() <-chan struct{} {
	return c.done
}

func (c *amqpConn) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *amqpConn) Close() error {
	c.fail(nil)
	return nil
}

func (c *amqpConn) consume(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		target, _, _ := strings.Cut(d.RoutingKey, ".")
		c.mu.Lock()
		handler := c.handlers[strings.ToLower(target)]
		c.mu.Unlock()
		if handler == nil {
			c.logger.Debug().Str("routing_key", d.RoutingKey).Msg("no handler for routing key")
			continue
		}
		handler(json.RawMessage(d.Body))
	}
	c.fail(fmt.Errorf("%w: consumer stopped", errConnectionLost))
}

func (c *amqpConn) watch(closed <-chan *amqp.Error) {
	select {
	case err, ok := <-closed:
		if ok && err != nil {
			c.fail(fmt.Errorf("%w: %v", errConnectionLost, err))
			return
		}
		c.fail(fmt.Errorf("%w: broker closed the connection", errConnectionLost))
	case <-c.done:
	}
}

func (c *amqpConn) fail(err error) {
	c.closeOnce.Do(func() {
		c.err = err
		close(c.done)
		_ = c.ch.Close()
		_ = c.conn.Close()
	})
}
