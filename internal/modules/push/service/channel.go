package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"invsync/internal/modules/push/domain"
	pushout "invsync/internal/modules/push/port/out"
	"invsync/internal/platform/bus"
	"invsync/internal/platform/clock"
	apperrors "invsync/internal/platform/errors"
)

const (
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 15 * time.Second
)

type Topics struct {
	ItemScanned      *bus.Topic[domain.ItemScanned]
	ZoneState        *bus.Topic[domain.ZoneStateChanged]
	VerificationList *bus.Topic[domain.VerificationListChanged]
}

// Channel keeps one hub connection alive, decodes its frames and fans them
// out to typed topics. A supervisor goroutine reconnects with backoff and
// re-arms handlers and joined groups before the channel reports connected.
type Channel struct {
	transport pushout.HubTransport
	creds     pushout.CredentialProvider
	clock     clock.Clock
	logger    zerolog.Logger
	backoff   domain.Backoff
	topics    Topics

	flight singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	conn        pushout.HubConn
	state       domain.ConnState
	groups      map[int64]struct{}
	supervising bool
	connectedAt time.Time
	lastEventAt time.Time
	lastError   string
	counters    domain.Counters
	closeOnce   sync.Once
}

func NewChannel(transport pushout.HubTransport, creds pushout.CredentialProvider, clock clock.Clock, backoff domain.Backoff, logger zerolog.Logger) *Channel {
	if backoff.Initial <= 0 {
		backoff.Initial = DefaultInitialBackoff
	}
	if backoff.Max < backoff.Initial {
		backoff.Max = DefaultMaxBackoff
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		transport: transport,
		creds:     creds,
		clock:     clock,
		logger:    logger,
		backoff:   backoff,
		topics: Topics{
			ItemScanned:      bus.NewTopic[domain.ItemScanned](),
			ZoneState:        bus.NewTopic[domain.ZoneStateChanged](),
			VerificationList: bus.NewTopic[domain.VerificationListChanged](),
		},
		ctx:    ctx,
		cancel: cancel,
		state:  domain.StateDisconnected,
		groups: map[int64]struct{}{},
	}
}

func (c *Channel) Topics() Topics {
	return c.topics
}

// Connect is a no-op while connected. Concurrent callers share one attempt.
func (c *Channel) Connect(ctx context.Context) error {
	if c.State() == domain.StateConnected {
		return nil
	}
	conn, err := c.connectOnce(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	start := !c.supervising && c.state != domain.StateClosed
	if start {
		c.supervising = true
	}
	c.mu.Unlock()
	if start {
		go c.supervise(conn)
	}
	return nil
}

// EnsureConnected makes one connect attempt when disconnected.
func (c *Channel) EnsureConnected(ctx context.Context) error {
	if c.State() == domain.StateConnected {
		return nil
	}
	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotReady, err)
	}
	if c.State() != domain.StateConnected {
		return domain.ErrNotReady
	}
	return nil
}

func (c *Channel) JoinSessionGroup(ctx context.Context, sessionID int64) error {
	if sessionID <= 0 {
		return fmt.Errorf("%w: session id must be positive", apperrors.ErrInvalidInput)
	}
	if err := c.EnsureConnected(ctx); err != nil {
		return err
	}
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return domain.ErrNotReady
	}
	if err := c.join(ctx, conn, sessionID); err != nil {
		return err
	}
	c.mu.Lock()
	c.groups[sessionID] = struct{}{}
	c.mu.Unlock()
	c.logger.Info().Int64("session_id", sessionID).Msg("joined session group")
	return nil
}

// LeaveSessionGroup stops rejoining the session's group on reconnect. The
// hub has no leave call; the current membership lapses with the connection.
func (c *Channel) LeaveSessionGroup(sessionID int64) {
	c.mu.Lock()
	_, joined := c.groups[sessionID]
	delete(c.groups, sessionID)
	c.mu.Unlock()
	if joined {
		c.logger.Info().Int64("session_id", sessionID).Msg("left session group")
	}
}

func (c *Channel) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.state = domain.StateClosed
		c.mu.Unlock()
		if conn != nil {
			closeErr = conn.Close()
		}
	})
	return closeErr
}

func (c *Channel) State() domain.ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Channel) Status() domain.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	groups := make([]int64, 0, len(c.groups))
	for id := range c.groups {
		groups = append(groups, id)
	}
	slices.Sort(groups)
	return domain.Status{
		State:       c.state,
		Groups:      groups,
		LastEventAt: c.lastEventAt,
		ConnectedAt: c.connectedAt,
		LastError:   c.lastError,
		Counters:    c.counters,
	}
}

func (c *Channel) connectOnce(ctx context.Context) (pushout.HubConn, error) {
	v, err, _ := c.flight.Do("connect", func() (any, error) {
		c.mu.RLock()
		state, conn := c.state, c.conn
		c.mu.RUnlock()
		switch state {
		case domain.StateClosed:
			return nil, domain.ErrClosed
		case domain.StateConnected:
			return conn, nil
		}
		return c.establish(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(pushout.HubConn), nil
}

func (c *Channel) establish(ctx context.Context) (pushout.HubConn, error) {
	c.setState(domain.StateConnecting)
	token, err := c.creds.Token(ctx)
	if err != nil {
		c.fail(err)
		return nil, fmt.Errorf("%w: credential provider: %v", domain.ErrConnection, err)
	}
	if token == "" {
		c.logger.Warn().Msg("no credential available, connecting anonymously")
	}
	conn, err := c.transport.Dial(ctx, token)
	if err != nil {
		c.fail(err)
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	for _, target := range domain.Targets {
		conn.On(target, func(payload json.RawMessage) { c.dispatch(target, payload) })
	}
	conn.Start()
	for _, sessionID := range c.joinedGroups() {
		if err := c.join(ctx, conn, sessionID); err != nil {
			c.logger.Warn().Err(err).Int64("session_id", sessionID).Msg("rejoin session group failed")
		}
	}

	c.mu.Lock()
	if c.state == domain.StateClosed {
		c.mu.Unlock()
		_ = conn.Close()
		return nil, domain.ErrClosed
	}
	c.conn = conn
	c.state = domain.StateConnected
	c.connectedAt = c.clock.Now()
	c.lastError = ""
	c.mu.Unlock()
	c.logger.Info().Msg("push channel connected")
	return conn, nil
}

func (c *Channel) supervise(conn pushout.HubConn) {
	defer func() {
		c.mu.Lock()
		c.supervising = false
		c.mu.Unlock()
	}()
	for {
		select {
		case <-conn.Done():
		case <-c.ctx.Done():
			return
		}
		c.markLost(conn)
		next, ok := c.reconnect()
		if !ok {
			return
		}
		conn = next
	}
}

func (c *Channel) reconnect() (pushout.HubConn, bool) {
	var delay time.Duration
	for {
		c.incrementCounter(func(counters *domain.Counters) { counters.ReconnectAttempts++ })
		conn, err := c.connectOnce(c.ctx)
		if err == nil {
			c.incrementCounter(func(counters *domain.Counters) { counters.ReconnectSuccesses++ })
			return conn, true
		}
		if errors.Is(err, domain.ErrClosed) || c.ctx.Err() != nil {
			return nil, false
		}
		c.setState(domain.StateReconnecting)
		delay = c.backoff.Next(delay)
		c.logger.Warn().Err(err).Dur("retry_in", delay).Msg("push channel reconnect failed")
		select {
		case <-time.After(delay):
		case <-c.ctx.Done():
			return nil, false
		}
	}
}

func (c *Channel) markLost(conn pushout.HubConn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn || c.state == domain.StateClosed {
		return
	}
	c.conn = nil
	c.state = domain.StateReconnecting
	if err := conn.Err(); err != nil {
		c.lastError = err.Error()
	}
	c.logger.Warn().Str("reason", c.lastError).Msg("push channel lost")
}

func (c *Channel) join(ctx context.Context, conn pushout.HubConn, sessionID int64) error {
	err := conn.Invoke(ctx, domain.MethodJoinInventoryGroup, strconv.FormatInt(sessionID, 10))
	if err == nil {
		return nil
	}
	reason := err.Error()
	var invocationErr *pushout.InvocationError
	if errors.As(err, &invocationErr) {
		reason = invocationErr.Message
	}
	return &domain.JoinError{SessionID: sessionID, Reason: reason}
}

func (c *Channel) dispatch(target string, payload json.RawMessage) {
	event, err := domain.Decode(target, payload)
	if err != nil {
		c.incrementCounter(func(counters *domain.Counters) { counters.DecodeErrors++ })
		c.logger.Warn().Err(err).Str("target", target).Msg("dropped push frame")
		return
	}
	c.mu.Lock()
	c.counters.EventsDelivered++
	c.lastEventAt = c.clock.Now()
	c.mu.Unlock()

	switch ev := event.(type) {
	case domain.ItemScanned:
		c.topics.ItemScanned.Publish(ev)
	case domain.ZoneStateChanged:
		c.topics.ZoneState.Publish(ev)
	case domain.VerificationListChanged:
		c.topics.VerificationList.Publish(ev)
	}
}

func (c *Channel) joinedGroups() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int64, 0, len(c.groups))
	for id := range c.groups {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (c *Channel) setState(state domain.ConnState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateClosed {
		c.state = state
	}
}

func (c *Channel) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = err.Error()
	if c.state == domain.StateConnecting {
		c.state = domain.StateDisconnected
	}
}

func (c *Channel) incrementCounter(update func(*domain.Counters)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	update(&c.counters)
}
