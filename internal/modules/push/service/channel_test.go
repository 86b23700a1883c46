package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"invsync/internal/modules/push/domain"
	pushout "invsync/internal/modules/push/port/out"
	"invsync/internal/modules/push/service"
	"invsync/internal/platform/clock"
)

type fakeConn struct {
	mu        sync.Mutex
	handlers  map[string]func(json.RawMessage)
	invokes   []string
	invokeErr error
	started   int
	armed     int
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{handlers: map[string]func(json.RawMessage){}, done: make(chan struct{})}
}

func (c *fakeConn) On(target string, handler func(json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[target] = handler
}

func (c *fakeConn) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
	c.armed = len(c.handlers)
}

func (c *fakeConn) Invoke(_ context.Context, method string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started == 0 {
		return errors.New("invoke before start")
	}
	if c.invokeErr != nil {
		return c.invokeErr
	}
	call := method
	for _, arg := range args {
		call += ":" + arg.(string)
	}
	c.invokes = append(c.invokes, call)
	return nil
}

func (c *fakeConn) Done() <-chan struct{} { return c.done }

func (c *fakeConn) Err() error { return errors.New("dropped") }

func (c *fakeConn) Close() error {
	c.drop()
	return nil
}

func (c *fakeConn) drop() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *fakeConn) emit(target, payload string) {
	c.mu.Lock()
	handler := c.handlers[target]
	c.mu.Unlock()
	if handler != nil {
		handler(json.RawMessage(payload))
	}
}

func (c *fakeConn) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invokes...)
}

func (c *fakeConn) startedWith() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started, c.armed
}

func (c *fakeConn) targets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

type fakeTransport struct {
	mu       sync.Mutex
	conns    []*fakeConn
	tokens   []string
	failures int
	gate     chan struct{}
	newConn  func() *fakeConn
}

func (f *fakeTransport) Dial(ctx context.Context, token string) (pushout.HubConn, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("refused")
	}
	conn := newFakeConn()
	if f.newConn != nil {
		conn = f.newConn()
	}
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeTransport) dials() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func (f *fakeTransport) conn(i int) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[i]
}

type fakeCreds struct {
	token string
	err   error
}

func (f fakeCreds) Token(context.Context) (string, error) {
	return f.token, f.err
}

func newChannel(transport *fakeTransport, creds fakeCreds) *service.Channel {
	return service.NewChannel(transport, creds, clock.SystemClock{}, domain.Backoff{Initial: time.Millisecond, Max: 4 * time.Millisecond}, zerolog.Nop())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestConnectIsIdempotent(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	ch := newChannel(transport, fakeCreds{token: "tok"})
	defer ch.Close()

	for range 3 {
		if err := ch.Connect(context.Background()); err != nil {
			t.Fatalf("connect: %v", err)
		}
	}
	if transport.dials() != 1 {
		t.Fatalf("expected one dial, got %d", transport.dials())
	}
	if ch.State() != domain.StateConnected {
		t.Fatalf("expected connected, got %s", ch.State())
	}
	if transport.tokens[0] != "tok" {
		t.Fatalf("expected token to reach transport, got %q", transport.tokens[0])
	}
}

func TestConcurrentConnectSharesOneAttempt(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{gate: make(chan struct{})}
	ch := newChannel(transport, fakeCreds{})
	defer ch.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ch.Connect(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(transport.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
	}
	if transport.dials() != 1 {
		t.Fatalf("expected one dial, got %d", transport.dials())
	}
}

func TestConnectFailsWhenCredentialProviderFails(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	ch := newChannel(transport, fakeCreds{err: errors.New("keychain locked")})
	defer ch.Close()

	err := ch.Connect(context.Background())
	if !errors.Is(err, domain.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if transport.dials() != 0 {
		t.Fatalf("expected no dial")
	}
}

func TestConnectWithoutCredential(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	ch := newChannel(transport, fakeCreds{})
	defer ch.Close()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if transport.tokens[0] != "" {
		t.Fatalf("expected empty token, got %q", transport.tokens[0])
	}
}

func TestEnsureConnectedReportsNotReady(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{failures: 1}
	ch := newChannel(transport, fakeCreds{})
	defer ch.Close()

	err := ch.EnsureConnected(context.Background())
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if err := ch.EnsureConnected(context.Background()); err != nil {
		t.Fatalf("second attempt should connect: %v", err)
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	ch := newChannel(transport, fakeCreds{})
	defer ch.Close()
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	var got []domain.ItemScanned
	sub := ch.Topics().ItemScanned.Subscribe(func(ev domain.ItemScanned) { got = append(got, ev) })
	defer sub.Unsubscribe()

	conn := transport.conn(0)
	conn.emit(domain.TargetItemUpdate, `{"itemId":"nope","stateItemId":1,"inventaryId":4}`)
	conn.emit(domain.TargetItemUpdate, `{"itemId":10,"stateItemId":1,"inventaryId":4}`)
	conn.emit(domain.TargetItemUpdate, `{"itemId":11,"stateItemId":1,"inventaryId":4}`)

	if len(got) != 2 || got[0].ItemID != 10 || got[1].ItemID != 11 {
		t.Fatalf("unexpected deliveries: %+v", got)
	}
	status := ch.Status()
	if status.Counters.DecodeErrors != 1 || status.Counters.EventsDelivered != 2 {
		t.Fatalf("unexpected counters: %+v", status.Counters)
	}
	if ch.State() != domain.StateConnected {
		t.Fatalf("malformed frame must not drop the channel")
	}
}

func TestReconnectRearmsSubscriptionsAndGroups(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	ch := newChannel(transport, fakeCreds{})
	defer ch.Close()
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := ch.JoinSessionGroup(context.Background(), 42); err != nil {
		t.Fatalf("join: %v", err)
	}

	var zones []int64
	var mu sync.Mutex
	sub := ch.Topics().ZoneState.Subscribe(func(ev domain.ZoneStateChanged) {
		mu.Lock()
		zones = append(zones, ev.ZoneID)
		mu.Unlock()
	})
	defer sub.Unsubscribe()

	transport.mu.Lock()
	transport.failures = 2
	transport.mu.Unlock()
	transport.conn(0).drop()

	waitFor(t, func() bool { return transport.dials() == 2 && ch.State() == domain.StateConnected })

	next := transport.conn(1)
	if next.targets() != len(domain.Targets) {
		t.Fatalf("expected %d handlers re-armed, got %d", len(domain.Targets), next.targets())
	}
	if started, armed := next.startedWith(); started != 1 || armed != len(domain.Targets) {
		t.Fatalf("expected one start after all handlers, got started=%d armed=%d", started, armed)
	}
	calls := next.calls()
	if len(calls) != 1 || calls[0] != domain.MethodJoinInventoryGroup+":42" {
		t.Fatalf("expected group rejoin, got %v", calls)
	}
	next.emit(domain.TargetZoneStateUpdate, `{"zoneId":5,"newState":"Available","isAvailable":true}`)
	mu.Lock()
	defer mu.Unlock()
	if len(zones) != 1 || zones[0] != 5 {
		t.Fatalf("expected event on new connection, got %v", zones)
	}

	status := ch.Status()
	if status.Counters.ReconnectAttempts < 3 || status.Counters.ReconnectSuccesses != 1 {
		t.Fatalf("unexpected counters: %+v", status.Counters)
	}
	if len(status.Groups) != 1 || status.Groups[0] != 42 {
		t.Fatalf("expected group 42 remembered, got %v", status.Groups)
	}
}

func TestLeftGroupIsNotRejoinedAfterReconnect(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	ch := newChannel(transport, fakeCreds{})
	defer ch.Close()
	ctx := context.Background()
	if err := ch.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	for _, sessionID := range []int64{42, 43} {
		if err := ch.JoinSessionGroup(ctx, sessionID); err != nil {
			t.Fatalf("join %d: %v", sessionID, err)
		}
	}
	ch.LeaveSessionGroup(42)
	ch.LeaveSessionGroup(99)

	transport.conn(0).drop()
	waitFor(t, func() bool { return transport.dials() == 2 && ch.State() == domain.StateConnected })

	calls := transport.conn(1).calls()
	if len(calls) != 1 || calls[0] != domain.MethodJoinInventoryGroup+":43" {
		t.Fatalf("expected only group 43 rejoined, got %v", calls)
	}
	if groups := ch.Status().Groups; len(groups) != 1 || groups[0] != 43 {
		t.Fatalf("expected group 43 remembered, got %v", groups)
	}
}

func TestJoinSessionGroupRejected(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{newConn: func() *fakeConn {
		conn := newFakeConn()
		conn.invokeErr = &pushout.InvocationError{Method: domain.MethodJoinInventoryGroup, Message: "not a member"}
		return conn
	}}
	ch := newChannel(transport, fakeCreds{})
	defer ch.Close()

	err := ch.JoinSessionGroup(context.Background(), 8)
	var joinErr *domain.JoinError
	if !errors.As(err, &joinErr) {
		t.Fatalf("expected JoinError, got %v", err)
	}
	if joinErr.Reason != "not a member" || joinErr.SessionID != 8 {
		t.Fatalf("unexpected join error: %+v", joinErr)
	}
	if len(ch.Status().Groups) != 0 {
		t.Fatalf("rejected group must not be remembered")
	}
}

func TestCloseStopsReconnecting(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	ch := newChannel(transport, fakeCreds{})
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if transport.dials() != 1 {
		t.Fatalf("expected no reconnect after close, got %d dials", transport.dials())
	}
	if err := ch.Connect(context.Background()); !errors.Is(err, domain.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
