package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	pushout "invsync/internal/modules/push/port/out"
	"invsync/internal/platform/httpapi"
	"invsync/internal/platform/id"
)

// SignalR JSON hub protocol framing.
const (
	recordSeparator = 0x1e

	msgInvocation = 1
	msgCompletion = 3
	msgPing       = 6
	msgClose      = 7

	keepAliveInterval = 15 * time.Second
	serverTimeout     = 30 * time.Second
	writeTimeout      = 10 * time.Second
)

var (
	errHandshake       = errors.New("hub handshake failed")
	errConnectionLost  = errors.New("hub connection lost")
	errNoWebSocketPath = errors.New("server does not offer the WebSockets transport")
)

type WebSocketOptions struct {
	HubURL          string
	Timeout         time.Duration
	SkipNegotiation bool
}

type WebSocketTransport struct {
	opts   WebSocketOptions
	dialer *websocket.Dialer
	ids    id.Generator
	logger zerolog.Logger
}

func NewWebSocketTransport(opts WebSocketOptions, ids id.Generator, logger zerolog.Logger) *WebSocketTransport {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &WebSocketTransport{
		opts:   opts,
		dialer: &websocket.Dialer{HandshakeTimeout: opts.Timeout, Proxy: http.ProxyFromEnvironment},
		ids:    ids,
		logger: logger,
	}
}

type negotiateResponse struct {
	ConnectionID        string          `json:"connectionId"`
	ConnectionToken     string          `json:"connectionToken"`
	URL                 string          `json:"url"`
	AccessToken         string          `json:"accessToken"`
	Error               string          `json:"error"`
	AvailableTransports []transportInfo `json:"availableTransports"`
}

type transportInfo struct {
	Transport string `json:"transport"`
}

type staticToken string

func (s staticToken) AccessToken(context.Context) (string, error) {
	return string(s), nil
}

func (t *WebSocketTransport) Dial(ctx context.Context, token string) (pushout.HubConn, error) {
	hubURL, connToken := t.opts.HubURL, ""
	if !t.opts.SkipNegotiation {
		negotiated, err := t.negotiate(ctx, hubURL, token)
		if err != nil {
			return nil, err
		}
		if negotiated.URL != "" {
			hubURL, token = negotiated.URL, negotiated.AccessToken
			if negotiated, err = t.negotiate(ctx, hubURL, token); err != nil {
				return nil, err
			}
		}
		connToken = negotiated.ConnectionToken
		if connToken == "" {
			connToken = negotiated.ConnectionID
		}
	}

	target, err := socketURL(hubURL, connToken, token)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	ws, resp, err := t.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial hub: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("dial hub: %w", err)
	}

	pending, err := handshake(ws, t.opts.Timeout)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	conn := newWSConn(ws, pending, t.ids, t.logger)
	go conn.keepAlive()
	return conn, nil
}

func (t *WebSocketTransport) negotiate(ctx context.Context, hubURL, token string) (negotiateResponse, error) {
	client, err := httpapi.New(hubURL, t.opts.Timeout, staticToken(token))
	if err != nil {
		return negotiateResponse{}, err
	}
	out := negotiateResponse{}
	if err := client.Post(ctx, "negotiate?negotiateVersion=1", nil, &out); err != nil {
		return negotiateResponse{}, fmt.Errorf("negotiate: %w", err)
	}
	if out.Error != "" {
		return negotiateResponse{}, fmt.Errorf("negotiate: %s", out.Error)
	}
	if len(out.AvailableTransports) > 0 && !slices.ContainsFunc(out.AvailableTransports, func(tr transportInfo) bool {
		return tr.Transport == "WebSockets"
	}) {
		return negotiateResponse{}, errNoWebSocketPath
	}
	return out, nil
}

func socketURL(hubURL, connToken, token string) (string, error) {
	parsed, err := url.Parse(hubURL)
	if err != nil {
		return "", fmt.Errorf("parse hub url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	}
	query := parsed.Query()
	if connToken != "" {
		query.Set("id", connToken)
	}
	if token != "" {
		query.Set("access_token", token)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// handshake negotiates the JSON protocol and returns any records the server
// sent in the same frame as its handshake response.
func handshake(ws *websocket.Conn, timeout time.Duration) ([][]byte, error) {
	request := append([]byte(`{"protocol":"json","version":1}`), recordSeparator)
	_ = ws.SetWriteDeadline(time.Now().Add(timeout))
	if err := ws.WriteMessage(websocket.TextMessage, request); err != nil {
		return nil, fmt.Errorf("%w: %v", errHandshake, err)
	}
	_ = ws.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errHandshake, err)
	}
	records := splitRecords(data)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty response", errHandshake)
	}
	var response struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(records[0], &response); err != nil {
		return nil, fmt.Errorf("%w: %v", errHandshake, err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("%w: %s", errHandshake, response.Error)
	}
	return records[1:], nil
}

func splitRecords(data []byte) [][]byte {
	var out [][]byte
	for _, part := range bytes.Split(data, []byte{recordSeparator}) {
		if len(bytes.TrimSpace(part)) > 0 {
			out = append(out, part)
		}
	}
	return out
}

type inboundMessage struct {
	Type         int               `json:"type"`
	Target       string            `json:"target"`
	Arguments    []json.RawMessage `json:"arguments"`
	InvocationID string            `json:"invocationId"`
	Error        string            `json:"error"`
}

type invocationMessage struct {
	Type         int    `json:"type"`
	Target       string `json:"target"`
	Arguments    []any  `json:"arguments"`
	InvocationID string `json:"invocationId"`
}

type controlMessage struct {
	Type int `json:"type"`
}

type wsConn struct {
	ws     *websocket.Conn
	ids    id.Generator
	logger zerolog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	handlers map[string]func(json.RawMessage)
	pending  map[string]chan string

	backlog   [][]byte
	startOnce sync.Once

	done      chan struct{}
	err       error
	closeOnce sync.Once
}

func newWSConn(ws *websocket.Conn, backlog [][]byte, ids id.Generator, logger zerolog.Logger) *wsConn {
	return &wsConn{
		ws:       ws,
		backlog:  backlog,
		ids:      ids,
		logger:   logger,
		handlers: map[string]func(json.RawMessage){},
		pending:  map[string]chan string{},
		done:     make(chan struct{}),
	}
}

func (c *wsConn) On(target string, handler func(json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[strings.ToLower(target)] = handler
}

// Start replays the records that came with the handshake, then reads the
// socket until it fails.
func (c *wsConn) Start() {
	c.startOnce.Do(func() { go c.readLoop(c.backlog) })
}

func (c *wsConn) Invoke(ctx context.Context, method string, args ...any) error {
	invocationID := c.ids.New()
	result := make(chan string, 1)
	c.mu.Lock()
	c.pending[invocationID] = result
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, invocationID)
		c.mu.Unlock()
	}()

	if args == nil {
		args = []any{}
	}
	if err := c.write(invocationMessage{Type: msgInvocation, Target: method, Arguments: args, InvocationID: invocationID}); err != nil {
		return err
	}
	select {
	case message := <-result:
		return completionError(method, message)
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		select {
		case message := <-result:
			return completionError(method, message)
		default:
			return errConnectionLost
		}
	}
}

func completionError(method, message string) error {
	if message == "" {
		return nil
	}
	return &pushout.InvocationError{Method: method, Message: message}
}

func (c *wsConn) Done() <-chan struct{} {
	return c.done
}

func (c *wsConn) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *wsConn) Close() error {
	_ = c.write(controlMessage{Type: msgClose})
	c.fail(nil)
	return nil
}

func (c *wsConn) readLoop(pending [][]byte) {
	for _, record := range pending {
		c.handle(record)
	}
	for {
		_ = c.ws.SetReadDeadline(time.Now().Add(serverTimeout))
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.fail(fmt.Errorf("%w: %v", errConnectionLost, err))
			return
		}
		for _, record := range splitRecords(data) {
			c.handle(record)
		}
	}
}

func (c *wsConn) handle(record []byte) {
	msg := inboundMessage{}
	if err := json.Unmarshal(record, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("unreadable hub record")
		return
	}
	switch msg.Type {
	case msgInvocation:
		c.mu.Lock()
		handler := c.handlers[strings.ToLower(msg.Target)]
		c.mu.Unlock()
		if handler == nil {
			c.logger.Debug().Str("target", msg.Target).Msg("no handler for hub target")
			return
		}
		var payload json.RawMessage
		if len(msg.Arguments) > 0 {
			payload = msg.Arguments[0]
		}
		handler(payload)
	case msgCompletion:
		c.mu.Lock()
		result, ok := c.pending[msg.InvocationID]
		c.mu.Unlock()
		if ok {
			result <- msg.Error
		}
	case msgPing:
	case msgClose:
		if msg.Error != "" {
			c.fail(fmt.Errorf("%w: server closed: %s", errConnectionLost, msg.Error))
			return
		}
		c.fail(fmt.Errorf("%w: server closed", errConnectionLost))
	default:
		c.logger.Debug().Int("type", msg.Type).Msg("ignored hub message")
	}
}

func (c *wsConn) keepAlive() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.write(controlMessage{Type: msgPing}); err != nil {
				c.fail(fmt.Errorf("%w: %v", errConnectionLost, err))
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsConn) write(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	payload = append(payload, recordSeparator)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsConn) fail(err error) {
	c.closeOnce.Do(func() {
		c.err = err
		close(c.done)
		_ = c.ws.Close()
	})
}
