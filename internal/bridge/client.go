// Package bridge is the websocket client side of the host plugin
// socket: it forwards world events to the service and answers the
// service's host calls over a single connection.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bricklabels.dev/internal/protocol"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	callTimeout      = 10 * time.Second
)

type Client struct {
	conn *websocket.Conn
	log  *log.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan protocol.RespMsg
	closed  bool

	events  chan protocol.EventMsg
	welcome protocol.WelcomeMsg
	done    chan struct{}
}

// Dial connects to the host socket and performs the HELLO/WELCOME
// handshake. The returned client is not reading yet; call Run.
func Dial(ctx context.Context, url, pluginName string, logger *log.Logger) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:    conn,
		log:     logger,
		pending: make(map[string]chan protocol.RespMsg),
		events:  make(chan protocol.EventMsg, 64),
		done:    make(chan struct{}),
	}

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PluginName:      pluginName,
	}
	if err := c.writeJSON(hello); err != nil {
		_ = conn.Close()
		return nil, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeWelcome {
		_ = conn.Close()
		return nil, fmt.Errorf("expected WELCOME, got %q", base.Type)
	}
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(msg, &welcome); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if welcome.ProtocolVersion != protocol.Version {
		_ = conn.Close()
		return nil, fmt.Errorf("bad protocol_version %q", welcome.ProtocolVersion)
	}
	c.welcome = welcome
	_ = conn.SetReadDeadline(time.Time{})

	return c, nil
}

func (c *Client) Welcome() protocol.WelcomeMsg     { return c.welcome }
func (c *Client) Events() <-chan protocol.EventMsg { return c.events }

// Run reads frames until the connection drops or ctx is done. RESP
// frames resolve pending calls; EVENT frames feed the events channel.
func (c *Client) Run(ctx context.Context) error {
	defer c.shutdown()

	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-c.done:
		}
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeResp:
			var resp protocol.RespMsg
			if err := json.Unmarshal(msg, &resp); err != nil {
				continue
			}
			c.resolve(resp)
		case protocol.TypeEvent:
			var ev protocol.EventMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			select {
			case c.events <- ev:
			default:
				c.log.Printf("event channel full, dropping %s", ev.Event)
			}
		}
	}
}

func (c *Client) resolve(resp protocol.RespMsg) {
	c.mu.Lock()
	ch := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()
	if ch != nil {
		ch <- resp
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = make(map[string]chan protocol.RespMsg)
	c.mu.Unlock()
	close(c.done)
	close(c.events)
	_ = c.conn.Close()
}

func (c *Client) Close() error {
	c.shutdown()
	return nil
}

func (c *Client) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Call sends a REQ and blocks for the matching RESP.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	ch := make(chan protocol.RespMsg, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("bridge closed")
	}
	c.pending[id] = ch
	c.mu.Unlock()

	req := protocol.ReqMsg{
		Type:            protocol.TypeReq,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Method:          method,
		Params:          raw,
	}
	if err := c.writeJSON(req); err != nil {
		c.drop(id)
		return err
	}

	timer := time.NewTimer(callTimeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		if !resp.OK {
			return fmt.Errorf("%s: %s (%s)", method, resp.Message, resp.Code)
		}
		if out == nil {
			return nil
		}
		return json.Unmarshal(resp.Result, out)
	case <-timer.C:
		c.drop(id)
		return fmt.Errorf("%s: call timed out", method)
	case <-c.done:
		return fmt.Errorf("bridge closed")
	case <-ctx.Done():
		c.drop(id)
		return ctx.Err()
	}
}

func (c *Client) drop(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Notify sends a one-way frame; delivery failures are only logged.
func (c *Client) Notify(method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		c.log.Printf("notify %s: %v", method, err)
		return
	}
	msg := protocol.NotifyMsg{
		Type:            protocol.TypeNotify,
		ProtocolVersion: protocol.Version,
		Method:          method,
		Params:          raw,
	}
	if err := c.writeJSON(msg); err != nil {
		c.log.Printf("notify %s: %v", method, err)
	}
}
