package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/craftwatch/craftwatch/pkg/retry"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is the connection lifecycle of one region client.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stableWindow is how long a connection must live before a disconnect
// resets the retry counter.
const stableWindow = 5 * time.Second

// Config holds the per-region connection parameters.
type Config struct {
	Host     string
	Protocol string
	Token    string
	Region   string

	ReconnectBase   time.Duration
	ReconnectFactor float64
	MaxAttempts     int
}

// Client keeps one region's subscription alive. Change messages reach the
// worker queues only while the client is streaming; every reconnect yields
// a fresh InitialSubscription which the workers reconcile against.
type Client struct {
	logger *zap.Logger
	cfg    Config
	feeds  map[string]Feed

	state atomic.Int32

	mu       sync.Mutex
	identity *IdentityToken
}

// NewClient builds a region client over the given table feeds.
func NewClient(logger *zap.Logger, cfg Config, feeds []Feed) *Client {
	if cfg.ReconnectBase <= 0 {
		cfg.ReconnectBase = 5 * time.Second
	}
	if cfg.ReconnectFactor < 1 {
		cfg.ReconnectFactor = 2
	}
	byTable := make(map[string]Feed, len(feeds))
	for _, f := range feeds {
		byTable[f.TableName()] = f
	}
	return &Client{
		logger: logger.With(zap.String("region", cfg.Region)),
		cfg:    cfg,
		feeds:  byTable,
	}
}

// Name identifies the client to the supervisor.
func (c *Client) Name() string { return "upstream:" + c.cfg.Region }

// State returns the current connection state.
func (c *Client) State() State { return State(c.state.Load()) }

// Run connects and streams until the context ends, the retry budget is
// exhausted, or the upstream rejects our credentials. An auth rejection is
// fatal for this region only.
func (c *Client) Run(ctx context.Context) {
	defer c.state.Store(int32(StateClosed))

	attempt := 0
	backoff := c.cfg.ReconnectBase

	for {
		if ctx.Err() != nil {
			return
		}

		c.state.Store(int32(StateConnecting))
		startedAt := time.Now()
		err := c.connectAndStream(ctx)
		c.state.Store(int32(StateDisconnected))

		switch {
		case ctx.Err() != nil:
			return
		case isAuthError(err):
			c.logger.Error("upstream rejected credentials, giving up on region", zap.Error(err))
			return
		}

		if time.Since(startedAt) > stableWindow {
			attempt = 0
			backoff = c.cfg.ReconnectBase
		}

		attempt++
		if c.cfg.MaxAttempts > 0 && attempt > c.cfg.MaxAttempts {
			c.logger.Error("reconnect attempts exhausted, giving up on region",
				zap.Int("attempts", attempt-1), zap.Error(err))
			return
		}

		c.logger.Warn("upstream connection lost, reconnecting",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = retry.NextBackoff(backoff, c.cfg.ReconnectBase*64, c.cfg.ReconnectFactor, 0.2)
	}
}

func (c *Client) connectAndStream(ctx context.Context) error {
	url := fmt.Sprintf("%s://%s/subscribe?region=%s", c.cfg.Protocol, c.cfg.Host, c.cfg.Region)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.currentToken())

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return &authError{status: resp.StatusCode}
		}
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	// Cancellation unblocks the read loop by closing the socket.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := c.subscribe(conn); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.state.Store(int32(StateSubscribed))
	c.logger.Info("subscribed", zap.Int("tables", len(c.feeds)))

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok && closeErr.Code == websocket.ClosePolicyViolation {
				return &authError{reason: closeErr.Text}
			}
			return fmt.Errorf("read: %w", err)
		}

		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.logger.Warn("undecodable frame, skipping", zap.Error(err))
			continue
		}
		c.dispatch(&frame)
	}
}

func (c *Client) subscribe(conn *websocket.Conn) error {
	queries := make([]string, 0, len(c.feeds))
	for table := range c.feeds {
		queries = append(queries, "SELECT * FROM "+table)
	}
	return conn.WriteJSON(ClientFrame{Subscribe: &Subscribe{QueryStrings: queries, RequestID: 1}})
}

func (c *Client) dispatch(frame *Frame) {
	switch {
	case frame.IdentityToken != nil:
		c.mu.Lock()
		c.identity = frame.IdentityToken
		c.mu.Unlock()
		c.logger.Info("identity assigned", zap.String("identity", frame.IdentityToken.Identity))

	case frame.InitialSubscription != nil:
		meta := replication.Meta{Region: c.cfg.Region, Timestamp: time.Now()}
		for _, tu := range frame.InitialSubscription.TableUpdates {
			feed, ok := c.feeds[tu.TableName]
			if !ok {
				c.logger.Warn("snapshot for unsubscribed table", zap.String("table", tu.TableName))
				continue
			}
			feed.ApplyInitial(tu.Inserts, meta)
		}
		c.state.Store(int32(StateStreaming))
		c.logger.Info("streaming")

	case frame.TransactionUpdate != nil:
		if c.State() != StateStreaming {
			return
		}
		tx := frame.TransactionUpdate
		if tx.Status.Failed != nil {
			c.logger.Debug("upstream transaction failed",
				zap.String("reducer", tx.ReducerCall.Name),
				zap.String("reason", tx.Status.Failed.Reason))
			return
		}
		if tx.Status.Committed == nil {
			return
		}
		meta := MetaFor(c.cfg.Region, tx)
		for _, tu := range tx.Status.Committed.Tables {
			feed, ok := c.feeds[tu.TableName]
			if !ok {
				continue
			}
			feed.ApplyDelta(tu.Inserts, tu.Deletes, meta)
		}
	}
}

// currentToken prefers the upstream-issued token over the configured one.
func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity != nil && c.identity.Token != "" {
		return c.identity.Token
	}
	return c.cfg.Token
}

type authError struct {
	status int
	reason string
}

func (e *authError) Error() string {
	if e.reason != "" {
		return "upstream auth failed: " + e.reason
	}
	return fmt.Sprintf("upstream auth failed: status %d", e.status)
}

func isAuthError(err error) bool {
	_, ok := err.(*authError)
	return ok
}
