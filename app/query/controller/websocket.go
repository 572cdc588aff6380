package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	pingEvery    = 30 * time.Second
	readDeadline = 60 * time.Second
)

// ClientMessage is sent by feed clients to pick the series they want.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Series string `json:"series"` // series name, or "*" for every series
}

// ServerMessage is every frame the feed writes.
type ServerMessage struct {
	Type    string      `json:"type"` // "page.ingested", "subscribed", "unsubscribed", "info", "error"
	Payload interface{} `json:"payload"`
}

// seriesFilter is the set of series one client is subscribed to.
type seriesFilter struct {
	mu     sync.RWMutex
	series map[string]bool
}

func newSeriesFilter() *seriesFilter {
	return &seriesFilter{series: make(map[string]bool)}
}

func (f *seriesFilter) subscribe(series string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[series] = true
}

func (f *seriesFilter) unsubscribe(series string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.series, series)
}

// matches reports whether series is wanted. "*" matches everything.
func (f *seriesFilter) matches(series string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.series["*"] || f.series[series]
}

// HandleEvents upgrades to a WebSocket and streams the indexer's page.ingested events.
//
// Client sends: {"action": "subscribe", "series": "depth"} or {"action": "subscribe", "series": "*"}
// Server sends: {"type": "page.ingested", "payload": {...}} for every matching persisted page.
func (c *Controller) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if c.App.RedisClient == nil {
		writeJSON(w, http.StatusServiceUnavailable, "Real-time events not available (Redis disabled)")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.App.Logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			c.App.Logger.Debug("Failed to close WebSocket connection", zap.Error(err))
		}
	}()

	c.App.Logger.Info("Events client connected", zap.String("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Unblock the reader once anything else ends the connection.
	go func() {
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
	}()

	filter := newSeriesFilter()
	send := make(chan ServerMessage, 256)

	var wg sync.WaitGroup
	c.goSafe(&wg, cancel, "redis subscriber", func() { c.subscribeToRedis(ctx, send, filter) })
	c.goSafe(&wg, cancel, "ping ticker", func() { c.sendPings(ctx, conn) })

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeMessages(conn, send)
		cancel()
	}()

	c.readClientMessages(ctx, conn, cancel, filter, send)

	// Producers first, then the writer, so nothing sends on a closed channel.
	wg.Wait()
	close(send)
	<-writerDone

	c.App.Logger.Info("Events client disconnected", zap.String("remote_addr", r.RemoteAddr))
}

// goSafe runs fn on its own goroutine and cancels the connection if it panics.
func (c *Controller) goSafe(wg *sync.WaitGroup, cancel context.CancelFunc, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				c.App.Logger.Error("Panic in events goroutine",
					zap.String("goroutine", name),
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())))
				cancel()
			}
		}()
		fn()
	}()
}

// subscribeToRedis pattern-subscribes to every series' page.ingested channel and
// resubscribes with jittered exponential backoff when the subscription drops.
func (c *Controller) subscribeToRedis(ctx context.Context, send chan<- ServerMessage, filter *seriesFilter) {
	const (
		initialBackoff = 1 * time.Second
		maxBackoff     = 30 * time.Second
		backoffFactor  = 2.0
		jitterFactor   = 0.1
	)

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := c.attemptRedisSubscription(ctx, send, filter, attempt)
		if ctx.Err() != nil {
			return
		}
		c.App.Logger.Warn("Redis subscription ended, will retry",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff))

		if !trySend(ctx, send, ServerMessage{Type: "error", Payload: map[string]interface{}{
			"message":     "Redis connection lost, attempting to reconnect...",
			"retryIn":     backoff.Seconds(),
			"recoverable": true,
		}}) {
			return
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = calculateNextBackoff(backoff, maxBackoff, backoffFactor, jitterFactor)
	}
}

func (c *Controller) attemptRedisSubscription(ctx context.Context, send chan<- ServerMessage, filter *seriesFilter, attempt int) error {
	pubsub := c.App.RedisClient.PSubscribe(ctx, types.PageIngestedPattern)
	defer func() {
		_ = pubsub.Close()
	}()

	receiveCtx, receiveCancel := context.WithTimeout(ctx, 5*time.Second)
	defer receiveCancel()
	if _, err := pubsub.Receive(receiveCtx); err != nil {
		return fmt.Errorf("confirm Redis subscription: %w", err)
	}

	if !trySend(ctx, send, ServerMessage{Type: "info", Payload: map[string]interface{}{
		"message": "subscribed to ingestion events",
		"attempt": attempt,
	}}) {
		return ctx.Err()
	}
	return c.forwardEvents(ctx, pubsub.Channel(), send, filter)
}

// forwardEvents relays decoded page.ingested events the client subscribed to until ch closes.
func (c *Controller) forwardEvents(ctx context.Context, ch <-chan *goredis.Message, send chan<- ServerMessage, filter *seriesFilter) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			series := types.SeriesFromChannel(msg.Channel)
			if series == "" || !filter.matches(series) {
				continue
			}
			var ev types.PageIngestedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				c.App.Logger.Warn("Dropping malformed ingestion event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if !trySend(ctx, send, ServerMessage{Type: types.PageIngestedEventType, Payload: ev}) {
				return ctx.Err()
			}
		}
	}
}

func trySend(ctx context.Context, send chan<- ServerMessage, msg ServerMessage) bool {
	select {
	case send <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// calculateNextBackoff grows current by factor, capped at max, with +/- jitterFactor noise.
// The result never drops below current.
func calculateNextBackoff(current, max time.Duration, factor, jitterFactor float64) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > max {
		next = max
	}
	jitter := float64(next) * jitterFactor * (2*rand.Float64() - 1)
	next = time.Duration(float64(next) + jitter)
	if next < current {
		next = current
	}
	if next > max {
		next = max
	}
	return next
}

func (c *Controller) sendPings(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				c.App.Logger.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// writeMessages is the only writer of data frames on conn.
func (c *Controller) writeMessages(conn *websocket.Conn, send <-chan ServerMessage) {
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			c.App.Logger.Debug("Failed to write WebSocket message", zap.Error(err))
			// keep draining so producers never block
			for range send {
			}
			return
		}
	}
}

// readClientMessages handles subscribe/unsubscribe frames until the client goes away.
func (c *Controller) readClientMessages(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc, filter *seriesFilter, send chan<- ServerMessage) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.App.Logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		var reply ServerMessage
		switch {
		case msg.Series == "" && (msg.Action == "subscribe" || msg.Action == "unsubscribe"):
			reply = ServerMessage{Type: "error", Payload: map[string]string{"message": "series is required"}}
		case msg.Action == "subscribe":
			filter.subscribe(msg.Series)
			reply = ServerMessage{Type: "subscribed", Payload: map[string]string{"series": msg.Series}}
		case msg.Action == "unsubscribe":
			filter.unsubscribe(msg.Series)
			reply = ServerMessage{Type: "unsubscribed", Payload: map[string]string{"series": msg.Series}}
		default:
			reply = ServerMessage{Type: "error", Payload: map[string]string{"message": "unknown action: " + msg.Action}}
		}
		if !trySend(ctx, send, reply) {
			return
		}
	}
}
