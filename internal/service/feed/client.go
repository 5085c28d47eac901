package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"PUM/internal/domain/models"
	drepo "PUM/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream backed by the market-data feed WebSocket.
type Client struct {
	apiKey         string
	websocketURL   string
	tokens         []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new feed MarketStream.
func New(apiKey, websocketURL string, tokens []string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		tokens:         tokens,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("feed: connected")
	return nil
}

// Subscribe subscribes to configured tokens.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	for _, t := range c.tokens {
		msg := map[string]string{"type": "subscribe", "symbol": t}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
		log.Printf("feed: subscribed %s", t)
	}
	return nil
}

type feedTick struct {
	A  string  `json:"a"` // token address
	S  string  `json:"s"`
	P  float64 `json:"p"`
	MC float64 `json:"mc"`
	V  float64 `json:"v"`
	T  int64   `json:"t"` // ms
}

type feedMessage struct {
	Type string     `json:"type"`
	Data []feedTick `json:"data"`
}

// Read streams market points and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.MarketPoint, <-chan error) {
	points := make(chan *models.MarketPoint, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(points)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-data frames
					continue
				}
				if m.Type != "market_data" {
					continue
				}
				for _, d := range m.Data {
					pt := &models.MarketPoint{
						TokenAddress: d.A,
						TokenSymbol:  d.S,
						Price:        d.P,
						MarketCap:    d.MC,
						Volume24h:    d.V,
						Source:       "feed",
						Timestamp:    time.UnixMilli(d.T),
					}
					select {
					case points <- pt:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return points, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
