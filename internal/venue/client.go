package venue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"courtside-mm-bot/internal/config"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	ordersPath  = "/v1/orders"
	cancelsPath = "/v1/cancels"

	contentTypeMsgpack = "application/msgpack"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"

	TypeLimit  = "limit"
	TypeMarket = "market"
)

// Client talks to the venue's order endpoint. Requests and responses are
// msgpack frames over HTTP, authenticated with an API key and an HMAC
// signature over the body.
type Client struct {
	baseURL string
	http    *http.Client
	signer  *Signer
	log     *zap.Logger
}

func New(cfg config.VenueConfig, signer *Signer, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		signer: signer,
		log:    log,
	}
}

// OrderRequest is the wire form of a new order. Price is ignored for market
// orders.
type OrderRequest struct {
	ClientID          string  `msgpack:"client_id"`
	Instrument        string  `msgpack:"instrument"`
	Side              string  `msgpack:"side"`
	Type              string  `msgpack:"type"`
	Quantity          float64 `msgpack:"quantity"`
	Price             float64 `msgpack:"price"`
	ImmediateOrCancel bool    `msgpack:"ioc"`
}

type orderResponse struct {
	OrderID int64  `msgpack:"order_id"`
	Status  string `msgpack:"status"`
	Reason  string `msgpack:"reason"`
}

type cancelRequest struct {
	Instrument string `msgpack:"instrument"`
	OrderID    int64  `msgpack:"order_id"`
}

// PlaceOrder submits an order and returns the venue-assigned handle. The
// venue reports rejections with status "rejected" and a reason.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (int64, error) {
	if req.Instrument == "" {
		return -1, errors.New("instrument is required")
	}
	if req.Quantity <= 0 {
		return -1, errors.New("quantity must be > 0")
	}
	var resp orderResponse
	if err := c.post(ctx, ordersPath, req, &resp); err != nil {
		return -1, err
	}
	if resp.Status == "rejected" {
		reason := resp.Reason
		if reason == "" {
			reason = "unspecified"
		}
		return -1, fmt.Errorf("order rejected: %s", reason)
	}
	if resp.OrderID < 0 {
		return -1, errors.New("venue returned negative order id")
	}
	return resp.OrderID, nil
}

// CancelOrder requests cancellation of a resting order. Fire-and-forget at
// the strategy level; transport errors are still surfaced for logging.
func (c *Client) CancelOrder(ctx context.Context, instrument string, orderID int64) error {
	if orderID < 0 {
		return errors.New("order id must be >= 0")
	}
	return c.post(ctx, cancelsPath, cancelRequest{Instrument: instrument, OrderID: orderID}, nil)
}

func (c *Client) post(ctx context.Context, path string, req, out interface{}) error {
	payload, err := msgpack.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", contentTypeMsgpack)
	if c.signer != nil {
		c.signer.Sign(httpReq.Header, path, payload, time.Now())
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(body, out)
}
