package deriv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"nhooyr.io/websocket"

	"koppo/internal/models"
	"koppo/internal/trading"
)

const DefaultWSURL = "wss://ws.derivws.com/websockets/v3"

// Client is a thin binding to the Deriv trading API over websocket. It
// implements trading.Executor; one Execute call runs the full
// proposal -> buy -> await-settlement sequence for a single contract.
//
// The connection carries one exchange at a time: Execute holds the client
// mutex for the whole sequence, and every request carries a req_id that the
// server echoes, so leftover frames from an earlier exchange are skipped
// instead of being mistaken for the current reply.
type Client struct {
	url      string
	appID    string
	apiToken string
	timeout  time.Duration

	mu    sync.Mutex
	reqID int64
	conn  *websocket.Conn
}

func NewClient(url, appID, apiToken string, timeout time.Duration) *Client {
	if strings.TrimSpace(url) == "" {
		url = DefaultWSURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{url: url, appID: appID, apiToken: apiToken, timeout: timeout}
}

func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("deriv client is nil")
	}
	conn, _, err := websocket.Dial(ctx, c.url+"?app_id="+c.appID, nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(1 << 20)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	return c.authorize(ctx)
}

func (c *Client) Close(status websocket.StatusCode, reason string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close(status, reason)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	MsgType string    `json:"msg_type"`
	ReqID   int64     `json:"req_id"`
	Error   *apiError `json:"error"`

	Subscription *struct {
		ID string `json:"id"`
	} `json:"subscription"`

	Proposal *struct {
		ID       string  `json:"id"`
		AskPrice float64 `json:"ask_price"`
	} `json:"proposal"`
	Buy *struct {
		ContractID int64   `json:"contract_id"`
		BuyPrice   float64 `json:"buy_price"`
	} `json:"buy"`
	ProposalOpenContract *struct {
		ContractID int64    `json:"contract_id"`
		IsSold     int      `json:"is_sold"`
		Profit     float64  `json:"profit"`
		Barrier    *string  `json:"barrier"`
		BuyPrice   float64  `json:"buy_price"`
		Payout     *float64 `json:"payout"`
	} `json:"proposal_open_contract"`
}

// authorize runs under the client mutex held by Connect.
func (c *Client) authorize(ctx context.Context) error {
	id := c.nextReqID()
	if err := c.send(ctx, map[string]any{"authorize": c.apiToken, "req_id": id}); err != nil {
		return err
	}
	_, err := c.readReply(ctx, "authorize", id)
	return err
}

func (c *Client) nextReqID() int64 {
	c.reqID++
	return c.reqID
}

// Execute buys one contract and waits for settlement. If the contract has
// not settled before the configured timeout, the result comes back with
// outcome PENDING and zero profit; the audit record stays correct and the
// caller decides whether to re-query later. Concurrent callers queue on the
// client mutex: the websocket allows one reader, and interleaved exchanges
// would cross replies between sessions.
func (c *Client) Execute(ctx context.Context, req trading.TradeRequest) (*trading.TradeResult, error) {
	if c == nil {
		return nil, fmt.Errorf("deriv: not connected")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, fmt.Errorf("deriv: not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stake, _ := req.Stake.Float64()
	propID := c.nextReqID()
	if err := c.send(ctx, map[string]any{
		"proposal":      1,
		"amount":        stake,
		"basis":         "stake",
		"contract_type": req.ContractType,
		"currency":      req.Currency,
		"duration":      req.Duration,
		"duration_unit": strings.ToLower(req.DurationUnit),
		"symbol":        req.Symbol,
		"req_id":        propID,
	}); err != nil {
		return nil, err
	}
	prop, err := c.readReply(ctx, "proposal", propID)
	if err != nil {
		return nil, err
	}
	if prop.Proposal == nil {
		return nil, fmt.Errorf("deriv: proposal response missing body")
	}

	buyID := c.nextReqID()
	if err := c.send(ctx, map[string]any{
		"buy":    prop.Proposal.ID,
		"price":  prop.Proposal.AskPrice,
		"req_id": buyID,
	}); err != nil {
		return nil, err
	}
	bought, err := c.readReply(ctx, "buy", buyID)
	if err != nil {
		return nil, err
	}
	if bought.Buy == nil {
		return nil, fmt.Errorf("deriv: buy response missing body")
	}

	pocID := c.nextReqID()
	if err := c.send(ctx, map[string]any{
		"proposal_open_contract": 1,
		"contract_id":            bought.Buy.ContractID,
		"subscribe":              1,
		"req_id":                 pocID,
	}); err != nil {
		return nil, err
	}

	result := &trading.TradeResult{
		AmountStaked: req.Stake,
		ProposalID:   bought.Buy.ContractID,
	}
	for {
		msg, err := c.readReply(ctx, "proposal_open_contract", pocID)
		if err != nil {
			if ctx.Err() != nil {
				result.Outcome = models.OutcomePending
				return result, nil
			}
			return nil, err
		}
		poc := msg.ProposalOpenContract
		if poc == nil || poc.ContractID != bought.Buy.ContractID {
			continue
		}
		if poc.Barrier != nil {
			if b, err := decimal.NewFromString(*poc.Barrier); err == nil {
				result.Barrier = &b
			}
		}
		if poc.IsSold == 0 {
			continue
		}
		c.forget(ctx, msg)
		result.ProfitOrLoss = decimal.NewFromFloat(poc.Profit)
		if poc.Profit > 0 {
			result.Outcome = models.OutcomeWin
		} else {
			result.Outcome = models.OutcomeLoss
		}
		return result, nil
	}
}

// forget unsubscribes the settled contract stream so it stops emitting
// frames into later exchanges. Best effort.
func (c *Client) forget(ctx context.Context, msg *envelope) {
	if msg.Subscription == nil {
		return
	}
	_ = c.send(ctx, map[string]any{
		"forget": msg.Subscription.ID,
		"req_id": c.nextReqID(),
	})
}

func (c *Client) send(ctx context.Context, req map[string]any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

// readReply reads frames until one matches both the wanted msg_type and the
// echoed req_id; unrelated subscription traffic and leftovers from earlier
// exchanges are skipped. Error envelopes only abort when they answer this
// request.
func (c *Client) readReply(ctx context.Context, msgType string, reqID int64) (*envelope, error) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return nil, err
		}
		var msg envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}
		if msg.ReqID != reqID {
			continue
		}
		if msg.Error != nil {
			return nil, fmt.Errorf("deriv: %s: %s", msg.Error.Code, msg.Error.Message)
		}
		if msg.MsgType == msgType {
			return &msg, nil
		}
	}
}
