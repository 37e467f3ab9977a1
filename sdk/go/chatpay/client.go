// Package chatpay is a Go client for the Chat-to-Pay Relay HTTP API.
package chatpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultHTTPTimeout is used by clients created without a custom http.Client.
// Submission waits on the relay's own 30s upstream timeout, so it sits above that.
const DefaultHTTPTimeout = 45 * time.Second

// Client wraps the HTTP interactions with the relay.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Intent is the action extracted from a chat message.
type Intent struct {
	Action string   `json:"action"`
	Amount *float64 `json:"amount"`
	To     *string  `json:"to"`
}

// TransactionRequest is shared by the build and submit calls.
type TransactionRequest struct {
	UnsignedTx     *string        `json:"unsigned_tx,omitempty"`
	SignedTx       *string        `json:"signed_tx,omitempty"`
	FromWallet     *string        `json:"from_wallet,omitempty"`
	ToAddress      *string        `json:"to_address,omitempty"`
	AmountLovelace *int64         `json:"amount_lovelace,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Receipt describes a submitted payment.
type Receipt struct {
	TxID           *string        `json:"tx_id"`
	From           *string        `json:"from"`
	To             *string        `json:"to"`
	AmountLovelace *int64         `json:"amount_lovelace"`
	Metadata       map[string]any `json:"metadata"`
	ReceiptID      string         `json:"receipt_id"`
	IPFSCID        *string        `json:"ipfs_cid,omitempty"`
}

// Submission is the result of SubmitSignedTx.
type Submission struct {
	Tx      json.RawMessage `json:"tx"`
	Receipt Receipt         `json:"receipt"`
}

// Health is the relay liveness response.
type Health struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// APIError represents a non-2xx relay response.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("chatpay api error (%d): %s - %s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("chatpay api error (%d): %s", e.StatusCode, e.Detail)
}

// NewClient instantiates a client for the relay at rawURL. When httpClient is
// nil, a default client with DefaultHTTPTimeout is used.
func NewClient(rawURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// ResolveIntent asks the relay to interpret a chat message.
func (c *Client) ResolveIntent(ctx context.Context, message, userID string) (Intent, error) {
	payload := map[string]string{"message": message}
	if userID != "" {
		payload["user_id"] = userID
	}
	var out struct {
		Intent Intent `json:"intent"`
	}
	if err := c.post(ctx, "/intent", payload, &out); err != nil {
		return Intent{}, err
	}
	return out.Intent, nil
}

// CreateUnsignedTx returns the transaction service's build response verbatim.
func (c *Client) CreateUnsignedTx(ctx context.Context, req TransactionRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.post(ctx, "/create-unsigned-tx", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitSignedTx submits a signed transaction and returns its receipt.
func (c *Client) SubmitSignedTx(ctx context.Context, req TransactionRequest) (Submission, error) {
	var out Submission
	if err := c.post(ctx, "/submit-signed-tx", req, &out); err != nil {
		return Submission{}, err
	}
	return out, nil
}

// VerifyTx looks up a transaction by id.
func (c *Client) VerifyTx(ctx context.Context, txID string) (json.RawMessage, error) {
	var out struct {
		Tx json.RawMessage `json:"tx"`
	}
	if err := c.post(ctx, "/verify-tx", map[string]string{"tx_id": txID}, &out); err != nil {
		return nil, err
	}
	return out.Tx, nil
}

// AddressInfo queries the ledger indexer for one or more addresses.
func (c *Client) AddressInfo(ctx context.Context, addresses ...string) (json.RawMessage, error) {
	var out json.RawMessage
	if len(addresses) == 1 {
		err := c.get(ctx, "/koios/address_info?address="+url.QueryEscape(addresses[0]), &out)
		return out, err
	}
	err := c.post(ctx, "/koios/address_info", map[string][]string{"addresses": addresses}, &out)
	return out, err
}

// AddressUTXOs queries unspent outputs for the given addresses.
func (c *Client) AddressUTXOs(ctx context.Context, addresses ...string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.post(ctx, "/koios/address_utxo", map[string][]string{"addresses": addresses}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health calls the liveness endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	if err := c.get(ctx, "/health", &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	ref.Path = path.Join(c.baseURL.Path, ref.Path)
	u := c.baseURL.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		if apiErr.Detail == "" {
			apiErr.Detail = string(bytes.TrimSpace(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
