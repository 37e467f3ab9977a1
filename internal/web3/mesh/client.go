package mesh

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ChatPay-Relay/internal/web3"
)

// Config 描述交易微服务客户端的参数。
type Config struct {
	BaseURL       string
	BuildTimeout  time.Duration
	SubmitTimeout time.Duration
	LookupTimeout time.Duration
}

// Client 通过 HTTP 调用 MeshJS 交易微服务。
type Client struct {
	baseURL       string
	buildTimeout  time.Duration
	submitTimeout time.Duration
	lookupTimeout time.Duration
	httpClient    *http.Client
}

var _ web3.TxService = (*Client)(nil)

// NewClient 创建交易微服务客户端。
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("未配置交易微服务地址")
	}
	return &Client{
		baseURL:       baseURL,
		buildTimeout:  orDefault(cfg.BuildTimeout, 30*time.Second),
		submitTimeout: orDefault(cfg.SubmitTimeout, 30*time.Second),
		lookupTimeout: orDefault(cfg.LookupTimeout, 10*time.Second),
		httpClient:    &http.Client{},
	}, nil
}

// BuildUnsigned 请求构建未签名交易。
func (c *Client) BuildUnsigned(ctx context.Context, req web3.BuildRequest) (json.RawMessage, error) {
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	ctx, cancel := context.WithTimeout(ctx, c.buildTimeout)
	defer cancel()
	return web3.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/build-unsigned-tx", req)
}

// Submit 转发完整的已签名交易请求体。
func (c *Client) Submit(ctx context.Context, payload any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()
	return web3.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/submit-tx", payload)
}

// LookupTx 查询交易详情。
func (c *Client) LookupTx(ctx context.Context, txID string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()
	return web3.DoJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/tx/"+url.PathEscape(txID), nil)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
