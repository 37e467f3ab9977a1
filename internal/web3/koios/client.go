package koios

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ChatPay-Relay/internal/web3"
)

// Config 描述 Koios 客户端参数。
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client 调用 Koios 只读接口。
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

var _ web3.Indexer = (*Client)(nil)

// NewClient 创建 Koios 客户端。
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("未配置 Koios 地址")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Client{baseURL: baseURL, timeout: timeout, httpClient: &http.Client{}}, nil
}

// Query 以 {"_addresses": [...]} 请求体调用指定端点。
// 调用方可通过 ctx 设置更短的截止时间。
func (c *Client) Query(ctx context.Context, endpoint string, addresses []string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	payload := map[string][]string{"_addresses": addresses}
	return web3.DoJSON(ctx, c.httpClient, http.MethodPost, web3.JoinURL(c.baseURL, endpoint), payload)
}
