package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "ChatPay-Relay/internal/errors"
)

// Config 描述内容寻址存储上传接口。
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client 把 JSON 文档上传到 web3.storage 兼容的接口。
type Client struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// NewClient 创建上传客户端，未配置 token 时返回错误。
func NewClient(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("未配置 web3.storage token")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.web3.storage"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		token:      token,
		endpoint:   base + "/upload",
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Upload 上传文档并返回服务端的原始 JSON 响应。仅 200 与 202 视为成功。
func (c *Client) Upload(ctx context.Context, document any) (json.RawMessage, error) {
	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, err, "序列化上传内容失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransportFailure, err, "构建上传请求失败")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.FromTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.FromTransport(err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, apperrors.New(apperrors.CodeUpstreamFailure,
			fmt.Sprintf("上传返回状态 %d", resp.StatusCode),
			apperrors.WithUpstream(resp.StatusCode, strings.TrimSpace(string(body))))
	}
	if !json.Valid(body) {
		return nil, apperrors.New(apperrors.CodeUpstreamFailure, "上传响应不是合法 JSON")
	}
	return json.RawMessage(body), nil
}
