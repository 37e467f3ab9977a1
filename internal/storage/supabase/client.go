package supabase

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
	"ChatPay-Relay/internal/storage"
)

// Config 描述 Supabase REST 接口参数。
type Config struct {
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
}

// Client 通过 PostgREST 行插入接口写入记录。
type Client struct {
	endpoint   string
	key        string
	httpClient *http.Client
}

var _ storage.RecordStore = (*Client)(nil)

// NewClient 创建 Supabase 客户端，URL 与密钥缺一不可。
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	key := strings.TrimSpace(cfg.Key)
	if base == "" || key == "" {
		return nil, errors.New("Supabase 地址与服务密钥均需配置")
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "transactions"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		endpoint:   base + "/rest/v1/" + table,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Accepted 判断插入接口的响应状态是否表示成功。
func Accepted(status int) bool {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return true
	default:
		return false
	}
}

// Post 把任意 JSON 负载写入数据表，返回上游状态码与响应体。
// 仅在未拿到任何响应时返回错误。
func (c *Client) Post(ctx context.Context, payload any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.CodeInvalidArgument, err, "序列化记录失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.CodeTransportFailure, err, "构建 Supabase 请求失败")
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apperrors.FromTransport(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, body, nil
}

// Insert 写入一条交易记录，非 200/201/204 状态视为失败。
func (c *Client) Insert(ctx context.Context, record storage.TransactionRecord) error {
	if record.Metadata == nil {
		record.Metadata = map[string]any{}
	}
	status, body, err := c.Post(ctx, record)
	if err != nil {
		return err
	}
	if !Accepted(status) {
		text := strings.TrimSpace(string(body))
		return apperrors.New(apperrors.CodeStorageFailure,
			fmt.Sprintf("Supabase 写入失败，状态 %d", status),
			apperrors.WithUpstream(status, text))
	}
	return nil
}

// Close 无需释放资源。
func (c *Client) Close() error { return nil }
