package web3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ChatPay-Relay/internal/errors"
)

const maxBodyBytes = 4 << 20

// DoJSON 发送 JSON 请求并读取上游响应。
//
// 非 2xx 状态返回携带 status/body 元数据的 UPSTREAM_FAILURE；
// 网络错误返回 TRANSPORT_FAILURE，超时返回 TIMEOUT；
// 成功但响应体不是合法 JSON 时同样视为 UPSTREAM_FAILURE。
func DoJSON(ctx context.Context, client *http.Client, method, url string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInvalidArgument, err, "序列化请求失败")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(errors.CodeTransportFailure, err, "构建请求失败")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.FromTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.FromTransport(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text := string(raw)
		return nil, errors.New(errors.CodeUpstreamFailure,
			fmt.Sprintf("上游返回错误状态 %d", resp.StatusCode),
			errors.WithUpstream(resp.StatusCode, text))
	}

	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return nil, errors.New(errors.CodeUpstreamFailure, "上游响应不是合法 JSON",
			errors.WithUpstream(resp.StatusCode, strings.TrimSpace(string(raw))))
	}
	return json.RawMessage(trimmed), nil
}

// UpstreamBody 返回上游错误中记录的响应体。
func UpstreamBody(err error) (string, bool) {
	e, ok := errors.From(err)
	if !ok || e.Code() != errors.CodeUpstreamFailure {
		return "", false
	}
	body, present := e.Metadata()[errors.MetaUpstreamBody]
	return body, present
}

// IsStatusFailure 判断错误是否来自上游的非 2xx 响应。
func IsStatusFailure(err error) bool {
	e, ok := errors.From(err)
	if !ok || e.Code() != errors.CodeUpstreamFailure {
		return false
	}
	status := e.UpstreamStatus()
	return status != 0 && (status < http.StatusOK || status >= http.StatusMultipleChoices)
}

// JoinURL 拼接基础地址与相对路径。
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
