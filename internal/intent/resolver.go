package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"ChatPay-Relay/internal/llm"
	"ChatPay-Relay/pkg/logger"
)

// Source 标识意图结果的来源。
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Prompt 是发送给大模型的固定指令，用户消息追加在末尾。
const Prompt = `You are an assistant that extracts a single JSON action from user messages.
Only respond with valid JSON following the schema:
{ "action": "send_payment" | "check_balance" | "receive" | "unknown", "amount": number|null, "to": string|null }
Examples:
- "Send 200 to Nirmala" -> { "action": "send_payment", "amount": 200, "to": "Nirmala" }
- "What's my balance?" -> { "action": "check_balance", "amount": null, "to": null }
If you cannot detect intent, return { "action":"unknown", "amount": null, "to": null }.
`

var errNoJSONObject = errors.New("补全结果中没有 JSON 对象")

// Result 保存解析结果。大模型路径返回的 JSON 原样透传，不做结构校验。
type Result struct {
	Raw    json.RawMessage
	Source Source
}

// MarshalJSON 输出原始 JSON。
func (r Result) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// Resolver 负责把自然语言消息转换为意图。
type Resolver struct {
	client    llm.Client
	maxTokens int
	logger    *slog.Logger
}

// Option 定义 Resolver 的可选配置。
type Option func(*Resolver)

// WithMaxTokens 设置补全的 token 上限。
func WithMaxTokens(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxTokens = n
		}
	}
}

// WithLogger 注入日志实例。
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver 创建意图解析器。client 为 nil 时始终使用兜底解析器。
func NewResolver(client llm.Client, opts ...Option) *Resolver {
	r := &Resolver{client: client, maxTokens: 150, logger: logger.Named("intent")}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve 解析消息意图，任何上游异常都会降级为兜底解析。
func (r *Resolver) Resolve(ctx context.Context, message string) Result {
	if r.client == nil {
		r.logger.Debug("未配置大模型，使用兜底解析")
		return fallback(message)
	}

	raw, err := r.complete(ctx, message)
	if err != nil {
		r.logger.Warn("大模型意图识别失败，使用兜底解析", slog.Any("error", err))
		return fallback(message)
	}
	return Result{Raw: raw, Source: SourceLLM}
}

func (r *Resolver) complete(ctx context.Context, message string) (json.RawMessage, error) {
	resp, err := r.client.Complete(ctx, llm.CompletionRequest{
		Prompt:      Prompt + "\nUser: " + message + "\nJSON:",
		MaxTokens:   r.maxTokens,
		Temperature: 0,
		TopP:        1,
	})
	if err != nil {
		return nil, err
	}
	return extractObject(resp.Text)
}

// extractObject 截取第一个 '{' 到最后一个 '}' 之间的内容并校验其为合法 JSON。
func extractObject(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, errNoJSONObject
	}
	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		return nil, errors.New("补全结果中的 JSON 无法解析")
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, candidate); err != nil {
		return nil, err
	}
	return compacted.Bytes(), nil
}

func fallback(message string) Result {
	encoded, _ := json.Marshal(ParseSimple(message))
	return Result{Raw: encoded, Source: SourceFallback}
}
