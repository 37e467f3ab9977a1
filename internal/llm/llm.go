package llm

import "context"

// CompletionRequest 描述一次文本补全请求。
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Completion 是大模型返回的原始文本。
type Completion struct {
	Text  string
	Model string
}

// Client 定义了调用大模型补全接口的统一契约。
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
