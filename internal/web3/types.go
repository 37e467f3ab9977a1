package web3

import (
	"context"
	"encoding/json"
)

// BuildRequest 是请求构建未签名交易所需的参数。
type BuildRequest struct {
	ToAddress      *string        `json:"to_address"`
	AmountLovelace *int64         `json:"amount_lovelace"`
	Metadata       map[string]any `json:"metadata"`
}

// TxService 描述交易构建/提交微服务。所有返回值均为上游原始 JSON。
type TxService interface {
	BuildUnsigned(ctx context.Context, req BuildRequest) (json.RawMessage, error)
	Submit(ctx context.Context, payload any) (json.RawMessage, error)
	LookupTx(ctx context.Context, txID string) (json.RawMessage, error)
}

// Indexer 描述只读账本索引服务，endpoint 为相对于基础地址的路径。
type Indexer interface {
	Query(ctx context.Context, endpoint string, addresses []string) (json.RawMessage, error)
}
