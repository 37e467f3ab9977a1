package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ChatPay-Relay/internal/errors"
	"ChatPay-Relay/internal/observability/metrics"
	"ChatPay-Relay/internal/web3"
	"ChatPay-Relay/pkg/logger"
)

// 账本查询相关的错误码。
const (
	CodeBadRequest          errors.Code = "BAD_REQUEST"
	CodeUpstreamQueryFailed errors.Code = "UPSTREAM_QUERY_FAILED"
	CodeTxLookupFailed      errors.Code = "TX_LOOKUP_FAILED"
)

func init() {
	errors.Register(CodeBadRequest, errors.Attributes{
		Message:    "bad request",
		Severity:   errors.SeverityInfo,
		HTTPStatus: http.StatusBadRequest,
	})
	errors.Register(CodeUpstreamQueryFailed, errors.Attributes{
		Message:    "Koios error",
		Severity:   errors.SeverityWarning,
		Retryable:  true,
		HTTPStatus: http.StatusBadGateway,
	})
	errors.Register(CodeTxLookupFailed, errors.Attributes{
		Message:    "tx lookup failed",
		Severity:   errors.SeverityWarning,
		Retryable:  true,
		HTTPStatus: http.StatusInternalServerError,
	})
}

// TxLookup 按交易 ID 查询交易详情。
type TxLookup interface {
	LookupTx(ctx context.Context, txID string) (json.RawMessage, error)
}

// Config 描述索引端点名称与超时。
type Config struct {
	InfoEndpoint string
	UTXOEndpoint string
	UTXOFallback string
	InfoTimeout  time.Duration
	BatchTimeout time.Duration
}

// Facade 是只读账本查询入口。
type Facade struct {
	indexer web3.Indexer
	tx      TxLookup
	cfg     Config
	logger  *slog.Logger
}

// NewFacade 创建账本查询门面。
func NewFacade(indexer web3.Indexer, tx TxLookup, cfg Config) *Facade {
	if cfg.InfoEndpoint == "" {
		cfg.InfoEndpoint = "address_info"
	}
	if cfg.UTXOEndpoint == "" {
		cfg.UTXOEndpoint = "address_utxos"
	}
	if cfg.InfoTimeout <= 0 {
		cfg.InfoTimeout = 20 * time.Second
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 25 * time.Second
	}
	return &Facade{indexer: indexer, tx: tx, cfg: cfg, logger: logger.Named("ledger")}
}

// AddressInfo 查询单个地址。
func (f *Facade) AddressInfo(ctx context.Context, address string) (json.RawMessage, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New(CodeBadRequest, "address required")
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.InfoTimeout)
	defer cancel()

	raw, err := f.indexer.Query(ctx, f.cfg.InfoEndpoint, []string{address})
	if err != nil {
		return nil, queryError(err)
	}
	return raw, nil
}

// AddressInfoBatch 批量查询地址信息。
func (f *Facade) AddressInfoBatch(ctx context.Context, addresses []string) (json.RawMessage, error) {
	if len(addresses) == 0 {
		return nil, errors.New(CodeBadRequest, "addresses array required")
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.BatchTimeout)
	defer cancel()

	raw, err := f.indexer.Query(ctx, f.cfg.InfoEndpoint, addresses)
	if err != nil {
		return nil, queryError(err)
	}
	return raw, nil
}

// AddressUTXOs 查询地址 UTXO。主端点返回非 2xx 时改用备用端点重试一次，
// 若备用端点也失败则返回主端点的错误；网络层错误不触发重试。
func (f *Facade) AddressUTXOs(ctx context.Context, addresses []string) (json.RawMessage, error) {
	if len(addresses) == 0 {
		return nil, errors.New(CodeBadRequest, "addresses array required")
	}

	raw, err := f.queryWithTimeout(ctx, f.cfg.UTXOEndpoint, addresses)
	if err == nil {
		return raw, nil
	}
	if !web3.IsStatusFailure(err) || f.cfg.UTXOFallback == "" {
		return nil, queryError(err)
	}

	f.logger.Info("UTXO 主端点失败，尝试备用端点",
		slog.String("primary", f.cfg.UTXOEndpoint),
		slog.String("fallback", f.cfg.UTXOFallback),
		slog.Any("error", err))

	fallbackRaw, fallbackErr := f.queryWithTimeout(ctx, f.cfg.UTXOFallback, addresses)
	if fallbackErr == nil {
		metrics.IndexerFallback(metrics.OutcomeSuccess)
		return fallbackRaw, nil
	}
	metrics.IndexerFallback(metrics.OutcomeFailure)
	f.logger.Warn("UTXO 备用端点失败", slog.Any("error", fallbackErr))
	return nil, queryError(err)
}

// VerifyTx 查询交易详情并原样返回。
func (f *Facade) VerifyTx(ctx context.Context, txID string) (json.RawMessage, error) {
	if txID == "" {
		return nil, errors.New(CodeBadRequest, "tx_id required")
	}
	if f.tx == nil {
		return nil, errors.New(errors.CodeInitializationFailed, "交易查询服务未初始化")
	}
	raw, err := f.tx.LookupTx(ctx, txID)
	if err != nil {
		if body, ok := web3.UpstreamBody(err); ok && web3.IsStatusFailure(err) {
			e, _ := errors.From(err)
			return nil, errors.Wrap(CodeTxLookupFailed, err, "MeshJS lookup failed: "+body,
				errors.WithUpstream(e.UpstreamStatus(), body))
		}
		return nil, errors.Wrap(CodeTxLookupFailed, err, errors.DetailOf(err))
	}
	return raw, nil
}

func (f *Facade) queryWithTimeout(ctx context.Context, endpoint string, addresses []string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.BatchTimeout)
	defer cancel()
	return f.indexer.Query(ctx, endpoint, addresses)
}

// queryError 把索引服务的非 2xx 响应转换为 502，其余错误保持原有错误码。
func queryError(err error) error {
	if web3.IsStatusFailure(err) {
		body, _ := web3.UpstreamBody(err)
		e, _ := errors.From(err)
		return errors.Wrap(CodeUpstreamQueryFailed, err, "Koios error: "+body,
			errors.WithUpstream(e.UpstreamStatus(), body))
	}
	return errors.Wrap(errors.CodeOf(err), err, errors.DetailOf(err))
}

// ParseAddresses 从请求体中读取 addresses（或 _addresses）字段。
// 字段缺失、为空或不是字符串数组时返回 BAD_REQUEST。
func ParseAddresses(body json.RawMessage) ([]string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.New(CodeBadRequest, "addresses array required")
	}
	for _, key := range []string{"addresses", "_addresses"} {
		raw, ok := fields[key]
		if !ok || isFalsy(raw) {
			continue
		}
		var addresses []string
		if err := json.Unmarshal(raw, &addresses); err != nil || len(addresses) == 0 {
			return nil, errors.New(CodeBadRequest, "addresses array required")
		}
		return addresses, nil
	}
	return nil, errors.New(CodeBadRequest, "addresses array required")
}

// isFalsy 判断 JSON 值是否为 null、空数组、空字符串、false 或 0。
func isFalsy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "null", "[]", `""`, "false", "0", "{}":
		return true
	default:
		return false
	}
}
