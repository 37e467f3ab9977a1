package payment

import (
	"context"
	"encoding/json"
	"log/slog"

	"ChatPay-Relay/internal/errors"
	"ChatPay-Relay/internal/web3"
	"ChatPay-Relay/pkg/logger"
)

// Orchestrator 负责向交易微服务转发构建与提交请求。
type Orchestrator struct {
	tx     web3.TxService
	logger *slog.Logger
}

// NewOrchestrator 创建交易编排器。
func NewOrchestrator(tx web3.TxService) *Orchestrator {
	return &Orchestrator{tx: tx, logger: logger.Named("payment")}
}

// BuildUnsigned 请求构建未签名交易，返回上游原始 JSON。
func (o *Orchestrator) BuildUnsigned(ctx context.Context, req TransactionRequest) (json.RawMessage, error) {
	if o == nil || o.tx == nil {
		return nil, errors.New(errors.CodeInitializationFailed, "交易微服务未初始化")
	}
	if err := validateAmount(req); err != nil {
		return nil, err
	}

	raw, err := o.tx.BuildUnsigned(ctx, web3.BuildRequest{
		ToAddress:      req.ToAddress,
		AmountLovelace: req.AmountLovelace,
		Metadata:       req.Metadata,
	})
	if err != nil {
		o.logger.Warn("构建未签名交易失败", slog.Any("error", err))
		return nil, translate(CodeBuildFailed, "MeshJS build failed", err)
	}
	return raw, nil
}

// SubmitSigned 提交已签名交易。缺少 signed_tx 时不会发起任何网络请求。
func (o *Orchestrator) SubmitSigned(ctx context.Context, req TransactionRequest) (json.RawMessage, error) {
	if !req.HasSignature() {
		return nil, errors.New(CodeMissingSignature, "signed_tx required")
	}
	if o == nil || o.tx == nil {
		return nil, errors.New(errors.CodeInitializationFailed, "交易微服务未初始化")
	}
	if err := validateAmount(req); err != nil {
		return nil, err
	}

	raw, err := o.tx.Submit(ctx, req)
	if err != nil {
		o.logger.Warn("提交交易失败", slog.Any("error", err))
		return nil, translate(CodeSubmitFailed, "MeshJS submit failed", err)
	}
	return raw, nil
}

func validateAmount(req TransactionRequest) error {
	if req.AmountLovelace != nil && *req.AmountLovelace < 0 {
		return errors.New(errors.CodeInvalidArgument, "amount_lovelace must be non-negative")
	}
	return nil
}

// translate 把上游错误转换为单一的领域错误，尽量保留上游状态与响应体。
func translate(code errors.Code, prefix string, err error) error {
	if body, ok := web3.UpstreamBody(err); ok && web3.IsStatusFailure(err) {
		e, _ := errors.From(err)
		return errors.Wrap(code, err, prefix+": "+body, errors.WithUpstream(e.UpstreamStatus(), body))
	}
	detail := err.Error()
	if e, ok := errors.From(err); ok {
		detail = e.Detail()
	}
	return errors.Wrap(code, err, prefix+": "+detail)
}
