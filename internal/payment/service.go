package payment

import (
	"context"
	"encoding/json"
	"log/slog"

	"ChatPay-Relay/pkg/logger"
)

// Service 组合交易编排器与回执流水线。
type Service struct {
	orchestrator *Orchestrator
	pipeline     *Pipeline
}

// NewService 创建支付服务。pipeline 为 nil 时使用未配置任何副作用的流水线。
func NewService(orchestrator *Orchestrator, pipeline *Pipeline) *Service {
	if pipeline == nil {
		pipeline = NewPipeline()
	}
	return &Service{orchestrator: orchestrator, pipeline: pipeline}
}

// BuildUnsigned 请求构建未签名交易。
func (s *Service) BuildUnsigned(ctx context.Context, req TransactionRequest) (json.RawMessage, error) {
	return s.orchestrator.BuildUnsigned(ctx, req)
}

// Submit 提交已签名交易并生成回执。只有提交本身的失败会返回错误。
func (s *Service) Submit(ctx context.Context, req TransactionRequest) (*SubmitResult, error) {
	txResult, err := s.orchestrator.SubmitSigned(ctx, req)
	if err != nil {
		return nil, err
	}

	receipt, outcome := s.pipeline.Process(ctx, txResult, req)

	txID := ""
	if receipt.TxID != nil {
		txID = *receipt.TxID
	}
	logger.Audit().Info("tx_submitted",
		slog.String("tx_id", txID),
		slog.String("receipt_id", receipt.ReceiptID),
		slog.Bool("pinned", outcome.Pinned),
		slog.Bool("persisted", outcome.Persisted),
		slog.Bool("published", outcome.Published),
	)

	return &SubmitResult{Tx: txResult, Receipt: receipt, Outcome: outcome}, nil
}
