package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ChatPay-Relay/internal/observability/metrics"
	"ChatPay-Relay/internal/storage"
	"ChatPay-Relay/pkg/logger"
)

// 流水线步骤名称，用于日志与指标。
const (
	StepPin     = "pin"
	StepPersist = "persist"
	StepPublish = "publish"
)

// Pinner 把回执上传到内容寻址存储，返回服务端原始响应。
type Pinner interface {
	Upload(ctx context.Context, document any) (json.RawMessage, error)
}

// Recorder 写入交易记录。
type Recorder interface {
	Insert(ctx context.Context, record storage.TransactionRecord) error
}

// Publisher 投递回执事件。
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Pipeline 在提交成功后生成回执并执行尽力而为的副作用。
// 任一依赖为 nil 表示该步骤未配置，直接跳过。
type Pipeline struct {
	pinner    Pinner
	recorder  Recorder
	publisher Publisher
	newID     func() string
	logger    *slog.Logger
}

// PipelineOption 定义 Pipeline 的可选依赖。
type PipelineOption func(*Pipeline)

// WithPinner 启用回执上传。
func WithPinner(p Pinner) PipelineOption {
	return func(pl *Pipeline) { pl.pinner = p }
}

// WithRecorder 启用交易记录落库。
func WithRecorder(r Recorder) PipelineOption {
	return func(pl *Pipeline) { pl.recorder = r }
}

// WithPublisher 启用回执事件投递。
func WithPublisher(p Publisher) PipelineOption {
	return func(pl *Pipeline) { pl.publisher = p }
}

// NewPipeline 创建回执流水线。
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		newID:  func() string { return uuid.NewString() },
		logger: logger.Named("receipt"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Process 生成回执并依次执行上传、落库与事件投递。该方法不会失败。
func (p *Pipeline) Process(ctx context.Context, txResult json.RawMessage, req TransactionRequest) (Receipt, Outcome) {
	receipt := Receipt{
		From:           req.FromWallet,
		To:             req.ToAddress,
		AmountLovelace: req.AmountLovelace,
		Metadata:       req.Metadata,
		ReceiptID:      p.newID(),
	}
	if receipt.Metadata == nil {
		receipt.Metadata = map[string]any{}
	}
	if txID, ok := FirstString(txResult, TxIDFields); ok {
		receipt.TxID = &txID
	}

	var outcome Outcome

	if p.pinner == nil {
		metrics.PipelineStep(StepPin, metrics.OutcomeSkipped)
	} else {
		outcome.Pinned = p.guard(StepPin, func() error {
			raw, err := p.pinner.Upload(ctx, receipt)
			if err != nil {
				return err
			}
			cid, ok := FirstString(raw, CIDPaths)
			if !ok {
				return fmt.Errorf("上传响应中没有 cid: %s", truncate(raw))
			}
			receipt.IPFSCID = &cid
			return nil
		})
	}

	if p.recorder == nil {
		metrics.PipelineStep(StepPersist, metrics.OutcomeSkipped)
	} else {
		outcome.Persisted = p.guard(StepPersist, func() error {
			return p.recorder.Insert(ctx, storage.TransactionRecord{
				TxID:           receipt.TxID,
				FromAddress:    req.FromWallet,
				ToAddress:      req.ToAddress,
				AmountLovelace: req.AmountLovelace,
				Metadata:       receipt.Metadata,
				IPFSCID:        receipt.IPFSCID,
			})
		})
	}

	if p.publisher == nil {
		metrics.PipelineStep(StepPublish, metrics.OutcomeSkipped)
	} else {
		outcome.Published = p.guard(StepPublish, func() error {
			payload, err := json.Marshal(receipt)
			if err != nil {
				return err
			}
			return p.publisher.Publish(ctx, payload)
		})
	}

	return receipt, outcome
}

// guard 在独立的故障边界内执行一个步骤，错误与 panic 只记录日志。
func (p *Pipeline) guard(step string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("回执步骤发生 panic", slog.String("step", step), slog.Any("panic", r))
			metrics.PipelineStep(step, metrics.OutcomeFailure)
			ok = false
		}
	}()

	if err := fn(); err != nil {
		p.logger.Warn("回执步骤失败", slog.String("step", step), slog.Any("error", err))
		metrics.PipelineStep(step, metrics.OutcomeFailure)
		return false
	}
	metrics.PipelineStep(step, metrics.OutcomeSuccess)
	return true
}

func truncate(raw json.RawMessage) string {
	const limit = 256
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
