package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ChatPay-Relay/internal/history"
	"ChatPay-Relay/internal/intent"
	"ChatPay-Relay/internal/payment"
	"ChatPay-Relay/pkg/logger"
)

// IntentResolver 把聊天消息解析为意图。
type IntentResolver interface {
	Resolve(ctx context.Context, message string) intent.Result
}

// PaymentService 负责交易的构建与提交。
type PaymentService interface {
	BuildUnsigned(ctx context.Context, req payment.TransactionRequest) (json.RawMessage, error)
	Submit(ctx context.Context, req payment.TransactionRequest) (*payment.SubmitResult, error)
}

// LedgerService 提供只读账本查询。
type LedgerService interface {
	AddressInfo(ctx context.Context, address string) (json.RawMessage, error)
	AddressInfoBatch(ctx context.Context, addresses []string) (json.RawMessage, error)
	AddressUTXOs(ctx context.Context, addresses []string) (json.RawMessage, error)
	VerifyTx(ctx context.Context, txID string) (json.RawMessage, error)
}

// HistoryService 保存前端提交的历史记录。
type HistoryService interface {
	Save(ctx context.Context, payload json.RawMessage) (history.Result, error)
}

// Dependencies 汇总 API 层依赖的业务服务。
type Dependencies struct {
	Intents        IntentResolver
	Payments       PaymentService
	Ledger         LedgerService
	History        HistoryService
	AllowedOrigins []string
}

// Server 负责暴露 REST 接口。
type Server struct {
	addr    string
	deps    Dependencies
	logger  *slog.Logger
	handler http.Handler
	now     func() time.Time
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, deps Dependencies) *Server {
	s := &Server{
		addr:   addr,
		deps:   deps,
		logger: logger.Named("api"),
		now:    time.Now,
	}
	s.handler = s.routes()
	return s
}

// Handler 返回完整的 HTTP 处理链。
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, s.handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("API 服务已启动", slog.String("address", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "服务已关闭", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
