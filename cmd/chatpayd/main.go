package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChatPay-Relay/internal/api"
	"ChatPay-Relay/internal/config"
	"ChatPay-Relay/internal/history"
	"ChatPay-Relay/internal/intent"
	"ChatPay-Relay/internal/ledger"
	"ChatPay-Relay/internal/llm"
	"ChatPay-Relay/internal/llm/openai"
	"ChatPay-Relay/internal/notify"
	"ChatPay-Relay/internal/payment"
	"ChatPay-Relay/internal/storage"
	"ChatPay-Relay/internal/storage/ipfs"
	"ChatPay-Relay/internal/storage/mysql"
	"ChatPay-Relay/internal/storage/postgres"
	"ChatPay-Relay/internal/storage/supabase"
	"ChatPay-Relay/internal/web3/provider"
	"ChatPay-Relay/pkg/logger"
)

// main 是 chatpayd 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("chatpayd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("CHATPAY_CONFIG"))
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.Outputs,
		Audit: logger.AuditConfig{
			Enabled: cfg.Logging.AuditPath != "",
			Path:    cfg.Logging.AuditPath,
		},
	}); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()
	appLog := logger.Named("chatpayd")

	registry, err := provider.NewRegistry(cfg)
	if err != nil {
		return err
	}

	llmClient, err := createLLMClient(cfg)
	if err != nil {
		return err
	}
	resolver := intent.NewResolver(llmClient, intent.WithMaxTokens(cfg.LLM.MaxTokens))

	var pipelineOpts []payment.PipelineOption
	if cfg.Pinning.Enabled() {
		pinner, err := ipfs.NewClient(ipfs.Config{
			Token:   cfg.Pinning.Token,
			BaseURL: cfg.Pinning.BaseURL,
			Timeout: cfg.Pinning.Timeout(),
		})
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, payment.WithPinner(pinner))
	} else {
		appLog.Info("未配置 web3.storage token，跳过回执上传")
	}

	store, err := createRecordStore(ctx, cfg)
	if err != nil {
		appLog.Warn("交易记录存储不可用，跳过落库", slog.String("driver", cfg.Store.Driver), slog.Any("error", err))
	}
	if store != nil {
		defer store.Close()
		pipelineOpts = append(pipelineOpts, payment.WithRecorder(store))
	}

	publisher, err := notify.New(cfg.Notify)
	if err != nil {
		appLog.Warn("回执通知不可用，跳过投递", slog.String("driver", cfg.Notify.Driver), slog.Any("error", err))
	}
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				appLog.Warn("关闭通知通道失败", slog.Any("error", err))
			}
		}()
		pipelineOpts = append(pipelineOpts, payment.WithPublisher(publisher))
	}

	payments := payment.NewService(payment.NewOrchestrator(registry.TxService()), payment.NewPipeline(pipelineOpts...))
	facade := ledger.NewFacade(registry.Indexer(), registry.TxService(), ledger.Config{
		InfoEndpoint: cfg.Indexer.InfoEndpoint,
		UTXOEndpoint: cfg.Indexer.UTXOEndpoint,
		UTXOFallback: cfg.Indexer.UTXOFallback,
		InfoTimeout:  seconds(cfg.Indexer.TimeoutSeconds),
		BatchTimeout: seconds(cfg.Indexer.BatchTimeoutSeconds),
	})

	historySvc, err := createHistoryService(cfg)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg.Server.Address, api.Dependencies{
		Intents:        resolver,
		Payments:       payments,
		Ledger:         facade,
		History:        historySvc,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	return server.Start(ctx)
}

// createLLMClient 在配置了 API Key 时返回补全客户端，否则返回 nil 并使用规则解析。
func createLLMClient(cfg *config.Config) (llm.Client, error) {
	if !cfg.LLM.Enabled() {
		logger.L().Info("未配置 OPENAI_API_KEY，意图识别使用规则解析")
		return nil, nil
	}
	client, err := openai.NewClient(openai.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// createRecordStore 按驱动创建交易记录存储，未配置时返回 nil。
func createRecordStore(ctx context.Context, cfg *config.Config) (storage.RecordStore, error) {
	if !cfg.Store.Enabled() {
		logger.L().Info("未配置交易记录存储，跳过落库")
		return nil, nil
	}
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		store, err := postgres.NewStore(ctx, postgres.Config{
			DSN:          cfg.Store.DSN,
			MaxOpenConns: cfg.Store.MaxOpenConns,
			Timeout:      cfg.Store.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreDriverMySQL:
		store, err := mysql.NewTransactionStore(ctx, mysql.Config{
			DSN:          cfg.Store.DSN,
			MaxOpenConns: cfg.Store.MaxOpenConns,
			Timeout:      cfg.Store.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		client, err := newSupabaseClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// createHistoryService 配置了 Supabase REST 时转发，否则写入本地文件。
func createHistoryService(cfg *config.Config) (*history.Service, error) {
	local := history.NewFileLog(cfg.History.File)
	if !cfg.Store.RESTEnabled() {
		return history.NewService(nil, local), nil
	}
	client, err := newSupabaseClient(cfg)
	if err != nil {
		return nil, err
	}
	return history.NewService(client, local), nil
}

func newSupabaseClient(cfg *config.Config) (*supabase.Client, error) {
	return supabase.NewClient(supabase.Config{
		URL:     cfg.Store.SupabaseURL,
		Key:     cfg.Store.SupabaseKey,
		Table:   cfg.Store.Table,
		Timeout: cfg.Store.Timeout(),
	})
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
