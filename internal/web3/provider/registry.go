package provider

import (
	"errors"
	"fmt"
	"time"

	"ChatPay-Relay/internal/config"
	"ChatPay-Relay/internal/web3"
	"ChatPay-Relay/internal/web3/koios"
	"ChatPay-Relay/internal/web3/mesh"
)

// Registry 持有根据配置实例化的链侧协作方客户端。
type Registry struct {
	txService web3.TxService
	indexer   web3.Indexer
}

// NewRegistry 根据配置创建交易微服务与账本索引客户端。
func NewRegistry(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("配置不能为空")
	}

	txService, err := mesh.NewClient(mesh.Config{
		BaseURL:       cfg.TxService.BaseURL,
		BuildTimeout:  seconds(cfg.TxService.BuildTimeoutSeconds),
		SubmitTimeout: seconds(cfg.TxService.SubmitTimeoutSeconds),
		LookupTimeout: seconds(cfg.TxService.LookupTimeoutSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("初始化交易微服务客户端失败: %w", err)
	}

	indexer, err := koios.NewClient(koios.Config{
		BaseURL: cfg.Indexer.BaseURL,
		Timeout: seconds(cfg.Indexer.BatchTimeoutSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Koios 客户端失败: %w", err)
	}

	return &Registry{txService: txService, indexer: indexer}, nil
}

// TxService returns the transaction build/submit client.
func (r *Registry) TxService() web3.TxService {
	if r == nil {
		return nil
	}
	return r.txService
}

// Indexer returns the ledger indexer client.
func (r *Registry) Indexer() web3.Indexer {
	if r == nil {
		return nil
	}
	return r.indexer
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
