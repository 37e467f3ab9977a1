package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "ChatPay-Relay/internal/errors"
	"ChatPay-Relay/internal/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    tx_id TEXT,
    from_address TEXT,
    to_address TEXT,
    amount_lovelace BIGINT,
    metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
    ipfs_cid TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertSQL = `INSERT INTO transactions (tx_id, from_address, to_address, amount_lovelace, metadata, ipfs_cid)
    VALUES ($1, $2, $3, $4, $5, $6)`

// execer 是 Store 依赖的最小连接池能力。
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Config 描述 Postgres 连接参数。
type Config struct {
	DSN          string
	MaxOpenConns int
	Timeout      time.Duration
}

// Store 直接把交易记录写入 Postgres。
type Store struct {
	db      execer
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ storage.RecordStore = (*Store)(nil)

// NewStore 建立连接池并确保数据表存在。
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("Postgres DSN 不能为空")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("解析 Postgres 配置失败: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("创建 Postgres 连接池失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("无法连接到 Postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("初始化 transactions 表失败: %w", err)
	}

	store := newStore(pool, cfg.Timeout)
	store.pool = pool
	return store, nil
}

func newStore(db execer, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

// Insert 写入一条交易记录。
func (s *Store) Insert(ctx context.Context, record storage.TransactionRecord) error {
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, err, "序列化 metadata 失败")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.Exec(ctx, insertSQL,
		record.TxID,
		record.FromAddress,
		record.ToAddress,
		record.AmountLovelace,
		encoded,
		record.IPFSCID,
	); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, err, "写入 Postgres 失败")
	}
	return nil
}

// Close 关闭连接池。
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}
