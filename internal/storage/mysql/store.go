package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	stdErrors "errors"
	"time"

	"github.com/go-sql-driver/mysql"

	xerrors "ChatPay-Relay/internal/errors"
	"ChatPay-Relay/internal/storage"
)

const insertTransactionSQL = `INSERT INTO transactions
    (tx_id, from_address, to_address, amount_lovelace, metadata, ipfs_cid, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?)`

// mysqlDuplicateEntry 是 MySQL 唯一键冲突的错误号。
const mysqlDuplicateEntry = 1062

// TransactionStore 使用 MySQL 存储交易记录。
type TransactionStore struct {
	db      *sql.DB
	timeout time.Duration
	now     func() time.Time
}

var _ storage.RecordStore = (*TransactionStore)(nil)

// NewTransactionStore 建立连接并执行嵌入的迁移。
func NewTransactionStore(ctx context.Context, cfg Config) (*TransactionStore, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "初始化 MySQL 失败")
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "执行 MySQL 迁移失败")
	}
	return newTransactionStore(db, cfg.Timeout), nil
}

func newTransactionStore(db *sql.DB, timeout time.Duration) *TransactionStore {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &TransactionStore{db: db, timeout: timeout, now: time.Now}
}

// Insert 写入一条交易记录。重复的 tx_id 返回带 duplicate 标记的存储错误。
func (s *TransactionStore) Insert(ctx context.Context, record storage.TransactionRecord) error {
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeInvalidArgument, err, "编码 metadata 失败")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, insertTransactionSQL,
		record.TxID,
		record.FromAddress,
		record.ToAddress,
		record.AmountLovelace,
		string(encoded),
		record.IPFSCID,
		s.now().Unix(),
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if stdErrors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return xerrors.Wrap(xerrors.CodeStorageFailure, err, "交易记录已存在",
				xerrors.WithMetadata("duplicate", "true"), xerrors.WithRetryable(false))
		}
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "写入交易记录失败")
	}
	return nil
}

// Close 关闭底层数据库连接。
func (s *TransactionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
