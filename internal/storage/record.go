package storage

import "context"

// TransactionRecord 是提交成功后写入关系型存储的交易记录。
type TransactionRecord struct {
	TxID           *string        `json:"tx_id"`
	FromAddress    *string        `json:"from_address"`
	ToAddress      *string        `json:"to_address"`
	AmountLovelace *int64         `json:"amount_lovelace"`
	Metadata       map[string]any `json:"metadata"`
	IPFSCID        *string        `json:"ipfs_cid"`
}

// RecordStore 抽象交易记录的写入接口。
type RecordStore interface {
	Insert(ctx context.Context, record TransactionRecord) error
	Close() error
}
