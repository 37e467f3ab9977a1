package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "ChatPay-Relay/internal/errors"
	"ChatPay-Relay/internal/storage"
)

type recordingExecer struct {
	sql  string
	args []any
	err  error
}

func (r *recordingExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = sql
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestInsertBindsRecordFields(t *testing.T) {
	db := &recordingExecer{}
	store := newStore(db, 0)

	txID := "abc"
	cid := "bafy"
	if err := store.Insert(context.Background(), storage.TransactionRecord{TxID: &txID, IPFSCID: &cid}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if db.sql != insertSQL || len(db.args) != 6 {
		t.Fatalf("unexpected statement %q with %d args", db.sql, len(db.args))
	}
	if db.args[0] != &txID || db.args[5] != &cid {
		t.Fatalf("tx_id and ipfs_cid should be bound in order")
	}
	var meta map[string]any
	if err := json.Unmarshal(db.args[4].([]byte), &meta); err != nil || len(meta) != 0 {
		t.Fatalf("metadata should default to {}: %s", db.args[4])
	}
}

func TestInsertWrapsErrors(t *testing.T) {
	store := newStore(&recordingExecer{err: errors.New("connection reset")}, 0)
	err := store.Insert(context.Background(), storage.TransactionRecord{})
	if apperrors.CodeOf(err) != apperrors.CodeStorageFailure {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error without dsn")
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("CHATPAY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CHATPAY_TEST_POSTGRES_DSN not set")
	}
	store, err := NewStore(context.Background(), Config{DSN: dsn})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	txID := "integration"
	amount := int64(1000000)
	if err := store.Insert(context.Background(), storage.TransactionRecord{TxID: &txID, AmountLovelace: &amount, Metadata: map[string]any{"memo": "test"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
}
