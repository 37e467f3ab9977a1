package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"ChatPay-Relay/sdk/go/chatpay"
)

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/intent", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"intent":{"action":"send_payment","amount":2,"to":"addr_test1demo"}}`))
	})
	mux.HandleFunc("/create-unsigned-tx", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unsigned_tx":"84a40081825820"}`))
	})
	mux.HandleFunc("/submit-signed-tx", func(w http.ResponseWriter, r *http.Request) {
		txID := "demo-tx"
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"tx":      map[string]string{"txHash": txID},
			"receipt": chatpay.Receipt{TxID: &txID, ReceiptID: "receipt-demo"},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := chatpay.NewClient(srv.URL, srv.Client())
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	intent, err := client.ResolveIntent(ctx, "send 2 ada to addr_test1demo", "")
	if err != nil {
		panic(err)
	}
	fmt.Printf("intent %s amount=%v to=%s\n", intent.Action, *intent.Amount, *intent.To)

	lovelace := int64(*intent.Amount * 1_000_000)
	unsigned, err := client.CreateUnsignedTx(ctx, chatpay.TransactionRequest{ToAddress: intent.To, AmountLovelace: &lovelace})
	if err != nil {
		panic(err)
	}
	fmt.Printf("unsigned tx %s\n", unsigned)

	// 签名由钱包完成，这里直接使用占位值。
	signed := "84a5signed"
	submission, err := client.SubmitSignedTx(ctx, chatpay.TransactionRequest{SignedTx: &signed, ToAddress: intent.To, AmountLovelace: &lovelace})
	if err != nil {
		panic(err)
	}
	fmt.Printf("submitted %s receipt=%s\n", *submission.Receipt.TxID, submission.Receipt.ReceiptID)
}
