package payment

import (
	"encoding/json"
	"net/http"

	"ChatPay-Relay/internal/errors"
)

// 交易流程相关的错误码。
const (
	CodeMissingSignature errors.Code = "MISSING_SIGNATURE"
	CodeBuildFailed      errors.Code = "UPSTREAM_BUILD_FAILED"
	CodeSubmitFailed     errors.Code = "UPSTREAM_SUBMIT_FAILED"
)

func init() {
	errors.Register(CodeMissingSignature, errors.Attributes{
		Message:    "signed_tx required",
		Severity:   errors.SeverityInfo,
		HTTPStatus: http.StatusBadRequest,
	})
	errors.Register(CodeBuildFailed, errors.Attributes{
		Message:    "MeshJS build failed",
		Severity:   errors.SeverityWarning,
		HTTPStatus: http.StatusInternalServerError,
	})
	errors.Register(CodeSubmitFailed, errors.Attributes{
		Message:    "MeshJS submit failed",
		Severity:   errors.SeverityWarning,
		HTTPStatus: http.StatusInternalServerError,
	})
}

// TransactionRequest 是构建与提交接口共用的请求体。
type TransactionRequest struct {
	UnsignedTx     *string        `json:"unsigned_tx"`
	SignedTx       *string        `json:"signed_tx"`
	FromWallet     *string        `json:"from_wallet"`
	ToAddress      *string        `json:"to_address"`
	AmountLovelace *int64         `json:"amount_lovelace"`
	Metadata       map[string]any `json:"metadata"`
}

// HasSignature 判断是否提供了非空的已签名交易。
func (r TransactionRequest) HasSignature() bool {
	return r.SignedTx != nil && *r.SignedTx != ""
}

// Receipt 是一次成功提交后在本地生成的回执。
type Receipt struct {
	TxID           *string        `json:"tx_id"`
	From           *string        `json:"from"`
	To             *string        `json:"to"`
	AmountLovelace *int64         `json:"amount_lovelace"`
	Metadata       map[string]any `json:"metadata"`
	ReceiptID      string         `json:"receipt_id"`
	IPFSCID        *string        `json:"ipfs_cid,omitempty"`
}

// Outcome 记录回执流水线中各个副作用是否成功。
type Outcome struct {
	Pinned    bool
	Persisted bool
	Published bool
}

// SubmitResult 是提交接口的返回内容。
type SubmitResult struct {
	Tx      json.RawMessage `json:"tx"`
	Receipt Receipt         `json:"receipt"`
	Outcome Outcome         `json:"-"`
}
