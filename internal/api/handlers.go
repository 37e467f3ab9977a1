package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ChatPay-Relay/internal/errors"
	"ChatPay-Relay/internal/ledger"
	"ChatPay-Relay/internal/observability/metrics"
	"ChatPay-Relay/internal/payment"
)

const serviceName = "Chat-to-Pay Relay"

// IntentRequest 是 /intent 的请求体。
type IntentRequest struct {
	Message *string `json:"message"`
	UserID  *string `json:"user_id,omitempty"`
}

// IntentResponse 是 /intent 的响应体。
type IntentResponse struct {
	OK     bool            `json:"ok"`
	Intent json.RawMessage `json:"intent" swaggertype:"object"`
}

// SubmitResponse 是 /submit-signed-tx 的响应体。
type SubmitResponse struct {
	OK      bool            `json:"ok"`
	Tx      json.RawMessage `json:"tx" swaggertype:"object"`
	Receipt payment.Receipt `json:"receipt"`
}

// VerifyRequest 是 /verify-tx 的请求体。
type VerifyRequest struct {
	TxID string `json:"tx_id"`
}

// VerifyResponse 是 /verify-tx 的响应体。
type VerifyResponse struct {
	OK bool            `json:"ok"`
	Tx json.RawMessage `json:"tx" swaggertype:"object"`
}

// DecodeRequest 是 /debug/decode-unsigned 的请求体。
type DecodeRequest struct {
	Hex string `json:"hex"`
}

// DecodeResponse 是 /debug/decode-unsigned 的响应体。
type DecodeResponse struct {
	OK      bool            `json:"ok"`
	Decoded json.RawMessage `json:"decoded" swaggertype:"object"`
}

// handleRoot handles GET /
// @Summary  Service banner
// @Tags     meta
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   / [get]
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": serviceName})
}

// handleHealth handles GET /health
// @Summary  Liveness probe
// @Tags     meta
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

// handleIntent handles POST /intent
// @Summary      Resolve chat message intent
// @Description  Asks the language model for a JSON action and falls back to the keyword parser.
// @Tags         intent
// @Accept       json
// @Produce      json
// @Param        request  body      IntentRequest  true  "chat message"
// @Success      200      {object}  IntentResponse
// @Failure      400      {object}  errorResponse
// @Router       /intent [post]
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Message == nil {
		s.writeError(w, r, errors.New(errors.CodeInvalidArgument, "message required"))
		return
	}
	if s.deps.Intents == nil {
		s.writeError(w, r, errors.New(errors.CodeInitializationFailed, "意图服务未初始化"))
		return
	}

	result := s.deps.Intents.Resolve(r.Context(), *req.Message)
	metrics.IntentResolved(string(result.Source))

	raw, _ := result.MarshalJSON()
	writeJSON(w, http.StatusOK, IntentResponse{OK: true, Intent: raw})
}

// handleCreateUnsignedTx handles POST /create-unsigned-tx
// @Summary      Build an unsigned transaction
// @Description  Relays to the transaction microservice and returns its response verbatim.
// @Tags         tx
// @Accept       json
// @Produce      json
// @Param        request  body      payment.TransactionRequest  true  "payment parameters"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  errorResponse
// @Failure      500      {object}  errorResponse
// @Router       /create-unsigned-tx [post]
func (s *Server) handleCreateUnsignedTx(w http.ResponseWriter, r *http.Request) {
	var req payment.TransactionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Payments == nil {
		s.writeError(w, r, errors.New(errors.CodeInitializationFailed, "支付服务未初始化"))
		return
	}
	raw, err := s.deps.Payments.BuildUnsigned(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// handleSubmitSignedTx handles POST /submit-signed-tx
// @Summary      Submit a signed transaction
// @Description  Submits the signed transaction, then pins, persists and publishes a receipt on a best-effort basis.
// @Tags         tx
// @Accept       json
// @Produce      json
// @Param        request  body      payment.TransactionRequest  true  "signed transaction"
// @Success      200      {object}  SubmitResponse
// @Failure      400      {object}  errorResponse
// @Failure      500      {object}  errorResponse
// @Router       /submit-signed-tx [post]
func (s *Server) handleSubmitSignedTx(w http.ResponseWriter, r *http.Request) {
	var req payment.TransactionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Payments == nil {
		s.writeError(w, r, errors.New(errors.CodeInitializationFailed, "支付服务未初始化"))
		return
	}
	result, err := s.deps.Payments.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SubmitResponse{OK: true, Tx: result.Tx, Receipt: result.Receipt})
}

// handleVerifyTx handles POST /verify-tx
// @Summary  Look up a transaction
// @Tags     tx
// @Accept   json
// @Produce  json
// @Param    request  body      VerifyRequest  true  "transaction id"
// @Success  200      {object}  VerifyResponse
// @Failure  400      {object}  errorResponse
// @Failure  500      {object}  errorResponse
// @Router   /verify-tx [post]
func (s *Server) handleVerifyTx(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Ledger == nil {
		s.writeError(w, r, errors.New(errors.CodeInitializationFailed, "账本服务未初始化"))
		return
	}
	raw, err := s.deps.Ledger.VerifyTx(r.Context(), stringField(body, "tx_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{OK: true, Tx: raw})
}

// handleSaveHistory handles POST /save-history
// @Summary      Save a history entry
// @Description  Proxies to the Supabase transactions table when configured, otherwise appends to a local file.
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "arbitrary JSON object"
// @Success      200      {object}  history.Result
// @Failure      500      {object}  errorResponse
// @Router       /save-history [post]
func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !isObject(body) {
		s.writeError(w, r, errors.New(errors.CodeInvalidArgument, "请求体必须是 JSON 对象"))
		return
	}
	if s.deps.History == nil {
		s.writeError(w, r, errors.New(errors.CodeInitializationFailed, "历史记录服务未初始化"))
		return
	}
	result, err := s.deps.History.Save(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAddressInfoQuery handles GET /koios/address_info
// @Summary  Address info for one address
// @Tags     koios
// @Produce  json
// @Param    address  query     string  true  "Cardano address to look up"
// @Success  200      {array}   object
// @Failure  400      {object}  errorResponse
// @Failure  502      {object}  errorResponse
// @Router   /koios/address_info [get]
func (s *Server) handleAddressInfoQuery(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ledger == nil {
		s.writeError(w, r, errors.New(errors.CodeInitializationFailed, "账本服务未初始化"))
		return
	}
	raw, err := s.deps.Ledger.AddressInfo(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// handleAddressInfoBatch handles POST /koios/address_info
// @Summary  Address info for several addresses
// @Tags     koios
// @Accept   json
// @Produce  json
// @Param    request  body      object  true  "{addresses} or {_addresses}"
// @Success  200      {array}   object
// @Failure  400      {object}  errorResponse
// @Failure  502      {object}  errorResponse
// @Router   /koios/address_info [post]
func (s *Server) handleAddressInfoBatch(w http.ResponseWriter, r *http.Request) {
	s.handleAddresses(w, r, func(ctx context.Context, addresses []string) (json.RawMessage, error) {
		return s.deps.Ledger.AddressInfoBatch(ctx, addresses)
	})
}

// handleAddressUTXO handles POST /koios/address_utxo
// @Summary      UTXOs for several addresses
// @Description  Queries the primary UTXO endpoint and falls back once to the history endpoint on a non-2xx response.
// @Tags         koios
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "{addresses} or {_addresses}"
// @Success      200      {array}   object
// @Failure      400      {object}  errorResponse
// @Failure      502      {object}  errorResponse
// @Router       /koios/address_utxo [post]
func (s *Server) handleAddressUTXO(w http.ResponseWriter, r *http.Request) {
	s.handleAddresses(w, r, func(ctx context.Context, addresses []string) (json.RawMessage, error) {
		return s.deps.Ledger.AddressUTXOs(ctx, addresses)
	})
}

// handleAddresses 解析地址列表后执行 query。
func (s *Server) handleAddresses(w http.ResponseWriter, r *http.Request, query func(context.Context, []string) (json.RawMessage, error)) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, errors.New(ledger.CodeBadRequest, "addresses array required"))
		return
	}
	addresses, err := ledger.ParseAddresses(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Ledger == nil {
		s.writeError(w, r, errors.New(errors.CodeInitializationFailed, "账本服务未初始化"))
		return
	}
	raw, err := query(r.Context(), addresses)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// handleDecodeUnsigned handles POST /debug/decode-unsigned
// @Summary      Decode a hex-encoded JSON payload
// @Description  Debug helper for inspecting unsigned transaction payloads that wrap JSON in hex.
// @Tags         debug
// @Accept       json
// @Produce      json
// @Param        request  body      DecodeRequest  true  "hex payload"
// @Success      200      {object}  DecodeResponse
// @Failure      400      {object}  errorResponse
// @Router       /debug/decode-unsigned [post]
func (s *Server) handleDecodeUnsigned(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	encoded := stringField(body, "hex")
	if encoded == "" {
		s.writeError(w, r, errors.New(errors.CodeInvalidArgument, "hex required"))
		return
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil || !json.Valid(decoded) {
		s.writeError(w, r, errors.New(errors.CodeInvalidArgument, "cannot decode hex"))
		return
	}
	writeJSON(w, http.StatusOK, DecodeResponse{OK: true, Decoded: decoded})
}

// stringField 读取 JSON 对象中的字符串字段，缺失或类型不符时返回空串。
func stringField(body json.RawMessage, key string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(fields[key], &value); err != nil {
		return ""
	}
	return value
}

func isObject(body json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(body), []byte("{"))
}
