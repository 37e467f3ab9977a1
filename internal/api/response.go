package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"ChatPay-Relay/internal/errors"
)

const maxBodyBytes = 1 << 20

// errorResponse 是所有失败响应的统一结构。
type errorResponse struct {
	Error string `json:"error"`
	// Detail 面向调用方，通常包含上游返回的原始内容。
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := errors.From(err)
	if !ok {
		e = errors.Wrap(errors.CodeUnknown, err, err.Error())
	}
	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("请求处理失败",
			slog.String("path", r.URL.Path),
			slog.String("code", string(e.Code())),
			slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: string(e.Code()), Detail: e.Message()})
}

// readBody 读取请求体并确认其为合法 JSON。
func readBody(r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, err, "读取请求体失败")
	}
	if !json.Valid(body) {
		return nil, errors.New(errors.CodeInvalidArgument, "请求体不是合法 JSON")
	}
	return body, nil
}

// decodeBody 把请求体解析到 dst。
func decodeBody(r *http.Request, dst any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, err, "请求体解析失败")
	}
	return nil
}
