package history

import (
	"context"
	"encoding/json"
	"log/slog"

	"ChatPay-Relay/internal/errors"
	"ChatPay-Relay/internal/storage/supabase"
	"ChatPay-Relay/pkg/logger"
)

// Poster 把任意 JSON 负载写入远端数据表。
type Poster interface {
	Post(ctx context.Context, payload any) (int, []byte, error)
}

// Result 是 /save-history 的响应体。
type Result struct {
	OK             bool            `json:"ok"`
	UpstreamStatus *int            `json:"supabase_response_status,omitempty"`
	Body           json.RawMessage `json:"body,omitempty"`
	Error          string          `json:"error,omitempty"`
	SavedTo        string          `json:"saved_to,omitempty"`
}

// Service 决定历史记录的去向。
type Service struct {
	remote Poster
	local  *FileLog
	logger *slog.Logger
}

// NewService 创建服务。remote 为 nil 时所有记录写入 local。
func NewService(remote Poster, local *FileLog) *Service {
	return &Service{remote: remote, local: local, logger: logger.Named("history")}
}

// Save 写入一条历史记录。远端调用的结果（包括网络错误）都通过 Result 返回，
// 只有本地文件写入失败才返回错误。
func (s *Service) Save(ctx context.Context, payload json.RawMessage) (Result, error) {
	if s.remote != nil {
		status, _, err := s.remote.Post(ctx, payload)
		if err != nil {
			s.logger.Warn("历史记录写入 Supabase 失败", slog.Any("error", err))
			return Result{OK: false, Error: errors.DetailOf(err)}, nil
		}
		return Result{OK: supabase.Accepted(status), UpstreamStatus: &status, Body: payload}, nil
	}

	if s.local == nil {
		return Result{}, errors.New(errors.CodeInitializationFailed, "未配置历史记录文件")
	}
	if err := s.local.Append(payload); err != nil {
		return Result{}, errors.Wrap(errors.CodeStorageFailure, err, err.Error())
	}
	return Result{OK: true, SavedTo: s.local.Path()}, nil
}
