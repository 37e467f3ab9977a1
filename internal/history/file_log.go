package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLog 以追加方式写入历史记录，每条记录占一行。
// 同一实例上的并发写入会被串行化。
type FileLog struct {
	mu   sync.Mutex
	path string
}

// NewFileLog 创建指向 path 的追加日志，文件在首次写入时创建。
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Path 返回日志文件路径。
func (f *FileLog) Path() string { return f.path }

// Append 写入一条记录。
func (f *FileLog) Append(payload json.RawMessage) error {
	var line bytes.Buffer
	if err := json.Compact(&line, payload); err != nil {
		return fmt.Errorf("记录不是合法 JSON: %w", err)
	}
	line.WriteByte('\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建历史目录失败: %w", err)
		}
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("打开历史文件失败: %w", err)
	}
	if _, err := file.Write(line.Bytes()); err != nil {
		file.Close()
		return fmt.Errorf("写入历史文件失败: %w", err)
	}
	return file.Close()
}
