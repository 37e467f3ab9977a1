// Package history 实现 /save-history 的写入：配置了 Supabase 时转发到 REST
// 插入接口，否则追加到本地 JSON Lines 文件。
package history
