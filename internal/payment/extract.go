package payment

import (
	"encoding/json"
)

// FieldPath 是 JSON 对象中的一条嵌套字段路径。
type FieldPath []string

// TxIDFields 依次尝试的交易 ID 字段，顺序不可调整。
var TxIDFields = []FieldPath{
	{"txid"},
	{"tx_id"},
	{"txHash"},
}

// CIDPaths 依次尝试的内容标识字段。
var CIDPaths = []FieldPath{
	{"cid"},
	{"value", "cid"},
}

// FirstString 按顺序匹配规则，返回第一个非空字符串值。
// 非对象文档、缺失字段与非字符串值都会被跳过。
func FirstString(doc json.RawMessage, rules []FieldPath) (string, bool) {
	var root map[string]any
	if err := json.Unmarshal(doc, &root); err != nil {
		return "", false
	}
	for _, rule := range rules {
		if value, ok := lookup(root, rule).(string); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

func lookup(node map[string]any, path FieldPath) any {
	var current any = node
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[key]
	}
	return current
}
