package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Action 枚举可识别的支付动作。
type Action string

const (
	ActionSendPayment  Action = "send_payment"
	ActionCheckBalance Action = "check_balance"
	ActionReceive      Action = "receive"
	ActionUnknown      Action = "unknown"
)

// Intent 是结构化的意图描述。
type Intent struct {
	Action Action   `json:"action"`
	Amount *float64 `json:"amount"`
	To     *string  `json:"to"`
}

// paymentKeywords 按顺序匹配，命中任意一个即视为转账意图。
var paymentKeywords = []string{"send", "pay", "transfer"}

var amountPattern = regexp.MustCompile(`\b(\d+[,.]?\d*)\b`)

// ParseSimple 是基于关键词的兜底解析器。
//
// 收款人取原始消息的最后一个空白分隔词，仅当消息多于一个词时生效；
// 该启发式保持与既有客户端的行为一致，不做额外清洗。
func ParseSimple(message string) Intent {
	lowered := strings.ToLower(message)

	if containsAny(lowered, paymentKeywords) {
		intent := Intent{Action: ActionSendPayment}
		if match := amountPattern.FindStringSubmatch(lowered); match != nil {
			if amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
				intent.Amount = &amount
			}
		}
		if parts := strings.Fields(strings.TrimSpace(message)); len(parts) > 1 {
			to := parts[len(parts)-1]
			intent.To = &to
		}
		return intent
	}

	if strings.Contains(lowered, "balance") {
		return Intent{Action: ActionCheckBalance}
	}
	return Intent{Action: ActionUnknown}
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
