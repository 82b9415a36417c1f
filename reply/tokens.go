package reply

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Message 聊天消息的最小视图，只取生成回复所需的字段。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LastUserContent 返回最近一条 role=user 的消息内容，找不到返回空串。
func LastUserContent(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return msgs[i].Content
		}
	}
	return ""
}

// CountTokens 按空白切分计数，作为模拟 usage 的 token 口径。
func CountTokens(s string) int { return len(strings.Fields(s)) }

// PromptTokens 对全部输入消息内容拼接后的 token 计数。
func PromptTokens(msgs []Message) int {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	return CountTokens(strings.Join(parts, " "))
}

// EchoText 对原始 args.messages 字节做规范化序列化：去除所有无谓空白，
// 保留输入的键序与数组序。输入为空时回退为空数组。
func EchoText(rawMessages []byte) (string, error) {
	if len(rawMessages) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, rawMessages); err != nil {
		return "", err
	}
	return buf.String(), nil
}
