package game

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// ShortID 取 UUID 的末 8 位作为玩家 ID，v7 的前缀是时间戳，末尾才是随机部分
func ShortID() string {
	id := GenID()
	return id[len(id)-8:]
}

// WordHint 把字母替换成下划线，保留空格等其他字符
func WordHint(word string) string {
	var sb strings.Builder

	for _, r := range word {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			sb.WriteString("_ ")
		} else {
			sb.WriteRune(r)
		}
	}

	return strings.TrimSpace(sb.String())
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("Failed to marshal: " + err.Error())
	}

	return data
}
