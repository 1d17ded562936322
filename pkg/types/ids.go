package types

import (
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// NewClientID 生成客户端 ID
//
// 随机 UUID（v4）的 Base58 表示，比标准 UUID 文本更短，可直接用作 mDNS 实例名。
func NewClientID() string {
	id := uuid.New()
	return base58.Encode(id[:])
}

// ShortID 返回 ID 的前 8 个字符，用于日志
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
