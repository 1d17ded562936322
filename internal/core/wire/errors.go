package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrMalformed 帧格式错误
	ErrMalformed = errors.New("wire: malformed frame")

	// ErrUnknownKind 未知的消息种类
	ErrUnknownKind = errors.New("wire: unknown message kind")
)

func malformed(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}
