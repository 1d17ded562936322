package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-raisin/pkg/types"
)

// Kind 消息种类
type Kind uint64

const (
	KindHello Kind = iota + 1
	KindHelloAck
	KindPublish
	KindRequest
	KindResponse
	KindBye
)

// String 返回种类名称
func (k Kind) String() string {
	switch k {
	case KindHello:
		return "hello"
	case KindHelloAck:
		return "hello_ack"
	case KindPublish:
		return "publish"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindBye:
		return "bye"
	default:
		return fmt.Sprintf("kind(%d)", uint64(k))
	}
}

// Message 协议消息
type Message interface {
	Kind() Kind
	appendBody(b []byte) []byte
	decodeBody(b []byte) error
}

// 信封字段
const (
	envKind protowire.Number = 1
	envBody protowire.Number = 2
)

// Encode 编码为一个传输帧
func Encode(m Message) []byte {
	body := m.appendBody(nil)
	b := make([]byte, 0, len(body)+8)
	b = protowire.AppendTag(b, envKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Kind()))
	b = protowire.AppendTag(b, envBody, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// Decode 解码一个传输帧
func Decode(frame []byte) (Message, error) {
	var kind uint64
	var body []byte
	err := walk(frame, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case envKind:
			return readUvarint(typ, b, &kind)
		case envBody:
			if typ != protowire.BytesType {
				return 0
			}
			v, n := protowire.ConsumeBytes(b)
			body = v
			return n
		}
		return 0
	})
	if err != nil {
		return nil, err
	}

	var m Message
	switch Kind(kind) {
	case KindHello:
		m = &Hello{}
	case KindHelloAck:
		m = &HelloAck{}
	case KindPublish:
		m = &Publish{}
	case KindRequest:
		m = &Request{}
	case KindResponse:
		m = &Response{}
	case KindBye:
		m = &Bye{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if err := m.decodeBody(body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Kind(kind), err)
	}
	return m, nil
}

// ============================================================================
//                              Hello / HelloAck
// ============================================================================

// Hello 握手请求
type Hello struct {
	ClientName string
	ClientID   string
}

func (*Hello) Kind() Kind { return KindHello }

func (m *Hello) appendBody(b []byte) []byte {
	b = appendString(b, 1, m.ClientName)
	return appendString(b, 2, m.ClientID)
}

func (m *Hello) decodeBody(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.ClientName)
		case 2:
			return readString(typ, b, &m.ClientID)
		}
		return 0
	})
}

// HelloAck 握手应答
type HelloAck struct {
	NodeID     string
	Publishers map[string]types.TypeDescriptor
	Services   map[string]types.TypeDescriptor
}

func (*HelloAck) Kind() Kind { return KindHelloAck }

func (m *HelloAck) appendBody(b []byte) []byte {
	b = appendString(b, 1, m.NodeID)
	b = appendCatalog(b, 2, m.Publishers)
	return appendCatalog(b, 3, m.Services)
}

func (m *HelloAck) decodeBody(b []byte) error {
	m.Publishers = make(map[string]types.TypeDescriptor)
	m.Services = make(map[string]types.TypeDescriptor)
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.NodeID)
		case 2:
			return readCatalogEntry(typ, b, m.Publishers)
		case 3:
			return readCatalogEntry(typ, b, m.Services)
		}
		return 0
	})
}

func appendCatalog(b []byte, num protowire.Number, catalog map[string]types.TypeDescriptor) []byte {
	for _, e := range types.SortedCatalog(catalog) {
		var entry []byte
		entry = appendString(entry, 1, e.Name)
		entry = appendString(entry, 2, e.DataType)
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func readCatalogEntry(typ protowire.Type, b []byte, dst map[string]types.TypeDescriptor) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	var name, dataType string
	err := walk(v, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &name)
		case 2:
			return readString(typ, b, &dataType)
		}
		return 0
	})
	if err != nil {
		return -1
	}
	if name != "" {
		dst[name] = types.TypeDescriptor{DataType: dataType}
	}
	return n
}

// ============================================================================
//                              Publish
// ============================================================================

// Publish 话题数据
type Publish struct {
	Topic    string
	Sequence uint64
	Payload  []byte
}

func (*Publish) Kind() Kind { return KindPublish }

func (m *Publish) appendBody(b []byte) []byte {
	b = appendString(b, 1, m.Topic)
	b = appendUvarint(b, 2, m.Sequence)
	return appendBytes(b, 3, m.Payload)
}

func (m *Publish) decodeBody(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.Topic)
		case 2:
			return readUvarint(typ, b, &m.Sequence)
		case 3:
			return readBytes(typ, b, &m.Payload)
		}
		return 0
	})
}

// ============================================================================
//                              Request / Response
// ============================================================================

// Request 服务调用请求
type Request struct {
	CorrelationID string
	Service       string
	Payload       []byte
}

func (*Request) Kind() Kind { return KindRequest }

func (m *Request) appendBody(b []byte) []byte {
	b = appendString(b, 1, m.CorrelationID)
	b = appendString(b, 2, m.Service)
	return appendBytes(b, 3, m.Payload)
}

func (m *Request) decodeBody(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.CorrelationID)
		case 2:
			return readString(typ, b, &m.Service)
		case 3:
			return readBytes(typ, b, &m.Payload)
		}
		return 0
	})
}

// Response 服务调用应答
type Response struct {
	CorrelationID string
	Success       bool
	Message       string
	Payload       []byte
}

func (*Response) Kind() Kind { return KindResponse }

func (m *Response) appendBody(b []byte) []byte {
	b = appendString(b, 1, m.CorrelationID)
	b = appendBool(b, 2, m.Success)
	b = appendString(b, 3, m.Message)
	return appendBytes(b, 4, m.Payload)
}

func (m *Response) decodeBody(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.CorrelationID)
		case 2:
			return readBool(typ, b, &m.Success)
		case 3:
			return readString(typ, b, &m.Message)
		case 4:
			return readBytes(typ, b, &m.Payload)
		}
		return 0
	})
}

// Result 转换为服务调用结果
func (m *Response) Result() types.ServiceResult {
	return types.ServiceResult{Success: m.Success, Message: m.Message}
}

// ============================================================================
//                              Bye
// ============================================================================

// Bye 主动断开
type Bye struct {
	Reason string
}

func (*Bye) Kind() Kind { return KindBye }

func (m *Bye) appendBody(b []byte) []byte {
	return appendString(b, 1, m.Reason)
}

func (m *Bye) decodeBody(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return readString(typ, b, &m.Reason)
		}
		return 0
	})
}
