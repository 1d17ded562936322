// Package tcp 实现基于 TCP 的帧传输
//
// 帧格式为 uvarint(len) || payload，长度前缀使用 multiformats/go-varint 编码。
// 超过 MaxFrameSize 的帧在读写两侧都会被拒绝（types.ErrFrameTooLarge）。
//
// # 并发安全
//
// WriteFrame 由写锁串行化，可被多个协程并发调用；ReadFrame 只应由
// 连接的读协程调用。
package tcp
