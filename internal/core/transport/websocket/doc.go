// Package websocket 实现基于 WebSocket 的帧传输
//
// 每个帧对应一个二进制消息，升级路径由配置决定（默认 /raisin）。
// 读上限设置为 MaxFrameSize，超限的消息以 types.ErrFrameTooLarge 报告。
package websocket
