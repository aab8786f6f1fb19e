package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/coder/websocket"
)

// Transport moves JSON messages between a controller and a client.
type Transport interface {
	Send(ctx context.Context, v any) error
	Recv(ctx context.Context, v any) error
}

// StreamTransport sends newline-delimited JSON over a byte stream such as a
// net.Pipe or a TCP connection.
type StreamTransport struct {
	enc *json.Encoder
	dec *json.Decoder
}

// NewStreamTransport wraps rw.
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	return &StreamTransport{enc: json.NewEncoder(rw), dec: json.NewDecoder(rw)}
}

func (t *StreamTransport) Send(ctx context.Context, v any) error {
	return t.enc.Encode(v)
}

func (t *StreamTransport) Recv(ctx context.Context, v any) error {
	return t.dec.Decode(v)
}

// WSTransport sends one JSON document per websocket text message.
type WSTransport struct {
	conn *websocket.Conn
}

// NewWSTransport wraps an accepted or dialed websocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

func (t *WSTransport) Send(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return t.conn.Write(ctx, websocket.MessageText, data)
}

func (t *WSTransport) Recv(ctx context.Context, v any) error {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
