package live

import (
	"bytes"
	"encoding/json"
)

// Op names a frame type.
type Op string

const (
	OpInsert Op = "insert"
	OpRemove Op = "remove"
	OpSync   Op = "sync"
	OpPing   Op = "ping"
	OpPong   Op = "pong"
)

// Frame is one message sent to (or, for pong, from) the browser.
type Frame struct {
	Op     Op       `json:"op"`
	Parent string   `json:"parent,omitempty"`
	HID    string   `json:"hid,omitempty"`
	HTML   string   `json:"html,omitempty"`
	HIDs   []string `json:"hids,omitempty"`
}

// Encode returns the frame's JSON form. Markup is written unescaped.
func (f Frame) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeFrame parses a JSON frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
