package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrIncompleteFrame is returned when data does not end with the record
// separator.
var ErrIncompleteFrame = errors.New("protocol: incomplete frame (missing record separator)")

// EncodeFrame marshals msg to JSON and appends the record-separator
// terminator.
func EncodeFrame(msg *Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(b, RecordSeparator), nil
}

// SplitFrames splits a buffer (as accumulated from the transport, which may
// coalesce multiple frames, e.g. over a binary ArrayBuffer channel) into
// individual frame payloads, each still missing its terminator in the
// returned slices. The last element's trailing bytes (if any) are returned
// as leftover for the caller to prepend to the next read.
func SplitFrames(buf []byte) (frames [][]byte, leftover []byte) {
	for {
		idx := bytes.IndexByte(buf, RecordSeparator)
		if idx < 0 {
			leftover = buf
			return frames, leftover
		}
		frames = append(frames, buf[:idx])
		buf = buf[idx+1:]
	}
}

// DecodeFrame unmarshals a single frame payload (without its terminator).
func DecodeFrame(payload []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
