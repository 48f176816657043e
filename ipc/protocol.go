package ipc

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds one envelope. Hello messages carry full-map grids, so
// the limit is well above a frame of unit data.
const MaxFrameSize = 8 << 20

const headerSize = 4

// ErrFrameSize is returned for a frame header of zero or above MaxFrameSize.
var ErrFrameSize = errors.New("frame size out of range")

// Envelope is one message on the socket: a type tag and its still-encoded
// payload, decoded by the handler registered for the tag.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEnvelope(msgType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", msgType, err)
	}
	return Envelope{Type: msgType, Data: raw}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return nil
}

// ReadEnvelope reads one frame: a little-endian uint32 byte count followed by
// that many bytes of JSON.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Envelope{}, fmt.Errorf("read frame header: %w", err)
	}
	size := binary.LittleEndian.Uint32(header[:])
	if size == 0 || size > MaxFrameSize {
		return Envelope{}, fmt.Errorf("%w: %d bytes", ErrFrameSize, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return Envelope{}, fmt.Errorf("read frame body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse frame: %w", err)
	}
	return env, nil
}

// WriteEnvelope sends env as a single write so concurrent readers on the
// other end never see a header without its body.
func WriteEnvelope(w io.Writer, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameSize, len(body))
	}

	frame := make([]byte, headerSize, headerSize+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(len(body)))
	frame = append(frame, body...)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
