package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// TypeError replies to a message whose handler failed, so the bot is not left
// waiting for a report that will never come.
const TypeError = "error"

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection is one bot talking to the sidecar. Each game player gets its own
// connection, identified after the hello handshake.
type Connection struct {
	rw       io.ReadWriteCloser
	handlers map[string]Handler
	Player   string

	closeOnce sync.Once
}

func NewConnection(rw io.ReadWriteCloser) *Connection {
	return &Connection{
		rw:       rw,
		handlers: make(map[string]Handler),
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return WriteEnvelope(c.rw, env)
}

func (c *Connection) close() {
	c.closeOnce.Do(func() { c.rw.Close() })
}

// Serve blocks until the connection closes, errors or ctx is cancelled. It
// owns the connection lifetime so callers don't need to track cleanup.
func (c *Connection) Serve(ctx context.Context) {
	defer c.close()
	stop := context.AfterFunc(ctx, c.close)
	defer stop()

	for {
		env, err := ReadEnvelope(c.rw)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				slog.Info("connection closed", "player", c.Player)
			} else {
				slog.Warn("connection read ended", "player", c.Player, "error", err)
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "player", c.Player, "error", err)
			if err := c.Send(TypeError, ErrorMessage{Type: env.Type, Error: err.Error()}); err != nil {
				return
			}
			continue
		}

		if resp != nil {
			if err := WriteEnvelope(c.rw, *resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "player", c.Player)
		}
	}
}
