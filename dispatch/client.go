// Package dispatch is the assistant-side client for the tool gateway. It
// sends one JSON-RPC call per tool invocation and converts transport and
// server failures into error-map results, so the conversation loop never has
// to distinguish a broken pipe from a rejected transfer.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
)

// Client dispatches tool calls over a JSON-RPC connection.
type Client struct {
	conn *jsonrpc2.Conn
	log  zerolog.Logger
}

// NewClient wraps an established transport, typically a TCP connection or one
// end of a pipe in tests.
func NewClient(ctx context.Context, rwc io.ReadWriteCloser, logger zerolog.Logger) *Client {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, noopHandler{})
	return &Client{conn: conn, log: logger}
}

// Dial connects to a tool gateway at addr.
func Dial(ctx context.Context, addr string, logger zerolog.Logger) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing tool gateway %s: %w", addr, err)
	}
	return NewClient(ctx, conn, logger), nil
}

// Call invokes the named tool with the given arguments. Failures of any kind
// come back as a map with a single "error" key rather than a Go error; the
// formatter downstream knows how to speak that shape.
func (c *Client) Call(ctx context.Context, tool string, args map[string]any) any {
	var result any
	if err := c.conn.Call(ctx, tool, args, &result); err != nil {
		c.log.Warn().Err(err).Str("tool", tool).Msg("tool call failed")
		return map[string]any{"error": err.Error()}
	}
	return result
}

// Authenticate verifies credentials against the gateway.
func (c *Client) Authenticate(ctx context.Context, userID, password string) (bool, error) {
	var result struct {
		Authenticated bool `json:"authenticated"`
	}
	err := c.conn.Call(ctx, "authenticate", map[string]string{
		"user_id":  userID,
		"password": password,
	}, &result)
	if err != nil {
		return false, fmt.Errorf("authenticating %s: %w", userID, err)
	}
	return result.Authenticated, nil
}

// Close shuts down the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

type noopHandler struct{}

func (noopHandler) Handle(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) {}
