package gateway

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omisdami/bankassist/bank"
	"github.com/omisdami/bankassist/core"
	"github.com/omisdami/bankassist/dispatch"
)

type stubAnswerer struct{}

func (stubAnswerer) Answer(ctx context.Context, question string) (core.Answer, error) {
	return core.Answer{Text: "stub answer to: " + question, Sources: []string{"doc.md"}}, nil
}

// pipeClient wires a dispatch client straight to a gateway over an in-memory
// pipe.
func pipeClient(t *testing.T) *dispatch.Client {
	t.Helper()

	store, err := bank.Open(filepath.Join(t.TempDir(), "bank.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gw := New(store, stubAnswerer{}, zerolog.Nop())

	serverSide, clientSide := net.Pipe()
	ctx := context.Background()

	serverConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		gw.Handler())
	t.Cleanup(func() { serverConn.Close() })

	client := dispatch.NewClient(ctx, clientSide, zerolog.Nop())
	t.Cleanup(func() { client.Close() })
	return client
}

func contentText(t *testing.T, raw any) string {
	t.Helper()
	env, ok := raw.(map[string]any)
	require.True(t, ok, "expected envelope, got %T", raw)
	content, ok := env["content"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, content)
	item := content[0].(map[string]any)
	return item["text"].(string)
}

func TestListUserAccounts(t *testing.T) {
	client := pipeClient(t)

	raw := client.Call(context.Background(), core.ToolListUserAccounts, map[string]any{
		"user_id": "test1",
	})

	text := contentText(t, raw)
	assert.Contains(t, text, "1234567890")
	assert.Contains(t, text, "2345678901")
	assert.Contains(t, text, "3456789012")
}

func TestGetAccountBalance(t *testing.T) {
	client := pipeClient(t)

	raw := client.Call(context.Background(), core.ToolGetAccountBalance, map[string]any{
		"user_id":        "test1",
		"account_number": "2345678901",
	})

	text := contentText(t, raw)
	assert.Contains(t, text, `"balance":"5000.00"`)
	assert.Contains(t, text, `"currency":"CAD"`)
}

func TestGetAccountBalanceNotFound(t *testing.T) {
	client := pipeClient(t)

	raw := client.Call(context.Background(), core.ToolGetAccountBalance, map[string]any{
		"user_id":        "test1",
		"account_number": "0000000000",
	})

	// Reported inside the payload, not as an RPC error.
	assert.Contains(t, contentText(t, raw), `"error"`)
}

func TestTransferFunds(t *testing.T) {
	client := pipeClient(t)
	ctx := context.Background()

	raw := client.Call(ctx, core.ToolTransferFunds, map[string]any{
		"user_id":      "test1",
		"from_account": "1234567890",
		"to_account":   "2345678901",
		"amount":       "$250.00",
	})
	assert.Contains(t, contentText(t, raw), `✅ Transferred $250.00 from 1234567890 to 2345678901.`)

	raw = client.Call(ctx, core.ToolTransferFunds, map[string]any{
		"user_id":      "test1",
		"from_account": "1234567890",
		"to_account":   "2345678901",
		"amount":       "99999",
	})
	assert.Contains(t, contentText(t, raw), "❌ Transfer failed:")
}

func TestAnswerBankingQuestion(t *testing.T) {
	client := pipeClient(t)

	raw := client.Call(context.Background(), core.ToolAnswerBankingQuestion, map[string]any{
		"question": "what is a TFSA?",
	})

	text := contentText(t, raw)
	assert.Contains(t, text, "stub answer to: what is a TFSA?")
	assert.Contains(t, text, "doc.md")
}

func TestAuthenticateRoundTrip(t *testing.T) {
	client := pipeClient(t)
	ctx := context.Background()

	ok, err := client.Authenticate(ctx, "test1", "test123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Authenticate(ctx, "test1", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownToolIsError(t *testing.T) {
	client := pipeClient(t)

	raw := client.Call(context.Background(), "no_such_tool", nil)

	result, ok := raw.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, result["error"], "unknown tool")
}
