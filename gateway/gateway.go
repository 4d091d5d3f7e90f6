// Package gateway serves the banking tools over JSON-RPC 2.0. Each tool takes
// a named-argument object and returns its payload wrapped in a text-content
// envelope, the same wrapper shape the remote-tool protocol uses on the wire,
// so the assistant's result normalizer sees one consistent outer shape.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/omisdami/bankassist/bank"
	"github.com/omisdami/bankassist/core"
	"github.com/omisdami/bankassist/rag"
)

// ContentItem is one text-bearing item of a tool result envelope.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the wire shape of every tool result.
type Envelope struct {
	Content []ContentItem `json:"content"`
}

// Gateway handles tool calls against the bank store and the knowledge base.
type Gateway struct {
	store    *bank.Store
	answerer rag.Answerer
	log      zerolog.Logger
}

// New creates a gateway over the given store and answerer.
func New(store *bank.Store, answerer rag.Answerer, logger zerolog.Logger) *Gateway {
	return &Gateway{store: store, answerer: answerer, log: logger}
}

// Handler returns the jsonrpc2 handler for this gateway.
func (g *Gateway) Handler() jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(g.handle)
}

// Listen accepts connections on addr and serves tool calls until the context
// is cancelled.
func (g *Gateway) Listen(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	g.log.Info().Str("addr", addr).Msg("tool gateway listening")

	handler := g.Handler()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
		jsonrpc2.NewConn(ctx, stream, handler)
	}
}

type toolArgs struct {
	UserID        string `json:"user_id"`
	FromAccount   string `json:"from_account"`
	ToAccount     string `json:"to_account"`
	Amount        string `json:"amount"`
	AccountNumber string `json:"account_number"`
	Days          int    `json:"days"`
	Question      string `json:"question"`
	Password      string `json:"password"`
}

func (g *Gateway) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	var args toolArgs
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &args); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}

	g.log.Debug().Str("tool", req.Method).Msg("tool call")

	switch req.Method {
	case core.ToolListUserAccounts:
		accounts, err := g.store.Accounts(ctx, args.UserID)
		if err != nil {
			return nil, rpcError(err)
		}
		return envelope(accounts)

	case core.ToolListTargetAccounts:
		accounts, err := g.store.TransferTargets(ctx, args.UserID, args.FromAccount)
		if err != nil {
			return nil, rpcError(err)
		}
		return envelope(accounts)

	case core.ToolTransferFunds:
		return envelope(g.transfer(ctx, args))

	case core.ToolGetAccountBalance:
		account, err := g.store.Balance(ctx, args.UserID, args.AccountNumber)
		if err != nil {
			// Not-found is reported inside the payload, not as a protocol
			// failure, so the formatter can apologize in plain language.
			return envelope(map[string]string{"error": err.Error()})
		}
		return envelope(account)

	case core.ToolGetTransactionHistory:
		transactions, err := g.store.History(ctx, args.AccountNumber, args.Days)
		if err != nil {
			return nil, rpcError(err)
		}
		if transactions == nil {
			transactions = []core.Transaction{}
		}
		return envelope(transactions)

	case core.ToolAnswerBankingQuestion:
		answer, err := g.answerer.Answer(ctx, args.Question)
		if err != nil {
			return nil, rpcError(err)
		}
		return envelope(answer)

	case "authenticate":
		ok, err := g.store.Authenticate(ctx, args.UserID, args.Password)
		if err != nil {
			return nil, rpcError(err)
		}
		return map[string]bool{"authenticated": ok}, nil

	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("unknown tool: %s", req.Method),
		}
	}
}

// transfer cleans the amount and reports the outcome as human-readable text,
// success and failure both.
func (g *Gateway) transfer(ctx context.Context, args toolArgs) string {
	clean := strings.NewReplacer("$", "", ",", "").Replace(args.Amount)
	err := g.store.Transfer(ctx, args.UserID, args.FromAccount, args.ToAccount, clean)
	if err != nil {
		g.log.Warn().Err(err).Msg("transfer failed")
		return fmt.Sprintf("❌ Transfer failed: %s", err)
	}
	return fmt.Sprintf("✅ Transferred $%s from %s to %s.", clean, args.FromAccount, args.ToAccount)
}

// envelope wraps a payload in the text-content result shape.
func envelope(payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, rpcError(err)
	}
	return &Envelope{Content: []ContentItem{{Type: "text", Text: string(data)}}}, nil
}

func rpcError(err error) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
}
