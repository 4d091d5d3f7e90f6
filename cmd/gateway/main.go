// Command gateway serves the banking tools over JSON-RPC: the account store
// backed by SQLite and the documentation knowledge base.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/omisdami/bankassist/bank"
	"github.com/omisdami/bankassist/config"
	"github.com/omisdami/bankassist/gateway"
	"github.com/omisdami/bankassist/rag"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
		Timestamp().Str("component", "gateway").Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}

	store, err := bank.Open(cfg.Bank.DBFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening bank store")
	}
	defer store.Close()

	gen := rag.NewAnthropicGenerator(anthropic.NewClient(), cfg.Model)
	kb, err := rag.NewKnowledgeBase(cfg.RAG, gen, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading knowledge base")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.New(store, kb, logger)
	if err := gw.Listen(ctx, cfg.Gateway.Addr); err != nil {
		logger.Fatal().Err(err).Msg("gateway stopped")
	}
}
