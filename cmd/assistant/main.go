// Command assistant runs the conversational banking assistant: it connects to
// the tool gateway, starts the conversation worker, and serves the web
// surface.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/omisdami/bankassist/assistant"
	"github.com/omisdami/bankassist/config"
	"github.com/omisdami/bankassist/dispatch"
	"github.com/omisdami/bankassist/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
		Timestamp().Str("component", "assistant").Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}

	ctx := context.Background()

	client, err := dispatch.Dial(ctx, cfg.Gateway.Addr, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to tool gateway")
	}
	defer client.Close()

	model := assistant.NewAnthropicModel(cfg.Model)
	asst := assistant.New(cfg.Assistant, model, client, logger)
	session := assistant.NewSession(cfg.Assistant.DefaultUserID)
	runner := assistant.NewRunner(asst, session, logger)
	defer runner.Close()

	verify := func(userID, password string) (bool, error) {
		return client.Authenticate(ctx, userID, password)
	}

	srv := server.New(cfg.Server, runner, verify, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
