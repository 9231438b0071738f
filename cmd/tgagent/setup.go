package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/ehlvg/tg-agent/internal/config"
	"github.com/ehlvg/tg-agent/internal/conversation"
	"github.com/ehlvg/tg-agent/internal/providers/agent"
	"github.com/ehlvg/tg-agent/internal/service/relay"
	"github.com/ehlvg/tg-agent/internal/transport/telegram"
	"github.com/ehlvg/tg-agent/pkg/log"
	"github.com/ehlvg/tg-agent/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	agentCfg := config.NewAgentConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)

	// 2. Conversation store
	store := conversation.NewStore(appCfg.ContextWindowSize)

	// 3. Agent client
	client := agent.NewClient(agentCfg.AccessID, agentCfg.BaseURL, agentCfg.RequestTimeout)

	// 4. Relay service
	rl := relay.NewRelay(store, client)

	// 5. Transport
	bot, err := telegram.NewBot(ctx, tgCfg, rl)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	services = append(services, bot)

	return services
}

func initEnv(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn().Err(err).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Msg("loaded .env file")
	return nil
}
