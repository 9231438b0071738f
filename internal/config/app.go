package config

import (
	"context"

	"github.com/caarlos0/env/v9"
	"github.com/ehlvg/tg-agent/pkg/log"
)

type AppConfig struct {
	// Context Management
	ContextWindowSize int `env:"CONTEXT_WINDOW_SIZE" envDefault:"10"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}
