package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ehlvg/tg-agent/pkg/log"
)

type AgentConfig struct {
	AccessID       string        `env:"AGENT_ACCESS_ID,required,notEmpty"`
	BaseURL        string        `env:"AGENT_BASE_URL" envDefault:"https://agent.timeweb.cloud/api/v1/cloud-ai"`
	RequestTimeout time.Duration `env:"AGENT_REQUEST_TIMEOUT" envDefault:"30s"`
}

func NewAgentConfig(ctx context.Context) *AgentConfig {
	c := &AgentConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Agent config")
	}
	return c
}
