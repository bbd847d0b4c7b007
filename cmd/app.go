package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/josephgoksu/muse/internal/agent"
	"github.com/josephgoksu/muse/internal/config"
	"github.com/josephgoksu/muse/internal/llm"
	"github.com/josephgoksu/muse/internal/persona"
	"github.com/spf13/afero"
)

// appFs is the filesystem persona files are read from. Tests swap it for a
// memory filesystem.
var appFs = afero.NewOsFs()

// app bundles what every command needs.
type app struct {
	cfg      config.AppConfig
	llm      llm.Config
	personas *persona.Registry
	agents   *agent.Set
}

// newApp loads configuration and personas and builds one pipeline per persona.
func newApp() (*app, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	reg, err := persona.Load(appFs, cfg.Personas.Dir)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}

	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadConfig, err)
	}

	completer := llm.NewChatCompleter(llmCfg.Provider, llm.NewModelFactory(llmCfg))
	agents := agent.NewSet(reg, completer, agent.WithLogger(slog.Default()))

	slog.Debug("personas loaded", "ids", reg.IDs(), "provider", llmCfg.Provider, "model", llmCfg.Model)

	return &app{cfg: cfg, llm: llmCfg, personas: reg, agents: agents}, nil
}

// credential resolves the provider key at call time so a rotated key in the
// environment or config is picked up without a restart.
func (a *app) credential(context.Context) (string, error) {
	return config.ResolveAPIKey(a.llm.Provider), nil
}
