package config

import (
	"log/slog"

	"github.com/secmon-lab/earmark/pkg/adapter/claude"
	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/secmon-lab/earmark/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type LLM struct {
	defaultModel string
	maxTokens    int64
}

func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "default-model",
			Usage:       "Claude model used when a request omits one",
			Category:    "Analysis",
			Value:       usecase.DefaultModel,
			Sources:     cli.EnvVars("EARMARK_DEFAULT_MODEL"),
			Destination: &x.defaultModel,
		},
		&cli.Int64Flag{
			Name:        "max-tokens",
			Usage:       "Maximum output tokens of an analysis reply",
			Category:    "Analysis",
			Value:       claude.DefaultMaxTokens,
			Sources:     cli.EnvVars("EARMARK_MAX_TOKENS"),
			Destination: &x.maxTokens,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("default_model", x.DefaultModel()),
		slog.Int64("max_tokens", x.maxTokens),
	)
}

func (x LLM) DefaultModel() string {
	if x.defaultModel == "" {
		return usecase.DefaultModel
	}
	return x.defaultModel
}

func (x *LLM) Configure(creds credential.Credentials) *claude.Provider {
	var opts []claude.Option
	if x.maxTokens > 0 {
		opts = append(opts, claude.WithMaxTokens(x.maxTokens))
	}
	return claude.New(creds.AnthropicKey, opts...)
}
