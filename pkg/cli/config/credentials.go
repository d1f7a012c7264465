package config

import (
	"log/slog"

	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/urfave/cli/v3"
)

var (
	assemblyAIEnvVars = []string{"EARMARK_ASSEMBLYAI_API_KEY", credential.EnvAssemblyAIKey}
	anthropicEnvVars  = []string{"EARMARK_ANTHROPIC_API_KEY", credential.EnvAnthropicKey}
)

type Credentials struct {
	assemblyAIKey string
	anthropicKey  string
}

func (x *Credentials) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "assemblyai-api-key",
			Usage:       "AssemblyAI API key",
			Category:    "Credentials",
			Sources:     cli.EnvVars(assemblyAIEnvVars...),
			Destination: &x.assemblyAIKey,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Category:    "Credentials",
			Sources:     cli.EnvVars(anthropicEnvVars...),
			Destination: &x.anthropicKey,
		},
	}
}

func (x Credentials) LogValue() slog.Value {
	return x.Configure().LogValue()
}

// Configure never fails. Missing keys are reported when an operation needs them.
func (x Credentials) Configure() credential.Credentials {
	return credential.Credentials{
		AssemblyAIKey: orEnv(x.assemblyAIKey, assemblyAIEnvVars...),
		AnthropicKey:  orEnv(x.anthropicKey, anthropicEnvVars...),
	}
}
