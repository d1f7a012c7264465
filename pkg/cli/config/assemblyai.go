package config

import (
	"log/slog"

	"github.com/secmon-lab/earmark/pkg/adapter/assemblyai"
	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/urfave/cli/v3"
)

type AssemblyAI struct {
	baseURL string
}

func (x *AssemblyAI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "assemblyai-base-url",
			Usage:       "AssemblyAI API endpoint (default: the SDK endpoint)",
			Category:    "AssemblyAI",
			Sources:     cli.EnvVars("EARMARK_ASSEMBLYAI_BASE_URL"),
			Destination: &x.baseURL,
		},
	}
}

func (x AssemblyAI) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", x.baseURL),
	)
}

func (x *AssemblyAI) Configure(creds credential.Credentials) *assemblyai.Client {
	var opts []assemblyai.Option
	if x.baseURL != "" {
		opts = append(opts, assemblyai.WithBaseURL(x.baseURL))
	}
	return assemblyai.New(creds.AssemblyAIKey, opts...)
}
