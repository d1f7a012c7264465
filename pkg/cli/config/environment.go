package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var environmentEnvVars = []string{"EARMARK_ENV", "FLASK_ENV"}

type Environment struct {
	name string
}

func (x *Environment) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "env",
			Usage:       "Runtime environment [development|production]",
			Category:    "Server",
			Value:       EnvDevelopment,
			Sources:     cli.EnvVars(environmentEnvVars...),
			Destination: &x.name,
		},
	}
}

func (x Environment) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", x.Name()),
		slog.Bool("production", x.Production()),
	)
}

func (x Environment) Name() string {
	if name := orEnv(x.name, environmentEnvVars...); name != "" {
		return name
	}
	return EnvDevelopment
}

// Production is true only for the exact value "production"; everything else runs in
// development mode.
func (x Environment) Production() bool {
	return x.Name() == EnvProduction
}
