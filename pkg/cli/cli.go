package cli

import (
	"context"

	"github.com/secmon-lab/earmark/pkg/cli/config"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var envCfg config.Environment
	var closer func()
	app := &cli.Command{
		Name:  "earmark",
		Usage: "Audio transcription and analysis server",
		Flags: joinFlags(loggerCfg.Flags(), envCfg.Flags()),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			loggerCfg.SetDevelopment(!envCfg.Production())
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Info("base options", "env", envCfg, "logger", loggerCfg)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(&envCfg),
			cmdTranscribe(),
			cmdAnalyze(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
