package cli

import (
	"context"

	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdTranscribe() *cli.Command {
	var (
		appCfg   appConfig
		file     string
		docxPath string
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Audio file to transcribe",
				Required:    true,
				Destination: &file,
			},
			&cli.StringFlag{
				Name:        "docx",
				Usage:       "Write the transcript document to this path",
				Destination: &docxPath,
			},
		},
		appCfg.Flags(),
	)

	return &cli.Command{
		Name:    "transcribe",
		Aliases: []string{"t"},
		Usage:   "Transcribe a local audio file and print the result as JSON",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Debug("transcribe options", "file", file, "app", &appCfg)

			uc, _, closer, err := appCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			result, err := transcribeFile(ctx, uc, file)
			if err != nil {
				return err
			}

			if docxPath != "" {
				export, err := uc.ExportDocument(ctx, result.SessionID)
				if err != nil {
					return err
				}
				if err := saveExport(ctx, export, docxPath); err != nil {
					return err
				}
				logging.Default().Info("document saved", "path", docxPath)
			}

			return printJSON(cmd.Root().Writer, result)
		},
	}
}
