package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type analyzeOutput struct {
	SessionID  types.SessionID        `json:"session_id"`
	Summary    string                 `json:"summary"`
	Attributes *transcript.Attributes `json:"attributes"`
	Structured bool                   `json:"structured"`
}

func cmdAnalyze() *cli.Command {
	var (
		appCfg   appConfig
		file     string
		prompt   string
		model    string
		docxPath string
		csvPath  string
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Audio file to transcribe and analyze",
				Required:    true,
				Destination: &file,
			},
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "Analysis instruction",
				Destination: &prompt,
			},
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "Claude model (default: --default-model)",
				Destination: &model,
			},
			&cli.StringFlag{
				Name:        "docx",
				Usage:       "Write the transcript document with analysis to this path",
				Destination: &docxPath,
			},
			&cli.StringFlag{
				Name:        "csv",
				Usage:       "Write the analysis spreadsheet to this path",
				Destination: &csvPath,
			},
		},
		appCfg.Flags(),
	)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Transcribe and analyze a local audio file",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// reject before transcribing
			if strings.TrimSpace(prompt) == "" {
				return goerr.New("Analysis prompt cannot be empty.", goerr.T(errs.TagValidation))
			}

			logging.Default().Debug("analyze options", "file", file, "model", model, "app", &appCfg)

			uc, _, closer, err := appCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			result, err := transcribeFile(ctx, uc, file)
			if err != nil {
				return err
			}

			outcome, err := uc.Analyze(ctx, result.SessionID, prompt, model)
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

			if csvPath != "" {
				export, err := uc.ExportSpreadsheet(ctx, result.SessionID)
				if err != nil {
					if !goerr.HasTag(err, errs.TagNoAnalysis) {
						return err
					}
					logging.Default().Warn("spreadsheet skipped", "reason", err.Error())
				} else {
					if err := saveExport(ctx, export, csvPath); err != nil {
						return err
					}
					logging.Default().Info("spreadsheet saved", "path", csvPath)
				}
			}

			_, structured := outcome.(*transcript.Structured)
			return printJSON(cmd.Root().Writer, analyzeOutput{
				SessionID:  result.SessionID,
				Summary:    outcome.Summary(),
				Attributes: outcome.Attributes(),
				Structured: structured,
			})
		},
	}
}
