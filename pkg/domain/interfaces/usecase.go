package interfaces

import (
	"context"
	"io"

	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
)

type TranscriptionUsecases interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (*transcript.Transcription, error)
	ListSessions(ctx context.Context) ([]transcript.Summary, error)
	Health(ctx context.Context) credential.Status
}

type AnalysisUsecases interface {
	Analyze(ctx context.Context, id types.SessionID, instruction, model string) (transcript.Outcome, error)
}

type ExportUsecases interface {
	ExportDocument(ctx context.Context, id types.SessionID) (*transcript.Export, error)
	ExportSpreadsheet(ctx context.Context, id types.SessionID) (*transcript.Export, error)
}
