package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
)

// StorageClient holds exported documents. Objects are written through the returned
// WriteCloser and become visible on Close.
type StorageClient interface {
	PutObject(ctx context.Context, object string) io.WriteCloser
	GetObject(ctx context.Context, object string) (io.ReadCloser, error)
	Close(ctx context.Context)
}

// Transcriber submits a local audio file to a speech-to-text provider with speaker
// diarization and highlight extraction enabled. A provider-reported failure is returned as
// a ProviderTranscript with StatusError, not as an error.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*transcript.ProviderTranscript, error)
}

// LLMProvider creates an analysis client bound to the given model name.
type LLMProvider interface {
	NewClient(ctx context.Context, model string) (gollem.LLMClient, error)
}
