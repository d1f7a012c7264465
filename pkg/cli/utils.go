package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/cli/config"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/service/upload"
	"github.com/secmon-lab/earmark/pkg/usecase"
	"github.com/secmon-lab/earmark/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, flag := range flags {
		result = append(result, flag...)
	}
	return result
}

// appConfig gathers the settings shared by every command that builds the usecase layer.
type appConfig struct {
	credentials config.Credentials
	assemblyai  config.AssemblyAI
	llm         config.LLM
	workspace   config.Workspace
	storage     config.Storage
	session     config.Session
}

func (x *appConfig) Flags() []cli.Flag {
	return joinFlags(
		x.credentials.Flags(),
		x.assemblyai.Flags(),
		x.llm.Flags(),
		x.workspace.Flags(),
		x.storage.Flags(),
		x.session.Flags(),
	)
}

func (x *appConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("credentials", x.credentials),
		slog.Any("assemblyai", x.assemblyai),
		slog.Any("llm", x.llm),
		slog.Any("workspace", x.workspace),
		slog.Any("storage", &x.storage),
		slog.Any("session", x.session),
	)
}

// Configure builds the usecase layer. The returned closer releases the storage client.
func (x *appConfig) Configure(ctx context.Context) (*usecase.UseCases, *upload.Service, func(), error) {
	uploader, err := x.workspace.Configure()
	if err != nil {
		return nil, nil, nil, err
	}

	storageClient, err := x.storage.Configure(ctx, x.workspace.OutputsDir())
	if err != nil {
		return nil, nil, nil, err
	}

	repo, err := x.session.Configure()
	if err != nil {
		storageClient.Close(ctx)
		return nil, nil, nil, err
	}

	creds := x.credentials.Configure()
	uc := usecase.New(
		usecase.WithCredentials(creds),
		usecase.WithTranscriber(x.assemblyai.Configure(creds)),
		usecase.WithLLMProvider(x.llm.Configure(creds)),
		usecase.WithDefaultModel(x.llm.DefaultModel()),
		usecase.WithRepository(repo),
		usecase.WithStorageClient(storageClient),
		usecase.WithUploader(uploader),
	)

	return uc, uploader, func() { storageClient.Close(ctx) }, nil
}

// transcribeFile runs a local audio file through the same path as an HTTP upload.
func transcribeFile(ctx context.Context, uc *usecase.UseCases, path string) (*transcript.Transcription, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open audio file", goerr.V("path", path))
	}
	defer safe.Close(ctx, f)

	return uc.Transcribe(ctx, filepath.Base(path), f)
}

// saveExport copies an export body into dst.
func saveExport(ctx context.Context, export *transcript.Export, dst string) error {
	defer safe.Close(ctx, export.Body)

	f, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return goerr.Wrap(err, "failed to create output file", goerr.V("path", dst))
	}
	if _, err := io.Copy(f, export.Body); err != nil {
		safe.Close(ctx, f)
		return goerr.Wrap(err, "failed to write output file", goerr.V("path", dst))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close output file", goerr.V("path", dst))
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	return nil
}
