package usecase

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/service/upload"
	"github.com/secmon-lab/earmark/pkg/utils/clock"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
)

// Transcribe stores audio in a scratch file, sends it to the transcription provider and
// creates a session on success. The scratch file is removed on every path.
func (uc *UseCases) Transcribe(ctx context.Context, filename string, audio io.Reader) (*transcript.Transcription, error) {
	if _, err := uc.credentials.Resolve(); err != nil {
		return nil, err
	}
	if uc.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}
	if uc.transcriber == nil {
		return nil, ErrTranscriberNotConfigured
	}

	var result *transcript.Transcription
	err := uc.uploader.With(ctx, audio, filename, func(scratch *upload.ScratchFile) error {
		id := types.NewSessionID(scratch.Name)
		ctx := logging.With(ctx, logging.From(ctx).With("session_id", id))

		resp, err := uc.transcriber.Transcribe(ctx, scratch.Path)
		if err != nil {
			return goerr.Wrap(err, "Transcription error",
				goerr.T(errs.TagProvider),
				goerr.TV(errutil.SessionIDKey, id),
				goerr.TV(errutil.FilenameKey, scratch.OriginalName),
			)
		}
		if resp.Status == transcript.StatusError {
			return goerr.New("Transcription failed: "+resp.Error,
				goerr.T(errs.TagProvider),
				goerr.TV(errutil.SessionIDKey, id),
				goerr.TV(errutil.StatusKey, string(resp.Status)),
				goerr.TV(errutil.ErrorMessageKey, resp.Error),
			)
		}

		utterances := resp.Utterances
		if utterances == nil {
			utterances = []transcript.Utterance{}
		}

		record := &transcript.Record{
			ID:              id,
			Filename:        scratch.OriginalName,
			FullText:        resp.Text,
			Utterances:      utterances,
			DurationSeconds: resp.DurationSeconds,
			Timestamp:       clock.Now(ctx),
		}
		if err := uc.repository.PutSession(ctx, record); err != nil {
			return goerr.Wrap(err, "failed to store session", goerr.TV(errutil.SessionIDKey, id))
		}

		result = &transcript.Transcription{
			SessionID:       id,
			Text:            record.FullText,
			Utterances:      utterances,
			DurationSeconds: record.DurationSeconds,
			WordCount:       record.WordCount(),
		}

		logging.From(ctx).Info("transcription completed",
			"provider_id", resp.ProviderID,
			"utterances", len(utterances),
			"word_count", result.WordCount,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *UseCases) ListSessions(ctx context.Context) ([]transcript.Summary, error) {
	sessions, err := uc.repository.ListSessions(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []transcript.Summary{}
	}
	return sessions, nil
}

// Health reports which provider keys are configured. It never contacts a provider.
func (uc *UseCases) Health(ctx context.Context) credential.Status {
	return uc.credentials.Status()
}
