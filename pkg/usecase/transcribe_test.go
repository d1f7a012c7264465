package usecase_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/repository/memory"
	"github.com/secmon-lab/earmark/pkg/usecase"
)

func TestTranscribe(t *testing.T) {
	ctx := testContext()
	uploader, dir := newUploader(t)
	repo := memory.New()
	transcriber := &fakeTranscriber{
		resp: completed("Hello there. Hi!",
			transcript.Utterance{Speaker: "A", Text: "Hello there.", Start: 0, End: 900},
			transcript.Utterance{Speaker: "B", Text: "Hi!", Start: 1000, End: 1400},
		),
	}

	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithUploader(uploader),
		usecase.WithTranscriber(transcriber),
		usecase.WithRepository(repo),
	)

	result, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("RIFF"))
	gt.NoError(t, err).Required()

	gt.S(t, result.SessionID.String()).HasSuffix("_talk")
	gt.Equal(t, result.SessionID, types.SessionID("1709994600000000000_talk"))
	gt.Equal(t, result.Text, "Hello there. Hi!")
	gt.Equal(t, result.WordCount, 3)
	gt.A(t, result.Utterances).Length(2)
	gt.Equal(t, result.Utterances[0].Speaker, "A")
	gt.Equal(t, *result.DurationSeconds, 65.4)

	t.Run("scratch file existed during the call and is gone after", func(t *testing.T) {
		gt.A(t, transcriber.existed).Equal([]bool{true})
		gt.Equal(t, scratchEntries(t, dir), 0)
	})

	t.Run("session is stored", func(t *testing.T) {
		record, err := repo.GetSession(ctx, result.SessionID)
		gt.NoError(t, err).Required()
		gt.Equal(t, record.Filename, "talk.wav")
		gt.Equal(t, record.FullText, "Hello there. Hi!")
		gt.Equal(t, record.Timestamp, fixedTime)
		gt.V(t, record.Analysis).Nil()
		gt.Equal(t, repo.Len(), 1)
	})
}

func TestTranscribeNoUtterances(t *testing.T) {
	ctx := testContext()
	uploader, _ := newUploader(t)
	transcriber := &fakeTranscriber{resp: completed("hello world")}

	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithUploader(uploader),
		usecase.WithTranscriber(transcriber),
	)

	result, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("RIFF"))
	gt.NoError(t, err).Required()
	gt.A(t, result.Utterances).Length(0)
	body, err := json.Marshal(result)
	gt.NoError(t, err).Required()
	gt.S(t, string(body)).Contains(`"utterances":[]`)
	gt.Equal(t, result.WordCount, 2)
}

func TestTranscribeProviderStatusError(t *testing.T) {
	ctx := testContext()
	uploader, dir := newUploader(t)
	repo := memory.New()
	transcriber := &fakeTranscriber{
		resp: &transcript.ProviderTranscript{
			Status: transcript.StatusError,
			Error:  "File does not appear to contain audio.",
		},
	}

	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithUploader(uploader),
		usecase.WithTranscriber(transcriber),
		usecase.WithRepository(repo),
	)

	_, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("RIFF"))
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagProvider))
	gt.Equal(t, err.Error(), "Transcription failed: File does not appear to contain audio.")

	gt.Equal(t, repo.Len(), 0)
	gt.Equal(t, scratchEntries(t, dir), 0)
}

func TestTranscribeProviderFailure(t *testing.T) {
	ctx := testContext()
	uploader, dir := newUploader(t)
	repo := memory.New()
	cause := errors.New("connection reset")
	transcriber := &fakeTranscriber{err: cause}

	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithUploader(uploader),
		usecase.WithTranscriber(transcriber),
		usecase.WithRepository(repo),
	)

	_, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("RIFF"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, cause))
	gt.True(t, goerr.HasTag(err, errs.TagProvider))
	gt.Equal(t, repo.Len(), 0)
	gt.Equal(t, scratchEntries(t, dir), 0)
}

func TestTranscribeMissingCredentials(t *testing.T) {
	ctx := testContext()
	uploader, dir := newUploader(t)
	transcriber := &fakeTranscriber{resp: completed("hello")}

	testCases := []struct {
		name  string
		creds credential.Credentials
		want  string
	}{
		{name: "no keys", creds: credential.Credentials{}, want: "ASSEMBLYAI_API_KEY environment variable is not set"},
		{name: "no anthropic key", creds: credential.Credentials{AssemblyAIKey: "k"}, want: "ANTHROPIC_API_KEY environment variable is not set"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := usecase.New(
				usecase.WithCredentials(tc.creds),
				usecase.WithUploader(uploader),
				usecase.WithTranscriber(transcriber),
			)
			_, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("RIFF"))
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, errs.TagConfiguration))
			gt.Equal(t, err.Error(), tc.want)
		})
	}

	gt.Equal(t, transcriber.calls(), 0)
	gt.Equal(t, scratchEntries(t, dir), 0)
}

func TestTranscribeNoFilename(t *testing.T) {
	ctx := testContext()
	uploader, _ := newUploader(t)
	transcriber := &fakeTranscriber{resp: completed("hello")}

	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithUploader(uploader),
		usecase.WithTranscriber(transcriber),
	)

	_, err := uc.Transcribe(ctx, "", strings.NewReader("RIFF"))
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagValidation))
	gt.Equal(t, err.Error(), "No file selected")
	gt.Equal(t, transcriber.calls(), 0)
}

func TestTranscribeSameNameTwice(t *testing.T) {
	ctx := testContext()
	uploader, _ := newUploader(t)
	repo := memory.New()
	transcriber := &fakeTranscriber{resp: completed("hello")}

	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithUploader(uploader),
		usecase.WithTranscriber(transcriber),
		usecase.WithRepository(repo),
	)

	a, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("1"))
	gt.NoError(t, err).Required()
	b, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("2"))
	gt.NoError(t, err).Required()

	gt.NotEqual(t, a.SessionID, b.SessionID)
	gt.Equal(t, repo.Len(), 2)
}

func TestTranscribeSameStemDifferentExtension(t *testing.T) {
	ctx := testContext()
	uploader, _ := newUploader(t)
	repo := memory.New()
	transcriber := &fakeTranscriber{resp: completed("hello")}

	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithUploader(uploader),
		usecase.WithTranscriber(transcriber),
		usecase.WithRepository(repo),
	)

	a, err := uc.Transcribe(ctx, "talk.wav", strings.NewReader("1"))
	gt.NoError(t, err).Required()
	b, err := uc.Transcribe(ctx, "talk.mp3", strings.NewReader("2"))
	gt.NoError(t, err).Required()

	gt.NotEqual(t, a.SessionID, b.SessionID)
	gt.Equal(t, repo.Len(), 2)

	first, err := repo.GetSession(ctx, a.SessionID)
	gt.NoError(t, err).Required()
	gt.Equal(t, first.Filename, "talk.wav")
}

func TestTranscribeNotConfigured(t *testing.T) {
	ctx := testContext()

	_, err := usecase.New(usecase.WithCredentials(validCredentials)).Transcribe(ctx, "talk.wav", strings.NewReader("RIFF"))
	gt.True(t, errors.Is(err, usecase.ErrUploaderNotConfigured))

	uploader, _ := newUploader(t)
	_, err = usecase.New(usecase.WithCredentials(validCredentials), usecase.WithUploader(uploader)).
		Transcribe(ctx, "talk.wav", strings.NewReader("RIFF"))
	gt.True(t, errors.Is(err, usecase.ErrTranscriberNotConfigured))
}
