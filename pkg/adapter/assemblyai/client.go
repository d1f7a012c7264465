package assemblyai

import (
	"context"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"github.com/secmon-lab/earmark/pkg/utils/ptr"
	"github.com/secmon-lab/earmark/pkg/utils/safe"
)

// Client transcribes local audio files with AssemblyAI.
type Client struct {
	client *aai.Client
}

var _ interfaces.Transcriber = &Client{}

type Option func(*[]aai.ClientOption)

func WithBaseURL(url string) Option {
	return func(opts *[]aai.ClientOption) {
		*opts = append(*opts, aai.WithBaseURL(url))
	}
}

func New(apiKey string, options ...Option) *Client {
	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	for _, opt := range options {
		opt(&opts)
	}

	return &Client{
		client: aai.NewClientWithOptions(opts...),
	}
}

// TranscriptParams are fixed: speaker labels and auto highlights are always requested.
func TranscriptParams() *aai.TranscriptOptionalParams {
	return &aai.TranscriptOptionalParams{
		SpeakerLabels:  aai.Bool(true),
		AutoHighlights: aai.Bool(true),
	}
}

func (x *Client) Transcribe(ctx context.Context, path string) (*transcript.ProviderTranscript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open audio file", goerr.TV(errutil.FilePathKey, path))
	}
	defer safe.Close(ctx, f)

	logging.From(ctx).Debug("submitting audio to AssemblyAI", "path", path)

	resp, err := x.client.Transcripts.TranscribeFromReader(ctx, f, TranscriptParams())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to transcribe audio",
			goerr.TV(errutil.ServiceKey, "assemblyai"),
			goerr.TV(errutil.FilePathKey, path),
		)
	}

	return Convert(resp), nil
}

// Convert normalizes an AssemblyAI transcript, preserving utterance order.
func Convert(resp aai.Transcript) *transcript.ProviderTranscript {
	result := &transcript.ProviderTranscript{
		ProviderID: aai.ToString(resp.ID),
		Status:     transcript.StatusCompleted,
		Text:       aai.ToString(resp.Text),
		Utterances: make([]transcript.Utterance, 0, len(resp.Utterances)),
	}

	if resp.Status == aai.TranscriptStatusError {
		result.Status = transcript.StatusError
		result.Error = aai.ToString(resp.Error)
	}

	for _, u := range resp.Utterances {
		result.Utterances = append(result.Utterances, transcript.Utterance{
			Speaker: aai.ToString(u.Speaker),
			Text:    aai.ToString(u.Text),
			Start:   aai.ToInt64(u.Start),
			End:     aai.ToInt64(u.End),
		})
	}

	if resp.AudioDuration != nil {
		result.DurationSeconds = ptr.Ref(float64(*resp.AudioDuration))
	}

	return result
}
