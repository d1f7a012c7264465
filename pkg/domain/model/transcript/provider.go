package transcript

import "github.com/secmon-lab/earmark/pkg/domain/types"

type ProviderStatus string

const (
	StatusCompleted ProviderStatus = "completed"
	StatusError     ProviderStatus = "error"
)

// ProviderTranscript is the provider response normalized by the transcription adapter.
type ProviderTranscript struct {
	ProviderID      string
	Status          ProviderStatus
	Error           string
	Text            string
	Utterances      []Utterance
	DurationSeconds *float64
}

// Transcription is returned to the uploader. WordCount is informational and not stored.
type Transcription struct {
	SessionID       types.SessionID `json:"session_id"`
	Text            string          `json:"text"`
	Utterances      []Utterance     `json:"utterances"`
	DurationSeconds *float64        `json:"duration_seconds"`
	WordCount       int             `json:"word_count"`
}
