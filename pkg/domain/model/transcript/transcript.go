package transcript

import (
	"strings"
	"time"

	"github.com/secmon-lab/earmark/pkg/domain/types"
)

// Utterance is one speaker-attributed segment. Start and End are milliseconds from the
// beginning of the audio.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
}

// Record is everything kept for one session between requests.
type Record struct {
	ID              types.SessionID `json:"session_id"`
	Filename        string          `json:"filename"`
	FullText        string          `json:"full_text"`
	Utterances      []Utterance     `json:"utterances"`
	DurationSeconds *float64        `json:"duration_seconds"`
	Timestamp       time.Time       `json:"timestamp"`
	Analysis        *Analysis       `json:"analysis,omitempty"`
}

// Analysis is replaced as a whole on every analyze call.
type Analysis struct {
	Summary    string      `json:"summary"`
	Attributes *Attributes `json:"attributes"`
	PromptUsed string      `json:"prompt_used"`
	Model      string      `json:"model"`
}

// Summary is the listing view of a Record.
type Summary struct {
	ID          types.SessionID `json:"session_id"`
	Filename    string          `json:"filename"`
	Timestamp   time.Time       `json:"timestamp"`
	HasAnalysis bool            `json:"has_analysis"`
}

// WordCount counts whitespace separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func (x *Record) WordCount() int {
	return WordCount(x.FullText)
}

// Date returns the date portion of the creation timestamp.
func (x *Record) Date() string {
	return x.Timestamp.Format(time.DateOnly)
}

// Duration returns the audio duration in seconds, 0 when the provider did not report one.
func (x *Record) Duration() float64 {
	if x.DurationSeconds == nil {
		return 0
	}
	return *x.DurationSeconds
}

// HasAttributes reports whether an analysis with at least one attribute is present.
func (x *Record) HasAttributes() bool {
	return x.Analysis != nil && x.Analysis.Attributes.Len() > 0
}

func (x *Record) Summary() Summary {
	return Summary{
		ID:          x.ID,
		Filename:    x.Filename,
		Timestamp:   x.Timestamp,
		HasAnalysis: x.Analysis != nil,
	}
}

// Copy returns a deep copy so that stored records cannot be mutated through returned values.
func (x *Record) Copy() *Record {
	copied := *x
	if x.Utterances != nil {
		copied.Utterances = make([]Utterance, len(x.Utterances))
		copy(copied.Utterances, x.Utterances)
	}
	if x.DurationSeconds != nil {
		d := *x.DurationSeconds
		copied.DurationSeconds = &d
	}
	if x.Analysis != nil {
		a := *x.Analysis
		a.Attributes = x.Analysis.Attributes.Copy()
		copied.Analysis = &a
	}
	return &copied
}

// BaseName returns the original file name without its extension, used for download names.
func (x *Record) BaseName() string {
	if i := strings.LastIndex(x.Filename, "."); i > 0 {
		return x.Filename[:i]
	}
	return x.Filename
}
