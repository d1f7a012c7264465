package analysis

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
)

//go:embed prompt/*.md
var promptFiles embed.FS

var (
	systemPrompt string
	userTemplate *template.Template
)

func init() {
	system, err := promptFiles.ReadFile("prompt/system.md")
	if err != nil {
		panic("failed to read system prompt: " + err.Error())
	}
	systemPrompt = strings.TrimSpace(string(system))

	userTemplate = template.Must(template.ParseFS(promptFiles, "prompt/user.md"))
}

// SystemPrompt returns the instruction given to the analysis provider.
func SystemPrompt() string {
	return systemPrompt
}

// BuildUserMessage combines the transcript text and the caller's instruction.
func BuildUserMessage(transcriptText, instruction string) (string, error) {
	var buf bytes.Buffer
	input := struct {
		Transcript  string
		Instruction string
	}{
		Transcript:  transcriptText,
		Instruction: instruction,
	}
	if err := userTemplate.Execute(&buf, input); err != nil {
		return "", goerr.Wrap(err, "failed to build analysis message")
	}
	return strings.TrimSpace(buf.String()), nil
}

// Run sends one analysis request and parses the reply. Errors are returned only when the
// provider call itself fails; unusable replies become *transcript.Unstructured.
func Run(ctx context.Context, client gollem.LLMClient, transcriptText, instruction string) (transcript.Outcome, error) {
	msg, err := BuildUserMessage(transcriptText, instruction)
	if err != nil {
		return nil, err
	}

	ssn, err := client.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create analysis session")
	}

	resp, err := ssn.GenerateContent(ctx, gollem.Text(msg))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate analysis")
	}

	raw := strings.Join(resp.Texts, "")
	outcome := Parse(raw)
	if _, ok := outcome.(*transcript.Unstructured); ok {
		logging.From(ctx).Warn("analysis reply is not structured JSON", "length", len(raw))
	}

	return outcome, nil
}

// StripCodeFence removes a surrounding markdown code fence. When text starts with ```,
// the first line is dropped and everything from the last ``` on is cut.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	idx := strings.IndexByte(text, '\n')
	if idx < 0 {
		return text
	}
	text = text[idx+1:]

	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

type reply struct {
	Summary    json.RawMessage `json:"summary"`
	Attributes json.RawMessage `json:"attributes"`
}

// Parse converts a provider reply into Structured when it is a JSON object whose
// "attributes" member, if any, is itself an object. Anything else is Unstructured.
func Parse(raw string) transcript.Outcome {
	text := StripCodeFence(raw)
	unstructured := &transcript.Unstructured{RawText: text}

	if !strings.HasPrefix(text, "{") {
		return unstructured
	}

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return unstructured
	}

	attrs := transcript.NewAttributes()
	if !isNull(r.Attributes) {
		if err := attrs.UnmarshalJSON(r.Attributes); err != nil {
			return unstructured
		}
	}

	return &transcript.Structured{
		Text:  summaryText(r.Summary),
		Attrs: attrs,
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// summaryText keeps string summaries as-is and any other JSON value as its JSON text.
func summaryText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
