package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
)

const (
	// Run sizes are in points.
	sizeBody = 11
	sizeMeta = 10

	colorMeta    = "808080"
	colorSpeaker = "2C3E50"
	colorPrompt  = "646464"

	attributeTableStyle = "LightGrid-Accent1"
)

// DocumentName is the object key of a rendered document.
func DocumentName(rec *transcript.Record) string {
	return "transcript_" + rec.ID.String() + ".docx"
}

// DocumentDownloadName is the file name offered to the caller.
func DocumentDownloadName(rec *transcript.Record) string {
	return "transcript_" + rec.BaseName() + ".docx"
}

// FormatDuration renders seconds as "Mm Ss" using whole minutes and the floored remainder.
func FormatDuration(seconds float64) string {
	minutes := int(math.Floor(seconds / 60))
	rest := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%dm %ds", minutes, rest)
}

// WriteDocument renders rec as a Word document.
func WriteDocument(w io.Writer, rec *transcript.Record) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return goerr.Wrap(err, "failed to create document", goerr.TV(errutil.SessionIDKey, rec.ID))
	}

	if err := buildDocument(doc, rec); err != nil {
		return goerr.Wrap(err, "failed to build document", goerr.TV(errutil.SessionIDKey, rec.ID))
	}

	if err := doc.Write(w); err != nil {
		return goerr.Wrap(err, "failed to write document", goerr.TV(errutil.SessionIDKey, rec.ID))
	}
	return nil
}

func buildDocument(doc *docx.RootDoc, rec *transcript.Record) error {
	title, err := doc.AddHeading("Audio Transcript", 0)
	if err != nil {
		return goerr.Wrap(err, "failed to add title")
	}
	title.Justification("center")

	if err := addMetadata(doc, rec); err != nil {
		return err
	}
	doc.AddParagraph("")

	if _, err := doc.AddHeading("Transcript", 1); err != nil {
		return goerr.Wrap(err, "failed to add heading", goerr.V("heading", "Transcript"))
	}

	if len(rec.Utterances) > 0 {
		for _, u := range rec.Utterances {
			p := doc.AddEmptyParagraph()
			p.AddText("Speaker " + u.Speaker + ": ").Bold(true).Size(sizeBody).Color(colorSpeaker)
			p.AddText(u.Text).Size(sizeBody)
		}
	} else {
		addLines(doc, rec.FullText, sizeBody)
	}

	if rec.Analysis != nil {
		return addAnalysis(doc, rec.Analysis)
	}
	return nil
}

func addMetadata(doc *docx.RootDoc, rec *transcript.Record) error {
	line := fmt.Sprintf("File: %s  |  Date: %s", rec.Filename, rec.Date())
	if d := rec.Duration(); d > 0 {
		line += "  |  Duration: " + FormatDuration(d)
	}

	p := doc.AddEmptyParagraph()
	p.AddText(line).Size(sizeMeta).Color(colorMeta)
	p.Justification("center")
	return nil
}

func addAnalysis(doc *docx.RootDoc, a *transcript.Analysis) error {
	doc.AddPageBreak()
	if _, err := doc.AddHeading("Analysis", 1); err != nil {
		return goerr.Wrap(err, "failed to add heading", goerr.V("heading", "Analysis"))
	}

	p := doc.AddEmptyParagraph()
	p.AddText("Prompt used: ").Bold(true).Size(sizeMeta)
	p.AddText(a.PromptUsed).Size(sizeMeta).Color(colorPrompt)
	doc.AddParagraph("")

	if _, err := doc.AddHeading("Summary", 2); err != nil {
		return goerr.Wrap(err, "failed to add heading", goerr.V("heading", "Summary"))
	}
	addLines(doc, a.Summary, sizeBody)

	if a.Attributes.Len() == 0 {
		return nil
	}
	if _, err := doc.AddHeading("Extracted Attributes", 2); err != nil {
		return goerr.Wrap(err, "failed to add heading", goerr.V("heading", "Extracted Attributes"))
	}

	table := doc.AddTable()
	table.Style(attributeTableStyle)
	addRow(table, "Attribute", "Value")
	for k, v := range a.Attributes.All() {
		addRow(table, k, transcript.DisplayString(v))
	}
	return nil
}

func addRow(table *docx.Table, cells ...string) {
	row := table.AddRow()
	for _, c := range cells {
		row.AddCell().AddParagraph(c)
	}
}

// addLines writes s as a single paragraph, turning embedded newlines into line breaks.
func addLines(doc *docx.RootDoc, s string, size uint) {
	p := doc.AddEmptyParagraph()
	for i, line := range splitLines(s) {
		if i > 0 {
			p.AddRun().AddBreak(nil)
		}
		p.AddText(line).Size(uint64(size))
	}
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}
