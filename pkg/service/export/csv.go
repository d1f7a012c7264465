package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
)

// Fixed spreadsheet columns, always first and in this order.
const (
	ColumnFilename        = "filename"
	ColumnDate            = "date"
	ColumnDurationSeconds = "duration_seconds"
	ColumnWordCount       = "word_count"
)

// SpreadsheetName is the object key of a rendered spreadsheet.
func SpreadsheetName(rec *transcript.Record) string {
	return "analysis_" + rec.ID.String() + ".csv"
}

// SpreadsheetDownloadName is the file name offered to the caller.
func SpreadsheetDownloadName(rec *transcript.Record) string {
	return "analysis_" + rec.BaseName() + ".csv"
}

// Row builds the header and the single data row. An attribute named like a fixed column
// overwrites that column's value and keeps its position.
func Row(rec *transcript.Record) ([]string, []string, error) {
	if !rec.HasAttributes() {
		return nil, nil, goerr.New("No analysis attributes found. Run analysis first.",
			goerr.T(errs.TagNoAnalysis),
			goerr.TV(errutil.SessionIDKey, rec.ID),
		)
	}

	duration := ""
	if rec.DurationSeconds != nil {
		duration = strconv.FormatFloat(*rec.DurationSeconds, 'f', -1, 64)
	}

	row := orderedmap.NewOrderedMap[string, string]()
	row.Set(ColumnFilename, rec.Filename)
	row.Set(ColumnDate, rec.Date())
	row.Set(ColumnDurationSeconds, duration)
	row.Set(ColumnWordCount, strconv.Itoa(rec.WordCount()))
	for k, v := range rec.Analysis.Attributes.All() {
		row.Set(k, transcript.DisplayString(v))
	}

	header := make([]string, 0, row.Len())
	values := make([]string, 0, row.Len())
	for k, v := range row.AllFromFront() {
		header = append(header, k)
		values = append(values, v)
	}
	return header, values, nil
}

// WriteSpreadsheet renders the analysis of rec as a two-line CSV with CRLF line endings.
func WriteSpreadsheet(w io.Writer, rec *transcript.Record) error {
	header, values, err := Row(rec)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.WriteAll([][]string{header, values}); err != nil {
		return goerr.Wrap(err, "failed to write spreadsheet", goerr.TV(errutil.SessionIDKey, rec.ID))
	}
	return nil
}
