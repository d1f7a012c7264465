package usecase

import (
	"bytes"
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/service/export"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
)

func (uc *UseCases) ExportDocument(ctx context.Context, id types.SessionID) (*transcript.Export, error) {
	record, err := uc.lookupSession(ctx, id, "Invalid session.")
	if err != nil {
		return nil, err
	}

	return uc.export(ctx, record,
		export.DocumentName(record),
		export.DocumentDownloadName(record),
		transcript.ContentTypeDOCX,
		export.WriteDocument,
	)
}

func (uc *UseCases) ExportSpreadsheet(ctx context.Context, id types.SessionID) (*transcript.Export, error) {
	record, err := uc.lookupSession(ctx, id, "Invalid session.")
	if err != nil {
		return nil, err
	}

	return uc.export(ctx, record,
		export.SpreadsheetName(record),
		export.SpreadsheetDownloadName(record),
		transcript.ContentTypeCSV,
		export.WriteSpreadsheet,
	)
}

// export renders record fully in memory, publishes it under object and returns a reader
// of the stored copy. A failed render never reaches the storage client.
func (uc *UseCases) export(ctx context.Context, record *transcript.Record, object, name, contentType string, render func(io.Writer, *transcript.Record) error) (*transcript.Export, error) {
	var buf bytes.Buffer
	if err := render(&buf, record); err != nil {
		return nil, err
	}

	w := uc.storageClient.PutObject(ctx, object)
	if _, err := w.Write(buf.Bytes()); err != nil {
		_ = w.Close()
		return nil, goerr.Wrap(err, "failed to write export", goerr.TV(errutil.ObjectKey, object))
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to save export", goerr.TV(errutil.ObjectKey, object))
	}

	body, err := uc.storageClient.GetObject(ctx, object)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read export", goerr.TV(errutil.ObjectKey, object))
	}

	logging.From(ctx).Info("export written",
		"session_id", record.ID,
		"object", object,
		"size", buf.Len(),
	)

	return &transcript.Export{
		Name:        name,
		ContentType: contentType,
		Body:        body,
	}, nil
}
