package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"github.com/secmon-lab/earmark/pkg/utils/safe"
)

const audioField = "audio"

// unstructuredNote is returned with an analysis whose reply was not the requested JSON.
const unstructuredNote = "The model did not return structured JSON. Try refining your prompt."

type analyzeRequest struct {
	SessionID types.SessionID `json:"session_id"`
	Prompt    string          `json:"prompt"`
	Model     string          `json:"model"`
}

type analyzeResponse struct {
	Summary    string                 `json:"summary"`
	Attributes *transcript.Attributes `json:"attributes"`
	Note       string                 `json:"note,omitempty"`
}

type exportRequest struct {
	SessionID types.SessionID `json:"session_id"`
}

type healthResponse struct {
	Status               string `json:"status"`
	AssemblyAIConfigured bool   `json:"assemblyai_configured"`
	AnthropicConfigured  bool   `json:"anthropic_configured"`
}

func transcribeHandler(uc UseCase, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if maxUploadSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+multipartOverhead)
		}

		mr, err := r.MultipartReader()
		if err != nil {
			handleError(w, r, goerr.New("No audio file provided", goerr.T(errs.TagValidation), goerr.V("cause", err.Error())))
			return
		}

		// Stream the audio part straight to the scratch file instead of buffering the form.
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				handleError(w, r, uploadError(err, maxUploadSize))
				return
			}

			if part.FormName() != audioField {
				safe.Close(ctx, part)
				continue
			}

			result, err := uc.Transcribe(ctx, part.FileName(), part)
			safe.Close(ctx, part)
			if err != nil {
				handleError(w, r, uploadError(err, maxUploadSize))
				return
			}

			writeJSON(w, r, http.StatusOK, result)
			return
		}

		handleError(w, r, goerr.New("No audio file provided", goerr.T(errs.TagValidation)))
	}
}

// uploadError turns a body size violation into a too_large error and passes others through.
func uploadError(err error, limit int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return goerr.New(fmt.Sprintf("File exceeds the maximum upload size of %s", humanize.IBytes(uint64(limit))),
			goerr.T(errs.TagTooLarge),
			goerr.TV(errutil.LimitKey, limit),
			goerr.V("cause", err.Error()),
		)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) && !goerr.HasTag(err, errs.TagProvider) {
		return goerr.Wrap(err, "Malformed upload", goerr.T(errs.TagInvalidRequest))
	}
	return err
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "Invalid JSON body", goerr.T(errs.TagInvalidRequest))
	}
	return nil
}

func analyzeHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		outcome, err := uc.Analyze(r.Context(), req.SessionID, req.Prompt, req.Model)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := analyzeResponse{
			Summary:    outcome.Summary(),
			Attributes: outcome.Attributes(),
		}
		if _, ok := outcome.(*transcript.Unstructured); ok {
			resp.Note = unstructuredNote
		}

		writeJSON(w, r, http.StatusOK, resp)
	}
}

func exportDocumentHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		exp, err := uc.ExportDocument(r.Context(), req.SessionID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		sendFile(w, r, exp)
	}
}

func exportSpreadsheetHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		exp, err := uc.ExportSpreadsheet(r.Context(), req.SessionID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		sendFile(w, r, exp)
	}
}

func sendFile(w http.ResponseWriter, r *http.Request, exp *transcript.Export) {
	defer safe.Close(r.Context(), exp.Body)

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Name}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, exp.Body); err != nil {
		// headers are already sent
		logging.From(r.Context()).Warn("failed to send export", "error", err, "name", exp.Name)
	}
}

func listSessionsHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := uc.ListSessions(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, sessions)
	}
}

func healthHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := uc.Health(r.Context())
		writeJSON(w, r, http.StatusOK, healthResponse{
			Status:               "ok",
			AssemblyAIConfigured: status.AssemblyAIConfigured,
			AnthropicConfigured:  status.AnthropicConfigured,
		})
	}
}
