package http_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/earmark/pkg/controller/http"
	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
)

type panicUseCase struct{}

func (panicUseCase) Transcribe(ctx context.Context, filename string, audio io.Reader) (*transcript.Transcription, error) {
	panic("not implemented")
}

func (panicUseCase) ListSessions(ctx context.Context) ([]transcript.Summary, error) {
	panic("store is gone")
}

func (panicUseCase) Health(ctx context.Context) credential.Status {
	return credential.Status{}
}

func (panicUseCase) Analyze(ctx context.Context, id types.SessionID, instruction, model string) (transcript.Outcome, error) {
	panic("not implemented")
}

func (panicUseCase) ExportDocument(ctx context.Context, id types.SessionID) (*transcript.Export, error) {
	panic("not implemented")
}

func (panicUseCase) ExportSpreadsheet(ctx context.Context, id types.SessionID) (*transcript.Export, error) {
	panic("not implemented")
}

func TestPanicRecovery(t *testing.T) {
	srv := server.New(panicUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	gt.Equal(t, w.Code, http.StatusInternalServerError)
	gt.Equal(t, errorMessage(t, w), "internal server error")
	gt.S(t, w.Body.String()).NotContains("store is gone")

	// the server keeps serving after a recovered panic
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	gt.Equal(t, w.Code, http.StatusOK)
}

func TestJSONBodyStillReadableWithDebugLogging(t *testing.T) {
	f := setup(t, creds)
	id := f.transcribe(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	body := `{"session_id":"` + id + `","prompt":"Find the mood"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(logging.With(req.Context(), logger))

	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)

	gt.Equal(t, w.Code, http.StatusOK)
	gt.S(t, logs.String()).Contains("Access Log")
	gt.S(t, logs.String()).Contains("Find the mood")
}
