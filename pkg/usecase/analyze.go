package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/service/analysis"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
)

// Analyze runs the instruction against the session transcript and replaces the session's
// analysis. Unknown sessions and blank instructions fail before the provider is called,
// and a provider failure leaves the session untouched.
func (uc *UseCases) Analyze(ctx context.Context, id types.SessionID, instruction, model string) (transcript.Outcome, error) {
	if _, err := uc.credentials.Resolve(); err != nil {
		return nil, err
	}

	record, err := uc.lookupSession(ctx, id, "Invalid session. Please transcribe audio first.")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(instruction) == "" {
		return nil, goerr.New("Analysis prompt cannot be empty.",
			goerr.T(errs.TagValidation),
			goerr.TV(errutil.SessionIDKey, id),
		)
	}

	if model == "" {
		model = uc.defaultModel
	}
	if uc.llmProvider == nil {
		return nil, ErrLLMProviderNotConfigured
	}

	ctx = logging.With(ctx, logging.From(ctx).With("session_id", id, "model", model))

	client, err := uc.llmProvider.NewClient(ctx, model)
	if err != nil {
		return nil, goerr.Wrap(err, "Analysis error",
			goerr.T(errs.TagProvider),
			goerr.TV(errutil.SessionIDKey, id),
			goerr.TV(errutil.ModelKey, model),
		)
	}

	outcome, err := analysis.Run(ctx, client, record.FullText, instruction)
	if err != nil {
		return nil, goerr.Wrap(err, "Analysis error",
			goerr.T(errs.TagProvider),
			goerr.TV(errutil.SessionIDKey, id),
			goerr.TV(errutil.ModelKey, model),
		)
	}

	result := transcript.ToAnalysis(outcome, instruction, model)
	if err := uc.repository.UpdateSession(ctx, id, func(record *transcript.Record) error {
		record.Analysis = result
		return nil
	}); err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			return nil, invalidSession(err, id, "Invalid session. Please transcribe audio first.")
		}
		return nil, goerr.Wrap(err, "failed to store analysis", goerr.TV(errutil.SessionIDKey, id))
	}

	_, structured := outcome.(*transcript.Structured)
	logging.From(ctx).Info("analysis completed",
		"structured", structured,
		"attributes", result.Attributes.Len(),
	)

	return outcome, nil
}

// lookupSession maps a missing or unknown id to a validation error carrying msg.
func (uc *UseCases) lookupSession(ctx context.Context, id types.SessionID, msg string) (*transcript.Record, error) {
	if err := id.Validate(); err != nil {
		return nil, invalidSession(err, id, msg)
	}

	record, err := uc.repository.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			return nil, invalidSession(err, id, msg)
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.TV(errutil.SessionIDKey, id))
	}
	return record, nil
}

func invalidSession(cause error, id types.SessionID, msg string) error {
	// The cause stays attached for logging; callers only see msg.
	return goerr.New(msg,
		goerr.T(errs.TagValidation),
		goerr.T(errs.TagNotFound),
		goerr.TV(errutil.SessionIDKey, id),
		goerr.V("cause", cause.Error()),
	)
}
