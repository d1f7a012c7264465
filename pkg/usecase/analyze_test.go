package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/repository/memory"
	"github.com/secmon-lab/earmark/pkg/usecase"
	"github.com/secmon-lab/earmark/pkg/utils/ptr"
)

const sessionID types.SessionID = "1709994600000000000_talk"

func seed(t *testing.T, repo *memory.Memory) {
	t.Helper()
	gt.NoError(t, repo.PutSession(context.Background(), &transcript.Record{
		ID:              sessionID,
		Filename:        "talk.wav",
		FullText:        "hello world",
		Utterances:      []transcript.Utterance{},
		DurationSeconds: ptr.Ref(65.4),
		Timestamp:       fixedTime,
	})).Required()
}

func TestAnalyzeStructured(t *testing.T) {
	ctx := testContext()
	repo := memory.New()
	seed(t, repo)

	var inputs []string
	provider := &fakeProvider{client: replyClient(&inputs, `{"summary":"A greeting.","attributes":{"sentiment":"positive","speaker_count":1}}`)}
	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithRepository(repo),
		usecase.WithLLMProvider(provider),
	)

	out, err := uc.Analyze(ctx, sessionID, "Describe the mood", "")
	gt.NoError(t, err).Required()

	_, ok := out.(*transcript.Structured)
	gt.True(t, ok)
	gt.Equal(t, out.Summary(), "A greeting.")
	gt.A(t, out.Attributes().Keys()).Equal([]string{"sentiment", "speaker_count"})

	gt.A(t, provider.models).Equal([]string{usecase.DefaultModel})
	gt.A(t, inputs).Length(1)
	gt.S(t, inputs[0]).Contains("hello world")
	gt.S(t, inputs[0]).Contains("Describe the mood")

	record, err := repo.GetSession(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.V(t, record.Analysis).NotNil()
	gt.Equal(t, record.Analysis.Summary, "A greeting.")
	gt.Equal(t, record.Analysis.PromptUsed, "Describe the mood")
	gt.Equal(t, record.Analysis.Model, usecase.DefaultModel)
	gt.Equal(t, record.Analysis.Attributes.Len(), 2)
}

func TestAnalyzeUnstructured(t *testing.T) {
	ctx := testContext()
	repo := memory.New()
	seed(t, repo)

	provider := &fakeProvider{client: replyClient(nil, "I think the mood is cheerful.")}
	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithRepository(repo),
		usecase.WithLLMProvider(provider),
	)

	out, err := uc.Analyze(ctx, sessionID, "Describe the mood", "claude-haiku")
	gt.NoError(t, err).Required()

	_, ok := out.(*transcript.Unstructured)
	gt.True(t, ok)
	gt.Equal(t, out.Summary(), "I think the mood is cheerful.")
	gt.Equal(t, out.Attributes().Len(), 0)
	gt.A(t, provider.models).Equal([]string{"claude-haiku"})

	record, err := repo.GetSession(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Equal(t, record.Analysis.Summary, "I think the mood is cheerful.")
	gt.Equal(t, record.Analysis.Attributes.Len(), 0)
	gt.Equal(t, record.Analysis.Model, "claude-haiku")
}

func TestAnalyzeReplacesPriorAnalysis(t *testing.T) {
	ctx := testContext()
	repo := memory.New()
	seed(t, repo)

	provider := &fakeProvider{client: replyClient(nil,
		`{"summary":"first","attributes":{"a":"1","b":"2"}}`,
		`{"summary":"second","attributes":{"c":"3"}}`,
	)}
	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithRepository(repo),
		usecase.WithLLMProvider(provider),
	)

	_, err := uc.Analyze(ctx, sessionID, "first prompt", "")
	gt.NoError(t, err).Required()
	_, err = uc.Analyze(ctx, sessionID, "second prompt", "")
	gt.NoError(t, err).Required()

	record, err := repo.GetSession(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Equal(t, record.Analysis.Summary, "second")
	gt.Equal(t, record.Analysis.PromptUsed, "second prompt")
	gt.A(t, record.Analysis.Attributes.Keys()).Equal([]string{"c"})
}

func TestAnalyzeRejectsBeforeProviderCall(t *testing.T) {
	ctx := testContext()
	repo := memory.New()
	seed(t, repo)

	testCases := []struct {
		name        string
		creds       credential.Credentials
		id          types.SessionID
		instruction string
		check       func(error) bool
		msg         string
	}{
		{
			name:        "unknown session",
			creds:       validCredentials,
			id:          "nope",
			instruction: "Summarize",
			check:       func(err error) bool { return goerr.HasTag(err, errs.TagNotFound) },
			msg:         "Invalid session. Please transcribe audio first.",
		},
		{
			name:        "empty session id",
			creds:       validCredentials,
			id:          "",
			instruction: "Summarize",
			check:       func(err error) bool { return goerr.HasTag(err, errs.TagValidation) },
			msg:         "Invalid session. Please transcribe audio first.",
		},
		{
			name:        "blank instruction",
			creds:       validCredentials,
			id:          sessionID,
			instruction: " \t\n ",
			check:       func(err error) bool { return goerr.HasTag(err, errs.TagValidation) },
			msg:         "Analysis prompt cannot be empty.",
		},
		{
			name:        "unknown session wins over blank instruction",
			creds:       validCredentials,
			id:          "nope",
			instruction: "",
			check:       func(err error) bool { return goerr.HasTag(err, errs.TagNotFound) },
			msg:         "Invalid session. Please transcribe audio first.",
		},
		{
			name:        "missing credentials",
			creds:       credential.Credentials{AssemblyAIKey: "k"},
			id:          sessionID,
			instruction: "Summarize",
			check:       func(err error) bool { return goerr.HasTag(err, errs.TagConfiguration) },
			msg:         "ANTHROPIC_API_KEY environment variable is not set",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeProvider{client: replyClient(nil, `{"summary":"x"}`)}
			uc := usecase.New(
				usecase.WithCredentials(tc.creds),
				usecase.WithRepository(repo),
				usecase.WithLLMProvider(provider),
			)

			_, err := uc.Analyze(ctx, tc.id, tc.instruction, "")
			gt.Error(t, err)
			gt.True(t, tc.check(err))
			gt.Equal(t, err.Error(), tc.msg)
			gt.A(t, provider.models).Length(0)
		})
	}

	record, err := repo.GetSession(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.V(t, record.Analysis).Nil()
}

func TestAnalyzeProviderFailureLeavesSession(t *testing.T) {
	ctx := testContext()
	repo := memory.New()
	seed(t, repo)

	good := &fakeProvider{client: replyClient(nil, `{"summary":"kept","attributes":{"k":"v"}}`)}
	uc := usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithRepository(repo),
		usecase.WithLLMProvider(good),
	)
	_, err := uc.Analyze(ctx, sessionID, "first", "")
	gt.NoError(t, err).Required()

	cause := errors.New("overloaded")
	bad := &fakeProvider{err: cause}
	uc = usecase.New(
		usecase.WithCredentials(validCredentials),
		usecase.WithRepository(repo),
		usecase.WithLLMProvider(bad),
	)
	_, err = uc.Analyze(ctx, sessionID, "second", "")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, cause))
	gt.True(t, goerr.HasTag(err, errs.TagProvider))

	record, err := repo.GetSession(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Equal(t, record.Analysis.Summary, "kept")
	gt.Equal(t, record.Analysis.PromptUsed, "first")
}

func TestAnalyzeNotConfigured(t *testing.T) {
	ctx := testContext()
	repo := memory.New()
	seed(t, repo)

	uc := usecase.New(usecase.WithCredentials(validCredentials), usecase.WithRepository(repo))
	_, err := uc.Analyze(ctx, sessionID, "Summarize", "")
	gt.True(t, errors.Is(err, usecase.ErrLLMProviderNotConfigured))
}
