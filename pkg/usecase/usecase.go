package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/adapter/storage"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/domain/model/credential"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/repository/memory"
	"github.com/secmon-lab/earmark/pkg/service/upload"
)

// DefaultModel is used when an analysis request names no model.
const DefaultModel = "claude-sonnet-4-5-20250929"

var (
	ErrTranscriberNotConfigured = goerr.New("transcriber not configured", goerr.T(errs.TagInternal))
	ErrLLMProviderNotConfigured = goerr.New("analysis provider not configured", goerr.T(errs.TagInternal))
	ErrUploaderNotConfigured    = goerr.New("upload directory not configured", goerr.T(errs.TagInternal))
)

type UseCases struct {
	// services and adapters
	transcriber   interfaces.Transcriber
	llmProvider   interfaces.LLMProvider
	repository    interfaces.SessionRepository
	storageClient interfaces.StorageClient
	uploader      *upload.Service

	// configs
	credentials  credential.Credentials
	defaultModel string
}

var _ interfaces.TranscriptionUsecases = &UseCases{}
var _ interfaces.AnalysisUsecases = &UseCases{}
var _ interfaces.ExportUsecases = &UseCases{}

type Option func(*UseCases)

func WithTranscriber(transcriber interfaces.Transcriber) Option {
	return func(u *UseCases) {
		u.transcriber = transcriber
	}
}

func WithLLMProvider(provider interfaces.LLMProvider) Option {
	return func(u *UseCases) {
		u.llmProvider = provider
	}
}

func WithRepository(repository interfaces.SessionRepository) Option {
	return func(u *UseCases) {
		u.repository = repository
	}
}

// WithStorageClient sets where rendered exports are written before being streamed back.
func WithStorageClient(storageClient interfaces.StorageClient) Option {
	return func(u *UseCases) {
		u.storageClient = storageClient
	}
}

func WithUploader(uploader *upload.Service) Option {
	return func(u *UseCases) {
		u.uploader = uploader
	}
}

// WithCredentials sets the provider keys checked before every provider-bound operation.
func WithCredentials(credentials credential.Credentials) Option {
	return func(u *UseCases) {
		u.credentials = credentials
	}
}

func WithDefaultModel(model string) Option {
	return func(u *UseCases) {
		if model != "" {
			u.defaultModel = model
		}
	}
}

func New(opts ...Option) *UseCases {
	u := &UseCases{
		repository:    memory.New(),
		storageClient: storage.NewMemoryClient(),
		defaultModel:  DefaultModel,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// DefaultModelName returns the model used when a request names none.
func (uc *UseCases) DefaultModelName() string {
	return uc.defaultModel
}
