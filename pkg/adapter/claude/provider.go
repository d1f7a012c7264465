package claude

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
)

const DefaultMaxTokens int64 = 4096

// Provider builds Anthropic clients on demand, one per requested model.
type Provider struct {
	apiKey    string
	maxTokens int64
}

var _ interfaces.LLMProvider = &Provider{}

type Option func(*Provider)

func WithMaxTokens(maxTokens int64) Option {
	return func(p *Provider) {
		p.maxTokens = maxTokens
	}
}

func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:    apiKey,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (x *Provider) NewClient(ctx context.Context, model string) (gollem.LLMClient, error) {
	client, err := claude.New(ctx, x.apiKey,
		claude.WithModel(model),
		claude.WithMaxTokens(x.maxTokens),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Claude client",
			goerr.TV(errutil.ModelKey, model),
		)
	}
	return client, nil
}
