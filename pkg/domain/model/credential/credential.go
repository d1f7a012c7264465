package credential

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
)

const (
	EnvAssemblyAIKey = "ASSEMBLYAI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
)

// Credentials are the two provider secrets. Both are read once at startup and checked on
// every provider-bound operation.
type Credentials struct {
	AssemblyAIKey string `masq:"secret"`
	AnthropicKey  string `masq:"secret"`
}

// Resolve fails with a configuration error naming the first missing value. It never
// performs network access.
func (x Credentials) Resolve() (Credentials, error) {
	if x.AssemblyAIKey == "" {
		return Credentials{}, missing(EnvAssemblyAIKey)
	}
	if x.AnthropicKey == "" {
		return Credentials{}, missing(EnvAnthropicKey)
	}
	return x, nil
}

func missing(name string) error {
	return goerr.New(name+" environment variable is not set",
		goerr.T(errs.TagConfiguration),
		goerr.TV(errutil.ParameterKey, name),
	)
}

func (x Credentials) AssemblyAIConfigured() bool {
	return x.AssemblyAIKey != ""
}

func (x Credentials) AnthropicConfigured() bool {
	return x.AnthropicKey != ""
}

func (x Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("assemblyai_configured", x.AssemblyAIConfigured()),
		slog.Bool("anthropic_configured", x.AnthropicConfigured()),
	)
}

// Status is the health view of the configured credentials.
type Status struct {
	AssemblyAIConfigured bool
	AnthropicConfigured  bool
}

func (x Credentials) Status() Status {
	return Status{
		AssemblyAIConfigured: x.AssemblyAIConfigured(),
		AnthropicConfigured:  x.AnthropicConfigured(),
	}
}
