package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/earmark/pkg/adapter/storage"
	"github.com/secmon-lab/earmark/pkg/cli/config"
	"github.com/secmon-lab/earmark/pkg/service/upload"
	"github.com/secmon-lab/earmark/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		gt.NoError(t, os.Unsetenv(key)).Required()
	}
}

type flagger interface {
	Flags() []cli.Flag
}

// parse runs a command carrying cfg's flags against args.
func parse(t *testing.T, cfg flagger, args ...string) {
	t.Helper()
	cmd := &cli.Command{
		Name:   "test",
		Flags:  cfg.Flags(),
		Action: func(context.Context, *cli.Command) error { return nil },
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...))).Required()
}

func TestServerAddr(t *testing.T) {
	unsetEnv(t, "PORT")
	unsetEnv(t, "EARMARK_ADDR")

	t.Run("default", func(t *testing.T) {
		var cfg config.Server
		parse(t, &cfg)
		addr, err := cfg.Addr()
		gt.NoError(t, err)
		gt.Equal(t, addr, "0.0.0.0:5000")
	})

	t.Run("port overrides addr port", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		var cfg config.Server
		parse(t, &cfg, "--addr", "127.0.0.1:5000")
		addr, err := cfg.Addr()
		gt.NoError(t, err)
		gt.Equal(t, addr, "127.0.0.1:8080")
	})

	t.Run("invalid addr with port", func(t *testing.T) {
		var cfg config.Server
		parse(t, &cfg, "--addr", "localhost", "--port", "9000")
		_, err := cfg.Addr()
		gt.Error(t, err)
	})
}

func TestServerSecret(t *testing.T) {
	unsetEnv(t, "EARMARK_SECRET")
	unsetEnv(t, "SECRET_KEY")

	t.Run("generated once", func(t *testing.T) {
		var cfg config.Server
		parse(t, &cfg)
		s1, err := cfg.Secret()
		gt.NoError(t, err)
		gt.Equal(t, len(s1), 64)
		s2, err := cfg.Secret()
		gt.NoError(t, err)
		gt.Equal(t, s1, s2)
	})

	t.Run("legacy env", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "s3cr3t")
		var cfg config.Server
		parse(t, &cfg)
		s, err := cfg.Secret()
		gt.NoError(t, err)
		gt.Equal(t, s, "s3cr3t")
	})
}

func TestEnvironment(t *testing.T) {
	unsetEnv(t, "EARMARK_ENV")
	unsetEnv(t, "FLASK_ENV")

	t.Run("development by default", func(t *testing.T) {
		var cfg config.Environment
		parse(t, &cfg)
		gt.Equal(t, cfg.Name(), "development")
		gt.False(t, cfg.Production())
	})

	t.Run("production", func(t *testing.T) {
		t.Setenv("FLASK_ENV", "production")
		var cfg config.Environment
		parse(t, &cfg)
		gt.True(t, cfg.Production())
	})
}

func TestCredentials(t *testing.T) {
	unsetEnv(t, "EARMARK_ASSEMBLYAI_API_KEY")
	unsetEnv(t, "EARMARK_ANTHROPIC_API_KEY")
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-key")
	unsetEnv(t, "ANTHROPIC_API_KEY")

	var cfg config.Credentials
	parse(t, &cfg)
	creds := cfg.Configure()
	gt.Equal(t, creds.AssemblyAIKey, "aai-key")
	gt.False(t, creds.AnthropicConfigured())

	_, err := creds.Resolve()
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("ANTHROPIC_API_KEY environment variable is not set")
}

func TestLegacyEnvBehindEmptyPrimary(t *testing.T) {
	t.Setenv("EARMARK_ASSEMBLYAI_API_KEY", "")
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-key")
	t.Setenv("EARMARK_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("EARMARK_SECRET", "")
	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("EARMARK_ENV", "")
	t.Setenv("FLASK_ENV", "production")

	var creds config.Credentials
	parse(t, &creds)
	resolved, err := creds.Configure().Resolve()
	gt.NoError(t, err)
	gt.Equal(t, resolved.AssemblyAIKey, "aai-key")
	gt.Equal(t, resolved.AnthropicKey, "ant-key")

	var server config.Server
	parse(t, &server)
	secret, err := server.Secret()
	gt.NoError(t, err)
	gt.Equal(t, secret, "s3cr3t")

	var env config.Environment
	parse(t, &env)
	gt.Equal(t, env.Name(), "production")
	gt.True(t, env.Production())
}

func TestFlagWinsOverEnv(t *testing.T) {
	unsetEnv(t, "EARMARK_ASSEMBLYAI_API_KEY", "EARMARK_ANTHROPIC_API_KEY")
	t.Setenv("ASSEMBLYAI_API_KEY", "from-env")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")

	var creds config.Credentials
	parse(t, &creds, "--assemblyai-api-key", "from-flag")
	gt.Equal(t, creds.Configure().AssemblyAIKey, "from-flag")
}

func TestLoggerLevel(t *testing.T) {
	unsetEnv(t, "EARMARK_LOG_LEVEL")

	var cfg config.Logger
	parse(t, &cfg)
	gt.Equal(t, cfg.Level(), "info")
	cfg.SetDevelopment(true)
	gt.Equal(t, cfg.Level(), "debug")

	var explicit config.Logger
	parse(t, &explicit, "--log-level", "warn")
	explicit.SetDevelopment(true)
	gt.Equal(t, explicit.Level(), "warn")
}

func TestWorkspace(t *testing.T) {
	unsetEnv(t, "EARMARK_WORKSPACE_DIR")
	unsetEnv(t, "EARMARK_MAX_UPLOAD_SIZE")

	t.Run("defaults", func(t *testing.T) {
		var cfg config.Workspace
		parse(t, &cfg)
		gt.Equal(t, cfg.Dir(), filepath.Join(os.TempDir(), "earmark"))
		n, err := cfg.MaxUploadSize()
		gt.NoError(t, err)
		gt.Equal(t, n, upload.DefaultMaxSize)
	})

	t.Run("creates directories", func(t *testing.T) {
		dir := t.TempDir()
		var cfg config.Workspace
		parse(t, &cfg, "--workspace-dir", dir, "--max-upload-size", "1MB")
		svc, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Equal(t, svc.MaxSize(), int64(1000*1000))

		for _, sub := range []string{"uploads", "outputs"} {
			info, err := os.Stat(filepath.Join(dir, sub))
			gt.NoError(t, err).Required()
			gt.True(t, info.IsDir())
		}
	})

	t.Run("invalid size", func(t *testing.T) {
		var cfg config.Workspace
		parse(t, &cfg, "--max-upload-size", "lots")
		_, err := cfg.MaxUploadSize()
		gt.Error(t, err)
	})

	t.Run("zero size", func(t *testing.T) {
		var cfg config.Workspace
		parse(t, &cfg, "--max-upload-size", "0")
		_, err := cfg.MaxUploadSize()
		gt.Error(t, err)
	})
}

func TestStorageLocal(t *testing.T) {
	unsetEnv(t, "EARMARK_STORAGE_BUCKET")

	dir := t.TempDir()
	var cfg config.Storage
	parse(t, &cfg)
	gt.False(t, cfg.IsConfigured())

	client, err := cfg.Configure(context.Background(), dir)
	gt.NoError(t, err).Required()
	_, ok := client.(*storage.FileClient)
	gt.True(t, ok)
}

func TestSession(t *testing.T) {
	unsetEnv(t, "EARMARK_SESSION_CAPACITY")

	var cfg config.Session
	parse(t, &cfg, "--session-capacity", "2")
	repo, err := cfg.Configure()
	gt.NoError(t, err).Required()
	gt.Equal(t, repo.Len(), 0)

	var negative config.Session
	parse(t, &negative, "--session-capacity", "-1")
	_, err = negative.Configure()
	gt.Error(t, err)
}

func TestLLMDefaultModel(t *testing.T) {
	unsetEnv(t, "EARMARK_DEFAULT_MODEL")

	var cfg config.LLM
	parse(t, &cfg)
	gt.Equal(t, cfg.DefaultModel(), usecase.DefaultModel)

	var custom config.LLM
	parse(t, &custom, "--default-model", "claude-haiku")
	gt.Equal(t, custom.DefaultModel(), "claude-haiku")
}
