package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/secmon-lab/earmark/pkg/cli/config"
	server "github.com/secmon-lab/earmark/pkg/controller/http"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(envCfg *config.Environment) *cli.Command {
	var (
		serverCfg config.Server
		sentryCfg config.Sentry
		appCfg    appConfig
	)

	flags := joinFlags(
		serverCfg.Flags(),
		sentryCfg.Flags(),
		appCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			addr, err := serverCfg.Addr()
			if err != nil {
				return err
			}
			secret, err := serverCfg.Secret()
			if err != nil {
				return err
			}
			sentryCfg.SetDefaultEnv(envCfg.Name())

			logging.Default().Info("starting server",
				"addr", addr,
				"server", serverCfg,
				"sentry", sentryCfg,
				"app", &appCfg,
			)
			logging.Default().Debug("process secret", "secret_key", secret)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}

			uc, uploader, closer, err := appCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			httpServer := http.Server{
				Addr:              addr,
				Handler:           server.New(uc, server.WithMaxUploadSize(uploader.MaxSize())),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			logging.Default().Info("listening",
				"addr", addr,
				"max_upload_size", humanize.IBytes(uint64(uploader.MaxSize())),
				"production", envCfg.Production(),
			)

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				logging.Default().Info("shutting down server")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}
}
