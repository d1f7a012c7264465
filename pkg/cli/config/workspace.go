package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/service/upload"
	"github.com/urfave/cli/v3"
)

const (
	uploadsDir = "uploads"
	outputsDir = "outputs"
)

type Workspace struct {
	dir           string
	maxUploadSize string
}

func (x *Workspace) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "workspace-dir",
			Usage:       "Directory for uploads and generated exports (default: $TMPDIR/earmark)",
			Category:    "Workspace",
			Sources:     cli.EnvVars("EARMARK_WORKSPACE_DIR"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "max-upload-size",
			Usage:       "Maximum accepted audio upload size",
			Category:    "Workspace",
			Value:       humanize.IBytes(uint64(upload.DefaultMaxSize)),
			Sources:     cli.EnvVars("EARMARK_MAX_UPLOAD_SIZE"),
			Destination: &x.maxUploadSize,
		},
	}
}

func (x Workspace) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", x.Dir()),
		slog.String("max_upload_size", x.maxUploadSize),
	)
}

func (x Workspace) Dir() string {
	if x.dir == "" {
		return filepath.Join(os.TempDir(), "earmark")
	}
	return x.dir
}

func (x Workspace) UploadsDir() string {
	return filepath.Join(x.Dir(), uploadsDir)
}

func (x Workspace) OutputsDir() string {
	return filepath.Join(x.Dir(), outputsDir)
}

// MaxUploadSize parses --max-upload-size, e.g. "500MiB" or "1GB".
func (x Workspace) MaxUploadSize() (int64, error) {
	if x.maxUploadSize == "" {
		return upload.DefaultMaxSize, nil
	}

	n, err := humanize.ParseBytes(x.maxUploadSize)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid max upload size", goerr.V("value", x.maxUploadSize))
	}
	if n == 0 {
		return 0, goerr.New("max upload size must be positive", goerr.V("value", x.maxUploadSize))
	}
	return int64(n), nil
}

// Configure creates the workspace directories and returns the upload handler.
func (x *Workspace) Configure() (*upload.Service, error) {
	maxSize, err := x.MaxUploadSize()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(x.OutputsDir(), 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create outputs directory", goerr.V("dir", x.OutputsDir()))
	}

	svc, err := upload.New(x.UploadsDir(), upload.WithMaxSize(maxSize))
	if err != nil {
		return nil, err
	}
	return svc, nil
}
