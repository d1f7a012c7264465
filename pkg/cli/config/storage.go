package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/earmark/pkg/adapter/storage"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"google.golang.org/api/option"

	"github.com/urfave/cli/v3"
)

type Storage struct {
	bucket    string
	prefix    string
	projectID string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for exports (default: local outputs directory)",
			Category:    "Storage",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("EARMARK_STORAGE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Storage prefix",
			Category:    "Storage",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("EARMARK_STORAGE_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "storage-project-id",
			Usage:       "Storage project ID",
			Category:    "Storage",
			Destination: &x.projectID,
			Sources:     cli.EnvVars("EARMARK_STORAGE_PROJECT_ID"),
		},
	}
}

func (x *Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
		slog.String("project_id", x.projectID),
	)
}

// Configure returns a Cloud Storage client when a bucket is set, otherwise a client
// writing into localDir.
func (x *Storage) Configure(ctx context.Context, localDir string) (interfaces.StorageClient, error) {
	if x.bucket == "" {
		logging.From(ctx).Debug("Export storage is local", "dir", localDir)
		client, err := storage.NewFileClient(localDir)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	var opts []option.ClientOption
	if x.projectID != "" {
		opts = append(opts, option.WithQuotaProject(x.projectID))
	}

	client, err := storage.New(ctx, x.bucket, x.prefix, opts...)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (x *Storage) IsConfigured() bool {
	return x.bucket != ""
}
