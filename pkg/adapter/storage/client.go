package storage

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/safe"
	"google.golang.org/api/option"
)

// ErrObjectNotFound is wrapped by every backend when GetObject misses.
var ErrObjectNotFound = errors.New("object not found")

// Client stores exports in a Cloud Storage bucket under an optional prefix.
type Client struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.StorageClient = &Client{}

func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Client, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &Client{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (x *Client) PutObject(ctx context.Context, object string) io.WriteCloser {
	w := x.client.Bucket(x.bucket).Object(x.prefix + object).NewWriter(ctx)
	if ct := contentTypeOf(object); ct != "" {
		w.ContentType = ct
	}
	return w
}

func (x *Client) GetObject(ctx context.Context, object string) (io.ReadCloser, error) {
	rc, err := x.client.Bucket(x.bucket).Object(x.prefix + object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			err = errors.Join(ErrObjectNotFound, err)
		}
		return nil, goerr.Wrap(err, "failed to create reader",
			goerr.V("bucket", x.bucket),
			goerr.TV(errutil.ObjectKey, x.prefix+object),
		)
	}

	return rc, nil
}

func (x *Client) Close(ctx context.Context) {
	safe.Close(ctx, x.client)
}
