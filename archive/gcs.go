package archive

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const gcsPublicURL = "https://storage.googleapis.com"

// GCS reads Google Cloud's public GOES buckets without credentials
type GCS struct {
	client *storage.Client
}

// NewGCS creates an unauthenticated storage client. Extra options are
// appended, e.g. option.WithEndpoint for an emulator.
func NewGCS(ctx context.Context, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, append([]option.ClientOption{option.WithoutAuthentication()}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "create storage client")
	}
	return &GCS{client: client}, nil
}

// List returns all object names under prefix
func (g *GCS) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	it := g.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, attrs.Name)
	}
}

// Fetch streams one object into w
func (g *GCS) Fetch(ctx context.Context, bucket, key string, w io.Writer) error {
	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return err
	}
	defer reader.Close()
	_, err = io.Copy(w, reader)
	return err
}

// Close releases the underlying client
func (g *GCS) Close() error {
	return g.client.Close()
}
