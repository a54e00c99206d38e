// Package archive lists and fetches GOES-R observation files from the public
// object-storage mirrors (NOAA's AWS buckets or Google Cloud's public data
// buckets).
package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/util"
	"golang.org/x/sync/errgroup"
)

// ObjectStore is a bucket-oriented object storage client
type ObjectStore interface {
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Fetch(ctx context.Context, bucket, key string, w io.Writer) error
}

// BucketNamer maps a satellite name such as noaa-goes16 to a bucket
type BucketNamer func(satellite string) string

// AWSBucket is the identity mapping: NOAA's buckets are named after the satellite
func AWSBucket(satellite string) string {
	return satellite
}

// GCPBucket maps noaa-goes16 to gcp-public-data-goes-16
func GCPBucket(satellite string) string {
	return "gcp-public-data-goes-" + strings.TrimPrefix(satellite, "noaa-goes")
}

// DefaultListWorkers bounds concurrent prefix listings
const DefaultListWorkers = 4

// Archive lists hourly prefixes of a product and fetches objects. It holds
// no cache: every Listing call goes to the store.
type Archive struct {
	Store   ObjectStore
	Bucket  BucketNamer
	Workers int
}

// New builds the archive named by GOES_ARCHIVE
func New(ctx context.Context) (*Archive, error) {
	switch name := util.GetArchiveName(); name {
	case util.ArchiveGCP:
		store, err := NewGCS(ctx)
		if err != nil {
			return nil, err
		}
		return &Archive{Store: store, Bucket: GCPBucket}, nil
	case util.ArchiveAWS:
		return &Archive{Store: NewS3(util.GetS3Endpoint()), Bucket: AWSBucket}, nil
	default:
		return nil, fmt.Errorf("Unknown archive `%s`", name)
	}
}

func (a *Archive) bucket(satellite string) string {
	if a.Bucket == nil {
		return AWSBucket(satellite)
	}
	return a.Bucket(satellite)
}

// Listing returns every object key under the hourly prefixes covering
// [start, end], in prefix order
func (a *Archive) Listing(ctx context.Context, satellite, product string, start, end time.Time) ([]string, error) {
	prefixes := HourlyPrefixes(product, start, end)
	bucket := a.bucket(satellite)

	workers := a.Workers
	if workers < 1 {
		workers = DefaultListWorkers
	}

	pages := make([][]string, len(prefixes))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, prefix := range prefixes {
		group.Go(func() error {
			keys, err := a.Store.List(groupCtx, bucket, prefix)
			if err != nil {
				return errors.Wrapf(err, "list %s/%s", bucket, prefix)
			}
			pages[i] = keys
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var keys []string
	for _, page := range pages {
		keys = append(keys, page...)
	}
	return keys, nil
}

// Fetch copies one object of the satellite's bucket into w
func (a *Archive) Fetch(ctx context.Context, satellite, key string, w io.Writer) error {
	return a.Store.Fetch(ctx, a.bucket(satellite), key, w)
}

// Location returns the bucket holding key and a public URL for it. The URL
// is empty for stores without a public form.
func (a *Archive) Location(satellite, key string) (bucket, objectURL string) {
	bucket = a.bucket(satellite)
	switch store := a.Store.(type) {
	case *S3:
		objectURL = store.Endpoint + "/" + bucket + "/" + key
	case *GCS:
		objectURL = gcsPublicURL + "/" + bucket + "/" + key
	}
	return bucket, objectURL
}

// HourlyPrefixes returns product/YYYY/DDD/HH/ for every hour from the hour
// containing start through the hour containing end
func HourlyPrefixes(product string, start, end time.Time) []string {
	start = start.UTC().Truncate(time.Hour)
	end = end.UTC().Truncate(time.Hour)

	var prefixes []string
	for hour := start; !hour.After(end); hour = hour.Add(time.Hour) {
		prefixes = append(prefixes, fmt.Sprintf("%s/%04d/%03d/%02d/", product, hour.Year(), hour.YearDay(), hour.Hour()))
	}
	return prefixes
}
