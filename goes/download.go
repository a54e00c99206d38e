package goes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/observability"
	"github.com/venicegeo/bf-goes-broker/util"
	"golang.org/x/sync/errgroup"
)

// DownloadOptions control where and how records are saved
type DownloadOptions struct {
	SaveDir    string
	Overwrite  bool
	MaxWorkers int
}

// LocalFile is a record together with its location on disk
type LocalFile struct {
	catalog.ObservationRecord
	LocalPath string
	Skipped   bool
}

// LocalPath is where a record is stored under saveDir, mirroring the
// archive layout: <saveDir>/<satellite>/<product>/<yyyy>/<ddd>/<hh>/<file>
func LocalPath(saveDir string, record catalog.ObservationRecord) string {
	return filepath.Join(saveDir, record.Satellite, filepath.FromSlash(record.Path))
}

// Download fetches records into opts.SaveDir with at most opts.MaxWorkers
// transfers in flight. Files already on disk are kept unless Overwrite is
// set. The first failure cancels the remaining transfers.
func (c *Client) Download(ctx context.Context, records []catalog.ObservationRecord, opts DownloadOptions) ([]LocalFile, error) {
	if len(records) == 0 {
		util.LogInfo(c.logContext(), "No data to download")
		return []LocalFile{}, nil
	}
	if c.Fetcher == nil {
		return nil, errors.New("no archive fetcher configured")
	}
	workers := opts.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	files := make([]LocalFile, len(records))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, record := range records {
		group.Go(func() error {
			file, err := c.downloadOne(groupCtx, record, opts)
			if err != nil {
				c.Metrics.ObserveDownload(observability.DownloadFailed)
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) downloadOne(ctx context.Context, record catalog.ObservationRecord, opts DownloadOptions) (LocalFile, error) {
	dst := LocalPath(opts.SaveDir, record)
	file := LocalFile{ObservationRecord: record, LocalPath: dst}

	if info, err := os.Stat(dst); err == nil && !info.IsDir() && !opts.Overwrite {
		file.Skipped = true
		c.Metrics.ObserveDownload(observability.DownloadSkipped)
		return file, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return LocalFile{}, errors.Wrapf(err, "create directory for %s", dst)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return LocalFile{}, errors.Wrapf(err, "create temporary file for %s", dst)
	}
	defer os.Remove(tmp.Name())

	if err = c.Fetcher.Fetch(ctx, record.Satellite, record.Path, tmp); err != nil {
		tmp.Close()
		return LocalFile{}, errors.Wrapf(err, "fetch %s", record.Path)
	}
	if err = tmp.Close(); err != nil {
		return LocalFile{}, errors.Wrapf(err, "write %s", dst)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return LocalFile{}, errors.Wrapf(err, "move %s into place", dst)
	}

	c.Metrics.ObserveDownload(observability.DownloadFetched)
	util.LogInfo(c.logContext(), fmt.Sprintf("Downloaded %s > %s", record.Path, dst))
	return file, nil
}
