package archive

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/util"
)

// ReadListing reads an object listing, one key per line, from a file path
// or an http(s) URL. Gzipped listings are unpacked when useGzip is set or
// the location ends in .gz. Blank lines and lines starting with # are
// skipped.
func ReadListing(ctx context.Context, location string, useGzip bool) ([]string, error) {
	source, err := openReader(ctx, location)
	if err != nil {
		return nil, errors.Wrapf(err, "open listing %s", location)
	}
	defer source.Close()

	var reader io.Reader = source
	if useGzip || strings.HasSuffix(location, ".gz") {
		archiveReader, zipErr := gzip.NewReader(source)
		if zipErr != nil {
			return nil, errors.Wrap(zipErr, "open gzip listing")
		}
		defer archiveReader.Close()
		reader = archiveReader
	}

	var keys []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read listing")
	}
	return keys, nil
}

func openReader(ctx context.Context, location string) (io.ReadCloser, error) {
	// If this looks like a url then try to download it.
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		util.LogInfo(&util.BasicLogContext{}, "Requesting listing "+location)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := util.HTTPClient().Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, util.HTTPErr{Status: resp.StatusCode, Message: "GET " + location}
		}

		// Read the whole body so the connection is not held open
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	return os.Open(filepath.Clean(location))
}
