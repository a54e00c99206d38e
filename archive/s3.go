package archive

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/util"
)

// S3 talks to a public S3 endpoint anonymously using path-style URLs
type S3 struct {
	Endpoint string
	Client   *http.Client
}

// NewS3 returns an anonymous client for endpoint
func NewS3(endpoint string) *S3 {
	return &S3{Endpoint: strings.TrimRight(endpoint, "/"), Client: util.HTTPClient()}
}

type listBucketResult struct {
	XMLName               xml.Name `xml:"ListBucketResult"`
	IsTruncated           bool     `xml:"IsTruncated"`
	NextContinuationToken string   `xml:"NextContinuationToken"`
	Contents              []struct {
		Key string `xml:"Key"`
	} `xml:"Contents"`
}

func (s *S3) httpClient() *http.Client {
	if s.Client == nil {
		return util.HTTPClient()
	}
	return s.Client
}

// List returns all keys under prefix, following continuation tokens
func (s *S3) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	token := ""
	for {
		query := url.Values{}
		query.Set("list-type", "2")
		query.Set("prefix", prefix)
		if token != "" {
			query.Set("continuation-token", token)
		}

		page, err := s.listPage(ctx, fmt.Sprintf("%s/%s?%s", s.Endpoint, bucket, query.Encode()))
		if err != nil {
			return nil, err
		}
		for _, c := range page.Contents {
			keys = append(keys, c.Key)
		}
		if !page.IsTruncated || page.NextContinuationToken == "" {
			return keys, nil
		}
		token = page.NextContinuationToken
	}
}

func (s *S3) listPage(ctx context.Context, pageURL string) (*listBucketResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, util.HTTPErr{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	page := &listBucketResult{}
	if err = xml.NewDecoder(resp.Body).Decode(page); err != nil {
		return nil, errors.Wrap(err, "decode bucket listing")
	}
	return page, nil
}

// Fetch streams one object into w
func (s *S3) Fetch(ctx context.Context, bucket, key string, w io.Writer) error {
	objectURL := fmt.Sprintf("%s/%s/%s", s.Endpoint, bucket, (&url.URL{Path: key}).EscapedPath())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return util.HTTPErr{Status: resp.StatusCode, Message: fmt.Sprintf("GET %s/%s", bucket, key)}
	}
	_, err = io.Copy(w, resp.Body)
	return err
}
