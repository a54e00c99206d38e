package util

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PsuUUID returns a new random session identifier
func PsuUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

// HTTPClient returns the shared client used for all outbound archive traffic
func HTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	})
	return httpClient
}
