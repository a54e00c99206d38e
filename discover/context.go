// Package discover serves GOES observation queries and fixed-grid geometry
// over HTTP.
package discover

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/geometry"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/util"
)

// Locator names the bucket and public URL of an archive object
type Locator func(satellite, key string) (bucket, objectURL string)

// Context is the context for a GOES broker operation
type Context struct {
	Client    *goes.Client
	Defaults  util.QuerySettings
	Locate    Locator
	sessionID string
}

// AppName returns the application name
func (c *Context) AppName() string {
	return util.AppName
}

// SessionID returns a Session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = util.PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}

// statusFor maps the broker's error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var invalid *catalog.InvalidQueryError
	var visibility *geometry.VisibilityError
	var outsideFOV *geometry.OutsideFieldOfViewError
	var malformed *catalog.MalformedEntryError
	var upstream util.HTTPErr
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &visibility), errors.As(err, &outsideFOV), errors.Is(err, geometry.ErrOutsideDisk), errors.Is(err, geometry.ErrOutsideGrid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &malformed), errors.As(err, &upstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (c *Context) fail(r *http.Request, w http.ResponseWriter, message string, err error) {
	util.LogSimpleErr(c, message, err)
	util.HTTPError(r, w, c, message+": "+err.Error(), statusFor(err))
}

func (c *Context) badRequest(r *http.Request, w http.ResponseWriter, message string, err error) {
	util.LogSimpleErr(c, message, err)
	util.HTTPError(r, w, c, message, http.StatusBadRequest)
}

// parseFloatList reads a comma separated list of numbers
func parseFloatList(field, raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &catalog.InvalidQueryError{Field: field, Value: raw}
	}
	tokens := strings.Split(raw, ",")
	values := make([]float64, len(tokens))
	for i, token := range tokens {
		value, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return nil, &catalog.InvalidQueryError{Field: field, Value: token}
		}
		values[i] = value
	}
	return values, nil
}
