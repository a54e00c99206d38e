package catalog

import "fmt"

// MalformedEntryError is returned when a listing entry cannot be decoded.
// It aborts the query that produced the listing.
type MalformedEntryError struct {
	Path   string
	Field  string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed catalog entry %s (%s): %s", e.Path, e.Field, e.Reason)
}

// InvalidQueryError is returned for an unknown sector or band before any
// listing is requested
type InvalidQueryError struct {
	Field string
	Value string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid %s `%s`", e.Field, e.Value)
}
