// Package entity defines the entities and errors used in the application.
// It includes the URLRecord struct, which represents a shortened URL along with its
// access statistics, and the error values every layer agrees on.
package entity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrShortIDExists is returned when attempting to create a record with a short id that already exists.
	ErrShortIDExists = errors.New("short id exists")
	// ErrURLNotFound is returned when a record with the specified short id cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// URLRecord represents a shortened URL.
type URLRecord struct {
	ShortID      string     // ShortID is the key the original URL is stored under.
	OriginalURL  string     // OriginalURL is the full URL that the short id resolves to.
	ClickCount   int64      // ClickCount is the number of successful redirects.
	CreatedAt    time.Time  // CreatedAt is the timestamp when the record was created.
	LastAccessed *time.Time // LastAccessed is nil until the first redirect.
}

// ShortURL joins baseURL and the path-escaped short id, so ids holding
// '/', '?' or '%' still address a single path segment.
func (r *URLRecord) ShortURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(r.ShortID)
}
