// Package store reads and writes the hosted document collections. Documents
// are loosely typed; callers apply field fallbacks at read time.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for an id that is not a single path segment.
	ErrInvalidID = errors.New("invalid document id")
)

// Collection names.
const (
	Users           = "users"
	Routes          = "routes"
	Pickups         = "pickups"
	Items           = "items"
	ReturnLocations = "return_locations"
)

type serverTimestamp struct{}

// ServerTimestamp marks a field to be set to the commit time by the backend.
var ServerTimestamp = serverTimestamp{}

// Document is a single record and where it lives.
type Document struct {
	ID   string         `json:"id"`
	Path string         `json:"path"`
	Data map[string]any `json:"data"`
}

// Store is the document store used by every feature.
type Store interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, docPath string) (Document, error)
	Set(ctx context.Context, docPath string, data map[string]any) error
	Update(ctx context.Context, docPath string, fields map[string]any) error
	Delete(ctx context.Context, docPath string) error
}

// ValidateID rejects ids that would change the path Doc builds from them.
func ValidateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case id == "." || id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.Contains(id, "/"):
		return fmt.Errorf("%w: %q contains a slash", ErrInvalidID, id)
	}
	return nil
}

// Doc joins path segments into a document or collection path. Segments taken
// from callers must pass ValidateID first.
func Doc(segments ...string) string {
	return path.Join(segments...)
}

// ParentCollection returns the collection path that holds docPath.
func ParentCollection(docPath string) string {
	docPath = strings.Trim(docPath, "/")
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return ""
	}
	return docPath[:i]
}

// Index keys documents by id.
func Index(docs []Document) map[string]map[string]any {
	out := make(map[string]map[string]any, len(docs))
	for _, d := range docs {
		out[d.ID] = d.Data
	}
	return out
}

// WithID returns a copy of the document data with "id" set, unless the
// document already stores its own id field.
func (d Document) WithID() map[string]any {
	out := make(map[string]any, len(d.Data)+1)
	for k, v := range d.Data {
		out[k] = v
	}
	if _, ok := out["id"]; !ok {
		out["id"] = d.ID
	}
	return out
}
