package storage

import "context"

// Storage is the object-store contract consumed by the submission pipeline
// and the admin export. Implementations must make an uploaded object
// retrievable under the path they were given and addressable by a public URL.
type Storage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Read(ctx context.Context, path string) ([]byte, error)
	PublicURL(path string) string
	Remove(ctx context.Context, paths []string) error
}
