package storage

import "context"

// ImageStorage persists uploaded product images and serves back a URL path
// usable in templates. Remove is best-effort cleanup when a product is
// deleted or its image replaced.
type ImageStorage interface {
	Save(ctx context.Context, originalFilename string, data []byte) (string, error)
	Remove(ctx context.Context, imageURL string) error
}
