// Package storage persists rendered word-cloud images.
package storage

import "context"

// Store saves an encoded image and returns where it can be found.
type Store interface {
	Save(ctx context.Context, data []byte) (string, error)
}
