// Package imagestore uploads product pictures to object storage.
package imagestore

import (
	"context"
	"io"

	"restore/internal/model"
)

// Upload is an image file received from an admin form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Result locates a stored image. PublicID is the handle used for deletion.
type Result struct {
	URL      string
	PublicID string
}

// Store uploads and deletes images.
type Store interface {
	Upload(ctx context.Context, upload Upload) (*Result, error)
	Delete(ctx context.Context, publicID string) error
}

// Disabled rejects uploads when no object store is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, Upload) (*Result, error) {
	return nil, model.ErrServiceUnavailable
}

// Delete is a no-op so products created before storage was disabled can still be removed.
func (Disabled) Delete(context.Context, string) error {
	return nil
}
