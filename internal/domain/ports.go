package domain

import (
	"context"
	"io"
)

type HotelRepository interface {
	// Create persists a new hotel and returns it with the assigned id.
	// A duplicate name surfaces as ErrConflict.
	Create(ctx context.Context, h Hotel) (Hotel, error)
	List(ctx context.Context) ([]Hotel, error)
	GetByID(ctx context.Context, id int64) (Hotel, error)
	// Update overwrites the scalar fields only; the image list is managed
	// through ReplaceImages. A duplicate name surfaces as ErrConflict.
	Update(ctx context.Context, h Hotel) error
	Delete(ctx context.Context, id int64) error
	// ExistsByName reports whether any hotel other than excludeID carries
	// the name (case-insensitive). Pass 0 to check against all rows.
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	// ReplaceImages rewrites the hotel's ordered image URL list.
	ReplaceImages(ctx context.Context, hotelID int64, urls []string) error
}

// FileStore abstracts the uploads directory.
type FileStore interface {
	// Save writes the content under a generated name keeping
	// originalName's extension, and returns the public URL.
	Save(originalName string, r io.Reader) (string, error)
	// Resolve maps a public URL to an absolute path inside the uploads
	// root. An escape attempt returns ErrValidation.
	Resolve(url string) (string, error)
	// Remove deletes the backing file; a missing file is not an error.
	Remove(url string) error
}
