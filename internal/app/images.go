package app

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/rs/zerolog/log"

	"tutelo/internal/domain"
)

// Upload is one incoming file. Size 0 entries are skipped, matching how empty
// multipart parts are treated.
type Upload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// ImageService bridges uploaded bytes, the uploads directory and a hotel's
// image list.
type ImageService struct {
	repo  domain.HotelRepository
	store domain.FileStore
}

func NewImageService(r domain.HotelRepository, fs domain.FileStore) *ImageService {
	return &ImageService{repo: r, store: fs}
}

// Attach stores every non-empty file, appends the new public URLs to the
// hotel's list and persists it. Returns only the URLs created by this call.
// A failed copy aborts the request; files already written by earlier
// iterations stay on disk for the sweeper to reclaim.
func (s *ImageService) Attach(ctx context.Context, hotelID int64, files []Upload) ([]string, error) {
	h, err := s.repo.GetByID(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files supplied", domain.ErrValidation)
	}

	urls := []string{}
	for _, f := range files {
		if f.Size == 0 {
			continue
		}
		u, err := s.store.Save(f.Name, f.Content)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	h.ImageURLs = append(h.ImageURLs, urls...)
	if err := s.repo.ReplaceImages(ctx, hotelID, h.ImageURLs); err != nil {
		return nil, err
	}
	return urls, nil
}

// Detach removes the first exact match of the (percent-decoded) URL from the
// hotel's list, then deletes the backing file. The path is resolved and
// checked against the uploads root before the list is persisted, so a
// traversal payload can never reach the DB write, let alone the filesystem.
func (s *ImageService) Detach(ctx context.Context, hotelID int64, rawURL string) error {
	h, err := s.repo.GetByID(ctx, hotelID)
	if err != nil {
		return err
	}
	if len(h.ImageURLs) == 0 {
		return fmt.Errorf("%w: hotel has no images", domain.ErrValidation)
	}

	decoded, err := url.QueryUnescape(rawURL)
	if err != nil {
		return fmt.Errorf("%w: malformed image url %q", domain.ErrValidation, rawURL)
	}

	idx := -1
	for i, u := range h.ImageURLs {
		if u == decoded {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: image not associated with hotel", domain.ErrNotFound)
	}

	if _, err := s.store.Resolve(decoded); err != nil {
		return err
	}

	remaining := append(append([]string{}, h.ImageURLs[:idx]...), h.ImageURLs[idx+1:]...)
	if err := s.repo.ReplaceImages(ctx, hotelID, remaining); err != nil {
		return err
	}

	// Best-effort from here: the reference is gone, a leftover file is
	// only disk garbage.
	if err := s.store.Remove(decoded); err != nil {
		log.Warn().Int64("hotel_id", hotelID).Str("url", decoded).Err(err).
			Msg("image file delete failed")
	}
	return nil
}
