package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"tutelo/internal/domain"
)

// HotelService enforces the business rules around hotel records. It is the
// only writer of the entity's scalar fields; the image list is owned by
// ImageService.
type HotelService struct {
	repo  domain.HotelRepository
	store domain.FileStore
}

func NewHotelService(r domain.HotelRepository, fs domain.FileStore) *HotelService {
	return &HotelService{repo: r, store: fs}
}

// normalize trims the three required fields and rejects blanks.
func normalize(in domain.HotelInput) (domain.HotelInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	in.Address = strings.TrimSpace(in.Address)
	if in.Name == "" || in.City == "" || in.Address == "" {
		return in, fmt.Errorf("%w: name, city and address are required", domain.ErrValidation)
	}
	return in, nil
}

func (s *HotelService) Create(ctx context.Context, in domain.HotelInput) (domain.Hotel, error) {
	in, err := normalize(in)
	if err != nil {
		return domain.Hotel{}, err
	}

	// Pre-check is an optimization only; the unique index on name is the
	// source of truth for the create/create race, and the repo translates
	// its violation to the same ErrConflict.
	exists, err := s.repo.ExistsByName(ctx, in.Name, 0)
	if err != nil {
		return domain.Hotel{}, err
	}
	if exists {
		return domain.Hotel{}, fmt.Errorf("%w: hotel name %q already exists", domain.ErrConflict, in.Name)
	}

	return s.repo.Create(ctx, domain.Hotel{
		Name:        in.Name,
		City:        in.City,
		Address:     in.Address,
		Description: in.Description,
		ImageURLs:   []string{},
	})
}

func (s *HotelService) List(ctx context.Context) ([]domain.Hotel, error) {
	return s.repo.List(ctx)
}

func (s *HotelService) GetByID(ctx context.Context, id int64) (domain.Hotel, error) {
	return s.repo.GetByID(ctx, id)
}

// Update overwrites the scalar fields. Unlike the image operations it never
// touches ImageURLs. The same normalization and uniqueness rules as Create
// apply, with the hotel itself excluded from the name check.
func (s *HotelService) Update(ctx context.Context, id int64, in domain.HotelInput) (domain.Hotel, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}

	in, err = normalize(in)
	if err != nil {
		return domain.Hotel{}, err
	}
	exists, err := s.repo.ExistsByName(ctx, in.Name, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if exists {
		return domain.Hotel{}, fmt.Errorf("%w: hotel name %q already exists", domain.ErrConflict, in.Name)
	}

	h.Name = in.Name
	h.City = in.City
	h.Address = in.Address
	h.Description = in.Description
	if err := s.repo.Update(ctx, h); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

// Delete removes the hotel row and then its upload files best-effort, so the
// aggregate does not silently orphan what it owns. A file that refuses to go
// is logged and left for the sweeper. Returns how many file removals went
// through so the caller can account for them.
func (s *HotelService) Delete(ctx context.Context, id int64) (int, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return 0, err
	}
	removed := 0
	for _, u := range h.ImageURLs {
		if err := s.store.Remove(u); err != nil {
			log.Warn().Int64("hotel_id", id).Str("url", u).Err(err).
				Msg("cascade image delete failed")
			continue
		}
		removed++
	}
	return removed, nil
}
