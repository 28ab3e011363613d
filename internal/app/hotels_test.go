package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"tutelo/internal/app"
	"tutelo/internal/domain"
)

// ---- fakes ----

// fakeRepo is an in-memory HotelRepository. Its Create enforces the same
// case-insensitive name uniqueness the real unique index does, so the
// check-then-act race path can be exercised without a database.
type fakeRepo struct {
	nextID    int64
	hotels    map[int64]domain.Hotel
	createErr error // when set, Create fails with this before any write
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{hotels: map[int64]domain.Hotel{}}
}

func (f *fakeRepo) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	if f.createErr != nil {
		return domain.Hotel{}, f.createErr
	}
	for _, e := range f.hotels {
		if strings.EqualFold(e.Name, h.Name) {
			return domain.Hotel{}, fmt.Errorf("%w: hotel name %q already exists", domain.ErrConflict, h.Name)
		}
	}
	f.nextID++
	h.ID = f.nextID
	f.hotels[h.ID] = h
	return h, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.Hotel, error) {
	out := make([]domain.Hotel, 0, len(f.hotels))
	for id := int64(1); id <= f.nextID; id++ {
		if h, ok := f.hotels[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (domain.Hotel, error) {
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, fmt.Errorf("%w: hotel %d", domain.ErrNotFound, id)
	}
	return h, nil
}

func (f *fakeRepo) Update(ctx context.Context, h domain.Hotel) error {
	if _, ok := f.hotels[h.ID]; !ok {
		return fmt.Errorf("%w: hotel %d", domain.ErrNotFound, h.ID)
	}
	cur := f.hotels[h.ID]
	cur.Name, cur.City, cur.Address, cur.Description = h.Name, h.City, h.Address, h.Description
	f.hotels[h.ID] = cur
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.hotels[id]; !ok {
		return fmt.Errorf("%w: hotel %d", domain.ErrNotFound, id)
	}
	delete(f.hotels, id)
	return nil
}

func (f *fakeRepo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	for id, e := range f.hotels {
		if id != excludeID && strings.EqualFold(e.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ReplaceImages(ctx context.Context, hotelID int64, urls []string) error {
	h, ok := f.hotels[hotelID]
	if !ok {
		return fmt.Errorf("%w: hotel %d", domain.ErrNotFound, hotelID)
	}
	h.ImageURLs = append([]string{}, urls...)
	f.hotels[hotelID] = h
	return nil
}

func ptr(s string) *string { return &s }

// ---- tests ----

func TestCreate_TrimsAndRoundTrips(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewHotelService(repo, noopStore())

	created, err := svc.Create(context.Background(), domain.HotelInput{
		Name: "  Sol  ", City: " Lima ", Address: " Av 1 ", Description: ptr("nice"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", created)
	}

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Sol" || got.City != "Lima" || got.Address != "Av 1" {
		t.Fatalf("fields not trimmed: %+v", got)
	}
	if got.Description == nil || *got.Description != "nice" {
		t.Fatalf("description lost: %+v", got)
	}
	if len(got.ImageURLs) != 0 {
		t.Fatalf("new hotel should have no images: %+v", got)
	}
}

func TestCreate_BlankFieldsRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewHotelService(repo, noopStore())

	cases := []domain.HotelInput{
		{Name: "", City: "Lima", Address: "Av 1"},
		{Name: "Sol", City: "  ", Address: "Av 1"},
		{Name: "Sol", City: "Lima"},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: want ErrValidation, got %v", i, err)
		}
	}
	if len(repo.hotels) != 0 {
		t.Fatalf("no record should be persisted on validation failure")
	}
}

func TestCreate_NameConflictIsCaseInsensitive(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewHotelService(repo, noopStore())

	if _, err := svc.Create(context.Background(), domain.HotelInput{Name: "Plaza", City: "Lima", Address: "Av 1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), domain.HotelInput{Name: "plaza", City: "Cusco", Address: "Av 2"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestCreate_ConstraintRaceTranslatedToConflict(t *testing.T) {
	// Pre-check passes (repo looks empty) but the persist step fails with
	// the constraint violation, as when two creates race.
	repo := newFakeRepo()
	repo.createErr = fmt.Errorf("%w: hotel name \"Sol\" already exists", domain.ErrConflict)
	svc := app.NewHotelService(repo, noopStore())

	_, err := svc.Create(context.Background(), domain.HotelInput{Name: "Sol", City: "Lima", Address: "Av 1"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict from persist-time violation, got %v", err)
	}
}

func TestUpdate_ValidatesAndPreservesImages(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewHotelService(repo, noopStore())

	created, _ := svc.Create(context.Background(), domain.HotelInput{Name: "Sol", City: "Lima", Address: "Av 1"})
	if err := repo.ReplaceImages(context.Background(), created.ID, []string{"/uploads/a.png"}); err != nil {
		t.Fatalf("seed images: %v", err)
	}

	upd, err := svc.Update(context.Background(), created.ID, domain.HotelInput{
		Name: "Sol", City: "Lima", Address: "Av 2", Description: ptr("nice"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Address != "Av 2" {
		t.Fatalf("address not updated: %+v", upd)
	}
	got, _ := svc.GetByID(context.Background(), created.ID)
	if len(got.ImageURLs) != 1 || got.ImageURLs[0] != "/uploads/a.png" {
		t.Fatalf("update must not touch images: %+v", got)
	}

	// Blank fields are rejected on update too.
	if _, err := svc.Update(context.Background(), created.ID, domain.HotelInput{Name: " ", City: "Lima", Address: "Av 2"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestUpdate_NameConflictWithOtherHotel(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewHotelService(repo, noopStore())

	a, _ := svc.Create(context.Background(), domain.HotelInput{Name: "Sol", City: "Lima", Address: "Av 1"})
	_, _ = svc.Create(context.Background(), domain.HotelInput{Name: "Plaza", City: "Lima", Address: "Av 2"})

	// Renaming onto another hotel's name conflicts...
	if _, err := svc.Update(context.Background(), a.ID, domain.HotelInput{Name: "PLAZA", City: "Lima", Address: "Av 1"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	// ...but keeping its own name does not.
	if _, err := svc.Update(context.Background(), a.ID, domain.HotelInput{Name: "sol", City: "Lima", Address: "Av 1"}); err != nil {
		t.Fatalf("self-rename should pass: %v", err)
	}
}

func TestUpdate_MissingHotel(t *testing.T) {
	svc := app.NewHotelService(newFakeRepo(), noopStore())
	if _, err := svc.Update(context.Background(), 99, domain.HotelInput{Name: "Sol", City: "Lima", Address: "Av 1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDelete_RemovesRecordAndCascadesFiles(t *testing.T) {
	repo := newFakeRepo()
	store := &recordingStore{}
	svc := app.NewHotelService(repo, store)

	created, _ := svc.Create(context.Background(), domain.HotelInput{Name: "Sol", City: "Lima", Address: "Av 1"})
	_ = repo.ReplaceImages(context.Background(), created.ID, []string{"/uploads/a.png", "/uploads/b.png"})

	removed, err := svc.Delete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 2 {
		t.Fatalf("want 2 cascaded removals reported, got %d", removed)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
	if len(store.removed) != 2 {
		t.Fatalf("expected both files removed, got %v", store.removed)
	}

	if _, err := svc.Delete(context.Background(), created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

// recordingStore satisfies domain.FileStore and records Remove calls.
type recordingStore struct {
	removed []string
}

func (s *recordingStore) Save(string, io.Reader) (string, error) { return "", nil }
func (s *recordingStore) Resolve(url string) (string, error)     { return url, nil }
func (s *recordingStore) Remove(url string) error {
	s.removed = append(s.removed, url)
	return nil
}

func noopStore() domain.FileStore { return &recordingStore{} }
