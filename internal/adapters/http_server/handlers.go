package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tutelo/internal/adapters/observability"
	"tutelo/internal/app"
	"tutelo/internal/domain"
)

type Handlers struct {
	Hotels    *app.HotelService
	Images    *app.ImageService
	MaxUpload int64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type hotelRequest struct {
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Address     string  `json:"address"`
	Description *string `json:"description"`
}

type hotelResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Description *string  `json:"description,omitempty"`
	ImageURLs   []string `json:"imageUrls"`
}

func toResponse(h domain.Hotel) hotelResponse {
	urls := h.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return hotelResponse{
		ID:          h.ID,
		Name:        h.Name,
		City:        h.City,
		Address:     h.Address,
		Description: h.Description,
		ImageURLs:   urls,
	}
}

// MountHandlers wires the public and admin route groups. Both groups share
// the same handlers; the admin group only adds the auth gate.
func (s *Server) MountHandlers(h *Handlers, a *Auth) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/api/auth/login", a.login)

	s.mux.Route("/api/hotels", func(r chi.Router) {
		r.Post("/", h.createHotel)
		r.Get("/", h.listHotels)
		r.Get("/{id}", h.getHotel)
		r.Put("/{id}", h.updateHotel)
		r.Delete("/{id}", h.deleteHotel)
		r.Post("/{id}/images", h.uploadImages)
		// Legacy path the original frontend still calls.
		r.Delete("/admin/hotels/{id}/images", h.deleteImage)
	})

	s.mux.Route("/api/admin/hotels", func(r chi.Router) {
		r.Use(a.RequireAdmin)
		r.Post("/", h.createHotel)
		r.Put("/{id}", h.updateHotel)
		r.Delete("/{id}", h.deleteHotelNoContent)
		r.Post("/{id}/images", h.uploadImages)
		r.Delete("/{id}/images", h.deleteImage)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainErr maps the domain taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a 500 with the detail kept out of the payload.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, err := h.Hotels.Create(r.Context(), domain.HotelInput(req))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(created))
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Hotels.List(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]hotelResponse, 0, len(hotels))
	for _, ht := range hotels {
		out = append(out, toResponse(ht))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "id must be a number")
		return
	}
	ht, err := h.Hotels.GetByID(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(ht))
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "id must be a number")
		return
	}
	var req hotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	updated, err := h.Hotels.Update(r.Context(), id, domain.HotelInput(req))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	h.removeHotel(w, r, http.StatusOK)
}

func (h *Handlers) deleteHotelNoContent(w http.ResponseWriter, r *http.Request) {
	h.removeHotel(w, r, http.StatusNoContent)
}

func (h *Handlers) removeHotel(w http.ResponseWriter, r *http.Request, okStatus int) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "id must be a number")
		return
	}
	removed, err := h.Hotels.Delete(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	// Cascade-removed files count as detaches, same as the explicit route.
	observability.ObserveImages("detach", removed)
	w.WriteHeader(okStatus)
}

func (h *Handlers) uploadImages(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "id must be a number")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	files := make([]app.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		defer f.Close()
		files = append(files, app.Upload{Name: fh.Filename, Size: fh.Size, Content: f})
	}

	urls, err := h.Images.Attach(r.Context(), id, files)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	observability.ObserveImages("attach", len(urls))
	writeJSON(w, http.StatusOK, map[string][]string{"imageUrls": urls})
}

func (h *Handlers) deleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "id must be a number")
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "url query parameter is required")
		return
	}
	if err := h.Images.Detach(r.Context(), id, url); err != nil {
		writeDomainErr(w, err)
		return
	}
	observability.ObserveImages("detach", 1)
	w.WriteHeader(http.StatusNoContent)
}
