// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"sentitrip/internal/app"
	"sentitrip/internal/domain"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	C *app.IngestionService
	Q *app.QueryService
	// WriteRPS throttles the mutating routes; <= 0 disables throttling.
	WriteRPS int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// "/" is where the form flow redirects to.
	s.mux.Get("/", h.listDestinations)
	s.mux.Get("/v1/destinations", h.listDestinations)
	s.mux.Get("/v1/destinations/{id}", h.getDestination)

	s.mux.Group(func(r chi.Router) {
		r.Use(RateLimit(h.WriteRPS))
		r.Post("/v1/destinations", h.createDestination)
		r.Delete("/v1/destinations/{id}", h.deleteDestination)
		r.Post("/v1/destinations/{id}/reviews", h.submitReview)
		r.Delete("/v1/reviews/{id}", h.deleteReview)

		// form posts, answered with Post/Redirect/Get
		r.Post("/review", h.submitReviewForm)
		r.Post("/review/delete", h.deleteReviewForm)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "destination not found")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "the request could not be completed")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a JSON object")
		return false
	}
	return true
}

func (h *Handlers) listDestinations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListDestinations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getDestination(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	v, err := h.Q.GetDestination(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createDestinationBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handlers) createDestination(w http.ResponseWriter, r *http.Request) {
	var body createDestinationBody
	if !decodeBody(w, r, &body) {
		return
	}
	d, err := h.C.CreateDestination(r.Context(), body.Name, body.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/destinations/"+strconv.FormatInt(d.ID, 10))
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) deleteDestination(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	if err := h.C.DeleteDestination(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitReviewBody struct {
	Content string `json:"content"`
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "invalid destination id")
		return
	}
	var body submitReviewBody
	if !decodeBody(w, r, &body) {
		return
	}
	rv, err := h.C.Submit(r.Context(), id, body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		// nothing can match a malformed id; same outcome as an unknown one
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.C.DeleteReview(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) submitReviewForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed form")
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("destinationId")), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "invalid destination id")
		return
	}
	if _, err := h.C.Submit(r.Context(), id, r.PostForm.Get("content")); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) deleteReviewForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed form")
		return
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("reviewId")), 10, 64); err == nil {
		if err := h.C.DeleteReview(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
