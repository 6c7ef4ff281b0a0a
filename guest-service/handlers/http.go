package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/guest-service/application"
	"github.com/venuehub/registration-system/guest-service/domain"
)

// GuestHandlers contains guest HTTP handlers
type GuestHandlers struct {
	createGuest *application.CreateGuest
	getGuest    *application.GetGuest
	listGuests  *application.ListGuests
}

// NewGuestHandlers creates new guest handlers
func NewGuestHandlers(
	createGuest *application.CreateGuest,
	getGuest *application.GetGuest,
	listGuests *application.ListGuests,
) *GuestHandlers {
	return &GuestHandlers{
		createGuest: createGuest,
		getGuest:    getGuest,
		listGuests:  listGuests,
	}
}

// CreateGuest handles guest creation requests
func (h *GuestHandlers) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var cmd application.CreateGuestCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.createGuest.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Is(err, domain.ErrGuestExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if strings.HasPrefix(err.Error(), "invalid command") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// GetGuest handles guest retrieval requests
func (h *GuestHandlers) GetGuest(w http.ResponseWriter, r *http.Request) {
	guestID := chi.URLParam(r, "id")
	email := r.URL.Query().Get("email")

	if guestID == "" && email == "" {
		http.Error(w, "Either guest ID or email is required", http.StatusBadRequest)
		return
	}

	query := &application.GetGuestQuery{
		GuestID: guestID,
		Email:   email,
	}

	response, err := h.getGuest.Execute(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrGuestNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListGuests handles guest listing requests
func (h *GuestHandlers) ListGuests(w http.ResponseWriter, r *http.Request) {
	query := &application.ListGuestsQuery{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	response, err := h.listGuests.Execute(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers guest routes
func (h *GuestHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/guests", func(r chi.Router) {
			r.Post("/", h.CreateGuest)
			r.Get("/", h.ListGuests)
			r.Get("/{id}", h.GetGuest)
		})
	})
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
