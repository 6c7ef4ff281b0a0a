package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/user-service/application"
	"github.com/venuehub/registration-system/user-service/domain"
)

// UserHandlers contains user HTTP handlers
type UserHandlers struct {
	createUser   *application.CreateUser
	getUser      *application.GetUser
	listUsers    *application.ListUsers
	loginUser    *application.LoginUser
	refreshToken *application.RefreshToken
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(
	createUser *application.CreateUser,
	getUser *application.GetUser,
	listUsers *application.ListUsers,
	loginUser *application.LoginUser,
	refreshToken *application.RefreshToken,
) *UserHandlers {
	return &UserHandlers{
		createUser:   createUser,
		getUser:      getUser,
		listUsers:    listUsers,
		loginUser:    loginUser,
		refreshToken: refreshToken,
	}
}

// CreateUser handles user registration requests
func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var cmd application.CreateUserCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.createUser.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
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

// GetUser handles user retrieval requests
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	email := r.URL.Query().Get("email")

	if userID == "" && email == "" {
		http.Error(w, "Either user ID or email is required", http.StatusBadRequest)
		return
	}

	query := &application.GetUserQuery{
		UserID: userID,
		Email:  email,
	}

	response, err := h.getUser.Execute(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListUsers handles user listing requests
func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := &application.ListUsersQuery{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	response, err := h.listUsers.Execute(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Login handles authentication requests
func (h *UserHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd application.LoginUserCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.loginUser.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RefreshToken handles token rotation requests
func (h *UserHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var cmd application.RefreshTokenCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.refreshToken.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenInvalid) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers user routes
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
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
