package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	usersvc "github.com/meridiancrm/meridian/svc/user"
)

// mountUserRoutes exposes the minimal user CRUD surface. Handlers never
// mention tenants: scoping happens in the middleware and the store.
func mountUserRoutes(r chi.Router, users *usersvc.Service) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			list, err := users.List(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		})

		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Email    string `json:"email"`
				FullName string `json:"full_name"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, "invalid body", http.StatusBadRequest)
				return
			}
			u, err := users.Create(req.Context(), body.Email, body.FullName)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, u)
		})

		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := uuid.Parse(chi.URLParam(req, "id"))
			if err != nil {
				http.Error(w, "invalid user id", http.StatusBadRequest)
				return
			}
			u, err := users.GetByID(req.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
		})

		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := uuid.Parse(chi.URLParam(req, "id"))
			if err != nil {
				http.Error(w, "invalid user id", http.StatusBadRequest)
				return
			}
			var body struct {
				Email    string `json:"email"`
				FullName string `json:"full_name"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, "invalid body", http.StatusBadRequest)
				return
			}
			u, err := users.GetByID(req.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			u.Email = body.Email
			u.FullName = body.FullName
			if err := users.Update(req.Context(), u); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
		})

		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := uuid.Parse(chi.URLParam(req, "id"))
			if err != nil {
				http.Error(w, "invalid user id", http.StatusBadRequest)
				return
			}
			if err := users.Delete(req.Context(), id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usersvc.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
