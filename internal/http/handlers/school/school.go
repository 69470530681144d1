// Package school contains the HTTP handlers of the School resource.
//
// Successful responses carry the bare SchoolDTO (or a list of them); errors
// use response.Response:
//
//	{ "status": "error", "error": "School name already exists." }
package school

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/service"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
	"github.com/aanand-mishra/schools-api/internal/utils/request"
	"github.com/aanand-mishra/schools-api/internal/utils/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Service is implemented by *service.Schools.
type Service interface {
	List(ctx context.Context) ([]types.School, error)
	Get(ctx context.Context, id int64) (types.School, error)
	Create(ctx context.Context, form types.SchoolForm) (types.School, error)
	Update(ctx context.Context, id int64, form types.SchoolForm) (types.School, error)
	Delete(ctx context.Context, id int64) error
}

const msgNotFound = "School not found."

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/schools
// Returns every school in id order. No pagination.
//
// Success response (200 OK):
//
//	[ { "id": 1, "name": "Greenwood High School", "address": "...", ... } ]
//
// An empty table returns [] rather than null.
//
// Error responses:
//
//	500 Internal Server Error — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schools, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err, "Failed to retrieve schools.")
			return
		}

		dtos := make([]types.SchoolDTO, 0, len(schools))
		for _, s := range schools {
			dtos = append(dtos, types.NewSchoolDTO(s))
		}
		writeJSON(w, r, http.StatusOK, dtos)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/schools/{id}
//
// Success response (200 OK):
//
//	{ "id": 1, "name": "Greenwood High School", "phone": "0123456789", ... }
//
// Error responses:
//
//	400 Bad Request — id is not a positive integer
//	404 Not Found   — { "status": "error", "error": "School not found." }
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		school, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "Failed to retrieve school.")
			return
		}
		writeJSON(w, r, http.StatusOK, types.NewSchoolDTO(school))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/schools
//
// Request body (JSON):
//
//	{ "name": "Greenwood High School", "address": "12 Elm Road",
//	  "phone": "0123456789", "email": "office@greenwood.edu" }
//
// Success response (201 Created, Location: /api/schools/{id}):
//
//	{ "id": 6, "name": "Greenwood High School", ..., "createdAt": "..." }
//
// Error responses:
//
//	400 Bad Request — bad JSON, a failed field rule, or a name already in use
//	500 Internal    — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// ── Step 1: Decode + validate the body ────────────────────────
		form, ok := decodeForm(w, r)
		if !ok {
			return
		}

		// ── Step 2: Unique-name check + insert ────────────────────────
		school, err := svc.Create(r.Context(), form)
		if err != nil {
			writeError(w, r, err, "Failed to create school.")
			return
		}

		// ── Step 3: 201 Created with the bare DTO ─────────────────────
		w.Header().Set("Location", fmt.Sprintf("/api/schools/%d", school.ID))
		writeJSON(w, r, http.StatusCreated, types.NewSchoolDTO(school))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/schools/{id}
// Replaces every field. A school may keep its own name.
//
// Success response: 204 No Content, empty body.
//
// Error responses:
//
//	400 Bad Request — invalid id, bad body, or another school's name
//	404 Not Found   — no school with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		form, ok := decodeForm(w, r)
		if !ok {
			return
		}

		if _, err := svc.Update(r.Context(), id, form); err != nil {
			writeError(w, r, err, "Failed to update school.")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/schools/{id}
// The school's students are removed with it (ON DELETE CASCADE).
//
// Success response: 204 No Content, empty body.
//
// Error responses:
//
//	400 Bad Request — invalid id
//	404 Not Found   — no school with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, "Failed to delete school.")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := request.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, response.GeneralError(err))
		return 0, false
	}
	return id, true
}

func decodeForm(w http.ResponseWriter, r *http.Request) (types.SchoolForm, bool) {
	var form types.SchoolForm
	if err := request.DecodeJSON(r, &form); err != nil {
		writeJSON(w, r, http.StatusBadRequest, response.GeneralError(err))
		return form, false
	}
	form.Normalize()

	if err := request.Validate(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, r, err, "Failed to validate school.")
			return form, false
		}
		writeJSON(w, r, http.StatusBadRequest, response.ValidationError(verrs))
		return form, false
	}
	return form, true
}

// writeError maps a service error onto a status code:
//
//	*service.ValidationError → 400 with its message
//	storage.ErrNotFound      → 404 "School not found."
//	anything else            → 500, raw error logged only
func writeError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	log := logger.FromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Debug("request rejected", slog.String("field", verr.Field), slog.String("reason", verr.Message))
		writeJSON(w, r, http.StatusBadRequest, response.Error(verr.Message))
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, response.Error(msgNotFound))
	default:
		log.Error(internalMsg, slog.String("error", err.Error()))
		writeJSON(w, r, http.StatusInternalServerError, response.Error(internalMsg))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := response.WriteJSON(w, status, data); err != nil {
		logger.FromContext(r.Context()).Warn("write response", slog.String("error", err.Error()))
	}
}
