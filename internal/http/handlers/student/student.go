// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// A router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a service.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (the student Service)
//  2. Returns a function with the exact signature the router needs
//
// Example:
//
//	r.Post("/", student.New(svc))
//	//          ^^^^^^^^^^^^^^^^
//	//          New(svc) is called ONCE at startup.
//	//          The returned closure runs on EVERY incoming request.
//
// Every response, success or failure, uses the response.Envelope shape:
//
//	{ "success": true, "message": "...", "data": ..., "pagination": ... }
package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/schools-api/internal/http/middleware"
	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/service"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/types"
	"github.com/aanand-mishra/schools-api/internal/utils/request"
	"github.com/aanand-mishra/schools-api/internal/utils/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Service is what the handlers need from the business layer.
// *service.Students satisfies it; tests pass a fake.
type Service interface {
	List(ctx context.Context, req service.PageRequest) (service.StudentPage, error)
	Get(ctx context.Context, id int64) (types.Student, error)
	Create(ctx context.Context, form types.StudentForm) (types.Student, error)
	Update(ctx context.Context, id int64, form types.StudentForm) (types.Student, error)
	Delete(ctx context.Context, id int64) error
}

// Client-facing messages.
const (
	msgNotFound   = "Student not found."
	msgValidation = "Validation failed."
	msgCreated    = "Student created successfully."
	msgUpdated    = "Student updated successfully."
	msgDeleted    = "Student deleted successfully."
)

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students?page=1&pageSize=10
// Returns one page of students, newest first.
//
// Query parameters:
//
//	page     — 1-based page number, default 1 (values below 1 mean 1)
//	pageSize — items per page, default defaultPageSize (must be ≥ 1)
//
// Success response (200 OK):
//
//	{ "success": true,
//	  "data": [ { "id": 20, "schoolName": "Summit Peak School", ... } ],
//	  "pagination": { "currentPage": 1, "pageSize": 10, "totalItems": 20, "totalPages": 2 } }
//
// A page past the end returns "data": [] with the real totalItems.
//
// Error responses:
//
//	400 Bad Request  — non-integer page/pageSize, or pageSize < 1
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service, defaultPageSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// ── Step 1: Read paging parameters ────────────────────────────
		page, err := request.QueryInt(r, "page", 1)
		if err != nil {
			writeEnvelope(w, r, http.StatusBadRequest, response.Failure(err.Error()))
			return
		}
		pageSize, err := request.QueryInt(r, "pageSize", defaultPageSize)
		if err != nil {
			writeEnvelope(w, r, http.StatusBadRequest, response.Failure(err.Error()))
			return
		}

		// ── Step 2: Fetch the page ────────────────────────────────────
		result, err := svc.List(r.Context(), service.PageRequest{Page: page, PageSize: pageSize})
		if err != nil {
			writeError(w, r, err, "Failed to retrieve students.")
			return
		}

		// ── Step 3: Map entities to DTOs ──────────────────────────────
		// make(..., 0, n) so an empty page encodes as [] rather than null.
		dtos := make([]types.StudentDTO, 0, len(result.Items))
		for _, s := range result.Items {
			dtos = append(dtos, types.NewStudentDTO(s))
		}

		env := response.Success("", dtos)
		env.Pagination = &result.Pagination
		writeEnvelope(w, r, http.StatusOK, env)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
// Fetches a single student by primary key.
//
// Success response (200 OK):
//
//	{ "success": true, "data": { "id": 1, "fullName": "Alice Thompson", ... } }
//
// Error responses:
//
//	400 Bad Request  — id is not a positive integer
//	404 Not Found    — no student with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		student, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, "Failed to retrieve student.")
			return
		}
		writeEnvelope(w, r, http.StatusOK, response.Success("", types.NewStudentDTO(student)))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "schoolId": 1, "fullName": "Alice Thompson", "studentId": "STU001",
//	  "email": "alice.t@school.edu", "phone": "0123456789" }
//
// Success response (201 Created, Location: /api/students/{id}):
//
//	{ "success": true, "message": "Student created successfully.", "data": { ... } }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, failed field validation
//	                   ("errors" lists each field), unknown school, or a
//	                   student ID / email already in use
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// ── Step 1: Decode + validate the body ────────────────────────
		form, ok := decodeForm(w, r)
		if !ok {
			return
		}

		// ── Step 2: Business checks + insert ──────────────────────────
		student, err := svc.Create(r.Context(), form)
		if err != nil {
			writeError(w, r, err, "Failed to create student.")
			return
		}

		// ── Step 3: 201 Created, pointing at the new resource ─────────
		w.Header().Set("Location", fmt.Sprintf("/api/students/%d", student.ID))
		writeEnvelope(w, r, http.StatusCreated, response.Success(msgCreated, types.NewStudentDTO(student)))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student. Keeping the student's own
// student ID and email is allowed; taking another student's is not.
//
// Success response (200 OK):
//
//	{ "success": true, "message": "Student updated successfully.", "data": { ... } }
//
// Error responses:
//
//	400 Bad Request  — invalid id, bad body, or a failed business rule
//	404 Not Found    — no student with that id
//	500 Internal     — database error
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

		student, err := svc.Update(r.Context(), id, form)
		if err != nil {
			writeError(w, r, err, "Failed to update student.")
			return
		}
		writeEnvelope(w, r, http.StatusOK, response.Success(msgUpdated, types.NewStudentDTO(student)))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Permanently removes a student record.
//
// Success response (200 OK):
//
//	{ "success": true, "message": "Student deleted successfully." }
//
// Error responses:
//
//	400 Bad Request  — invalid id
//	404 Not Found    — no student with that id (nothing is changed)
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, "Failed to delete student.")
			return
		}
		writeEnvelope(w, r, http.StatusOK, response.Success(msgDeleted, nil))
	}
}

// pathID reads {id} from the URL. On failure it has already written the
// 400 response and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := request.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeEnvelope(w, r, http.StatusBadRequest, response.Failure(err.Error()))
		return 0, false
	}
	return id, true
}

// decodeForm reads, trims and shape-validates the request body.
func decodeForm(w http.ResponseWriter, r *http.Request) (types.StudentForm, bool) {
	var form types.StudentForm
	if err := request.DecodeJSON(r, &form); err != nil {
		writeEnvelope(w, r, http.StatusBadRequest, response.Failure(err.Error()))
		return form, false
	}

	// Trim first, so "   " fails the required rule.
	form.Normalize()

	if err := request.Validate(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, r, err, "Failed to validate student.")
			return form, false
		}
		writeEnvelope(w, r, http.StatusBadRequest, response.Failure(msgValidation, response.FieldErrors(verrs)...))
		return form, false
	}
	return form, true
}

// ─────────────────────────────────────────────────────────────────────────────
// writeError maps a service error onto a status code:
//
//	*service.ValidationError → 400 with its message
//	storage.ErrNotFound      → 404 "Student not found."
//	anything else            → 500 with internalMsg only
//
// The raw error of a 500 is logged, never sent: driver messages can leak
// table names and SQL.
// ─────────────────────────────────────────────────────────────────────────────
func writeError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	log := logger.FromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Debug("request rejected", slog.String("field", verr.Field), slog.String("reason", verr.Message))
		writeEnvelope(w, r, http.StatusBadRequest,
			response.Failure(verr.Message, response.FieldError{Field: verr.Field, Message: verr.Message}))
	case errors.Is(err, storage.ErrNotFound):
		writeEnvelope(w, r, http.StatusNotFound, response.Failure(msgNotFound))
	default:
		log.Error(internalMsg, slog.String("error", err.Error()))
		writeEnvelope(w, r, http.StatusInternalServerError, response.Failure(internalMsg))
	}
}

// writeEnvelope stamps the request's trace id on env and writes it.
func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env response.Envelope) {
	env.TraceID = middleware.TraceID(r.Context())
	if err := response.WriteJSON(w, status, env); err != nil {
		logger.FromContext(r.Context()).Warn("write response", slog.String("error", err.Error()))
	}
}
