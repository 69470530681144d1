// Package router wires the HTTP handlers to their routes.
//
// Route table:
//
//	GET    /health
//	GET    /api/schools            POST   /api/schools
//	GET    /api/schools/{id}       PUT    /api/schools/{id}     DELETE /api/schools/{id}
//	GET    /api/students           POST   /api/students
//	GET    /api/students/{id}      PUT    /api/students/{id}    DELETE /api/students/{id}
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/schools-api/internal/http/handlers/school"
	"github.com/aanand-mishra/schools-api/internal/http/handlers/student"
	"github.com/aanand-mishra/schools-api/internal/http/middleware"
	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/utils/response"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log             *slog.Logger
	DB              Pinger
	Schools         school.Service
	Students        student.Service
	DefaultPageSize int
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Trace(d.Log))
	r.Use(chimw.Recoverer)

	r.Get("/health", health(d.DB))

	r.Route("/api/schools", func(r chi.Router) {
		r.Get("/", school.GetList(d.Schools))
		r.Post("/", school.New(d.Schools))
		r.Get("/{id}", school.GetByID(d.Schools))
		r.Put("/{id}", school.Update(d.Schools))
		r.Delete("/{id}", school.Delete(d.Schools))
	})

	r.Route("/api/students", func(r chi.Router) {
		r.Get("/", student.GetList(d.Students, d.DefaultPageSize))
		r.Post("/", student.New(d.Students))
		r.Get("/{id}", student.GetByID(d.Students))
		r.Put("/{id}", student.Update(d.Students))
		r.Delete("/{id}", student.Delete(d.Students))
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.Error("database unavailable"))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}
