package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/http/middleware"
	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/service"
	"github.com/aanand-mishra/schools-api/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "api.db")}
	store, err := sqlite.New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &api{t: t, handler: New(Deps{
		Log:             logger.Discard(),
		DB:              store,
		Schools:         service.NewSchools(store),
		Students:        service.NewStudents(store),
		DefaultPageSize: 10,
	})}
}

func (a *api) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type studentEnvelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		CurrentPage int   `json:"currentPage"`
		PageSize    int   `json:"pageSize"`
		TotalItems  int64 `json:"totalItems"`
		TotalPages  int64 `json:"totalPages"`
	} `json:"pagination"`
	TraceID string `json:"traceId"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *api) createSchool(name string) int64 {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/schools", fmt.Sprintf(`{"name":%q,"principal":"P","address":"A"}`, name))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		ID int64 `json:"id"`
	}](a.t, rec).ID
}

func studentBody(schoolID int64, studentID, email string) string {
	return fmt.Sprintf(`{"schoolId":%d,"fullName":"Student %s","studentId":%q,"email":%q}`,
		schoolID, studentID, studentID, email)
}

func (a *api) createStudent(schoolID int64, studentID, email string) int64 {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/students", studentBody(schoolID, studentID, email))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(decode[studentEnvelope](a.t, rec).Data, &created))
	return created.ID
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceHeader))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealthUnavailable(t *testing.T) {
	h := New(Deps{Log: logger.Discard(), DB: failingPinger{}, DefaultPageSize: 10})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStudentWorkflow(t *testing.T) {
	a := newAPI(t)
	schoolID := a.createSchool("Green Valley High")

	t.Run("non-existent school is rejected", func(t *testing.T) {
		rec := a.do(http.MethodPost, "/api/students", studentBody(schoolID+50, "STU001", "a@school.edu"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "The selected School does not exist.", decode[studentEnvelope](t, rec).Message)
	})

	aliceID := a.createStudent(schoolID, "STU001", "alice@school.edu")
	bobID := a.createStudent(schoolID, "STU002", "bob@school.edu")

	t.Run("duplicates are rejected on the second attempt", func(t *testing.T) {
		rec := a.do(http.MethodPost, "/api/students", studentBody(schoolID, "STU001", "new@school.edu"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Student ID already exists.", decode[studentEnvelope](t, rec).Message)

		rec = a.do(http.MethodPost, "/api/students", studentBody(schoolID, "STU003", "alice@school.edu"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email already exists.", decode[studentEnvelope](t, rec).Message)
	})

	t.Run("update to another student's identifiers is rejected", func(t *testing.T) {
		path := fmt.Sprintf("/api/students/%d", aliceID)

		rec := a.do(http.MethodPut, path, studentBody(schoolID, "STU002", "alice@school.edu"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Student ID is already taken by another student.", decode[studentEnvelope](t, rec).Message)

		rec = a.do(http.MethodPut, path, studentBody(schoolID, "STU001", "bob@school.edu"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email is already taken by another student.", decode[studentEnvelope](t, rec).Message)
	})

	t.Run("update to own identifiers succeeds", func(t *testing.T) {
		rec := a.do(http.MethodPut, fmt.Sprintf("/api/students/%d", aliceID), studentBody(schoolID, "STU001", "alice@school.edu"))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		env := decode[studentEnvelope](t, rec)
		assert.Equal(t, "Student updated successfully.", env.Message)
		assert.Contains(t, string(env.Data), `"updatedAt":"`)
		assert.Contains(t, string(env.Data), `"schoolName":"Green Valley High"`)
	})

	t.Run("page zero and negative behave like page one", func(t *testing.T) {
		first := a.do(http.MethodGet, "/api/students?page=1&pageSize=1", "")
		require.Equal(t, http.StatusOK, first.Code)
		want := decode[studentEnvelope](t, first)

		for _, p := range []string{"0", "-1"} {
			got := decode[studentEnvelope](t, a.do(http.MethodGet, "/api/students?pageSize=1&page="+p, ""))
			assert.JSONEq(t, string(want.Data), string(got.Data), "page %s", p)
			assert.Equal(t, want.Pagination, got.Pagination, "page %s", p)
		}
	})

	t.Run("beyond the last page is empty with the total", func(t *testing.T) {
		rec := a.do(http.MethodGet, "/api/students?page=9&pageSize=10", "")
		require.Equal(t, http.StatusOK, rec.Code)

		env := decode[studentEnvelope](t, rec)
		assert.JSONEq(t, `[]`, string(env.Data))
		assert.EqualValues(t, 2, env.Pagination.TotalItems)
		assert.EqualValues(t, 1, env.Pagination.TotalPages)
		assert.Equal(t, 9, env.Pagination.CurrentPage)
	})

	t.Run("bad paging parameters", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/students?pageSize=0", "").Code)
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/students?page=x", "").Code)
	})

	t.Run("deleting a missing student leaves the store unchanged", func(t *testing.T) {
		rec := a.do(http.MethodDelete, "/api/students/9999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decode[studentEnvelope](t, rec)
		assert.Equal(t, "Student not found.", env.Message)
		assert.Equal(t, rec.Header().Get(middleware.TraceHeader), env.TraceID)

		list := decode[studentEnvelope](t, a.do(http.MethodGet, "/api/students", ""))
		assert.EqualValues(t, 2, list.Pagination.TotalItems)
	})

	t.Run("delete", func(t *testing.T) {
		rec := a.do(http.MethodDelete, fmt.Sprintf("/api/students/%d", bobID), "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Student deleted successfully.", decode[studentEnvelope](t, rec).Message)

		rec = a.do(http.MethodGet, fmt.Sprintf("/api/students/%d", bobID), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSchoolWorkflow(t *testing.T) {
	a := newAPI(t)
	id := a.createSchool("West River Academy")
	path := fmt.Sprintf("/api/schools/%d", id)

	rec := a.do(http.MethodPost, "/api/schools", `{"name":"West River Academy","principal":"X"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"School name already exists."}`, rec.Body.String())

	rec = a.do(http.MethodPut, path, `{"name":"West River Academy","principal":"Mrs. Sarah Johnson"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"West River Academy","principal":"Mrs. Sarah Johnson","address":""}`, id),
		rec.Body.String())

	studentID := a.createStudent(id, "STU100", "cascade@school.edu")

	rec = a.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, fmt.Sprintf("/api/students/%d", studentID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "students go with their school")

	rec = a.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, "/api/schools", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}
