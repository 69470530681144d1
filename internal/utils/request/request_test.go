package request

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/schools-api/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStudent() types.StudentForm {
	return types.StudentForm{
		SchoolID:  1,
		FullName:  "Alice Thompson",
		StudentID: "STU001",
		Email:     "alice.t@school.edu",
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"schoolId":3,"fullName":"Bob"}`))
		var form types.StudentForm
		require.NoError(t, DecodeJSON(r, &form))
		assert.EqualValues(t, 3, form.SchoolID)
		assert.Equal(t, "Bob", form.FullName)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var form types.StudentForm
		assert.ErrorIs(t, DecodeJSON(r, &form), ErrEmptyBody)
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"schoolId":`))
		var form types.StudentForm
		assert.ErrorIs(t, DecodeJSON(r, &form), ErrInvalidJSON)
	})

	t.Run("wrong type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"schoolId":"one"}`))
		var form types.StudentForm
		assert.ErrorIs(t, DecodeJSON(r, &form), ErrInvalidJSON)
	})
}

func TestValidateStudentForm(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.StudentForm)
		field  string
		tag    string
	}{
		{"valid", func(*types.StudentForm) {}, "", ""},
		{"valid with phone", func(f *types.StudentForm) { f.Phone = "01234567890" }, "", ""},
		{"missing school", func(f *types.StudentForm) { f.SchoolID = 0 }, "schoolId", "required"},
		{"negative school", func(f *types.StudentForm) { f.SchoolID = -4 }, "schoolId", "gt"},
		{"short name", func(f *types.StudentForm) { f.FullName = "A" }, "fullName", "min"},
		{"long name", func(f *types.StudentForm) { f.FullName = strings.Repeat("a", 101) }, "fullName", "max"},
		{"short student id", func(f *types.StudentForm) { f.StudentID = "S1" }, "studentId", "min"},
		{"long student id", func(f *types.StudentForm) { f.StudentID = strings.Repeat("9", 21) }, "studentId", "max"},
		{"bad email", func(f *types.StudentForm) { f.Email = "not-an-email" }, "email", "email"},
		{"phone with letters", func(f *types.StudentForm) { f.Phone = "012345678x" }, "phone", "phone"},
		{"phone too short", func(f *types.StudentForm) { f.Phone = "123456789" }, "phone", "phone"},
		{"phone too long", func(f *types.StudentForm) { f.Phone = "123456789012" }, "phone", "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validStudent()
			tt.mutate(&form)

			err := Validate(form)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
			assert.Equal(t, tt.tag, verrs[0].Tag())
		})
	}
}

func TestValidateSchoolForm(t *testing.T) {
	err := Validate(types.SchoolForm{Name: "Green Valley High", Principal: "Dr. Smith"})
	assert.NoError(t, err, "address is optional")

	err = Validate(types.SchoolForm{Principal: "Dr. Smith", Address: strings.Repeat("x", 501)})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := []string{}
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"name", "address"}, fields)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "abc", "0", "-1", "1.5", "99999999999999999999"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&pageSize=abc&empty=", nil)

	n, err := QueryInt(r, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = QueryInt(r, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = QueryInt(r, "empty", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = QueryInt(r, "pageSize", 10)
	assert.EqualError(t, err, `query parameter "pageSize" must be an integer`)
}
