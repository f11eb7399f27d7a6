package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/repo"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/service"
)

const testLessonUUID = "b2f9a7e4-3c21-4e8a-9f10-6d5c4b3a2e1d"

func newHandler(t *testing.T, students ...service.Student) *Handler {
	t.Helper()
	dir := repo.NewMemoryDirectory()
	for _, s := range students {
		dir.Seed(s)
	}
	svc := service.New(dir, zaptest.NewLogger(t))
	return New(svc, zaptest.NewLogger(t))
}

func TestUpdateStudentSubjects(t *testing.T) {
	h := newHandler(t,
		service.Student{Email: "fresh@school.edu"},
		service.Student{Email: "linked@school.edu", SubjectList: []string{testLessonUUID}},
	)

	body := `{"body":{"lesson_planner_UUID":"` + testLessonUUID + `","student":["fresh@school.edu","linked@school.edu","ghost@school.edu"]}}`
	req := httptest.NewRequest(http.MethodPost, "/update_student_subjects", strings.NewReader(body))
	resp := httptest.NewRecorder()

	h.UpdateStudentSubjects(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{
		"status": "success",
		"lesson_planner_UUID": "`+testLessonUUID+`",
		"updated_students": ["fresh@school.edu"],
		"already_linked": ["linked@school.edu"],
		"not_found": ["ghost@school.edu"]
	}`, resp.Body.String())
}

func TestUpdateStudentSubjectsRejectsBadUUID(t *testing.T) {
	h := newHandler(t)

	body := `{"body":{"lesson_planner_UUID":"not-a-uuid","student":["fresh@school.edu"]}}`
	req := httptest.NewRequest(http.MethodPost, "/update_student_subjects", strings.NewReader(body))
	resp := httptest.NewRecorder()

	h.UpdateStudentSubjects(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "must be a UUID")
}

func TestUpdateStudentSubjectsMissingFields(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/update_student_subjects", strings.NewReader(`{"body":{}}`))
	resp := httptest.NewRecorder()

	h.UpdateStudentSubjects(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "lesson_planner_UUID")
}

func TestUpdateStudentSubjectsBadJSON(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/update_student_subjects", strings.NewReader(`{`))
	resp := httptest.NewRecorder()

	h.UpdateStudentSubjects(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}
