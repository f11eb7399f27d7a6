package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/questions/be/service"
)

type fakeAI struct {
	raw json.RawMessage
	err error
}

func (f *fakeAI) GenerateJSON(context.Context, string, string, string, map[string]any) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func quizJSON(t *testing.T, question string) json.RawMessage {
	t.Helper()
	q := map[string]any{"Question": question, "CorrectAnswer": 2}
	for _, key := range []string{"options__001", "options__002", "options__003", "options__004"} {
		q[key] = "option"
	}
	for _, key := range []string{"description__001", "description__002", "description__003", "description__004"} {
		q[key] = "because"
	}
	raw, err := json.Marshal(map[string]any{"questions": []any{q}})
	require.NoError(t, err)
	return raw
}

func newTestHandler(t *testing.T, ai *fakeAI) *Handler {
	t.Helper()
	return New(service.New(ai, zaptest.NewLogger(t)), zaptest.NewLogger(t))
}

const generateBody = `{
	"subject": "Math",
	"topic": "Fractions",
	"grade_level": "5th grade",
	"difficulty": "medium"
}`

func TestGenerateQuestion(t *testing.T) {
	h := newTestHandler(t, &fakeAI{raw: quizJSON(t, "What is 1/2 + 1/4?")})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/generate-question", strings.NewReader(generateBody))
	rec := httptest.NewRecorder()
	h.GenerateQuestion(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success  bool                  `json:"success"`
		Question *service.QuizQuestion `json:"question"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Question)
	assert.Equal(t, "What is 1/2 + 1/4?", resp.Question.Question)
	assert.Equal(t, 2, resp.Question.CorrectAnswer)
}

func TestGenerateQuestionInvalidDifficulty(t *testing.T) {
	h := newTestHandler(t, &fakeAI{raw: quizJSON(t, "Q")})

	body := strings.Replace(generateBody, "medium", "brutal", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/ai/generate-question", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.GenerateQuestion(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success      bool   `json:"success"`
		ErrorMessage string `json:"error_message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.ErrorMessage, "difficulty")
}

func TestGenerateQuestionModelFailure(t *testing.T) {
	h := newTestHandler(t, &fakeAI{err: errors.New("rate limited")})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/generate-question", strings.NewReader(generateBody))
	rec := httptest.NewRecorder()
	h.GenerateQuestion(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRegenerateQuestion(t *testing.T) {
	h := newTestHandler(t, &fakeAI{raw: quizJSON(t, "What is 2/3 + 1/3?")})

	body := `{
		"current_question": {"Question": "What is 1/2 + 1/4?"},
		"edit_instruction": "make it about thirds",
		"subject": "Math",
		"topic": "Fractions",
		"grade_level": "5th grade",
		"difficulty": "medium"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/ai/regenerate-question", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RegenerateQuestion(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success             bool                  `json:"success"`
		RegeneratedQuestion *service.QuizQuestion `json:"regenerated_question"`
		ChangesSummary      []string              `json:"changes_summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.RegeneratedQuestion)
	assert.Contains(t, resp.ChangesSummary, "Question text updated")
}

func TestRegenerateQuestionMissingInstruction(t *testing.T) {
	h := newTestHandler(t, &fakeAI{raw: quizJSON(t, "Q")})

	body := `{
		"current_question": {"Question": "Q"},
		"subject": "Math",
		"topic": "Fractions",
		"grade_level": "5th grade",
		"difficulty": "medium"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/ai/regenerate-question", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RegenerateQuestion(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
